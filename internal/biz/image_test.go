package biz

import (
	"context"
	"testing"
	"time"

	"credit-service/internal/constants"

	"github.com/stretchr/testify/require"
)

func TestCanUploadImagePlanGating(t *testing.T) {
	ctx := context.Background()

	// 不含图片功能的套餐直接拒绝
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "trial",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
	})
	res, err := env.uc.CanUploadImage(ctx, "trial")
	require.NoError(t, err)
	require.False(t, res.CanUse)
	require.Equal(t, constants.ReasonImageNotInPlan, res.Reason)

	env.accounts.put(&CreditAccount{
		UID:                "voice",
		SubscriptionType:   constants.SubscriptionTypeVoiceOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})
	res, err = env.uc.CanUploadImage(ctx, "voice")
	require.NoError(t, err)
	require.False(t, res.CanUse)
	require.Equal(t, constants.ReasonImageNotInPlan, res.Reason)

	// 含图片功能的套餐可用
	env.accounts.put(&CreditAccount{
		UID:                "chat",
		SubscriptionType:   constants.SubscriptionTypeChatOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})
	res, err = env.uc.CanUploadImage(ctx, "chat")
	require.NoError(t, err)
	require.True(t, res.CanUse)
}

func TestCanUploadImageQuotaExceeded(t *testing.T) {
	env := newTestEnv()
	anchor := monthStartUTC(time.Now())
	env.accounts.put(&CreditAccount{
		UID:                 "u1",
		SubscriptionType:    constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:  constants.SubscriptionStatusActive,
		SubscriptionEnd:     futureTime(),
		ImagesUsedThisMonth: MonthlyImageQuota,
		ImageUsageResetAt:   &anchor,
	})

	res, err := env.uc.CanUploadImage(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, res.CanUse)
	require.Equal(t, constants.ReasonImageQuotaExceeded, res.Reason)
}

func TestCanUploadImageStaleAnchorSelfHeals(t *testing.T) {
	env := newTestEnv()
	// 锚点停在上个月：计数视为 0，额度重新可用
	stale := monthStartUTC(time.Now()).AddDate(0, -1, 0)
	env.accounts.put(&CreditAccount{
		UID:                 "u1",
		SubscriptionType:    constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:  constants.SubscriptionStatusActive,
		SubscriptionEnd:     futureTime(),
		ImagesUsedThisMonth: MonthlyImageQuota,
		ImageUsageResetAt:   &stale,
	})

	res, err := env.uc.CanUploadImage(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, res.CanUse)
}

func TestRecordImageUsage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeChatOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})

	acc, err := env.uc.RecordImageUsage(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, acc.ImagesUsedThisMonth)
	require.NotNil(t, acc.ImageUsageResetAt)

	// 图片不消耗额度，但留审计流水
	records := env.usage.recordsFor("u1")
	require.Len(t, records, 1)
	require.Equal(t, constants.FeatureTypeImage, records[0].Feature)
	require.Zero(t, records[0].CreditsUsed)
}

func TestRecordImageUsageQuotaEnforced(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	anchor := monthStartUTC(time.Now())
	env.accounts.put(&CreditAccount{
		UID:                 "u1",
		SubscriptionType:    constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:  constants.SubscriptionStatusActive,
		SubscriptionEnd:     futureTime(),
		ImagesUsedThisMonth: MonthlyImageQuota - 1,
		ImageUsageResetAt:   &anchor,
	})

	// 用掉最后一张
	acc, err := env.uc.RecordImageUsage(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, MonthlyImageQuota, acc.ImagesUsedThisMonth)

	// 超限整体失败，计数不再增长
	_, err = env.uc.RecordImageUsage(ctx, "u1")
	require.Error(t, err)
	require.Equal(t, MonthlyImageQuota, env.accounts.get("u1").ImagesUsedThisMonth)
}

func TestRecordImageUsageStaleAnchorResetsCounter(t *testing.T) {
	env := newTestEnv()
	stale := monthStartUTC(time.Now()).AddDate(0, -1, 0)
	env.accounts.put(&CreditAccount{
		UID:                 "u1",
		SubscriptionType:    constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:  constants.SubscriptionStatusActive,
		SubscriptionEnd:     futureTime(),
		ImagesUsedThisMonth: MonthlyImageQuota,
		ImageUsageResetAt:   &stale,
	})

	acc, err := env.uc.RecordImageUsage(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, acc.ImagesUsedThisMonth)
	require.True(t, acc.ImageUsageResetAt.Equal(monthStartUTC(time.Now())))
}

func TestRecordImageUsageRejectedOffPlan(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
	})

	_, err := env.uc.RecordImageUsage(context.Background(), "u1")
	require.Error(t, err)
	require.Empty(t, env.usage.recordsFor("u1"))
}
