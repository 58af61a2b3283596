package biz

import (
	"context"
	"sync"
	"testing"

	"credit-service/internal/constants"

	"github.com/stretchr/testify/require"
)

func TestEnsureAccountCreatesTrialDefaults(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	acc, err := env.uc.EnsureAccount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, constants.SubscriptionTypeFreeTrial, acc.SubscriptionType)
	require.Equal(t, constants.SubscriptionStatusActive, acc.SubscriptionStatus)
	require.Equal(t, 50, acc.ChatCredits)
	require.Equal(t, 30, acc.VoiceCredits)
	require.Equal(t, 80, acc.Credits)

	// 已存在时返回现有账户，不重置余额
	_, err = env.uc.DeductCredits(ctx, "u1", 5, constants.FeatureTypeChat)
	require.NoError(t, err)
	again, err := env.uc.EnsureAccount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 45, again.ChatCredits)
}

func TestCanUseFeatureDecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		account    *CreditAccount
		feature    string
		wantCanUse bool
		wantReason string
		wantNeeded int
	}{
		{
			name: "free trial chat with credits",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeFreeTrial,
				SubscriptionStatus: constants.SubscriptionStatusActive, ChatCredits: 5,
			},
			feature: constants.FeatureTypeChat, wantCanUse: true,
		},
		{
			name: "free trial chat exhausted",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeFreeTrial,
				SubscriptionStatus: constants.SubscriptionStatusActive, ChatCredits: 0,
			},
			feature: constants.FeatureTypeChat, wantCanUse: false,
			wantReason: constants.ReasonInsufficientChatCredits, wantNeeded: 5,
		},
		{
			name: "free trial chat below unit cost",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeFreeTrial,
				SubscriptionStatus: constants.SubscriptionStatusActive, ChatCredits: 3,
			},
			feature: constants.FeatureTypeChat, wantCanUse: false,
			wantReason: constants.ReasonInsufficientChatCredits, wantNeeded: 2,
		},
		{
			name: "chat_only chat is unlimited even with zero pools",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeChatOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
			},
			feature: constants.FeatureTypeChat, wantCanUse: true,
		},
		{
			name: "chat_only voice without credits suggests upgrade",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeChatOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
			},
			feature: constants.FeatureTypeVoice, wantCanUse: false,
			wantReason: constants.ReasonUpgradeForVoice, wantNeeded: 10,
		},
		{
			name: "chat_only voice from leftover trial pool",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeChatOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				VoiceCredits: 30,
			},
			feature: constants.FeatureTypeVoice, wantCanUse: true,
		},
		{
			name: "voice_only chat without credits suggests upgrade",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
			},
			feature: constants.FeatureTypeChat, wantCanUse: false,
			wantReason: constants.ReasonUpgradeForChat, wantNeeded: 5,
		},
		{
			name: "voice_only voice within monthly allotment",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				VoiceCreditsUsedThisMonth: 990,
			},
			feature: constants.FeatureTypeVoice, wantCanUse: true,
		},
		{
			name: "voice_only voice allotment exhausted",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				VoiceCreditsUsedThisMonth: 995,
			},
			feature: constants.FeatureTypeVoice, wantCanUse: false,
			wantReason: constants.ReasonInsufficientVoiceCredits, wantNeeded: 5,
		},
		{
			name: "voice_only voice exhausted but topup covers",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceOnly,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				VoiceCreditsUsedThisMonth: 1000, VoiceCreditsFromTopup: 10,
			},
			feature: constants.FeatureTypeVoice, wantCanUse: true,
		},
		{
			name: "voice_chat voice allotment is 1400",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceChat,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				VoiceCreditsUsedThisMonth: 1390,
			},
			feature: constants.FeatureTypeVoice, wantCanUse: true,
		},
		{
			name: "banned user denied",
			account: &CreditAccount{
				UID: "u", SubscriptionType: constants.SubscriptionTypeVoiceChat,
				SubscriptionStatus: constants.SubscriptionStatusActive, SubscriptionEnd: futureTime(),
				Banned: true,
			},
			feature: constants.FeatureTypeChat, wantCanUse: false,
			wantReason: constants.ReasonUserBanned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.accounts.put(tt.account)

			res, err := env.uc.CanUseFeature(context.Background(), tt.account.UID, tt.feature)
			require.NoError(t, err)
			require.Equal(t, tt.wantCanUse, res.CanUse)
			require.Equal(t, tt.wantReason, res.Reason)
			if tt.wantNeeded > 0 {
				require.Equal(t, tt.wantNeeded, res.CreditsNeeded)
			}
		})
	}
}

func TestCanUseFeatureUnknownUser(t *testing.T) {
	env := newTestEnv()
	res, err := env.uc.CanUseFeature(context.Background(), "nobody", constants.FeatureTypeChat)
	require.NoError(t, err)
	require.False(t, res.CanUse)
	require.Equal(t, constants.ReasonUserNotFound, res.Reason)
}

func TestLazyDowngradeOnCheck(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                       "u1",
		SubscriptionType:          constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:        constants.SubscriptionStatusActive,
		SubscriptionEnd:           pastTime(),
		ChatCredits:               100,
		VoiceCredits:              40,
		ChatCreditsFromTopup:      20,
		VoiceCreditsFromTopup:     15,
		VoiceCreditsUsedThisMonth: 300,
		VoiceCreditsUsedToday:     30,
	})

	res, err := env.uc.CanUseFeature(context.Background(), "u1", constants.FeatureTypeChat)
	require.NoError(t, err)
	// 降级后聊天只剩加购池，20 >= 5 仍可用
	require.True(t, res.CanUse)

	acc := env.accounts.get("u1")
	require.Equal(t, constants.SubscriptionTypeFreeTrial, acc.SubscriptionType)
	require.Equal(t, constants.SubscriptionStatusExpired, acc.SubscriptionStatus)
	require.Nil(t, acc.SubscriptionEnd)
	// 套餐池与使用计数清零，加购池保留
	require.Zero(t, acc.ChatCredits)
	require.Zero(t, acc.VoiceCredits)
	require.Zero(t, acc.VoiceCreditsUsedThisMonth)
	require.Zero(t, acc.VoiceCreditsUsedToday)
	require.Equal(t, 20, acc.ChatCreditsFromTopup)
	require.Equal(t, 15, acc.VoiceCreditsFromTopup)
}

func TestDeductChatFromFreePoolSyncsLegacyAggregate(t *testing.T) {
	env := newTestEnv()
	uid := "trial-user"
	env.accounts.put(&CreditAccount{
		UID:                uid,
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        50,
		Credits:            50,
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), uid, constants.FeatureTypeChat, "thread-1")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 5, res.CreditsUsed)
	require.Equal(t, 45, res.RemainingCredits)
	require.Equal(t, constants.DeductSourcePlan, res.Source)

	acc := env.accounts.get(uid)
	require.Equal(t, 45, acc.ChatCredits)
	require.Equal(t, 45, acc.Credits)

	records := env.usage.recordsFor(uid)
	require.Len(t, records, 1)
	require.Equal(t, constants.FeatureTypeChat, records[0].Feature)
	require.Equal(t, 5, records[0].CreditsUsed)
	require.Equal(t, "thread-1", records[0].ThreadID)
}

func TestDeductChatSpillsIntoTopupPool(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                  "u1",
		SubscriptionType:     constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus:   constants.SubscriptionStatusActive,
		ChatCredits:          3,
		ChatCreditsFromTopup: 10,
		Credits:              13,
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), "u1", constants.FeatureTypeChat, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, constants.DeductSourceMixed, res.Source)

	acc := env.accounts.get("u1")
	require.Zero(t, acc.ChatCredits)
	require.Equal(t, 8, acc.ChatCreditsFromTopup)
	require.Equal(t, 8, acc.Credits)
}

func TestDeductRefusalWhenExhausted(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        4,
		Credits:            4,
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), "u1", constants.FeatureTypeChat, "")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, constants.ReasonInsufficientChatCredits, res.Reason)

	// 全有或全无：失败不产生部分扣减，不落流水
	acc := env.accounts.get("u1")
	require.Equal(t, 4, acc.ChatCredits)
	require.Equal(t, 4, acc.Credits)
	require.Empty(t, env.usage.recordsFor("u1"))
}

func TestDeductUnlimitedChatIsNoOp(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeChatOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
		ChatCredits:        10,
		Credits:            10,
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), "u1", constants.FeatureTypeChat, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Zero(t, res.CreditsUsed)
	require.Equal(t, constants.DeductSourceUnlimited, res.Source)

	// 无限制组合不减任何余额，也不落流水
	acc := env.accounts.get("u1")
	require.Equal(t, 10, acc.ChatCredits)
	require.Equal(t, 10, acc.Credits)
	require.Empty(t, env.usage.recordsFor("u1"))
}

func TestDeductMonthlyVoiceIncrementsCounter(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeVoiceOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), "u1", constants.FeatureTypeVoice, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 10, res.CreditsUsed)
	require.Equal(t, constants.DeductSourcePlan, res.Source)
	require.Equal(t, 990, res.RemainingCredits)

	acc := env.accounts.get("u1")
	require.Equal(t, 10, acc.VoiceCreditsUsedThisMonth)
	require.Equal(t, 10, acc.VoiceCreditsUsedToday)
	// 月度计量不动存量池
	require.Zero(t, acc.VoiceCredits)
}

func TestDeductMonthlyVoiceBoundarySpillsIntoTopup(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// 月度额度只剩 5，加购池为空：扣 10 必须整体失败
	env.accounts.put(&CreditAccount{
		UID:                       "u1",
		SubscriptionType:          constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:        constants.SubscriptionStatusActive,
		SubscriptionEnd:           futureTime(),
		VoiceCreditsUsedThisMonth: 1395,
	})
	res, err := env.uc.DeductCreditsForUsage(ctx, "u1", constants.FeatureTypeVoice, "")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, constants.ReasonInsufficientVoiceCredits, res.Reason)
	require.Equal(t, 1395, env.accounts.get("u1").VoiceCreditsUsedThisMonth)

	// 加购池补上 5 后同样的扣费成功：月度计数顶满，加购池扣尽
	env.accounts.put(&CreditAccount{
		UID:                       "u2",
		SubscriptionType:          constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:        constants.SubscriptionStatusActive,
		SubscriptionEnd:           futureTime(),
		VoiceCreditsUsedThisMonth: 1395,
		VoiceCreditsFromTopup:     5,
	})
	res, err = env.uc.DeductCreditsForUsage(ctx, "u2", constants.FeatureTypeVoice, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, constants.DeductSourceMixed, res.Source)

	acc := env.accounts.get("u2")
	require.Equal(t, 1400, acc.VoiceCreditsUsedThisMonth)
	require.Zero(t, acc.VoiceCreditsFromTopup)
	require.Equal(t, 10, acc.VoiceCreditsUsedToday)
}

func TestDeductExpiredSubscriptionHardFails(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    pastTime(),
	})

	res, err := env.uc.DeductCreditsForUsage(context.Background(), "u1", constants.FeatureTypeVoice, "")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, constants.ReasonSubscriptionExpired, res.Reason)

	// 扣费路径不做降级，账户保持原样
	acc := env.accounts.get("u1")
	require.Equal(t, constants.SubscriptionTypeVoiceChat, acc.SubscriptionType)
}

func TestDeductInvalidAmount(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        50,
	})

	_, err := env.uc.DeductCredits(context.Background(), "u1", 0, constants.FeatureTypeChat)
	require.Error(t, err)
	_, err = env.uc.DeductCredits(context.Background(), "u1", -5, constants.FeatureTypeChat)
	require.Error(t, err)
}

func TestDeductVoiceByDurationRoundsUp(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeVoiceOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})

	// 80s + 70s = 150s = 2.5 分钟 → 25 个额度
	res, err := env.uc.DeductVoiceCreditsByDuration(context.Background(), "u1", 80, 70, "thread-9")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 25, res.CreditsUsed)
	require.InDelta(t, 2.5, res.MinutesUsed, 1e-9)

	acc := env.accounts.get("u1")
	require.Equal(t, 25, acc.VoiceCreditsUsedThisMonth)

	records := env.usage.recordsFor("u1")
	require.Len(t, records, 1)
	require.Equal(t, 150, records[0].Metadata["total_seconds"])
}

func TestDeductVoiceByDurationZeroIsNoOp(t *testing.T) {
	env := newTestEnv()
	res, err := env.uc.DeductVoiceCreditsByDuration(context.Background(), "u1", 0, 0, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Zero(t, res.CreditsUsed)
}

func TestDeductVoiceByDurationPartialMinuteBillsFullUnit(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		VoiceCredits:       30,
		Credits:            30,
	})

	// 10 秒也要按不足整额度向上取整：ceil(10/60*10) = 2
	res, err := env.uc.DeductVoiceCreditsByDuration(context.Background(), "u1", 10, 0, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.CreditsUsed)

	acc := env.accounts.get("u1")
	require.Equal(t, 28, acc.VoiceCredits)
	require.Equal(t, 28, acc.Credits)
	require.Equal(t, 2, acc.VoiceCreditsUsedToday)
}

func TestConcurrentDeductsAreLinearized(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		VoiceCredits:       15,
		Credits:            15,
	})

	// 余额 15，两个并发的 10 额度扣费只能成功一个
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.uc.DeductCredits(context.Background(), "u1", 10, constants.FeatureTypeVoice)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			failed++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, 5, env.accounts.get("u1").VoiceCredits)
}

func TestDeductInvalidatesStatusCache(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        5,
		Credits:            5,
	})
	ctx := context.Background()

	// 资格检查灌入读缓存
	res, err := env.uc.CanUseFeature(ctx, "u1", constants.FeatureTypeChat)
	require.NoError(t, err)
	require.True(t, res.CanUse)

	// 扣费后缓存失效，下一次检查读到新余额
	_, err = env.uc.DeductCredits(ctx, "u1", 5, constants.FeatureTypeChat)
	require.NoError(t, err)

	res, err = env.uc.CanUseFeature(ctx, "u1", constants.FeatureTypeChat)
	require.NoError(t, err)
	require.False(t, res.CanUse)
	require.Equal(t, constants.ReasonInsufficientChatCredits, res.Reason)
}

func TestAddCreditsGrantsChatPool(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        10,
		Credits:            10,
	})

	acc, err := env.uc.AddCredits(context.Background(), "u1", 25)
	require.NoError(t, err)
	require.Equal(t, 35, acc.ChatCredits)
	require.Equal(t, 35, acc.Credits)

	_, err = env.uc.AddCredits(context.Background(), "u1", 0)
	require.Error(t, err)
	_, err = env.uc.AddCredits(context.Background(), "missing", 5)
	require.Error(t, err)
}

func TestAddTopupCredits(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                "u1",
		SubscriptionType:   constants.SubscriptionTypeChatOnly,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		SubscriptionEnd:    futureTime(),
	})
	ctx := context.Background()

	acc, err := env.uc.AddChatTopupCredits(ctx, "u1", 500)
	require.NoError(t, err)
	require.Equal(t, 500, acc.ChatCreditsFromTopup)

	acc, err = env.uc.AddVoiceTopupCredits(ctx, "u1", 300)
	require.NoError(t, err)
	require.Equal(t, 300, acc.VoiceCreditsFromTopup)
	require.Equal(t, 800, acc.Credits)
}

func TestGetUserCreditStatus(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                       "u1",
		SubscriptionType:          constants.SubscriptionTypeVoiceChat,
		SubscriptionStatus:        constants.SubscriptionStatusActive,
		SubscriptionEnd:           futureTime(),
		VoiceCreditsUsedThisMonth: 400,
		VoiceCreditsFromTopup:     50,
	})

	status, err := env.uc.GetUserCreditStatus(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, constants.SubscriptionTypeVoiceChat, status.SubscriptionType)
	require.Equal(t, 1400, status.MonthlyVoiceAllotment)
	require.Equal(t, 1000, status.RemainingPlanVoiceCredits)
	require.Equal(t, MonthlyImageQuota, status.ImageQuota)
	require.True(t, status.CanUseChat)
	require.True(t, status.CanUseVoice)

	_, err = env.uc.GetUserCreditStatus(context.Background(), "missing")
	require.Error(t, err)
}

func TestResetDailyAndMonthlyUsage(t *testing.T) {
	env := newTestEnv()
	env.accounts.put(&CreditAccount{
		UID:                       "u1",
		SubscriptionType:          constants.SubscriptionTypeVoiceOnly,
		SubscriptionStatus:        constants.SubscriptionStatusActive,
		SubscriptionEnd:           futureTime(),
		VoiceCreditsUsedThisMonth: 200,
		VoiceCreditsUsedToday:     40,
		ImagesUsedThisMonth:       3,
	})
	ctx := context.Background()

	n, err := env.uc.ResetDailyUsage(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Zero(t, env.accounts.get("u1").VoiceCreditsUsedToday)
	require.Equal(t, 200, env.accounts.get("u1").VoiceCreditsUsedThisMonth)

	n, err = env.uc.ResetMonthlyUsage(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	acc := env.accounts.get("u1")
	require.Zero(t, acc.VoiceCreditsUsedThisMonth)
	require.Zero(t, acc.ImagesUsedThisMonth)
}
