package biz

import (
	"context"
	"errors"
	"time"

	"credit-service/internal/constants"
	creditErrors "credit-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
)

// imageQuotaFor 某套餐的每月图片额度，不含图片功能时为 0
func imageQuotaFor(subType string) int {
	if p, ok := GetPlan(subType); ok {
		return p.ImageQuota
	}
	return 0
}

// monthStartUTC 当前月起点（UTC）
func monthStartUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// imageUsedThisMonth 图片月度计数按锚点自愈：锚点早于本月起点视为 0
// cron 停摆时图片额度窗口也不会被无限拉长
func imageUsedThisMonth(a *CreditAccount, now time.Time) int {
	if a.ImageUsageResetAt == nil || a.ImageUsageResetAt.Before(monthStartUTC(now)) {
		return 0
	}
	return a.ImagesUsedThisMonth
}

// CanUploadImage 图片上传资格检查（仅含图片功能的套餐可用）
func (uc *CreditUseCase) CanUploadImage(ctx context.Context, userID string) (*CreditCheckResult, error) {
	acc, err := uc.getAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonUserNotFound}, nil
	}
	if acc.Banned {
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonUserBanned}, nil
	}
	acc, err = uc.checkAndMaybeDowngrade(ctx, acc)
	if err != nil {
		return nil, err
	}

	quota := imageQuotaFor(acc.SubscriptionType)
	if quota == 0 {
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonImageNotInPlan}, nil
	}
	if imageUsedThisMonth(acc, time.Now()) >= quota {
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonImageQuotaExceeded}, nil
	}
	return &CreditCheckResult{CanUse: true}, nil
}

// RecordImageUsage 记一次图片上传（行锁内重验额度，超限整体失败）
func (uc *CreditUseCase) RecordImageUsage(ctx context.Context, userID string) (*CreditAccount, error) {
	updated, err := uc.repo.UpdateWithLock(ctx, userID, func(a *CreditAccount) error {
		if a.SubscriptionIsExpired(time.Now()) {
			return ErrSubscriptionExpired
		}
		quota := imageQuotaFor(a.SubscriptionType)
		if quota == 0 {
			return ErrImageNotInPlan
		}
		now := time.Now().UTC()
		if a.ImageUsageResetAt == nil || a.ImageUsageResetAt.Before(monthStartUTC(now)) {
			a.ImagesUsedThisMonth = 0
			t := monthStartUTC(now)
			a.ImageUsageResetAt = &t
		}
		if a.ImagesUsedThisMonth >= quota {
			return ErrImageQuotaExceeded
		}
		a.ImagesUsedThisMonth++
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		case errors.Is(err, ErrSubscriptionExpired):
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeSubscriptionExpired)
		case errors.Is(err, ErrImageNotInPlan):
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeImageNotInPlan)
		case errors.Is(err, ErrImageQuotaExceeded):
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeImageQuotaExceeded)
		default:
			return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountUpdateFailed)
		}
	}
	uc.cache.Remove(userID)
	uc.appendUsage(ctx, userID, constants.FeatureTypeImage, 0, "", nil)
	return updated, nil
}
