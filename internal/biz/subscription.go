package biz

import (
	"context"
	"errors"
	"time"

	"credit-service/internal/constants"
	creditErrors "credit-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
)

// ActivateSubscription 订阅支付回调：激活/续费套餐
// 按外部支付流水号幂等：同一 payment_id 只生效一次，重复投递返回当前账户
// 激活会清零使用计数，但不动额度池（加购池本就独立；试用池留给交叉功能）
func (uc *CreditUseCase) ActivateSubscription(ctx context.Context, userID, planName string, endDate time.Time, paymentID string, amount float64) (*CreditAccount, error) {
	plan, ok := GetPlan(planName)
	if !ok || plan.OneTime {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUnknownPlan)
	}
	if paymentID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodePaymentIDRequired)
	}

	// 幂等检查：该支付流水已处理过则直接返回当前账户
	existing, err := uc.txn.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeTransactionGetFailed)
	}
	if existing != nil {
		uc.log.Infof("Subscription payment already processed: payment_id=%s, user_id=%s", paymentID, userID)
		acc, err := uc.repo.GetCreditAccount(ctx, userID)
		if err != nil {
			return nil, err
		}
		return acc, nil
	}

	end := endDate
	updated, err := uc.repo.UpdateWithLock(ctx, userID, func(a *CreditAccount) error {
		a.SubscriptionType = plan.Name
		a.SubscriptionStatus = constants.SubscriptionStatusActive
		a.SubscriptionEnd = &end
		a.VoiceCreditsUsedThisMonth = 0
		a.VoiceCreditsUsedToday = 0
		a.ImagesUsedThisMonth = 0
		a.ImageUsageResetAt = nil
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountUpdateFailed)
	}
	uc.cache.Remove(userID)

	// 账户变更成功后落交易记录；记录失败时返回错误，回调重试会重放
	// 同样的激活（同值幂等）并补记交易
	if _, _, err := uc.txn.RecordPayment(ctx, &Transaction{
		UserID:    userID,
		Type:      constants.TransactionTypeSubscription,
		Amount:    amount,
		PaymentID: paymentID,
		Status:    constants.TransactionStatusCompleted,
		Metadata:  map[string]interface{}{"plan": plan.Name, "end_date": end.Format(time.RFC3339)},
	}); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.SubscriptionTotal.WithLabelValues(plan.Name).Inc()
	}
	uc.log.Infof("Subscription activated: user_id=%s, plan=%s, end=%s", userID, plan.Name, end.Format(time.RFC3339))
	return updated, nil
}

// ProcessTopupPurchase 加购包支付回调：入账一次性额度
// 按外部支付流水号幂等，幂等键占用与入账走同一数据库事务
func (uc *CreditUseCase) ProcessTopupPurchase(ctx context.Context, userID, packName, paymentID string, amount float64) (*CreditAccount, error) {
	pack, ok := GetPlan(packName)
	if !ok || !pack.OneTime {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUnknownPlan)
	}
	if paymentID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodePaymentIDRequired)
	}

	// 幂等键占用与入账在同一数据库事务内完成：
	// 交易记录落库失败时入账一并回滚，回调重试不会重复到账
	updated, created, err := uc.txn.RecordTopupPayment(ctx, &Transaction{
		UserID:       userID,
		Type:         constants.TransactionTypeTopup,
		Amount:       amount,
		CreditsAdded: pack.TopupCredits,
		PaymentID:    paymentID,
		Status:       constants.TransactionStatusCompleted,
		Metadata:     map[string]interface{}{"pack": pack.Name, "feature": pack.TopupFeature},
	}, pack.TopupFeature, pack.TopupCredits)
	if err != nil {
		return nil, err
	}
	if !created {
		uc.log.Infof("Top-up payment already processed: payment_id=%s, user_id=%s", paymentID, userID)
		return updated, nil
	}

	uc.cache.Remove(userID)
	if uc.metrics != nil {
		uc.metrics.TopupTotal.WithLabelValues(pack.TopupFeature).Inc()
		uc.metrics.TopupAmount.WithLabelValues(pack.TopupFeature).Add(float64(pack.TopupCredits))
	}
	uc.log.Infof("Top-up processed: user_id=%s, pack=%s, credits=%d", userID, pack.Name, pack.TopupCredits)
	return updated, nil
}

// ResetUsageCounters 管理端手动重置某用户的使用计数
func (uc *CreditUseCase) ResetUsageCounters(ctx context.Context, userID string) (*CreditAccount, error) {
	updated, err := uc.repo.UpdateWithLock(ctx, userID, func(a *CreditAccount) error {
		a.VoiceCreditsUsedThisMonth = 0
		a.VoiceCreditsUsedToday = 0
		a.ImagesUsedThisMonth = 0
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeResetUsageFailed)
	}
	uc.cache.Remove(userID)
	uc.log.Infof("Usage counters reset: user_id=%s", userID)
	return updated, nil
}

// ResetDailyUsage 每日语音使用计数清零（cron 每日 00:00 执行）
// 批量 UPDATE 不会逐个失效读缓存，读缓存 TTL 为秒级，可接受
func (uc *CreditUseCase) ResetDailyUsage(ctx context.Context) (int64, error) {
	n, err := uc.repo.ResetDailyUsage(ctx)
	if err != nil {
		return 0, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeResetUsageFailed)
	}
	uc.log.Infof("Daily voice usage reset completed: accounts=%d", n)
	return n, nil
}

// ResetMonthlyUsage 月度使用计数清零（cron 每月 1 日 00:00 执行）
func (uc *CreditUseCase) ResetMonthlyUsage(ctx context.Context) (int64, error) {
	n, err := uc.repo.ResetMonthlyUsage(ctx)
	if err != nil {
		return 0, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeResetUsageFailed)
	}
	uc.log.Infof("Monthly usage reset completed: accounts=%d", n)
	return n, nil
}
