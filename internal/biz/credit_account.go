package biz

import (
	"context"
	"errors"
	"time"

	"credit-service/internal/constants"
)

// 业务分支用的哨兵错误
// 资格/扣费的预期失败以哨兵形式在 biz 内部流转，由用例方法映射为
// 带原因的结果对象或带错误码的业务错误，服务层不会直接见到哨兵
var (
	// ErrAccountNotFound 账户不存在
	ErrAccountNotFound = errors.New("credit account not found")
	// ErrAccountBanned 用户被封禁
	ErrAccountBanned = errors.New("user is banned")
	// ErrSubscriptionExpired 订阅在扣费事务内被发现已过期
	ErrSubscriptionExpired = errors.New("subscription expired")
	// ErrInsufficientChatCredits 聊天额度不足
	ErrInsufficientChatCredits = errors.New("insufficient chat credits")
	// ErrInsufficientVoiceCredits 语音额度不足
	ErrInsufficientVoiceCredits = errors.New("insufficient voice credits")
	// ErrImageQuotaExceeded 图片额度用尽
	ErrImageQuotaExceeded = errors.New("image quota exceeded")
	// ErrImageNotInPlan 当前套餐不含图片功能
	ErrImageNotInPlan = errors.New("image uploads not available on plan")
)

// CreditAccount 用户额度账户领域对象（每用户一行，只经账本操作变更）
type CreditAccount struct {
	UID                string
	SubscriptionType   string     // free_trial / chat_only / voice_only / voice_chat
	SubscriptionStatus string     // active / canceled / past_due / incomplete / expired
	SubscriptionEnd    *time.Time // 订阅到期时间，空表示无固定期限

	// 套餐/试用额度池（降级时清零）
	ChatCredits  int
	VoiceCredits int

	// 加购额度池（一次性购买，永不随套餐变更清零）
	ChatCreditsFromTopup  int
	VoiceCreditsFromTopup int

	// Credits 遗留聚合字段，仅用于兼容旧展示，无独立语义
	Credits int

	// 使用计数（月度语音额度按计数滚动，不做存量扣减）
	VoiceCreditsUsedThisMonth int
	VoiceCreditsUsedToday     int

	// 图片额度（仅含图片功能的套餐生效）
	ImagesUsedThisMonth int
	ImageUsageResetAt   *time.Time

	Banned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone 深拷贝（时间指针按值复制）
func (a *CreditAccount) Clone() *CreditAccount {
	if a == nil {
		return nil
	}
	c := *a
	if a.SubscriptionEnd != nil {
		t := *a.SubscriptionEnd
		c.SubscriptionEnd = &t
	}
	if a.ImageUsageResetAt != nil {
		t := *a.ImageUsageResetAt
		c.ImageUsageResetAt = &t
	}
	return &c
}

// IsPaidPlan 是否付费套餐
func (a *CreditAccount) IsPaidPlan() bool {
	return a.SubscriptionType != constants.SubscriptionTypeFreeTrial
}

// SubscriptionIsExpired 付费订阅标记为 active 但到期时间已过
func (a *CreditAccount) SubscriptionIsExpired(now time.Time) bool {
	return a.IsPaidPlan() &&
		a.SubscriptionStatus == constants.SubscriptionStatusActive &&
		a.SubscriptionEnd != nil &&
		a.SubscriptionEnd.Before(now)
}

// ApplyExpiryDowngrade 过期降级：回到免费试用态
// 套餐额度池清零，使用计数清零；加购额度池保留
func (a *CreditAccount) ApplyExpiryDowngrade() {
	a.SubscriptionType = constants.SubscriptionTypeFreeTrial
	a.SubscriptionStatus = constants.SubscriptionStatusExpired
	a.SubscriptionEnd = nil
	a.ChatCredits = 0
	a.VoiceCredits = 0
	a.VoiceCreditsUsedThisMonth = 0
	a.VoiceCreditsUsedToday = 0
}

// spendFromPools 通用双池扣费：先扣主池，不足部分扣加购池
// 任一分支不足时整体失败，不做部分扣减
func spendFromPools(primary, topup, amount int) (newPrimary, newTopup, fromPrimary, fromTopup int, ok bool) {
	if primary+topup < amount {
		return primary, topup, 0, 0, false
	}
	fromPrimary = amount
	if fromPrimary > primary {
		fromPrimary = primary
	}
	fromTopup = amount - fromPrimary
	return primary - fromPrimary, topup - fromTopup, fromPrimary, fromTopup, true
}

// CreditAccountRepo 账户数据层接口（定义在 biz 层）
// UpdateWithLock 是账本唯一的变更原语：对单个用户行加锁的
// 可串行化读-改-写，fn 返回错误时整体回滚，行保持原样
type CreditAccountRepo interface {
	GetCreditAccount(ctx context.Context, userID string) (*CreditAccount, error)
	CreateCreditAccount(ctx context.Context, account *CreditAccount) error
	UpdateWithLock(ctx context.Context, userID string, fn func(*CreditAccount) error) (*CreditAccount, error)
	// AddTopupCredits 加购额度为可交换的单行增量更新，无需加锁
	AddTopupCredits(ctx context.Context, userID, feature string, amount int) (*CreditAccount, error)
	ResetDailyUsage(ctx context.Context) (int64, error)
	ResetMonthlyUsage(ctx context.Context) (int64, error)
}
