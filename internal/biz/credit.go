package biz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"credit-service/internal/constants"
	creditErrors "credit-service/internal/errors"
	"credit-service/internal/metrics"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// CreditCheckResult 资格检查结果（预期失败以结果返回，不抛错误）
type CreditCheckResult struct {
	CanUse        bool
	Reason        string // 拒绝原因，允许时为空
	CreditsNeeded int    // 距离可用还差多少额度，可计算时填写
}

// DeductResult 按次扣费结果
type DeductResult struct {
	Success          bool
	CreditsUsed      int
	RemainingCredits int
	Source           string // plan/topup/mixed/unlimited
	Reason           string // 失败原因
}

// VoiceDeductResult 按时长扣费结果
type VoiceDeductResult struct {
	Success          bool
	CreditsUsed      int
	MinutesUsed      float64
	RemainingCredits int
	Reason           string
}

// CreditStatus 账户额度读模型（展示层使用）
type CreditStatus struct {
	UserID                    string
	SubscriptionType          string
	SubscriptionStatus        string
	SubscriptionEnd           *time.Time
	ChatCredits               int
	VoiceCredits              int
	ChatCreditsFromTopup      int
	VoiceCreditsFromTopup     int
	Credits                   int
	VoiceCreditsUsedThisMonth int
	VoiceCreditsUsedToday     int
	MonthlyVoiceAllotment     int
	RemainingPlanVoiceCredits int
	ImagesUsedThisMonth       int
	ImageQuota                int
	CanUseChat                bool
	CanUseVoice               bool
}

// CreditUseCase 额度账本业务逻辑
// 账户行只经本用例的扣费/加购/订阅入口变更，其他组件一律只读
type CreditUseCase struct {
	repo    CreditAccountRepo
	usage   *UsageRecordUseCase
	txn     *TransactionUseCase
	cache   StatusCache
	conf    *CreditConfig
	log     *log.Helper
	metrics *metrics.CreditMetrics
}

// NewCreditUseCase 创建额度 UseCase
func NewCreditUseCase(
	repo CreditAccountRepo,
	usage *UsageRecordUseCase,
	txn *TransactionUseCase,
	cache StatusCache,
	conf *CreditConfig,
	logger log.Logger,
) *CreditUseCase {
	return &CreditUseCase{
		repo:    repo,
		usage:   usage,
		txn:     txn,
		cache:   cache,
		conf:    conf,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// EnsureAccount 获取账户，不存在时按试用默认值创建（注册时调用）
func (uc *CreditUseCase) EnsureAccount(ctx context.Context, userID string) (*CreditAccount, error) {
	if userID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidUserID)
	}
	acc, err := uc.repo.GetCreditAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		return acc, nil
	}

	acc = &CreditAccount{
		UID:                userID,
		SubscriptionType:   constants.SubscriptionTypeFreeTrial,
		SubscriptionStatus: constants.SubscriptionStatusActive,
		ChatCredits:        uc.conf.TrialChatCredits,
		VoiceCredits:       uc.conf.TrialVoiceCredits,
		Credits:            uc.conf.TrialChatCredits + uc.conf.TrialVoiceCredits,
	}
	if err := uc.repo.CreateCreditAccount(ctx, acc); err != nil {
		// 并发注册可能撞唯一键，重新读取
		existing, getErr := uc.repo.GetCreditAccount(ctx, userID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountCreateFailed)
	}
	return acc, nil
}

// getAccount 经读缓存获取账户（资格检查路径允许轻微过期的读）
func (uc *CreditUseCase) getAccount(ctx context.Context, userID string) (*CreditAccount, error) {
	if userID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidUserID)
	}
	if acc, ok := uc.cache.Get(userID); ok {
		if uc.metrics != nil {
			uc.metrics.StatusCacheTotal.WithLabelValues("hit").Inc()
		}
		return acc, nil
	}
	if uc.metrics != nil {
		uc.metrics.StatusCacheTotal.WithLabelValues("miss").Inc()
	}
	acc, err := uc.repo.GetCreditAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc != nil {
		uc.cache.Add(userID, acc)
	}
	return acc, nil
}

// checkAndMaybeDowngrade 过期检查与惰性降级，资格检查契约中的显式一步
// 付费订阅 active 且已过期时在行锁内降级为免费试用态后返回新账户
// 这是一个带副作用的读：调用方需容忍资格检查会变更订阅状态
func (uc *CreditUseCase) checkAndMaybeDowngrade(ctx context.Context, acc *CreditAccount) (*CreditAccount, error) {
	if !acc.SubscriptionIsExpired(time.Now()) {
		return acc, nil
	}

	updated, err := uc.repo.UpdateWithLock(ctx, acc.UID, func(a *CreditAccount) error {
		// 并发检查可能已经降级过，锁内重验
		if !a.SubscriptionIsExpired(time.Now()) {
			return nil
		}
		a.ApplyExpiryDowngrade()
		return nil
	})
	if err != nil {
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountUpdateFailed)
	}
	uc.cache.Remove(acc.UID)
	if uc.metrics != nil {
		uc.metrics.DowngradeTotal.Inc()
	}
	uc.log.Infof("Lazily downgraded expired subscription: user_id=%s", acc.UID)
	return updated, nil
}

// availableChatCredits 聊天可用额度（自由池+加购池）
func availableChatCredits(a *CreditAccount) int {
	return a.ChatCredits + a.ChatCreditsFromTopup
}

// availableVoiceCredits 语音可用额度
// 月度计量套餐为剩余月度额度+加购池，其余为自由池+加购池
func availableVoiceCredits(a *CreditAccount) int {
	if monthlyVoiceTracked(a.SubscriptionType) {
		remaining := monthlyVoiceAllotment(a.SubscriptionType) - a.VoiceCreditsUsedThisMonth
		if remaining < 0 {
			remaining = 0
		}
		return remaining + a.VoiceCreditsFromTopup
	}
	return a.VoiceCredits + a.VoiceCreditsFromTopup
}

// evaluateFeature 分套餐的资格判定表
// 阈值即单次成本：保证调用方至少能负担一个计费单位
func evaluateFeature(a *CreditAccount, feature string) *CreditCheckResult {
	if featureUnlimited(a.SubscriptionType, feature) {
		return &CreditCheckResult{CanUse: true}
	}

	switch feature {
	case constants.FeatureTypeChat:
		avail := availableChatCredits(a)
		if avail >= ChatMessageCost {
			return &CreditCheckResult{CanUse: true}
		}
		reason := constants.ReasonInsufficientChatCredits
		if a.SubscriptionType == constants.SubscriptionTypeVoiceOnly {
			// voice_only 用户聊天额度耗尽时引导升级
			reason = constants.ReasonUpgradeForChat
		}
		return &CreditCheckResult{CanUse: false, Reason: reason, CreditsNeeded: ChatMessageCost - avail}
	case constants.FeatureTypeVoice:
		avail := availableVoiceCredits(a)
		if avail >= VoiceMinuteCost {
			return &CreditCheckResult{CanUse: true}
		}
		reason := constants.ReasonInsufficientVoiceCredits
		if a.SubscriptionType == constants.SubscriptionTypeChatOnly {
			reason = constants.ReasonUpgradeForVoice
		}
		return &CreditCheckResult{CanUse: false, Reason: reason, CreditsNeeded: VoiceMinuteCost - avail}
	}
	return &CreditCheckResult{CanUse: false, Reason: constants.ReasonFeatureUnsupported}
}

// CanUseFeature 资格检查："该用户现在能否使用 chat/voice"
// 任何计量动作放行前都要先过这里
func (uc *CreditUseCase) CanUseFeature(ctx context.Context, userID, feature string) (*CreditCheckResult, error) {
	startTime := time.Now()
	defer func() {
		if uc.metrics != nil {
			uc.metrics.CheckDuration.WithLabelValues(feature).Observe(time.Since(startTime).Seconds())
		}
	}()

	if feature != constants.FeatureTypeChat && feature != constants.FeatureTypeVoice {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeFeatureNotAvailable)
	}

	acc, err := uc.getAccount(ctx, userID)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.CheckTotal.WithLabelValues(feature, constants.CheckResultError).Inc()
		}
		return nil, err
	}
	if acc == nil {
		uc.countCheck(feature, false)
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonUserNotFound}, nil
	}
	if acc.Banned {
		uc.countCheck(feature, false)
		return &CreditCheckResult{CanUse: false, Reason: constants.ReasonUserBanned}, nil
	}

	acc, err = uc.checkAndMaybeDowngrade(ctx, acc)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.CheckTotal.WithLabelValues(feature, constants.CheckResultError).Inc()
		}
		return nil, err
	}

	res := evaluateFeature(acc, feature)
	uc.countCheck(feature, res.CanUse)
	uc.observeLowCredit(acc, feature)
	return res, nil
}

// countCheck 记录资格检查结果指标
func (uc *CreditUseCase) countCheck(feature string, allowed bool) {
	if uc.metrics == nil {
		return
	}
	result := constants.CheckResultDenied
	if allowed {
		result = constants.CheckResultAllowed
	}
	uc.metrics.CheckTotal.WithLabelValues(feature, result).Inc()
}

// observeLowCredit 月度计量语音的低额度告警
func (uc *CreditUseCase) observeLowCredit(a *CreditAccount, feature string) {
	if uc.metrics == nil || feature != constants.FeatureTypeVoice {
		return
	}
	allot := monthlyVoiceAllotment(a.SubscriptionType)
	if allot == 0 {
		return
	}
	remaining := allot - a.VoiceCreditsUsedThisMonth
	if remaining < 0 {
		remaining = 0
	}
	remainingPercent := float64(remaining) / float64(allot) * 100
	if remainingPercent < uc.conf.CreditLowPercentThreshold {
		uc.metrics.CreditLowAlert.WithLabelValues(feature).Set(1)
	} else {
		uc.metrics.CreditLowAlert.WithLabelValues(feature).Set(0)
	}
}

// deduct 核心原子扣费
// 无限制组合为无操作（不落流水不减额度）；计量组合在行锁事务内完成
// 全部校验与扣减，失败整体回滚。扣费路径发现过期直接硬失败，不做降级：
// 降级只发生在读侧资格检查，避免一次操作里同时改套餐又扣费
func (uc *CreditUseCase) deduct(ctx context.Context, userID string, amount int, feature string) (*CreditAccount, string, error) {
	if amount <= 0 {
		return nil, "", pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidAmount)
	}

	startTime := time.Now()
	defer func() {
		if uc.metrics != nil {
			uc.metrics.DeductDuration.WithLabelValues(feature).Observe(time.Since(startTime).Seconds())
		}
	}()

	// 绕过读缓存取最新账户做前置分支
	acc, err := uc.repo.GetCreditAccount(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if acc == nil {
		return nil, "", ErrAccountNotFound
	}
	if acc.Banned {
		return nil, "", ErrAccountBanned
	}
	if acc.SubscriptionIsExpired(time.Now()) {
		return nil, "", ErrSubscriptionExpired
	}
	if featureUnlimited(acc.SubscriptionType, feature) {
		if uc.metrics != nil {
			uc.metrics.DeductTotal.WithLabelValues(feature, constants.DeductSourceUnlimited).Inc()
		}
		return acc, constants.DeductSourceUnlimited, nil
	}

	var source string
	updated, err := uc.repo.UpdateWithLock(ctx, userID, func(a *CreditAccount) error {
		// 锁内重验，锁必须覆盖校验+扣减全程，两个并发扣费不能都
		// 基于同一份旧余额通过充足性检查
		if a.SubscriptionIsExpired(time.Now()) {
			return ErrSubscriptionExpired
		}

		switch {
		case feature == constants.FeatureTypeVoice && monthlyVoiceTracked(a.SubscriptionType):
			// 月度计量语音：先消耗剩余月度额度（只涨计数），不足部分扣加购池
			allot := monthlyVoiceAllotment(a.SubscriptionType)
			remainingPlan := allot - a.VoiceCreditsUsedThisMonth
			if remainingPlan < 0 {
				remainingPlan = 0
			}
			if remainingPlan+a.VoiceCreditsFromTopup < amount {
				return fmt.Errorf("%w: plan remaining %d, topup %d, need %d",
					ErrInsufficientVoiceCredits, remainingPlan, a.VoiceCreditsFromTopup, amount)
			}
			fromPlan := amount
			if fromPlan > remainingPlan {
				fromPlan = remainingPlan
			}
			fromTopup := amount - fromPlan
			a.VoiceCreditsUsedThisMonth += fromPlan
			a.VoiceCreditsFromTopup -= fromTopup
			a.VoiceCreditsUsedToday += amount
			source = deductSource(fromPlan, fromTopup)
		case feature == constants.FeatureTypeChat:
			// 自由池聊天（voice_only / free_trial）
			newPrimary, newTopup, fromPrimary, fromTopup, ok := spendFromPools(a.ChatCredits, a.ChatCreditsFromTopup, amount)
			if !ok {
				return fmt.Errorf("%w: available %d, need %d",
					ErrInsufficientChatCredits, a.ChatCredits+a.ChatCreditsFromTopup, amount)
			}
			a.ChatCredits, a.ChatCreditsFromTopup = newPrimary, newTopup
			a.Credits -= amount // 遗留聚合字段保持同步
			source = deductSource(fromPrimary, fromTopup)
		case feature == constants.FeatureTypeVoice:
			// 自由池语音（chat_only / free_trial）
			newPrimary, newTopup, fromPrimary, fromTopup, ok := spendFromPools(a.VoiceCredits, a.VoiceCreditsFromTopup, amount)
			if !ok {
				return fmt.Errorf("%w: available %d, need %d",
					ErrInsufficientVoiceCredits, a.VoiceCredits+a.VoiceCreditsFromTopup, amount)
			}
			a.VoiceCredits, a.VoiceCreditsFromTopup = newPrimary, newTopup
			a.Credits -= amount
			a.VoiceCreditsUsedToday += amount
			source = deductSource(fromPrimary, fromTopup)
		default:
			return pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeFeatureNotAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	uc.cache.Remove(userID)
	if uc.metrics != nil {
		uc.metrics.DeductTotal.WithLabelValues(feature, source).Inc()
		uc.metrics.DeductAmount.WithLabelValues(feature, source).Add(float64(amount))
	}
	return updated, source, nil
}

// deductSource 扣费来源标签
func deductSource(fromPlan, fromTopup int) string {
	switch {
	case fromPlan > 0 && fromTopup > 0:
		return constants.DeductSourceMixed
	case fromTopup > 0:
		return constants.DeductSourceTopup
	default:
		return constants.DeductSourcePlan
	}
}

// refusalReason 将扣费哨兵错误映射为对外原因，非预期错误返回 false
func refusalReason(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return constants.ReasonUserNotFound, true
	case errors.Is(err, ErrAccountBanned):
		return constants.ReasonUserBanned, true
	case errors.Is(err, ErrSubscriptionExpired):
		return constants.ReasonSubscriptionExpired, true
	case errors.Is(err, ErrInsufficientChatCredits):
		return constants.ReasonInsufficientChatCredits, true
	case errors.Is(err, ErrInsufficientVoiceCredits):
		return constants.ReasonInsufficientVoiceCredits, true
	}
	return "", false
}

// wrapDeductError 将扣费哨兵错误映射为带错误码的业务错误（直接对外抛错的路径用）
func (uc *CreditUseCase) wrapDeductError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
	case errors.Is(err, ErrAccountBanned):
		return pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserBanned)
	case errors.Is(err, ErrSubscriptionExpired):
		return pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeSubscriptionExpired)
	case errors.Is(err, ErrInsufficientChatCredits):
		return pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeInsufficientChatCredits)
	case errors.Is(err, ErrInsufficientVoiceCredits):
		return pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeInsufficientVoiceCredits)
	default:
		return pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeDeductionFailed)
	}
}

// DeductCredits 原子扣减指定数量的额度，返回更新后的账户
func (uc *CreditUseCase) DeductCredits(ctx context.Context, userID string, amount int, feature string) (*CreditAccount, error) {
	acc, _, err := uc.deduct(ctx, userID, amount, feature)
	if err != nil {
		return nil, uc.wrapDeductError(ctx, err)
	}
	return acc, nil
}

// remainingFor 扣费后对外报告的剩余可用额度
func remainingFor(a *CreditAccount, feature string) int {
	if feature == constants.FeatureTypeChat {
		return availableChatCredits(a)
	}
	return availableVoiceCredits(a)
}

// DeductCreditsForUsage 一次功能使用的扣费（chat 一条消息 / voice 一分钟）
// 预期失败（余额不足等）以结果返回；成功后追加使用流水并失效读缓存
func (uc *CreditUseCase) DeductCreditsForUsage(ctx context.Context, userID, feature, threadID string) (*DeductResult, error) {
	var cost int
	switch feature {
	case constants.FeatureTypeChat:
		cost = ChatMessageCost
	case constants.FeatureTypeVoice:
		cost = VoiceMinuteCost
	default:
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeFeatureNotAvailable)
	}

	acc, source, err := uc.deduct(ctx, userID, cost, feature)
	if err != nil {
		if reason, ok := refusalReason(err); ok {
			return &DeductResult{Success: false, Reason: reason}, nil
		}
		return nil, uc.wrapDeductError(ctx, err)
	}

	creditsUsed := cost
	if source == constants.DeductSourceUnlimited {
		creditsUsed = 0
	}
	if creditsUsed > 0 {
		uc.appendUsage(ctx, userID, feature, creditsUsed, threadID, nil)
	}

	return &DeductResult{
		Success:          true,
		CreditsUsed:      creditsUsed,
		RemainingCredits: remainingFor(acc, feature),
		Source:           source,
	}, nil
}

// DeductVoiceCreditsByDuration 语音会话按时长切片计费
// 双向时长合并计算分钟数，不足整额度向上取整，避免碎片时长漏计费
func (uc *CreditUseCase) DeductVoiceCreditsByDuration(ctx context.Context, userID string, userSeconds, botSeconds int, threadID string) (*VoiceDeductResult, error) {
	totalSeconds := userSeconds + botSeconds
	if totalSeconds <= 0 {
		return &VoiceDeductResult{Success: true}, nil
	}

	minutes := float64(totalSeconds) / 60.0
	credits := int(math.Ceil(minutes * VoiceMinuteCost))

	acc, _, err := uc.deduct(ctx, userID, credits, constants.FeatureTypeVoice)
	if err != nil {
		if reason, ok := refusalReason(err); ok {
			return &VoiceDeductResult{Success: false, MinutesUsed: minutes, Reason: reason}, nil
		}
		return nil, uc.wrapDeductError(ctx, err)
	}

	uc.appendUsage(ctx, userID, constants.FeatureTypeVoice, credits, threadID, map[string]interface{}{
		"user_seconds":  userSeconds,
		"bot_seconds":   botSeconds,
		"total_seconds": totalSeconds,
		"minutes":       minutes,
	})

	return &VoiceDeductResult{
		Success:          true,
		CreditsUsed:      credits,
		MinutesUsed:      minutes,
		RemainingCredits: availableVoiceCredits(acc),
	}, nil
}

// appendUsage 追加使用流水。流水是审计尾巴，失败只告警不回滚扣费
func (uc *CreditUseCase) appendUsage(ctx context.Context, userID, feature string, creditsUsed int, threadID string, metadata map[string]interface{}) {
	if err := uc.usage.Record(ctx, &UsageRecord{
		UserID:      userID,
		Feature:     feature,
		CreditsUsed: creditsUsed,
		ThreadID:    threadID,
		Metadata:    metadata,
	}); err != nil {
		uc.log.Errorf("Failed to append usage record: user_id=%s, feature=%s, error=%v", userID, feature, err)
	}
}

// AddCredits 管理端补发套餐/试用聊天额度（同步遗留聚合字段）
func (uc *CreditUseCase) AddCredits(ctx context.Context, userID string, amount int) (*CreditAccount, error) {
	if amount <= 0 {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidAmount)
	}
	updated, err := uc.repo.UpdateWithLock(ctx, userID, func(a *CreditAccount) error {
		a.ChatCredits += amount
		a.Credits += amount
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountUpdateFailed)
	}
	uc.cache.Remove(userID)
	return updated, nil
}

// AddChatTopupCredits 增加聊天加购额度
func (uc *CreditUseCase) AddChatTopupCredits(ctx context.Context, userID string, amount int) (*CreditAccount, error) {
	return uc.addTopup(ctx, userID, constants.FeatureTypeChat, amount)
}

// AddVoiceTopupCredits 增加语音加购额度
func (uc *CreditUseCase) AddVoiceTopupCredits(ctx context.Context, userID string, amount int) (*CreditAccount, error) {
	return uc.addTopup(ctx, userID, constants.FeatureTypeVoice, amount)
}

// addTopup 加购入口：可交换的单行增量，无需行锁，并发加购安全
func (uc *CreditUseCase) addTopup(ctx context.Context, userID, feature string, amount int) (*CreditAccount, error) {
	if amount <= 0 {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidAmount)
	}
	updated, err := uc.repo.AddTopupCredits(ctx, userID, feature, amount)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeAccountUpdateFailed)
	}
	uc.cache.Remove(userID)
	if uc.metrics != nil {
		uc.metrics.TopupTotal.WithLabelValues(feature).Inc()
		uc.metrics.TopupAmount.WithLabelValues(feature).Add(float64(amount))
	}
	return updated, nil
}

// GetUserCreditStatus 账户额度读模型（含过期惰性降级与两项资格判定）
func (uc *CreditUseCase) GetUserCreditStatus(ctx context.Context, userID string) (*CreditStatus, error) {
	acc, err := uc.getAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
	}
	acc, err = uc.checkAndMaybeDowngrade(ctx, acc)
	if err != nil {
		return nil, err
	}

	allot := monthlyVoiceAllotment(acc.SubscriptionType)
	remainingPlan := allot - acc.VoiceCreditsUsedThisMonth
	if remainingPlan < 0 {
		remainingPlan = 0
	}
	imageQuota := 0
	if p, ok := GetPlan(acc.SubscriptionType); ok {
		imageQuota = p.ImageQuota
	}

	return &CreditStatus{
		UserID:                    acc.UID,
		SubscriptionType:          acc.SubscriptionType,
		SubscriptionStatus:        acc.SubscriptionStatus,
		SubscriptionEnd:           acc.SubscriptionEnd,
		ChatCredits:               acc.ChatCredits,
		VoiceCredits:              acc.VoiceCredits,
		ChatCreditsFromTopup:      acc.ChatCreditsFromTopup,
		VoiceCreditsFromTopup:     acc.VoiceCreditsFromTopup,
		Credits:                   acc.Credits,
		VoiceCreditsUsedThisMonth: acc.VoiceCreditsUsedThisMonth,
		VoiceCreditsUsedToday:     acc.VoiceCreditsUsedToday,
		MonthlyVoiceAllotment:     allot,
		RemainingPlanVoiceCredits: remainingPlan,
		ImagesUsedThisMonth:       acc.ImagesUsedThisMonth,
		ImageQuota:                imageQuota,
		CanUseChat:                !acc.Banned && evaluateFeature(acc, constants.FeatureTypeChat).CanUse,
		CanUseVoice:               !acc.Banned && evaluateFeature(acc, constants.FeatureTypeVoice).CanUse,
	}, nil
}
