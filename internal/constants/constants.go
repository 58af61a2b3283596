package constants

// 订阅类型常量
const (
	// SubscriptionTypeFreeTrial 免费试用
	SubscriptionTypeFreeTrial = "free_trial"
	// SubscriptionTypeChatOnly 仅聊天套餐（聊天无限制）
	SubscriptionTypeChatOnly = "chat_only"
	// SubscriptionTypeVoiceOnly 仅语音套餐（语音按月额度计量）
	SubscriptionTypeVoiceOnly = "voice_only"
	// SubscriptionTypeVoiceChat 语音+聊天套餐
	SubscriptionTypeVoiceChat = "voice_chat"
)

// 订阅状态常量
const (
	// SubscriptionStatusActive 生效中
	SubscriptionStatusActive = "active"
	// SubscriptionStatusCanceled 已取消
	SubscriptionStatusCanceled = "canceled"
	// SubscriptionStatusPastDue 逾期未付
	SubscriptionStatusPastDue = "past_due"
	// SubscriptionStatusIncomplete 未完成支付
	SubscriptionStatusIncomplete = "incomplete"
	// SubscriptionStatusExpired 已过期
	SubscriptionStatusExpired = "expired"
)

// 功能类型常量
const (
	// FeatureTypeChat 聊天消息
	FeatureTypeChat = "chat"
	// FeatureTypeVoice 语音分钟
	FeatureTypeVoice = "voice"
	// FeatureTypeImage 图片上传
	FeatureTypeImage = "image"
)

// 交易类型常量
const (
	// TransactionTypeSubscription 订阅付费
	TransactionTypeSubscription = "subscription"
	// TransactionTypeTopup 一次性加购
	TransactionTypeTopup = "topup"
)

// 交易状态常量
const (
	// TransactionStatusCompleted 已完成
	TransactionStatusCompleted = "completed"
	// TransactionStatusFailed 失败
	TransactionStatusFailed = "failed"
)

// Redis Key 前缀常量
const (
	// RedisKeyCreditAccount 账户缓存 key 前缀
	RedisKeyCreditAccount = "credit:account:"
	// RedisKeyDeductLock 扣费锁 key 前缀
	RedisKeyDeductLock = "credit:deduct:lock:"
)

// 资格检查结果常量（用于指标）
const (
	// CheckResultAllowed 允许
	CheckResultAllowed = "allowed"
	// CheckResultDenied 拒绝
	CheckResultDenied = "denied"
	// CheckResultError 错误
	CheckResultError = "error"
)

// 扣费来源常量（用于指标和流水）
const (
	// DeductSourcePlan 扣套餐额度
	DeductSourcePlan = "plan"
	// DeductSourceTopup 扣加购额度
	DeductSourceTopup = "topup"
	// DeductSourceMixed 混合扣费
	DeductSourceMixed = "mixed"
	// DeductSourceUnlimited 无限制（不扣费）
	DeductSourceUnlimited = "unlimited"
)

// 资格拒绝原因常量（前端据此渲染购买/升级提示）
const (
	// ReasonUserNotFound 用户不存在
	ReasonUserNotFound = "user_not_found"
	// ReasonUserBanned 用户被封禁
	ReasonUserBanned = "user_banned"
	// ReasonInsufficientChatCredits 聊天额度不足
	ReasonInsufficientChatCredits = "insufficient_chat_credits"
	// ReasonInsufficientVoiceCredits 语音额度不足
	ReasonInsufficientVoiceCredits = "insufficient_voice_credits"
	// ReasonUpgradeForChat 建议升级以获得聊天功能
	ReasonUpgradeForChat = "upgrade_required_for_chat"
	// ReasonUpgradeForVoice 建议升级以获得语音功能
	ReasonUpgradeForVoice = "upgrade_required_for_voice"
	// ReasonImageQuotaExceeded 图片额度用尽
	ReasonImageQuotaExceeded = "image_quota_exceeded"
	// ReasonImageNotInPlan 当前套餐不含图片功能
	ReasonImageNotInPlan = "image_not_available_on_plan"
	// ReasonSubscriptionExpired 订阅已过期
	ReasonSubscriptionExpired = "subscription_expired"
	// ReasonFeatureUnsupported 未知功能类型
	ReasonFeatureUnsupported = "unsupported_feature"
)

// 统计周期常量
const (
	// StatsPeriodToday 今日
	StatsPeriodToday = "today"
	// StatsPeriodMonth 本月
	StatsPeriodMonth = "month"
)
