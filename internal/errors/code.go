package errors

import (
	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	i18nPkg "github.com/gaoyong06/go-pkg/middleware/i18n"
)

func init() {
	// 初始化全局错误管理器（使用项目特定的配置）
	pkgErrors.InitGlobalErrorManager("i18n", i18nPkg.Language)
}

// Credit Service 错误码定义
// 错误码格式：SSMMEE (6位数字)
//   SS: 服务标识，Credit 固定为 21
//   MM: 模块标识，按业务划分
//   EE: 模块内错误序号
//
// 模块划分：
//   00: 通用模块（复用 go-pkg 通用错误码）
//   01: 账户模块
//   02: 扣费模块
//   03: 订阅模块
//   04: 交易模块
//   05: 图片额度模块
//   06-99: 预留扩展

// 账户模块错误码 (210100-210199)
const (
	// ErrCodeUserNotFound 用户额度账户不存在
	ErrCodeUserNotFound = 210101
	// ErrCodeUserBanned 用户已被封禁
	ErrCodeUserBanned = 210102
	// ErrCodeAccountCreateFailed 账户创建失败
	ErrCodeAccountCreateFailed = 210103
	// ErrCodeAccountUpdateFailed 账户更新失败
	ErrCodeAccountUpdateFailed = 210104
)

// 扣费模块错误码 (210200-210299)
const (
	// ErrCodeInsufficientChatCredits 聊天额度不足
	ErrCodeInsufficientChatCredits = 210201
	// ErrCodeInsufficientVoiceCredits 语音额度不足
	ErrCodeInsufficientVoiceCredits = 210202
	// ErrCodeDeductionFailed 扣费失败
	ErrCodeDeductionFailed = 210203
	// ErrCodeDeductLockFailed 获取扣费锁失败
	ErrCodeDeductLockFailed = 210204
	// ErrCodeInvalidAmount 非法的额度数量
	ErrCodeInvalidAmount = 210205
)

// 订阅模块错误码 (210300-210399)
const (
	// ErrCodeSubscriptionExpired 订阅已过期
	ErrCodeSubscriptionExpired = 210301
	// ErrCodeFeatureNotAvailable 当前套餐不支持该功能
	ErrCodeFeatureNotAvailable = 210302
	// ErrCodeUnknownPlan 未知的套餐名称
	ErrCodeUnknownPlan = 210303
	// ErrCodeInvalidEndDate 非法的订阅到期时间
	ErrCodeInvalidEndDate = 210304
)

// 交易模块错误码 (210400-210499)
const (
	// ErrCodeTransactionCreateFailed 交易记录创建失败
	ErrCodeTransactionCreateFailed = 210401
	// ErrCodePaymentIDRequired 外部支付流水号必填
	ErrCodePaymentIDRequired = 210402
	// ErrCodeTransactionGetFailed 交易记录查询失败
	ErrCodeTransactionGetFailed = 210403
)

// 图片额度模块错误码 (210500-210599)
const (
	// ErrCodeImageQuotaExceeded 图片额度用尽
	ErrCodeImageQuotaExceeded = 210501
	// ErrCodeImageNotInPlan 当前套餐不含图片功能
	ErrCodeImageNotInPlan = 210502
)

// 通用数据访问错误码 (210700-210799)
const (
	// ErrCodeUsageRecordCreateFailed 使用流水创建失败
	ErrCodeUsageRecordCreateFailed = 210701
	// ErrCodeUsageStatsFailed 使用统计查询失败
	ErrCodeUsageStatsFailed = 210702
	// ErrCodeResetUsageFailed 使用计数重置失败
	ErrCodeResetUsageFailed = 210703
	// ErrCodeInvalidUserID 无效的用户ID
	ErrCodeInvalidUserID = 210704
)
