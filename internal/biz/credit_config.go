package biz

import (
	"time"

	"credit-service/internal/conf"
)

// CreditConfig 额度业务配置
type CreditConfig struct {
	StatusCacheTTL            time.Duration // 资格检查读缓存 TTL
	StatusCacheSize           int           // 资格检查读缓存容量
	AccountCacheTTL           time.Duration // Redis 账户缓存 TTL
	CreditLowPercentThreshold float64       // 额度低告警阈值（剩余百分比）
	TrialChatCredits          int           // 新用户试用聊天额度
	TrialVoiceCredits         int           // 新用户试用语音额度
}

// NewCreditConfig 从配置创建 CreditConfig
func NewCreditConfig(c *conf.Bootstrap) *CreditConfig {
	config := &CreditConfig{
		StatusCacheTTL:            5 * time.Second, // 默认值
		StatusCacheSize:           4096,
		AccountCacheTTL:           30 * time.Second,
		CreditLowPercentThreshold: 20.0,
		TrialChatCredits:          50,
		TrialVoiceCredits:         30,
	}
	if c.Credit != nil {
		config.StatusCacheTTL = conf.ParseDuration(c.Credit.StatusCacheTTL, config.StatusCacheTTL)
		config.AccountCacheTTL = conf.ParseDuration(c.Credit.AccountCacheTTL, config.AccountCacheTTL)
		if c.Credit.StatusCacheSize > 0 {
			config.StatusCacheSize = c.Credit.StatusCacheSize
		}
		if c.Credit.CreditLowPercentThreshold > 0 {
			config.CreditLowPercentThreshold = c.Credit.CreditLowPercentThreshold
		}
		if c.Credit.TrialChatCredits > 0 {
			config.TrialChatCredits = c.Credit.TrialChatCredits
		}
		if c.Credit.TrialVoiceCredits > 0 {
			config.TrialVoiceCredits = c.Credit.TrialVoiceCredits
		}
	}
	return config
}
