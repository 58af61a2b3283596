package conf

import "time"

// Bootstrap 启动配置
// 原 proto 生成的配置结构改为手写结构体，由 kratos config 直接 Scan 填充
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
	Credit *Credit `json:"credit"`
}

// Server 服务器配置
type Server struct {
	Http *HTTP `json:"http"`
}

// HTTP HTTP 服务器配置
type HTTP struct {
	Network string `json:"network"`
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"` // 如 "1s"
}

// Data 数据层配置
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Rocketmq *Rocketmq `json:"rocketmq"`
}

// Database 数据库配置
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Redis Redis 配置
type Redis struct {
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

// Rocketmq RocketMQ 配置（可选，未启用时使用流水同步落库）
type Rocketmq struct {
	Enabled     bool     `json:"enabled"`
	NameServers []string `json:"name_servers"`
	GroupName   string   `json:"group_name"`
	Topic       string   `json:"topic"`
	RetryTimes  int32    `json:"retry_times"`
}

// Credit 额度业务配置
type Credit struct {
	// StatusCacheTTL 资格检查读缓存 TTL（如 "5s"）
	StatusCacheTTL string `json:"status_cache_ttl"`
	// StatusCacheSize 资格检查读缓存容量（按用户数）
	StatusCacheSize int `json:"status_cache_size"`
	// AccountCacheTTL Redis 账户缓存 TTL（如 "30s"）
	AccountCacheTTL string `json:"account_cache_ttl"`
	// CreditLowPercentThreshold 额度低告警阈值（剩余百分比）
	CreditLowPercentThreshold float64 `json:"credit_low_percent_threshold"`
	// TrialChatCredits 新用户试用聊天额度
	TrialChatCredits int `json:"trial_chat_credits"`
	// TrialVoiceCredits 新用户试用语音额度
	TrialVoiceCredits int `json:"trial_voice_credits"`
}

// ParseDuration 解析配置里的时长字符串，非法或为空时返回默认值
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
