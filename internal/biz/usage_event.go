package biz

import "time"

// UsageEvent 使用流水 MQ 消息，消费者批量落库
// 投递前账本扣减已提交，该链路只承载只追加的审计流水
type UsageEvent struct {
	RecordID    string                 `json:"record_id"`
	UserID      string                 `json:"user_id"`
	Feature     string                 `json:"feature"`
	CreditsUsed int                    `json:"credits_used"`
	ThreadID    string                 `json:"thread_id,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	UsedAt      time.Time              `json:"used_at"`
}
