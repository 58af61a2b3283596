package model

import (
	"time"
)

// UsageRecord 使用流水表（只追加）
type UsageRecord struct {
	UsageRecordID string    `gorm:"primaryKey;type:varchar(36)"`
	UserID        string    `gorm:"type:varchar(36);not null;index:idx_user_date,priority:1"`
	Feature       string    `gorm:"type:enum('chat','voice','image');not null"`
	CreditsUsed   int       `gorm:"default:0"`
	ThreadID      string    `gorm:"type:varchar(64);index"`
	Metadata      string    `gorm:"type:json"` // 时长拆分等自由元数据，JSON 序列化
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_user_date,priority:2"`
}

// TableName 指定表名
func (UsageRecord) TableName() string {
	return "usage_record"
}
