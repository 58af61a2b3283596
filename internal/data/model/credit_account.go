package model

import (
	"time"
)

// CreditAccount 用户额度账户表（每用户一行）
type CreditAccount struct {
	CreditAccountID    string     `gorm:"primaryKey;type:varchar(36)"`
	UserID             string     `gorm:"uniqueIndex;type:varchar(36);not null"`
	SubscriptionType   string     `gorm:"type:enum('free_trial','chat_only','voice_only','voice_chat');not null;default:'free_trial'"`
	SubscriptionStatus string     `gorm:"type:enum('active','canceled','past_due','incomplete','expired');not null;default:'active'"`
	SubscriptionEnd    *time.Time `gorm:"index"`

	ChatCredits           int `gorm:"default:0"`
	VoiceCredits          int `gorm:"default:0"`
	ChatCreditsFromTopup  int `gorm:"default:0"`
	VoiceCreditsFromTopup int `gorm:"default:0"`
	// Credits 遗留聚合字段，仅兼容旧展示
	Credits int `gorm:"default:0"`

	VoiceCreditsUsedThisMonth int `gorm:"default:0"`
	VoiceCreditsUsedToday     int `gorm:"default:0"`

	ImagesUsedThisMonth int        `gorm:"default:0"`
	ImageUsageResetAt   *time.Time ``

	Banned    bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (CreditAccount) TableName() string {
	return "credit_account"
}
