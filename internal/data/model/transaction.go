package model

import (
	"credit-service/internal/constants"
	"time"
)

// 交易状态常量（引用 constants 包中的常量，保持一致性）
const (
	TransactionStatusCompleted = constants.TransactionStatusCompleted // 已完成
	TransactionStatusFailed    = constants.TransactionStatusFailed    // 失败
)

// Transaction 交易记录表（用于幂等性保证）
// payment_id 为外部支付平台流水号，唯一索引兜底回调重复投递
type Transaction struct {
	TransactionID string    `gorm:"primaryKey;type:varchar(36)"`
	UserID        string    `gorm:"type:varchar(36);not null;index"`
	Type          string    `gorm:"type:enum('subscription','topup');not null"`
	Amount        float64   `gorm:"type:decimal(10,2);not null"`
	CreditsAdded  int       `gorm:"default:0"`
	PaymentID     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Status        string    `gorm:"type:enum('completed','failed');not null;default:'completed'"`
	Metadata      string    `gorm:"type:json"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transaction"
}
