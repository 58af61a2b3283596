package biz

import (
	"context"
	"errors"
	"time"

	creditErrors "credit-service/internal/errors"
	"credit-service/internal/metrics"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// Transaction 交易记录领域对象（只追加，按外部支付流水号幂等）
type Transaction struct {
	ID           string
	UserID       string
	Type         string  // subscription / topup
	Amount       float64 // 实付金额
	CreditsAdded int     // 本次交易新增的额度数（订阅为 0）
	PaymentID    string  // 外部支付流水号，幂等去重键
	Status       string
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}

// TransactionRepo 交易记录数据层接口（定义在 biz 层）
// CreateTransactionIdempotent 先按 payment_id 查重，已存在时返回旧记录
// 且 created 为 false，保证支付回调重复投递不会产生第二条记录
// TopupWithIdempotency 在同一数据库事务内占用 payment_id 并入账加购额度：
// 交易记录与入账要么同时生效要么同时回滚，不存在已入账无记录的中间态
type TransactionRepo interface {
	GetTransactionByPaymentID(ctx context.Context, paymentID string) (*Transaction, error)
	CreateTransactionIdempotent(ctx context.Context, txn *Transaction) (*Transaction, bool, error)
	TopupWithIdempotency(ctx context.Context, txn *Transaction, feature string, credits int) (*CreditAccount, bool, error)
	ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]*Transaction, int64, error)
}

// TransactionUseCase 交易记录业务逻辑
type TransactionUseCase struct {
	repo    TransactionRepo
	log     *log.Helper
	metrics *metrics.CreditMetrics
}

// NewTransactionUseCase 创建交易记录 UseCase
func NewTransactionUseCase(repo TransactionRepo, logger log.Logger) *TransactionUseCase {
	return &TransactionUseCase{
		repo:    repo,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// RecordPayment 记录一笔支付（按外部支付流水号幂等）
// 返回落库的记录以及本次调用是否真正新建了记录
func (uc *TransactionUseCase) RecordPayment(ctx context.Context, txn *Transaction) (*Transaction, bool, error) {
	if txn.PaymentID == "" {
		return nil, false, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodePaymentIDRequired)
	}

	stored, created, err := uc.repo.CreateTransactionIdempotent(ctx, txn)
	if err != nil {
		return nil, false, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeTransactionCreateFailed)
	}
	if !created {
		uc.log.Infof("Payment already recorded: payment_id=%s, transaction_id=%s", txn.PaymentID, stored.ID)
	}
	return stored, created, nil
}

// RecordTopupPayment 占用支付流水号并入账加购额度（单事务）
// 重复投递返回当前账户且 created 为 false，不再入账
func (uc *TransactionUseCase) RecordTopupPayment(ctx context.Context, txn *Transaction, feature string, credits int) (*CreditAccount, bool, error) {
	if txn.PaymentID == "" {
		return nil, false, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodePaymentIDRequired)
	}

	acc, created, err := uc.repo.TopupWithIdempotency(ctx, txn, feature, credits)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, false, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeUserNotFound)
		}
		return nil, false, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeTransactionCreateFailed)
	}
	if !created {
		uc.log.Infof("Top-up payment already recorded: payment_id=%s", txn.PaymentID)
	}
	return acc, created, nil
}

// GetByPaymentID 按外部支付流水号查询
func (uc *TransactionUseCase) GetByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	return uc.repo.GetTransactionByPaymentID(ctx, paymentID)
}

// ListTransactions 获取交易记录列表
func (uc *TransactionUseCase) ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]*Transaction, int64, error) {
	return uc.repo.ListTransactions(ctx, userID, page, pageSize)
}
