package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"credit-service/internal/biz"
	"credit-service/internal/constants"
	creditErrors "credit-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"credit-service/internal/data/model"
)

// transactionRepo 交易记录数据访问
type transactionRepo struct {
	data *Data
	log  *log.Helper
}

// NewTransactionRepo 创建交易记录 repo（返回 biz.TransactionRepo 接口）
func NewTransactionRepo(data *Data, logger log.Logger) biz.TransactionRepo {
	return &transactionRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// txnToDomain 模型转领域对象
func txnToDomain(m *model.Transaction) *biz.Transaction {
	t := &biz.Transaction{
		ID:           m.TransactionID,
		UserID:       m.UserID,
		Type:         m.Type,
		Amount:       m.Amount,
		CreditsAdded: m.CreditsAdded,
		PaymentID:    m.PaymentID,
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
	}
	if m.Metadata != "" {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(m.Metadata), &meta); err == nil {
			t.Metadata = meta
		}
	}
	return t
}

// GetTransactionByPaymentID 按外部支付流水号查询，不存在时返回 nil
func (r *transactionRepo) GetTransactionByPaymentID(ctx context.Context, paymentID string) (*biz.Transaction, error) {
	var m model.Transaction
	if err := r.data.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return txnToDomain(&m), nil
}

// CreateTransactionIdempotent 按 payment_id 幂等创建交易记录
// 事务内先锁定查重再插入；并发窗口下插入撞唯一索引时回读已存在的记录
// 返回落库的记录以及本次调用是否真正新建了记录
func (r *transactionRepo) CreateTransactionIdempotent(ctx context.Context, txn *biz.Transaction) (*biz.Transaction, bool, error) {
	var stored *biz.Transaction
	created := false

	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ?", txn.PaymentID).
			First(&existing).Error
		if err == nil {
			stored = txnToDomain(&existing)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		m := model.Transaction{
			TransactionID: uuid.New().String(),
			UserID:        txn.UserID,
			Type:          txn.Type,
			Amount:        txn.Amount,
			CreditsAdded:  txn.CreditsAdded,
			PaymentID:     txn.PaymentID,
			Status:        txn.Status,
		}
		if m.Status == "" {
			m.Status = model.TransactionStatusCompleted
		}
		if len(txn.Metadata) > 0 {
			if raw, err := json.Marshal(txn.Metadata); err == nil {
				m.Metadata = string(raw)
			}
		}

		if err := tx.Create(&m).Error; err != nil {
			// 并发回调竞争同一 payment_id，唯一索引兜底，回读胜者
			var winner model.Transaction
			if readErr := tx.Where("payment_id = ?", txn.PaymentID).First(&winner).Error; readErr == nil {
				stored = txnToDomain(&winner)
				return nil
			}
			return err
		}

		stored = txnToDomain(&m)
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// TopupWithIdempotency 带幂等性保证的加购入账
// 同一事务内先锁定查重 payment_id，未处理过则落交易记录并入账加购额度
// 任一步失败整体回滚：回调重试不会重复到账，也不会留下无入账的交易记录
func (r *transactionRepo) TopupWithIdempotency(ctx context.Context, txn *biz.Transaction, feature string, credits int) (*biz.CreditAccount, bool, error) {
	var column string
	switch feature {
	case constants.FeatureTypeChat:
		column = "chat_credits_from_topup"
	case constants.FeatureTypeVoice:
		column = "voice_credits_from_topup"
	default:
		return nil, false, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeFeatureNotAvailable)
	}

	var account *biz.CreditAccount
	created := false

	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 锁定查重：该支付流水已处理过则返回当前账户，不再入账
		var existing model.Transaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ?", txn.PaymentID).
			First(&existing).Error
		if err == nil {
			r.log.Infof("Top-up already processed: payment_id=%s", txn.PaymentID)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 2. 占用幂等键：插入撞唯一索引说明并发投递已处理，按已处理返回
		m := model.Transaction{
			TransactionID: uuid.New().String(),
			UserID:        txn.UserID,
			Type:          txn.Type,
			Amount:        txn.Amount,
			CreditsAdded:  txn.CreditsAdded,
			PaymentID:     txn.PaymentID,
			Status:        txn.Status,
		}
		if m.Status == "" {
			m.Status = model.TransactionStatusCompleted
		}
		if len(txn.Metadata) > 0 {
			if raw, err := json.Marshal(txn.Metadata); err == nil {
				m.Metadata = string(raw)
			}
		}
		if err := tx.Create(&m).Error; err != nil {
			var winner model.Transaction
			if readErr := tx.Where("payment_id = ?", txn.PaymentID).First(&winner).Error; readErr == nil {
				return nil
			}
			return err
		}

		// 3. 入账加购额度并同步历史总额字段
		res := tx.Model(&model.CreditAccount{}).
			Where("user_id = ?", txn.UserID).
			Updates(map[string]interface{}{
				column:    gorm.Expr(column+" + ?", credits),
				"credits": gorm.Expr("credits + ?", credits),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return biz.ErrAccountNotFound
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// 事务提交成功后失效账户缓存并回读最新账户
	r.invalidateAccountCache(txn.UserID)
	var m model.CreditAccount
	if err := r.data.db.WithContext(ctx).Where("user_id = ?", txn.UserID).First(&m).Error; err != nil {
		return nil, false, err
	}
	account = accountToDomain(&m)
	return account, created, nil
}

// invalidateAccountCache 删除账户缓存（入账提交后调用）
func (r *transactionRepo) invalidateAccountCache(userID string) {
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	key := fmt.Sprintf("%s%s", constants.RedisKeyCreditAccount, userID)
	if err := r.data.rdb.Del(cacheCtx, key).Err(); err != nil {
		r.log.Warnf("failed to invalidate account cache: user_id=%s, error=%v", userID, err)
	}
}

// ListTransactions 分页获取交易记录（按时间倒序）
func (r *transactionRepo) ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]*biz.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	query := r.data.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*model.Transaction
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	txns := make([]*biz.Transaction, 0, len(rows))
	for _, m := range rows {
		txns = append(txns, txnToDomain(m))
	}
	return txns, total, nil
}
