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
	"credit-service/internal/metrics"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"credit-service/internal/data/model"
)

// creditAccountRepo 账户相关数据访问
type creditAccountRepo struct {
	data     *Data
	log      *log.Helper
	sync     *redsync.Redsync
	metrics  *metrics.CreditMetrics
	cacheTTL time.Duration
}

// NewCreditAccountRepo 创建账户 repo（返回 biz.CreditAccountRepo 接口）
func NewCreditAccountRepo(data *Data, sync *redsync.Redsync, conf *biz.CreditConfig, logger log.Logger) biz.CreditAccountRepo {
	return &creditAccountRepo{
		data:     data,
		log:      log.NewHelper(logger),
		sync:     sync,
		metrics:  metrics.GetMetrics(),
		cacheTTL: conf.AccountCacheTTL,
	}
}

// accountToDomain 模型转领域对象
func accountToDomain(m *model.CreditAccount) *biz.CreditAccount {
	return &biz.CreditAccount{
		UID:                       m.UserID,
		SubscriptionType:          m.SubscriptionType,
		SubscriptionStatus:        m.SubscriptionStatus,
		SubscriptionEnd:           m.SubscriptionEnd,
		ChatCredits:               m.ChatCredits,
		VoiceCredits:              m.VoiceCredits,
		ChatCreditsFromTopup:      m.ChatCreditsFromTopup,
		VoiceCreditsFromTopup:     m.VoiceCreditsFromTopup,
		Credits:                   m.Credits,
		VoiceCreditsUsedThisMonth: m.VoiceCreditsUsedThisMonth,
		VoiceCreditsUsedToday:     m.VoiceCreditsUsedToday,
		ImagesUsedThisMonth:       m.ImagesUsedThisMonth,
		ImageUsageResetAt:         m.ImageUsageResetAt,
		Banned:                    m.Banned,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}

// accountUpdateColumns 领域对象转更新列（账本可变字段全量写回）
func accountUpdateColumns(a *biz.CreditAccount) map[string]interface{} {
	return map[string]interface{}{
		"subscription_type":             a.SubscriptionType,
		"subscription_status":           a.SubscriptionStatus,
		"subscription_end":              a.SubscriptionEnd,
		"chat_credits":                  a.ChatCredits,
		"voice_credits":                 a.VoiceCredits,
		"chat_credits_from_topup":       a.ChatCreditsFromTopup,
		"voice_credits_from_topup":      a.VoiceCreditsFromTopup,
		"credits":                       a.Credits,
		"voice_credits_used_this_month": a.VoiceCreditsUsedThisMonth,
		"voice_credits_used_today":      a.VoiceCreditsUsedToday,
		"images_used_this_month":        a.ImagesUsedThisMonth,
		"image_usage_reset_at":          a.ImageUsageResetAt,
	}
}

// cacheKey 账户缓存 key
func (r *creditAccountRepo) cacheKey(userID string) string {
	return fmt.Sprintf("%s%s", constants.RedisKeyCreditAccount, userID)
}

// invalidateCache 删除账户缓存（写路径提交后调用）
func (r *creditAccountRepo) invalidateCache(userID string) {
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	if err := r.data.rdb.Del(cacheCtx, r.cacheKey(userID)).Err(); err != nil {
		// 缓存失效失败不影响主流程，只记录日志
		r.log.Warnf("failed to invalidate account cache: user_id=%s, error=%v", userID, err)
	}
}

// GetCreditAccount 获取账户，不存在时返回 nil（业务层处理）
func (r *creditAccountRepo) GetCreditAccount(ctx context.Context, userID string) (*biz.CreditAccount, error) {
	if userID == "" {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidUserID)
	}

	// 先尝试从 Redis 获取
	if raw, err := r.data.rdb.Get(ctx, r.cacheKey(userID)).Result(); err == nil {
		var acc biz.CreditAccount
		if err := json.Unmarshal([]byte(raw), &acc); err == nil {
			return &acc, nil
		}
	}

	// 缓存未命中，从数据库查询
	var m model.CreditAccount
	if err := r.data.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("GetCreditAccount failed: user_id=%s, error=%v", userID, err)
		return nil, fmt.Errorf("failed to query credit account: %w", err)
	}

	result := accountToDomain(&m)

	// 更新缓存（异步，不阻塞，设置超时避免长时间等待）
	go func() {
		cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cacheCancel()
		if raw, err := json.Marshal(result); err == nil {
			r.data.rdb.Set(cacheCtx, r.cacheKey(userID), raw, r.cacheTTL)
		}
	}()

	return result, nil
}

// CreateCreditAccount 创建账户
func (r *creditAccountRepo) CreateCreditAccount(ctx context.Context, account *biz.CreditAccount) error {
	m := model.CreditAccount{
		CreditAccountID:    uuid.New().String(),
		UserID:             account.UID,
		SubscriptionType:   account.SubscriptionType,
		SubscriptionStatus: account.SubscriptionStatus,
		SubscriptionEnd:    account.SubscriptionEnd,
		ChatCredits:        account.ChatCredits,
		VoiceCredits:       account.VoiceCredits,
		Credits:            account.Credits,
	}
	return r.data.db.WithContext(ctx).Create(&m).Error
}

// UpdateWithLock 账本唯一的变更原语：对单个用户行的可串行化读-改-写
// Redis 分布式锁挡住跨实例并发，事务内 FOR UPDATE 行锁保证充足性检查
// 与扣减基于同一份余额；fn 返回错误时事务整体回滚，行保持原样
func (r *creditAccountRepo) UpdateWithLock(ctx context.Context, userID string, fn func(*biz.CreditAccount) error) (*biz.CreditAccount, error) {
	if r.sync != nil {
		lockKey := fmt.Sprintf("%s%s", constants.RedisKeyDeductLock, userID)
		lockStartTime := time.Now()
		mutex := r.sync.NewMutex(lockKey, redsync.WithExpiry(5*time.Second))
		if err := mutex.Lock(); err != nil {
			r.log.Errorf("Failed to acquire lock for account update: user_id=%s, error=%v", userID, err)
			if r.metrics != nil {
				r.metrics.LockAcquireTotal.WithLabelValues("failed").Inc()
				r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
			}
			return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeDeductLockFailed)
		}
		if r.metrics != nil {
			r.metrics.LockAcquireTotal.WithLabelValues("success").Inc()
			r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
		}
		defer func() {
			if ok, err := mutex.Unlock(); !ok || err != nil {
				r.log.Warnf("Failed to unlock account update: user_id=%s, error=%v", userID, err)
			}
		}()
	}

	var updated *biz.CreditAccount
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.CreditAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return biz.ErrAccountNotFound
			}
			return err
		}

		acc := accountToDomain(&m)
		if err := fn(acc); err != nil {
			return err
		}

		if err := tx.Model(&m).Updates(accountUpdateColumns(acc)).Error; err != nil {
			return err
		}
		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交成功后失效缓存，下一次资格检查读到新余额
	r.invalidateCache(userID)
	return updated, nil
}

// AddTopupCredits 加购额度入账
// 可交换的单行增量更新，无需行锁：两个并发加购互不影响
func (r *creditAccountRepo) AddTopupCredits(ctx context.Context, userID, feature string, amount int) (*biz.CreditAccount, error) {
	var column string
	switch feature {
	case constants.FeatureTypeChat:
		column = "chat_credits_from_topup"
	case constants.FeatureTypeVoice:
		column = "voice_credits_from_topup"
	default:
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeFeatureNotAvailable)
	}

	res := r.data.db.WithContext(ctx).Model(&model.CreditAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			column:    gorm.Expr(column+" + ?", amount),
			"credits": gorm.Expr("credits + ?", amount),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, biz.ErrAccountNotFound
	}

	r.invalidateCache(userID)

	// 回读最新账户返回给调用方
	var m model.CreditAccount
	if err := r.data.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return accountToDomain(&m), nil
}

// ResetDailyUsage 全量清零每日语音使用计数（cron 调用）
func (r *creditAccountRepo) ResetDailyUsage(ctx context.Context) (int64, error) {
	res := r.data.db.WithContext(ctx).Model(&model.CreditAccount{}).
		Where("voice_credits_used_today > 0").
		Update("voice_credits_used_today", 0)
	return res.RowsAffected, res.Error
}

// ResetMonthlyUsage 全量清零月度使用计数（cron 调用）
func (r *creditAccountRepo) ResetMonthlyUsage(ctx context.Context) (int64, error) {
	res := r.data.db.WithContext(ctx).Model(&model.CreditAccount{}).
		Where("voice_credits_used_this_month > 0 OR images_used_this_month > 0").
		Updates(map[string]interface{}{
			"voice_credits_used_this_month": 0,
			"images_used_this_month":        0,
		})
	return res.RowsAffected, res.Error
}
