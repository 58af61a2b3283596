package data

import (
	"context"
	"encoding/json"
	"time"

	"credit-service/internal/biz"
	"credit-service/internal/constants"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"credit-service/internal/data/model"
)

// usageRecordRepo 使用流水数据访问
type usageRecordRepo struct {
	data *Data
	log  *log.Helper
}

// NewUsageRecordRepo 创建使用流水 repo（返回 biz.UsageRecordRepo 接口）
func NewUsageRecordRepo(data *Data, logger log.Logger) biz.UsageRecordRepo {
	return &usageRecordRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// usageToModel 领域对象转模型
func usageToModel(r *biz.UsageRecord) *model.UsageRecord {
	m := &model.UsageRecord{
		UsageRecordID: r.ID,
		UserID:        r.UserID,
		Feature:       r.Feature,
		CreditsUsed:   r.CreditsUsed,
		ThreadID:      r.ThreadID,
		CreatedAt:     r.CreatedAt,
	}
	if len(r.Metadata) > 0 {
		if raw, err := json.Marshal(r.Metadata); err == nil {
			m.Metadata = string(raw)
		}
	}
	return m
}

// usageToDomain 模型转领域对象
func usageToDomain(m *model.UsageRecord) *biz.UsageRecord {
	r := &biz.UsageRecord{
		ID:          m.UsageRecordID,
		UserID:      m.UserID,
		Feature:     m.Feature,
		CreditsUsed: m.CreditsUsed,
		ThreadID:    m.ThreadID,
		CreatedAt:   m.CreatedAt,
	}
	if m.Metadata != "" {
		var meta map[string]interface{}
		if err := json.Unmarshal([]byte(m.Metadata), &meta); err == nil {
			r.Metadata = meta
		}
	}
	return r
}

// RecordUsage 追加一条使用流水
// MQ 启用时异步投递、由消费者批量落库；投递失败降级为同步插入
// 流水是审计数据，任何路径失败都不回滚已提交的账本变更
func (r *usageRecordRepo) RecordUsage(ctx context.Context, record *biz.UsageRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if r.data.mq != nil {
		event := &biz.UsageEvent{
			RecordID:    record.ID,
			UserID:      record.UserID,
			Feature:     record.Feature,
			CreditsUsed: record.CreditsUsed,
			ThreadID:    record.ThreadID,
			Metadata:    record.Metadata,
			UsedAt:      record.CreatedAt,
		}
		body, err := json.Marshal(event)
		if err == nil {
			msg := primitive.NewMessage(r.data.mqc.Topic, body)
			msg.WithKeys([]string{record.ID})
			if _, err := r.data.mq.SendSync(ctx, msg); err == nil {
				return nil
			}
			r.log.Warnf("Failed to publish usage event, falling back to direct insert: record_id=%s, error=%v", record.ID, err)
		}
	}

	return r.data.db.WithContext(ctx).Create(usageToModel(record)).Error
}

// BatchCreateUsageRecords 批量落库（MQ 消费者调用）
// 以 record_id 为主键，消息重复投递时忽略冲突行，保证至少一次消费不产生重复流水
func (r *usageRecordRepo) BatchCreateUsageRecords(ctx context.Context, events []*biz.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]*model.UsageRecord, 0, len(events))
	for _, e := range events {
		records = append(records, usageToModel(&biz.UsageRecord{
			ID:          e.RecordID,
			UserID:      e.UserID,
			Feature:     e.Feature,
			CreditsUsed: e.CreditsUsed,
			ThreadID:    e.ThreadID,
			Metadata:    e.Metadata,
			CreatedAt:   e.UsedAt,
		}))
	}

	return r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range records {
			res := tx.Where("usage_record_id = ?", m.UsageRecordID).FirstOrCreate(m)
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
}

// ListUsageRecords 分页获取使用流水（按时间倒序）
func (r *usageRecordRepo) ListUsageRecords(ctx context.Context, userID string, page, pageSize int) ([]*biz.UsageRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	query := r.data.db.WithContext(ctx).Model(&model.UsageRecord{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*model.UsageRecord
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	records := make([]*biz.UsageRecord, 0, len(rows))
	for _, m := range rows {
		records = append(records, usageToDomain(m))
	}
	return records, total, nil
}

// statsSince 统计某时间点之后的使用量
func (r *usageRecordRepo) statsSince(ctx context.Context, userID, feature string, since time.Time, period string) (*biz.UsageStats, error) {
	var row struct {
		TotalCount   int
		TotalCredits int
	}

	query := r.data.db.WithContext(ctx).Model(&model.UsageRecord{}).
		Select("COUNT(*) AS total_count, COALESCE(SUM(credits_used), 0) AS total_credits").
		Where("user_id = ? AND created_at >= ?", userID, since)
	if feature != "" {
		query = query.Where("feature = ?", feature)
	}
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &biz.UsageStats{
		UserID:       userID,
		Feature:      feature,
		TotalCount:   row.TotalCount,
		TotalCredits: row.TotalCredits,
		Period:       period,
	}, nil
}

// GetUsageStatsToday 获取今日（UTC）使用统计
func (r *usageRecordRepo) GetUsageStatsToday(ctx context.Context, userID, feature string) (*biz.UsageStats, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return r.statsSince(ctx, userID, feature, dayStart, constants.StatsPeriodToday)
}

// GetUsageStatsMonth 获取本月（UTC）使用统计
func (r *usageRecordRepo) GetUsageStatsMonth(ctx context.Context, userID, feature string) (*biz.UsageStats, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return r.statsSince(ctx, userID, feature, monthStart, constants.StatsPeriodMonth)
}

// GetUsageSummary 获取按功能拆分的汇总使用统计
func (r *usageRecordRepo) GetUsageSummary(ctx context.Context, userID string) (*biz.UsageSummary, error) {
	var rows []struct {
		Feature      string
		TotalCount   int
		TotalCredits int
	}

	if err := r.data.db.WithContext(ctx).Model(&model.UsageRecord{}).
		Select("feature, COUNT(*) AS total_count, COALESCE(SUM(credits_used), 0) AS total_credits").
		Where("user_id = ?", userID).
		Group("feature").
		Order("feature").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	summary := &biz.UsageSummary{UserID: userID}
	for _, row := range rows {
		summary.TotalCount += row.TotalCount
		summary.TotalCredits += row.TotalCredits
		summary.Features = append(summary.Features, &biz.FeatureUsage{
			Feature:      row.Feature,
			TotalCount:   row.TotalCount,
			TotalCredits: row.TotalCredits,
		})
	}
	return summary, nil
}
