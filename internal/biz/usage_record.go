package biz

import (
	"context"
	"time"

	creditErrors "credit-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// UsageRecord 使用流水领域对象（只追加，正常运行不更新不删除）
type UsageRecord struct {
	ID          string
	UserID      string
	Feature     string // chat / voice / image
	CreditsUsed int
	ThreadID    string                 // 关联会话，可为空
	Metadata    map[string]interface{} // 时长拆分等自由元数据
	CreatedAt   time.Time
}

// UsageStats 单周期使用统计
type UsageStats struct {
	UserID       string
	Feature      string // 为空表示全部功能
	TotalCount   int
	TotalCredits int
	Period       string // today / month
}

// FeatureUsage 按功能拆分的使用统计
type FeatureUsage struct {
	Feature      string
	TotalCount   int
	TotalCredits int
}

// UsageSummary 汇总使用统计
type UsageSummary struct {
	UserID       string
	TotalCount   int
	TotalCredits int
	Features     []*FeatureUsage
}

// UsageRecordRepo 使用流水数据层接口（定义在 biz 层）
// RecordUsage 在 MQ 启用时异步投递、由消费者批量落库，否则同步插入
type UsageRecordRepo interface {
	RecordUsage(ctx context.Context, record *UsageRecord) error
	BatchCreateUsageRecords(ctx context.Context, events []*UsageEvent) error
	ListUsageRecords(ctx context.Context, userID string, page, pageSize int) ([]*UsageRecord, int64, error)
	GetUsageStatsToday(ctx context.Context, userID, feature string) (*UsageStats, error)
	GetUsageStatsMonth(ctx context.Context, userID, feature string) (*UsageStats, error)
	GetUsageSummary(ctx context.Context, userID string) (*UsageSummary, error)
}

// UsageRecordUseCase 使用流水业务逻辑
type UsageRecordUseCase struct {
	repo UsageRecordRepo
	log  *log.Helper
}

// NewUsageRecordUseCase 创建使用流水 UseCase
func NewUsageRecordUseCase(repo UsageRecordRepo, logger log.Logger) *UsageRecordUseCase {
	return &UsageRecordUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// Record 追加一条使用流水
func (uc *UsageRecordUseCase) Record(ctx context.Context, record *UsageRecord) error {
	if err := uc.repo.RecordUsage(ctx, record); err != nil {
		return pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeUsageRecordCreateFailed)
	}
	return nil
}

// ListRecords 获取使用流水列表
func (uc *UsageRecordUseCase) ListRecords(ctx context.Context, userID string, page, pageSize int) ([]*UsageRecord, int64, error) {
	return uc.repo.ListUsageRecords(ctx, userID, page, pageSize)
}

// GetStatsToday 获取今日使用统计
func (uc *UsageRecordUseCase) GetStatsToday(ctx context.Context, userID, feature string) (*UsageStats, error) {
	return uc.repo.GetUsageStatsToday(ctx, userID, feature)
}

// GetStatsMonth 获取本月使用统计
func (uc *UsageRecordUseCase) GetStatsMonth(ctx context.Context, userID, feature string) (*UsageStats, error) {
	return uc.repo.GetUsageStatsMonth(ctx, userID, feature)
}

// GetSummary 获取汇总使用统计
func (uc *UsageRecordUseCase) GetSummary(ctx context.Context, userID string) (*UsageSummary, error) {
	return uc.repo.GetUsageSummary(ctx, userID)
}
