package service

import (
	"context"
	"time"

	"credit-service/internal/biz"
	"credit-service/internal/constants"
	creditErrors "credit-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// CreditService 面向前端/运营后台的服务
type CreditService struct {
	uc    *biz.CreditUseCase
	usage *biz.UsageRecordUseCase
	txn   *biz.TransactionUseCase
	log   *log.Helper
}

// NewCreditService 创建 CreditService
func NewCreditService(uc *biz.CreditUseCase, usage *biz.UsageRecordUseCase, txn *biz.TransactionUseCase, logger log.Logger) *CreditService {
	return &CreditService{
		uc:    uc,
		usage: usage,
		txn:   txn,
		log:   log.NewHelper(logger),
	}
}

// CreditStatusReply 账户额度状态
type CreditStatusReply struct {
	UserID                    string `json:"user_id"`
	SubscriptionType          string `json:"subscription_type"`
	SubscriptionStatus        string `json:"subscription_status"`
	SubscriptionEnd           string `json:"subscription_end,omitempty"`
	ChatCredits               int    `json:"chat_credits"`
	VoiceCredits              int    `json:"voice_credits"`
	ChatCreditsFromTopup      int    `json:"chat_credits_from_topup"`
	VoiceCreditsFromTopup     int    `json:"voice_credits_from_topup"`
	Credits                   int    `json:"credits"`
	VoiceCreditsUsedThisMonth int    `json:"voice_credits_used_this_month"`
	VoiceCreditsUsedToday     int    `json:"voice_credits_used_today"`
	MonthlyVoiceAllotment     int    `json:"monthly_voice_allotment"`
	RemainingPlanVoiceCredits int    `json:"remaining_plan_voice_credits"`
	ImagesUsedThisMonth       int    `json:"images_used_this_month"`
	ImageQuota                int    `json:"image_quota"`
	CanUseChat                bool   `json:"can_use_chat"`
	CanUseVoice               bool   `json:"can_use_voice"`
}

// GetUserCreditStatus 获取账户额度状态（前端额度展示页）
func (s *CreditService) GetUserCreditStatus(ctx context.Context, userID string) (*CreditStatusReply, error) {
	status, err := s.uc.GetUserCreditStatus(ctx, userID)
	if err != nil {
		s.log.Errorf("GetUserCreditStatus failed: user_id=%s, error=%v", userID, err)
		return nil, err
	}

	reply := &CreditStatusReply{
		UserID:                    status.UserID,
		SubscriptionType:          status.SubscriptionType,
		SubscriptionStatus:        status.SubscriptionStatus,
		ChatCredits:               status.ChatCredits,
		VoiceCredits:              status.VoiceCredits,
		ChatCreditsFromTopup:      status.ChatCreditsFromTopup,
		VoiceCreditsFromTopup:     status.VoiceCreditsFromTopup,
		Credits:                   status.Credits,
		VoiceCreditsUsedThisMonth: status.VoiceCreditsUsedThisMonth,
		VoiceCreditsUsedToday:     status.VoiceCreditsUsedToday,
		MonthlyVoiceAllotment:     status.MonthlyVoiceAllotment,
		RemainingPlanVoiceCredits: status.RemainingPlanVoiceCredits,
		ImagesUsedThisMonth:       status.ImagesUsedThisMonth,
		ImageQuota:                status.ImageQuota,
		CanUseChat:                status.CanUseChat,
		CanUseVoice:               status.CanUseVoice,
	}
	if status.SubscriptionEnd != nil {
		reply.SubscriptionEnd = status.SubscriptionEnd.Format(time.RFC3339)
	}
	return reply, nil
}

// PlanInfo 套餐信息
type PlanInfo struct {
	Name                string   `json:"name"`
	DisplayName         string   `json:"display_name"`
	Price               float64  `json:"price"`
	OneTime             bool     `json:"one_time"`
	UnlimitedChat       bool     `json:"unlimited_chat"`
	MonthlyVoiceCredits int      `json:"monthly_voice_credits,omitempty"`
	ImageQuota          int      `json:"image_quota,omitempty"`
	TopupCredits        int      `json:"topup_credits,omitempty"`
	TopupFeature        string   `json:"topup_feature,omitempty"`
	Features            []string `json:"features,omitempty"`
}

// ListPlansReply 套餐列表
type ListPlansReply struct {
	Plans []*PlanInfo `json:"plans"`
}

// ListPlans 获取套餐目录（订阅页展示）
func (s *CreditService) ListPlans(ctx context.Context) (*ListPlansReply, error) {
	plans := biz.ListPlans()
	reply := &ListPlansReply{Plans: make([]*PlanInfo, 0, len(plans))}
	for _, p := range plans {
		reply.Plans = append(reply.Plans, &PlanInfo{
			Name:                p.Name,
			DisplayName:         p.DisplayName,
			Price:               p.Price,
			OneTime:             p.OneTime,
			UnlimitedChat:       p.UnlimitedChat,
			MonthlyVoiceCredits: p.MonthlyVoiceCredits,
			ImageQuota:          p.ImageQuota,
			TopupCredits:        p.TopupCredits,
			TopupFeature:        p.TopupFeature,
			Features:            p.Features,
		})
	}
	return reply, nil
}

// SubscriptionCallbackRequest 订阅支付回调
type SubscriptionCallbackRequest struct {
	UserID    string  `json:"user_id"`
	PlanName  string  `json:"plan_name"`
	EndDate   string  `json:"end_date"` // RFC3339
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}

// SubscriptionCallbackReply 订阅支付回调结果
type SubscriptionCallbackReply struct {
	UserID             string `json:"user_id"`
	SubscriptionType   string `json:"subscription_type"`
	SubscriptionStatus string `json:"subscription_status"`
	SubscriptionEnd    string `json:"subscription_end,omitempty"`
}

// SubscriptionCallback 处理订阅支付回调（外部支付平台投递，可能重复）
func (s *CreditService) SubscriptionCallback(ctx context.Context, req *SubscriptionCallbackRequest) (*SubscriptionCallbackReply, error) {
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, pkgErrors.NewBizErrorWithLang(ctx, creditErrors.ErrCodeInvalidEndDate)
	}

	account, err := s.uc.ActivateSubscription(ctx, req.UserID, req.PlanName, endDate, req.PaymentID, req.Amount)
	if err != nil {
		s.log.Errorf("SubscriptionCallback failed: user_id=%s, plan=%s, payment_id=%s, error=%v",
			req.UserID, req.PlanName, req.PaymentID, err)
		return nil, err
	}

	reply := &SubscriptionCallbackReply{
		UserID:             account.UID,
		SubscriptionType:   account.SubscriptionType,
		SubscriptionStatus: account.SubscriptionStatus,
	}
	if account.SubscriptionEnd != nil {
		reply.SubscriptionEnd = account.SubscriptionEnd.Format(time.RFC3339)
	}
	return reply, nil
}

// TopupCallbackRequest 加购支付回调
type TopupCallbackRequest struct {
	UserID    string  `json:"user_id"`
	PackName  string  `json:"pack_name"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}

// TopupCallbackReply 加购支付回调结果
type TopupCallbackReply struct {
	UserID                string `json:"user_id"`
	ChatCreditsFromTopup  int    `json:"chat_credits_from_topup"`
	VoiceCreditsFromTopup int    `json:"voice_credits_from_topup"`
	Credits               int    `json:"credits"`
}

// TopupCallback 处理加购支付回调
func (s *CreditService) TopupCallback(ctx context.Context, req *TopupCallbackRequest) (*TopupCallbackReply, error) {
	account, err := s.uc.ProcessTopupPurchase(ctx, req.UserID, req.PackName, req.PaymentID, req.Amount)
	if err != nil {
		s.log.Errorf("TopupCallback failed: user_id=%s, pack=%s, payment_id=%s, error=%v",
			req.UserID, req.PackName, req.PaymentID, err)
		return nil, err
	}

	return &TopupCallbackReply{
		UserID:                account.UID,
		ChatCreditsFromTopup:  account.ChatCreditsFromTopup,
		VoiceCreditsFromTopup: account.VoiceCreditsFromTopup,
		Credits:               account.Credits,
	}, nil
}

// UsageRecordInfo 使用流水
type UsageRecordInfo struct {
	ID          string                 `json:"id"`
	Feature     string                 `json:"feature"`
	CreditsUsed int                    `json:"credits_used"`
	ThreadID    string                 `json:"thread_id,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// ListUsageRecordsReply 使用流水列表
type ListUsageRecordsReply struct {
	Records []*UsageRecordInfo `json:"records"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
}

// ListUsageRecords 获取使用流水列表
func (s *CreditService) ListUsageRecords(ctx context.Context, userID string, page, pageSize int) (*ListUsageRecordsReply, error) {
	records, total, err := s.usage.ListRecords(ctx, userID, page, pageSize)
	if err != nil {
		s.log.Errorf("ListUsageRecords failed: user_id=%s, error=%v", userID, err)
		return nil, err
	}

	reply := &ListUsageRecordsReply{
		Records: make([]*UsageRecordInfo, 0, len(records)),
		Total:   total,
		Page:    page,
	}
	for _, r := range records {
		reply.Records = append(reply.Records, &UsageRecordInfo{
			ID:          r.ID,
			Feature:     r.Feature,
			CreditsUsed: r.CreditsUsed,
			ThreadID:    r.ThreadID,
			Metadata:    r.Metadata,
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}
	return reply, nil
}

// TransactionInfo 交易记录
type TransactionInfo struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Amount       float64 `json:"amount"`
	CreditsAdded int     `json:"credits_added"`
	PaymentID    string  `json:"payment_id"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

// ListTransactionsReply 交易记录列表
type ListTransactionsReply struct {
	Transactions []*TransactionInfo `json:"transactions"`
	Total        int64              `json:"total"`
	Page         int                `json:"page"`
}

// ListTransactions 获取交易记录列表
func (s *CreditService) ListTransactions(ctx context.Context, userID string, page, pageSize int) (*ListTransactionsReply, error) {
	txns, total, err := s.txn.ListTransactions(ctx, userID, page, pageSize)
	if err != nil {
		s.log.Errorf("ListTransactions failed: user_id=%s, error=%v", userID, err)
		return nil, err
	}

	reply := &ListTransactionsReply{
		Transactions: make([]*TransactionInfo, 0, len(txns)),
		Total:        total,
		Page:         page,
	}
	for _, t := range txns {
		reply.Transactions = append(reply.Transactions, &TransactionInfo{
			ID:           t.ID,
			Type:         t.Type,
			Amount:       t.Amount,
			CreditsAdded: t.CreditsAdded,
			PaymentID:    t.PaymentID,
			Status:       t.Status,
			CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		})
	}
	return reply, nil
}

// FeatureUsageInfo 单功能使用统计
type FeatureUsageInfo struct {
	Feature      string `json:"feature"`
	TotalCount   int    `json:"total_count"`
	TotalCredits int    `json:"total_credits"`
}

// UsageStatsReply 使用统计
type UsageStatsReply struct {
	UserID       string              `json:"user_id"`
	Period       string              `json:"period,omitempty"`
	TotalCount   int                 `json:"total_count"`
	TotalCredits int                 `json:"total_credits"`
	Features     []*FeatureUsageInfo `json:"features,omitempty"`
}

// GetUsageStats 获取使用统计（period 为 today/month，为空返回全量按功能汇总）
func (s *CreditService) GetUsageStats(ctx context.Context, userID, feature, period string) (*UsageStatsReply, error) {
	switch period {
	case constants.StatsPeriodToday:
		stats, err := s.usage.GetStatsToday(ctx, userID, feature)
		if err != nil {
			return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeUsageStatsFailed)
		}
		return &UsageStatsReply{UserID: userID, Period: stats.Period, TotalCount: stats.TotalCount, TotalCredits: stats.TotalCredits}, nil
	case constants.StatsPeriodMonth:
		stats, err := s.usage.GetStatsMonth(ctx, userID, feature)
		if err != nil {
			return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeUsageStatsFailed)
		}
		return &UsageStatsReply{UserID: userID, Period: stats.Period, TotalCount: stats.TotalCount, TotalCredits: stats.TotalCredits}, nil
	default:
		summary, err := s.usage.GetSummary(ctx, userID)
		if err != nil {
			return nil, pkgErrors.WrapErrorWithLang(ctx, err, creditErrors.ErrCodeUsageStatsFailed)
		}
		reply := &UsageStatsReply{
			UserID:       userID,
			TotalCount:   summary.TotalCount,
			TotalCredits: summary.TotalCredits,
			Features:     make([]*FeatureUsageInfo, 0, len(summary.Features)),
		}
		for _, f := range summary.Features {
			reply.Features = append(reply.Features, &FeatureUsageInfo{
				Feature:      f.Feature,
				TotalCount:   f.TotalCount,
				TotalCredits: f.TotalCredits,
			})
		}
		return reply, nil
	}
}

// AddCreditsRequest 运营加赠额度
type AddCreditsRequest struct {
	UserID string `json:"user_id"`
	Amount int    `json:"amount"`
}

// AddCreditsReply 运营加赠额度结果
type AddCreditsReply struct {
	UserID      string `json:"user_id"`
	ChatCredits int    `json:"chat_credits"`
	Credits     int    `json:"credits"`
}

// AddCredits 运营加赠额度（客服补偿、活动赠送）
func (s *CreditService) AddCredits(ctx context.Context, req *AddCreditsRequest) (*AddCreditsReply, error) {
	account, err := s.uc.AddCredits(ctx, req.UserID, req.Amount)
	if err != nil {
		s.log.Errorf("AddCredits failed: user_id=%s, amount=%d, error=%v", req.UserID, req.Amount, err)
		return nil, err
	}
	return &AddCreditsReply{
		UserID:      account.UID,
		ChatCredits: account.ChatCredits,
		Credits:     account.Credits,
	}, nil
}

// ResetUsageReply 清零使用计数结果
type ResetUsageReply struct {
	UserID                    string `json:"user_id"`
	VoiceCreditsUsedThisMonth int    `json:"voice_credits_used_this_month"`
	VoiceCreditsUsedToday     int    `json:"voice_credits_used_today"`
	ImagesUsedThisMonth       int    `json:"images_used_this_month"`
}

// ResetUsage 清零单个用户的使用计数（运营工具）
func (s *CreditService) ResetUsage(ctx context.Context, userID string) (*ResetUsageReply, error) {
	account, err := s.uc.ResetUsageCounters(ctx, userID)
	if err != nil {
		s.log.Errorf("ResetUsage failed: user_id=%s, error=%v", userID, err)
		return nil, err
	}
	return &ResetUsageReply{
		UserID:                    account.UID,
		VoiceCreditsUsedThisMonth: account.VoiceCreditsUsedThisMonth,
		VoiceCreditsUsedToday:     account.VoiceCreditsUsedToday,
		ImagesUsedThisMonth:       account.ImagesUsedThisMonth,
	}, nil
}
