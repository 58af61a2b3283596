package service

import (
	"context"

	"credit-service/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

// CreditInternalService 面向内部服务的额度闸口
// chat-service / voice-service 在放行一次功能使用前调用这里
type CreditInternalService struct {
	uc  *biz.CreditUseCase
	log *log.Helper
}

// NewCreditInternalService 创建 CreditInternalService
func NewCreditInternalService(uc *biz.CreditUseCase, logger log.Logger) *CreditInternalService {
	return &CreditInternalService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// EnsureAccountRequest 账户初始化
type EnsureAccountRequest struct {
	UserID string `json:"user_id"`
}

// EnsureAccountReply 账户初始化结果
type EnsureAccountReply struct {
	UserID           string `json:"user_id"`
	SubscriptionType string `json:"subscription_type"`
	ChatCredits      int    `json:"chat_credits"`
	VoiceCredits     int    `json:"voice_credits"`
}

// EnsureAccount 注册时初始化试用账户（幂等，已存在时返回现有账户）
func (s *CreditInternalService) EnsureAccount(ctx context.Context, req *EnsureAccountRequest) (*EnsureAccountReply, error) {
	account, err := s.uc.EnsureAccount(ctx, req.UserID)
	if err != nil {
		s.log.Errorf("EnsureAccount failed: user_id=%s, error=%v", req.UserID, err)
		return nil, err
	}
	return &EnsureAccountReply{
		UserID:           account.UID,
		SubscriptionType: account.SubscriptionType,
		ChatCredits:      account.ChatCredits,
		VoiceCredits:     account.VoiceCredits,
	}, nil
}

// CheckCreditRequest 额度资格检查
type CheckCreditRequest struct {
	UserID  string `json:"user_id"`
	Feature string `json:"feature"` // chat / voice / image
}

// CheckCreditReply 额度资格检查结果
type CheckCreditReply struct {
	CanUse        bool   `json:"can_use"`
	Reason        string `json:"reason,omitempty"`
	CreditsNeeded int    `json:"credits_needed,omitempty"`
}

// CheckCredit 检查用户能否使用某功能（只读，不扣费，结果可能有几秒缓存）
func (s *CreditInternalService) CheckCredit(ctx context.Context, req *CheckCreditRequest) (*CheckCreditReply, error) {
	result, err := s.uc.CanUseFeature(ctx, req.UserID, req.Feature)
	if err != nil {
		s.log.Errorf("CheckCredit failed: user_id=%s, feature=%s, error=%v", req.UserID, req.Feature, err)
		return nil, err
	}
	return &CheckCreditReply{
		CanUse:        result.CanUse,
		Reason:        result.Reason,
		CreditsNeeded: result.CreditsNeeded,
	}, nil
}

// DeductCreditsRequest 按次扣费
type DeductCreditsRequest struct {
	UserID   string `json:"user_id"`
	Feature  string `json:"feature"` // chat / voice
	ThreadID string `json:"thread_id,omitempty"`
}

// DeductCreditsReply 按次扣费结果
type DeductCreditsReply struct {
	Success          bool   `json:"success"`
	CreditsUsed      int    `json:"credits_used"`
	RemainingCredits int    `json:"remaining_credits"`
	Source           string `json:"source,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// DeductCredits 按功能单价扣一次费（聊天一条消息、语音一分钟）
// 余额不足等业务拒绝不报错，通过 success/reason 返回给调用方
func (s *CreditInternalService) DeductCredits(ctx context.Context, req *DeductCreditsRequest) (*DeductCreditsReply, error) {
	result, err := s.uc.DeductCreditsForUsage(ctx, req.UserID, req.Feature, req.ThreadID)
	if err != nil {
		s.log.Errorf("DeductCredits failed: user_id=%s, feature=%s, error=%v", req.UserID, req.Feature, err)
		return nil, err
	}
	return &DeductCreditsReply{
		Success:          result.Success,
		CreditsUsed:      result.CreditsUsed,
		RemainingCredits: result.RemainingCredits,
		Source:           result.Source,
		Reason:           result.Reason,
	}, nil
}

// DeductVoiceDurationRequest 按语音时长扣费
type DeductVoiceDurationRequest struct {
	UserID      string `json:"user_id"`
	UserSeconds int    `json:"user_seconds"`
	BotSeconds  int    `json:"bot_seconds"`
	ThreadID    string `json:"thread_id,omitempty"`
}

// DeductVoiceDurationReply 按语音时长扣费结果
type DeductVoiceDurationReply struct {
	Success          bool    `json:"success"`
	CreditsUsed      int     `json:"credits_used"`
	MinutesUsed      float64 `json:"minutes_used"`
	RemainingCredits int     `json:"remaining_credits"`
	Reason           string  `json:"reason,omitempty"`
}

// DeductVoiceDuration 语音会话结束后按实际时长结算（分钟向上取整计费）
func (s *CreditInternalService) DeductVoiceDuration(ctx context.Context, req *DeductVoiceDurationRequest) (*DeductVoiceDurationReply, error) {
	result, err := s.uc.DeductVoiceCreditsByDuration(ctx, req.UserID, req.UserSeconds, req.BotSeconds, req.ThreadID)
	if err != nil {
		s.log.Errorf("DeductVoiceDuration failed: user_id=%s, user_seconds=%d, bot_seconds=%d, error=%v",
			req.UserID, req.UserSeconds, req.BotSeconds, err)
		return nil, err
	}
	return &DeductVoiceDurationReply{
		Success:          result.Success,
		CreditsUsed:      result.CreditsUsed,
		MinutesUsed:      result.MinutesUsed,
		RemainingCredits: result.RemainingCredits,
		Reason:           result.Reason,
	}, nil
}

// CheckImageReply 图片额度检查结果
type CheckImageReply struct {
	CanUse        bool   `json:"can_use"`
	Reason        string `json:"reason,omitempty"`
	CreditsNeeded int    `json:"credits_needed,omitempty"`
}

// CheckImage 检查用户能否上传图片
func (s *CreditInternalService) CheckImage(ctx context.Context, userID string) (*CheckImageReply, error) {
	result, err := s.uc.CanUploadImage(ctx, userID)
	if err != nil {
		s.log.Errorf("CheckImage failed: user_id=%s, error=%v", userID, err)
		return nil, err
	}
	return &CheckImageReply{
		CanUse:        result.CanUse,
		Reason:        result.Reason,
		CreditsNeeded: result.CreditsNeeded,
	}, nil
}

// RecordImageRequest 记录一次图片上传
type RecordImageRequest struct {
	UserID string `json:"user_id"`
}

// RecordImageReply 记录图片上传结果
type RecordImageReply struct {
	UserID              string `json:"user_id"`
	ImagesUsedThisMonth int    `json:"images_used_this_month"`
}

// RecordImage 记录一次图片上传（额度用尽时返回业务错误）
func (s *CreditInternalService) RecordImage(ctx context.Context, req *RecordImageRequest) (*RecordImageReply, error) {
	account, err := s.uc.RecordImageUsage(ctx, req.UserID)
	if err != nil {
		s.log.Errorf("RecordImage failed: user_id=%s, error=%v", req.UserID, err)
		return nil, err
	}
	return &RecordImageReply{
		UserID:              account.UID,
		ImagesUsedThisMonth: account.ImagesUsedThisMonth,
	}, nil
}
