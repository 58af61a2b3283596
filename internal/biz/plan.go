package biz

import (
	"credit-service/internal/constants"
)

// 每单位功能消耗的额度
const (
	// ChatMessageCost 一条聊天消息的额度成本
	ChatMessageCost = 5
	// VoiceMinuteCost 一分钟语音的额度成本
	VoiceMinuteCost = 10
)

// 各套餐的月度语音额度（滚动窗口，按 used_this_month 计数，不做存量扣减）
const (
	// VoiceOnlyMonthlyVoiceCredits voice_only 套餐月度语音额度
	VoiceOnlyMonthlyVoiceCredits = 1000
	// VoiceChatMonthlyVoiceCredits voice_chat 套餐月度语音额度
	VoiceChatMonthlyVoiceCredits = 1400
)

// MonthlyImageQuota 含图片功能套餐的每月图片上传数量
const MonthlyImageQuota = 30

// Plan 套餐静态定义（只读目录，不落库）
type Plan struct {
	Name                string   // 套餐标识，与账户 subscription_type 对应
	DisplayName         string   // 展示名称
	Price               float64  // 价格（美元/月，一次性包为单次价格）
	ChatMessageCost     int      // 每条聊天消息额度成本
	VoiceMinuteCost     int      // 每分钟语音额度成本
	MonthlyVoiceCredits int      // 月度语音额度，0 表示无
	UnlimitedChat       bool     // 聊天是否无限制
	UnlimitedVoice      bool     // 语音是否无限制（当前无套餐提供，保留）
	ImageQuota          int      // 每月图片上传额度，0 表示套餐不含图片功能
	OneTime             bool     // 是否一次性加购包（非订阅）
	TopupFeature        string   // 一次性包对应的功能（chat/voice）
	TopupCredits        int      // 一次性包包含的额度数
	Features            []string // 展示用功能列表
}

// planCatalog 套餐目录
// 注意：目录中每个订阅套餐的 Name 都必须在额度分支逻辑中有对应分支
var planCatalog = map[string]*Plan{
	constants.SubscriptionTypeFreeTrial: {
		Name:            constants.SubscriptionTypeFreeTrial,
		DisplayName:     "Free Trial",
		Price:           0,
		ChatMessageCost: ChatMessageCost,
		VoiceMinuteCost: VoiceMinuteCost,
		Features: []string{
			"Trial chat credits",
			"Trial voice credits",
		},
	},
	constants.SubscriptionTypeChatOnly: {
		Name:            constants.SubscriptionTypeChatOnly,
		DisplayName:     "Chat Unlimited",
		Price:           19.99,
		ChatMessageCost: ChatMessageCost,
		VoiceMinuteCost: VoiceMinuteCost,
		UnlimitedChat:   true,
		ImageQuota:      MonthlyImageQuota,
		Features: []string{
			"Unlimited chat messages",
			"Image uploads (30/month)",
			"Voice via remaining or top-up credits",
		},
	},
	constants.SubscriptionTypeVoiceOnly: {
		Name:                constants.SubscriptionTypeVoiceOnly,
		DisplayName:         "Voice",
		Price:               29.99,
		ChatMessageCost:     ChatMessageCost,
		VoiceMinuteCost:     VoiceMinuteCost,
		MonthlyVoiceCredits: VoiceOnlyMonthlyVoiceCredits,
		Features: []string{
			"100 voice minutes per month",
			"Chat via remaining or top-up credits",
		},
	},
	constants.SubscriptionTypeVoiceChat: {
		Name:                constants.SubscriptionTypeVoiceChat,
		DisplayName:         "Voice + Chat",
		Price:               49.99,
		ChatMessageCost:     ChatMessageCost,
		VoiceMinuteCost:     VoiceMinuteCost,
		MonthlyVoiceCredits: VoiceChatMonthlyVoiceCredits,
		UnlimitedChat:       true,
		ImageQuota:          MonthlyImageQuota,
		Features: []string{
			"Unlimited chat messages",
			"140 voice minutes per month",
			"Image uploads (30/month)",
		},
	},
	// 一次性加购包：独立于订阅，降级/换套餐时不清零
	"chat_topup_500": {
		Name:         "chat_topup_500",
		DisplayName:  "Chat Top-up 500",
		Price:        4.99,
		OneTime:      true,
		TopupFeature: constants.FeatureTypeChat,
		TopupCredits: 500,
		Features:     []string{"500 chat credits, never expire"},
	},
	"voice_topup_300": {
		Name:         "voice_topup_300",
		DisplayName:  "Voice Top-up 300",
		Price:        9.99,
		OneTime:      true,
		TopupFeature: constants.FeatureTypeVoice,
		TopupCredits: 300,
		Features:     []string{"30 voice minutes, never expire"},
	},
}

// planOrder 目录展示顺序
var planOrder = []string{
	constants.SubscriptionTypeFreeTrial,
	constants.SubscriptionTypeChatOnly,
	constants.SubscriptionTypeVoiceOnly,
	constants.SubscriptionTypeVoiceChat,
	"chat_topup_500",
	"voice_topup_300",
}

// GetPlan 按套餐名查询静态定义
func GetPlan(name string) (*Plan, bool) {
	p, ok := planCatalog[name]
	return p, ok
}

// ListPlans 按固定顺序返回全部套餐定义
func ListPlans() []*Plan {
	plans := make([]*Plan, 0, len(planOrder))
	for _, name := range planOrder {
		plans = append(plans, planCatalog[name])
	}
	return plans
}

// SubscriptionPlanNames 返回全部订阅套餐名（不含一次性加购包）
func SubscriptionPlanNames() []string {
	names := make([]string, 0, 4)
	for _, name := range planOrder {
		if !planCatalog[name].OneTime {
			names = append(names, name)
		}
	}
	return names
}

// featureUnlimited 判断某套餐下某功能是否无限制
func featureUnlimited(subType, feature string) bool {
	p, ok := planCatalog[subType]
	if !ok {
		return false
	}
	switch feature {
	case constants.FeatureTypeChat:
		return p.UnlimitedChat
	case constants.FeatureTypeVoice:
		return p.UnlimitedVoice
	}
	return false
}

// monthlyVoiceTracked 判断某套餐的语音是否按月度额度计量
func monthlyVoiceTracked(subType string) bool {
	return monthlyVoiceAllotment(subType) > 0
}

// monthlyVoiceAllotment 返回某套餐的月度语音额度，无则为 0
func monthlyVoiceAllotment(subType string) int {
	if p, ok := planCatalog[subType]; ok {
		return p.MonthlyVoiceCredits
	}
	return 0
}
