package biz

import (
	"testing"

	"credit-service/internal/constants"

	"github.com/stretchr/testify/require"
)

func TestPlanCatalogConsistency(t *testing.T) {
	plans := ListPlans()
	require.Len(t, plans, 6)

	seen := make(map[string]bool)
	for _, p := range plans {
		require.False(t, seen[p.Name], "duplicate plan %s", p.Name)
		seen[p.Name] = true

		got, ok := GetPlan(p.Name)
		require.True(t, ok)
		require.Same(t, p, got)

		if p.OneTime {
			require.NotEmpty(t, p.TopupFeature)
			require.Positive(t, p.TopupCredits)
			require.Zero(t, p.MonthlyVoiceCredits)
		} else {
			require.Equal(t, ChatMessageCost, p.ChatMessageCost)
			require.Equal(t, VoiceMinuteCost, p.VoiceMinuteCost)
		}
	}
}

func TestPlanTierDefinitions(t *testing.T) {
	free, _ := GetPlan(constants.SubscriptionTypeFreeTrial)
	require.False(t, free.UnlimitedChat)
	require.Zero(t, free.MonthlyVoiceCredits)
	require.Zero(t, free.ImageQuota)

	chat, _ := GetPlan(constants.SubscriptionTypeChatOnly)
	require.True(t, chat.UnlimitedChat)
	require.Zero(t, chat.MonthlyVoiceCredits)
	require.Equal(t, MonthlyImageQuota, chat.ImageQuota)

	voice, _ := GetPlan(constants.SubscriptionTypeVoiceOnly)
	require.False(t, voice.UnlimitedChat)
	require.Equal(t, VoiceOnlyMonthlyVoiceCredits, voice.MonthlyVoiceCredits)
	require.Zero(t, voice.ImageQuota)

	both, _ := GetPlan(constants.SubscriptionTypeVoiceChat)
	require.True(t, both.UnlimitedChat)
	require.Equal(t, VoiceChatMonthlyVoiceCredits, both.MonthlyVoiceCredits)
	require.Equal(t, MonthlyImageQuota, both.ImageQuota)
}

func TestSubscriptionPlanNamesExcludesTopups(t *testing.T) {
	names := SubscriptionPlanNames()
	require.Equal(t, []string{
		constants.SubscriptionTypeFreeTrial,
		constants.SubscriptionTypeChatOnly,
		constants.SubscriptionTypeVoiceOnly,
		constants.SubscriptionTypeVoiceChat,
	}, names)
}

func TestFeatureUnlimited(t *testing.T) {
	require.True(t, featureUnlimited(constants.SubscriptionTypeChatOnly, constants.FeatureTypeChat))
	require.True(t, featureUnlimited(constants.SubscriptionTypeVoiceChat, constants.FeatureTypeChat))
	require.False(t, featureUnlimited(constants.SubscriptionTypeFreeTrial, constants.FeatureTypeChat))
	require.False(t, featureUnlimited(constants.SubscriptionTypeVoiceOnly, constants.FeatureTypeChat))
	// 没有套餐提供无限制语音
	for _, name := range SubscriptionPlanNames() {
		require.False(t, featureUnlimited(name, constants.FeatureTypeVoice))
	}
	require.False(t, featureUnlimited("no_such_plan", constants.FeatureTypeChat))
}

func TestMonthlyVoiceTracking(t *testing.T) {
	require.False(t, monthlyVoiceTracked(constants.SubscriptionTypeFreeTrial))
	require.False(t, monthlyVoiceTracked(constants.SubscriptionTypeChatOnly))
	require.True(t, monthlyVoiceTracked(constants.SubscriptionTypeVoiceOnly))
	require.True(t, monthlyVoiceTracked(constants.SubscriptionTypeVoiceChat))

	require.Equal(t, 1000, monthlyVoiceAllotment(constants.SubscriptionTypeVoiceOnly))
	require.Equal(t, 1400, monthlyVoiceAllotment(constants.SubscriptionTypeVoiceChat))
	require.Zero(t, monthlyVoiceAllotment(constants.SubscriptionTypeChatOnly))
}
