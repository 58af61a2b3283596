package biz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusCacheReturnsClones(t *testing.T) {
	cache := NewStatusCache(&CreditConfig{StatusCacheSize: 8, StatusCacheTTL: time.Minute})

	original := &CreditAccount{UID: "u1", ChatCredits: 10}
	cache.Add("u1", original)

	// 写入后篡改原对象不影响缓存
	original.ChatCredits = 0
	got, ok := cache.Get("u1")
	require.True(t, ok)
	require.Equal(t, 10, got.ChatCredits)

	// 读出后篡改也不影响缓存
	got.ChatCredits = 99
	again, ok := cache.Get("u1")
	require.True(t, ok)
	require.Equal(t, 10, again.ChatCredits)
}

func TestStatusCacheRemove(t *testing.T) {
	cache := NewStatusCache(&CreditConfig{StatusCacheSize: 8, StatusCacheTTL: time.Minute})
	cache.Add("u1", &CreditAccount{UID: "u1"})

	cache.Remove("u1")
	_, ok := cache.Get("u1")
	require.False(t, ok)

	_, ok = cache.Get("never-added")
	require.False(t, ok)
}
