package biz

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// StatusCache 资格检查读缓存（按用户维度，短 TTL）
// 作为可注入协作者抽象出来：测试可替换为直通实现，避免依赖真实时间
// 任何成功写入账户后必须立即 Remove，保证下一次资格检查读到新余额
type StatusCache interface {
	Get(userID string) (*CreditAccount, bool)
	Add(userID string, account *CreditAccount)
	Remove(userID string)
}

// lruStatusCache 基于过期 LRU 的进程内实现
type lruStatusCache struct {
	lru *expirable.LRU[string, *CreditAccount]
}

// NewStatusCache 创建资格检查读缓存
func NewStatusCache(conf *CreditConfig) StatusCache {
	return &lruStatusCache{
		lru: expirable.NewLRU[string, *CreditAccount](conf.StatusCacheSize, nil, conf.StatusCacheTTL),
	}
}

func (c *lruStatusCache) Get(userID string) (*CreditAccount, bool) {
	acc, ok := c.lru.Get(userID)
	if !ok {
		return nil, false
	}
	// 返回拷贝，避免调用方读到的对象被后续写入篡改
	return acc.Clone(), true
}

func (c *lruStatusCache) Add(userID string, account *CreditAccount) {
	c.lru.Add(userID, account.Clone())
}

func (c *lruStatusCache) Remove(userID string) {
	c.lru.Remove(userID)
}
