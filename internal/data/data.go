package data

import (
	"fmt"
	"time"

	"credit-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"github.com/google/wire"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewDB,
	NewRedis,
	NewRedsync,
	NewData,
	NewCreditAccountRepo,
	NewUsageRecordRepo,
	NewTransactionRepo,
)

// Data 数据层结构体
type Data struct {
	db  *gorm.DB
	rdb *redis.Client
	mq  rocketmq.Producer // 为空表示 MQ 未启用，使用同步落库
	mqc *conf.Rocketmq
}

// NewDB 创建数据库连接
func NewDB(c *conf.Bootstrap) (*gorm.DB, error) {
	if c.Data == nil || c.Data.Database == nil {
		return nil, fmt.Errorf("database config is nil")
	}
	db, err := gorm.Open(mysql.Open(c.Data.Database.Source), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedis 创建 Redis 连接
func NewRedis(c *conf.Bootstrap) (*redis.Client, error) {
	if c.Data == nil || c.Data.Redis == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Data.Redis.Addr,
		Password:     c.Data.Redis.Password,
		DB:           c.Data.Redis.DB,
		ReadTimeout:  conf.ParseDuration(c.Data.Redis.ReadTimeout, 200*time.Millisecond),
		WriteTimeout: conf.ParseDuration(c.Data.Redis.WriteTimeout, 200*time.Millisecond),
	})

	// 测试连接
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// NewRedsync 创建分布式锁客户端（扣费行锁外的进程间互斥）
func NewRedsync(rdb *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(rdb))
}

// NewData 创建数据层实例
func NewData(c *conf.Bootstrap, logger log.Logger, db *gorm.DB, rdb *redis.Client) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	d := &Data{
		db:  db,
		rdb: rdb,
	}

	// RocketMQ 可选：启用失败时降级为同步落库，不阻塞启动
	if c.Data != nil && c.Data.Rocketmq != nil && c.Data.Rocketmq.Enabled {
		p, err := rocketmq.NewProducer(
			producer.WithNsResolver(primitive.NewPassthroughResolver(c.Data.Rocketmq.NameServers)),
			producer.WithGroupName(c.Data.Rocketmq.GroupName),
			producer.WithRetry(int(c.Data.Rocketmq.RetryTimes)),
		)
		if err != nil {
			helper.Errorf("init rocketmq producer failed, falling back to sync persistence: %v", err)
		} else if err := p.Start(); err != nil {
			helper.Errorf("start rocketmq producer failed, falling back to sync persistence: %v", err)
		} else {
			d.mq = p
			d.mqc = c.Data.Rocketmq
		}
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.mq != nil {
			if err := d.mq.Shutdown(); err != nil {
				helper.Errorf("failed to shutdown rocketmq producer: %v", err)
			}
		}
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		if err := rdb.Close(); err != nil {
			helper.Errorf("failed to close redis: %v", err)
		}
	}

	return d, cleanup, nil
}
