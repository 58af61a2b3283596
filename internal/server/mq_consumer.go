package server

import (
	"context"
	"encoding/json"

	"credit-service/internal/biz"
	"credit-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
)

// MQConsumerServer 消费使用流水事件并批量落库
// 扣费本身在发消息前已同步提交，这里只负责审计流水的持久化
type MQConsumerServer struct {
	c       rocketmq.PushConsumer
	repo    biz.UsageRecordRepo
	conf    *conf.Rocketmq
	log     *log.Helper
	enabled bool
}

// NewMQConsumerServer 创建 RocketMQ 消费者服务
func NewMQConsumerServer(c *conf.Bootstrap, repo biz.UsageRecordRepo, logger log.Logger) *MQConsumerServer {
	if c.Data == nil || c.Data.Rocketmq == nil || !c.Data.Rocketmq.Enabled {
		return &MQConsumerServer{enabled: false}
	}
	mqc := c.Data.Rocketmq

	r, err := rocketmq.NewPushConsumer(
		consumer.WithNsResolver(primitive.NewPassthroughResolver(mqc.NameServers)),
		consumer.WithGroupName(mqc.GroupName),
		consumer.WithRetry(int(mqc.RetryTimes)),
		consumer.WithConsumeMessageBatchMaxSize(100),
	)
	if err != nil {
		log.NewHelper(logger).Errorf("init consumer error: %v", err)
		return &MQConsumerServer{enabled: false}
	}

	return &MQConsumerServer{
		c:       r,
		repo:    repo,
		conf:    mqc,
		log:     log.NewHelper(logger),
		enabled: true,
	}
}

// Start 启动消费者
func (s *MQConsumerServer) Start(ctx context.Context) error {
	if !s.enabled || s.c == nil {
		s.log.Infof("MQConsumerServer is disabled, skipping startup")
		return nil
	}

	s.log.Infof("Starting MQConsumerServer, topic: %s", s.conf.Topic)

	if err := s.c.Subscribe(s.conf.Topic, consumer.MessageSelector{}, s.handler); err != nil {
		// 不返回错误，避免 MQ 不可用时拖垮整个应用启动
		s.log.Errorf("Failed to subscribe to topic %s: %v", s.conf.Topic, err)
		return nil
	}

	if err := s.c.Start(); err != nil {
		s.log.Errorf("Failed to start RocketMQ consumer: %v", err)
		return nil
	}

	return nil
}

// Stop 停止消费者
func (s *MQConsumerServer) Stop(ctx context.Context) error {
	if !s.enabled || s.c == nil {
		return nil
	}
	s.log.Info("Stopping MQConsumerServer")
	return s.c.Shutdown()
}

func (s *MQConsumerServer) handler(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	if len(msgs) == 0 {
		return consumer.ConsumeSuccess, nil
	}

	var events []*biz.UsageEvent
	for _, msg := range msgs {
		var event biz.UsageEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			s.log.Errorf("Unmarshal usage event failed: %v, body: %s", err, string(msg.Body))
			continue
		}
		events = append(events, &event)
	}

	if len(events) > 0 {
		if err := s.repo.BatchCreateUsageRecords(ctx, events); err != nil {
			s.log.Errorf("BatchCreateUsageRecords failed: %v", err)
			return consumer.ConsumeRetryLater, nil
		}
	}
	return consumer.ConsumeSuccess, nil
}
