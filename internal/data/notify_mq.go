package data

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-trade/internal/biz"
	"campus-trade/internal/conf"

	rocketmq "github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/go-kratos/kratos/v2/log"
)

// mqNotificationSink biz.NotificationSink 的 RocketMQ 实现。
// 订单事件由网关/WebSocket 层消费后推送给买卖双方。
type mqNotificationSink struct {
	producer rocketmq.Producer
	topic    string
	log      *log.Helper
}

// noopNotificationSink 未启用消息队列时的空实现
type noopNotificationSink struct{}

func (noopNotificationSink) PublishOrderEvent(ctx context.Context, event *biz.OrderEvent) error {
	return nil
}

// NewNotificationSink 创建订单事件通知下沉。
// rocketmq 未启用时返回空实现，发布调用直接成功。
func NewNotificationSink(c *conf.Bootstrap, logger log.Logger) (biz.NotificationSink, func(), error) {
	helper := log.NewHelper(logger)
	var mq *conf.Rocketmq
	if c.Data != nil {
		mq = c.Data.Rocketmq
	}
	if mq == nil || !mq.Enabled {
		helper.Info("rocketmq is disabled, order events will not be published")
		return noopNotificationSink{}, func() {}, nil
	}

	retryTimes := int(mq.RetryTimes)
	if retryTimes <= 0 {
		retryTimes = 2
	}
	p, err := rocketmq.NewProducer(
		producer.WithNsResolver(primitive.NewPassthroughResolver(mq.NameServers)),
		producer.WithGroupName(mq.GroupName),
		producer.WithRetry(retryTimes),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rocketmq producer: %w", err)
	}
	if err := p.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start rocketmq producer: %w", err)
	}

	cleanup := func() {
		if err := p.Shutdown(); err != nil {
			helper.Errorf("failed to shutdown rocketmq producer: %v", err)
		}
	}

	return &mqNotificationSink{
		producer: p,
		topic:    mq.Topic,
		log:      helper,
	}, cleanup, nil
}

// PublishOrderEvent 发布订单事件
func (s *mqNotificationSink) PublishOrderEvent(ctx context.Context, event *biz.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := primitive.NewMessage(s.topic, body)
	msg.WithTag(event.Type)
	msg.WithKeys([]string{event.OrderNo})

	result, err := s.producer.SendSync(ctx, msg)
	if err != nil {
		return err
	}
	s.log.Debugf("order event published: type=%s, order_no=%s, msg_id=%s",
		event.Type, event.OrderNo, result.MsgID)
	return nil
}
