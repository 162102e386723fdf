package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/mq"
	"gov-ix-sol/internal/pkg/logger"
)

var (
	// ErrDuplicateRequest requestID 已有 pending / published 标记
	ErrDuplicateRequest = errors.New("duplicate handoff request")

	// ErrPublishFailed Kafka 未确认写入
	ErrPublishFailed = errors.New("handoff publish failed")
)

type PublisherOption struct {
	Topic       string
	Partitions  int
	SendTimeout time.Duration
}

// clearTimeout 失败清理使用独立的超时，不受调用方 ctx 取消影响
const clearTimeout = 2 * time.Second

// Publisher 把构建结果投递给提案组装层。
// 同一 requestID 只会成功投递一次；确定失败时清除占位允许重试，
// 结果未知（回执超时 / ctx 取消）时保留 pending 占位直至 TTL 过期
type Publisher struct {
	store    Store
	producer mq.Producer
	opt      PublisherOption
	now      func() time.Time
}

func NewPublisher(store Store, producer mq.Producer, opt PublisherOption) *Publisher {
	if opt.SendTimeout <= 0 {
		opt.SendTimeout = 5 * time.Second
	}
	return &Publisher{store: store, producer: producer, opt: opt, now: time.Now}
}

// Publish 投递一次构建结果，返回写入的消息体
func (p *Publisher) Publish(ctx context.Context, requestID, action string, env *builder.Env, res *builder.Result) (*Envelope, error) {
	if requestID == "" {
		return nil, fmt.Errorf("handoff: empty request id")
	}
	if env == nil || res == nil {
		return nil, fmt.Errorf("handoff: nil env or result")
	}

	ok, err := p.store.TryMarkPending(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("handoff mark pending: %w", err)
	}
	if !ok {
		status, _ := p.store.Status(ctx, requestID)
		return nil, fmt.Errorf("%w: request=%s, status=%s", ErrDuplicateRequest, requestID, status)
	}

	envelope := NewEnvelope(requestID, action, env, res, p.now().Unix())
	value, err := envelope.Encode()
	if err != nil {
		p.clear(ctx, requestID)
		return nil, fmt.Errorf("handoff encode: %w", err)
	}

	job := &mq.KafkaJob{
		Topic:     p.opt.Topic,
		Partition: mq.PartitionOf(env.Authority[:], p.opt.Partitions),
		Key:       []byte(requestID),
		Value:     value,
	}
	_, failed := mq.SendKafkaJobs(ctx, p.producer, []*mq.KafkaJob{job}, p.opt.SendTimeout)
	if len(failed) > 0 {
		sendErr := failed[0].Err
		if errors.Is(sendErr, mq.ErrDeliveryUnknown) {
			// broker 可能已写入，清除占位会导致重复投递
			logger.Errorf("[handoff] 投递结果未知，保留 pending 标记: request=%s, action=%s, err=%v", requestID, action, sendErr)
			return nil, fmt.Errorf("%w: %w", ErrPublishFailed, sendErr)
		}
		p.clear(ctx, requestID)
		logger.Errorf("[handoff] 投递失败: request=%s, action=%s, err=%v", requestID, action, sendErr)
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, sendErr)
	}

	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()
	if err := p.store.MarkPublished(markCtx, requestID); err != nil {
		// 消息已写入，仅标记失败；pending 标记仍会阻止重复投递直至过期
		logger.Warnf("[handoff] 标记 published 失败: request=%s, err=%v", requestID, err)
	}
	logger.Infof("[handoff] 已投递: request=%s, action=%s, partition=%d, instructions=%d, bytes=%d",
		requestID, action, job.Partition, len(envelope.Instructions), len(value))
	return envelope, nil
}

func (p *Publisher) clear(ctx context.Context, requestID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clearTimeout)
	defer cancel()
	if err := p.store.Clear(ctx, requestID); err != nil {
		logger.Warnf("[handoff] 清除 pending 标记失败: request=%s, err=%v", requestID, err)
	}
}
