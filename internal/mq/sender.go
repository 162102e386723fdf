package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 一条待发送的消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// KafkaSendResult 单条消息的发送结果
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

var (
	errDeliveryClosed = errors.New("delivery channel closed unexpectedly")

	// ErrDeliveryUnknown 消息已交给 producer 但未在超时 / ctx 结束前收到回执，
	// broker 可能已经写入
	ErrDeliveryUnknown = errors.New("delivery outcome unknown")
)

// Producer SendKafkaJobs 依赖的生产者能力，*kafka.Producer 满足该接口
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// SendKafkaJobs 并发发送多条消息并等待各自的 ack。
// 每条消息单独超时；ctx 取消时尚未确认的消息全部记为失败
func SendKafkaJobs(
	ctx context.Context,
	producer Producer,
	jobs []*KafkaJob,
	perMessageTimeout time.Duration,
) (ok []*KafkaJob, failed []KafkaSendResult) {
	var wg sync.WaitGroup
	resultCh := make(chan KafkaSendResult, len(jobs))

	for _, job := range jobs {
		wg.Add(1)
		go func(job *KafkaJob) {
			defer wg.Done()
			resultCh <- KafkaSendResult{Job: job, Err: sendOne(ctx, producer, job, perMessageTimeout)}
		}(job)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.Err != nil {
			failed = append(failed, res)
		} else {
			ok = append(ok, res.Job)
		}
	}
	return ok, failed
}

func sendOne(ctx context.Context, producer Producer, job *KafkaJob, timeout time.Duration) error {
	deliveryChan := make(chan kafka.Event, 1)
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   job.Key,
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case e, open := <-deliveryChan:
		if !open {
			return errDeliveryClosed
		}
		msg, isMsg := e.(*kafka.Message)
		if !isMsg {
			return fmt.Errorf("invalid delivery event type: %T", e)
		}
		return msg.TopicPartition.Error
	case <-timer.C:
		go drain(deliveryChan)
		return fmt.Errorf("%w: delivery timeout (>%v)", ErrDeliveryUnknown, timeout)
	case <-ctx.Done():
		go drain(deliveryChan)
		return fmt.Errorf("%w: ctx cancelled: %w", ErrDeliveryUnknown, ctx.Err())
	}
}

// drain 消费迟到的 delivery 事件，避免 librdkafka 回调阻塞
func drain(ch <-chan kafka.Event) {
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
	}
}
