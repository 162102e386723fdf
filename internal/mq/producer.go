package mq

import (
	"context"
	"fmt"
	"os"
	"time"

	"gov-ix-sol/internal/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	defaultBatchSize  = 32 * 1024
	defaultLingerMs   = 5
	defaultPartitions = 1
	adminTimeout      = 10 * time.Second
)

// TopicSpec 需要保证存在的 topic
type TopicSpec struct {
	Topic      string
	Partitions int
}

type ProducerOption struct {
	Brokers   string // 多个用英文逗号分隔（如 "localhost:9092,localhost:9093"）
	BatchSize int    // 批处理大小（字节），<=0 使用默认 32KB
	LingerMs  int    // 批处理最大延迟（毫秒），<0 使用默认 5ms
	Topics    []TopicSpec
}

// ensureTopics 创建缺失的 topic；多 broker 时副本数为 2
func ensureTopics(brokers string, topics []TopicSpec) error {
	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{"bootstrap.servers": brokers})
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	meta, err := admin.GetMetadata(nil, true, int(adminTimeout/time.Millisecond))
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	replication := 1
	if len(meta.Brokers) > 1 {
		replication = 2
	}

	var missing []kafka.TopicSpecification
	for _, t := range topics {
		if _, ok := meta.Topics[t.Topic]; ok {
			continue
		}
		partitions := t.Partitions
		if partitions <= 0 {
			partitions = defaultPartitions
		}
		missing = append(missing, kafka.TopicSpecification{
			Topic:             t.Topic,
			NumPartitions:     partitions,
			ReplicationFactor: replication,
		})
	}
	if len(missing) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	results, err := admin.CreateTopics(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}
	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError && r.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %w", r.Topic, r.Error)
		}
	}
	logger.Infof("[mq] 已创建 topic: count=%d, replication=%d", len(missing), replication)
	return nil
}

// NewProducer 创建幂等 Kafka 生产者，并确保所需 topic 存在
func NewProducer(opt ProducerOption) (*kafka.Producer, error) {
	if err := ensureTopics(opt.Brokers, opt.Topics); err != nil {
		return nil, err
	}

	batchSize := opt.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	lingerMs := opt.LingerMs
	if lingerMs < 0 {
		lingerMs = defaultLingerMs
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": opt.Brokers,
		"client.id":         fmt.Sprintf("ixtool-%s", host),

		// 可靠性
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5, // 幂等场景下最大值为 5

		// 超时与重试
		"delivery.timeout.ms": 30000,
		"request.timeout.ms":  30000,
		"retries":             5,
		"retry.backoff.ms":    100,

		"batch.size":        batchSize,
		"linger.ms":         lingerMs,
		"compression.type":  "none",
		"message.max.bytes": 2 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	logger.Infof("[mq] Kafka producer 已创建: brokers=%s, batch=%d, linger=%dms", opt.Brokers, batchSize, lingerMs)
	return producer, nil
}
