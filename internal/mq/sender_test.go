package mq

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "ixtool-test-topic"

// fakeProducer 按 Value 决定回执：ok 立即确认，fail 返回分区错误，hang 不回执
type fakeProducer struct{}

func (p *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	switch string(msg.Value) {
	case "reject":
		return errors.New("queue full")
	case "hang":
		return nil
	case "fail":
		msg.TopicPartition.Error = errors.New("broker down")
	}
	deliveryChan <- msg
	return nil
}

func job(value string) *KafkaJob {
	return &KafkaJob{Topic: testTopic, Partition: 0, Key: []byte("k"), Value: []byte(value)}
}

func TestSendKafkaJobs_Results(t *testing.T) {
	jobs := []*KafkaJob{job("ok"), job("fail"), job("reject"), job("ok")}
	ok, failed := SendKafkaJobs(context.Background(), &fakeProducer{}, jobs, time.Second)

	assert.Len(t, ok, 2)
	require.Len(t, failed, 2)
	for _, f := range failed {
		assert.Error(t, f.Err)
		assert.Contains(t, []string{"fail", "reject"}, string(f.Job.Value))
	}
}

func TestSendKafkaJobs_Timeout(t *testing.T) {
	ok, failed := SendKafkaJobs(context.Background(), &fakeProducer{}, []*KafkaJob{job("hang")}, 20*time.Millisecond)
	assert.Empty(t, ok)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Err.Error(), "delivery timeout")
	assert.ErrorIs(t, failed[0].Err, ErrDeliveryUnknown)
}

func TestSendKafkaJobs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, failed := SendKafkaJobs(ctx, &fakeProducer{}, []*KafkaJob{job("hang")}, time.Minute)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, context.Canceled)
	assert.ErrorIs(t, failed[0].Err, ErrDeliveryUnknown)
}

func TestSendKafkaJobs_DefiniteFailures(t *testing.T) {
	_, failed := SendKafkaJobs(context.Background(), &fakeProducer{}, []*KafkaJob{job("fail"), job("reject")}, time.Second)
	require.Len(t, failed, 2)
	for _, f := range failed {
		assert.NotErrorIs(t, f.Err, ErrDeliveryUnknown)
	}
}

func TestPartitionOf(t *testing.T) {
	key := []byte("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	p := PartitionOf(key, 4)
	assert.GreaterOrEqual(t, p, int32(0))
	assert.Less(t, p, int32(4))
	assert.Equal(t, p, PartitionOf(key, 4))

	assert.Equal(t, int32(0), PartitionOf(key, 1))
	assert.Equal(t, int32(0), PartitionOf(nil, 8))
}

// 需要本地 Kafka：IXTOOL_KAFKA=127.0.0.1:9092
func TestSendKafkaJobs_RealKafka(t *testing.T) {
	brokers := os.Getenv("IXTOOL_KAFKA")
	if brokers == "" {
		t.Skip("IXTOOL_KAFKA not set")
	}

	producer, err := NewProducer(ProducerOption{
		Brokers: brokers,
		Topics:  []TopicSpec{{Topic: testTopic, Partitions: 2}},
	})
	require.NoError(t, err)
	defer producer.Close()

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"group.id":          "ixtool-test-" + time.Now().Format("20060102150405"),
		"auto.offset.reset": "earliest",
	})
	require.NoError(t, err)
	defer consumer.Close()
	require.NoError(t, consumer.Subscribe(testTopic, nil))

	jobs := []*KafkaJob{
		{Topic: testTopic, Partition: 0, Key: []byte("a"), Value: []byte("m1")},
		{Topic: testTopic, Partition: 1, Key: []byte("b"), Value: []byte("m2")},
	}
	ok, failed := SendKafkaJobs(context.Background(), producer, jobs, 5*time.Second)
	require.Empty(t, failed)
	assert.Len(t, ok, 2)

	seen := map[string]bool{}
	deadline := time.Now().Add(10 * time.Second)
	for len(seen) < 2 && time.Now().Before(deadline) {
		msg, err := consumer.ReadMessage(time.Second)
		if err != nil {
			continue
		}
		seen[string(msg.Value)] = true
	}
	assert.True(t, seen["m1"])
	assert.True(t, seen["m2"])
}
