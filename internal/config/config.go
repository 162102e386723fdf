package config

import (
	"time"

	"gov-ix-sol/internal/pkg/logger"
)

type LogConfig struct {
	Format   string `json:",default=console,options=console|json"` // 日志格式
	LogDir   string `json:",optional"`                              // 日志目录，为空时只输出到 stdout
	Level    string `json:",default=info"`                          // debug / info / warn / error
	Compress bool   `json:",optional"`                              // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana JSON-RPC 节点
type RpcConfig struct {
	Endpoint  string `json:",default=https://api.mainnet-beta.solana.com"`
	TimeoutMs int    `json:",default=10000"` // 单次 getAccountInfo 超时
}

func (c *RpcConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CatalogConfig 池子 / 市场目录。Path 为空时只使用内置目录
type CatalogConfig struct {
	Path string `json:",optional"`
}

// KafkaConfig 构建结果投递的 Kafka 生产者配置
type KafkaConfig struct {
	Brokers       string `json:",optional"`           // 多个用英文逗号分隔；为空表示不投递
	BatchSize     int    `json:",default=32768"`      // 批处理大小（字节）
	LingerMs      int    `json:",default=5"`          // 批处理最大延迟（毫秒）
	Topic         string `json:",default=ix-handoff"` // 投递 topic
	Partitions    int    `json:",default=4"`          // topic 分区数（自动创建时使用）
	SendTimeoutMs int    `json:",default=5000"`       // 单条消息等待 ack 的超时
}

func (c *KafkaConfig) Enabled() bool {
	return c.Brokers != ""
}

func (c *KafkaConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMs) * time.Millisecond
}

// RedisConfig 投递幂等标记
type RedisConfig struct {
	Addr     string `json:",default=127.0.0.1:6379"`
	Password string `json:",optional"`
	DB       int    `json:",optional"`
	TTLSec   int    `json:",default=86400"` // 标记保留时间（秒）
}

func (c *RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// Config 主配置
type Config struct {
	Log     LogConfig
	Rpc     RpcConfig
	Catalog CatalogConfig `json:",optional"`
	Kafka   KafkaConfig   `json:",optional"`
	Redis   RedisConfig   `json:",optional"`
}
