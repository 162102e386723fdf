package svc

import (
	"context"
	"errors"
	"fmt"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/config"
	"gov-ix-sol/internal/handoff"
	"gov-ix-sol/internal/mq"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/protocols"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ErrHandoffDisabled 未配置 Kafka brokers 时调用 Publish
var ErrHandoffDisabled = errors.New("handoff disabled: no kafka brokers configured")

// ServiceContext 一次进程内共享的全部依赖
type ServiceContext struct {
	Config    config.Config
	Reader    chain.Reader
	Catalog   *catalog.Catalog
	Registry  *registry.Registry
	Builders  *builder.Set
	Producer  *kafka.Producer
	Redis     *redis.Client
	Publisher *handoff.Publisher // 为 nil 表示不投递
}

// RenderedInstruction 一条指令及其渲染结果
type RenderedInstruction struct {
	Instruction builder.Instruction
	Program     string
	Lines       []registry.DisplayLine
}

// NewServiceContext 组装服务上下文。reader 为 nil 时使用配置中的 RPC 节点
func NewServiceContext(c config.Config, reader chain.Reader) (*ServiceContext, error) {
	// 1. 链上读取
	if reader == nil {
		reader = chain.NewRPCReader(c.Rpc.Endpoint, c.Rpc.Timeout())
	}

	// 2. 目录：内置 + 可选外部文件
	cat, err := catalog.Load(c.Catalog.Path)
	if err != nil {
		logger.Errorf("目录加载失败: path=%s, err=%v", c.Catalog.Path, err)
		return nil, err
	}

	// 3. 指令注册表与构建器
	table, err := protocols.Table(cat)
	if err != nil {
		return nil, fmt.Errorf("build instruction table: %w", err)
	}
	set, err := builder.NewSet(&builder.Deps{Reader: reader, Catalog: cat}, protocols.Actions()...)
	if err != nil {
		return nil, fmt.Errorf("build action set: %w", err)
	}

	sc := &ServiceContext{
		Config:   c,
		Reader:   reader,
		Catalog:  cat,
		Registry: registry.New(table, reader),
		Builders: set,
	}

	// 4. 投递（可选）：Kafka 生产者 + Redis 幂等标记
	if c.Kafka.Enabled() {
		producer, err := mq.NewProducer(mq.ProducerOption{
			Brokers:   c.Kafka.Brokers,
			BatchSize: c.Kafka.BatchSize,
			LingerMs:  c.Kafka.LingerMs,
			Topics:    []mq.TopicSpec{{Topic: c.Kafka.Topic, Partitions: c.Kafka.Partitions}},
		})
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			return nil, err
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		sc.Producer = producer
		sc.Redis = rdb
		sc.Publisher = handoff.NewPublisher(
			handoff.NewRedisStore(rdb, c.Redis.TTL()),
			producer,
			handoff.PublisherOption{
				Topic:       c.Kafka.Topic,
				Partitions:  c.Kafka.Partitions,
				SendTimeout: c.Kafka.SendTimeout(),
			},
		)
	}

	logger.Infof("服务上下文初始化完成: rpc=%s, actions=%d, handoff=%v",
		c.Rpc.Endpoint, len(set.Actions()), sc.Publisher != nil)
	return sc, nil
}

// BuildInstruction 按动作 id 构建指令
func (sc *ServiceContext) BuildInstruction(ctx context.Context, actionID string, form map[string]any, env *builder.Env) (*builder.Result, error) {
	return sc.Builders.Build(ctx, actionID, form, env)
}

// RenderInstruction 渲染单条指令
func (sc *ServiceContext) RenderInstruction(ctx context.Context, programID types.Pubkey, data []byte, accounts []types.Pubkey) ([]registry.DisplayLine, error) {
	return sc.Registry.Render(ctx, programID, data, accounts)
}

// Preview 按执行顺序渲染构建结果中的全部指令。
// 未注册的指令（如 system program）退化为原始数据展示，其它错误直接返回
func (sc *ServiceContext) Preview(ctx context.Context, res *builder.Result) ([]RenderedInstruction, error) {
	all := make([]builder.Instruction, 0, len(res.Prerequisites)+1)
	all = append(all, res.Prerequisites...)
	all = append(all, res.Instruction)

	out := make([]RenderedInstruction, 0, len(all))
	for _, ix := range all {
		lines, err := sc.RenderInstruction(ctx, ix.ProgramID, ix.Data, ix.Keys())
		var unknown *registry.UnknownInstructionError
		switch {
		case errors.As(err, &unknown):
			lines = unknown.Dump()
		case err != nil:
			return nil, err
		}
		out = append(out, RenderedInstruction{
			Instruction: ix,
			Program:     sc.Registry.Table().ProgramName(ix.ProgramID),
			Lines:       lines,
		})
	}
	return out, nil
}

// Publish 把构建结果投递给提案组装层
func (sc *ServiceContext) Publish(ctx context.Context, requestID, actionID string, env *builder.Env, res *builder.Result) (*handoff.Envelope, error) {
	if sc.Publisher == nil {
		return nil, ErrHandoffDisabled
	}
	e := *env
	if e.Payer.IsZero() {
		e.Payer = e.Authority
	}
	return sc.Publisher.Publish(ctx, requestID, actionID, &e, res)
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Producer != nil {
		sc.Producer.Flush(3000)
		sc.Producer.Close()
	}
	if sc.Redis != nil {
		if err := sc.Redis.Close(); err != nil {
			logger.Warnf("Redis 关闭失败: %v", err)
		}
	}
}
