package cli

import (
	"fmt"
	"os"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/config"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/svc"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/conf"
)

const defaultConfigFile = "etc/ixtool.yaml"

// ValidFormats 输出格式
var ValidFormats = []string{"text", "json"}

// RootOptions 全局参数与进程内共享的服务上下文
type RootOptions struct {
	ConfigFile string
	Format     string

	// Reader 非 nil 时替代 RPC 节点（测试用）
	Reader chain.Reader

	config config.Config
	sc     *svc.ServiceContext
}

// NewRootCommand ixtool 根命令。调用方负责 opts.Close()，一般直接使用 Execute
func NewRootCommand(opts *RootOptions) *cobra.Command {
	return newRootCommand(opts)
}

// Execute 执行根命令；无论成功与否都会释放 Kafka / Redis 连接
func Execute() error {
	opts := &RootOptions{}
	return execute(opts, newRootCommand(opts))
}

func execute(opts *RootOptions, cmd *cobra.Command) error {
	defer opts.Close()
	return cmd.Execute()
}

// Close 释放服务上下文并刷新日志，可重复调用
func (o *RootOptions) Close() {
	if o.sc != nil {
		o.sc.Close()
		o.sc = nil
	}
	logger.Sync()
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ixtool",
		Short:         "Build and render Solana instructions for governance proposals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := opts.loadConfig(cmd.Flags().Changed("config")); err != nil {
				return err
			}
			return logger.Init(opts.config.Log.ToLogOption())
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "f", defaultConfigFile, "the config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewActionsCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewBuildCommand(opts))

	return cmd
}

// loadConfig 配置文件不存在且未显式指定时，全部使用默认值
func (o *RootOptions) loadConfig(explicit bool) error {
	var c config.Config
	_, statErr := os.Stat(o.ConfigFile)
	switch {
	case o.ConfigFile != "" && statErr == nil:
		if err := conf.Load(o.ConfigFile, &c); err != nil {
			return fmt.Errorf("load config %s: %w", o.ConfigFile, err)
		}
	case explicit && o.ConfigFile != "":
		return fmt.Errorf("config file %s: %w", o.ConfigFile, statErr)
	default:
		if err := conf.FillDefault(&c); err != nil {
			return fmt.Errorf("fill default config: %w", err)
		}
	}
	o.config = c
	return nil
}

// service 首次使用时创建服务上下文
func (o *RootOptions) service() (*svc.ServiceContext, error) {
	if o.sc != nil {
		return o.sc, nil
	}
	sc, err := svc.NewServiceContext(o.config, o.Reader)
	if err != nil {
		return nil, err
	}
	o.sc = sc
	return sc, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
