package chain

import (
	"context"
	"fmt"
	"time"

	"gov-ix-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
)

// RPCReader 基于 blocto RPC 客户端的 Reader 实现
type RPCReader struct {
	client  *client.Client // Solana RPC客户端
	timeout time.Duration  // 单次调用超时，0 表示不额外限制
}

func NewRPCReader(endpoint string, timeout time.Duration) *RPCReader {
	return &RPCReader{
		client:  client.NewClient(endpoint),
		timeout: timeout,
	}
}

func (r *RPCReader) GetAccountInfo(ctx context.Context, addr types.Pubkey) (*AccountInfo, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	info, err := r.client.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("rpc getAccountInfo %s: %w", addr, err)
	}

	// 账户不存在时 RPC 返回 null，SDK 转成零值结构体
	if info.Lamports == 0 && len(info.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}

	return &AccountInfo{
		Owner:      types.FromCommon(info.Owner),
		Lamports:   info.Lamports,
		Executable: info.Executable,
		Data:       info.Data,
	}, nil
}
