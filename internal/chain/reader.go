package chain

import (
	"context"
	"errors"
	"fmt"

	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/types"
)

// ErrAccountNotFound 链上不存在该账户
var ErrAccountNotFound = errors.New("account not found")

// AccountInfo 只读账户快照
type AccountInfo struct {
	Owner      types.Pubkey
	Lamports   uint64
	Executable bool
	Data       []byte
}

// Reader 链上状态只读接口。实现必须并发安全，且不缓存跨调用的结果。
type Reader interface {
	GetAccountInfo(ctx context.Context, addr types.Pubkey) (*AccountInfo, error)
}

// Exists 判断账户是否存在；只有 ErrAccountNotFound 被视为不存在，其他错误原样返回
func Exists(ctx context.Context, r Reader, addr types.Pubkey) (bool, error) {
	_, err := r.GetAccountInfo(ctx, addr)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAccountNotFound):
		return false, nil
	default:
		return false, err
	}
}

// BuildError 将构建阶段的读取错误映射到错误分类：
// 账户不存在 -> ErrDependencyNotFound，其它 -> ErrDependencyLookupFailed
func BuildError(err error, what string, addr types.Pubkey) error {
	if errors.Is(err, ErrAccountNotFound) {
		return fmt.Errorf("%w: %s %s: %v", ixerr.ErrDependencyNotFound, what, addr, err)
	}
	return fmt.Errorf("%w: %s %s: %v", ixerr.ErrDependencyLookupFailed, what, addr, err)
}
