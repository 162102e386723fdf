package chain

import (
	"context"
	"sync"

	"gov-ix-sol/internal/types"

	"github.com/zeromicro/go-zero/core/mr"
)

// ResolveTokenMints 并发读取一组 token account，返回 account -> mint。
// 输入去重，每个地址只读取一次；任一失败则整体失败。
func ResolveTokenMints(ctx context.Context, r Reader, accounts []types.Pubkey) (map[types.Pubkey]types.Pubkey, error) {
	uniq := dedupe(accounts)
	out := make(map[types.Pubkey]types.Pubkey, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	fns := make([]func() error, 0, len(uniq))
	for _, addr := range uniq {
		addr := addr
		fns = append(fns, func() error {
			ta, err := FetchTokenAccount(ctx, r, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			out[addr] = ta.Mint
			mu.Unlock()
			return nil
		})
	}
	if err := mr.Finish(fns...); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveMints 并发读取一组 mint，返回 mint -> Mint
func ResolveMints(ctx context.Context, r Reader, mints []types.Pubkey) (map[types.Pubkey]*Mint, error) {
	uniq := dedupe(mints)
	out := make(map[types.Pubkey]*Mint, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	fns := make([]func() error, 0, len(uniq))
	for _, addr := range uniq {
		addr := addr
		fns = append(fns, func() error {
			m, err := FetchMint(ctx, r, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			out[addr] = m
			mu.Unlock()
			return nil
		})
	}
	if err := mr.Finish(fns...); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveTokenAccounts 并发读取一组 token account 的完整状态
func ResolveTokenAccounts(ctx context.Context, r Reader, accounts []types.Pubkey) (map[types.Pubkey]*TokenAccount, error) {
	uniq := dedupe(accounts)
	out := make(map[types.Pubkey]*TokenAccount, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	fns := make([]func() error, 0, len(uniq))
	for _, addr := range uniq {
		addr := addr
		fns = append(fns, func() error {
			ta, err := FetchTokenAccount(ctx, r, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			out[addr] = ta
			mu.Unlock()
			return nil
		})
	}
	if err := mr.Finish(fns...); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupe(keys []types.Pubkey) []types.Pubkey {
	seen := make(map[types.Pubkey]struct{}, len(keys))
	out := make([]types.Pubkey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
