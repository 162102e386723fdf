package chain

import (
	"context"
	"encoding/binary"
	"fmt"

	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// Mint SPL Mint 中与展示/构建相关的字段
type Mint struct {
	Address  types.Pubkey
	Program  types.Pubkey // 所属 token 程序：SPL Token 或 Token-2022
	Decimals uint8
	Supply   uint64
}

// TokenAccount SPL Token Account 中与展示/构建相关的字段
type TokenAccount struct {
	Address types.Pubkey
	Program types.Pubkey
	Mint    types.Pubkey
	Owner   types.Pubkey
	Amount  uint64
}

func isTokenProgram(owner types.Pubkey) bool {
	return owner == consts.TokenProgram || owner == consts.TokenProgram2022
}

// ParseMint 解析 SPL Mint（Token-2022 仅读取基础 82 字节部分）
func ParseMint(addr types.Pubkey, info *AccountInfo) (*Mint, error) {
	if !isTokenProgram(info.Owner) {
		return nil, fmt.Errorf("account %s is owned by %s, not a token program", addr, info.Owner)
	}
	if len(info.Data) < sdktoken.MintAccountSize {
		return nil, fmt.Errorf("account %s data too short for mint: %d", addr, len(info.Data))
	}
	m, err := sdktoken.MintAccountFromData(info.Data[:sdktoken.MintAccountSize])
	if err != nil {
		return nil, fmt.Errorf("parse mint %s: %w", addr, err)
	}
	return &Mint{Address: addr, Program: info.Owner, Decimals: m.Decimals, Supply: m.Supply}, nil
}

// ParseTokenAccount 解析 SPL Token Account
func ParseTokenAccount(addr types.Pubkey, info *AccountInfo) (*TokenAccount, error) {
	if !isTokenProgram(info.Owner) {
		return nil, fmt.Errorf("account %s is owned by %s, not a token program", addr, info.Owner)
	}
	if len(info.Data) < sdktoken.TokenAccountSize {
		return nil, fmt.Errorf("account %s data too short for token account: %d", addr, len(info.Data))
	}
	ta, err := sdktoken.TokenAccountFromData(info.Data[:sdktoken.TokenAccountSize])
	if err != nil {
		return nil, fmt.Errorf("parse token account %s: %w", addr, err)
	}
	return &TokenAccount{
		Address: addr,
		Program: info.Owner,
		Mint:    types.FromCommon(ta.Mint),
		Owner:   types.FromCommon(ta.Owner),
		Amount:  ta.Amount,
	}, nil
}

func FetchMint(ctx context.Context, r Reader, addr types.Pubkey) (*Mint, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	return ParseMint(addr, info)
}

func FetchTokenAccount(ctx context.Context, r Reader, addr types.Pubkey) (*TokenAccount, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	return ParseTokenAccount(addr, info)
}

// EncodeMint 生成一个最小可解析的 Mint 账户数据（无 authority）
func EncodeMint(decimals uint8, supply uint64) []byte {
	data := make([]byte, sdktoken.MintAccountSize)
	// #0..#3   mint authority COption tag = 0
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1 // is_initialized
	// #46..#49 freeze authority COption tag = 0
	return data
}

// EncodeTokenAccount 生成一个最小可解析的 Token Account 数据（Initialized 状态）
func EncodeTokenAccount(mint, owner types.Pubkey, amount uint64) []byte {
	data := make([]byte, sdktoken.TokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // AccountState::Initialized
	return data
}
