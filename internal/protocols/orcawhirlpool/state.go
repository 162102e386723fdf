package orcawhirlpool

import (
	"bytes"
	"context"
	"fmt"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/types"

	"github.com/near/borsh-go"
)

const (
	WhirlpoolAccountSize = 653
	PositionAccountSize  = 216
)

var (
	whirlpoolDiscriminator = [8]byte{63, 149, 209, 12, 225, 128, 99, 9}
	positionDiscriminator  = [8]byte{170, 188, 143, 228, 122, 64, 247, 208}
)

// U128 borsh 布局下的 u128（小端，低 64 位在前）
type U128 struct {
	Lo uint64
	Hi uint64
}

func (u U128) Uint128() codec.Uint128 {
	return codec.Uint128{Hi: u.Hi, Lo: u.Lo}
}

type WhirlpoolRewardInfo struct {
	Mint                  types.Pubkey
	Vault                 types.Pubkey
	Authority             types.Pubkey
	EmissionsPerSecondX64 U128
	GrowthGlobalX64       U128
}

// Whirlpool 链上池子账户
type Whirlpool struct {
	Discriminator              [8]byte
	WhirlpoolsConfig           types.Pubkey
	WhirlpoolBump              [1]uint8
	TickSpacing                uint16
	TickSpacingSeed            [2]uint8
	FeeRate                    uint16
	ProtocolFeeRate            uint16
	Liquidity                  U128
	SqrtPrice                  U128
	TickCurrentIndex           int32
	ProtocolFeeOwedA           uint64
	ProtocolFeeOwedB           uint64
	TokenMintA                 types.Pubkey
	TokenVaultA                types.Pubkey
	FeeGrowthGlobalA           U128
	TokenMintB                 types.Pubkey
	TokenVaultB                types.Pubkey
	FeeGrowthGlobalB           U128
	RewardLastUpdatedTimestamp uint64
	RewardInfos                [3]WhirlpoolRewardInfo
}

type PositionRewardInfo struct {
	GrowthInsideCheckpoint U128
	AmountOwed             uint64
}

// Position 链上仓位账户
type Position struct {
	Discriminator        [8]byte
	Whirlpool            types.Pubkey
	PositionMint         types.Pubkey
	Liquidity            U128
	TickLowerIndex       int32
	TickUpperIndex       int32
	FeeGrowthCheckpointA U128
	FeeOwedA             uint64
	FeeGrowthCheckpointB U128
	FeeOwedB             uint64
	RewardInfos          [3]PositionRewardInfo
}

func decodeAccount(out any, info *chain.AccountInfo, size int, disc [8]byte, what string) (err error) {
	if info.Owner != consts.OrcaWhirlpoolProgram {
		return fmt.Errorf("%s owned by %s, not whirlpool program", what, info.Owner)
	}
	if len(info.Data) < size {
		return fmt.Errorf("%s data too short: got=%d, expect=%d", what, len(info.Data), size)
	}
	if !bytes.Equal(info.Data[:8], disc[:]) {
		return fmt.Errorf("%s discriminator mismatch", what)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s borsh decode panic: %v", what, r)
		}
	}()
	return borsh.Deserialize(out, info.Data[:size])
}

func ParseWhirlpool(info *chain.AccountInfo) (*Whirlpool, error) {
	var w Whirlpool
	if err := decodeAccount(&w, info, WhirlpoolAccountSize, whirlpoolDiscriminator, "whirlpool"); err != nil {
		return nil, err
	}
	return &w, nil
}

func ParsePosition(info *chain.AccountInfo) (*Position, error) {
	var p Position
	if err := decodeAccount(&p, info, PositionAccountSize, positionDiscriminator, "position"); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchWhirlpool 读取并解析池子；不存在 -> ErrDependencyNotFound，其他 -> ErrDependencyLookupFailed
func FetchWhirlpool(ctx context.Context, r chain.Reader, addr types.Pubkey) (*Whirlpool, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, chain.BuildError(err, "whirlpool", addr)
	}
	w, err := ParseWhirlpool(info)
	if err != nil {
		return nil, chain.BuildError(err, "whirlpool", addr)
	}
	return w, nil
}

func FetchPosition(ctx context.Context, r chain.Reader, addr types.Pubkey) (*Position, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, chain.BuildError(err, "position", addr)
	}
	p, err := ParsePosition(info)
	if err != nil {
		return nil, chain.BuildError(err, "position", addr)
	}
	return p, nil
}

// EncodeWhirlpool / EncodePosition 生成账户数据（离线构建与测试用）
func EncodeWhirlpool(w Whirlpool) ([]byte, error) {
	w.Discriminator = whirlpoolDiscriminator
	return borsh.Serialize(w)
}

func EncodePosition(p Position) ([]byte, error) {
	p.Discriminator = positionDiscriminator
	return borsh.Serialize(p)
}
