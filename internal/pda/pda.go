package pda

import (
	"fmt"

	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
)

// Derived 由 (program, seeds) 推导出的地址及 bump
type Derived struct {
	Address types.Pubkey
	Bump    uint8
}

// Derive 计算 PDA。相同输入永远得到相同结果
func Derive(program types.Pubkey, seeds ...[]byte) (Derived, error) {
	addr, bump, err := common.FindProgramAddress(seeds, program.Common())
	if err != nil {
		return Derived{}, fmt.Errorf("find program address under %s: %w", program, err)
	}
	return Derived{Address: types.FromCommon(addr), Bump: bump}, nil
}

// AssociatedTokenAddress 计算 (owner, mint) 的 ATA（SPL Token 程序）
func AssociatedTokenAddress(owner, mint types.Pubkey) (types.Pubkey, error) {
	addr, _, err := common.FindAssociatedTokenAddress(owner.Common(), mint.Common())
	if err != nil {
		return types.Pubkey{}, fmt.Errorf("find ata owner=%s mint=%s: %w", owner, mint, err)
	}
	return types.FromCommon(addr), nil
}

// AssociatedTokenAddressOf 计算指定 token 程序（SPL Token / Token-2022）下的 ATA
func AssociatedTokenAddressOf(owner, mint, tokenProgram types.Pubkey) (types.Pubkey, error) {
	d, err := Derive(consts.AssociatedTokenProgram, Key(owner), Key(tokenProgram), Key(mint))
	if err != nil {
		return types.Pubkey{}, err
	}
	return d.Address, nil
}

// WithSeed 计算 create-with-seed 地址（Solend obligation 等）
func WithSeed(base types.Pubkey, seed string, program types.Pubkey) (types.Pubkey, error) {
	if len(seed) > 32 {
		return types.Pubkey{}, fmt.Errorf("seed %q longer than 32 bytes", seed)
	}
	return types.FromCommon(common.CreateWithSeed(base.Common(), seed, program.Common())), nil
}

// Key 把 pubkey 作为 seed
func Key(p types.Pubkey) []byte {
	return p[:]
}
