package mercurial

import (
	"bytes"
	"context"
	"fmt"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/types"

	"github.com/near/borsh-go"
)

// 只解析账户头部用到的字段，后续字段（费率、curve 等）不关心
const (
	poolHeadSize  = 8 + 7*32 + 2
	vaultHeadSize = 8 + 3 + 8 + 4*32
)

var (
	poolDiscriminator  = [8]byte{0xf1, 0x9a, 0x6d, 0x04, 0x11, 0xb1, 0x6d, 0xbc}
	vaultDiscriminator = [8]byte{0xd3, 0x08, 0xe8, 0x2b, 0x02, 0x98, 0x75, 0x77}
)

// Pool 动态 AMM 池子账户头部
type Pool struct {
	Discriminator [8]byte
	LpMint        types.Pubkey
	TokenAMint    types.Pubkey
	TokenBMint    types.Pubkey
	AVault        types.Pubkey
	BVault        types.Pubkey
	AVaultLp      types.Pubkey // 池子持有的 A vault LP
	BVaultLp      types.Pubkey
	AVaultLpBump  uint8
	Enabled       bool
}

// Vault 收益 vault 账户头部
type Vault struct {
	Discriminator  [8]byte
	Enabled        uint8
	VaultBump      uint8
	TokenVaultBump uint8
	TotalAmount    uint64
	TokenVault     types.Pubkey
	FeeVault       types.Pubkey
	TokenMint      types.Pubkey
	LpMint         types.Pubkey
}

func decodeHead(out any, info *chain.AccountInfo, owner types.Pubkey, size int, disc [8]byte, what string) (err error) {
	if info.Owner != owner {
		return fmt.Errorf("%s owned by %s, not %s", what, info.Owner, owner)
	}
	if len(info.Data) < size {
		return fmt.Errorf("%s data too short: got=%d, expect>=%d", what, len(info.Data), size)
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

func ParsePool(info *chain.AccountInfo) (*Pool, error) {
	var p Pool
	if err := decodeHead(&p, info, AmmProgram, poolHeadSize, poolDiscriminator, "mercurial pool"); err != nil {
		return nil, err
	}
	return &p, nil
}

func ParseVault(info *chain.AccountInfo) (*Vault, error) {
	var v Vault
	if err := decodeHead(&v, info, VaultProgram, vaultHeadSize, vaultDiscriminator, "mercurial vault"); err != nil {
		return nil, err
	}
	return &v, nil
}

func FetchPool(ctx context.Context, r chain.Reader, addr types.Pubkey) (*Pool, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, chain.BuildError(err, "mercurial pool", addr)
	}
	p, err := ParsePool(info)
	if err != nil {
		return nil, chain.BuildError(err, "mercurial pool", addr)
	}
	return p, nil
}

func FetchVault(ctx context.Context, r chain.Reader, addr types.Pubkey) (*Vault, error) {
	info, err := r.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, chain.BuildError(err, "mercurial vault", addr)
	}
	v, err := ParseVault(info)
	if err != nil {
		return nil, chain.BuildError(err, "mercurial vault", addr)
	}
	return v, nil
}

// EncodePool / EncodeVault 生成账户头部数据（测试用）
func EncodePool(p Pool) ([]byte, error) {
	p.Discriminator = poolDiscriminator
	return borsh.Serialize(p)
}

func EncodeVault(v Vault) ([]byte, error) {
	v.Discriminator = vaultDiscriminator
	return borsh.Serialize(v)
}
