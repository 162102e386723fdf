package associatedtoken

import (
	"context"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"
)

const (
	Create           uint8 = 0
	CreateIdempotent uint8 = 1
)

var (
	CreateLayout = &codec.Layout{
		Name:          "AssociatedToken:Create",
		Discriminator: codec.Disc1(Create),
		Size:          1,
	}
	CreateIdempotentLayout = &codec.Layout{
		Name:          "AssociatedToken:CreateIdempotent",
		Discriminator: codec.Disc1(CreateIdempotent),
		Size:          1,
	}
)

// Associated Token - Create 指令账户布局：
//
// #0 - Funder                   // 付费账户（签名者）
// #1 - Associated Token Account // 待创建的 ATA
// #2 - Wallet                   // ATA 的 owner
// #3 - Mint
// #4 - System Program
// #5 - Token Program
var roles = []string{
	"Funder",
	"Associated Token Account",
	"Wallet",
	"Mint",
	"System Program",
	"Token Program",
}

// Program 注册表条目。指令本身没有参数，账户已由角色完整表达
func Program() registry.Program {
	return registry.Program{
		ID:        consts.AssociatedTokenProgram,
		Name:      consts.ProtocolName(consts.ProtocolAssociatedToken),
		DiscWidth: 1,
		Entries: []registry.Entry{
			{
				Name:   "Associated Token - Create",
				Layout: CreateLayout,
				Roles:  roles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Associated Token - Create Idempotent",
				Layout: CreateIdempotentLayout,
				Roles:  roles,
				Render: registry.RenderNothing,
			},
		},
	}
}

// CreateIx 创建 (owner, mint) 经典 SPL Token ATA 的指令
func CreateIx(funder, owner, mint types.Pubkey) (builder.Instruction, types.Pubkey, error) {
	return CreateIxOf(funder, owner, mint, consts.TokenProgram)
}

// CreateIxOf 按 mint 所属 token 程序生成 CreateIdempotent 指令。
// 账户顺序与 roles 一一对应，不携带 Rent sysvar
func CreateIxOf(funder, owner, mint, tokenProgram types.Pubkey) (builder.Instruction, types.Pubkey, error) {
	ata, err := pda.AssociatedTokenAddressOf(owner, mint, tokenProgram)
	if err != nil {
		return builder.Instruction{}, types.Pubkey{}, err
	}
	data, err := CreateIdempotentLayout.Build(nil, nil)
	if err != nil {
		return builder.Instruction{}, types.Pubkey{}, err
	}
	return builder.Instruction{
		ProgramID: consts.AssociatedTokenProgram,
		Accounts: []builder.AccountMeta{
			builder.WritableSigner(funder),
			builder.Writable(ata),
			builder.Readonly(owner),
			builder.Readonly(mint),
			builder.Readonly(consts.SystemProgram),
			builder.Readonly(tokenProgram),
		},
		Data: data,
	}, ata, nil
}

// Ensure 计算经典 SPL Token ATA；若链上不存在则返回创建它的前置指令
func Ensure(ctx context.Context, r chain.Reader, funder, owner, mint types.Pubkey) (types.Pubkey, *builder.Instruction, error) {
	return EnsureOf(ctx, r, funder, owner, mint, consts.TokenProgram)
}

// EnsureOf 同 Ensure，ATA 派生与创建都使用给定的 token 程序
func EnsureOf(ctx context.Context, r chain.Reader, funder, owner, mint, tokenProgram types.Pubkey) (types.Pubkey, *builder.Instruction, error) {
	ata, err := pda.AssociatedTokenAddressOf(owner, mint, tokenProgram)
	if err != nil {
		return types.Pubkey{}, nil, err
	}
	ok, err := chain.Exists(ctx, r, ata)
	if err != nil {
		return types.Pubkey{}, nil, chain.BuildError(err, "associated token account", ata)
	}
	if ok {
		return ata, nil, nil
	}
	ix, _, err := CreateIxOf(funder, owner, mint, tokenProgram)
	if err != nil {
		return types.Pubkey{}, nil, err
	}
	return ata, &ix, nil
}
