package mercurial

import (
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

var (
	AmmProgram   = consts.MercurialAmmProgram
	VaultProgram = consts.MercurialVaultProgram
)

const (
	AddImbalanceLiquidity  uint64 = 0x4f237a54ad0f5dbf
	RemoveBalanceLiquidity uint64 = 0x856d2cb338ee7221
)

var (
	AddImbalanceLiquidityLayout = &codec.Layout{
		Name:          "Mercurial:AddImbalanceLiquidity",
		Discriminator: codec.Disc8(AddImbalanceLiquidity),
		Size:          32,
		Fields: []codec.Field{
			{Name: "minimumPoolTokenAmount", Offset: 8, Width: codec.U64, Scale: "lp"},
			{Name: "tokenAAmount", Offset: 16, Width: codec.U64, Scale: "tokenA"},
			{Name: "tokenBAmount", Offset: 24, Width: codec.U64, Scale: "tokenB"},
		},
	}
	RemoveBalanceLiquidityLayout = &codec.Layout{
		Name:          "Mercurial:RemoveBalanceLiquidity",
		Discriminator: codec.Disc8(RemoveBalanceLiquidity),
		Size:          32,
		Fields: []codec.Field{
			{Name: "poolTokenAmount", Offset: 8, Width: codec.U64, Scale: "lp"},
			{Name: "minimumATokenOut", Offset: 16, Width: codec.U64, Scale: "tokenA"},
			{Name: "minimumBTokenOut", Offset: 24, Width: codec.U64, Scale: "tokenB"},
		},
	}
)

// 两条指令共用同一组账户：
//
// #0  - Pool
// #1  - Lp Mint
// #2  - User Pool Lp
// #3  - A Vault Lp        // 池子持有的 vault LP
// #4  - B Vault Lp
// #5  - A Vault
// #6  - B Vault
// #7  - A Vault Lp Mint
// #8  - B Vault Lp Mint
// #9  - A Token Vault     // vault 的 token 储备，mint 即 token A
// #10 - B Token Vault
// #11 - User A Token
// #12 - User B Token
// #13 - User              // 签名者
// #14 - Vault Program
// #15 - Token Program
var liquidityRoles = []string{
	"Pool",
	"Lp Mint",
	"User Pool Lp",
	"A Vault Lp",
	"B Vault Lp",
	"A Vault",
	"B Vault",
	"A Vault Lp Mint",
	"B Vault Lp Mint",
	"A Token Vault",
	"B Token Vault",
	"User A Token",
	"User B Token",
	"User",
	"Vault Program",
	"Token Program",
}

var liquidityMints = map[string]registry.MintSource{
	"lp":     registry.MintAccount(1),
	"tokenA": registry.TokenAccountMint(9),
	"tokenB": registry.TokenAccountMint(10),
}

func Program(cat *catalog.Catalog) registry.Program {
	return registry.Program{
		ID:        AmmProgram,
		Name:      consts.ProtocolName(consts.ProtocolMercurial),
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Mercurial - Pool Deposit",
				Layout: AddImbalanceLiquidityLayout,
				Roles:  liquidityRoles,
				Mints:  liquidityMints,
				Render: render(cat, []label{
					{"Token A Amount", "tokenAAmount"},
					{"Token B Amount", "tokenBAmount"},
					{"Minimum LP Token Amount", "minimumPoolTokenAmount"},
				}),
			},
			{
				Name:   "Mercurial - Pool Withdraw",
				Layout: RemoveBalanceLiquidityLayout,
				Roles:  liquidityRoles,
				Mints:  liquidityMints,
				Render: render(cat, []label{
					{"LP Token Amount", "poolTokenAmount"},
					{"Minimum Token A Out", "minimumATokenOut"},
					{"Minimum Token B Out", "minimumBTokenOut"},
				}),
			},
		},
	}
}

type label struct {
	text  string
	field string
}

func render(cat *catalog.Catalog, labels []label) registry.RenderFunc {
	return func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
		addr := in.Account(0)
		pool := addr.String()
		if cat != nil {
			if name, ok := cat.MercurialPoolByAddress(addr); ok {
				pool = name
			}
		}
		lines := []registry.DisplayLine{registry.Line("Pool", pool)}
		for _, l := range labels {
			v, err := in.Scaled(l.field)
			if err != nil {
				return nil, err
			}
			lines = append(lines, registry.Line(l.text, v))
		}
		return lines, nil
	}
}
