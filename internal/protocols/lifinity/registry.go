package lifinity

import (
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

const (
	DepositAllTokenTypes  uint64 = 0x205f453c4b4fcdee
	WithdrawAllTokenTypes uint64 = 0xbdfe9caed209a4d8
)

var (
	DepositLayout = &codec.Layout{
		Name:          "Lifinity:DepositAllTokenTypes",
		Discriminator: codec.Disc8(DepositAllTokenTypes),
		Size:          32,
		Fields: []codec.Field{
			{Name: "poolTokenAmount", Offset: 8, Width: codec.U64, Scale: "lp"},
			{Name: "maximumTokenAAmount", Offset: 16, Width: codec.U64, Scale: "tokenA"},
			{Name: "maximumTokenBAmount", Offset: 24, Width: codec.U64, Scale: "tokenB"},
		},
	}
	WithdrawLayout = &codec.Layout{
		Name:          "Lifinity:WithdrawAllTokenTypes",
		Discriminator: codec.Disc8(WithdrawAllTokenTypes),
		Size:          32,
		Fields: []codec.Field{
			{Name: "poolTokenAmount", Offset: 8, Width: codec.U64, Scale: "lp"},
			{Name: "minimumTokenAAmount", Offset: 16, Width: codec.U64, Scale: "tokenA"},
			{Name: "minimumTokenBAmount", Offset: 24, Width: codec.U64, Scale: "tokenB"},
		},
	}
)

var depositRoles = []string{
	"Amm",
	"Authority",
	"User Transfer Authority",
	"Source A",
	"Source B",
	"Token A",
	"Token B",
	"Pool Mint",
	"Destination",
	"Token Program",
	"Config Account",
	"Holder Account Info",
	"Lifinity Nft Account",
	"Lifinity Nft Meta Account",
}

var withdrawRoles = []string{
	"Amm",
	"Authority",
	"User Transfer Authority",
	"Source",
	"Token A",
	"Token B",
	"Pool Mint",
	"Dest Token A",
	"Dest Token B",
	"Fee Account",
	"Token Program",
}

// Program 池子名称从目录中按 LP mint 反查，查不到时展示 LP mint 地址
func Program(cat *catalog.Catalog) registry.Program {
	return registry.Program{
		ID:        consts.LifinityProgram,
		Name:      consts.ProtocolName(consts.ProtocolLifinity),
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Lifinity - Deposit All Token Types",
				Layout: DepositLayout,
				Roles:  depositRoles,
				Mints: map[string]registry.MintSource{
					"tokenA": registry.TokenAccountMint(5),
					"tokenB": registry.TokenAccountMint(6),
					"lp":     registry.MintAccount(7),
				},
				Render: render(cat, 7, []label{
					{"Amount of Token A to deposit", "maximumTokenAAmount"},
					{"Max Amount of Token B to deposit", "maximumTokenBAmount"},
					{"LP Token to be minted", "poolTokenAmount"},
				}),
			},
			{
				Name:   "Lifinity - Withdraw All Token Types",
				Layout: WithdrawLayout,
				Roles:  withdrawRoles,
				Mints: map[string]registry.MintSource{
					"tokenA": registry.TokenAccountMint(4),
					"tokenB": registry.TokenAccountMint(5),
					"lp":     registry.MintAccount(6),
				},
				Render: render(cat, 6, []label{
					{"LP Token to burn", "poolTokenAmount"},
					{"Min Amount of Token A to withdraw", "minimumTokenAAmount"},
					{"Min Amount of Token B to withdraw", "minimumTokenBAmount"},
				}),
			},
		},
	}
}

type label struct {
	text  string
	field string
}

func render(cat *catalog.Catalog, lpIndex int, labels []label) registry.RenderFunc {
	return func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
		lpMint := in.Account(lpIndex)
		pool := lpMint.String()
		if cat != nil {
			if name, ok := cat.LifinityPoolByMint(lpMint); ok {
				pool = name
			}
		}
		lines := []registry.DisplayLine{registry.Line("Liquidity Pool", pool)}
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
