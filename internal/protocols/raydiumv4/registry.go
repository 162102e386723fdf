package raydiumv4

import (
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

const (
	Deposit  uint8 = 3
	Withdraw uint8 = 4
)

var (
	DepositLayout = &codec.Layout{
		Name:          "RaydiumV4:Deposit",
		Discriminator: codec.Disc1(Deposit),
		Size:          25,
		Fields: []codec.Field{
			{Name: "maxCoinAmount", Offset: 1, Width: codec.U64, Scale: "coin"},
			{Name: "maxPcAmount", Offset: 9, Width: codec.U64, Scale: "pc"},
			{Name: "baseSide", Offset: 17, Width: codec.U64},
		},
	}
	WithdrawLayout = &codec.Layout{
		Name:          "RaydiumV4:Withdraw",
		Discriminator: codec.Disc1(Withdraw),
		Size:          9,
		Fields: []codec.Field{
			{Name: "amount", Offset: 1, Width: codec.U64, Scale: "lp"},
		},
	}
)

var depositRoles = []string{
	"Token Program",
	"Amm Id",
	"Amm Authority",
	"Amm Open Orders",
	"Amm Target Orders",
	"Lp Mint",
	"Pool Coin Token Account",
	"Pool Pc Token Account",
	"Serum Market",
	"User Coin Token Account",
	"User Pc Token Account",
	"User Lp Token Account",
	"User Owner",
	"Serum Event Queue",
}

var withdrawRoles = []string{
	"Token Program",
	"Amm Id",
	"Amm Authority",
	"Amm Open Orders",
	"Amm Target Orders",
	"Lp Mint",
	"Pool Coin Token Account",
	"Pool Pc Token Account",
	"Pool Withdraw Queue",
	"Pool Temp Lp Token Account",
	"Serum Program",
	"Serum Market",
	"Serum Coin Vault",
	"Serum Pc Vault",
	"Serum Vault Signer",
	"User Lp Token Account",
	"User Coin Token Account",
	"User Pc Token Account",
	"User Owner",
	"Serum Event Queue",
	"Serum Bids",
	"Serum Asks",
}

func Program() registry.Program {
	return registry.Program{
		ID:        consts.RaydiumV4Program,
		Name:      consts.ProtocolName(consts.ProtocolRaydiumV4),
		DiscWidth: 1,
		Entries: []registry.Entry{
			{
				Name:   "Raydium - Add Liquidity",
				Layout: DepositLayout,
				Roles:  depositRoles,
				Mints: map[string]registry.MintSource{
					"coin": registry.TokenAccountMint(6),
					"pc":   registry.TokenAccountMint(7),
				},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					coin, err := in.Scaled("maxCoinAmount")
					if err != nil {
						return nil, err
					}
					pc, err := in.Scaled("maxPcAmount")
					if err != nil {
						return nil, err
					}
					side := "coin"
					if in.Fields["baseSide"].Uint64() == 1 {
						side = "pc"
					}
					return []registry.DisplayLine{
						registry.Line("Max Coin Amount", coin),
						registry.Line("Max Pc Amount", pc),
						registry.Line("Base Side", side),
					}, nil
				},
			},
			{
				Name:   "Raydium - Remove Liquidity",
				Layout: WithdrawLayout,
				Roles:  withdrawRoles,
				Mints:  map[string]registry.MintSource{"lp": registry.MintAccount(5)},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					v, err := in.Scaled("amount")
					if err != nil {
						return nil, err
					}
					return []registry.DisplayLine{
						registry.Line("Amm Id", in.Account(1).String()),
						registry.Line("LP Amount", v),
					}, nil
				},
			},
		},
	}
}
