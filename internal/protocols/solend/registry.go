package solend

import (
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

// token-lending 指令号
const (
	InitObligation                                        uint8 = 6
	RefreshReserve                                        uint8 = 3
	DepositReserveLiquidityAndObligationCollateral        uint8 = 14
	WithdrawObligationCollateralAndRedeemReserveLiquidity uint8 = 15
)

// ObligationAccountSize 链上 obligation 账户大小
const ObligationAccountSize = 1300

var (
	InitObligationLayout = &codec.Layout{
		Name:          "Solend:InitObligation",
		Discriminator: codec.Disc1(InitObligation),
		Size:          1,
	}
	RefreshReserveLayout = &codec.Layout{
		Name:          "Solend:RefreshReserve",
		Discriminator: codec.Disc1(RefreshReserve),
		Size:          1,
	}
	DepositLayout = &codec.Layout{
		Name:          "Solend:DepositReserveLiquidityAndObligationCollateral",
		Discriminator: codec.Disc1(DepositReserveLiquidityAndObligationCollateral),
		Size:          9,
		Fields: []codec.Field{
			{Name: "liquidityAmount", Offset: 1, Width: codec.U64, Scale: "liquidity"},
		},
	}
	WithdrawLayout = &codec.Layout{
		Name:          "Solend:WithdrawObligationCollateralAndRedeemReserveLiquidity",
		Discriminator: codec.Disc1(WithdrawObligationCollateralAndRedeemReserveLiquidity),
		Size:          9,
		Fields: []codec.Field{
			{Name: "collateralAmount", Offset: 1, Width: codec.U64, Scale: "collateral"},
		},
	}
)

var initObligationRoles = []string{
	"Obligation",
	"Lending Market",
	"Obligation Owner",
	"Clock",
	"Rent",
	"Token Program",
}

var refreshReserveRoles = []string{
	"Reserve",
	"Pyth Oracle",
	"Switchboard Feed",
	"Clock",
}

var depositRoles = []string{
	"Source Liquidity",
	"Source Collateral",
	"Reserve",
	"Reserve Liquidity Supply",
	"Reserve Collateral Mint",
	"Lending Market",
	"Lending Market Authority",
	"Destination Collateral",
	"Obligation",
	"Obligation Owner",
	"Pyth Oracle",
	"Switchboard Feed",
	"Transfer Authority",
	"Clock",
	"Token Program",
}

var withdrawRoles = []string{
	"Source Collateral",
	"Destination Collateral",
	"Withdraw Reserve",
	"Obligation",
	"Lending Market",
	"Lending Market Authority",
	"Destination Liquidity",
	"Reserve Collateral Mint",
	"Reserve Liquidity Supply",
	"Obligation Owner",
	"Transfer Authority",
	"Clock",
	"Token Program",
}

func Program() registry.Program {
	return registry.Program{
		ID:        consts.SolendProgram,
		Name:      consts.ProtocolName(consts.ProtocolSolend),
		DiscWidth: 1,
		Entries: []registry.Entry{
			{
				Name:   "Solend - Init Obligation",
				Layout: InitObligationLayout,
				Roles:  initObligationRoles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Solend - Refresh Reserve",
				Layout: RefreshReserveLayout,
				Roles:  refreshReserveRoles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Solend - Deposit Reserve Liquidity And Obligation Collateral",
				Layout: DepositLayout,
				Roles:  depositRoles,
				// reserve 的 liquidity supply 账户，mint 即存入资产
				Mints: map[string]registry.MintSource{"liquidity": registry.TokenAccountMint(3)},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					v, err := in.Scaled("liquidityAmount")
					if err != nil {
						return nil, err
					}
					return []registry.DisplayLine{
						registry.Line("Reserve", in.Account(2).String()),
						registry.Line("Liquidity Amount", v),
					}, nil
				},
			},
			{
				Name:   "Solend - Withdraw Obligation Collateral And Redeem Reserve Liquidity",
				Layout: WithdrawLayout,
				Roles:  withdrawRoles,
				Mints:  map[string]registry.MintSource{"collateral": registry.MintAccount(7)},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					v, err := in.Scaled("collateralAmount")
					if err != nil {
						return nil, err
					}
					return []registry.DisplayLine{
						registry.Line("Reserve", in.Account(2).String()),
						registry.Line("Collateral Amount", v),
					}, nil
				},
			},
		},
	}
}
