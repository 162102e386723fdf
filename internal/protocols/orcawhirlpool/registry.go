package orcawhirlpool

import (
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

const (
	OpenPositionWithMetadata uint64 = 0xf21d86303a6e0e3c
	IncreaseLiquidity        uint64 = 0x2e9cf3760dcdfbb2
	DecreaseLiquidity        uint64 = 0xa026d06f685b2c01
	CollectFees              uint64 = 0xa498cf631eba13b6
	InitializeTickArray      uint64 = 0x0bbcc1d68d5b95b8
)

var (
	// tick 为 i32，按补码写入 u32 字段
	OpenPositionWithMetadataLayout = &codec.Layout{
		Name:          "OrcaWhirlpool:OpenPositionWithMetadata",
		Discriminator: codec.Disc8(OpenPositionWithMetadata),
		Size:          18,
		Fields: []codec.Field{
			{Name: "positionBump", Offset: 8, Width: codec.U8},
			{Name: "metadataBump", Offset: 9, Width: codec.U8},
			{Name: "tickLowerIndex", Offset: 10, Width: codec.U32},
			{Name: "tickUpperIndex", Offset: 14, Width: codec.U32},
		},
	}
	IncreaseLiquidityLayout = &codec.Layout{
		Name:          "OrcaWhirlpool:IncreaseLiquidity",
		Discriminator: codec.Disc8(IncreaseLiquidity),
		Size:          40,
		Fields: []codec.Field{
			{Name: "liquidityAmount", Offset: 8, Width: codec.U128},
			{Name: "tokenMaxA", Offset: 24, Width: codec.U64, Scale: "tokenA"},
			{Name: "tokenMaxB", Offset: 32, Width: codec.U64, Scale: "tokenB"},
		},
	}
	DecreaseLiquidityLayout = &codec.Layout{
		Name:          "OrcaWhirlpool:DecreaseLiquidity",
		Discriminator: codec.Disc8(DecreaseLiquidity),
		Size:          40,
		Fields: []codec.Field{
			{Name: "liquidityAmount", Offset: 8, Width: codec.U128},
			{Name: "tokenMinA", Offset: 24, Width: codec.U64, Scale: "tokenA"},
			{Name: "tokenMinB", Offset: 32, Width: codec.U64, Scale: "tokenB"},
		},
	}
	CollectFeesLayout = &codec.Layout{
		Name:          "OrcaWhirlpool:CollectFees",
		Discriminator: codec.Disc8(CollectFees),
		Size:          8,
	}
	InitializeTickArrayLayout = &codec.Layout{
		Name:          "OrcaWhirlpool:InitializeTickArray",
		Discriminator: codec.Disc8(InitializeTickArray),
		Size:          12,
		Fields: []codec.Field{
			{Name: "startTickIndex", Offset: 8, Width: codec.U32},
		},
	}
)

// Increase / Decrease Liquidity 账户布局：
//
// #0  - Whirlpool
// #1  - Token Program
// #2  - Position Authority
// #3  - Position
// #4  - Position Token Account
// #5  - Token Owner Account A
// #6  - Token Owner Account B
// #7  - Token Vault A
// #8  - Token Vault B
// #9  - Tick Array Lower
// #10 - Tick Array Upper
var liquidityRoles = []string{
	"Whirlpool",
	"Token Program",
	"Position Authority",
	"Position",
	"Position Token Account",
	"Token Owner Account A",
	"Token Owner Account B",
	"Token Vault A",
	"Token Vault B",
	"Tick Array Lower",
	"Tick Array Upper",
}

var liquidityMints = map[string]registry.MintSource{
	"tokenA": registry.TokenAccountMint(7),
	"tokenB": registry.TokenAccountMint(8),
}

var openPositionRoles = []string{
	"Funder",
	"Owner",
	"Position",
	"Position Mint",
	"Position Metadata Account",
	"Position Token Account",
	"Whirlpool",
	"Token Program",
	"System Program",
	"Rent",
	"Associated Token Program",
	"Metadata Program",
	"Metadata Update Auth",
}

var collectFeesRoles = []string{
	"Whirlpool",
	"Position Authority",
	"Position",
	"Position Token Account",
	"Token Owner Account A",
	"Token Vault A",
	"Token Owner Account B",
	"Token Vault B",
	"Token Program",
}

var initTickArrayRoles = []string{
	"Whirlpool",
	"Funder",
	"Tick Array",
	"System Program",
}

func Program() registry.Program {
	return registry.Program{
		ID:        consts.OrcaWhirlpoolProgram,
		Name:      consts.ProtocolName(consts.ProtocolOrcaWhirlpool),
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Orca Whirlpool - Open Position With Metadata",
				Layout: OpenPositionWithMetadataLayout,
				Roles:  openPositionRoles,
				Render: renderOpenPosition,
			},
			{
				Name:   "Orca Whirlpool - Increase Liquidity",
				Layout: IncreaseLiquidityLayout,
				Roles:  liquidityRoles,
				Mints:  liquidityMints,
				Render: renderLiquidity("Liquidity Amount", "Token Max A", "Token Max B", "tokenMaxA", "tokenMaxB"),
			},
			{
				Name:   "Orca Whirlpool - Decrease Liquidity",
				Layout: DecreaseLiquidityLayout,
				Roles:  liquidityRoles,
				Mints:  liquidityMints,
				Render: renderLiquidity("Liquidity Amount", "Token Min A", "Token Min B", "tokenMinA", "tokenMinB"),
			},
			{
				Name:   "Orca Whirlpool - Collect Fees",
				Layout: CollectFeesLayout,
				Roles:  collectFeesRoles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Orca Whirlpool - Initialize Tick Array",
				Layout: InitializeTickArrayLayout,
				Roles:  initTickArrayRoles,
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					return []registry.DisplayLine{
						registry.Line("Start Tick Index", tickString(in, "startTickIndex")),
					}, nil
				},
			},
		},
	}
}

func tickString(in *registry.RenderInput, field string) string {
	return fmt.Sprintf("%d", int32(uint32(in.Fields[field].Lo)))
}

func renderOpenPosition(in *registry.RenderInput) ([]registry.DisplayLine, error) {
	return []registry.DisplayLine{
		registry.Line("Whirlpool", in.Account(6).String()),
		registry.Line("Position Mint", in.Account(3).String()),
		registry.Line("Tick Lower Index", tickString(in, "tickLowerIndex")),
		registry.Line("Tick Upper Index", tickString(in, "tickUpperIndex")),
	}, nil
}

func renderLiquidity(liqLabel, aLabel, bLabel, aField, bField string) registry.RenderFunc {
	return func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
		a, err := in.Scaled(aField)
		if err != nil {
			return nil, err
		}
		b, err := in.Scaled(bField)
		if err != nil {
			return nil, err
		}
		return []registry.DisplayLine{
			registry.Line("Position", in.Account(3).String()),
			registry.Line(liqLabel, in.Raw("liquidityAmount")),
			registry.Line(aLabel, a),
			registry.Line(bLabel, b),
		}, nil
	}
}
