package spltoken

import (
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

const (
	Transfer        = uint8(sdktoken.InstructionTransfer)
	Burn            = uint8(sdktoken.InstructionBurn)
	TransferChecked = uint8(sdktoken.InstructionTransferChecked)
	BurnChecked     = uint8(sdktoken.InstructionBurnChecked)
)

var (
	TransferLayout = &codec.Layout{
		Name:          "SplToken:Transfer",
		Discriminator: codec.Disc1(Transfer),
		Size:          9,
		Fields: []codec.Field{
			{Name: "amount", Offset: 1, Width: codec.U64, Scale: "token"},
		},
	}
	TransferCheckedLayout = &codec.Layout{
		Name:          "SplToken:TransferChecked",
		Discriminator: codec.Disc1(TransferChecked),
		Size:          10,
		Fields: []codec.Field{
			{Name: "amount", Offset: 1, Width: codec.U64, Scale: "token"},
			{Name: "decimals", Offset: 9, Width: codec.U8},
		},
	}
	BurnLayout = &codec.Layout{
		Name:          "SplToken:Burn",
		Discriminator: codec.Disc1(Burn),
		Size:          9,
		Fields: []codec.Field{
			{Name: "amount", Offset: 1, Width: codec.U64, Scale: "token"},
		},
	}
	BurnCheckedLayout = &codec.Layout{
		Name:          "SplToken:BurnChecked",
		Discriminator: codec.Disc1(BurnChecked),
		Size:          10,
		Fields: []codec.Field{
			{Name: "amount", Offset: 1, Width: codec.U64, Scale: "token"},
			{Name: "decimals", Offset: 9, Width: codec.U8},
		},
	}
)

// Program SPL Token 指令表。Token-2022 共用相同的 opcode 与布局，单独注册一次
func Program() registry.Program {
	return program(consts.TokenProgram, consts.ProtocolName(consts.ProtocolSplToken))
}

func Program2022() registry.Program {
	return program(consts.TokenProgram2022, consts.ProtocolName(consts.ProtocolSplToken)+"2022")
}

func program(id types.Pubkey, name string) registry.Program {
	return registry.Program{
		ID:        id,
		Name:      name,
		DiscWidth: 1,
		Entries: []registry.Entry{
			// Transfer:
			// #0 - Source Account
			// #1 - Destination Account
			// #2 - Owner
			{
				Name:   "SPL Token - Transfer",
				Layout: TransferLayout,
				Roles:  []string{"Source", "Destination", "Owner"},
				Mints:  map[string]registry.MintSource{"token": registry.TokenAccountMint(0)},
				Render: renderMove(0, 1, "Destination"),
			},
			// TransferChecked:
			// #0 - Source Account
			// #1 - Mint
			// #2 - Destination Account
			// #3 - Owner
			{
				Name:   "SPL Token - Transfer Checked",
				Layout: TransferCheckedLayout,
				Roles:  []string{"Source", "Mint", "Destination", "Owner"},
				Mints:  map[string]registry.MintSource{"token": registry.MintAccount(1)},
				Render: renderMove(0, 2, "Destination"),
			},
			{
				Name:   "SPL Token - Burn",
				Layout: BurnLayout,
				Roles:  []string{"Account", "Mint", "Owner"},
				Mints:  map[string]registry.MintSource{"token": registry.MintAccount(1)},
				Render: renderMove(0, 1, "Mint"),
			},
			{
				Name:   "SPL Token - Burn Checked",
				Layout: BurnCheckedLayout,
				Roles:  []string{"Account", "Mint", "Owner"},
				Mints:  map[string]registry.MintSource{"token": registry.MintAccount(1)},
				Render: renderMove(0, 1, "Mint"),
			},
		},
	}
}

// renderMove 输出 源账户 / 目标 / 缩放后的数量
func renderMove(src, dst int, dstLabel string) registry.RenderFunc {
	return func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
		amount, err := in.Scaled("amount")
		if err != nil {
			return nil, err
		}
		return []registry.DisplayLine{
			registry.Line("Source", in.Account(src).String()),
			registry.Line(dstLabel, in.Account(dst).String()),
			registry.Line("Amount", amount),
		}, nil
	}
}
