package maplesyrup

import (
	"encoding/hex"

	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

const (
	LenderInitialize            uint64 = 0xf8a6fae082e86369
	LenderDeposit               uint64 = 0x978327dd1ca08686
	LenderUnlockDeposit         uint64 = 0x17c698967b7109ce
	WithdrawalRequestInitialize uint64 = 0x791b99f6a584bd74
	WithdrawalRequestExecute    uint64 = 0x5ac98535ca2c2144
)

var (
	LenderInitializeLayout = &codec.Layout{
		Name:          "MapleSyrup:LenderInitialize",
		Discriminator: codec.Disc8(LenderInitialize),
		Size:          8,
	}
	LenderDepositLayout = &codec.Layout{
		Name:          "MapleSyrup:LenderDeposit",
		Discriminator: codec.Disc8(LenderDeposit),
		Size:          16,
		Fields: []codec.Field{
			{Name: "depositAmount", Offset: 8, Width: codec.U64, Scale: "base"},
		},
	}
	LenderUnlockDepositLayout = &codec.Layout{
		Name:          "MapleSyrup:LenderUnlockDeposit",
		Discriminator: codec.Disc8(LenderUnlockDeposit),
		Size:          8,
	}
	// nonce 为 8 字节不透明值，同时参与 withdrawal_request PDA 推导
	WithdrawalRequestInitializeLayout = &codec.Layout{
		Name:          "MapleSyrup:WithdrawalRequestInitialize",
		Discriminator: codec.Disc8(WithdrawalRequestInitialize),
		Size:          24,
		Fields: []codec.Field{
			{Name: "withdrawSharesAmount", Offset: 16, Width: codec.U64, Scale: "shares"},
		},
		Spans: []codec.Span{{Name: "nonce", Offset: 8, Length: 8}},
	}
	WithdrawalRequestExecuteLayout = &codec.Layout{
		Name:          "MapleSyrup:WithdrawalRequestExecute",
		Discriminator: codec.Disc8(WithdrawalRequestExecute),
		Size:          8,
	}
)

var lenderInitializeRoles = []string{
	"Payer",
	"Owner",
	"Pool",
	"Shares Mint",
	"Lender",
	"Locked Shares",
	"Lender Shares",
	"System Program",
	"Token Program",
	"Associated Token Program",
	"Rent",
}

var lenderDepositRoles = []string{
	"Lender",
	"Lender User",
	"Pool",
	"Globals",
	"Pool Locker",
	"Shares Mint",
	"Locked Shares",
	"Lender Shares",
	"Lender Locker",
	"System Program",
	"Token Program",
	"Rent",
}

var lenderUnlockDepositRoles = []string{
	"Lender",
	"Lender User",
	"Pool",
	"Globals",
	"Locked Shares",
	"Lender Shares",
	"Token Program",
}

var withdrawalRequestInitializeRoles = []string{
	"Lender",
	"Lender Owner",
	"Pool",
	"Globals",
	"Shares Mint",
	"Lender Share Account",
	"Withdrawal Request",
	"Withdrawal Request Locker",
	"System Program",
	"Token Program",
	"Rent",
}

var withdrawalRequestExecuteRoles = []string{
	"Withdrawal Request",
	"Lender Owner",
	"Lender",
	"Pool",
	"Globals",
	"Base Mint",
	"Pool Locker",
	"Shares Mint",
	"Withdrawal Request Locker",
	"Lender Locker",
	"System Program",
	"Token Program",
}

func Program(cat *catalog.Catalog) registry.Program {
	return registry.Program{
		ID:        consts.MapleSyrupProgram,
		Name:      consts.ProtocolName(consts.ProtocolMapleSyrup),
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Maple Finance - Lender Initialize",
				Layout: LenderInitializeLayout,
				Roles:  lenderInitializeRoles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Maple Finance - Lender Deposit",
				Layout: LenderDepositLayout,
				Roles:  lenderDepositRoles,
				Mints:  map[string]registry.MintSource{"base": registry.TokenAccountMint(4)},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					amount, err := in.Scaled("depositAmount")
					if err != nil {
						return nil, err
					}
					return []registry.DisplayLine{
						registry.Line("Pool", poolLabel(cat, in)),
						registry.Line("Ui amount to deposit", amount),
					}, nil
				},
			},
			{
				Name:   "Maple Finance - Lender Unlock Deposit",
				Layout: LenderUnlockDepositLayout,
				Roles:  lenderUnlockDepositRoles,
				Render: registry.RenderNothing,
			},
			{
				Name:   "Maple Finance - Withdrawal Request Initialize",
				Layout: WithdrawalRequestInitializeLayout,
				Roles:  withdrawalRequestInitializeRoles,
				Mints:  map[string]registry.MintSource{"shares": registry.MintAccount(4)},
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					shares, err := in.Scaled("withdrawSharesAmount")
					if err != nil {
						return nil, err
					}
					nonce, err := in.Layout.Opaque(in.Data, "nonce")
					if err != nil {
						return nil, err
					}
					return []registry.DisplayLine{
						registry.Line("Pool", poolLabel(cat, in)),
						registry.Line("Shares amount to withdraw", shares),
						registry.Line("Nonce", hex.EncodeToString(nonce)),
					}, nil
				},
			},
			{
				Name:   "Maple Finance - Withdrawal Request Execute",
				Layout: WithdrawalRequestExecuteLayout,
				Roles:  withdrawalRequestExecuteRoles,
				Render: registry.RenderNothing,
			},
		},
	}
}

// poolAccount 三条带渲染的 Lender 指令中 Pool 都位于 #2
const poolAccount = 2

// poolLabel Pool 账户对应的目录名称；不在目录中时展示地址
func poolLabel(cat *catalog.Catalog, in *registry.RenderInput) string {
	pool := in.Account(poolAccount)
	if cat != nil {
		if name, _, ok := cat.MaplePoolByAddress(pool); ok {
			return name
		}
	}
	return pool.String()
}
