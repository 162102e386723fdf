package computebudget

import (
	"context"
	"fmt"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/registry"
)

const (
	SetComputeUnitLimit uint8 = 2
	SetComputeUnitPrice uint8 = 3

	// MaxComputeUnits 单笔交易允许申请的最大 CU
	MaxComputeUnits = 1_400_000
)

var (
	SetComputeUnitLimitLayout = &codec.Layout{
		Name:          "ComputeBudget:SetComputeUnitLimit",
		Discriminator: codec.Disc1(SetComputeUnitLimit),
		Size:          5,
		Fields:        []codec.Field{{Name: "units", Offset: 1, Width: codec.U32}},
	}
	SetComputeUnitPriceLayout = &codec.Layout{
		Name:          "ComputeBudget:SetComputeUnitPrice",
		Discriminator: codec.Disc1(SetComputeUnitPrice),
		Size:          9,
		Fields:        []codec.Field{{Name: "microLamports", Offset: 1, Width: codec.U64}},
	}
)

func Program() registry.Program {
	return registry.Program{
		ID:        consts.ComputeBudgetProgram,
		Name:      consts.ProtocolName(consts.ProtocolComputeBudget),
		DiscWidth: 1,
		Entries: []registry.Entry{
			{
				Name:   "Compute Budget - Set Compute Unit Limit",
				Layout: SetComputeUnitLimitLayout,
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					return []registry.DisplayLine{registry.Line("Compute Units", in.Raw("units"))}, nil
				},
			},
			{
				Name:   "Compute Budget - Set Compute Unit Price",
				Layout: SetComputeUnitPriceLayout,
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					return []registry.DisplayLine{registry.Line("Micro-lamports per CU", in.Raw("microLamports"))}, nil
				},
			},
		},
	}
}

type IncreaseForm struct {
	Units         uint32 `form:"units"`
	MicroLamports uint64 `form:"microLamports"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("compute-budget.increase", "raise the compute unit limit (and optionally price) of the proposal transaction", buildIncrease),
	}
}

// LimitIx SetComputeUnitLimit 指令
func LimitIx(units uint32) (builder.Instruction, error) {
	if units == 0 || units > MaxComputeUnits {
		return builder.Instruction{}, fmt.Errorf("%w: compute units %d must be in (0, %d]", ixerr.ErrInvalidParameter, units, MaxComputeUnits)
	}
	data, err := SetComputeUnitLimitLayout.Build(codec.Values{"units": codec.FromU64(uint64(units))}, nil)
	if err != nil {
		return builder.Instruction{}, err
	}
	return builder.Instruction{ProgramID: consts.ComputeBudgetProgram, Accounts: []builder.AccountMeta{}, Data: data}, nil
}

// PriceIx SetComputeUnitPrice 指令
func PriceIx(microLamports uint64) (builder.Instruction, error) {
	data, err := SetComputeUnitPriceLayout.Build(codec.Values{"microLamports": codec.FromU64(microLamports)}, nil)
	if err != nil {
		return builder.Instruction{}, err
	}
	return builder.Instruction{ProgramID: consts.ComputeBudgetProgram, Accounts: []builder.AccountMeta{}, Data: data}, nil
}

func buildIncrease(_ context.Context, _ *builder.Deps, _ *builder.Env, f *IncreaseForm) (*builder.Result, error) {
	limit, err := LimitIx(f.Units)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{Instruction: limit}
	if f.MicroLamports > 0 {
		price, err := PriceIx(f.MicroLamports)
		if err != nil {
			return nil, err
		}
		res.Prerequisites = append(res.Prerequisites, price)
	}
	return res, nil
}
