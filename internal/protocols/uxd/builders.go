package uxd

import (
	"context"
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"

	"github.com/zeromicro/go-zero/core/mr"
)

// EditControllerForm 空字段表示保持不变，至少填一个
type EditControllerForm struct {
	Controller                string `form:"controller"`
	QuoteMintAndRedeemSoftCap string `form:"quoteMintAndRedeemSoftCap"`
	RedeemableSoftCap         string `form:"redeemableSoftCap"`
	RedeemableGlobalSupplyCap string `form:"redeemableGlobalSupplyCap"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("uxd.edit-controller", "change uxd controller mint/redeem caps", buildEditController),
	}
}

// ControllerAddress controller PDA ["CONTROLLER"]
func ControllerAddress(program types.Pubkey) (types.Pubkey, error) {
	d, err := pda.Derive(program, []byte("CONTROLLER"))
	if err != nil {
		return types.Pubkey{}, err
	}
	return d.Address, nil
}

func buildEditController(ctx context.Context, deps *builder.Deps, env *builder.Env, f *EditControllerForm) (*builder.Result, error) {
	if f.Controller == "" {
		return nil, fmt.Errorf("%w: uxd edit controller requires controller", ixerr.ErrInvalidParameter)
	}
	ctrl, err := deps.Catalog.UXDController(f.Controller)
	if err != nil {
		return nil, err
	}
	raw := []string{f.QuoteMintAndRedeemSoftCap, f.RedeemableSoftCap, f.RedeemableGlobalSupplyCap}
	mask := 0
	for i, s := range raw {
		if strings.TrimSpace(s) != "" {
			mask |= 1 << i
		}
	}
	if mask == 0 {
		return nil, fmt.Errorf("%w: uxd edit controller requires at least one cap", ixerr.ErrInvalidParameter)
	}

	controller, err := ControllerAddress(ctrl.Program)
	if err != nil {
		return nil, err
	}
	decimals, err := loadDecimals(ctx, deps.Reader, ctrl, controller)
	if err != nil {
		return nil, err
	}

	layout := editControllerLayouts[mask]
	values := codec.Values{}
	for i, o := range editControllerOptions {
		if mask&(1<<i) == 0 {
			values[o.name+"Tag"] = codec.FromU64(0)
			continue
		}
		values[o.name+"Tag"] = codec.FromU64(1)
		amount, err := units.ParseUI(raw[i], decimals[o.scale])
		if err != nil {
			return nil, err
		}
		v, ok := codec.FromInt(amount)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s overflows u128", ixerr.ErrValueOutOfRange, o.name, raw[i])
		}
		values[o.name] = v
	}
	data, err := layout.Build(values, nil)
	if err != nil {
		return nil, err
	}

	logger.Debugf("[UXD:EditController] controller=%s, mask=%03b", f.Controller, mask)
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: ctrl.Program,
		Accounts: []builder.AccountMeta{
			builder.Signer(env.Authority),
			builder.Writable(controller),
		},
		Data: data,
	}}, nil
}

// loadDecimals 并发读取两个 mint 的精度，同时确认 controller 账户已初始化
func loadDecimals(ctx context.Context, r chain.Reader, ctrl *catalog.UXDController, controller types.Pubkey) (map[string]uint8, error) {
	var quote, redeemable *chain.Mint
	err := mr.Finish(func() error {
		m, err := chain.FetchMint(ctx, r, ctrl.QuoteMint)
		if err != nil {
			return chain.BuildError(err, "uxd quote mint", ctrl.QuoteMint)
		}
		quote = m
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, r, ctrl.RedeemableMint)
		if err != nil {
			return chain.BuildError(err, "uxd redeemable mint", ctrl.RedeemableMint)
		}
		redeemable = m
		return nil
	}, func() error {
		ok, err := chain.Exists(ctx, r, controller)
		if err != nil {
			return chain.BuildError(err, "uxd controller", controller)
		}
		if !ok {
			return fmt.Errorf("%w: uxd controller %s", ixerr.ErrDependencyNotFound, controller)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]uint8{"quote": quote.Decimals, "redeemable": redeemable.Decimals}, nil
}
