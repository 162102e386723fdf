package solend

import (
	"context"
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/protocols/associatedtoken"
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"

	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/zeromicro/go-zero/core/mr"
)

// ObligationRentLamports obligation 账户免租金额：(128 + 1300) * 3480 * 2
const ObligationRentLamports uint64 = 9_938_880

type ReserveForm struct {
	Market string `form:"market"`
	Token  string `form:"token"`
}

type DepositForm struct {
	Market string `form:"market"`
	Token  string `form:"token"`
	Amount string `form:"amount"` // 存入资产的 UI 数量
}

type WithdrawForm struct {
	Market string `form:"market"`
	Token  string `form:"token"`
	Amount string `form:"amount"` // cToken 的 UI 数量
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("solend.deposit", "deposit liquidity and lock the collateral into the obligation", buildDeposit),
		builder.NewAction("solend.withdraw", "withdraw obligation collateral and redeem the liquidity", buildWithdraw),
		builder.NewAction("solend.refresh-reserve", "refresh a solend reserve", buildRefreshReserve),
	}
}

func lookup(deps *builder.Deps, market, token string) (*catalog.SolendMarket, *catalog.SolendReserve, error) {
	if strings.TrimSpace(market) == "" || strings.TrimSpace(token) == "" {
		return nil, nil, fmt.Errorf("%w: solend action requires market and token", ixerr.ErrInvalidParameter)
	}
	return deps.Catalog.SolendReserve(market, token)
}

// ObligationAddress owner 在某个市场下的 obligation（create-with-seed）
func ObligationAddress(m *catalog.SolendMarket, owner types.Pubkey) (types.Pubkey, error) {
	return pda.WithSeed(owner, m.ObligationSeed(), consts.SolendProgram)
}

// RefreshReserveIx 构造 refresh_reserve
func RefreshReserveIx(r *catalog.SolendReserve) builder.Instruction {
	return builder.Instruction{
		ProgramID: consts.SolendProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(r.Reserve),
			builder.Readonly(r.PythOracle),
			builder.Readonly(r.SwitchboardFeed),
			builder.Readonly(consts.SysvarClock),
		},
		Data: codec.Disc1(RefreshReserve),
	}
}

// createObligationIxs 创建并初始化 obligation：system create_account_with_seed + init_obligation
func createObligationIxs(m *catalog.SolendMarket, payer, owner, obligation types.Pubkey) []builder.Instruction {
	create := system.CreateAccountWithSeed(system.CreateAccountWithSeedParam{
		From:     payer.Common(),
		New:      obligation.Common(),
		Base:     owner.Common(),
		Owner:    consts.SolendProgram.Common(),
		Seed:     m.ObligationSeed(),
		Lamports: ObligationRentLamports,
		Space:    ObligationAccountSize,
	})
	initIx := builder.Instruction{
		ProgramID: consts.SolendProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(obligation),
			builder.Readonly(m.Address),
			builder.Signer(owner),
			builder.Readonly(consts.SysvarClock),
			builder.Readonly(consts.SysvarRent),
			builder.Readonly(consts.TokenProgram),
		},
		Data: codec.Disc1(InitObligation),
	}
	return []builder.Instruction{builder.FromSDK(create), initIx}
}

func buildRefreshReserve(ctx context.Context, deps *builder.Deps, env *builder.Env, f *ReserveForm) (*builder.Result, error) {
	_, reserve, err := lookup(deps, f.Market, f.Token)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: RefreshReserveIx(reserve)}, nil
}

// 前置指令顺序：cToken ATA、obligation 创建与初始化、refresh_reserve
func buildDeposit(ctx context.Context, deps *builder.Deps, env *builder.Env, f *DepositForm) (*builder.Result, error) {
	market, reserve, err := lookup(deps, f.Market, f.Token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Amount) == "" {
		return nil, fmt.Errorf("%w: solend deposit requires amount", ixerr.ErrInvalidParameter)
	}
	source, err := pda.AssociatedTokenAddress(env.Authority, reserve.LiquidityMint)
	if err != nil {
		return nil, err
	}
	obligation, err := ObligationAddress(market, env.Authority)
	if err != nil {
		return nil, err
	}

	var (
		held             *chain.TokenAccount
		mint             *chain.Mint
		obligationExists bool
	)
	err = mr.Finish(func() error {
		acc, err := chain.FetchTokenAccount(ctx, deps.Reader, source)
		if err != nil {
			return chain.BuildError(err, "source liquidity account", source)
		}
		held = acc
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, reserve.LiquidityMint)
		if err != nil {
			return chain.BuildError(err, "reserve liquidity mint", reserve.LiquidityMint)
		}
		mint = m
		return nil
	}, func() error {
		ok, err := chain.Exists(ctx, deps.Reader, obligation)
		if err != nil {
			return chain.BuildError(err, "solend obligation", obligation)
		}
		obligationExists = ok
		return nil
	})
	if err != nil {
		return nil, err
	}
	amount, err := units.ParsePositiveUI64(f.Amount, mint.Decimals)
	if err != nil {
		return nil, err
	}
	if amount > held.Amount {
		return nil, fmt.Errorf("%w: deposit %s exceeds balance %d", ixerr.ErrInvalidParameter, f.Amount, held.Amount)
	}

	res := &builder.Result{}
	collateral, prereq, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, reserve.CollateralMint)
	if err != nil {
		return nil, err
	}
	if prereq != nil {
		res.Prerequisites = append(res.Prerequisites, *prereq)
	}
	if !obligationExists {
		res.Prerequisites = append(res.Prerequisites, createObligationIxs(market, env.Payer, env.Authority, obligation)...)
	}
	res.Prerequisites = append(res.Prerequisites, RefreshReserveIx(reserve))

	data, err := DepositLayout.Build(codec.Values{"liquidityAmount": codec.FromU64(amount)}, nil)
	if err != nil {
		return nil, err
	}
	res.Instruction = builder.Instruction{
		ProgramID: consts.SolendProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(source),
			builder.Writable(collateral),
			builder.Writable(reserve.Reserve),
			builder.Writable(reserve.LiquiditySupply),
			builder.Writable(reserve.CollateralMint),
			builder.Writable(market.Address),
			builder.Readonly(market.Authority),
			builder.Writable(reserve.CollateralSupply),
			builder.Writable(obligation),
			builder.Signer(env.Authority),
			builder.Readonly(reserve.PythOracle),
			builder.Readonly(reserve.SwitchboardFeed),
			builder.Signer(env.Authority),
			builder.Readonly(consts.SysvarClock),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}
	logger.Debugf("[Solend:Deposit] market=%s, token=%s, amount=%d, obligation=%s, newObligation=%v",
		f.Market, f.Token, amount, obligation, !obligationExists)
	return res, nil
}

func buildWithdraw(ctx context.Context, deps *builder.Deps, env *builder.Env, f *WithdrawForm) (*builder.Result, error) {
	market, reserve, err := lookup(deps, f.Market, f.Token)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Amount) == "" {
		return nil, fmt.Errorf("%w: solend withdraw requires amount", ixerr.ErrInvalidParameter)
	}
	obligation, err := ObligationAddress(market, env.Authority)
	if err != nil {
		return nil, err
	}

	var mint *chain.Mint
	err = mr.Finish(func() error {
		if _, err := deps.Reader.GetAccountInfo(ctx, obligation); err != nil {
			return chain.BuildError(err, "solend obligation", obligation)
		}
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, reserve.CollateralMint)
		if err != nil {
			return chain.BuildError(err, "reserve collateral mint", reserve.CollateralMint)
		}
		mint = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	amount, err := units.ParsePositiveUI64(f.Amount, mint.Decimals)
	if err != nil {
		return nil, err
	}

	collateral, err := pda.AssociatedTokenAddress(env.Authority, reserve.CollateralMint)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{}
	liquidity, prereq, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, reserve.LiquidityMint)
	if err != nil {
		return nil, err
	}
	if prereq != nil {
		res.Prerequisites = append(res.Prerequisites, *prereq)
	}
	res.Prerequisites = append(res.Prerequisites, RefreshReserveIx(reserve))

	data, err := WithdrawLayout.Build(codec.Values{"collateralAmount": codec.FromU64(amount)}, nil)
	if err != nil {
		return nil, err
	}
	res.Instruction = builder.Instruction{
		ProgramID: consts.SolendProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(reserve.CollateralSupply),
			builder.Writable(collateral),
			builder.Writable(reserve.Reserve),
			builder.Writable(obligation),
			builder.Readonly(market.Address),
			builder.Readonly(market.Authority),
			builder.Writable(liquidity),
			builder.Writable(reserve.CollateralMint),
			builder.Writable(reserve.LiquiditySupply),
			builder.Signer(env.Authority),
			builder.Signer(env.Authority),
			builder.Readonly(consts.SysvarClock),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}
	logger.Debugf("[Solend:Withdraw] market=%s, token=%s, collateral=%d", f.Market, f.Token, amount)
	return res, nil
}
