package raydiumv4

import (
	"context"
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/protocols/associatedtoken"
	"gov-ix-sol/internal/units"

	"github.com/zeromicro/go-zero/core/mr"
)

type RemoveLiquidityForm struct {
	Pool     string `form:"pool"`
	LpAmount string `form:"lpAmount"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("raydium.remove-liquidity", "burn raydium LP tokens for both pool tokens", buildRemoveLiquidity),
	}
}

func buildRemoveLiquidity(ctx context.Context, deps *builder.Deps, env *builder.Env, f *RemoveLiquidityForm) (*builder.Result, error) {
	if strings.TrimSpace(f.Pool) == "" || strings.TrimSpace(f.LpAmount) == "" {
		return nil, fmt.Errorf("%w: raydium remove liquidity requires pool and lpAmount", ixerr.ErrInvalidParameter)
	}
	pool, err := deps.Catalog.RaydiumPool(f.Pool)
	if err != nil {
		return nil, err
	}
	userLp, err := pda.AssociatedTokenAddress(env.Authority, pool.LpMint)
	if err != nil {
		return nil, err
	}

	var (
		lp   *chain.Mint
		held *chain.TokenAccount
	)
	err = mr.Finish(func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, pool.LpMint)
		if err != nil {
			return chain.BuildError(err, "raydium lp mint", pool.LpMint)
		}
		lp = m
		return nil
	}, func() error {
		acc, err := chain.FetchTokenAccount(ctx, deps.Reader, userLp)
		if err != nil {
			return chain.BuildError(err, "user lp token account", userLp)
		}
		held = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	amount, err := units.ParsePositiveUI64(f.LpAmount, lp.Decimals)
	if err != nil {
		return nil, err
	}
	if amount > held.Amount {
		return nil, fmt.Errorf("%w: lp amount %s exceeds balance %d", ixerr.ErrInvalidParameter, f.LpAmount, held.Amount)
	}

	res := &builder.Result{}
	userBase, prereqBase, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, pool.BaseMint)
	if err != nil {
		return nil, err
	}
	userQuote, prereqQuote, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, pool.QuoteMint)
	if err != nil {
		return nil, err
	}
	for _, p := range []*builder.Instruction{prereqBase, prereqQuote} {
		if p != nil {
			res.Prerequisites = append(res.Prerequisites, *p)
		}
	}

	data, err := WithdrawLayout.Build(codec.Values{"amount": codec.FromU64(amount)}, nil)
	if err != nil {
		return nil, err
	}
	authority := pool.Authority
	if authority.IsZero() {
		authority = consts.RaydiumV4Authority
	}
	marketProgram := pool.MarketProgram
	if marketProgram.IsZero() {
		marketProgram = consts.SerumDexV3Program
	}
	res.Instruction = builder.Instruction{
		ProgramID: consts.RaydiumV4Program,
		Accounts: []builder.AccountMeta{
			builder.Readonly(consts.TokenProgram),
			builder.Writable(pool.ID),
			builder.Readonly(authority),
			builder.Writable(pool.OpenOrders),
			builder.Writable(pool.TargetOrders),
			builder.Writable(pool.LpMint),
			builder.Writable(pool.BaseVault),
			builder.Writable(pool.QuoteVault),
			builder.Writable(pool.WithdrawQueue),
			builder.Writable(pool.LpVault),
			builder.Readonly(marketProgram),
			builder.Writable(pool.Market),
			builder.Writable(pool.MarketBaseVault),
			builder.Writable(pool.MarketQuoteVault),
			builder.Readonly(pool.MarketAuthority),
			builder.Writable(userLp),
			builder.Writable(userBase),
			builder.Writable(userQuote),
			builder.Signer(env.Authority),
			builder.Writable(pool.MarketEventQueue),
			builder.Writable(pool.MarketBids),
			builder.Writable(pool.MarketAsks),
		},
		Data: data,
	}
	logger.Debugf("[RaydiumV4:RemoveLiquidity] pool=%s, lp=%d", f.Pool, amount)
	return res, nil
}
