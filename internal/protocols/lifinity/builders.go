package lifinity

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
	"gov-ix-sol/internal/units"

	"github.com/holiman/uint256"
	"github.com/zeromicro/go-zero/core/mr"
)

type DepositForm struct {
	Pool     string  `form:"pool"`
	AmountA  string  `form:"amountA"` // token A 的 UI 数量，token B 按池子比例推算
	Slippage float64 `form:"slippage"`
}

type WithdrawForm struct {
	Pool     string  `form:"pool"`
	LpAmount string  `form:"lpAmount"`
	Slippage float64 `form:"slippage"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("lifinity.deposit", "deposit both tokens into a lifinity pool", buildDeposit),
		builder.NewAction("lifinity.withdraw", "burn lifinity LP tokens for both pool tokens", buildWithdraw),
	}
}

// reserves 池子储备快照
type reserves struct {
	tokenA *chain.TokenAccount
	tokenB *chain.TokenAccount
	lp     *chain.Mint
	mintA  *chain.Mint
}

func loadReserves(ctx context.Context, r chain.Reader, pool *catalog.LifinityPool) (*reserves, error) {
	out := &reserves{}
	err := mr.Finish(func() error {
		acc, err := chain.FetchTokenAccount(ctx, r, pool.TokenA)
		if err != nil {
			return chain.BuildError(err, "lifinity token A reserve", pool.TokenA)
		}
		out.tokenA = acc
		return nil
	}, func() error {
		acc, err := chain.FetchTokenAccount(ctx, r, pool.TokenB)
		if err != nil {
			return chain.BuildError(err, "lifinity token B reserve", pool.TokenB)
		}
		out.tokenB = acc
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, r, pool.PoolMint)
		if err != nil {
			return chain.BuildError(err, "lifinity LP mint", pool.PoolMint)
		}
		out.lp = m
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, r, pool.MintA)
		if err != nil {
			return chain.BuildError(err, "mint A", pool.MintA)
		}
		out.mintA = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.lp.Supply == 0 || out.tokenA.Amount == 0 {
		return nil, fmt.Errorf("%w: lifinity pool %s has no liquidity", ixerr.ErrInvalidParameter, pool.Amm)
	}
	return out, nil
}

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func buildDeposit(ctx context.Context, deps *builder.Deps, env *builder.Env, f *DepositForm) (*builder.Result, error) {
	bps, err := units.SlippageBps(f.Slippage)
	if err != nil {
		return nil, err
	}
	if f.Pool == "" || strings.TrimSpace(f.AmountA) == "" {
		return nil, fmt.Errorf("%w: lifinity deposit requires pool and amountA", ixerr.ErrInvalidParameter)
	}
	pool, err := deps.Catalog.LifinityPool(f.Pool)
	if err != nil {
		return nil, err
	}

	rs, err := loadReserves(ctx, deps.Reader, pool)
	if err != nil {
		return nil, err
	}
	amountA, err := units.ParsePositiveUI64(f.AmountA, rs.mintA.Decimals)
	if err != nil {
		return nil, err
	}

	// lp = amountA * supply / reserveA；B 按同比例向上取整
	lp := units.MulDiv(u(amountA), u(rs.lp.Supply), u(rs.tokenA.Amount))
	lpAmount, err := units.ToU64(lp, "pool token amount")
	if err != nil {
		return nil, err
	}
	if lpAmount == 0 {
		return nil, fmt.Errorf("%w: amount %s too small to mint LP tokens", ixerr.ErrInvalidParameter, f.AmountA)
	}
	estB := units.MulDivCeil(lp, u(rs.tokenB.Amount), u(rs.lp.Supply))
	maxA, err := units.ToU64(units.WithSlippageUp(u(amountA), bps), "maximum token A")
	if err != nil {
		return nil, err
	}
	maxB, err := units.ToU64(units.WithSlippageUp(estB, bps), "maximum token B")
	if err != nil {
		return nil, err
	}

	sourceA, err := pda.AssociatedTokenAddress(env.Authority, pool.MintA)
	if err != nil {
		return nil, err
	}
	sourceB, err := pda.AssociatedTokenAddress(env.Authority, pool.MintB)
	if err != nil {
		return nil, err
	}
	destination, prereq, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, pool.PoolMint)
	if err != nil {
		return nil, err
	}

	data, err := DepositLayout.Build(codec.Values{
		"poolTokenAmount":     codec.FromU64(lpAmount),
		"maximumTokenAAmount": codec.FromU64(maxA),
		"maximumTokenBAmount": codec.FromU64(maxB),
	}, nil)
	if err != nil {
		return nil, err
	}

	res := &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.LifinityProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(pool.Amm),
			builder.Readonly(pool.Authority),
			builder.Signer(env.Authority),
			builder.Writable(sourceA),
			builder.Writable(sourceB),
			builder.Writable(pool.TokenA),
			builder.Writable(pool.TokenB),
			builder.Writable(pool.PoolMint),
			builder.Writable(destination),
			builder.Readonly(consts.TokenProgram),
			builder.Readonly(pool.ConfigAccount),
			builder.Readonly(env.Authority),
			builder.Readonly(pool.NftAccount),
			builder.Readonly(pool.NftMetaAccount),
		},
		Data: data,
	}}
	if prereq != nil {
		res.Prerequisites = append(res.Prerequisites, *prereq)
	}
	logger.Debugf("[Lifinity:Deposit] pool=%s, lp=%d, maxA=%d, maxB=%d", f.Pool, lpAmount, maxA, maxB)
	return res, nil
}

func buildWithdraw(ctx context.Context, deps *builder.Deps, env *builder.Env, f *WithdrawForm) (*builder.Result, error) {
	bps, err := units.SlippageBps(f.Slippage)
	if err != nil {
		return nil, err
	}
	if f.Pool == "" || strings.TrimSpace(f.LpAmount) == "" {
		return nil, fmt.Errorf("%w: lifinity withdraw requires pool and lpAmount", ixerr.ErrInvalidParameter)
	}
	pool, err := deps.Catalog.LifinityPool(f.Pool)
	if err != nil {
		return nil, err
	}

	rs, err := loadReserves(ctx, deps.Reader, pool)
	if err != nil {
		return nil, err
	}
	lpAmount, err := units.ParsePositiveUI64(f.LpAmount, rs.lp.Decimals)
	if err != nil {
		return nil, err
	}
	if lpAmount > rs.lp.Supply {
		return nil, fmt.Errorf("%w: lp amount %d exceeds supply %d", ixerr.ErrInvalidParameter, lpAmount, rs.lp.Supply)
	}
	estA := units.MulDiv(u(lpAmount), u(rs.tokenA.Amount), u(rs.lp.Supply))
	estB := units.MulDiv(u(lpAmount), u(rs.tokenB.Amount), u(rs.lp.Supply))
	minA := units.WithSlippageDown(estA, bps).Uint64()
	minB := units.WithSlippageDown(estB, bps).Uint64()

	source, err := pda.AssociatedTokenAddress(env.Authority, pool.PoolMint)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{}
	destA, prereqA, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, pool.MintA)
	if err != nil {
		return nil, err
	}
	destB, prereqB, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, pool.MintB)
	if err != nil {
		return nil, err
	}
	for _, p := range []*builder.Instruction{prereqA, prereqB} {
		if p != nil {
			res.Prerequisites = append(res.Prerequisites, *p)
		}
	}

	data, err := WithdrawLayout.Build(codec.Values{
		"poolTokenAmount":     codec.FromU64(lpAmount),
		"minimumTokenAAmount": codec.FromU64(minA),
		"minimumTokenBAmount": codec.FromU64(minB),
	}, nil)
	if err != nil {
		return nil, err
	}
	res.Instruction = builder.Instruction{
		ProgramID: consts.LifinityProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(pool.Amm),
			builder.Readonly(pool.Authority),
			builder.Signer(env.Authority),
			builder.Writable(source),
			builder.Writable(pool.TokenA),
			builder.Writable(pool.TokenB),
			builder.Writable(pool.PoolMint),
			builder.Writable(destA),
			builder.Writable(destB),
			builder.Writable(pool.FeeAccount),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}
	logger.Debugf("[Lifinity:Withdraw] pool=%s, lp=%d, minA=%d, minB=%d", f.Pool, lpAmount, minA, minB)
	return res, nil
}
