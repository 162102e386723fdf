package mercurial

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
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"

	"github.com/zeromicro/go-zero/core/mr"
)

type DepositForm struct {
	Pool        string `form:"pool"`
	AmountA     string `form:"amountA"`
	AmountB     string `form:"amountB"`
	MinLpAmount string `form:"minLpAmount"` // 为空时不设下限
}

type WithdrawForm struct {
	Pool     string `form:"pool"`
	LpAmount string `form:"lpAmount"`
	MinA     string `form:"minA"`
	MinB     string `form:"minB"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("mercurial.deposit", "deposit token A and/or token B into a mercurial pool", buildDeposit),
		builder.NewAction("mercurial.withdraw", "burn mercurial LP tokens for both pool tokens", buildWithdraw),
	}
}

// poolState 池子头部 + 两个 vault + 三个 mint
type poolState struct {
	address types.Pubkey
	pool    *Pool
	vaultA  *Vault
	vaultB  *Vault
	mintA   *chain.Mint
	mintB   *chain.Mint
	lp      *chain.Mint
}

func loadPool(ctx context.Context, r chain.Reader, addr types.Pubkey) (*poolState, error) {
	p, err := FetchPool(ctx, r, addr)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, fmt.Errorf("%w: mercurial pool %s is disabled", ixerr.ErrInvalidParameter, addr)
	}

	out := &poolState{address: addr, pool: p}
	err = mr.Finish(func() error {
		v, err := FetchVault(ctx, r, p.AVault)
		out.vaultA = v
		return err
	}, func() error {
		v, err := FetchVault(ctx, r, p.BVault)
		out.vaultB = v
		return err
	}, func() error {
		m, err := chain.FetchMint(ctx, r, p.TokenAMint)
		if err != nil {
			return chain.BuildError(err, "mercurial token A mint", p.TokenAMint)
		}
		out.mintA = m
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, r, p.TokenBMint)
		if err != nil {
			return chain.BuildError(err, "mercurial token B mint", p.TokenBMint)
		}
		out.mintB = m
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, r, p.LpMint)
		if err != nil {
			return chain.BuildError(err, "mercurial LP mint", p.LpMint)
		}
		out.lp = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.vaultA.TokenMint != p.TokenAMint || out.vaultB.TokenMint != p.TokenBMint {
		return nil, fmt.Errorf("%w: mercurial pool %s vault mints do not match pool", ixerr.ErrDependencyLookupFailed, addr)
	}
	return out, nil
}

// accounts 按 liquidityRoles 顺序组装
func (s *poolState) accounts(user, userLp, userA, userB types.Pubkey) []builder.AccountMeta {
	return []builder.AccountMeta{
		builder.Writable(s.address),
		builder.Writable(s.pool.LpMint),
		builder.Writable(userLp),
		builder.Writable(s.pool.AVaultLp),
		builder.Writable(s.pool.BVaultLp),
		builder.Writable(s.pool.AVault),
		builder.Writable(s.pool.BVault),
		builder.Writable(s.vaultA.LpMint),
		builder.Writable(s.vaultB.LpMint),
		builder.Writable(s.vaultA.TokenVault),
		builder.Writable(s.vaultB.TokenVault),
		builder.Writable(userA),
		builder.Writable(userB),
		builder.Signer(user),
		builder.Readonly(VaultProgram),
		builder.Readonly(consts.TokenProgram),
	}
}

// optionalUI 空串视为 0
func optionalUI(s string, decimals uint8) (uint64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return units.ParseUI64(s, decimals)
}

func checkBalance(ctx context.Context, r chain.Reader, account types.Pubkey, amount uint64, what string) error {
	held, err := chain.FetchTokenAccount(ctx, r, account)
	if err != nil {
		return chain.BuildError(err, what, account)
	}
	if held.Amount < amount {
		return fmt.Errorf("%w: %s %d exceeds balance %d of %s", ixerr.ErrInvalidParameter, what, amount, held.Amount, account)
	}
	return nil
}

// buildDeposit add_imbalance_liquidity：A、B 数量可以不成比例，至少一边大于 0
func buildDeposit(ctx context.Context, deps *builder.Deps, env *builder.Env, f *DepositForm) (*builder.Result, error) {
	if f.Pool == "" {
		return nil, fmt.Errorf("%w: mercurial deposit requires pool", ixerr.ErrInvalidParameter)
	}
	entry, err := deps.Catalog.MercurialPool(f.Pool)
	if err != nil {
		return nil, err
	}
	s, err := loadPool(ctx, deps.Reader, entry.Pool)
	if err != nil {
		return nil, err
	}

	amountA, err := optionalUI(f.AmountA, s.mintA.Decimals)
	if err != nil {
		return nil, err
	}
	amountB, err := optionalUI(f.AmountB, s.mintB.Decimals)
	if err != nil {
		return nil, err
	}
	if amountA == 0 && amountB == 0 {
		return nil, fmt.Errorf("%w: mercurial deposit requires amountA or amountB", ixerr.ErrInvalidParameter)
	}
	minLp, err := optionalUI(f.MinLpAmount, s.lp.Decimals)
	if err != nil {
		return nil, err
	}

	userA, err := pda.AssociatedTokenAddress(env.Authority, s.pool.TokenAMint)
	if err != nil {
		return nil, err
	}
	userB, err := pda.AssociatedTokenAddress(env.Authority, s.pool.TokenBMint)
	if err != nil {
		return nil, err
	}
	err = mr.Finish(func() error {
		return checkBalance(ctx, deps.Reader, userA, amountA, "token A account")
	}, func() error {
		return checkBalance(ctx, deps.Reader, userB, amountB, "token B account")
	})
	if err != nil {
		return nil, err
	}
	userLp, prereq, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, s.pool.LpMint)
	if err != nil {
		return nil, err
	}

	data, err := AddImbalanceLiquidityLayout.Build(codec.Values{
		"minimumPoolTokenAmount": codec.FromU64(minLp),
		"tokenAAmount":           codec.FromU64(amountA),
		"tokenBAmount":           codec.FromU64(amountB),
	}, nil)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{Instruction: builder.Instruction{
		ProgramID: AmmProgram,
		Accounts:  s.accounts(env.Authority, userLp, userA, userB),
		Data:      data,
	}}
	if prereq != nil {
		res.Prerequisites = append(res.Prerequisites, *prereq)
	}
	logger.Debugf("[Mercurial:Deposit] pool=%s, a=%d, b=%d, minLp=%d", f.Pool, amountA, amountB, minLp)
	return res, nil
}

// buildWithdraw remove_balance_liquidity：按池子比例取回 A、B
func buildWithdraw(ctx context.Context, deps *builder.Deps, env *builder.Env, f *WithdrawForm) (*builder.Result, error) {
	if f.Pool == "" || strings.TrimSpace(f.LpAmount) == "" {
		return nil, fmt.Errorf("%w: mercurial withdraw requires pool and lpAmount", ixerr.ErrInvalidParameter)
	}
	entry, err := deps.Catalog.MercurialPool(f.Pool)
	if err != nil {
		return nil, err
	}
	s, err := loadPool(ctx, deps.Reader, entry.Pool)
	if err != nil {
		return nil, err
	}

	lpAmount, err := units.ParsePositiveUI64(f.LpAmount, s.lp.Decimals)
	if err != nil {
		return nil, err
	}
	minA, err := optionalUI(f.MinA, s.mintA.Decimals)
	if err != nil {
		return nil, err
	}
	minB, err := optionalUI(f.MinB, s.mintB.Decimals)
	if err != nil {
		return nil, err
	}

	userLp, err := pda.AssociatedTokenAddress(env.Authority, s.pool.LpMint)
	if err != nil {
		return nil, err
	}
	if err := checkBalance(ctx, deps.Reader, userLp, lpAmount, "LP token account"); err != nil {
		return nil, err
	}

	res := &builder.Result{}
	userA, prereqA, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, s.pool.TokenAMint)
	if err != nil {
		return nil, err
	}
	userB, prereqB, err := associatedtoken.Ensure(ctx, deps.Reader, env.Payer, env.Authority, s.pool.TokenBMint)
	if err != nil {
		return nil, err
	}
	for _, p := range []*builder.Instruction{prereqA, prereqB} {
		if p != nil {
			res.Prerequisites = append(res.Prerequisites, *p)
		}
	}

	data, err := RemoveBalanceLiquidityLayout.Build(codec.Values{
		"poolTokenAmount":  codec.FromU64(lpAmount),
		"minimumATokenOut": codec.FromU64(minA),
		"minimumBTokenOut": codec.FromU64(minB),
	}, nil)
	if err != nil {
		return nil, err
	}
	res.Instruction = builder.Instruction{
		ProgramID: AmmProgram,
		Accounts:  s.accounts(env.Authority, userLp, userA, userB),
		Data:      data,
	}
	logger.Debugf("[Mercurial:Withdraw] pool=%s, lp=%d, minA=%d, minB=%d", f.Pool, lpAmount, minA, minB)
	return res, nil
}
