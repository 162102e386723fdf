package maplesyrup

import (
	"context"
	"crypto/rand"
	"encoding/hex"
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
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"

	"github.com/zeromicro/go-zero/core/mr"
)

type PoolForm struct {
	Pool string `form:"pool"`
}

type DepositForm struct {
	Pool   string `form:"pool"`
	Amount string `form:"amount"`
}

type WithdrawalRequestForm struct {
	Pool   string `form:"pool"`
	Shares string `form:"shares"`
	Nonce  string `form:"nonce"` // 16 位十六进制；留空时随机生成
}

type WithdrawalExecuteForm struct {
	Pool  string `form:"pool"`
	Nonce string `form:"nonce"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("maple.lender-initialize", "create the lender account of a maple pool", buildLenderInitialize),
		builder.NewAction("maple.lender-deposit", "deposit base tokens into a maple pool", buildLenderDeposit),
		builder.NewAction("maple.lender-unlock-deposit", "unlock shares after the lockup period", buildLenderUnlockDeposit),
		builder.NewAction("maple.withdrawal-request-initialize", "request a withdrawal of pool shares", buildWithdrawalRequestInitialize),
		builder.NewAction("maple.withdrawal-request-execute", "execute a pending withdrawal request", buildWithdrawalRequestExecute),
	}
}

// lenderAccounts 某个用户在池子下的 lender 相关地址
type lenderAccounts struct {
	lender       types.Pubkey
	lockedShares types.Pubkey
	lenderShares types.Pubkey // 用户持有 shares 的 ATA
	lenderLocker types.Pubkey // 用户持有 base mint 的 ATA
}

func deriveLender(pool *catalog.MaplePool, user types.Pubkey) (*lenderAccounts, error) {
	lender, err := LenderAddress(pool.Pool, user)
	if err != nil {
		return nil, err
	}
	locked, err := LockedSharesAddress(lender.Address)
	if err != nil {
		return nil, err
	}
	shares, err := pda.AssociatedTokenAddress(user, pool.SharesMint)
	if err != nil {
		return nil, err
	}
	locker, err := pda.AssociatedTokenAddress(user, pool.BaseMint)
	if err != nil {
		return nil, err
	}
	return &lenderAccounts{
		lender:       lender.Address,
		lockedShares: locked.Address,
		lenderShares: shares,
		lenderLocker: locker,
	}, nil
}

func loadPool(deps *builder.Deps, name string) (*catalog.MaplePool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: maple action requires pool", ixerr.ErrInvalidParameter)
	}
	return deps.Catalog.MaplePool(name)
}

func parseNonce(s string) ([8]byte, error) {
	var nonce [8]byte
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil || len(b) != len(nonce) {
		return nonce, fmt.Errorf("%w: nonce must be 8 bytes of hex, got %q", ixerr.ErrInvalidParameter, s)
	}
	copy(nonce[:], b)
	return nonce, nil
}

// LenderInitializeIx 构造 lender_initialize
func LenderInitializeIx(pool *catalog.MaplePool, payer, owner types.Pubkey) (builder.Instruction, error) {
	la, err := deriveLender(pool, owner)
	if err != nil {
		return builder.Instruction{}, err
	}
	data, err := LenderInitializeLayout.Build(nil, nil)
	if err != nil {
		return builder.Instruction{}, err
	}
	return builder.Instruction{
		ProgramID: consts.MapleSyrupProgram,
		Accounts: []builder.AccountMeta{
			builder.WritableSigner(payer),
			builder.Signer(owner),
			builder.Readonly(pool.Pool),
			builder.Readonly(pool.SharesMint),
			builder.Writable(la.lender),
			builder.Writable(la.lockedShares),
			builder.Writable(la.lenderShares),
			builder.Readonly(consts.SystemProgram),
			builder.Readonly(consts.TokenProgram),
			builder.Readonly(consts.AssociatedTokenProgram),
			builder.Readonly(consts.SysvarRent),
		},
		Data: data,
	}, nil
}

func buildLenderInitialize(ctx context.Context, deps *builder.Deps, env *builder.Env, f *PoolForm) (*builder.Result, error) {
	pool, err := loadPool(deps, f.Pool)
	if err != nil {
		return nil, err
	}
	ix, err := LenderInitializeIx(pool, env.Payer, env.Authority)
	if err != nil {
		return nil, err
	}
	lender := ix.Accounts[4].Pubkey
	exists, err := chain.Exists(ctx, deps.Reader, lender)
	if err != nil {
		return nil, chain.BuildError(err, "maple lender", lender)
	}
	if exists {
		return nil, fmt.Errorf("%w: lender %s already initialized", ixerr.ErrInvalidParameter, lender)
	}
	return &builder.Result{Instruction: ix}, nil
}

// lender 不存在时把 lender_initialize 放进前置指令
func buildLenderDeposit(ctx context.Context, deps *builder.Deps, env *builder.Env, f *DepositForm) (*builder.Result, error) {
	pool, err := loadPool(deps, f.Pool)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Amount) == "" {
		return nil, fmt.Errorf("%w: maple deposit requires amount", ixerr.ErrInvalidParameter)
	}
	la, err := deriveLender(pool, env.Authority)
	if err != nil {
		return nil, err
	}

	var (
		lenderExists bool
		source       *chain.TokenAccount
		base         *chain.Mint
	)
	err = mr.Finish(func() error {
		ok, err := chain.Exists(ctx, deps.Reader, la.lender)
		if err != nil {
			return chain.BuildError(err, "maple lender", la.lender)
		}
		lenderExists = ok
		return nil
	}, func() error {
		acc, err := chain.FetchTokenAccount(ctx, deps.Reader, la.lenderLocker)
		if err != nil {
			return chain.BuildError(err, "lender base token account", la.lenderLocker)
		}
		source = acc
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, pool.BaseMint)
		if err != nil {
			return chain.BuildError(err, "maple base mint", pool.BaseMint)
		}
		base = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	amount, err := units.ParsePositiveUI64(f.Amount, base.Decimals)
	if err != nil {
		return nil, err
	}
	if amount > source.Amount {
		return nil, fmt.Errorf("%w: deposit %s exceeds balance %d", ixerr.ErrInvalidParameter, f.Amount, source.Amount)
	}

	data, err := LenderDepositLayout.Build(codec.Values{"depositAmount": codec.FromU64(amount)}, nil)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.MapleSyrupProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(la.lender),
			builder.Signer(env.Authority),
			builder.Writable(pool.Pool),
			builder.Readonly(pool.Globals),
			builder.Writable(pool.PoolLocker),
			builder.Writable(pool.SharesMint),
			builder.Writable(la.lockedShares),
			builder.Writable(la.lenderShares),
			builder.Writable(la.lenderLocker),
			builder.Readonly(consts.SystemProgram),
			builder.Readonly(consts.TokenProgram),
			builder.Readonly(consts.SysvarRent),
		},
		Data: data,
	}}
	if !lenderExists {
		initIx, err := LenderInitializeIx(pool, env.Payer, env.Authority)
		if err != nil {
			return nil, err
		}
		res.Prerequisites = append(res.Prerequisites, initIx)
	}
	logger.Debugf("[MapleSyrup:LenderDeposit] pool=%s, amount=%d, lenderExists=%v", f.Pool, amount, lenderExists)
	return res, nil
}

func buildLenderUnlockDeposit(ctx context.Context, deps *builder.Deps, env *builder.Env, f *PoolForm) (*builder.Result, error) {
	pool, err := loadPool(deps, f.Pool)
	if err != nil {
		return nil, err
	}
	la, err := deriveLender(pool, env.Authority)
	if err != nil {
		return nil, err
	}
	if _, err := deps.Reader.GetAccountInfo(ctx, la.lender); err != nil {
		return nil, chain.BuildError(err, "maple lender", la.lender)
	}
	data, err := LenderUnlockDepositLayout.Build(nil, nil)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.MapleSyrupProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(la.lender),
			builder.Signer(env.Authority),
			builder.Readonly(pool.Pool),
			builder.Readonly(pool.Globals),
			builder.Writable(la.lockedShares),
			builder.Writable(la.lenderShares),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}}, nil
}

func buildWithdrawalRequestInitialize(ctx context.Context, deps *builder.Deps, env *builder.Env, f *WithdrawalRequestForm) (*builder.Result, error) {
	pool, err := loadPool(deps, f.Pool)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Shares) == "" {
		return nil, fmt.Errorf("%w: maple withdrawal request requires shares", ixerr.ErrInvalidParameter)
	}
	var nonce [8]byte
	if f.Nonce == "" {
		if _, err := rand.Read(nonce[:]); err != nil {
			return nil, err
		}
	} else if nonce, err = parseNonce(f.Nonce); err != nil {
		return nil, err
	}

	la, err := deriveLender(pool, env.Authority)
	if err != nil {
		return nil, err
	}
	var (
		held   *chain.TokenAccount
		shares *chain.Mint
	)
	err = mr.Finish(func() error {
		acc, err := chain.FetchTokenAccount(ctx, deps.Reader, la.lenderShares)
		if err != nil {
			return chain.BuildError(err, "lender shares account", la.lenderShares)
		}
		held = acc
		return nil
	}, func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, pool.SharesMint)
		if err != nil {
			return chain.BuildError(err, "maple shares mint", pool.SharesMint)
		}
		shares = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	amount, err := units.ParsePositiveUI64(f.Shares, shares.Decimals)
	if err != nil {
		return nil, err
	}
	if amount > held.Amount {
		return nil, fmt.Errorf("%w: shares %s exceed unlocked balance %d", ixerr.ErrInvalidParameter, f.Shares, held.Amount)
	}

	request, err := WithdrawalRequestAddress(la.lender, nonce)
	if err != nil {
		return nil, err
	}
	locker, err := WithdrawalRequestLockerAddress(request.Address)
	if err != nil {
		return nil, err
	}
	data, err := WithdrawalRequestInitializeLayout.Build(
		codec.Values{"withdrawSharesAmount": codec.FromU64(amount)},
		map[string][]byte{"nonce": nonce[:]},
	)
	if err != nil {
		return nil, err
	}
	logger.Infof("[MapleSyrup:WithdrawalRequest] pool=%s, request=%s, nonce=%s", f.Pool, request.Address, hex.EncodeToString(nonce[:]))
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.MapleSyrupProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(la.lender),
			builder.WritableSigner(env.Authority),
			builder.Readonly(pool.Pool),
			builder.Readonly(pool.Globals),
			builder.Readonly(pool.SharesMint),
			builder.Writable(la.lenderShares),
			builder.Writable(request.Address),
			builder.Writable(locker.Address),
			builder.Readonly(consts.SystemProgram),
			builder.Readonly(consts.TokenProgram),
			builder.Readonly(consts.SysvarRent),
		},
		Data: data,
	}}, nil
}

func buildWithdrawalRequestExecute(ctx context.Context, deps *builder.Deps, env *builder.Env, f *WithdrawalExecuteForm) (*builder.Result, error) {
	pool, err := loadPool(deps, f.Pool)
	if err != nil {
		return nil, err
	}
	nonce, err := parseNonce(f.Nonce)
	if err != nil {
		return nil, err
	}
	la, err := deriveLender(pool, env.Authority)
	if err != nil {
		return nil, err
	}
	request, err := WithdrawalRequestAddress(la.lender, nonce)
	if err != nil {
		return nil, err
	}
	if _, err := deps.Reader.GetAccountInfo(ctx, request.Address); err != nil {
		return nil, chain.BuildError(err, "maple withdrawal request", request.Address)
	}
	locker, err := WithdrawalRequestLockerAddress(request.Address)
	if err != nil {
		return nil, err
	}
	data, err := WithdrawalRequestExecuteLayout.Build(nil, nil)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.MapleSyrupProgram,
		Accounts: []builder.AccountMeta{
			builder.Writable(request.Address),
			builder.WritableSigner(env.Authority),
			builder.Writable(la.lender),
			builder.Writable(pool.Pool),
			builder.Readonly(pool.Globals),
			builder.Readonly(pool.BaseMint),
			builder.Writable(pool.PoolLocker),
			builder.Writable(pool.SharesMint),
			builder.Writable(locker.Address),
			builder.Writable(la.lenderLocker),
			builder.Readonly(consts.SystemProgram),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}}, nil
}
