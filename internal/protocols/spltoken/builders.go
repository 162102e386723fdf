package spltoken

import (
	"context"
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/protocols/associatedtoken"
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"
)

type TransferForm struct {
	Mint   types.Pubkey `form:"mint"`
	To     types.Pubkey `form:"to"` // 收款钱包，目标 ATA 由此推导
	Amount string       `form:"amount"`
}

type BurnForm struct {
	Mint   types.Pubkey `form:"mint"`
	Amount string       `form:"amount"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("spl-token.transfer", "transfer tokens from the governed wallet to another wallet", buildTransfer),
		builder.NewAction("spl-token.burn", "burn tokens held by the governed wallet", buildBurn),
	}
}

// buildTransfer TransferChecked：authority ATA -> 收款钱包 ATA，目标 ATA 不存在时附带创建指令。
// program id 与 ATA 派生都跟随 mint 所属的 token 程序（SPL Token / Token-2022）
func buildTransfer(ctx context.Context, deps *builder.Deps, env *builder.Env, f *TransferForm) (*builder.Result, error) {
	if f.Mint.IsZero() || f.To.IsZero() {
		return nil, fmt.Errorf("%w: transfer requires mint and to", ixerr.ErrInvalidParameter)
	}
	if strings.TrimSpace(f.Amount) == "" {
		return nil, fmt.Errorf("%w: transfer requires amount", ixerr.ErrInvalidParameter)
	}

	mint, err := chain.FetchMint(ctx, deps.Reader, f.Mint)
	if err != nil {
		return nil, chain.BuildError(err, "mint", f.Mint)
	}
	amount, err := units.ParsePositiveUI64(f.Amount, mint.Decimals)
	if err != nil {
		return nil, err
	}

	source, err := pda.AssociatedTokenAddressOf(env.Authority, f.Mint, mint.Program)
	if err != nil {
		return nil, err
	}
	if err := checkBalance(ctx, deps.Reader, source, amount, "transfer"); err != nil {
		return nil, err
	}
	dest, prereq, err := associatedtoken.EnsureOf(ctx, deps.Reader, env.Payer, f.To, f.Mint, mint.Program)
	if err != nil {
		return nil, err
	}

	data, err := TransferCheckedLayout.Build(codec.Values{
		"amount":   codec.FromU64(amount),
		"decimals": codec.FromU64(uint64(mint.Decimals)),
	}, nil)
	if err != nil {
		return nil, err
	}

	res := &builder.Result{Instruction: builder.Instruction{
		ProgramID: mint.Program,
		Accounts: []builder.AccountMeta{
			builder.Writable(source),
			builder.Readonly(f.Mint),
			builder.Writable(dest),
			builder.Signer(env.Authority),
		},
		Data: data,
	}}
	if prereq != nil {
		res.Prerequisites = append(res.Prerequisites, *prereq)
	}
	logger.Debugf("[SplToken:Transfer] source=%s, dest=%s, amount=%d, createDest=%v", source, dest, amount, prereq != nil)
	return res, nil
}

// buildBurn BurnChecked：从 authority ATA 销毁
func buildBurn(ctx context.Context, deps *builder.Deps, env *builder.Env, f *BurnForm) (*builder.Result, error) {
	if f.Mint.IsZero() || strings.TrimSpace(f.Amount) == "" {
		return nil, fmt.Errorf("%w: burn requires mint and amount", ixerr.ErrInvalidParameter)
	}

	mint, err := chain.FetchMint(ctx, deps.Reader, f.Mint)
	if err != nil {
		return nil, chain.BuildError(err, "mint", f.Mint)
	}
	amount, err := units.ParsePositiveUI64(f.Amount, mint.Decimals)
	if err != nil {
		return nil, err
	}

	account, err := pda.AssociatedTokenAddressOf(env.Authority, f.Mint, mint.Program)
	if err != nil {
		return nil, err
	}
	if err := checkBalance(ctx, deps.Reader, account, amount, "burn"); err != nil {
		return nil, err
	}

	data, err := BurnCheckedLayout.Build(codec.Values{
		"amount":   codec.FromU64(amount),
		"decimals": codec.FromU64(uint64(mint.Decimals)),
	}, nil)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: mint.Program,
		Accounts: []builder.AccountMeta{
			builder.Writable(account),
			builder.Writable(f.Mint),
			builder.Signer(env.Authority),
		},
		Data: data,
	}}, nil
}

// checkBalance 校验 authority 持仓足以覆盖 amount；账户不存在按依赖缺失处理
func checkBalance(ctx context.Context, r chain.Reader, account types.Pubkey, amount uint64, op string) error {
	held, err := chain.FetchTokenAccount(ctx, r, account)
	if err != nil {
		return chain.BuildError(err, "token account", account)
	}
	if held.Amount < amount {
		return fmt.Errorf("%w: %s %d exceeds balance %d of %s", ixerr.ErrInvalidParameter, op, amount, held.Amount, account)
	}
	return nil
}
