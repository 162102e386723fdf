package orcawhirlpool

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
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/zeromicro/go-zero/core/mr"
)

type OpenPositionForm struct {
	Whirlpool types.Pubkey `form:"whirlpool"`
	TickLower int32        `form:"tickLower"`
	TickUpper int32        `form:"tickUpper"`
}

type IncreaseLiquidityForm struct {
	Position types.Pubkey `form:"position"`
	AmountA  string       `form:"amountA"` // token A 的 UI 数量
	Slippage float64      `form:"slippage"`
}

type DecreaseLiquidityForm struct {
	Position  types.Pubkey `form:"position"`
	Liquidity string       `form:"liquidity"` // 原始 u128；留空表示全部
	Slippage  float64      `form:"slippage"`
}

type CollectFeesForm struct {
	Position types.Pubkey `form:"position"`
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("orca.open-position", "open a whirlpool position NFT owned by the governed wallet", buildOpenPosition),
		builder.NewAction("orca.increase-liquidity", "add liquidity to a position, quoted by token A amount", buildIncreaseLiquidity),
		builder.NewAction("orca.decrease-liquidity", "remove liquidity from a position", buildDecreaseLiquidity),
		builder.NewAction("orca.collect-fees", "collect accrued fees of a position", buildCollectFees),
	}
}

func buildOpenPosition(ctx context.Context, deps *builder.Deps, env *builder.Env, f *OpenPositionForm) (*builder.Result, error) {
	if f.Whirlpool.IsZero() {
		return nil, fmt.Errorf("%w: open position requires whirlpool", ixerr.ErrInvalidParameter)
	}
	if err := CheckBounds(f.TickLower, f.TickUpper, 1); err != nil {
		return nil, err
	}

	w, err := FetchWhirlpool(ctx, deps.Reader, f.Whirlpool)
	if err != nil {
		return nil, err
	}
	if err := CheckBounds(f.TickLower, f.TickUpper, w.TickSpacing); err != nil {
		return nil, err
	}

	mintAccount := sdktypes.NewAccount()
	positionMint := types.FromCommon(mintAccount.PublicKey)
	position, err := PositionAddress(positionMint)
	if err != nil {
		return nil, err
	}
	metadata, err := MetadataAddress(positionMint)
	if err != nil {
		return nil, err
	}
	positionTokenAccount, err := pda.AssociatedTokenAddress(env.Authority, positionMint)
	if err != nil {
		return nil, err
	}

	data, err := OpenPositionWithMetadataLayout.Build(codec.Values{
		"positionBump":   codec.FromU64(uint64(position.Bump)),
		"metadataBump":   codec.FromU64(uint64(metadata.Bump)),
		"tickLowerIndex": codec.FromU64(uint64(uint32(f.TickLower))),
		"tickUpperIndex": codec.FromU64(uint64(uint32(f.TickUpper))),
	}, nil)
	if err != nil {
		return nil, err
	}

	logger.Debugf("[Orca:OpenPosition] whirlpool=%s, positionMint=%s, position=%s, range=[%d,%d)",
		f.Whirlpool, positionMint, position.Address, f.TickLower, f.TickUpper)
	return &builder.Result{
		Instruction: builder.Instruction{
			ProgramID: consts.OrcaWhirlpoolProgram,
			Accounts: []builder.AccountMeta{
				builder.WritableSigner(env.Payer),
				builder.Readonly(env.Authority),
				builder.Writable(position.Address),
				builder.WritableSigner(positionMint),
				builder.Writable(metadata.Address),
				builder.Writable(positionTokenAccount),
				builder.Readonly(f.Whirlpool),
				builder.Readonly(consts.TokenProgram),
				builder.Readonly(consts.SystemProgram),
				builder.Readonly(consts.SysvarRent),
				builder.Readonly(consts.AssociatedTokenProgram),
				builder.Readonly(consts.TokenMetaProgram),
				builder.Readonly(consts.OrcaWhirlpoolMetadataUpdAuth),
			},
			Data: data,
		},
		Signers: []sdktypes.Account{mintAccount},
	}, nil
}

// positionContext 加减仓共用的链上上下文
type positionContext struct {
	address   types.Pubkey
	position  *Position
	whirlpool *Whirlpool
	tickLower pda.Derived
	tickUpper pda.Derived
	lowerIdx  int32
	upperIdx  int32
}

func loadPosition(ctx context.Context, r chain.Reader, addr types.Pubkey) (*positionContext, error) {
	p, err := FetchPosition(ctx, r, addr)
	if err != nil {
		return nil, err
	}
	w, err := FetchWhirlpool(ctx, r, p.Whirlpool)
	if err != nil {
		return nil, err
	}
	pc := &positionContext{
		address:   addr,
		position:  p,
		whirlpool: w,
		lowerIdx:  TickArrayStart(p.TickLowerIndex, w.TickSpacing),
		upperIdx:  TickArrayStart(p.TickUpperIndex, w.TickSpacing),
	}
	if pc.tickLower, err = TickArrayAddress(p.Whirlpool, pc.lowerIdx); err != nil {
		return nil, err
	}
	if pc.tickUpper, err = TickArrayAddress(p.Whirlpool, pc.upperIdx); err != nil {
		return nil, err
	}
	return pc, nil
}

func (pc *positionContext) liquidityAccounts(authority types.Pubkey) ([]builder.AccountMeta, error) {
	positionTokenAccount, err := pda.AssociatedTokenAddress(authority, pc.position.PositionMint)
	if err != nil {
		return nil, err
	}
	ownerA, err := pda.AssociatedTokenAddress(authority, pc.whirlpool.TokenMintA)
	if err != nil {
		return nil, err
	}
	ownerB, err := pda.AssociatedTokenAddress(authority, pc.whirlpool.TokenMintB)
	if err != nil {
		return nil, err
	}
	return []builder.AccountMeta{
		builder.Writable(pc.position.Whirlpool),
		builder.Readonly(consts.TokenProgram),
		builder.Signer(authority),
		builder.Writable(pc.address),
		builder.Readonly(positionTokenAccount),
		builder.Writable(ownerA),
		builder.Writable(ownerB),
		builder.Writable(pc.whirlpool.TokenVaultA),
		builder.Writable(pc.whirlpool.TokenVaultB),
		builder.Writable(pc.tickLower.Address),
		builder.Writable(pc.tickUpper.Address),
	}, nil
}

// InitTickArrayIx 初始化 tick array
func InitTickArrayIx(whirlpool, funder types.Pubkey, start int32) (builder.Instruction, error) {
	ta, err := TickArrayAddress(whirlpool, start)
	if err != nil {
		return builder.Instruction{}, err
	}
	data, err := InitializeTickArrayLayout.Build(codec.Values{
		"startTickIndex": codec.FromU64(uint64(uint32(start))),
	}, nil)
	if err != nil {
		return builder.Instruction{}, err
	}
	return builder.Instruction{
		ProgramID: consts.OrcaWhirlpoolProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(whirlpool),
			builder.WritableSigner(funder),
			builder.Writable(ta.Address),
			builder.Readonly(consts.SystemProgram),
		},
		Data: data,
	}, nil
}

func buildIncreaseLiquidity(ctx context.Context, deps *builder.Deps, env *builder.Env, f *IncreaseLiquidityForm) (*builder.Result, error) {
	// 参数校验先于任何推导与链上读取
	bps, err := units.SlippageBps(f.Slippage)
	if err != nil {
		return nil, err
	}
	if f.Position.IsZero() || strings.TrimSpace(f.AmountA) == "" {
		return nil, fmt.Errorf("%w: increase liquidity requires position and amountA", ixerr.ErrInvalidParameter)
	}

	pc, err := loadPosition(ctx, deps.Reader, f.Position)
	if err != nil {
		return nil, err
	}

	var (
		mintA                    *chain.Mint
		lowerExists, upperExists bool
	)
	err = mr.Finish(func() error {
		m, err := chain.FetchMint(ctx, deps.Reader, pc.whirlpool.TokenMintA)
		if err != nil {
			return chain.BuildError(err, "mint A", pc.whirlpool.TokenMintA)
		}
		mintA = m
		return nil
	}, func() error {
		ok, err := chain.Exists(ctx, deps.Reader, pc.tickLower.Address)
		if err != nil {
			return chain.BuildError(err, "tick array", pc.tickLower.Address)
		}
		lowerExists = ok
		return nil
	}, func() error {
		ok, err := chain.Exists(ctx, deps.Reader, pc.tickUpper.Address)
		if err != nil {
			return chain.BuildError(err, "tick array", pc.tickUpper.Address)
		}
		upperExists = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	amountA, err := units.ParsePositiveUI64(f.AmountA, mintA.Decimals)
	if err != nil {
		return nil, err
	}
	quote, err := QuoteIncreaseByTokenA(amountA, pc.whirlpool, pc.position.TickLowerIndex, pc.position.TickUpperIndex, bps)
	if err != nil {
		return nil, err
	}

	res := &builder.Result{}
	if !lowerExists {
		ix, err := InitTickArrayIx(pc.position.Whirlpool, env.Payer, pc.lowerIdx)
		if err != nil {
			return nil, err
		}
		res.Prerequisites = append(res.Prerequisites, ix)
	}
	if !upperExists && pc.upperIdx != pc.lowerIdx {
		ix, err := InitTickArrayIx(pc.position.Whirlpool, env.Payer, pc.upperIdx)
		if err != nil {
			return nil, err
		}
		res.Prerequisites = append(res.Prerequisites, ix)
	}

	accounts, err := pc.liquidityAccounts(env.Authority)
	if err != nil {
		return nil, err
	}
	data, err := IncreaseLiquidityLayout.Build(codec.Values{
		"liquidityAmount": quote.Liquidity,
		"tokenMaxA":       codec.FromU64(quote.TokenMaxA),
		"tokenMaxB":       codec.FromU64(quote.TokenMaxB),
	}, nil)
	if err != nil {
		return nil, err
	}
	res.Instruction = builder.Instruction{ProgramID: consts.OrcaWhirlpoolProgram, Accounts: accounts, Data: data}

	logger.Debugf("[Orca:IncreaseLiquidity] position=%s, liquidity=%s, maxA=%d, maxB=%d, tickArrays=[%d,%d], init=%d",
		f.Position, quote.Liquidity, quote.TokenMaxA, quote.TokenMaxB, pc.lowerIdx, pc.upperIdx, len(res.Prerequisites))
	return res, nil
}

func buildDecreaseLiquidity(ctx context.Context, deps *builder.Deps, env *builder.Env, f *DecreaseLiquidityForm) (*builder.Result, error) {
	bps, err := units.SlippageBps(f.Slippage)
	if err != nil {
		return nil, err
	}
	if f.Position.IsZero() {
		return nil, fmt.Errorf("%w: decrease liquidity requires position", ixerr.ErrInvalidParameter)
	}
	var requested *codec.Uint128
	if s := strings.TrimSpace(f.Liquidity); s != "" {
		v, err := units.ParseRaw(s)
		if err != nil {
			return nil, err
		}
		if v.IsZero() {
			return nil, fmt.Errorf("%w: liquidity must be positive", ixerr.ErrInvalidParameter)
		}
		requested = &v
	}

	pc, err := loadPosition(ctx, deps.Reader, f.Position)
	if err != nil {
		return nil, err
	}
	held := pc.position.Liquidity.Uint128()
	liquidity := held
	if requested != nil {
		if requested.Int().Gt(held.Int()) {
			return nil, fmt.Errorf("%w: liquidity %s exceeds position liquidity %s", ixerr.ErrInvalidParameter, requested, held)
		}
		liquidity = *requested
	}
	if liquidity.IsZero() {
		return nil, fmt.Errorf("%w: position %s has no liquidity", ixerr.ErrInvalidParameter, f.Position)
	}

	quote, err := QuoteDecrease(liquidity, pc.whirlpool, pc.position.TickLowerIndex, pc.position.TickUpperIndex, bps)
	if err != nil {
		return nil, err
	}
	accounts, err := pc.liquidityAccounts(env.Authority)
	if err != nil {
		return nil, err
	}
	data, err := DecreaseLiquidityLayout.Build(codec.Values{
		"liquidityAmount": quote.Liquidity,
		"tokenMinA":       codec.FromU64(quote.TokenMinA),
		"tokenMinB":       codec.FromU64(quote.TokenMinB),
	}, nil)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.OrcaWhirlpoolProgram,
		Accounts:  accounts,
		Data:      data,
	}}, nil
}

func buildCollectFees(ctx context.Context, deps *builder.Deps, env *builder.Env, f *CollectFeesForm) (*builder.Result, error) {
	if f.Position.IsZero() {
		return nil, fmt.Errorf("%w: collect fees requires position", ixerr.ErrInvalidParameter)
	}
	p, err := FetchPosition(ctx, deps.Reader, f.Position)
	if err != nil {
		return nil, err
	}
	w, err := FetchWhirlpool(ctx, deps.Reader, p.Whirlpool)
	if err != nil {
		return nil, err
	}

	positionTokenAccount, err := pda.AssociatedTokenAddress(env.Authority, p.PositionMint)
	if err != nil {
		return nil, err
	}
	ownerA, err := pda.AssociatedTokenAddress(env.Authority, w.TokenMintA)
	if err != nil {
		return nil, err
	}
	ownerB, err := pda.AssociatedTokenAddress(env.Authority, w.TokenMintB)
	if err != nil {
		return nil, err
	}
	data, err := CollectFeesLayout.Build(codec.Values{}, nil)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.OrcaWhirlpoolProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(p.Whirlpool),
			builder.Signer(env.Authority),
			builder.Writable(f.Position),
			builder.Readonly(positionTokenAccount),
			builder.Writable(ownerA),
			builder.Writable(w.TokenVaultA),
			builder.Writable(ownerB),
			builder.Writable(w.TokenVaultB),
			builder.Readonly(consts.TokenProgram),
		},
		Data: data,
	}}, nil
}
