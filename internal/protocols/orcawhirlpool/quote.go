package orcawhirlpool

import (
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/units"

	"github.com/holiman/uint256"
)

// IncreaseQuote 按 token A 输入量计算的加仓报价
type IncreaseQuote struct {
	Liquidity codec.Uint128
	TokenEstA uint64
	TokenEstB uint64
	TokenMaxA uint64
	TokenMaxB uint64
}

// DecreaseQuote 减仓报价
type DecreaseQuote struct {
	Liquidity codec.Uint128
	TokenEstA uint64
	TokenEstB uint64
	TokenMinA uint64
	TokenMinB uint64
}

func overflow(what string) error {
	return fmt.Errorf("%w: %s overflows 256-bit math", ixerr.ErrValueOutOfRange, what)
}

// tokenAFromLiquidity L * (sHi - sLo) * 2^64 / (sHi * sLo)
func tokenAFromLiquidity(l, sLo, sHi *uint256.Int, roundUp bool) (*uint256.Int, error) {
	diff := new(uint256.Int).Sub(sHi, sLo)
	num, over := new(uint256.Int).MulOverflow(l, diff)
	if over || num.BitLen() > 192 {
		return nil, overflow("token A numerator")
	}
	num.Lsh(num, 64)
	den, over := new(uint256.Int).MulOverflow(sHi, sLo)
	if over || den.IsZero() {
		return nil, overflow("token A denominator")
	}
	if roundUp {
		return units.DivCeil(num, den), nil
	}
	return num.Div(num, den), nil
}

// tokenBFromLiquidity L * (sHi - sLo) / 2^64
func tokenBFromLiquidity(l, sLo, sHi *uint256.Int, roundUp bool) (*uint256.Int, error) {
	diff := new(uint256.Int).Sub(sHi, sLo)
	num, over := new(uint256.Int).MulOverflow(l, diff)
	if over {
		return nil, overflow("token B numerator")
	}
	q64 := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	if roundUp {
		return units.DivCeil(num, q64), nil
	}
	return num.Rsh(num, 64), nil
}

// liquidityFromTokenA amount * (sLo * sHi / 2^64) / (sHi - sLo)
func liquidityFromTokenA(amount uint64, sLo, sHi *uint256.Int) *uint256.Int {
	p := new(uint256.Int).Mul(sLo, sHi)
	p.Rsh(p, 64)
	diff := new(uint256.Int).Sub(sHi, sLo)
	return units.MulDiv(uint256.NewInt(amount), p, diff)
}

// TokenAmounts 给定流动性在当前价格下对应的 token A / B 数量
func TokenAmounts(l *uint256.Int, tickCurrent int32, sqrtPrice *uint256.Int, lower, upper int32, roundUp bool) (a, b *uint256.Int, err error) {
	sL, err := SqrtPriceFromTick(lower)
	if err != nil {
		return nil, nil, err
	}
	sU, err := SqrtPriceFromTick(upper)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case tickCurrent < lower:
		a, err = tokenAFromLiquidity(l, sL, sU, roundUp)
		b = new(uint256.Int)
	case tickCurrent < upper:
		a, err = tokenAFromLiquidity(l, sqrtPrice, sU, roundUp)
		if err == nil {
			b, err = tokenBFromLiquidity(l, sL, sqrtPrice, roundUp)
		}
	default:
		a = new(uint256.Int)
		b, err = tokenBFromLiquidity(l, sL, sU, roundUp)
	}
	return a, b, err
}

// QuoteIncreaseByTokenA 以 token A 数量为输入计算流动性与 max 参数。
// 当前价格已高于区间时仓位只需要 token B，返回 ErrInvalidParameter
func QuoteIncreaseByTokenA(amountA uint64, w *Whirlpool, lower, upper int32, slippageBps uint64) (*IncreaseQuote, error) {
	if amountA == 0 {
		return nil, fmt.Errorf("%w: token A amount must be positive", ixerr.ErrInvalidParameter)
	}
	if w.TickCurrentIndex >= upper {
		return nil, fmt.Errorf("%w: current tick %d is above position range [%d, %d), deposit token B instead",
			ixerr.ErrInvalidParameter, w.TickCurrentIndex, lower, upper)
	}
	sL, err := SqrtPriceFromTick(lower)
	if err != nil {
		return nil, err
	}
	sU, err := SqrtPriceFromTick(upper)
	if err != nil {
		return nil, err
	}
	sC := w.SqrtPrice.Uint128().Int()

	var l *uint256.Int
	if w.TickCurrentIndex < lower {
		l = liquidityFromTokenA(amountA, sL, sU)
	} else {
		l = liquidityFromTokenA(amountA, sC, sU)
	}
	if l.IsZero() {
		return nil, fmt.Errorf("%w: token A amount %d too small for any liquidity", ixerr.ErrInvalidParameter, amountA)
	}
	liq, ok := codec.FromInt(l)
	if !ok {
		return nil, fmt.Errorf("%w: liquidity %s exceeds u128", ixerr.ErrValueOutOfRange, l.Dec())
	}

	estA, estB, err := TokenAmounts(l, w.TickCurrentIndex, sC, lower, upper, true)
	if err != nil {
		return nil, err
	}
	q := &IncreaseQuote{Liquidity: liq}
	if q.TokenEstA, err = units.ToU64(estA, "token A estimate"); err != nil {
		return nil, err
	}
	if q.TokenEstB, err = units.ToU64(estB, "token B estimate"); err != nil {
		return nil, err
	}
	if q.TokenMaxA, err = units.ToU64(units.WithSlippageUp(estA, slippageBps), "token max A"); err != nil {
		return nil, err
	}
	if q.TokenMaxB, err = units.ToU64(units.WithSlippageUp(estB, slippageBps), "token max B"); err != nil {
		return nil, err
	}
	return q, nil
}

// QuoteDecrease 移除 liquidity 时的最少到账数量
func QuoteDecrease(liquidity codec.Uint128, w *Whirlpool, lower, upper int32, slippageBps uint64) (*DecreaseQuote, error) {
	estA, estB, err := TokenAmounts(liquidity.Int(), w.TickCurrentIndex, w.SqrtPrice.Uint128().Int(), lower, upper, false)
	if err != nil {
		return nil, err
	}
	q := &DecreaseQuote{Liquidity: liquidity}
	if q.TokenEstA, err = units.ToU64(estA, "token A estimate"); err != nil {
		return nil, err
	}
	if q.TokenEstB, err = units.ToU64(estB, "token B estimate"); err != nil {
		return nil, err
	}
	q.TokenMinA = units.WithSlippageDown(estA, slippageBps).Uint64()
	q.TokenMinB = units.WithSlippageDown(estB, slippageBps).Uint64()
	return q, nil
}
