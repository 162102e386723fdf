package units

import (
	"fmt"
	"math"
	"strings"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"

	"github.com/holiman/uint256"
)

const maxDecimals = 30

var (
	ten      = uint256.NewInt(10)
	bpsScale = uint256.NewInt(10_000)
)

func pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(ten, uint256.NewInt(uint64(n)))
}

// ParseUI 将 UI 十进制字符串（如 "12.5"）转换为 base units
func ParseUI(s string, decimals uint8) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty amount", ixerr.ErrInvalidParameter)
	}
	if decimals > maxDecimals {
		return nil, fmt.Errorf("%w: unsupported decimals %d", ixerr.ErrInvalidParameter, decimals)
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: negative amount %q", ixerr.ErrInvalidParameter, s)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: malformed amount %q", ixerr.ErrInvalidParameter, s)
	}
	if len(frac) > int(decimals) {
		// 允许尾随 0，例如 "1.500000000" 之于 6 位精度
		trimmed := strings.TrimRight(frac, "0")
		if len(trimmed) > int(decimals) {
			return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ixerr.ErrInvalidParameter, s, decimals)
		}
		frac = trimmed
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: malformed amount %q", ixerr.ErrInvalidParameter, s)
		}
	}
	if len(digits) > 78 {
		return nil, fmt.Errorf("%w: amount %q too large", ixerr.ErrValueOutOfRange, s)
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %v", ixerr.ErrValueOutOfRange, s, err)
	}
	return v, nil
}

// ParseUI64 ParseUI 后要求结果可以放入 u64
func ParseUI64(s string, decimals uint8) (uint64, error) {
	v, err := ParseUI(s, decimals)
	if err != nil {
		return 0, err
	}
	return ToU64(v, s)
}

// ParsePositiveUI64 同 ParseUI64，且要求结果大于 0
func ParsePositiveUI64(s string, decimals uint8) (uint64, error) {
	v, err := ParseUI64(s, decimals)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: amount %q must be positive", ixerr.ErrInvalidParameter, s)
	}
	return v, nil
}

// ParseRaw 解析不带小数的原始整数（如 u128 liquidity）
func ParseRaw(s string) (codec.Uint128, error) {
	v, err := ParseUI(s, 0)
	if err != nil {
		return codec.Uint128{}, err
	}
	u, ok := codec.FromInt(v)
	if !ok {
		return codec.Uint128{}, fmt.Errorf("%w: %q exceeds 128 bits", ixerr.ErrValueOutOfRange, s)
	}
	return u, nil
}

func ToU64(v *uint256.Int, what string) (uint64, error) {
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s = %s exceeds u64", ixerr.ErrValueOutOfRange, what, v.Dec())
	}
	return v.Uint64(), nil
}

// Format 将 base units 按 decimals 转换为 UI 字符串，去掉小数部分尾随 0
func Format(v codec.Uint128, decimals uint8) string {
	s := v.String()
	if decimals == 0 {
		return s
	}
	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	whole, frac := s[:len(s)-d], strings.TrimRight(s[len(s)-d:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// SlippageBps 校验百分比滑点 [0,100] 并转换为基点
func SlippageBps(pct float64) (uint64, error) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 || pct > 100 {
		return 0, fmt.Errorf("%w: slippage %v must be between 0 and 100", ixerr.ErrInvalidParameter, pct)
	}
	return uint64(math.Round(pct * 100)), nil
}

// WithSlippageUp ceil(v * (10000 + bps) / 10000)，用于 max 类参数
func WithSlippageUp(v *uint256.Int, bps uint64) *uint256.Int {
	num := new(uint256.Int).Mul(v, new(uint256.Int).AddUint64(bpsScale, bps))
	return DivCeil(num, bpsScale)
}

// WithSlippageDown floor(v * (10000 - bps) / 10000)，用于 min 类参数
func WithSlippageDown(v *uint256.Int, bps uint64) *uint256.Int {
	if bps >= 10_000 {
		return new(uint256.Int)
	}
	num := new(uint256.Int).Mul(v, new(uint256.Int).SubUint64(bpsScale, bps))
	return num.Div(num, bpsScale)
}

// MulDiv floor(a * b / c)
func MulDiv(a, b, c *uint256.Int) *uint256.Int {
	num := new(uint256.Int).Mul(a, b)
	return num.Div(num, c)
}

// MulDivCeil ceil(a * b / c)
func MulDivCeil(a, b, c *uint256.Int) *uint256.Int {
	return DivCeil(new(uint256.Int).Mul(a, b), c)
}

// DivCeil ceil(num / den)
func DivCeil(num, den *uint256.Int) *uint256.Int {
	q, r := new(uint256.Int), new(uint256.Int)
	q.DivMod(num, den, r)
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q
}

// Pow10 10^n
func Pow10(n uint8) *uint256.Int {
	return pow10(n)
}
