package codec

import (
	"github.com/holiman/uint256"
)

// Uint128 无符号 128 位整数，按小端两段 u64 存储：value = Lo + Hi * 2^64
type Uint128 struct {
	Hi uint64
	Lo uint64
}

func FromU64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// IsUint64 高 64 位为 0
func (u Uint128) IsUint64() bool {
	return u.Hi == 0
}

func (u Uint128) Uint64() uint64 {
	return u.Lo
}

func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Int 转换为 uint256，供上层做大数运算
func (u Uint128) Int() *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

// FromInt 从 uint256 转回；超过 128 位返回 false
func FromInt(v *uint256.Int) (Uint128, bool) {
	if v.BitLen() > 128 {
		return Uint128{}, false
	}
	return Uint128{Hi: new(uint256.Int).Rsh(v, 64).Uint64(), Lo: v.Uint64()}, true
}

func (u Uint128) String() string {
	if u.Hi == 0 {
		return uint256.NewInt(u.Lo).Dec()
	}
	return u.Int().Dec()
}

// fits 判断数值是否能放入指定宽度
func (u Uint128) fits(w Width) bool {
	switch w {
	case U128:
		return true
	case U64:
		return u.Hi == 0
	case U8, U16, U32:
		return u.Hi == 0 && u.Lo>>(uint(w)*8) == 0
	default:
		return false
	}
}
