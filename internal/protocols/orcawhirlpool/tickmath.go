package orcawhirlpool

import (
	"fmt"

	"gov-ix-sol/internal/ixerr"

	"github.com/holiman/uint256"
)

const (
	MinTick = -443636
	MaxTick = 443636

	// TickArraySize 每个 tick array 覆盖 88 个可用 tick
	TickArraySize = 88
)

func mustDec(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// 正 tick：Q96 定点，逐位乘 sqrt(1.0001^(2^i))
var positiveFactors = []*uint256.Int{
	mustDec("79236085330515764027303304731"),
	mustDec("79244008939048815603706035061"),
	mustDec("79259858533276714757314932305"),
	mustDec("79291567232598584799939703904"),
	mustDec("79355022692464371645785046466"),
	mustDec("79482085999252804386437311141"),
	mustDec("79736823300114093921829183326"),
	mustDec("80248749790819932309965073892"),
	mustDec("81282483887344747381513967011"),
	mustDec("83390072131320151908154831281"),
	mustDec("87770609709833776024991924138"),
	mustDec("97234110755111693312479820773"),
	mustDec("119332217159966728226237229890"),
	mustDec("179736315981702064433883588727"),
	mustDec("407748233172238350107850275304"),
	mustDec("2098478828474011932436660412517"),
	mustDec("55581415166113811149459800483533"),
	mustDec("38992368544603139932233054999993551"),
}

// 负 tick：Q64 定点，逐位乘 1/sqrt(1.0001^(2^i))
var negativeFactors = []*uint256.Int{
	mustDec("18444899583751176498"),
	mustDec("18443055278223354162"),
	mustDec("18439367220385604838"),
	mustDec("18431993317065449817"),
	mustDec("18417254355718160513"),
	mustDec("18387811781193591352"),
	mustDec("18329067761203520168"),
	mustDec("18212142134806087854"),
	mustDec("17980523815641551639"),
	mustDec("17526086738831147013"),
	mustDec("16651378430235024244"),
	mustDec("15030750278693429944"),
	mustDec("12247334978882834399"),
	mustDec("8131365268884726200"),
	mustDec("3584323654723342297"),
	mustDec("696457651847595233"),
	mustDec("26294789957452057"),
	mustDec("37481735321082"),
}

var (
	positiveOdd = mustDec("79232123823359799118286999567")
	negativeOdd = mustDec("18445821805675392311")
)

// CheckTick tick 必须在 [MinTick, MaxTick] 内
func CheckTick(tick int32) error {
	if tick < MinTick || tick > MaxTick {
		return fmt.Errorf("%w: tick %d outside [%d, %d]", ixerr.ErrInvalidParameter, tick, MinTick, MaxTick)
	}
	return nil
}

// SqrtPriceFromTick 返回 Q64.64 格式的 sqrt(1.0001^tick)
func SqrtPriceFromTick(tick int32) (*uint256.Int, error) {
	if err := CheckTick(tick); err != nil {
		return nil, err
	}
	if tick >= 0 {
		t := uint32(tick)
		ratio := new(uint256.Int).Lsh(uint256.NewInt(1), 96)
		if t&1 != 0 {
			ratio.Set(positiveOdd)
		}
		for i, f := range positiveFactors {
			if t&(1<<(i+1)) != 0 {
				ratio.Mul(ratio, f)
				ratio.Rsh(ratio, 96)
			}
		}
		return ratio.Rsh(ratio, 32), nil
	}

	t := uint32(-tick)
	ratio := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	if t&1 != 0 {
		ratio.Set(negativeOdd)
	}
	for i, f := range negativeFactors {
		if t&(1<<(i+1)) != 0 {
			ratio.Mul(ratio, f)
			ratio.Rsh(ratio, 64)
		}
	}
	return ratio, nil
}

// TickArrayStart 包含 tick 的 tick array 起始 index（向下取整）
func TickArrayStart(tick int32, spacing uint16) int32 {
	width := int32(spacing) * TickArraySize
	start := tick / width
	if tick%width != 0 && tick < 0 {
		start--
	}
	return start * width
}

// CheckBounds 开仓 / 加仓区间：lower < upper，均在范围内且是 spacing 的整数倍
func CheckBounds(lower, upper int32, spacing uint16) error {
	if err := CheckTick(lower); err != nil {
		return err
	}
	if err := CheckTick(upper); err != nil {
		return err
	}
	if lower >= upper {
		return fmt.Errorf("%w: tick lower %d must be below upper %d", ixerr.ErrInvalidParameter, lower, upper)
	}
	if spacing == 0 {
		return fmt.Errorf("%w: tick spacing is zero", ixerr.ErrInvalidParameter)
	}
	if lower%int32(spacing) != 0 || upper%int32(spacing) != 0 {
		return fmt.Errorf("%w: ticks %d/%d not multiples of spacing %d", ixerr.ErrInvalidParameter, lower, upper, spacing)
	}
	return nil
}
