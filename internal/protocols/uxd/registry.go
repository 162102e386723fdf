package uxd

import (
	"fmt"

	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/registry"
)

const EditController uint64 = 0x8499e33c84b4e2d1

// editControllerOption EditControllerFields 中的一个 Option 参数，按链上声明顺序排列
type editControllerOption struct {
	name  string
	label string
	width codec.Width
	scale string
}

var editControllerOptions = []editControllerOption{
	{"quoteMintAndRedeemSoftCap", "Quote Mint And Redeem Soft Cap", codec.U64, "quote"},
	{"redeemableSoftCap", "Redeemable Soft Cap", codec.U64, "redeemable"},
	{"redeemableGlobalSupplyCap", "Redeemable Global Supply Cap", codec.U128, "redeemable"},
}

// editControllerLayouts[mask]：mask 第 i 位为 1 表示第 i 个 Option 为 Some
var editControllerLayouts = func() []*codec.Layout {
	out := make([]*codec.Layout, 1<<len(editControllerOptions))
	for mask := range out {
		out[mask] = editControllerLayout(mask)
	}
	return out
}()

func editControllerLayout(mask int) *codec.Layout {
	l := &codec.Layout{
		Name:          fmt.Sprintf("UXD:EditController[%03b]", mask),
		Discriminator: codec.Disc8(EditController),
	}
	offset := 8
	for i, o := range editControllerOptions {
		l.Fields = append(l.Fields, codec.Field{Name: o.name + "Tag", Offset: offset, Width: codec.U8})
		offset++
		if mask&(1<<i) != 0 {
			l.Fields = append(l.Fields, codec.Field{Name: o.name, Offset: offset, Width: o.width, Scale: o.scale})
			offset += int(o.width)
		}
	}
	l.Size = offset
	return l
}

// selectEditController 按 Option tag 确定布局
func selectEditController(data []byte) (int, error) {
	mask, pos := 0, 8
	for i, o := range editControllerOptions {
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: edit controller data truncated at %s", ixerr.ErrMalformedInstructionData, o.name)
		}
		switch data[pos] {
		case 0:
			pos++
		case 1:
			mask |= 1 << i
			pos += 1 + int(o.width)
		default:
			return 0, fmt.Errorf("%w: edit controller %s has option tag %d", ixerr.ErrMalformedInstructionData, o.name, data[pos])
		}
	}
	return mask, nil
}

// Edit Controller 指令账户布局：
//
// #0 - Authority  // 签名者，需与 controller.authority 一致
// #1 - Controller // PDA ["CONTROLLER"]
var editControllerRoles = []string{
	"Authority",
	"Controller",
}

// Program 一个 UXD 部署对应一个 program；soft cap 按 quote mint 缩放，其余按 redeemable mint
func Program(ctrl catalog.UXDController) registry.Program {
	return registry.Program{
		ID:        ctrl.Program,
		Name:      consts.ProtocolName(consts.ProtocolUXD),
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "UXD - Edit Controller",
				Layout: editControllerLayouts[0],
				Roles:  editControllerRoles,
				Mints: map[string]registry.MintSource{
					"quote":      registry.StaticMint(ctrl.QuoteMint),
					"redeemable": registry.StaticMint(ctrl.RedeemableMint),
				},
				Render:   renderEditController,
				Variants: editControllerLayouts,
				Select:   selectEditController,
			},
		},
	}
}

func renderEditController(in *registry.RenderInput) ([]registry.DisplayLine, error) {
	lines := []registry.DisplayLine{registry.Line("Controller", in.Account(1).String())}
	for _, o := range editControllerOptions {
		if _, ok := in.Fields[o.name]; !ok {
			lines = append(lines, registry.Line(o.label, "unchanged"))
			continue
		}
		v, err := in.Scaled(o.name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, registry.Line(o.label, v))
	}
	return lines, nil
}
