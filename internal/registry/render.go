package registry

import (
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/types"
	"gov-ix-sol/internal/units"
)

// DisplayLine 渲染结果中的一行
type DisplayLine struct {
	Label string
	Value string
}

func Line(label, value string) DisplayLine {
	return DisplayLine{Label: label, Value: value}
}

// RoleAccount 角色与账户的配对，按位置对应
type RoleAccount struct {
	Role   string
	Pubkey types.Pubkey
}

// RenderInput 渲染函数的全部输入，由 registry 在查表、解码、外部查询后构造
type RenderInput struct {
	Program  types.Pubkey
	Name     string
	Layout   *codec.Layout
	Data     []byte
	Fields   codec.Values
	Accounts []RoleAccount
	Mints    map[string]types.Pubkey // scale key -> mint
	Decimals map[string]uint8        // scale key -> decimals
}

// RenderFunc 无状态渲染函数
type RenderFunc func(in *RenderInput) ([]DisplayLine, error)

// Raw 字段原始值的十进制字符串
func (in *RenderInput) Raw(field string) string {
	return in.Fields[field].String()
}

// Scaled 按字段声明的 scale 缩放；未声明 scale 的字段原样输出
func (in *RenderInput) Scaled(field string) (string, error) {
	f, ok := in.Layout.Field(field)
	if !ok {
		return "", fmt.Errorf("%s has no field %s", in.Name, field)
	}
	v := in.Fields[field]
	if f.Scale == "" {
		return v.String(), nil
	}
	d, ok := in.Decimals[f.Scale]
	if !ok {
		return "", fmt.Errorf("%s: decimals for %s not resolved", in.Name, f.Scale)
	}
	return units.Format(v, d), nil
}

// Account 第 i 个账户
func (in *RenderInput) Account(i int) types.Pubkey {
	return in.Accounts[i].Pubkey
}

// RenderFields 逐个字段输出（有 scale 的按 decimals 缩放）
func RenderFields(in *RenderInput) ([]DisplayLine, error) {
	lines := make([]DisplayLine, 0, len(in.Layout.Fields))
	for _, f := range in.Layout.Fields {
		v, err := in.Scaled(f.Name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line(f.Name, v))
	}
	return lines, nil
}

// RenderNothing 明确表示“没有需要展示的数据”，与未知指令不同
func RenderNothing(*RenderInput) ([]DisplayLine, error) {
	return []DisplayLine{}, nil
}
