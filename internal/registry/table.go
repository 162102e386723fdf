package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/types"
)

type mintKind uint8

const (
	mintAccount mintKind = iota + 1
	tokenAccountMint
	staticMint
)

// MintSource 渲染时某个 scale key 的 decimals 来源
type MintSource struct {
	kind  mintKind
	index int
	mint  types.Pubkey
}

// MintAccount 第 i 个账户本身就是 mint
func MintAccount(i int) MintSource {
	return MintSource{kind: mintAccount, index: i}
}

// TokenAccountMint 第 i 个账户是 token account，先读取其 mint
func TokenAccountMint(i int) MintSource {
	return MintSource{kind: tokenAccountMint, index: i}
}

// StaticMint 固定 mint
func StaticMint(pk types.Pubkey) MintSource {
	return MintSource{kind: staticMint, mint: pk}
}

func (s MintSource) String() string {
	switch s.kind {
	case mintAccount:
		return fmt.Sprintf("mint(#%d)", s.index)
	case tokenAccountMint:
		return fmt.Sprintf("tokenAccountMint(#%d)", s.index)
	case staticMint:
		return fmt.Sprintf("static(%s)", s.mint)
	}
	return "invalid"
}

// Entry 单条指令的描述：布局、角色、mint 来源与渲染函数
type Entry struct {
	Name   string
	Layout *codec.Layout
	Roles  []string
	Mints  map[string]MintSource
	Render RenderFunc

	// Variants 同一 opcode 下的多种定长布局（Option 参数按 Some/None 展开）。
	// 非空时 Select 根据数据返回下标，Layout 只提供 discriminator
	Variants []*codec.Layout
	Select   func(data []byte) (int, error)
}

// layoutFor 返回解码 data 使用的布局
func (e *Entry) layoutFor(data []byte) (*codec.Layout, error) {
	if e.Select == nil {
		return e.Layout, nil
	}
	i, err := e.Select(data)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(e.Variants) {
		return nil, fmt.Errorf("%w: %s variant %d out of range", ixerr.ErrMalformedInstructionData, e.Name, i)
	}
	return e.Variants[i], nil
}

// Program 一个 program 下的全部指令
type Program struct {
	ID        types.Pubkey
	Name      string
	DiscWidth int // 1：单字节 opcode；8：Anchor discriminator
	Entries   []Entry
}

type programTable struct {
	name    string
	width   int
	entries map[uint64]*Entry
}

// Table (program, opcode) -> Entry 的只读查找表，构造后不再修改
type Table struct {
	programs map[types.Pubkey]*programTable
}

// NewTable 校验并构造查找表。任何 layout 不自洽、opcode 重复、
// scale 未声明来源或来源越界都会返回错误
func NewTable(programs ...Program) (*Table, error) {
	t := &Table{programs: make(map[types.Pubkey]*programTable, len(programs))}
	for _, p := range programs {
		if p.DiscWidth != 1 && p.DiscWidth != 8 {
			return nil, fmt.Errorf("program %s: discriminator width must be 1 or 8, got %d", p.Name, p.DiscWidth)
		}
		if _, dup := t.programs[p.ID]; dup {
			return nil, fmt.Errorf("program %s (%s) registered twice", p.Name, p.ID)
		}
		pt := &programTable{name: p.Name, width: p.DiscWidth, entries: make(map[uint64]*Entry, len(p.Entries))}
		for i := range p.Entries {
			e := p.Entries[i]
			if err := validateEntry(p, &e); err != nil {
				return nil, err
			}
			op := opcodeOf(e.Layout.Discriminator)
			if _, dup := pt.entries[op]; dup {
				return nil, fmt.Errorf("program %s: opcode %s registered twice", p.Name, formatOpcode(op, p.DiscWidth))
			}
			pt.entries[op] = &e
		}
		t.programs[p.ID] = pt
	}
	return t, nil
}

// MustTable 同 NewTable，失败直接 panic（用于启动期组装）
func MustTable(programs ...Program) *Table {
	t, err := NewTable(programs...)
	if err != nil {
		panic(err)
	}
	return t
}

func validateEntry(p Program, e *Entry) error {
	if e.Layout == nil || e.Render == nil {
		return fmt.Errorf("program %s: entry %q needs layout and render", p.Name, e.Name)
	}
	if err := e.Layout.Validate(); err != nil {
		return fmt.Errorf("program %s: %w", p.Name, err)
	}
	if len(e.Layout.Discriminator) != p.DiscWidth {
		return fmt.Errorf("program %s: %s discriminator is %d bytes, program uses %d",
			p.Name, e.Name, len(e.Layout.Discriminator), p.DiscWidth)
	}
	if (e.Select == nil) != (len(e.Variants) == 0) {
		return fmt.Errorf("program %s: %s variants and select must be set together", p.Name, e.Name)
	}
	layouts := append([]*codec.Layout{e.Layout}, e.Variants...)
	for _, l := range e.Variants {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("program %s: %w", p.Name, err)
		}
		if !bytes.Equal(l.Discriminator, e.Layout.Discriminator) {
			return fmt.Errorf("program %s: %s variant %s has a different discriminator", p.Name, e.Name, l.Name)
		}
	}
	for _, l := range layouts {
		for _, f := range l.Fields {
			if f.Scale == "" {
				continue
			}
			if _, ok := e.Mints[f.Scale]; !ok {
				return fmt.Errorf("program %s: %s field %s scale %q has no mint source", p.Name, e.Name, f.Name, f.Scale)
			}
		}
	}
	for key, src := range e.Mints {
		switch src.kind {
		case mintAccount, tokenAccountMint:
			if src.index < 0 || src.index >= len(e.Roles) {
				return fmt.Errorf("program %s: %s mint source %s=%s outside %d roles",
					p.Name, e.Name, key, src, len(e.Roles))
			}
		case staticMint:
		default:
			return fmt.Errorf("program %s: %s mint source %s is invalid", p.Name, e.Name, key)
		}
	}
	return nil
}

func opcodeOf(disc []byte) uint64 {
	if len(disc) == 1 {
		return uint64(disc[0])
	}
	return binary.BigEndian.Uint64(disc[:8])
}

func formatOpcode(op uint64, width int) string {
	if width == 1 {
		return fmt.Sprintf("%d", op)
	}
	return fmt.Sprintf("0x%016x", op)
}

// Lookup 根据 data 头部的 discriminator 查找条目
func (t *Table) Lookup(program types.Pubkey, data []byte) (*Entry, uint64, error) {
	pt, ok := t.programs[program]
	if !ok {
		return nil, 0, fmt.Errorf("program %s not registered", program)
	}
	if len(data) < pt.width {
		return nil, 0, fmt.Errorf("%s: data shorter than %d-byte discriminator", pt.name, pt.width)
	}
	op := opcodeOf(data[:pt.width])
	e, ok := pt.entries[op]
	if !ok {
		return nil, op, fmt.Errorf("%s: opcode %s not registered", pt.name, formatOpcode(op, pt.width))
	}
	return e, op, nil
}

// ProgramName 返回 program 的展示名，未注册时返回空串
func (t *Table) ProgramName(program types.Pubkey) string {
	if pt, ok := t.programs[program]; ok {
		return pt.name
	}
	return ""
}

// Each 遍历所有条目（只读）
func (t *Table) Each(fn func(program types.Pubkey, e *Entry)) {
	for id, pt := range t.programs {
		for _, e := range pt.entries {
			fn(id, e)
		}
	}
}
