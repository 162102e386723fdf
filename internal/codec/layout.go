package codec

import (
	"encoding/binary"
	"fmt"
	"sort"

	"gov-ix-sol/internal/ixerr"
)

// Width 字段宽度（字节数）
type Width uint8

const (
	U8   Width = 1
	U16  Width = 2
	U32  Width = 4
	U64  Width = 8
	U128 Width = 16
)

func (w Width) valid() bool {
	switch w {
	case U8, U16, U32, U64, U128:
		return true
	}
	return false
}

func (w Width) String() string {
	if !w.valid() {
		return fmt.Sprintf("width(%d)", uint8(w))
	}
	return fmt.Sprintf("u%d", int(w)*8)
}

// Field 定长数值字段。Scale 为空表示原样展示；非空时指向 registry 中声明的 mint 来源
type Field struct {
	Name   string
	Offset int
	Width  Width
	Scale  string
}

// Span 由调用方自行填充的字节区间（pubkey 参数、nonce、保留字节等）
type Span struct {
	Name   string
	Offset int
	Length int
}

// Layout 某个 (program, opcode) 的指令数据布局，包级变量构造一次，运行期只读
type Layout struct {
	Name          string
	Discriminator []byte
	Size          int
	Fields        []Field
	Spans         []Span
}

// Values 字段名 -> 原始整数值（base units，不做任何缩放）
type Values map[string]Uint128

type segment struct {
	name  string
	start int
	end   int
}

// Validate 检查 layout 自洽：
// 字段按 offset 严格递增、任意区间不重叠，且 disc + Σ字段宽度 + Σopaque == Size
func (l *Layout) Validate() error {
	if l.Size <= 0 {
		return fmt.Errorf("layout %s: size must be positive, got %d", l.Name, l.Size)
	}

	segs := make([]segment, 0, 1+len(l.Fields)+len(l.Spans))
	total := 0
	if n := len(l.Discriminator); n > 0 {
		segs = append(segs, segment{name: "discriminator", start: 0, end: n})
		total += n
	}

	names := make(map[string]struct{}, len(l.Fields)+len(l.Spans))
	prev := -1
	for _, f := range l.Fields {
		if f.Name == "" {
			return fmt.Errorf("layout %s: field at offset %d has no name", l.Name, f.Offset)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("layout %s: duplicate name %q", l.Name, f.Name)
		}
		names[f.Name] = struct{}{}
		if !f.Width.valid() {
			return fmt.Errorf("layout %s: field %s has unsupported %s", l.Name, f.Name, f.Width)
		}
		if f.Offset <= prev {
			return fmt.Errorf("layout %s: field %s offset %d not strictly increasing", l.Name, f.Name, f.Offset)
		}
		prev = f.Offset
		segs = append(segs, segment{name: f.Name, start: f.Offset, end: f.Offset + int(f.Width)})
		total += int(f.Width)
	}
	for _, s := range l.Spans {
		if s.Name == "" || s.Length <= 0 {
			return fmt.Errorf("layout %s: invalid opaque span at offset %d", l.Name, s.Offset)
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("layout %s: duplicate name %q", l.Name, s.Name)
		}
		names[s.Name] = struct{}{}
		segs = append(segs, segment{name: s.Name, start: s.Offset, end: s.Offset + s.Length})
		total += s.Length
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].start < segs[j].start })
	for i, s := range segs {
		if s.start < 0 || s.end > l.Size {
			return fmt.Errorf("layout %s: %s [%d,%d) outside size %d", l.Name, s.name, s.start, s.end, l.Size)
		}
		if i > 0 && s.start < segs[i-1].end {
			return fmt.Errorf("layout %s: %s overlaps %s", l.Name, s.name, segs[i-1].name)
		}
	}

	if total != l.Size {
		return fmt.Errorf("layout %s: declared widths sum to %d, size is %d", l.Name, total, l.Size)
	}
	return nil
}

// Field 按名称查找字段
func (l *Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (l *Layout) span(name string) (Span, bool) {
	for _, s := range l.Spans {
		if s.Name == name {
			return s, true
		}
	}
	return Span{}, false
}

// Decode 按 layout 读取所有字段（小端），返回原始值
func Decode(l *Layout, data []byte) (Values, error) {
	if len(data) != l.Size {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			ixerr.ErrMalformedInstructionData, l.Name, l.Size, len(data))
	}
	out := make(Values, len(l.Fields))
	for _, f := range l.Fields {
		b := data[f.Offset : f.Offset+int(f.Width)]
		var v Uint128
		switch f.Width {
		case U8:
			v.Lo = uint64(b[0])
		case U16:
			v.Lo = uint64(binary.LittleEndian.Uint16(b))
		case U32:
			v.Lo = uint64(binary.LittleEndian.Uint32(b))
		case U64:
			v.Lo = binary.LittleEndian.Uint64(b)
		case U128:
			// 低 64 位在前，高 64 位在后
			v.Lo = binary.LittleEndian.Uint64(b[:8])
			v.Hi = binary.LittleEndian.Uint64(b[8:])
		default:
			return nil, fmt.Errorf("%w: %s field %s has %s",
				ixerr.ErrMalformedInstructionData, l.Name, f.Name, f.Width)
		}
		out[f.Name] = v
	}
	return out, nil
}

// Encode 将字段值按 layout 写入新缓冲区。
// discriminator 与 opaque 区间保持为 0，由调用方填写（见 Prefix / PutOpaque）。
func Encode(l *Layout, values Values) ([]byte, error) {
	buf := make([]byte, l.Size)
	for _, f := range l.Fields {
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing value for field %s",
				ixerr.ErrInvalidParameter, l.Name, f.Name)
		}
		if !v.fits(f.Width) {
			return nil, fmt.Errorf("%w: %s field %s value %s does not fit %s",
				ixerr.ErrValueOutOfRange, l.Name, f.Name, v, f.Width)
		}
		b := buf[f.Offset : f.Offset+int(f.Width)]
		switch f.Width {
		case U8:
			b[0] = byte(v.Lo)
		case U16:
			binary.LittleEndian.PutUint16(b, uint16(v.Lo))
		case U32:
			binary.LittleEndian.PutUint32(b, uint32(v.Lo))
		case U64:
			binary.LittleEndian.PutUint64(b, v.Lo)
		case U128:
			binary.LittleEndian.PutUint64(b[:8], v.Lo)
			binary.LittleEndian.PutUint64(b[8:], v.Hi)
		}
	}
	return buf, nil
}

// Prefix 把声明的 discriminator 写到 buf 头部
func (l *Layout) Prefix(buf []byte) {
	copy(buf, l.Discriminator)
}

// PutOpaque 写入某个 opaque 区间，长度必须与声明一致
func (l *Layout) PutOpaque(buf []byte, name string, b []byte) error {
	s, ok := l.span(name)
	if !ok {
		return fmt.Errorf("%w: %s has no opaque span %s", ixerr.ErrInvalidParameter, l.Name, name)
	}
	if len(b) != s.Length {
		return fmt.Errorf("%w: %s span %s expects %d bytes, got %d",
			ixerr.ErrValueOutOfRange, l.Name, name, s.Length, len(b))
	}
	if len(buf) != l.Size {
		return fmt.Errorf("%w: %s buffer is %d bytes, want %d",
			ixerr.ErrMalformedInstructionData, l.Name, len(buf), l.Size)
	}
	copy(buf[s.Offset:], b)
	return nil
}

// Opaque 读取某个 opaque 区间（返回副本）
func (l *Layout) Opaque(data []byte, name string) ([]byte, error) {
	s, ok := l.span(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no opaque span %s", ixerr.ErrInvalidParameter, l.Name, name)
	}
	if len(data) != l.Size {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d",
			ixerr.ErrMalformedInstructionData, l.Name, l.Size, len(data))
	}
	out := make([]byte, s.Length)
	copy(out, data[s.Offset:s.Offset+s.Length])
	return out, nil
}

// Build 完整组装一条指令数据：discriminator + 字段 + opaque
func (l *Layout) Build(values Values, opaque map[string][]byte) ([]byte, error) {
	buf, err := Encode(l, values)
	if err != nil {
		return nil, err
	}
	l.Prefix(buf)
	for _, s := range l.Spans {
		b, ok := opaque[s.Name]
		if !ok {
			continue // 未提供的区间保持为 0（保留字节）
		}
		if err := l.PutOpaque(buf, s.Name, b); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// Disc8 将大端 uint64 常量展开为 8 字节 Anchor discriminator
func Disc8(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Disc1 单字节 opcode
func Disc1(op uint8) []byte {
	return []byte{op}
}
