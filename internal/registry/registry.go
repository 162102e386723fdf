package registry

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime/debug"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/types"
)

// UnknownInstructionError 未注册的指令，携带原始数据供界面展示
type UnknownInstructionError struct {
	Program  types.Pubkey
	Data     []byte
	Accounts []types.Pubkey
	Reason   string
}

func (e *UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown instruction: program=%s, %s, data=%s",
		e.Program, e.Reason, hex.EncodeToString(e.Data))
}

func (e *UnknownInstructionError) Unwrap() error {
	return ixerr.ErrUnknownInstruction
}

// Dump 原始字节与账户列表，未知指令默认展示这些内容而不是空白
func (e *UnknownInstructionError) Dump() []DisplayLine {
	lines := make([]DisplayLine, 0, 2+len(e.Accounts))
	lines = append(lines, Line("Program", e.Program.String()))
	lines = append(lines, Line("Data", hex.EncodeToString(e.Data)))
	for i, a := range e.Accounts {
		lines = append(lines, Line(fmt.Sprintf("Account #%d", i), a.String()))
	}
	return lines
}

// DecodedInstruction 解码结果（原始值，不做缩放）
type DecodedInstruction struct {
	ProgramID types.Pubkey
	Opcode    uint64
	Name      string
	Layout    *codec.Layout
	Fields    codec.Values
	Accounts  []RoleAccount
}

// Registry 指令查表 + 解码 + 渲染。无内部状态，可并发调用
type Registry struct {
	table  *Table
	reader chain.Reader
}

func New(table *Table, reader chain.Reader) *Registry {
	return &Registry{table: table, reader: reader}
}

func (r *Registry) Table() *Table {
	return r.table
}

// Decode 查表、解码字段、按位置映射角色
func (r *Registry) Decode(program types.Pubkey, data []byte, accounts []types.Pubkey) (*DecodedInstruction, *Entry, error) {
	e, op, err := r.table.Lookup(program, data)
	if err != nil {
		logger.Warnf("[Registry:Decode] 未知指令: program=%s, reason=%v, accounts=%d", program, err, len(accounts))
		return nil, nil, &UnknownInstructionError{
			Program:  program,
			Data:     append([]byte(nil), data...),
			Accounts: append([]types.Pubkey(nil), accounts...),
			Reason:   err.Error(),
		}
	}

	layout, err := e.layoutFor(data)
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] %w", e.Name, err)
	}
	fields, err := codec.Decode(layout, data)
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] %w", e.Name, err)
	}

	if len(accounts) < len(e.Roles) {
		return nil, nil, fmt.Errorf("%w: %s got=%d, expect>=%d",
			ixerr.ErrAccountListTooShort, e.Name, len(accounts), len(e.Roles))
	}

	// 角色 i 对应账户 i；多出的账户（remaining accounts）不参与映射
	roles := make([]RoleAccount, len(e.Roles))
	for i, role := range e.Roles {
		roles[i] = RoleAccount{Role: role, Pubkey: accounts[i]}
	}

	return &DecodedInstruction{
		ProgramID: program,
		Opcode:    op,
		Name:      e.Name,
		Layout:    layout,
		Fields:    fields,
		Accounts:  roles,
	}, e, nil
}

// Render 解码并渲染为人类可读的行。需要 decimals 的字段会先查询 mint，
// 查询失败时整体失败，不使用默认精度
func (r *Registry) Render(ctx context.Context, program types.Pubkey, data []byte, accounts []types.Pubkey) ([]DisplayLine, error) {
	decoded, e, err := r.Decode(program, data, accounts)
	if err != nil {
		return nil, err
	}

	mints, decimals, err := r.resolveDecimals(ctx, e, accounts)
	if err != nil {
		logger.Errorf("[Registry:Render] %s 依赖查询失败: program=%s, err=%v", e.Name, program, err)
		return nil, fmt.Errorf("%w: %s: %v", ixerr.ErrDependencyLookupFailed, e.Name, err)
	}

	in := &RenderInput{
		Program:  program,
		Name:     e.Name,
		Layout:   decoded.Layout,
		Data:     data,
		Fields:   decoded.Fields,
		Accounts: decoded.Accounts,
		Mints:    mints,
		Decimals: decimals,
	}
	lines, err := safeRender(e, in)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []DisplayLine{}
	}
	return lines, nil
}

func safeRender(e *Entry, in *RenderInput) (lines []DisplayLine, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("[Registry:Render][panic] %s: %v\nstack: %s", e.Name, rec, debug.Stack())
			lines = nil
			err = fmt.Errorf("render %s panicked: %v", e.Name, rec)
		}
	}()
	return e.Render(in)
}

// resolveDecimals 两阶段并发查询：先 token account -> mint，再 mint -> decimals。
// 同一次渲染内每个地址只读取一次
func (r *Registry) resolveDecimals(
	ctx context.Context,
	e *Entry,
	accounts []types.Pubkey,
) (map[string]types.Pubkey, map[string]uint8, error) {
	if len(e.Mints) == 0 {
		return map[string]types.Pubkey{}, map[string]uint8{}, nil
	}
	if r.reader == nil {
		return nil, nil, errors.New("no chain reader configured")
	}

	var tokenAccounts []types.Pubkey
	for _, src := range e.Mints {
		if src.kind == tokenAccountMint {
			tokenAccounts = append(tokenAccounts, accounts[src.index])
		}
	}
	accountMints, err := chain.ResolveTokenMints(ctx, r.reader, tokenAccounts)
	if err != nil {
		return nil, nil, err
	}

	keyMint := make(map[string]types.Pubkey, len(e.Mints))
	mintList := make([]types.Pubkey, 0, len(e.Mints))
	for key, src := range e.Mints {
		var m types.Pubkey
		switch src.kind {
		case mintAccount:
			m = accounts[src.index]
		case tokenAccountMint:
			m = accountMints[accounts[src.index]]
		case staticMint:
			m = src.mint
		}
		keyMint[key] = m
		mintList = append(mintList, m)
	}

	infos, err := chain.ResolveMints(ctx, r.reader, mintList)
	if err != nil {
		return nil, nil, err
	}

	decimals := make(map[string]uint8, len(keyMint))
	for key, m := range keyMint {
		decimals[key] = infos[m].Decimals
	}
	return keyMint, decimals, nil
}
