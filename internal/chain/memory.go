package chain

import (
	"context"
	"fmt"
	"sync"

	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/types"
)

// MemoryReader 进程内 Reader，用于测试与离线构建；记录每个地址的读取次数
type MemoryReader struct {
	mu       sync.Mutex
	accounts map[types.Pubkey]*AccountInfo
	failures map[types.Pubkey]error
	calls    map[types.Pubkey]int
	total    int
}

func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		accounts: make(map[types.Pubkey]*AccountInfo),
		failures: make(map[types.Pubkey]error),
		calls:    make(map[types.Pubkey]int),
	}
}

func (m *MemoryReader) Put(addr types.Pubkey, info *AccountInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[addr] = info
}

// PutMint 写入一个 SPL Mint
func (m *MemoryReader) PutMint(addr types.Pubkey, decimals uint8, supply uint64) {
	m.PutMintOf(consts.TokenProgram, addr, decimals, supply)
}

// PutMintOf 写入一个归属指定 token 程序的 Mint
func (m *MemoryReader) PutMintOf(program, addr types.Pubkey, decimals uint8, supply uint64) {
	m.Put(addr, &AccountInfo{
		Owner:    program,
		Lamports: 1_461_600,
		Data:     EncodeMint(decimals, supply),
	})
}

// PutTokenAccount 写入一个 SPL Token Account
func (m *MemoryReader) PutTokenAccount(addr, mint, owner types.Pubkey, amount uint64) {
	m.PutTokenAccountOf(consts.TokenProgram, addr, mint, owner, amount)
}

func (m *MemoryReader) PutTokenAccountOf(program, addr, mint, owner types.Pubkey, amount uint64) {
	m.Put(addr, &AccountInfo{
		Owner:    program,
		Lamports: 2_039_280,
		Data:     EncodeTokenAccount(mint, owner, amount),
	})
}

// Fail 让某个地址的读取返回指定错误
func (m *MemoryReader) Fail(addr types.Pubkey, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[addr] = err
}

func (m *MemoryReader) GetAccountInfo(ctx context.Context, addr types.Pubkey) (*AccountInfo, error) {
	m.mu.Lock()
	m.calls[addr]++
	m.total++
	info, ok := m.accounts[addr]
	failure := m.failures[addr]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	cp := *info
	cp.Data = append([]byte(nil), info.Data...)
	return &cp, nil
}

// Calls 总读取次数
func (m *MemoryReader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// CallsFor 某个地址的读取次数
func (m *MemoryReader) CallsFor(addr types.Pubkey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[addr]
}

// Reset 清空计数（保留账户数据）
func (m *MemoryReader) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[types.Pubkey]int)
	m.total = 0
}
