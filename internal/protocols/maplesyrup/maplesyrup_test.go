package maplesyrup

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var user = types.PubkeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")

type fixture struct {
	reader *chain.MemoryReader
	set    *builder.Set
	reg    *registry.Registry
	pool   *catalog.MaplePool
	env    *builder.Env
}

// USDC 池子：用户持有 500 USDC 与 20 shares
func setup(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Load("")
	require.NoError(t, err)
	pool, err := cat.MaplePool("CashManagement")
	require.NoError(t, err)

	r := chain.NewMemoryReader()
	r.PutMint(pool.BaseMint, 6, 0)
	r.PutMint(pool.SharesMint, 6, 0)
	r.PutTokenAccount(pool.PoolLocker, pool.BaseMint, pool.Pool, 1_000_000_000_000)
	usdc, err := pda.AssociatedTokenAddress(user, pool.BaseMint)
	require.NoError(t, err)
	r.PutTokenAccount(usdc, pool.BaseMint, user, 500_000_000)
	shares, err := pda.AssociatedTokenAddress(user, pool.SharesMint)
	require.NoError(t, err)
	r.PutTokenAccount(shares, pool.SharesMint, user, 20_000_000)

	set, err := builder.NewSet(&builder.Deps{Reader: r, Catalog: cat}, Actions()...)
	require.NoError(t, err)
	return &fixture{
		reader: r,
		set:    set,
		reg:    registry.New(registry.MustTable(Program(cat)), r),
		pool:   pool,
		env:    &builder.Env{Authority: user},
	}
}

func (fx *fixture) render(t *testing.T, ix builder.Instruction) []registry.DisplayLine {
	t.Helper()
	lines, err := fx.reg.Render(context.Background(), ix.ProgramID, ix.Data, ix.Keys())
	require.NoError(t, err)
	return lines
}

func TestLenderDepositInitializesLender(t *testing.T) {
	fx := setup(t)

	res, err := fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "CashManagement", "amount": "100",
	}, fx.env)
	require.NoError(t, err)
	require.Len(t, res.Prerequisites, 1)
	first := res.Prerequisites[0]
	assert.Equal(t, codec.Disc8(LenderInitialize), first.Data)
	require.Len(t, first.Accounts, len(lenderInitializeRoles))

	lender, err := LenderAddress(fx.pool.Pool, user)
	require.NoError(t, err)
	assert.Equal(t, lender.Address, first.Accounts[4].Pubkey)
	assert.Equal(t, lender.Address, res.Instruction.Accounts[0].Pubkey)
	require.Len(t, res.Instruction.Accounts, len(lenderDepositRoles))

	values, err := codec.Decode(LenderDepositLayout, res.Instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), values["depositAmount"].Uint64())

	assert.Equal(t, []registry.DisplayLine{
		{Label: "Pool", Value: "CashManagement"},
		{Label: "Ui amount to deposit", Value: "100"},
	}, fx.render(t, res.Instruction))
}

func TestLenderDepositExistingLender(t *testing.T) {
	fx := setup(t)
	lender, err := LenderAddress(fx.pool.Pool, user)
	require.NoError(t, err)
	fx.reader.Put(lender.Address, &chain.AccountInfo{Owner: consts.MapleSyrupProgram, Data: make([]byte, 64)})

	res, err := fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "CashManagement", "amount": "0.5",
	}, fx.env)
	require.NoError(t, err)
	assert.Empty(t, res.Prerequisites)

	_, err = fx.set.Build(context.Background(), "maple.lender-initialize", map[string]any{
		"pool": "CashManagement",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
}

func TestLenderDepositRejects(t *testing.T) {
	fx := setup(t)

	_, err := fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "CashManagement", "amount": "501",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "Unknown", "amount": "1",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	fx.reader.Fail(fx.pool.BaseMint, errors.New("rpc down"))
	_, err = fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "CashManagement", "amount": "1",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyLookupFailed))
}

func TestWithdrawalRequestLifecycle(t *testing.T) {
	fx := setup(t)

	res, err := fx.set.Build(context.Background(), "maple.withdrawal-request-initialize", map[string]any{
		"pool": "CashManagement", "shares": "12.5", "nonce": "0102030405060708",
	}, fx.env)
	require.NoError(t, err)
	require.Len(t, res.Instruction.Accounts, len(withdrawalRequestInitializeRoles))

	nonce, err := WithdrawalRequestInitializeLayout.Opaque(res.Instruction.Data, "nonce")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, nonce)

	lender, err := LenderAddress(fx.pool.Pool, user)
	require.NoError(t, err)
	request, err := WithdrawalRequestAddress(lender.Address, [8]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, request.Address, res.Instruction.Accounts[6].Pubkey)

	assert.Equal(t, []registry.DisplayLine{
		{Label: "Pool", Value: "CashManagement"},
		{Label: "Shares amount to withdraw", Value: "12.5"},
		{Label: "Nonce", Value: "0102030405060708"},
	}, fx.render(t, res.Instruction))

	// 请求账户尚未上链
	_, err = fx.set.Build(context.Background(), "maple.withdrawal-request-execute", map[string]any{
		"pool": "CashManagement", "nonce": "0102030405060708",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	fx.reader.Put(request.Address, &chain.AccountInfo{Owner: consts.MapleSyrupProgram, Data: make([]byte, 96)})
	exec, err := fx.set.Build(context.Background(), "maple.withdrawal-request-execute", map[string]any{
		"pool": "CashManagement", "nonce": "0x0102030405060708",
	}, fx.env)
	require.NoError(t, err)
	require.Len(t, exec.Instruction.Accounts, len(withdrawalRequestExecuteRoles))
	assert.Equal(t, request.Address, exec.Instruction.Accounts[0].Pubkey)
	assert.Equal(t, []registry.DisplayLine{}, fx.render(t, exec.Instruction))
}

func TestWithdrawalRequestRandomNonce(t *testing.T) {
	fx := setup(t)
	a, err := fx.set.Build(context.Background(), "maple.withdrawal-request-initialize", map[string]any{
		"pool": "CashManagement", "shares": "1",
	}, fx.env)
	require.NoError(t, err)
	b, err := fx.set.Build(context.Background(), "maple.withdrawal-request-initialize", map[string]any{
		"pool": "CashManagement", "shares": "1",
	}, fx.env)
	require.NoError(t, err)
	assert.NotEqual(t, a.Instruction.Accounts[6].Pubkey, b.Instruction.Accounts[6].Pubkey)

	_, err = fx.set.Build(context.Background(), "maple.withdrawal-request-initialize", map[string]any{
		"pool": "CashManagement", "shares": "21",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = fx.set.Build(context.Background(), "maple.withdrawal-request-execute", map[string]any{
		"pool": "CashManagement", "nonce": hex.EncodeToString([]byte{1, 2, 3}),
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
}

func TestUnlockRequiresLender(t *testing.T) {
	fx := setup(t)
	_, err := fx.set.Build(context.Background(), "maple.lender-unlock-deposit", map[string]any{
		"pool": "CashManagement",
	}, fx.env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	lender, err := LenderAddress(fx.pool.Pool, user)
	require.NoError(t, err)
	fx.reader.Put(lender.Address, &chain.AccountInfo{Owner: consts.MapleSyrupProgram, Data: make([]byte, 64)})
	res, err := fx.set.Build(context.Background(), "maple.lender-unlock-deposit", map[string]any{
		"pool": "CashManagement",
	}, fx.env)
	require.NoError(t, err)
	assert.Equal(t, codec.Disc8(LenderUnlockDeposit), res.Instruction.Data)
	assert.Len(t, res.Instruction.Accounts, len(lenderUnlockDepositRoles))
}

func TestPoolLabelPositional(t *testing.T) {
	for _, roles := range [][]string{lenderDepositRoles, withdrawalRequestInitializeRoles, lenderUnlockDepositRoles} {
		assert.Equal(t, "Pool", roles[poolAccount])
	}

	fx := setup(t)
	res, err := fx.set.Build(context.Background(), "maple.lender-deposit", map[string]any{
		"pool": "CashManagement", "amount": "1",
	}, fx.env)
	require.NoError(t, err)

	// 目录外的 pool 按地址展示
	keys := res.Instruction.Keys()
	keys[poolAccount] = user
	lines, err := fx.reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, keys)
	require.NoError(t, err)
	assert.Equal(t, registry.DisplayLine{Label: "Pool", Value: user.String()}, lines[0])
}
