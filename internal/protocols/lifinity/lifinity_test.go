package lifinity

import (
	"context"
	"errors"
	"testing"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) types.Pubkey {
	var p types.Pubkey
	p[0] = b
	p[31] = 0x11
	return p
}

var (
	authority = types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	testPool  = catalog.LifinityPool{
		Amm:            key(1),
		Authority:      key(2),
		PoolMint:       key(3),
		TokenA:         key(4),
		TokenB:         key(5),
		MintA:          key(6),
		MintB:          key(7),
		FeeAccount:     key(8),
		ConfigAccount:  key(9),
		NftAccount:     key(10),
		NftMetaAccount: key(11),
	}
)

// 1000 A（9 位）/ 20000 B（6 位），LP 供应 1000（6 位）
func setup(t *testing.T) (*chain.MemoryReader, *builder.Set, *registry.Registry) {
	t.Helper()
	r := chain.NewMemoryReader()
	r.PutMint(testPool.MintA, 9, 0)
	r.PutMint(testPool.MintB, 6, 0)
	r.PutMint(testPool.PoolMint, 6, 1_000_000_000)
	r.PutTokenAccount(testPool.TokenA, testPool.MintA, testPool.Authority, 1_000_000_000_000)
	r.PutTokenAccount(testPool.TokenB, testPool.MintB, testPool.Authority, 20_000_000_000)

	cat := catalog.New()
	cat.LifinityPools["SOL-USDC"] = testPool
	set, err := builder.NewSet(&builder.Deps{Reader: r, Catalog: cat}, Actions()...)
	require.NoError(t, err)
	return r, set, registry.New(registry.MustTable(Program(cat)), r)
}

func TestDeposit(t *testing.T) {
	_, set, reg := setup(t)

	res, err := set.Build(context.Background(), "lifinity.deposit", map[string]any{
		"pool": "SOL-USDC", "amountA": "1", "slippage": 1,
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)
	require.Len(t, res.Prerequisites, 1) // LP ATA 不存在

	values, err := codec.Decode(DepositLayout, res.Instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), values["poolTokenAmount"].Uint64())
	assert.Equal(t, uint64(1_010_000_000), values["maximumTokenAAmount"].Uint64())
	assert.Equal(t, uint64(20_200_000), values["maximumTokenBAmount"].Uint64())
	require.Len(t, res.Instruction.Accounts, len(depositRoles))

	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Liquidity Pool", Value: "SOL-USDC"},
		{Label: "Amount of Token A to deposit", Value: "1.01"},
		{Label: "Max Amount of Token B to deposit", Value: "20.2"},
		{Label: "LP Token to be minted", Value: "1"},
	}, lines)
}

func TestWithdraw(t *testing.T) {
	_, set, reg := setup(t)

	res, err := set.Build(context.Background(), "lifinity.withdraw", map[string]any{
		"pool": "SOL-USDC", "lpAmount": "1", "slippage": 1,
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)
	assert.Len(t, res.Prerequisites, 2)

	values, err := codec.Decode(WithdrawLayout, res.Instruction.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(990_000_000), values["minimumTokenAAmount"].Uint64())
	assert.Equal(t, uint64(19_800_000), values["minimumTokenBAmount"].Uint64())

	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	assert.Equal(t, "0.99", lines[2].Value)
}

func TestRejects(t *testing.T) {
	r, set, _ := setup(t)
	env := &builder.Env{Authority: authority}

	r.Reset()
	_, err := set.Build(context.Background(), "lifinity.deposit", map[string]any{
		"pool": "SOL-USDC", "amountA": "1", "slippage": 150,
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
	assert.Equal(t, 0, r.Calls())

	_, err = set.Build(context.Background(), "lifinity.deposit", map[string]any{
		"pool": "NOPE", "amountA": "1", "slippage": 1,
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	_, err = set.Build(context.Background(), "lifinity.withdraw", map[string]any{
		"pool": "SOL-USDC", "lpAmount": "1001", "slippage": 1,
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	r.Fail(testPool.TokenB, errors.New("timeout"))
	_, err = set.Build(context.Background(), "lifinity.deposit", map[string]any{
		"pool": "SOL-USDC", "amountA": "1", "slippage": 1,
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyLookupFailed))
}

func TestRenderUnknownPoolFallsBackToMint(t *testing.T) {
	r, set, _ := setup(t)
	res, err := set.Build(context.Background(), "lifinity.deposit", map[string]any{
		"pool": "SOL-USDC", "amountA": "1", "slippage": 0,
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)

	reg := registry.New(registry.MustTable(Program(nil)), r)
	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	assert.Equal(t, testPool.PoolMint.String(), lines[0].Value)
}
