package spltoken

import (
	"context"
	"errors"
	"testing"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	authority = types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	receiver  = types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")
)

func setup(t *testing.T) (*chain.MemoryReader, *builder.Set, *registry.Registry) {
	t.Helper()
	r := chain.NewMemoryReader()
	r.PutMint(consts.USDCMint, 6, 1_000_000_000_000)
	source, err := pda.AssociatedTokenAddress(authority, consts.USDCMint)
	require.NoError(t, err)
	r.PutTokenAccount(source, consts.USDCMint, authority, 100_000_000)
	set, err := builder.NewSet(&builder.Deps{Reader: r, Catalog: catalog.New()}, Actions()...)
	require.NoError(t, err)
	reg := registry.New(registry.MustTable(Program(), Program2022()), r)
	return r, set, reg
}

func TestTransferCreatesMissingDestination(t *testing.T) {
	r, set, reg := setup(t)

	res, err := set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint":   consts.USDCMintStr,
		"to":     receiver.String(),
		"amount": "12.5",
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)
	require.Len(t, res.Prerequisites, 1)
	assert.Equal(t, consts.AssociatedTokenProgram, res.Prerequisites[0].ProgramID)

	ix := res.Instruction
	assert.Equal(t, []byte{12, 0x20, 0xbc, 0xbe, 0, 0, 0, 0, 0, 6}, ix.Data)

	source, _ := pda.AssociatedTokenAddress(authority, consts.USDCMint)
	dest, _ := pda.AssociatedTokenAddress(receiver, consts.USDCMint)
	assert.Equal(t, []types.Pubkey{source, consts.USDCMint, dest, authority}, ix.Keys())

	r.Reset()
	lines, err := reg.Render(context.Background(), ix.ProgramID, ix.Data, ix.Keys())
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Source", Value: source.String()},
		{Label: "Destination", Value: dest.String()},
		{Label: "Amount", Value: "12.5"},
	}, lines)
	assert.Equal(t, 1, r.Calls())
}

func TestTransferSkipsExistingDestination(t *testing.T) {
	r, set, _ := setup(t)
	dest, _ := pda.AssociatedTokenAddress(receiver, consts.USDCMint)
	r.PutTokenAccount(dest, consts.USDCMint, receiver, 0)

	res, err := set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint":   consts.USDCMintStr,
		"to":     receiver.String(),
		"amount": "1",
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)
	assert.Empty(t, res.Prerequisites)
}

func TestTransferRejects(t *testing.T) {
	r, set, _ := setup(t)
	env := &builder.Env{Authority: authority}

	_, err := set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(),
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(), "amount": "0.0000001",
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDTMintStr, "to": receiver.String(), "amount": "1",
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	r.Fail(consts.USDCMint, errors.New("rpc down"))
	_, err = set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(), "amount": "1",
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrDependencyLookupFailed))
}

func TestTransferChecksBalance(t *testing.T) {
	_, set, _ := setup(t)
	env := &builder.Env{Authority: authority}

	_, err := set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(), "amount": "100.000001",
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(), "amount": "100",
	}, env)
	require.NoError(t, err)

	// authority 没有该 mint 的 ATA
	_, err = set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": consts.USDCMintStr, "to": receiver.String(), "amount": "1",
	}, &builder.Env{Authority: receiver})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))
}

var pyusd = types.PubkeyFromBase58("2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo")

// Token-2022 mint：program id、ATA 种子与 ATA 创建都走 Token-2022
func TestToken2022Transfer(t *testing.T) {
	r, set, reg := setup(t)
	r.PutMintOf(consts.TokenProgram2022, pyusd, 6, 1_000_000_000)
	source, err := pda.AssociatedTokenAddressOf(authority, pyusd, consts.TokenProgram2022)
	require.NoError(t, err)
	r.PutTokenAccountOf(consts.TokenProgram2022, source, pyusd, authority, 5_000_000)

	res, err := set.Build(context.Background(), "spl-token.transfer", map[string]any{
		"mint": pyusd.String(), "to": receiver.String(), "amount": "2",
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)

	classic, _ := pda.AssociatedTokenAddress(authority, pyusd)
	assert.NotEqual(t, classic, source)

	dest, _ := pda.AssociatedTokenAddressOf(receiver, pyusd, consts.TokenProgram2022)
	ix := res.Instruction
	assert.Equal(t, consts.TokenProgram2022, ix.ProgramID)
	assert.Equal(t, []types.Pubkey{source, pyusd, dest, authority}, ix.Keys())

	require.Len(t, res.Prerequisites, 1)
	create := res.Prerequisites[0]
	assert.Equal(t, consts.AssociatedTokenProgram, create.ProgramID)
	assert.Equal(t, dest, create.Accounts[1].Pubkey)
	assert.Equal(t, consts.TokenProgram2022, create.Accounts[5].Pubkey)

	lines, err := reg.Render(context.Background(), ix.ProgramID, ix.Data, ix.Keys())
	require.NoError(t, err)
	assert.Equal(t, "2", lines[2].Value)
}

func TestToken2022Burn(t *testing.T) {
	r, set, _ := setup(t)
	r.PutMintOf(consts.TokenProgram2022, pyusd, 6, 1_000_000_000)
	account, _ := pda.AssociatedTokenAddressOf(authority, pyusd, consts.TokenProgram2022)
	r.PutTokenAccountOf(consts.TokenProgram2022, account, pyusd, authority, 1_000_000)

	res, err := set.Build(context.Background(), "spl-token.burn", map[string]any{
		"mint": pyusd.String(), "amount": "0.5",
	}, &builder.Env{Authority: authority})
	require.NoError(t, err)
	assert.Equal(t, consts.TokenProgram2022, res.Instruction.ProgramID)
	assert.Equal(t, []types.Pubkey{account, pyusd, authority}, res.Instruction.Keys())

	// 超出 Token-2022 账户余额
	_, err = set.Build(context.Background(), "spl-token.burn", map[string]any{
		"mint": pyusd.String(), "amount": "1.5",
	}, &builder.Env{Authority: authority})
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
}

func TestBurnChecksBalance(t *testing.T) {
	r, set, reg := setup(t)
	account, _ := pda.AssociatedTokenAddress(authority, consts.USDCMint)
	r.PutTokenAccount(account, consts.USDCMint, authority, 2_000_000)
	env := &builder.Env{Authority: authority}

	_, err := set.Build(context.Background(), "spl-token.burn", map[string]any{
		"mint": consts.USDCMintStr, "amount": "3",
	}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	res, err := set.Build(context.Background(), "spl-token.burn", map[string]any{
		"mint": consts.USDCMintStr, "amount": "1.25",
	}, env)
	require.NoError(t, err)

	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "1.25", lines[2].Value)
}

func TestRenderTransferUsesSourceMint(t *testing.T) {
	r, _, reg := setup(t)
	source := types.PubkeyFromBase58("7Vqn5fdwckZadYVoH312aErP8PqNGNUx8WDrvKAHYfMd")
	r.PutTokenAccount(source, consts.USDCMint, authority, 0)

	data := []byte{3, 0x10, 0x27, 0, 0, 0, 0, 0, 0} // 10000
	lines, err := reg.Render(context.Background(), consts.TokenProgram, data, []types.Pubkey{source, receiver, authority})
	require.NoError(t, err)
	assert.Equal(t, "0.01", lines[2].Value)

	// 同样的数据交给 Token-2022 也能识别
	_, err = reg.Render(context.Background(), consts.TokenProgram2022, data, []types.Pubkey{source, receiver, authority})
	require.NoError(t, err)
}
