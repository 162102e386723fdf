package uxd

import (
	"context"
	"errors"
	"testing"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	program   = types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")
	authority = types.PubkeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
)

type fixture struct {
	reader     *chain.MemoryReader
	set        *builder.Set
	reg        *registry.Registry
	controller types.Pubkey
}

func setup(t *testing.T) *fixture {
	t.Helper()
	cat := catalog.New()
	ctrl := catalog.UXDController{Program: program, RedeemableMint: consts.UXDMint, QuoteMint: consts.USDCMint}
	cat.UXDControllers["UXD"] = ctrl

	r := chain.NewMemoryReader()
	r.PutMint(consts.UXDMint, 6, 0)
	r.PutMint(consts.USDCMint, 6, 0)
	controller, err := ControllerAddress(program)
	require.NoError(t, err)
	r.Put(controller, &chain.AccountInfo{Owner: program, Data: make([]byte, 64)})

	set, err := builder.NewSet(&builder.Deps{Reader: r, Catalog: cat}, Actions()...)
	require.NoError(t, err)
	return &fixture{
		reader:     r,
		set:        set,
		reg:        registry.New(registry.MustTable(Program(ctrl)), r),
		controller: controller,
	}
}

func (fx *fixture) build(t *testing.T, form map[string]any) (*builder.Result, error) {
	t.Helper()
	return fx.set.Build(context.Background(), "uxd.edit-controller", form, &builder.Env{Authority: authority})
}

func TestEditControllerLayouts(t *testing.T) {
	for _, l := range editControllerLayouts {
		require.NoError(t, l.Validate(), l.Name)
	}
	assert.Equal(t, 8+3, editControllerLayouts[0].Size)
	assert.Equal(t, 8+3+8+8+16, editControllerLayouts[7].Size)
	assert.Equal(t, 8+3+16, editControllerLayouts[4].Size)
}

func TestEditControllerRoundTrip(t *testing.T) {
	fx := setup(t)

	res, err := fx.build(t, map[string]any{"controller": "UXD", "redeemableGlobalSupplyCap": "25000000"})
	require.NoError(t, err)
	ix := res.Instruction
	assert.Equal(t, program, ix.ProgramID)
	require.Len(t, ix.Accounts, len(editControllerRoles))
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.Equal(t, fx.controller, ix.Accounts[1].Pubkey)
	assert.True(t, ix.Accounts[1].IsWritable)

	// 只有第三个 Option 为 Some
	require.Len(t, ix.Data, 8+3+16)
	assert.Equal(t, []byte{0, 0, 1}, ix.Data[8:11])
	values, err := codec.Decode(editControllerLayouts[4], ix.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(25_000_000_000_000), values["redeemableGlobalSupplyCap"].Uint64())

	lines, err := fx.reg.Render(context.Background(), ix.ProgramID, ix.Data, ix.Keys())
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Controller", Value: fx.controller.String()},
		{Label: "Quote Mint And Redeem Soft Cap", Value: "unchanged"},
		{Label: "Redeemable Soft Cap", Value: "unchanged"},
		{Label: "Redeemable Global Supply Cap", Value: "25000000"},
	}, lines)
}

func TestEditControllerAllCaps(t *testing.T) {
	fx := setup(t)

	res, err := fx.build(t, map[string]any{
		"controller":                "UXD",
		"quoteMintAndRedeemSoftCap": "1000.5",
		"redeemableSoftCap":         "2000",
		"redeemableGlobalSupplyCap": "3000000",
	})
	require.NoError(t, err)
	ix := res.Instruction
	require.Len(t, ix.Data, editControllerLayouts[7].Size)

	lines, err := fx.reg.Render(context.Background(), ix.ProgramID, ix.Data, ix.Keys())
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Controller", Value: fx.controller.String()},
		{Label: "Quote Mint And Redeem Soft Cap", Value: "1000.5"},
		{Label: "Redeemable Soft Cap", Value: "2000"},
		{Label: "Redeemable Global Supply Cap", Value: "3000000"},
	}, lines)
}

func TestEditControllerRejects(t *testing.T) {
	fx := setup(t)

	_, err := fx.build(t, map[string]any{"controller": "UXD"})
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = fx.build(t, map[string]any{"controller": "nope", "redeemableSoftCap": "1"})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	_, err = fx.build(t, map[string]any{"controller": "UXD", "redeemableSoftCap": "-1"})
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	fx.reader.Fail(fx.controller, chain.ErrAccountNotFound)
	_, err = fx.build(t, map[string]any{"controller": "UXD", "redeemableSoftCap": "1"})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	fx.reader.Fail(fx.controller, errors.New("rpc down"))
	_, err = fx.build(t, map[string]any{"controller": "UXD", "redeemableSoftCap": "1"})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyLookupFailed))
}

func TestSelectRejectsMalformedTags(t *testing.T) {
	base := codec.Disc8(EditController)

	mask, err := selectEditController(append(append([]byte{}, base...), 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, mask)

	_, err = selectEditController(append(append([]byte{}, base...), 2, 0, 0))
	assert.True(t, errors.Is(err, ixerr.ErrMalformedInstructionData))

	_, err = selectEditController(append(append([]byte{}, base...), 1, 0))
	assert.True(t, errors.Is(err, ixerr.ErrMalformedInstructionData))

	// tag 合法但值被截断
	fx := setup(t)
	data := append(append([]byte{}, base...), 0, 1, 1, 2, 3, 0)
	_, err = fx.reg.Render(context.Background(), program, data, []types.Pubkey{authority, fx.controller})
	assert.True(t, errors.Is(err, ixerr.ErrMalformedInstructionData))
}
