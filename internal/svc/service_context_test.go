package svc

import (
	"context"
	"testing"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/config"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	authority = types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	receiver  = types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")
)

func newTestContext(t *testing.T) (*ServiceContext, *chain.MemoryReader) {
	t.Helper()
	r := chain.NewMemoryReader()
	r.PutMint(consts.USDCMint, 6, 1_000_000_000_000)
	source, err := pda.AssociatedTokenAddress(authority, consts.USDCMint)
	require.NoError(t, err)
	r.PutTokenAccount(source, consts.USDCMint, authority, 100_000_000)
	sc, err := NewServiceContext(config.Config{}, r)
	require.NoError(t, err)
	t.Cleanup(sc.Close)
	return sc, r
}

func TestBuildAndPreview(t *testing.T) {
	sc, _ := newTestContext(t)
	ctx := context.Background()
	env := &builder.Env{Authority: authority}

	res, err := sc.BuildInstruction(ctx, "spl-token.transfer", map[string]any{
		"mint":   consts.USDCMintStr,
		"to":     receiver.String(),
		"amount": "3",
	}, env)
	require.NoError(t, err)

	rendered, err := sc.Preview(ctx, res)
	require.NoError(t, err)
	require.Len(t, rendered, 2)
	assert.Equal(t, consts.AssociatedTokenProgram, rendered[0].Instruction.ProgramID)
	assert.Equal(t, "SplToken", rendered[1].Program)
	assert.Equal(t, "Amount", rendered[1].Lines[2].Label)
	assert.Equal(t, "3", rendered[1].Lines[2].Value)
}

func TestRenderUnknownProgram(t *testing.T) {
	sc, _ := newTestContext(t)
	_, err := sc.RenderInstruction(context.Background(), receiver, []byte{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ixerr.ErrUnknownInstruction)

	// Preview 对未注册 program 退化为原始展示
	rendered, err := sc.Preview(context.Background(), &builder.Result{
		Instruction: builder.Instruction{ProgramID: receiver, Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	require.Len(t, rendered, 1)
	assert.Equal(t, "Data", rendered[0].Lines[1].Label)
	assert.Equal(t, "010203", rendered[0].Lines[1].Value)
}

func TestPublishDisabled(t *testing.T) {
	sc, _ := newTestContext(t)
	assert.Nil(t, sc.Publisher)
	_, err := sc.Publish(context.Background(), "req", "spl-token.transfer", &builder.Env{Authority: authority}, &builder.Result{})
	assert.ErrorIs(t, err, ErrHandoffDisabled)
}

func TestBuildFailsClosedOnLookupError(t *testing.T) {
	sc, r := newTestContext(t)
	r.Fail(consts.USDCMint, assert.AnError)
	_, err := sc.BuildInstruction(context.Background(), "spl-token.transfer", map[string]any{
		"mint":   consts.USDCMintStr,
		"to":     receiver.String(),
		"amount": "3",
	}, &builder.Env{Authority: authority})
	assert.ErrorIs(t, err, ixerr.ErrDependencyLookupFailed)
}
