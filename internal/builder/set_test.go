package builder

import (
	"context"
	"errors"
	"testing"

	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoForm struct {
	Target   types.Pubkey `form:"target"`
	Amount   string       `form:"amount"`
	Slippage float64      `form:"slippage"`
}

func echoAction() Action {
	return NewAction("test.echo", "echo", func(_ context.Context, _ *Deps, env *Env, f *echoForm) (*Result, error) {
		return &Result{Instruction: Instruction{
			ProgramID: f.Target,
			Accounts:  []AccountMeta{Signer(env.Authority), Writable(env.Payer)},
			Data:      []byte(f.Amount),
		}}, nil
	})
}

func testSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet(&Deps{Reader: chain.NewMemoryReader(), Catalog: catalog.New()}, echoAction())
	require.NoError(t, err)
	return s
}

func TestBuildDecodesFormAndDefaultsPayer(t *testing.T) {
	s := testSet(t)
	authority := types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")

	res, err := s.Build(context.Background(), "test.echo", map[string]any{
		"target":   "7Vqn5fdwckZadYVoH312aErP8PqNGNUx8WDrvKAHYfMd",
		"amount":   12.5,
		"slippage": "0.5",
	}, &Env{Authority: authority})
	require.NoError(t, err)

	assert.Equal(t, "7Vqn5fdwckZadYVoH312aErP8PqNGNUx8WDrvKAHYfMd", res.Instruction.ProgramID.String())
	assert.Equal(t, []byte("12.5"), res.Instruction.Data)
	assert.Equal(t, []types.Pubkey{authority, authority}, res.Instruction.Keys())
	assert.True(t, res.Instruction.Accounts[0].IsSigner)
	assert.True(t, res.Instruction.Accounts[1].IsWritable)
}

func TestBuildRejects(t *testing.T) {
	s := testSet(t)
	env := &Env{Authority: types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")}

	_, err := s.Build(context.Background(), "nope", nil, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = s.Build(context.Background(), "test.echo", map[string]any{"target": "bad key"}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = s.Build(context.Background(), "test.echo", map[string]any{"unexpected": 1}, env)
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))

	_, err = s.Build(context.Background(), "test.echo", map[string]any{}, &Env{})
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
}

func TestDuplicateAction(t *testing.T) {
	_, err := NewSet(&Deps{}, echoAction(), echoAction())
	assert.Error(t, err)
}

func TestSDKConversion(t *testing.T) {
	ix := Instruction{
		ProgramID: types.PubkeyFromBase58("7Vqn5fdwckZadYVoH312aErP8PqNGNUx8WDrvKAHYfMd"),
		Accounts: []AccountMeta{
			WritableSigner(types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")),
			Readonly(types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")),
		},
		Data: []byte{1, 2, 3},
	}
	back := FromSDK(ix.ToSDK())
	assert.Equal(t, ix, back)
}

func TestFormFields(t *testing.T) {
	assert.Equal(t, []string{"target", "amount", "slippage"}, echoAction().FormFields())
}
