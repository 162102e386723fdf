package splgovernance

import (
	"context"
	"testing"

	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSetRealmAuthority(t *testing.T) {
	reg := registry.New(registry.MustTable(Program()), nil)
	newAuthority := types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	accounts := []types.Pubkey{{1}, {2}, newAuthority}

	lines, err := reg.Render(context.Background(), consts.SplGovernanceProgram, []byte{21, 1}, accounts)
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Action", Value: "SetChecked"},
		{Label: "New Realm Authority", Value: newAuthority.String()},
	}, lines)

	lines, err = reg.Render(context.Background(), consts.SplGovernanceProgram, []byte{21, 2}, accounts)
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{{Label: "Action", Value: "Remove"}}, lines)

	_, err = reg.Render(context.Background(), consts.SplGovernanceProgram, []byte{21, 7}, accounts)
	assert.Error(t, err)

	// 未注册的 opcode
	_, err = reg.Render(context.Background(), consts.SplGovernanceProgram, []byte{19, 0}, accounts)
	var unknown *registry.UnknownInstructionError
	assert.ErrorAs(t, err, &unknown)
}
