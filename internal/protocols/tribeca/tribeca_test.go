package tribeca

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
	voter    = types.PubkeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	proposal = types.PubkeyFromBase58("BgxfHJDzm44T7XG68MYKx7YisTjZu73tVovyZSjJMpmw")
	governor = catalog.TribecaGovernor{
		Governor: types.PubkeyFromBase58("7Vqn5fdwckZadYVoH312aErP8PqNGNUx8WDrvKAHYfMd"),
		Locker:   types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX"),
	}
)

func setup(t *testing.T) (*chain.MemoryReader, *builder.Set, *registry.Registry) {
	t.Helper()
	r := chain.NewMemoryReader()
	r.Put(proposal, &chain.AccountInfo{Owner: consts.TribecaGovernProgram, Data: make([]byte, 256)})
	escrow, err := EscrowAddress(governor.Locker, voter)
	require.NoError(t, err)
	r.Put(escrow.Address, &chain.AccountInfo{Owner: consts.TribecaLockedVoterProgram, Data: make([]byte, 161)})

	cat := catalog.New()
	cat.TribecaGovernors["uxd"] = governor
	set, err := builder.NewSet(&builder.Deps{Reader: r, Catalog: cat}, Actions()...)
	require.NoError(t, err)
	return r, set, registry.New(registry.MustTable(GovernProgram(), LockedVoterProgram()), r)
}

func TestNewVote(t *testing.T) {
	r, set, reg := setup(t)

	res, err := set.Build(context.Background(), "tribeca.new-vote", map[string]any{
		"proposal": proposal.String(),
	}, &builder.Env{Authority: voter})
	require.NoError(t, err)

	vote, err := VoteAddress(proposal, voter)
	require.NoError(t, err)
	require.Len(t, res.Instruction.Data, NewVoteLayout.Size)
	assert.Equal(t, vote.Bump, res.Instruction.Data[8])
	assert.Equal(t, voter[:], res.Instruction.Data[9:41])
	assert.Equal(t, vote.Address, res.Instruction.Accounts[1].Pubkey)

	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	assert.Equal(t, []registry.DisplayLine{
		{Label: "Proposal", Value: proposal.String()},
		{Label: "Voter", Value: voter.String()},
	}, lines)
	// 渲染不需要任何链上查询
	assert.Equal(t, 1, r.Calls())
}

func TestCastVote(t *testing.T) {
	r, set, reg := setup(t)
	env := &builder.Env{Authority: voter}

	res, err := set.Build(context.Background(), "tribeca.cast-vote", map[string]any{
		"governor": "uxd", "proposal": proposal.String(), "side": "Yes",
	}, env)
	require.NoError(t, err)
	require.Len(t, res.Prerequisites, 1)
	assert.Equal(t, consts.TribecaGovernProgram, res.Prerequisites[0].ProgramID)
	require.Len(t, res.Instruction.Accounts, len(castVoteRoles))
	assert.Equal(t, append(codec.Disc8(CastVote), SideYes), res.Instruction.Data)

	lines, err := reg.Render(context.Background(), res.Instruction.ProgramID, res.Instruction.Data, res.Instruction.Keys())
	require.NoError(t, err)
	assert.Equal(t, "yes", lines[1].Value)

	vote, err := VoteAddress(proposal, voter)
	require.NoError(t, err)
	r.Put(vote.Address, &chain.AccountInfo{Owner: consts.TribecaGovernProgram, Data: make([]byte, 80)})
	res, err = set.Build(context.Background(), "tribeca.cast-vote", map[string]any{
		"governor": "uxd", "proposal": proposal.String(), "side": "abstain",
	}, env)
	require.NoError(t, err)
	assert.Empty(t, res.Prerequisites)
}

func TestCastVoteRejects(t *testing.T) {
	r, set, reg := setup(t)

	r.Reset()
	_, err := set.Build(context.Background(), "tribeca.cast-vote", map[string]any{
		"governor": "uxd", "proposal": proposal.String(), "side": "maybe",
	}, &builder.Env{Authority: voter})
	assert.True(t, errors.Is(err, ixerr.ErrInvalidParameter))
	assert.Equal(t, 0, r.Calls())

	// 没有 escrow 的钱包
	other := types.PubkeyFromBase58("DdZR6zRFiUt4S5mg7AV1uKB2z1f1WzcNYCaTEEWPAuby")
	_, err = set.Build(context.Background(), "tribeca.cast-vote", map[string]any{
		"governor": "uxd", "proposal": proposal.String(), "side": "no",
	}, &builder.Env{Authority: other})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	_, err = set.Build(context.Background(), "tribeca.cast-vote", map[string]any{
		"governor": "mngo", "proposal": proposal.String(), "side": "no",
	}, &builder.Env{Authority: voter})
	assert.True(t, errors.Is(err, ixerr.ErrDependencyNotFound))

	data := append(codec.Disc8(CastVote), 9)
	lines, err := reg.Render(context.Background(), consts.TribecaLockedVoterProgram, data, make([]types.Pubkey, len(castVoteRoles)))
	require.NoError(t, err)
	assert.Equal(t, "unknown (9)", lines[1].Value)
}
