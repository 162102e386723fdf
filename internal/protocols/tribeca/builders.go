package tribeca

import (
	"context"
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/ixerr"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/pkg/logger"
	"gov-ix-sol/internal/types"

	"github.com/zeromicro/go-zero/core/mr"
)

type NewVoteForm struct {
	Proposal types.Pubkey `form:"proposal"`
}

type CastVoteForm struct {
	Governor string       `form:"governor"`
	Proposal types.Pubkey `form:"proposal"`
	Side     string       `form:"side"` // yes / no / abstain
}

func Actions() []builder.Action {
	return []builder.Action{
		builder.NewAction("tribeca.new-vote", "create the vote account of a voter on a proposal", buildNewVote),
		builder.NewAction("tribeca.cast-vote", "cast a vote through the locked voter escrow", buildCastVote),
	}
}

// VoteAddress ["TribecaVote", proposal, voter]（govern 程序）
func VoteAddress(proposal, voter types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.TribecaGovernProgram, []byte("TribecaVote"), pda.Key(proposal), pda.Key(voter))
}

// EscrowAddress ["Escrow", locker, owner]（locked_voter 程序）
func EscrowAddress(locker, owner types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.TribecaLockedVoterProgram, []byte("Escrow"), pda.Key(locker), pda.Key(owner))
}

func parseSide(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, name := range sideNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: vote side must be yes, no or abstain, got %q", ixerr.ErrInvalidParameter, s)
}

// NewVoteIx 构造 new_vote，voter 同时作为参数写入数据
func NewVoteIx(proposal, voter, payer types.Pubkey) (builder.Instruction, error) {
	vote, err := VoteAddress(proposal, voter)
	if err != nil {
		return builder.Instruction{}, err
	}
	data, err := NewVoteLayout.Build(
		codec.Values{"bump": codec.FromU64(uint64(vote.Bump))},
		map[string][]byte{"voter": voter[:]},
	)
	if err != nil {
		return builder.Instruction{}, err
	}
	return builder.Instruction{
		ProgramID: consts.TribecaGovernProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(proposal),
			builder.Writable(vote.Address),
			builder.WritableSigner(payer),
			builder.Readonly(consts.SystemProgram),
		},
		Data: data,
	}, nil
}

func requireProposal(ctx context.Context, r chain.Reader, proposal types.Pubkey) error {
	if proposal.IsZero() {
		return fmt.Errorf("%w: tribeca vote requires proposal", ixerr.ErrInvalidParameter)
	}
	if _, err := r.GetAccountInfo(ctx, proposal); err != nil {
		return chain.BuildError(err, "tribeca proposal", proposal)
	}
	return nil
}

func buildNewVote(ctx context.Context, deps *builder.Deps, env *builder.Env, f *NewVoteForm) (*builder.Result, error) {
	if err := requireProposal(ctx, deps.Reader, f.Proposal); err != nil {
		return nil, err
	}
	ix, err := NewVoteIx(f.Proposal, env.Authority, env.Payer)
	if err != nil {
		return nil, err
	}
	return &builder.Result{Instruction: ix}, nil
}

// vote 账户不存在时把 new_vote 放进前置指令
func buildCastVote(ctx context.Context, deps *builder.Deps, env *builder.Env, f *CastVoteForm) (*builder.Result, error) {
	side, err := parseSide(f.Side)
	if err != nil {
		return nil, err
	}
	governor, err := deps.Catalog.TribecaGovernor(f.Governor)
	if err != nil {
		return nil, err
	}
	if err := requireProposal(ctx, deps.Reader, f.Proposal); err != nil {
		return nil, err
	}
	vote, err := VoteAddress(f.Proposal, env.Authority)
	if err != nil {
		return nil, err
	}
	escrow, err := EscrowAddress(governor.Locker, env.Authority)
	if err != nil {
		return nil, err
	}

	var voteExists bool
	err = mr.Finish(func() error {
		if _, err := deps.Reader.GetAccountInfo(ctx, escrow.Address); err != nil {
			return chain.BuildError(err, "tribeca escrow", escrow.Address)
		}
		return nil
	}, func() error {
		ok, err := chain.Exists(ctx, deps.Reader, vote.Address)
		if err != nil {
			return chain.BuildError(err, "tribeca vote", vote.Address)
		}
		voteExists = ok
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := CastVoteLayout.Build(codec.Values{"side": codec.FromU64(uint64(side))}, nil)
	if err != nil {
		return nil, err
	}
	res := &builder.Result{Instruction: builder.Instruction{
		ProgramID: consts.TribecaLockedVoterProgram,
		Accounts: []builder.AccountMeta{
			builder.Readonly(governor.Locker),
			builder.Readonly(escrow.Address),
			builder.Signer(env.Authority),
			builder.Writable(f.Proposal),
			builder.Writable(vote.Address),
			builder.Readonly(governor.Governor),
			builder.Readonly(consts.TribecaGovernProgram),
		},
		Data: data,
	}}
	if !voteExists {
		nv, err := NewVoteIx(f.Proposal, env.Authority, env.Payer)
		if err != nil {
			return nil, err
		}
		res.Prerequisites = append(res.Prerequisites, nv)
	}
	logger.Debugf("[Tribeca:CastVote] governor=%s, proposal=%s, side=%d, newVote=%v", f.Governor, f.Proposal, side, !voteExists)
	return res, nil
}
