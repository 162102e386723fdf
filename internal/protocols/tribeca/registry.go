package tribeca

import (
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"
)

const (
	NewVote  uint64 = 0xa36c9dbd8c500d8f // govern
	CastVote uint64 = 0x14d40fbd45b44597 // locked_voter
)

// 投票方向
const (
	SideNo      uint8 = 1
	SideYes     uint8 = 2
	SideAbstain uint8 = 3
)

var sideNames = map[uint8]string{
	SideNo:      "no",
	SideYes:     "yes",
	SideAbstain: "abstain",
}

var (
	NewVoteLayout = &codec.Layout{
		Name:          "Tribeca:NewVote",
		Discriminator: codec.Disc8(NewVote),
		Size:          41,
		Fields: []codec.Field{
			{Name: "bump", Offset: 8, Width: codec.U8},
		},
		Spans: []codec.Span{{Name: "voter", Offset: 9, Length: 32}},
	}
	CastVoteLayout = &codec.Layout{
		Name:          "Tribeca:CastVote",
		Discriminator: codec.Disc8(CastVote),
		Size:          9,
		Fields: []codec.Field{
			{Name: "side", Offset: 8, Width: codec.U8},
		},
	}
)

var newVoteRoles = []string{
	"Proposal",
	"Vote",
	"Payer",
	"System Program",
}

var castVoteRoles = []string{
	"Locker",
	"Escrow",
	"Vote Delegate",
	"Proposal",
	"Vote",
	"Governor",
	"Govern Program",
}

// GovernProgram Tribeca govern：new_vote
func GovernProgram() registry.Program {
	return registry.Program{
		ID:        consts.TribecaGovernProgram,
		Name:      consts.ProtocolName(consts.ProtocolTribeca) + "Govern",
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Tribeca - New Vote",
				Layout: NewVoteLayout,
				Roles:  newVoteRoles,
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					raw, err := in.Layout.Opaque(in.Data, "voter")
					if err != nil {
						return nil, err
					}
					var voter types.Pubkey
					copy(voter[:], raw)
					return []registry.DisplayLine{
						registry.Line("Proposal", in.Account(0).String()),
						registry.Line("Voter", voter.String()),
					}, nil
				},
			},
		},
	}
}

// LockedVoterProgram Tribeca locked voter：cast_vote
func LockedVoterProgram() registry.Program {
	return registry.Program{
		ID:        consts.TribecaLockedVoterProgram,
		Name:      consts.ProtocolName(consts.ProtocolTribeca) + "LockedVoter",
		DiscWidth: 8,
		Entries: []registry.Entry{
			{
				Name:   "Tribeca - Cast Vote",
				Layout: CastVoteLayout,
				Roles:  castVoteRoles,
				Render: func(in *registry.RenderInput) ([]registry.DisplayLine, error) {
					side := uint8(in.Fields["side"].Uint64())
					name, ok := sideNames[side]
					if !ok {
						name = fmt.Sprintf("unknown (%d)", side)
					}
					return []registry.DisplayLine{
						registry.Line("Proposal", in.Account(3).String()),
						registry.Line("Side", name),
					}, nil
				},
			},
		},
	}
}
