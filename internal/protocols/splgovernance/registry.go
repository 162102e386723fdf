package splgovernance

import (
	"fmt"

	"gov-ix-sol/internal/codec"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/registry"
)

const SetRealmAuthority uint8 = 21

// SetRealmAuthorityAction
const (
	SetUnchecked uint8 = 0
	SetChecked   uint8 = 1
	Remove       uint8 = 2
)

var actionNames = map[uint8]string{
	SetUnchecked: "SetUnchecked",
	SetChecked:   "SetChecked",
	Remove:       "Remove",
}

var SetRealmAuthorityLayout = &codec.Layout{
	Name:          "SplGovernance:SetRealmAuthority",
	Discriminator: codec.Disc1(SetRealmAuthority),
	Size:          2,
	Fields: []codec.Field{
		{Name: "action", Offset: 1, Width: codec.U8},
	},
}

var setRealmAuthorityRoles = []string{
	"Realm",
	"Realm Authority",
	"New Realm Authority",
}

func Program() registry.Program {
	return registry.Program{
		ID:        consts.SplGovernanceProgram,
		Name:      consts.ProtocolName(consts.ProtocolSplGovernance),
		DiscWidth: 1,
		Entries: []registry.Entry{
			{
				Name:   "Spl Governance - Set Realm Authority",
				Layout: SetRealmAuthorityLayout,
				Roles:  setRealmAuthorityRoles,
				Render: renderSetRealmAuthority,
			},
		},
	}
}

// Remove 时链上不会读取新 authority，不展示
func renderSetRealmAuthority(in *registry.RenderInput) ([]registry.DisplayLine, error) {
	action := uint8(in.Fields["action"].Uint64())
	name, ok := actionNames[action]
	if !ok {
		return nil, fmt.Errorf("%s: unknown realm authority action %d", in.Name, action)
	}
	lines := []registry.DisplayLine{registry.Line("Action", name)}
	if action != Remove {
		lines = append(lines, registry.Line("New Realm Authority", in.Account(2).String()))
	}
	return lines, nil
}
