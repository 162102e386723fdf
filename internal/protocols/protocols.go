package protocols

import (
	"sort"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/catalog"
	"gov-ix-sol/internal/protocols/associatedtoken"
	"gov-ix-sol/internal/protocols/computebudget"
	"gov-ix-sol/internal/protocols/lifinity"
	"gov-ix-sol/internal/protocols/maplesyrup"
	"gov-ix-sol/internal/protocols/mercurial"
	"gov-ix-sol/internal/protocols/orcawhirlpool"
	"gov-ix-sol/internal/protocols/raydiumv4"
	"gov-ix-sol/internal/protocols/solend"
	"gov-ix-sol/internal/protocols/splgovernance"
	"gov-ix-sol/internal/protocols/spltoken"
	"gov-ix-sol/internal/protocols/tribeca"
	"gov-ix-sol/internal/protocols/uxd"
	"gov-ix-sol/internal/registry"
)

// Programs 全部已支持的 program；cat 提供渲染时的池子名称以及 UXD 部署
func Programs(cat *catalog.Catalog) []registry.Program {
	out := []registry.Program{
		spltoken.Program(),
		spltoken.Program2022(),
		associatedtoken.Program(),
		computebudget.Program(),
		orcawhirlpool.Program(),
		lifinity.Program(cat),
		maplesyrup.Program(cat),
		solend.Program(),
		raydiumv4.Program(),
		tribeca.GovernProgram(),
		tribeca.LockedVoterProgram(),
		splgovernance.Program(),
		mercurial.Program(cat),
	}
	if cat == nil {
		return out
	}
	// UXD program 没有固定地址，按目录中的 controller 逐个注册
	names := make([]string, 0, len(cat.UXDControllers))
	for name := range cat.UXDControllers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, uxd.Program(cat.UXDControllers[name]))
	}
	return out
}

// Table 组装查找表，任何条目校验失败都返回错误
func Table(cat *catalog.Catalog) (*registry.Table, error) {
	return registry.NewTable(Programs(cat)...)
}

// Actions 全部 builder 动作
func Actions() []builder.Action {
	var out []builder.Action
	for _, group := range [][]builder.Action{
		spltoken.Actions(),
		computebudget.Actions(),
		orcawhirlpool.Actions(),
		lifinity.Actions(),
		maplesyrup.Actions(),
		solend.Actions(),
		raydiumv4.Actions(),
		tribeca.Actions(),
		mercurial.Actions(),
		uxd.Actions(),
	} {
		out = append(out, group...)
	}
	return out
}
