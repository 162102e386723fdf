package consts

const (
	ProtocolSplToken = iota + 1 // 1
	ProtocolAssociatedToken     // 2
	ProtocolComputeBudget       // 3
	ProtocolOrcaWhirlpool       // 4
	ProtocolLifinity            // 5
	ProtocolMapleSyrup          // 6
	ProtocolSolend              // 7
	ProtocolRaydiumV4           // 8
	ProtocolTribeca             // 9
	ProtocolSplGovernance       // 10
	ProtocolMercurial           // 11
	ProtocolUXD                 // 12
)

var ProtocolNames = []string{
	"Unknown",         // 0 (保留)
	"SplToken",        // 1
	"AssociatedToken", // 2
	"ComputeBudget",   // 3
	"OrcaWhirlpool",   // 4
	"Lifinity",        // 5
	"MapleSyrup",      // 6
	"Solend",          // 7
	"RaydiumV4",       // 8
	"Tribeca",         // 9
	"SplGovernance",   // 10
	"Mercurial",       // 11
	"UXD",             // 12
}

func ProtocolName(p int) string {
	if p >= 1 && p < len(ProtocolNames) {
		return ProtocolNames[p]
	}
	return ProtocolNames[0] // Unknown
}
