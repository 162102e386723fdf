package orcawhirlpool

import (
	"strconv"

	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/types"
)

// PositionAddress ["position", positionMint]
func PositionAddress(positionMint types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.OrcaWhirlpoolProgram, []byte("position"), pda.Key(positionMint))
}

// MetadataAddress Metaplex 元数据账户 ["metadata", metadataProgram, mint]
func MetadataAddress(mint types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.TokenMetaProgram, []byte("metadata"), pda.Key(consts.TokenMetaProgram), pda.Key(mint))
}

// TickArrayAddress ["tick_array", whirlpool, 十进制起始 tick]
func TickArrayAddress(whirlpool types.Pubkey, start int32) (pda.Derived, error) {
	return pda.Derive(consts.OrcaWhirlpoolProgram,
		[]byte("tick_array"), pda.Key(whirlpool), []byte(strconv.FormatInt(int64(start), 10)))
}
