package consts

import "gov-ix-sol/internal/types"

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetaProgramIdStr     = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	ComputeBudgetProgramIdStr = "ComputeBudget111111111111111111111111111111"

	// Sysvars
	SysvarRentStr  = "SysvarRent111111111111111111111111111111111"
	SysvarClockStr = "SysvarC1ock11111111111111111111111111111111"

	// 常用 Mint
	WSOLMintStr = "So11111111111111111111111111111111111111112"
	USDCMintStr = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMintStr = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	UXDMintStr  = "7kbnvuGBxxj8AG9qp8Scn56muWGaRaFqxg1FsRp3PaFT"

	// DEX: Orca
	OrcaWhirlpoolProgramStr         = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
	OrcaWhirlpoolMetadataUpdAuthStr = "3axbTs2z5GBy6usVbNVoqEgZMng3vZvMnAoX29BFfwhr"

	// DEX: Lifinity
	LifinityProgramStr = "EewxydAPCCVuNEyrVN68PuSYdQ7wKn27V9Gjeoi8dy3S"

	// DEX: Raydium
	RaydiumV4ProgramStr   = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	RaydiumV4AuthorityStr = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
	SerumDexV3ProgramStr  = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	// DEX: Mercurial 动态 AMM 及其 vault
	MercurialAmmProgramStr   = "Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"
	MercurialVaultProgramStr = "24Uqj9JCLxUeoC3hGfh5W3s9FM9uCHDS2SG3LYwBpyTi"

	// Lending
	SolendProgramStr     = "So1endDq2YkqhipRh3WViPa8hdiSpxWy6z3Z6tMCpAo"
	MapleSyrupProgramStr = "5D9yi4BKrxF8h65NkVE1raCCWFKUs5ngub2ECxhvfaZe"

	// Governance
	TribecaGovernProgramStr      = "Govz1VyoyLD5BL6CSCxUJLVLsQHRwjfFj1prNsdNg5Jw"
	TribecaLockedVoterProgramStr = "LocktDzaV1W2Bm9DeZeiyz4J9zs4fRqNiYqQyracRXw"
	SplGovernanceProgramStr      = "GovER5Lthms3bLBqWub97yVrMmEogzX7xNjdXpPPCVZw"
)

// 公钥形式的地址常量（types.Pubkey），用于链上比对与指令组装
var (
	// Programs
	SystemProgram          = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.PubkeyFromBase58(TokenProgramStr)
	TokenProgram2022       = types.PubkeyFromBase58(TokenProgram2022Str)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)
	TokenMetaProgram       = types.PubkeyFromBase58(TokenMetaProgramIdStr)
	ComputeBudgetProgram   = types.PubkeyFromBase58(ComputeBudgetProgramIdStr)

	SysvarRent  = types.PubkeyFromBase58(SysvarRentStr)
	SysvarClock = types.PubkeyFromBase58(SysvarClockStr)

	WSOLMint = types.PubkeyFromBase58(WSOLMintStr)
	USDCMint = types.PubkeyFromBase58(USDCMintStr)
	USDTMint = types.PubkeyFromBase58(USDTMintStr)
	UXDMint  = types.PubkeyFromBase58(UXDMintStr)

	OrcaWhirlpoolProgram         = types.PubkeyFromBase58(OrcaWhirlpoolProgramStr)
	OrcaWhirlpoolMetadataUpdAuth = types.PubkeyFromBase58(OrcaWhirlpoolMetadataUpdAuthStr)

	LifinityProgram = types.PubkeyFromBase58(LifinityProgramStr)

	RaydiumV4Program   = types.PubkeyFromBase58(RaydiumV4ProgramStr)
	RaydiumV4Authority = types.PubkeyFromBase58(RaydiumV4AuthorityStr)
	SerumDexV3Program  = types.PubkeyFromBase58(SerumDexV3ProgramStr)

	MercurialAmmProgram   = types.PubkeyFromBase58(MercurialAmmProgramStr)
	MercurialVaultProgram = types.PubkeyFromBase58(MercurialVaultProgramStr)

	SolendProgram     = types.PubkeyFromBase58(SolendProgramStr)
	MapleSyrupProgram = types.PubkeyFromBase58(MapleSyrupProgramStr)

	TribecaGovernProgram      = types.PubkeyFromBase58(TribecaGovernProgramStr)
	TribecaLockedVoterProgram = types.PubkeyFromBase58(TribecaLockedVoterProgramStr)
	SplGovernanceProgram      = types.PubkeyFromBase58(SplGovernanceProgramStr)
)
