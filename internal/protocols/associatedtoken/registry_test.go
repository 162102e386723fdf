package associatedtoken

import (
	"context"
	"testing"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	funder = types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	owner  = types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")
)

func TestCreateIxAccountOrder(t *testing.T) {
	ix, ata, err := CreateIx(funder, owner, consts.USDCMint)
	require.NoError(t, err)

	want, err := pda.AssociatedTokenAddress(owner, consts.USDCMint)
	require.NoError(t, err)
	assert.Equal(t, want, ata)

	assert.Equal(t, consts.AssociatedTokenProgram, ix.ProgramID)
	require.Len(t, ix.Accounts, len(roles))
	assert.Equal(t, funder, ix.Accounts[0].Pubkey)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.Equal(t, ata, ix.Accounts[1].Pubkey)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.Equal(t, owner, ix.Accounts[2].Pubkey)
	assert.Equal(t, consts.USDCMint, ix.Accounts[3].Pubkey)
	assert.Equal(t, consts.SystemProgram, ix.Accounts[4].Pubkey)
	assert.Equal(t, consts.TokenProgram, ix.Accounts[5].Pubkey)
	assert.Equal(t, []byte{CreateIdempotent}, ix.Data)
	assert.Len(t, Program().Entries[1].Roles, len(ix.Accounts))
}

func TestCreateIxOfToken2022(t *testing.T) {
	mint := types.PubkeyFromBase58("2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo")
	ix, ata, err := CreateIxOf(funder, owner, mint, consts.TokenProgram2022)
	require.NoError(t, err)

	want, err := pda.Derive(consts.AssociatedTokenProgram, pda.Key(owner), pda.Key(consts.TokenProgram2022), pda.Key(mint))
	require.NoError(t, err)
	assert.Equal(t, want.Address, ata)

	classic, err := pda.AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.NotEqual(t, classic, ata)

	require.Len(t, ix.Accounts, len(roles))
	assert.Equal(t, ata, ix.Accounts[1].Pubkey)
	assert.Equal(t, consts.TokenProgram2022, ix.Accounts[5].Pubkey)
}

func TestEnsureOnlyWhenMissing(t *testing.T) {
	r := chain.NewMemoryReader()

	ata, prereq, err := Ensure(context.Background(), r, funder, owner, consts.USDCMint)
	require.NoError(t, err)
	require.NotNil(t, prereq)

	r.PutTokenAccount(ata, consts.USDCMint, owner, 0)
	again, prereq, err := Ensure(context.Background(), r, funder, owner, consts.USDCMint)
	require.NoError(t, err)
	assert.Nil(t, prereq)
	assert.Equal(t, ata, again)
}

func TestEnsureOfToken2022(t *testing.T) {
	r := chain.NewMemoryReader()
	mint := types.PubkeyFromBase58("2b1kV6DkPAnxd5ixfnxCpjxmKwqjjaYmCZfHsFu24GXo")

	ata, prereq, err := EnsureOf(context.Background(), r, funder, owner, mint, consts.TokenProgram2022)
	require.NoError(t, err)
	require.NotNil(t, prereq)
	assert.Equal(t, consts.TokenProgram2022, prereq.Accounts[5].Pubkey)

	r.PutTokenAccountOf(consts.TokenProgram2022, ata, mint, owner, 0)
	_, prereq, err = EnsureOf(context.Background(), r, funder, owner, mint, consts.TokenProgram2022)
	require.NoError(t, err)
	assert.Nil(t, prereq)
}
