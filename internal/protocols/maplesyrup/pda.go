package maplesyrup

import (
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/types"
)

// LenderAddress ["lender", pool, lenderUser]
func LenderAddress(pool, user types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.MapleSyrupProgram, []byte("lender"), pda.Key(pool), pda.Key(user))
}

// LockedSharesAddress ["locked_shares", lender]
func LockedSharesAddress(lender types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.MapleSyrupProgram, []byte("locked_shares"), pda.Key(lender))
}

// WithdrawalRequestAddress ["withdrawal_request", lender, nonce]
func WithdrawalRequestAddress(lender types.Pubkey, nonce [8]byte) (pda.Derived, error) {
	return pda.Derive(consts.MapleSyrupProgram, []byte("withdrawal_request"), pda.Key(lender), nonce[:])
}

// WithdrawalRequestLockerAddress ["withdrawal_request_locker", withdrawalRequest]
func WithdrawalRequestLockerAddress(request types.Pubkey) (pda.Derived, error) {
	return pda.Derive(consts.MapleSyrupProgram, []byte("withdrawal_request_locker"), pda.Key(request))
}
