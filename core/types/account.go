package types

import "math/big"

// Account carries the spendable balance tracked for an address. Escrowed
// funds live in the pull-payment ledger, not here.
type Account struct {
	Nonce   uint64   `json:"nonce"`
	Balance *big.Int `json:"balance"`
}

// EnsureDefaults backfills nil pointers so callers can mutate the account
// without nil checks.
func (a *Account) EnsureDefaults() {
	if a.Balance == nil {
		a.Balance = big.NewInt(0)
	}
}
