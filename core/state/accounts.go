package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"palettecore/core/types"
)

const accountPrefix = "account/"

type storedAccount struct {
	Nonce   uint64
	Balance *big.Int
}

// AccountGet reconstructs the account stored under the provided address.
// Unknown addresses yield an empty account rather than an error.
func (m *Manager) AccountGet(addr [20]byte) (*types.Account, error) {
	account := &types.Account{Balance: big.NewInt(0)}
	var stored storedAccount
	ok, err := m.KVGet(addressKey(accountPrefix, addr), &stored)
	if err != nil {
		return nil, err
	}
	if ok {
		account.Nonce = stored.Nonce
		if stored.Balance != nil {
			account.Balance = new(big.Int).Set(stored.Balance)
		}
	}
	account.EnsureDefaults()
	return account, nil
}

// AccountPut persists the provided account state under the supplied address.
func (m *Manager) AccountPut(addr [20]byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	account.EnsureDefaults()
	if account.Balance.Sign() < 0 {
		return fmt.Errorf("state: account balance must not be negative")
	}
	if _, overflow := uint256.FromBig(account.Balance); overflow {
		return fmt.Errorf("state: account balance overflow")
	}
	stored := storedAccount{
		Nonce:   account.Nonce,
		Balance: new(big.Int).Set(account.Balance),
	}
	return m.KVPut(addressKey(accountPrefix, addr), stored)
}
