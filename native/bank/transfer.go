package bank

import (
	"errors"
	"fmt"
	"math/big"

	"palettecore/core/types"
)

// AccountStore abstracts the subset of state manager functionality the cash
// balance primitives require.
type AccountStore interface {
	AccountGet(addr [20]byte) (*types.Account, error)
	AccountPut(addr [20]byte, account *types.Account) error
}

// ErrInsufficientFunds is returned when a debit exceeds the spendable balance.
var ErrInsufficientFunds = errors.New("bank: insufficient funds")

// BalanceOf returns the spendable balance held by the address.
func BalanceOf(store AccountStore, addr [20]byte) (*big.Int, error) {
	if store == nil {
		return nil, fmt.Errorf("bank: account store required")
	}
	account, err := store.AccountGet(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(account.Balance), nil
}

// Debit removes the amount from the address' spendable balance.
func Debit(store AccountStore, addr [20]byte, amount *big.Int) error {
	if store == nil {
		return fmt.Errorf("bank: account store required")
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("bank: negative debit amount")
	}
	account, err := store.AccountGet(addr)
	if err != nil {
		return err
	}
	if account.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	account.Balance = new(big.Int).Sub(account.Balance, amount)
	return store.AccountPut(addr, account)
}

// Credit adds the amount to the address' spendable balance.
func Credit(store AccountStore, addr [20]byte, amount *big.Int) error {
	if store == nil {
		return fmt.Errorf("bank: account store required")
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("bank: negative credit amount")
	}
	account, err := store.AccountGet(addr)
	if err != nil {
		return err
	}
	account.Balance = new(big.Int).Add(account.Balance, amount)
	return store.AccountPut(addr, account)
}

// CanSpend reports whether the address holds at least the requested amount.
func CanSpend(store AccountStore, addr [20]byte, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() <= 0 {
		return true, nil
	}
	balance, err := BalanceOf(store, addr)
	if err != nil {
		return false, err
	}
	return balance.Cmp(amount) >= 0, nil
}
