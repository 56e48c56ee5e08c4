package escrow

import (
	"errors"
	"fmt"
	"math/big"

	"palettecore/core/events"
)

var (
	errNilStore  = errors.New("escrow: store not configured")
	errNilPayout = errors.New("escrow: payout not configured")
)

// Storage abstracts the subset of state manager functionality required by the
// pull-payment ledger.
type Storage interface {
	EscrowBalance(addr [20]byte) (*big.Int, error)
	EscrowPut(addr [20]byte, amount *big.Int) error
}

// PayoutFunc delivers withdrawn funds to the beneficiary. Implementations may
// run arbitrary code; the ledger zeroes the balance before invoking it so a
// re-entrant withdrawal can never pay twice.
type PayoutFunc func(beneficiary [20]byte, amount *big.Int) error

// Ledger accumulates withdrawable balances per payee. Funds only ever enter
// through Credit and only ever leave through Withdraw.
type Ledger struct {
	store   Storage
	payout  PayoutFunc
	emitter events.Emitter
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store Storage) *Ledger {
	return &Ledger{store: store, emitter: events.NoopEmitter{}}
}

// SetPayout configures how withdrawn funds reach the beneficiary.
func (l *Ledger) SetPayout(payout PayoutFunc) { l.payout = payout }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt events.Event) {
	if l == nil || l.emitter == nil || evt == nil {
		return
	}
	l.emitter.Emit(evt)
}

// BalanceOf returns the withdrawable balance held for the account.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilStore
	}
	return l.store.EscrowBalance(addr)
}

// Credit increases the account's withdrawable balance. Crediting zero is a
// no-op; negative amounts are rejected.
func (l *Ledger) Credit(addr [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilStore
	}
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("escrow: negative credit amount")
	}
	balance, err := l.store.EscrowBalance(addr)
	if err != nil {
		return err
	}
	return l.store.EscrowPut(addr, new(big.Int).Add(balance, amount))
}

// Withdraw pays the beneficiary's full balance out and returns the amount
// moved. The balance is zeroed before the payout runs, so a payout that calls
// back into the ledger observes an empty balance. A zero balance withdraws
// nothing and succeeds. If the payout itself fails the balance is restored
// and the error returned, leaving the call without effect.
func (l *Ledger) Withdraw(beneficiary [20]byte) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilStore
	}
	if l.payout == nil {
		return nil, errNilPayout
	}
	balance, err := l.store.EscrowBalance(beneficiary)
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	amount := new(big.Int).Set(balance)
	if err := l.store.EscrowPut(beneficiary, big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := l.payout(beneficiary, amount); err != nil {
		if restoreErr := l.store.EscrowPut(beneficiary, amount); restoreErr != nil {
			return nil, fmt.Errorf("escrow: payout failed (%v) and balance restore failed: %w", err, restoreErr)
		}
		return nil, err
	}
	l.emit(ledgerEvent{evt: NewWithdrawnEvent(beneficiary, amount)})
	return amount, nil
}
