package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

const escrowBalancePrefix = "palette/escrow/"

// EscrowBalance returns the withdrawable balance held for an account,
// defaulting to zero.
func (m *Manager) EscrowBalance(addr [20]byte) (*big.Int, error) {
	var raw []byte
	ok, err := m.KVGet(addressKey(escrowBalancePrefix, addr), &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(uint256.Int).SetBytes(raw).ToBig(), nil
}

// EscrowPut overwrites the withdrawable balance held for an account. A zero
// balance clears the entry.
func (m *Manager) EscrowPut(addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: escrow balance must not be negative")
	}
	stored, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("state: escrow balance overflow")
	}
	if stored.IsZero() {
		return m.KVDelete(addressKey(escrowBalancePrefix, addr))
	}
	return m.KVPut(addressKey(escrowBalancePrefix, addr), stored.Bytes())
}
