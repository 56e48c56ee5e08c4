package state

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"palettecore/core/types"
)

const swapPricePrefix = "palette/swap-price/"

// SwapPricePut stores the swap price for a token. Negative amounts are
// rejected, zero clears the entry so unpriced tokens stay absent from state.
func (m *Manager) SwapPricePut(id types.TokenID, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("state: swap price must not be negative")
	}
	stored, overflow := uint256.FromBig(amount)
	if overflow {
		return fmt.Errorf("state: swap price overflow")
	}
	if stored.IsZero() {
		return m.KVDelete(tokenKey(swapPricePrefix, uint64(id)))
	}
	return m.KVPut(tokenKey(swapPricePrefix, uint64(id)), stored.Bytes())
}

// SwapPriceGet returns the stored price, defaulting to zero.
func (m *Manager) SwapPriceGet(id types.TokenID) (*big.Int, error) {
	var raw []byte
	ok, err := m.KVGet(tokenKey(swapPricePrefix, uint64(id)), &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return new(uint256.Int).SetBytes(raw).ToBig(), nil
}
