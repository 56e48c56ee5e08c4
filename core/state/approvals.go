package state

import "palettecore/core/types"

const swapApprovalPrefix = "palette/swap-approval/"

// SwapApprovalPut records the single swap delegate for a token, replacing any
// previous delegate.
func (m *Manager) SwapApprovalPut(id types.TokenID, delegate [20]byte) error {
	return m.KVPut(tokenKey(swapApprovalPrefix, uint64(id)), delegate)
}

// SwapApprovalGet returns the current swap delegate, if any.
func (m *Manager) SwapApprovalGet(id types.TokenID) ([20]byte, bool, error) {
	var delegate [20]byte
	ok, err := m.KVGet(tokenKey(swapApprovalPrefix, uint64(id)), &delegate)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return delegate, true, nil
}

// SwapApprovalClear removes the delegate entry. Clearing a token without a
// delegate is a no-op, which keeps the transfer hook idempotent.
func (m *Manager) SwapApprovalClear(id types.TokenID) error {
	return m.KVDelete(tokenKey(swapApprovalPrefix, uint64(id)))
}
