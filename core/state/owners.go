package state

import "palettecore/core/types"

const (
	ownerPrefix            = "registry/owner/"
	holdingsPrefix         = "registry/holdings/"
	transferApprovalPrefix = "registry/approval/"
)

// OwnerPut records the current owner of a token.
func (m *Manager) OwnerPut(id types.TokenID, owner [20]byte) error {
	return m.KVPut(tokenKey(ownerPrefix, uint64(id)), owner)
}

// OwnerGet returns the current owner of a token. The boolean reports whether
// the token has ever been minted.
func (m *Manager) OwnerGet(id types.TokenID) ([20]byte, bool, error) {
	var owner [20]byte
	ok, err := m.KVGet(tokenKey(ownerPrefix, uint64(id)), &owner)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return owner, true, nil
}

// HoldingsGet returns the number of tokens held by an address.
func (m *Manager) HoldingsGet(addr [20]byte) (uint64, error) {
	var count uint64
	if _, err := m.KVGet(addressKey(holdingsPrefix, addr), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// HoldingsPut overwrites the token count held by an address.
func (m *Manager) HoldingsPut(addr [20]byte, count uint64) error {
	if count == 0 {
		return m.KVDelete(addressKey(holdingsPrefix, addr))
	}
	return m.KVPut(addressKey(holdingsPrefix, addr), count)
}

// TransferApprovalPut records the account approved to transfer a token.
func (m *Manager) TransferApprovalPut(id types.TokenID, approved [20]byte) error {
	return m.KVPut(tokenKey(transferApprovalPrefix, uint64(id)), approved)
}

// TransferApprovalGet returns the account approved to transfer a token.
func (m *Manager) TransferApprovalGet(id types.TokenID) ([20]byte, bool, error) {
	var approved [20]byte
	ok, err := m.KVGet(tokenKey(transferApprovalPrefix, uint64(id)), &approved)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return approved, true, nil
}

// TransferApprovalClear removes any transfer approval for the token.
func (m *Manager) TransferApprovalClear(id types.TokenID) error {
	return m.KVDelete(tokenKey(transferApprovalPrefix, uint64(id)))
}
