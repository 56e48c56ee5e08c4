package state

import (
	"fmt"

	"palettecore/core/types"
)

const (
	positionPrefix   = "palette/position/"
	coordinatePrefix = "palette/coordinate/"
)

type storedPosition struct {
	X uint32
	Y uint32
}

func coordinateKey(pos types.Position) []byte {
	return []byte(fmt.Sprintf("%s%d/%d", coordinatePrefix, pos.X, pos.Y))
}

// PositionPut records the coordinate for a token, updating both directions of
// the bijection. Callers moving tokens must rewrite every affected pair so no
// stale inverse entry survives; the swap engine always does so.
func (m *Manager) PositionPut(id types.TokenID, pos types.Position) error {
	if err := m.KVPut(tokenKey(positionPrefix, uint64(id)), storedPosition{X: pos.X, Y: pos.Y}); err != nil {
		return err
	}
	return m.KVPut(coordinateKey(pos), uint64(id))
}

// PositionGet returns the coordinate assigned to the token.
func (m *Manager) PositionGet(id types.TokenID) (types.Position, bool, error) {
	var stored storedPosition
	ok, err := m.KVGet(tokenKey(positionPrefix, uint64(id)), &stored)
	if err != nil || !ok {
		return types.Position{}, false, err
	}
	return types.Position{X: stored.X, Y: stored.Y}, true, nil
}

// TokenAtPosition resolves the inverse mapping from coordinate to token.
func (m *Manager) TokenAtPosition(pos types.Position) (types.TokenID, bool, error) {
	var stored uint64
	ok, err := m.KVGet(coordinateKey(pos), &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	if stored > uint64(types.MaxTokenID) {
		return 0, false, fmt.Errorf("state: stored token id %d out of range", stored)
	}
	return types.TokenID(stored), true, nil
}
