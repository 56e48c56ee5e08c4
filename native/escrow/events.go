package escrow

import (
	"encoding/hex"
	"math/big"

	"palettecore/core/types"
)

// EventTypeWithdrawn is emitted for every non-zero withdrawal.
const EventTypeWithdrawn = "escrow.withdrawn"

type ledgerEvent struct {
	evt *types.Event
}

func (e ledgerEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e ledgerEvent) Event() *types.Event { return e.evt }

// NewWithdrawnEvent returns the canonical payload for a completed withdrawal.
func NewWithdrawnEvent(beneficiary [20]byte, amount *big.Int) *types.Event {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return &types.Event{Type: EventTypeWithdrawn, Attributes: map[string]string{
		"beneficiary": hex.EncodeToString(beneficiary[:]),
		"amount":      amount.String(),
	}}
}
