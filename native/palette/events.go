package palette

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"palettecore/core/types"
)

const (
	EventTypeSwapped      = "palette.swapped"
	EventTypeSwapApproval = "palette.swap_approval"
	EventTypePriceUpdated = "palette.price_updated"
)

type paletteEvent struct {
	evt *types.Event
}

func (e paletteEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e paletteEvent) Event() *types.Event { return e.evt }

func formatToken(id types.TokenID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// NewSwappedEvent returns the canonical payload for a completed swap.
func NewSwappedEvent(caller [20]byte, a, b types.TokenID) *types.Event {
	return &types.Event{Type: EventTypeSwapped, Attributes: map[string]string{
		"caller": hex.EncodeToString(caller[:]),
		"tokenA": formatToken(a),
		"tokenB": formatToken(b),
	}}
}

// NewSwapApprovalEvent returns the canonical payload for a swap delegation
// change.
func NewSwapApprovalEvent(owner, delegate [20]byte, id types.TokenID) *types.Event {
	return &types.Event{Type: EventTypeSwapApproval, Attributes: map[string]string{
		"owner":    hex.EncodeToString(owner[:]),
		"delegate": hex.EncodeToString(delegate[:]),
		"token":    formatToken(id),
	}}
}

// NewPriceUpdatedEvent returns the canonical payload for a price change.
func NewPriceUpdatedEvent(id types.TokenID, amount *big.Int) *types.Event {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return &types.Event{Type: EventTypePriceUpdated, Attributes: map[string]string{
		"token": formatToken(id),
		"price": amount.String(),
	}}
}
