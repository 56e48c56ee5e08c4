package registry

import (
	"encoding/hex"
	"strconv"

	"palettecore/core/types"
)

const (
	EventTypeTransferred = "registry.transferred"
	EventTypeApproval    = "registry.approval"
)

type registryEvent struct {
	evt *types.Event
}

func (e registryEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e registryEvent) Event() *types.Event { return e.evt }

// NewTransferredEvent returns the canonical payload for an ownership change.
func NewTransferredEvent(from, to [20]byte, id types.TokenID) *types.Event {
	return &types.Event{Type: EventTypeTransferred, Attributes: map[string]string{
		"from":  hex.EncodeToString(from[:]),
		"to":    hex.EncodeToString(to[:]),
		"token": strconv.FormatUint(uint64(id), 10),
	}}
}

// NewApprovalEvent returns the canonical payload for a transfer approval.
func NewApprovalEvent(owner, approved [20]byte, id types.TokenID) *types.Event {
	return &types.Event{Type: EventTypeApproval, Attributes: map[string]string{
		"owner":    hex.EncodeToString(owner[:]),
		"approved": hex.EncodeToString(approved[:]),
		"token":    strconv.FormatUint(uint64(id), 10),
	}}
}
