package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"palettecore/core/events"
	"palettecore/core/types"
)

// Collection metadata mirrored from the deployed palette.
const (
	CollectionName   = "Web Colors Palette"
	CollectionSymbol = "WCP"

	contractURISlug = "webcolorspalette"
)

var (
	errNilState = errors.New("registry: state not configured")

	// ErrNotFound marks lookups of tokens that were never minted.
	ErrNotFound = errors.New("registry: unknown token")
	// ErrUnauthorized marks mutations by callers without custody rights.
	ErrUnauthorized = errors.New("registry: caller is not token owner nor approved")
	// ErrWrongOwner marks transfers whose from argument is stale.
	ErrWrongOwner = errors.New("registry: transfer from incorrect owner")
	// ErrZeroAddress rejects mints and transfers to the zero address.
	ErrZeroAddress = errors.New("registry: zero address")
	// ErrAlreadyMinted rejects duplicate mints of the same identifier.
	ErrAlreadyMinted = errors.New("registry: token already minted")
)

type registryState interface {
	OwnerPut(id types.TokenID, owner [20]byte) error
	OwnerGet(id types.TokenID) ([20]byte, bool, error)
	HoldingsGet(addr [20]byte) (uint64, error)
	HoldingsPut(addr [20]byte, count uint64) error
	TransferApprovalPut(id types.TokenID, approved [20]byte) error
	TransferApprovalGet(id types.TokenID) ([20]byte, bool, error)
	TransferApprovalClear(id types.TokenID) error
}

// TransferHook observes every ownership change after it has been applied.
// The palette engine registers one to clear swap delegations.
type TransferHook func(id types.TokenID, from, to [20]byte) error

// Registry is the ownership module: the source of truth for which account
// owns which token, plus the standard transfer and approval primitives the
// swap engine builds on.
type Registry struct {
	state     registryState
	operators Operators
	emitter   events.Emitter
	baseURI   string
	hooks     []TransferHook
}

// NewRegistry creates a registry with operator checks disabled and a no-op
// event emitter.
func NewRegistry() *Registry {
	return &Registry{
		operators: DisabledOperators{},
		emitter:   events.NoopEmitter{},
	}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state registryState) { r.state = state }

// SetOperators configures the trusted operator registry. Passing nil disables
// the operator bypass entirely.
func (r *Registry) SetOperators(operators Operators) {
	if operators == nil {
		r.operators = DisabledOperators{}
		return
	}
	r.operators = operators
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetBaseURI configures the prefix used for token and contract metadata URIs.
func (r *Registry) SetBaseURI(base string) { r.baseURI = strings.TrimSpace(base) }

// RegisterTransferHook appends a hook invoked on every ownership change.
func (r *Registry) RegisterTransferHook(hook TransferHook) {
	if hook == nil {
		return
	}
	r.hooks = append(r.hooks, hook)
}

func (r *Registry) emit(event *types.Event) {
	if r == nil || r.emitter == nil || event == nil {
		return
	}
	r.emitter.Emit(registryEvent{evt: event})
}

// OwnerOf returns the current owner of the token.
func (r *Registry) OwnerOf(id types.TokenID) ([20]byte, error) {
	if r == nil || r.state == nil {
		return [20]byte{}, errNilState
	}
	owner, ok, err := r.state.OwnerGet(id)
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return owner, nil
}

// Exists reports whether the token has been minted.
func (r *Registry) Exists(id types.TokenID) (bool, error) {
	if r == nil || r.state == nil {
		return false, errNilState
	}
	_, ok, err := r.state.OwnerGet(id)
	return ok, err
}

// BalanceOf returns the number of tokens held by the address.
func (r *Registry) BalanceOf(addr [20]byte) (uint64, error) {
	if r == nil || r.state == nil {
		return 0, errNilState
	}
	return r.state.HoldingsGet(addr)
}

// Mint assigns a fresh token to the recipient. It is only invoked while
// applying the genesis palette; the universe of tokens is fixed afterwards.
func (r *Registry) Mint(to [20]byte, id types.TokenID) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	if !id.Valid() {
		return fmt.Errorf("registry: token id %d outside the color namespace", id)
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	if _, ok, err := r.state.OwnerGet(id); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %d", ErrAlreadyMinted, id)
	}
	if err := r.state.OwnerPut(id, to); err != nil {
		return err
	}
	count, err := r.state.HoldingsGet(to)
	if err != nil {
		return err
	}
	return r.state.HoldingsPut(to, count+1)
}

// Approve records the account allowed to transfer the token on the owner's
// behalf. Only the owner or one of its trusted operators may approve.
func (r *Registry) Approve(caller, approved [20]byte, id types.TokenID) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if caller != owner && !r.operators.IsApprovedForAll(owner, caller) {
		return ErrUnauthorized
	}
	if err := r.state.TransferApprovalPut(id, approved); err != nil {
		return err
	}
	r.emit(NewApprovalEvent(owner, approved, id))
	return nil
}

// Approved returns the account approved to transfer the token, if any.
func (r *Registry) Approved(id types.TokenID) ([20]byte, bool, error) {
	if r == nil || r.state == nil {
		return [20]byte{}, false, errNilState
	}
	return r.state.TransferApprovalGet(id)
}

func (r *Registry) isAuthorized(caller, owner [20]byte, id types.TokenID) (bool, error) {
	if caller == owner {
		return true, nil
	}
	approved, ok, err := r.state.TransferApprovalGet(id)
	if err != nil {
		return false, err
	}
	if ok && approved == caller {
		return true, nil
	}
	return r.operators.IsApprovedForAll(owner, caller), nil
}

// TransferFrom moves custody of the token from one account to another. The
// caller must be the owner, the approved account, or a trusted operator of
// the owner. Any transfer approval is consumed and registered hooks fire
// after custody has changed.
func (r *Registry) TransferFrom(caller, from, to [20]byte, id types.TokenID) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if from != owner {
		return ErrWrongOwner
	}
	if to == ([20]byte{}) {
		return ErrZeroAddress
	}
	authorized, err := r.isAuthorized(caller, owner, id)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrUnauthorized
	}
	if err := r.state.TransferApprovalClear(id); err != nil {
		return err
	}
	if err := r.state.OwnerPut(id, to); err != nil {
		return err
	}
	if from != to {
		fromCount, err := r.state.HoldingsGet(from)
		if err != nil {
			return err
		}
		if fromCount > 0 {
			if err := r.state.HoldingsPut(from, fromCount-1); err != nil {
				return err
			}
		}
		toCount, err := r.state.HoldingsGet(to)
		if err != nil {
			return err
		}
		if err := r.state.HoldingsPut(to, toCount+1); err != nil {
			return err
		}
	}
	for _, hook := range r.hooks {
		if err := hook(id, from, to); err != nil {
			return err
		}
	}
	r.emit(NewTransferredEvent(from, to, id))
	return nil
}

// TokenURI builds the metadata location for a minted token: the configured
// base followed by the decimal identifier.
func (r *Registry) TokenURI(id types.TokenID) (string, error) {
	exists, err := r.Exists(id)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return r.baseURI + strconv.FormatUint(uint64(id), 10), nil
}

// ContractURI returns the metadata location describing the collection itself.
func (r *Registry) ContractURI() string {
	return r.baseURI + contractURISlug
}
