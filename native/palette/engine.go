package palette

import (
	"errors"
	"fmt"
	"math/big"

	"palettecore/core/events"
	"palettecore/core/types"
	"palettecore/native/bank"
)

var (
	errNilState     = errors.New("palette engine: state not configured")
	errNilOwnership = errors.New("palette engine: ownership module not configured")
	errNilEscrow    = errors.New("palette engine: escrow ledger not configured")
)

type engineState interface {
	PositionPut(id types.TokenID, pos types.Position) error
	PositionGet(id types.TokenID) (types.Position, bool, error)
	SwapApprovalPut(id types.TokenID, delegate [20]byte) error
	SwapApprovalGet(id types.TokenID) ([20]byte, bool, error)
	SwapApprovalClear(id types.TokenID) error
	SwapPricePut(id types.TokenID, amount *big.Int) error
	SwapPriceGet(id types.TokenID) (*big.Int, error)
	VersionPut(version uint64) error
	VersionGet() (uint64, bool, error)
	AccountGet(addr [20]byte) (*types.Account, error)
	AccountPut(addr [20]byte, account *types.Account) error
}

// Ownership is the slice of the ownership module the engine consumes: owner
// lookups and existence checks. Custody itself is never mutated here.
type Ownership interface {
	OwnerOf(id types.TokenID) ([20]byte, error)
	Exists(id types.TokenID) (bool, error)
}

// OperatorRegistry is the trusted operator collaborator: operators approved
// for an owner count as authorized for every token of that owner.
type OperatorRegistry interface {
	IsApprovedForAll(owner, operator [20]byte) bool
}

// EscrowLedger receives the proceeds of priced swaps for later withdrawal.
type EscrowLedger interface {
	Credit(addr [20]byte, amount *big.Int) error
}

type disabledOperators struct{}

func (disabledOperators) IsApprovedForAll(owner, operator [20]byte) bool { return false }

// Engine orchestrates position swaps: authorization, payment validation, fee
// splitting, escrow crediting and the version counter. It is the only
// component that mutates more than one piece of state per call, so every
// operation validates completely before touching anything.
type Engine struct {
	state      engineState
	ownership  Ownership
	operators  OperatorRegistry
	escrow     EscrowLedger
	emitter    events.Emitter
	feePercent uint32
	platform   [20]byte
}

// NewEngine creates a palette engine with a no-op emitter and operator checks
// disabled. The fee rate is fixed at construction and immutable afterwards.
func NewEngine(feePercent uint32, platform [20]byte) (*Engine, error) {
	if feePercent > 100 {
		return nil, fmt.Errorf("palette engine: fee percent %d out of range", feePercent)
	}
	return &Engine{
		operators:  disabledOperators{},
		emitter:    events.NoopEmitter{},
		feePercent: feePercent,
		platform:   platform,
	}, nil
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetOwnership configures the ownership module consulted for custody.
func (e *Engine) SetOwnership(ownership Ownership) { e.ownership = ownership }

// SetOperators configures the trusted operator registry. Passing nil disables
// the operator bypass.
func (e *Engine) SetOperators(operators OperatorRegistry) {
	if operators == nil {
		e.operators = disabledOperators{}
		return
	}
	e.operators = operators
}

// SetEscrow configures the ledger credited with swap proceeds.
func (e *Engine) SetEscrow(ledger EscrowLedger) { e.escrow = ledger }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// FeePercent returns the immutable platform fee rate.
func (e *Engine) FeePercent() uint32 { return e.feePercent }

// Platform returns the account receiving the fee share of priced swaps.
func (e *Engine) Platform() [20]byte { return e.platform }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(paletteEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ownership == nil {
		return errNilOwnership
	}
	return nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// PositionOf returns the coordinate of an existing token.
func (e *Engine) PositionOf(id types.TokenID) (types.Position, error) {
	if err := e.ready(); err != nil {
		return types.Position{}, err
	}
	exists, err := e.ownership.Exists(id)
	if err != nil {
		return types.Position{}, err
	}
	if !exists {
		return types.Position{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	pos, ok, err := e.state.PositionGet(id)
	if err != nil {
		return types.Position{}, err
	}
	if !ok {
		return types.Position{}, fmt.Errorf("%w: token %d has no coordinate", ErrNotFound, id)
	}
	return pos, nil
}

// ApproveSwap records a single swap delegate for the token. Only the current
// owner may delegate; a new delegation overwrites the previous one.
func (e *Engine) ApproveSwap(caller, delegate [20]byte, id types.TokenID) error {
	if err := e.ready(); err != nil {
		return err
	}
	owner, err := e.ownerOf(id)
	if err != nil {
		return err
	}
	if caller != owner {
		return fmt.Errorf("%w: only the owner may delegate token %d", ErrUnauthorized, id)
	}
	if err := e.state.SwapApprovalPut(id, delegate); err != nil {
		return err
	}
	e.emit(NewSwapApprovalEvent(owner, delegate, id))
	return nil
}

// SwapApproved returns the current swap delegate for the token, if any.
func (e *Engine) SwapApproved(id types.TokenID) ([20]byte, bool, error) {
	if err := e.ready(); err != nil {
		return [20]byte{}, false, err
	}
	return e.state.SwapApprovalGet(id)
}

// ClearSwapApproval drops any swap delegation for the token. The ownership
// module invokes this through its transfer hook on every custody change so a
// stale delegate can never act for the new owner. Idempotent.
func (e *Engine) ClearSwapApproval(id types.TokenID) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.SwapApprovalClear(id)
}

// SetSwapPrice sets the price another owner must attach to swap with this
// token. Only the current owner may set it; zero makes the token free again.
// Prices deliberately survive both transfers and successful swaps: a price is
// metadata about willingness to trade, not custody.
func (e *Engine) SetSwapPrice(caller [20]byte, id types.TokenID, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	owner, err := e.ownerOf(id)
	if err != nil {
		return err
	}
	if caller != owner {
		return fmt.Errorf("%w: only the owner may price token %d", ErrUnauthorized, id)
	}
	amount = cloneBigInt(amount)
	if amount.Sign() < 0 {
		return fmt.Errorf("palette: swap price must not be negative")
	}
	if err := e.state.SwapPricePut(id, amount); err != nil {
		return err
	}
	e.emit(NewPriceUpdatedEvent(id, amount))
	return nil
}

// SwapPrice returns the current swap price of the token, defaulting to zero.
func (e *Engine) SwapPrice(id types.TokenID) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.SwapPriceGet(id)
}

// Version returns the palette change counter.
func (e *Engine) Version() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	version, _, err := e.state.VersionGet()
	return version, err
}

func (e *Engine) ownerOf(id types.TokenID) ([20]byte, error) {
	owner, err := e.ownership.OwnerOf(id)
	if err != nil {
		return [20]byte{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return owner, nil
}

// isAuthorized reports whether the account may move the token in a swap:
// the owner, the swap delegate, or a trusted operator of the owner.
func (e *Engine) isAuthorized(account, owner [20]byte, id types.TokenID) (bool, error) {
	if account == owner {
		return true, nil
	}
	delegate, ok, err := e.state.SwapApprovalGet(id)
	if err != nil {
		return false, err
	}
	if ok && delegate == account {
		return true, nil
	}
	return e.operators.IsApprovedForAll(owner, account), nil
}

// Swap exchanges the grid positions of two tokens.
//
// Same-owner swaps are free and must attach no value. Swaps between different
// owners must attach exactly the sum of both swap prices; each priced side is
// split into a platform fee of feePercent (floor division) and a seller
// share, both credited to the escrow ledger. The version counter advances by
// one on success. Every check runs before any state is touched so a failed
// call mutates nothing.
func (e *Engine) Swap(caller [20]byte, a, b types.TokenID, value *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("%w: %d", ErrSelfSwap, a)
	}
	value = cloneBigInt(value)
	if value.Sign() < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidPayment)
	}

	ownerA, err := e.ownerOf(a)
	if err != nil {
		return err
	}
	ownerB, err := e.ownerOf(b)
	if err != nil {
		return err
	}
	for _, pair := range []struct {
		id    types.TokenID
		owner [20]byte
	}{{a, ownerA}, {b, ownerB}} {
		authorized, err := e.isAuthorized(caller, pair.owner, pair.id)
		if err != nil {
			return err
		}
		if !authorized {
			return fmt.Errorf("%w: token %d", ErrUnauthorized, pair.id)
		}
	}

	required := big.NewInt(0)
	var priceA, priceB *big.Int
	if ownerA == ownerB {
		if value.Sign() > 0 {
			return ErrPaymentNotExpected
		}
	} else {
		priceA, err = e.state.SwapPriceGet(a)
		if err != nil {
			return err
		}
		priceB, err = e.state.SwapPriceGet(b)
		if err != nil {
			return err
		}
		required = new(big.Int).Add(priceA, priceB)
		if value.Cmp(required) != 0 {
			return ErrPaymentMismatch
		}
	}

	posA, okA, err := e.state.PositionGet(a)
	if err != nil {
		return err
	}
	posB, okB, err := e.state.PositionGet(b)
	if err != nil {
		return err
	}
	if !okA || !okB {
		return fmt.Errorf("%w: token without coordinate", ErrNotFound)
	}

	if required.Sign() > 0 {
		if e.escrow == nil {
			return errNilEscrow
		}
		ok, err := bank.CanSpend(e.state, caller, value)
		if err != nil {
			return err
		}
		if !ok {
			return bank.ErrInsufficientFunds
		}
		// Validation is complete; mutations start here.
		if err := bank.Debit(e.state, caller, value); err != nil {
			return err
		}
		for _, side := range []struct {
			price *big.Int
			owner [20]byte
		}{{priceA, ownerA}, {priceB, ownerB}} {
			if side.price == nil || side.price.Sign() == 0 {
				continue
			}
			fee := new(big.Int).Mul(side.price, new(big.Int).SetUint64(uint64(e.feePercent)))
			fee.Div(fee, big.NewInt(100))
			if err := e.escrow.Credit(e.platform, fee); err != nil {
				return err
			}
			if err := e.escrow.Credit(side.owner, new(big.Int).Sub(side.price, fee)); err != nil {
				return err
			}
		}
	}

	if err := e.state.PositionPut(a, posB); err != nil {
		return err
	}
	if err := e.state.PositionPut(b, posA); err != nil {
		return err
	}

	version, _, err := e.state.VersionGet()
	if err != nil {
		return err
	}
	if err := e.state.VersionPut(version + 1); err != nil {
		return err
	}
	e.emit(NewSwappedEvent(caller, a, b))
	return nil
}
