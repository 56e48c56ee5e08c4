package core

import (
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"palettecore/core/events"
	"palettecore/core/genesis"
	"palettecore/core/state"
	"palettecore/core/types"
	"palettecore/native/bank"
	"palettecore/native/escrow"
	"palettecore/native/palette"
	"palettecore/native/registry"
	"palettecore/observability/metrics"
	"palettecore/storage"
)

// Config carries the immutable parameters of a palette node.
type Config struct {
	// FeePercent is the platform share of every priced swap (0..100).
	FeePercent uint32
	// Platform receives swap fees and owns the genesis palette.
	Platform [20]byte
	// BaseMetadataURI prefixes token and contract metadata locations.
	BaseMetadataURI string
	// Operators is the trusted operator registry; nil disables the bypass.
	Operators registry.Operators
	// GenesisAlloc seeds spendable balances when the palette is created.
	GenesisAlloc map[[20]byte]*big.Int
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Node owns the entire palette state and serializes every operation behind a
// single mutex: each call runs to completion before the next begins, so all
// operations appear atomic to one another. The domain is custody and money;
// interleaved partial updates are not tolerable.
type Node struct {
	mu       sync.Mutex
	state    *state.Manager
	registry *registry.Registry
	engine   *palette.Engine
	ledger   *escrow.Ledger
	hub      *events.Hub
	logger   *slog.Logger
	metrics  *metrics.PaletteMetrics
}

// NewNode wires the state manager, ownership registry, swap engine and
// escrow ledger over the provided database, applying the genesis palette on
// first start.
func NewNode(db storage.Database, cfg Config) (*Node, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	manager := state.NewManager(db)
	hub := events.NewHub()

	reg := registry.NewRegistry()
	reg.SetState(manager)
	reg.SetOperators(cfg.Operators)
	reg.SetEmitter(hub)
	reg.SetBaseURI(cfg.BaseMetadataURI)

	ledger := escrow.NewLedger(manager)
	ledger.SetEmitter(hub)
	ledger.SetPayout(func(beneficiary [20]byte, amount *big.Int) error {
		return bank.Credit(manager, beneficiary, amount)
	})

	engine, err := palette.NewEngine(cfg.FeePercent, cfg.Platform)
	if err != nil {
		return nil, err
	}
	engine.SetState(manager)
	engine.SetOwnership(reg)
	engine.SetOperators(cfg.Operators)
	engine.SetEscrow(ledger)
	engine.SetEmitter(hub)

	// Custody changes invalidate swap delegations immediately.
	reg.RegisterTransferHook(func(id types.TokenID, from, to [20]byte) error {
		if from == to {
			return nil
		}
		return engine.ClearSwapApproval(id)
	})

	node := &Node{
		state:    manager,
		registry: reg,
		engine:   engine,
		ledger:   ledger,
		hub:      hub,
		logger:   logger,
		metrics:  metrics.Palette(),
	}

	if _, ok, err := manager.VersionGet(); err != nil {
		return nil, err
	} else if !ok {
		if err := genesis.Apply(manager, reg, cfg.Platform, cfg.GenesisAlloc); err != nil {
			return nil, err
		}
		logger.Info("genesis palette applied",
			"colors", len(genesis.DefaultPalette()),
			"feePercent", cfg.FeePercent,
		)
	}
	return node, nil
}

// SubscribeEvents registers an event subscriber; the cancel function must be
// invoked when the subscriber is done.
func (n *Node) SubscribeEvents() (<-chan events.Event, func()) {
	return n.hub.Subscribe()
}

func swapRejectionReason(err error) string {
	switch {
	case errors.Is(err, palette.ErrNotFound):
		return "not_found"
	case errors.Is(err, palette.ErrSelfSwap):
		return "self_swap"
	case errors.Is(err, palette.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, palette.ErrInvalidPayment):
		return "invalid_payment"
	case errors.Is(err, bank.ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "internal"
	}
}

// Swap exchanges the grid positions of two tokens on behalf of the caller,
// settling any required payment through the escrow ledger.
func (n *Node) Swap(caller [20]byte, a, b types.TokenID, value *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.engine.Swap(caller, a, b, value); err != nil {
		n.metrics.ObserveSwapRejected(swapRejectionReason(err))
		return err
	}
	n.metrics.ObserveSwap()
	n.logger.Debug("swap completed", "tokenA", uint64(a), "tokenB", uint64(b))
	return nil
}

// PositionOf returns the coordinate of an existing token.
func (n *Node) PositionOf(id types.TokenID) (types.Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.PositionOf(id)
}

// ApproveSwap delegates swap rights on a token to another account.
func (n *Node) ApproveSwap(caller, delegate [20]byte, id types.TokenID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.ApproveSwap(caller, delegate, id)
}

// SwapApproved returns the current swap delegate for a token, if any.
func (n *Node) SwapApproved(id types.TokenID) ([20]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SwapApproved(id)
}

// SetSwapPrice sets the token's swap price; zero makes it free again.
func (n *Node) SetSwapPrice(caller [20]byte, id types.TokenID, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SetSwapPrice(caller, id, amount)
}

// SwapPrice returns the token's swap price, zero by default.
func (n *Node) SwapPrice(id types.TokenID) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.SwapPrice(id)
}

// Version returns the palette change counter.
func (n *Node) Version() (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.engine.Version()
}

// Payments returns the escrow balance withdrawable by the account.
func (n *Node) Payments(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.BalanceOf(addr)
}

// Withdraw pays out the beneficiary's full escrow balance and returns the
// amount moved. Anyone may trigger a withdrawal; funds always reach the
// named beneficiary.
func (n *Node) Withdraw(beneficiary [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	amount, err := n.ledger.Withdraw(beneficiary)
	if err != nil {
		return nil, err
	}
	if amount.Sign() > 0 {
		n.metrics.ObserveWithdrawal()
		n.logger.Debug("escrow withdrawn", "amount", amount.String())
	}
	return amount, nil
}

// CashBalance returns the spendable balance of an account.
func (n *Node) CashBalance(addr [20]byte) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return bank.BalanceOf(n.state, addr)
}

// OwnerOf returns the current owner of a token.
func (n *Node) OwnerOf(id types.TokenID) ([20]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.OwnerOf(id)
}

// Exists reports whether the token has been minted.
func (n *Node) Exists(id types.TokenID) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.Exists(id)
}

// BalanceOf returns the number of tokens held by an address.
func (n *Node) BalanceOf(addr [20]byte) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.BalanceOf(addr)
}

// TransferFrom moves token custody; the transfer hook clears any swap
// delegation as part of the same serialized operation.
func (n *Node) TransferFrom(caller, from, to [20]byte, id types.TokenID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.registry.TransferFrom(caller, from, to, id); err != nil {
		return err
	}
	n.metrics.ObserveTransfer()
	return nil
}

// Approve records a transfer approval on a token.
func (n *Node) Approve(caller, approved [20]byte, id types.TokenID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.Approve(caller, approved, id)
}

// Approved returns the transfer-approved account for a token, if any.
func (n *Node) Approved(id types.TokenID) ([20]byte, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.Approved(id)
}

// TokenURI returns the metadata location of a minted token.
func (n *Node) TokenURI(id types.TokenID) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.TokenURI(id)
}

// ContractURI returns the metadata location of the collection.
func (n *Node) ContractURI() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.ContractURI()
}
