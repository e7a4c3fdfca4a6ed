package core

import (
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"time"

	"modelmarket/core/events"
	"modelmarket/core/state"
	"modelmarket/core/types"
	"modelmarket/native/collection"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/observability"
	"modelmarket/storage"
)

// TokenAlloc seeds a payment-token balance at first start.
type TokenAlloc struct {
	Account types.Address
	Kind    token.Kind
	Amount  *big.Int
}

// Node owns the state manager, the engines, and the single mutex that
// establishes the global sequential ordering of operations. Every mutating
// entry point runs under a state snapshot: the operation either commits fully
// or reverts with no effects.
type Node struct {
	mu          sync.Mutex
	mgr         *state.Manager
	registry    *registry.Registry
	collections *collection.Engine
	tokens      *token.Ledger
	log         *slog.Logger
}

type payloadEvent interface {
	Event() *types.Event
}

type nodeEmitter struct {
	log     *slog.Logger
	metrics *observability.MarketMetrics
}

func (e nodeEmitter) Emit(evt events.Event) {
	payload, ok := evt.(payloadEvent)
	if !ok || payload.Event() == nil {
		return
	}
	raw := payload.Event()
	attrs := make([]any, 0, len(raw.Attributes)*2)
	for k, v := range raw.Attributes {
		attrs = append(attrs, slog.String(k, v))
	}
	if e.log != nil {
		e.log.Info(raw.Type, attrs...)
	}
	switch raw.Type {
	case collection.EventTypeNftPurchased:
		price, _ := strconv.ParseFloat(raw.Attributes["price"], 64)
		e.metrics.ObservePurchase(raw.Attributes["lane"], price)
	case registry.EventTypeCollectionCreated:
		e.metrics.ObserveCollectionCreated()
	}
}

// NewNode wires the engines over the supplied database.
func NewNode(db storage.Database, log *slog.Logger) *Node {
	mgr := state.NewManager(db)
	tokens := token.NewLedger(mgr)
	emitter := nodeEmitter{log: log, metrics: observability.Metrics()}

	reg := registry.New()
	reg.SetState(mgr)
	reg.SetEmitter(emitter)

	col := collection.NewEngine()
	col.SetState(mgr)
	col.SetRegistry(reg)
	col.SetTokens(tokens)
	col.SetEmitter(emitter)

	reg.SetDeployer(col)

	return &Node{
		mgr:         mgr,
		registry:    reg,
		collections: col,
		tokens:      tokens,
		log:         log,
	}
}

// Registry exposes the registry engine for read paths.
func (n *Node) Registry() *registry.Registry { return n.registry }

// Collections exposes the collection engine for read paths.
func (n *Node) Collections() *collection.Engine { return n.collections }

// SetNowFunc overrides the time source of both engines. For tests.
func (n *Node) SetNowFunc(now func() int64) {
	n.registry.SetNowFunc(now)
	n.collections.SetNowFunc(now)
}

// withWrite runs a mutating operation inside the transaction boundary: lock,
// snapshot, apply, and commit on success or revert every staged write on
// failure.
func (n *Node) withWrite(fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap := n.mgr.Snapshot()
	if err := fn(); err != nil {
		n.mgr.RevertTo(snap)
		return err
	}
	return n.mgr.Commit()
}

// Bootstrap initializes the registry parameters and applies genesis token
// allocations exactly once; subsequent starts are no-ops for both.
func (n *Node) Bootstrap(params *registry.Params, referralWindow time.Duration, allocs []TokenAlloc) error {
	n.collections.SetReferralWindow(referralWindow)
	return n.withWrite(func() error {
		initialized, err := n.registry.Initialized()
		if err != nil {
			return err
		}
		if !initialized {
			if err := n.registry.Initialize(params); err != nil {
				return err
			}
		}
		applied, err := n.mgr.GenesisApplied()
		if err != nil {
			return err
		}
		if !applied {
			for _, alloc := range allocs {
				if err := n.tokens.Mint(alloc.Kind, alloc.Account, alloc.Amount); err != nil {
					return err
				}
			}
			n.mgr.MarkGenesisApplied()
		}
		return nil
	})
}

// --- registry operations ---

func (n *Node) VerifyModel(caller, account types.Address) error {
	return n.withWrite(func() error {
		return n.registry.VerifyModel(caller, account)
	})
}

func (n *Node) NewCollection(caller types.Address, name, description, gender string, referrer types.Address, salt string) (types.Address, error) {
	var addr types.Address
	err := n.withWrite(func() error {
		var innerErr error
		addr, innerErr = n.registry.NewCollection(caller, name, description, gender, referrer, salt)
		return innerErr
	})
	if err != nil {
		return types.ZeroAddress, err
	}
	return addr, nil
}

func (n *Node) Blacklist(caller, account types.Address) error {
	return n.withWrite(func() error {
		return n.registry.Blacklist(caller, account)
	})
}

func (n *Node) SetFeeAggregator(caller, addr types.Address) error {
	return n.withWrite(func() error { return n.registry.SetFeeAggregator(caller, addr) })
}

func (n *Node) SetFarmAddress(caller, addr types.Address) error {
	return n.withWrite(func() error { return n.registry.SetFarmAddress(caller, addr) })
}

func (n *Node) SetFeeSplitter(caller, addr types.Address) error {
	return n.withWrite(func() error { return n.registry.SetFeeSplitter(caller, addr) })
}

func (n *Node) SetPlatform(caller, addr types.Address) error {
	return n.withWrite(func() error { return n.registry.SetPlatform(caller, addr) })
}

func (n *Node) ModelContract(account types.Address) (types.Address, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.ModelContract(account)
}

func (n *Node) PaymentTokens() (string, string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.PaymentTokens()
}

// --- collection operations ---

func (n *Node) AddNft(caller, addr types.Address, uri string, kind token.Kind, price *big.Int, supply uint64) (int, error) {
	var index int
	err := n.withWrite(func() error {
		var innerErr error
		index, innerErr = n.collections.AddNft(caller, addr, uri, kind, price, supply)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

func (n *Node) PurchaseNft(payer, addr types.Address, index int) (uint64, error) {
	var id uint64
	err := n.withWrite(func() error {
		var innerErr error
		id, innerErr = n.collections.PurchaseNft(payer, addr, index)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (n *Node) ApproveAsset(caller types.Address, id uint64, spender types.Address) error {
	return n.withWrite(func() error { return n.collections.ApproveAsset(caller, id, spender) })
}

func (n *Node) TransferAsset(caller types.Address, id uint64, to types.Address) error {
	return n.withWrite(func() error { return n.collections.TransferAsset(caller, id, to) })
}

func (n *Node) Collection(addr types.Address) (*collection.Collection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.collections.Collection(addr)
}

func (n *Node) TokenURI(id uint64) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.collections.TokenURI(id)
}

func (n *Node) OwnerOf(id uint64) (types.Address, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.collections.OwnerOf(id)
}

// --- token operations ---

func (n *Node) TokenApprove(kind token.Kind, owner, spender types.Address, amount *big.Int) error {
	return n.withWrite(func() error { return n.tokens.Approve(kind, owner, spender, amount) })
}

func (n *Node) TokenTransfer(kind token.Kind, from, to types.Address, amount *big.Int) error {
	return n.withWrite(func() error { return n.tokens.Transfer(kind, from, to, amount) })
}

func (n *Node) TokenBalanceOf(kind token.Kind, account types.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.BalanceOf(kind, account)
}

func (n *Node) TokenAllowance(kind token.Kind, owner, spender types.Address) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens.Allowance(kind, owner, spender)
}
