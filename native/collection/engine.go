package collection

import (
	"fmt"
	"math/big"
	"time"

	"modelmarket/core/events"
	"modelmarket/core/types"
	"modelmarket/native/token"
)

// DefaultReferralWindow is the span after collection creation during which a
// recorded referrer earns a dividend share.
const DefaultReferralWindow = 365 * 24 * time.Hour

// State is the persistence surface the engine requires. Asset ids come from a
// single monotonic counter shared by all collections.
type State interface {
	CollectionGet(addr types.Address) (*Collection, bool, error)
	CollectionPut(*Collection) error
	AssetGet(id uint64) (*Asset, bool, error)
	AssetPut(*Asset) error
	AssetCounterNext() (uint64, error)
}

// RegistryView is the slice of registry state consulted at purchase time.
type RegistryView interface {
	FeeSplitter() types.Address
	FarmAddress() types.Address
	IsBlacklisted(addr types.Address) bool
}

// Engine wires the per-collection catalog, purchase accounting, and asset
// ledger with persistence, the payment-token adapter, and event emission.
type Engine struct {
	st             State
	registry       RegistryView
	tokens         token.Adapter
	emitter        events.Emitter
	nowFn          func() int64
	referralWindow int64
}

// NewEngine constructs a collection engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:        events.NoopEmitter{},
		nowFn:          func() int64 { return time.Now().Unix() },
		referralWindow: int64(DefaultReferralWindow / time.Second),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(st State) { e.st = st }

// SetRegistry configures the registry view consulted at purchase time.
func (e *Engine) SetRegistry(view RegistryView) { e.registry = view }

// SetTokens configures the payment-token adapter.
func (e *Engine) SetTokens(adapter token.Adapter) { e.tokens = adapter }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for referral-window checks.
// Primarily intended for deterministic tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetReferralWindow overrides the referral-dividend window. Non-positive
// durations restore the default.
func (e *Engine) SetReferralWindow(window time.Duration) {
	if window <= 0 {
		window = DefaultReferralWindow
	}
	e.referralWindow = int64(window / time.Second)
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// Deploy creates the collection instance bound to an operator. The address is
// chosen by the registry; a second deployment against the same address fails
// with ErrAlreadyInitialized no matter who asks.
func (e *Engine) Deploy(addr, operator, referrer types.Address, name, description, gender string) error {
	if e == nil || e.st == nil {
		return errNilState
	}
	if _, ok, err := e.st.CollectionGet(addr); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	c := &Collection{
		Address:     addr,
		Operator:    operator,
		Name:        name,
		Description: description,
		Gender:      gender,
		Referrer:    referrer,
		CreatedAt:   e.now(),
	}
	if err := e.st.CollectionPut(c); err != nil {
		return err
	}
	e.emit(deployedEvent(addr, operator, referrer))
	return nil
}

// Collection returns a copy of the collection stored at the address.
func (e *Engine) Collection(addr types.Address) (*Collection, error) {
	c, err := e.load(addr)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

func (e *Engine) load(addr types.Address) (*Collection, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	c, ok, err := e.st.CollectionGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok || c == nil {
		return nil, ErrUnknownCollection
	}
	return c, nil
}

// AddNft appends a catalog entry. Operator only; the entry starts with the
// full supply remaining and nothing minted.
func (e *Engine) AddNft(caller, addr types.Address, uri string, kind token.Kind, price *big.Int, supply uint64) (int, error) {
	c, err := e.load(addr)
	if err != nil {
		return 0, err
	}
	if caller != c.Operator {
		return 0, ErrUnauthorized
	}
	if !kind.Valid() {
		return 0, token.ErrUnknownKind
	}
	if price == nil || price.Sign() < 0 {
		return 0, ErrInvalidPrice
	}
	entry := Entry{
		URI:             uri,
		Token:           kind,
		Price:           new(big.Int).Set(price),
		RemainingSupply: supply,
	}
	c.Catalog = append(c.Catalog, entry)
	if err := e.st.CollectionPut(c); err != nil {
		return 0, err
	}
	index := len(c.Catalog) - 1
	e.emit(nftAddedEvent(addr, index, uri, entry.Price.String()))
	return index, nil
}

// referralActive reports whether a purchase on the collection still pays the
// referral dividend: a referrer must have been recorded at creation, the
// referrer must not be blacklisted, and the referral window must not have
// elapsed.
func (e *Engine) referralActive(c *Collection) bool {
	if c.Referrer.IsZero() {
		return false
	}
	if e.registry.IsBlacklisted(c.Referrer) {
		return false
	}
	return e.now()-c.CreatedAt <= e.referralWindow
}

// PurchaseNft executes the full purchase protocol for the catalog entry at
// index: validate, pull exactly the price from the payer, distribute the fee
// split, decrement supply, and mint a uniquely identified asset whose URI is
// snapshotted from the entry. The returned id is a pure function of pre-state
// plus inputs.
func (e *Engine) PurchaseNft(payer, addr types.Address, index int) (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	if e.tokens == nil {
		return 0, errNilTokens
	}
	if e.registry == nil {
		return 0, errNilRegistry
	}
	c, err := e.load(addr)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(c.Catalog) {
		return 0, ErrInvalidIndex
	}
	entry := &c.Catalog[index]
	if entry.RemainingSupply == 0 {
		return 0, ErrSoldOut
	}

	lane := ResolveLane(entry.Token, e.referralActive(c))
	split := SplitPrice(entry.Price, lane)

	// Pull the full price into the collection before touching any local
	// state. The payer must have approved the collection address beforehand.
	if err := e.tokens.TransferFrom(entry.Token, addr, payer, addr, entry.Price); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	feeRecipient := e.registry.FeeSplitter()
	if lane == LanePrimary {
		feeRecipient = e.registry.FarmAddress()
	}
	if err := e.tokens.Transfer(entry.Token, addr, feeRecipient, split.Fee); err != nil {
		return 0, err
	}
	if split.Dividend.Sign() > 0 {
		if err := e.tokens.Transfer(entry.Token, addr, c.Referrer, split.Dividend); err != nil {
			return 0, err
		}
	}
	if err := e.tokens.Transfer(entry.Token, addr, c.Operator, split.Operator); err != nil {
		return 0, err
	}

	entry.RemainingSupply--
	entry.TotalMinted++
	if err := e.st.CollectionPut(c); err != nil {
		return 0, err
	}

	id, err := e.st.AssetCounterNext()
	if err != nil {
		return 0, err
	}
	asset := &Asset{
		ID:         id,
		Collection: addr,
		Owner:      payer,
		URI:        entry.URI,
		MintedAt:   e.now(),
	}
	if err := e.st.AssetPut(asset); err != nil {
		return 0, err
	}
	e.emit(nftPurchasedEvent(addr, payer, id, lane, entry.Price.String()))
	return id, nil
}
