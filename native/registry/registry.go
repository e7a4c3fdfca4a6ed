package registry

import (
	"crypto/sha256"
	"strings"
	"time"

	"modelmarket/core/events"
	"modelmarket/core/types"
)

// State is the persistence surface the registry requires.
type State interface {
	RegistryParamsGet() (*Params, bool, error)
	RegistryParamsPut(*Params) error
	OperatorGet(addr types.Address) (*Operator, bool, error)
	OperatorPut(*Operator) error
}

// CollectionDeployer instantiates a collection bound to an operator. The
// concrete implementation lives in the collection engine; the registry only
// decides whether a deployment may happen and under which address.
type CollectionDeployer interface {
	Deploy(addr, operator, referrer types.Address, name, description, gender string) error
}

// Registry is the single process-wide authority over operator verification,
// collection provisioning, the blacklist, and the global routing addresses.
type Registry struct {
	st       State
	deployer CollectionDeployer
	emitter  events.Emitter
	nowFn    func() int64
}

// New constructs a registry with a no-op emitter.
func New() *Registry {
	return &Registry{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(st State) { r.st = st }

// SetDeployer configures the collection deployer.
func (r *Registry) SetDeployer(d CollectionDeployer) { r.deployer = d }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for deterministic
// tests.
func (r *Registry) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

func (r *Registry) emit(evt *types.Event) {
	if r == nil || r.emitter == nil || evt == nil {
		return
	}
	r.emitter.Emit(WrapEvent(evt))
}

func (r *Registry) now() int64 {
	if r == nil || r.nowFn == nil {
		return time.Now().Unix()
	}
	return r.nowFn()
}

// Initialize stores the process-wide parameters. Callable exactly once.
func (r *Registry) Initialize(params *Params) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if params == nil {
		return ErrNotInitialized
	}
	if _, ok, err := r.st.RegistryParamsGet(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	sanitized := params.Clone()
	sanitized.PrimaryToken = strings.ToUpper(strings.TrimSpace(sanitized.PrimaryToken))
	sanitized.SecondaryToken = strings.ToUpper(strings.TrimSpace(sanitized.SecondaryToken))
	return r.st.RegistryParamsPut(sanitized)
}

// Initialized reports whether the registry parameters have been stored.
func (r *Registry) Initialized() (bool, error) {
	if r == nil || r.st == nil {
		return false, errNilState
	}
	_, ok, err := r.st.RegistryParamsGet()
	return ok, err
}

func (r *Registry) params() (*Params, error) {
	if r == nil || r.st == nil {
		return nil, errNilState
	}
	params, ok, err := r.st.RegistryParamsGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return params, nil
}

func (r *Registry) requireAdmin(caller types.Address) (*Params, error) {
	params, err := r.params()
	if err != nil {
		return nil, err
	}
	if caller != params.Admin {
		return nil, ErrUnauthorized
	}
	return params, nil
}

func (r *Registry) loadOperator(addr types.Address) (*Operator, error) {
	op, ok, err := r.st.OperatorGet(addr)
	if err != nil {
		return nil, err
	}
	if !ok || op == nil {
		return &Operator{Address: addr}, nil
	}
	return op, nil
}

// VerifyModel marks an account as eligible to provision exactly one
// collection. Administrator only; idempotent.
func (r *Registry) VerifyModel(caller, account types.Address) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if _, err := r.requireAdmin(caller); err != nil {
		return err
	}
	op, err := r.loadOperator(account)
	if err != nil {
		return err
	}
	if op.Verified {
		return nil
	}
	op.Verified = true
	op.VerifiedAt = r.now()
	if err := r.st.OperatorPut(op); err != nil {
		return err
	}
	r.emit(modelVerifiedEvent(account))
	return nil
}

// CollectionAddress derives the deterministic address a collection provisioned
// by the operator with the given salt will live at.
func CollectionAddress(operator types.Address, salt string) types.Address {
	h := sha256.New()
	h.Write(operator[:])
	h.Write([]byte(salt))
	var addr types.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// NewCollection provisions a collection for a verified, not-yet-provisioned
// operator. The referrer is recorded only when non-zero and distinct from the
// operator; the binding is permanent.
func (r *Registry) NewCollection(caller types.Address, name, description, gender string, referrer types.Address, salt string) (types.Address, error) {
	if r == nil || r.st == nil {
		return types.ZeroAddress, errNilState
	}
	if r.deployer == nil {
		return types.ZeroAddress, errNilDeployer
	}
	if _, err := r.params(); err != nil {
		return types.ZeroAddress, err
	}
	op, err := r.loadOperator(caller)
	if err != nil {
		return types.ZeroAddress, err
	}
	if !op.Verified {
		return types.ZeroAddress, ErrNotVerified
	}
	if !op.Collection.IsZero() {
		return types.ZeroAddress, ErrAlreadyProvisioned
	}
	if referrer == caller {
		referrer = types.ZeroAddress
	}
	addr := CollectionAddress(caller, salt)
	if err := r.deployer.Deploy(addr, caller, referrer, name, description, gender); err != nil {
		return types.ZeroAddress, err
	}
	op.Collection = addr
	if err := r.st.OperatorPut(op); err != nil {
		return types.ZeroAddress, err
	}
	r.emit(collectionCreatedEvent(caller, addr, referrer, name))
	return addr, nil
}

// ModelContract returns the collection bound to the account, or the zero
// address when none exists.
func (r *Registry) ModelContract(account types.Address) (types.Address, error) {
	if r == nil || r.st == nil {
		return types.ZeroAddress, errNilState
	}
	op, ok, err := r.st.OperatorGet(account)
	if err != nil {
		return types.ZeroAddress, err
	}
	if !ok || op == nil {
		return types.ZeroAddress, nil
	}
	return op.Collection, nil
}

// Blacklist flags an account. Blacklisted accounts keep their collection but
// lose referral-dividend eligibility. Administrator only; monotonic.
func (r *Registry) Blacklist(caller, account types.Address) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if _, err := r.requireAdmin(caller); err != nil {
		return err
	}
	op, err := r.loadOperator(account)
	if err != nil {
		return err
	}
	if op.Blacklisted {
		return nil
	}
	op.Blacklisted = true
	op.BlacklistedAt = r.now()
	if err := r.st.OperatorPut(op); err != nil {
		return err
	}
	r.emit(modelBlacklistedEvent(account))
	return nil
}

// IsBlacklisted reports the blacklist flag for an account.
func (r *Registry) IsBlacklisted(account types.Address) bool {
	if r == nil || r.st == nil {
		return false
	}
	op, ok, err := r.st.OperatorGet(account)
	if err != nil || !ok || op == nil {
		return false
	}
	return op.Blacklisted
}

// IsVerified reports the verification flag for an account.
func (r *Registry) IsVerified(account types.Address) bool {
	if r == nil || r.st == nil {
		return false
	}
	op, ok, err := r.st.OperatorGet(account)
	if err != nil || !ok || op == nil {
		return false
	}
	return op.Verified
}

func (r *Registry) setAddress(caller types.Address, field string, addr types.Address, assign func(*Params)) error {
	params, err := r.requireAdmin(caller)
	if err != nil {
		return err
	}
	updated := params.Clone()
	assign(updated)
	if err := r.st.RegistryParamsPut(updated); err != nil {
		return err
	}
	r.emit(addressUpdatedEvent(field, addr))
	return nil
}

// SetFeeAggregator updates the protocol-level fee-split recipient.
func (r *Registry) SetFeeAggregator(caller, addr types.Address) error {
	return r.setAddress(caller, "feeAggregator", addr, func(p *Params) { p.FeeAggregator = addr })
}

// SetFarmAddress updates the recipient of primary-token sale fees.
func (r *Registry) SetFarmAddress(caller, addr types.Address) error {
	return r.setAddress(caller, "farmAddress", addr, func(p *Params) { p.FarmAddress = addr })
}

// SetFeeSplitter updates the recipient of secondary-token sale fees.
func (r *Registry) SetFeeSplitter(caller, addr types.Address) error {
	return r.setAddress(caller, "feeSplitter", addr, func(p *Params) { p.FeeSplitter = addr })
}

// SetPlatform updates the platform address.
func (r *Registry) SetPlatform(caller, addr types.Address) error {
	return r.setAddress(caller, "platform", addr, func(p *Params) { p.Platform = addr })
}

// PaymentTokens returns the (primary, secondary) token symbols.
func (r *Registry) PaymentTokens() (string, string, error) {
	params, err := r.params()
	if err != nil {
		return "", "", err
	}
	return params.PrimaryToken, params.SecondaryToken, nil
}

// FeeSplitter returns the configured fee-splitter address, or the zero address
// before initialization.
func (r *Registry) FeeSplitter() types.Address {
	params, err := r.params()
	if err != nil {
		return types.ZeroAddress
	}
	return params.FeeSplitter
}

// FarmAddress returns the configured farm address, or the zero address before
// initialization.
func (r *Registry) FarmAddress() types.Address {
	params, err := r.params()
	if err != nil {
		return types.ZeroAddress
	}
	return params.FarmAddress
}

// Platform returns the configured platform address.
func (r *Registry) Platform() types.Address {
	params, err := r.params()
	if err != nil {
		return types.ZeroAddress
	}
	return params.Platform
}

// FeeAggregator returns the configured fee-aggregator address.
func (r *Registry) FeeAggregator() types.Address {
	params, err := r.params()
	if err != nil {
		return types.ZeroAddress
	}
	return params.FeeAggregator
}
