package state

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"modelmarket/core/types"
	"modelmarket/native/collection"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/storage"
)

// Key layout. Every record is a JSON document; the asset counter is a
// big-endian uint64.
const (
	keyRegistryParams = "registry/params"
	keyOperatorPrefix = "registry/operator/"
	keyCollection     = "collection/"
	keyAssetPrefix    = "asset/"
	keyAssetCounter   = "asset/counter"
	keyBalancePrefix  = "token/balance/"
	keyAllowPrefix    = "token/allowance/"
	keyGenesisApplied = "genesis/applied"
)

// Manager is the typed entity store backing every engine. Writes are buffered
// in an overlay until Commit, so a caller can snapshot before an operation and
// revert every mutation if the operation fails partway. Nothing reaches the
// database until Commit.
type Manager struct {
	db      storage.Database
	overlay map[string][]byte
	deleted map[string]struct{}
}

// Snapshot captures the overlay at a point in time for a later RevertTo.
type Snapshot struct {
	overlay map[string][]byte
	deleted map[string]struct{}
}

// NewManager constructs a manager over the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{
		db:      db,
		overlay: make(map[string][]byte),
		deleted: make(map[string]struct{}),
	}
}

// Snapshot returns a copy of the pending overlay. Reverting to it discards
// every write staged after this call.
func (m *Manager) Snapshot() *Snapshot {
	snap := &Snapshot{
		overlay: make(map[string][]byte, len(m.overlay)),
		deleted: make(map[string]struct{}, len(m.deleted)),
	}
	for k, v := range m.overlay {
		snap.overlay[k] = v
	}
	for k := range m.deleted {
		snap.deleted[k] = struct{}{}
	}
	return snap
}

// RevertTo discards all writes staged after the snapshot was taken.
func (m *Manager) RevertTo(snap *Snapshot) {
	if snap == nil {
		m.overlay = make(map[string][]byte)
		m.deleted = make(map[string]struct{})
		return
	}
	m.overlay = make(map[string][]byte, len(snap.overlay))
	m.deleted = make(map[string]struct{}, len(snap.deleted))
	for k, v := range snap.overlay {
		m.overlay[k] = v
	}
	for k := range snap.deleted {
		m.deleted[k] = struct{}{}
	}
}

// Commit flushes the overlay to the database and clears it.
func (m *Manager) Commit() error {
	for k := range m.deleted {
		if err := m.db.Delete([]byte(k)); err != nil {
			return fmt.Errorf("state: commit delete %q: %w", k, err)
		}
	}
	for k, v := range m.overlay {
		if err := m.db.Put([]byte(k), v); err != nil {
			return fmt.Errorf("state: commit put %q: %w", k, err)
		}
	}
	m.overlay = make(map[string][]byte)
	m.deleted = make(map[string]struct{})
	return nil
}

func (m *Manager) rawGet(key string) ([]byte, bool, error) {
	if v, ok := m.overlay[key]; ok {
		return v, true, nil
	}
	if _, ok := m.deleted[key]; ok {
		return nil, false, nil
	}
	v, err := m.db.Get([]byte(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (m *Manager) rawPut(key string, value []byte) {
	delete(m.deleted, key)
	m.overlay[key] = value
}

func (m *Manager) getJSON(key string, out interface{}) (bool, error) {
	raw, ok, err := m.rawGet(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

func (m *Manager) putJSON(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	m.rawPut(key, raw)
	return nil
}

// --- registry.State ---

func (m *Manager) RegistryParamsGet() (*registry.Params, bool, error) {
	params := new(registry.Params)
	ok, err := m.getJSON(keyRegistryParams, params)
	if err != nil || !ok {
		return nil, false, err
	}
	return params, true, nil
}

func (m *Manager) RegistryParamsPut(params *registry.Params) error {
	if params == nil {
		return errors.New("state: nil registry params")
	}
	return m.putJSON(keyRegistryParams, params)
}

func operatorKey(addr types.Address) string {
	return keyOperatorPrefix + addr.Hex()
}

func (m *Manager) OperatorGet(addr types.Address) (*registry.Operator, bool, error) {
	op := new(registry.Operator)
	ok, err := m.getJSON(operatorKey(addr), op)
	if err != nil || !ok {
		return nil, false, err
	}
	return op, true, nil
}

func (m *Manager) OperatorPut(op *registry.Operator) error {
	if op == nil {
		return errors.New("state: nil operator")
	}
	return m.putJSON(operatorKey(op.Address), op.Clone())
}

// --- collection.State ---

func collectionKey(addr types.Address) string {
	return keyCollection + addr.Hex()
}

func (m *Manager) CollectionGet(addr types.Address) (*collection.Collection, bool, error) {
	c := new(collection.Collection)
	ok, err := m.getJSON(collectionKey(addr), c)
	if err != nil || !ok {
		return nil, false, err
	}
	return c, true, nil
}

func (m *Manager) CollectionPut(c *collection.Collection) error {
	if c == nil {
		return errors.New("state: nil collection")
	}
	return m.putJSON(collectionKey(c.Address), c.Clone())
}

func assetKey(id uint64) string {
	return fmt.Sprintf("%s%020d", keyAssetPrefix, id)
}

func (m *Manager) AssetGet(id uint64) (*collection.Asset, bool, error) {
	asset := new(collection.Asset)
	ok, err := m.getJSON(assetKey(id), asset)
	if err != nil || !ok {
		return nil, false, err
	}
	return asset, true, nil
}

func (m *Manager) AssetPut(asset *collection.Asset) error {
	if asset == nil {
		return errors.New("state: nil asset")
	}
	return m.putJSON(assetKey(asset.ID), asset.Clone())
}

// AssetCounterNext advances the global asset id counter and returns the next
// id. Ids start at 1 and are never reused.
func (m *Manager) AssetCounterNext() (uint64, error) {
	raw, ok, err := m.rawGet(keyAssetCounter)
	if err != nil {
		return 0, err
	}
	var last uint64
	if ok && len(raw) == 8 {
		last = binary.BigEndian.Uint64(raw)
	}
	next := last + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	m.rawPut(keyAssetCounter, buf)
	return next, nil
}

// --- token.State ---

func balanceKey(kind token.Kind, account types.Address) string {
	return fmt.Sprintf("%s%s/%s", keyBalancePrefix, kind, account.Hex())
}

func allowanceKey(kind token.Kind, owner, spender types.Address) string {
	return fmt.Sprintf("%s%s/%s/%s", keyAllowPrefix, kind, owner.Hex(), spender.Hex())
}

func (m *Manager) bigGet(key string) (*big.Int, error) {
	raw, ok, err := m.rawGet(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	v := new(big.Int)
	if err := v.UnmarshalText(raw); err != nil {
		return nil, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return v, nil
}

func (m *Manager) bigPut(key string, v *big.Int) error {
	if v == nil {
		v = big.NewInt(0)
	}
	raw, err := v.MarshalText()
	if err != nil {
		return err
	}
	m.rawPut(key, raw)
	return nil
}

func (m *Manager) TokenBalanceGet(kind token.Kind, account types.Address) (*big.Int, error) {
	return m.bigGet(balanceKey(kind, account))
}

func (m *Manager) TokenBalancePut(kind token.Kind, account types.Address, amount *big.Int) error {
	return m.bigPut(balanceKey(kind, account), amount)
}

func (m *Manager) TokenAllowanceGet(kind token.Kind, owner, spender types.Address) (*big.Int, error) {
	return m.bigGet(allowanceKey(kind, owner, spender))
}

func (m *Manager) TokenAllowancePut(kind token.Kind, owner, spender types.Address, amount *big.Int) error {
	return m.bigPut(allowanceKey(kind, owner, spender), amount)
}

// --- bootstrap bookkeeping ---

// GenesisApplied reports whether genesis allocations have been applied.
func (m *Manager) GenesisApplied() (bool, error) {
	_, ok, err := m.rawGet(keyGenesisApplied)
	return ok, err
}

// MarkGenesisApplied records that genesis allocations ran.
func (m *Manager) MarkGenesisApplied() {
	m.rawPut(keyGenesisApplied, []byte{1})
}
