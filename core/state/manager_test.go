package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"modelmarket/core/types"
	"modelmarket/native/collection"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/storage"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func TestRegistryParamsRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	_, ok, err := mgr.RegistryParamsGet()
	require.NoError(t, err)
	require.False(t, ok)

	params := &registry.Params{
		Admin:          testAddr(1),
		PrimaryToken:   "MAIN",
		SecondaryToken: "ALT",
		FeeSplitter:    testAddr(2),
		FarmAddress:    testAddr(3),
	}
	require.NoError(t, mgr.RegistryParamsPut(params))
	loaded, ok, err := mgr.RegistryParamsGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, params, loaded)
}

func TestOperatorRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	op := &registry.Operator{
		Address:    testAddr(7),
		Verified:   true,
		VerifiedAt: 1_700_000_000,
		Collection: testAddr(8),
	}
	require.NoError(t, mgr.OperatorPut(op))
	loaded, ok, err := mgr.OperatorGet(testAddr(7))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, op, loaded)

	_, ok, err = mgr.OperatorGet(testAddr(9))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCollectionAndAssetRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	c := &collection.Collection{
		Address:   testAddr(1),
		Operator:  testAddr(2),
		Name:      "c",
		CreatedAt: 1_700_000_000,
		Catalog: []collection.Entry{{
			URI:             "https://nftaddress.io",
			Token:           token.KindSecondary,
			Price:           big.NewInt(100),
			RemainingSupply: 9,
			TotalMinted:     1,
		}},
	}
	require.NoError(t, mgr.CollectionPut(c))
	loaded, ok, err := mgr.CollectionGet(testAddr(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c, loaded)

	asset := &collection.Asset{ID: 1, Collection: testAddr(1), Owner: testAddr(3), URI: "https://nftaddress.io"}
	require.NoError(t, mgr.AssetPut(asset))
	loadedAsset, ok, err := mgr.AssetGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, asset, loadedAsset)
}

func TestAssetCounterMonotonic(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	for want := uint64(1); want <= 5; want++ {
		id, err := mgr.AssetCounterNext()
		require.NoError(t, err)
		require.Equal(t, want, id)
	}
}

func TestAssetCounterSurvivesCommit(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	_, err := mgr.AssetCounterNext()
	require.NoError(t, err)
	require.NoError(t, mgr.Commit())

	reopened := NewManager(db)
	id, err := reopened.AssetCounterNext()
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)
}

func TestTokenStateRoundTrip(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	bal, err := mgr.TokenBalanceGet(token.KindPrimary, testAddr(1))
	require.NoError(t, err)
	require.Zero(t, bal.Sign())

	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(1), big.NewInt(123)))
	bal, err = mgr.TokenBalanceGet(token.KindPrimary, testAddr(1))
	require.NoError(t, err)
	require.Equal(t, int64(123), bal.Int64())

	// Kinds partition the key space.
	other, err := mgr.TokenBalanceGet(token.KindSecondary, testAddr(1))
	require.NoError(t, err)
	require.Zero(t, other.Sign())

	require.NoError(t, mgr.TokenAllowancePut(token.KindPrimary, testAddr(1), testAddr(2), big.NewInt(7)))
	allowance, err := mgr.TokenAllowanceGet(token.KindPrimary, testAddr(1), testAddr(2))
	require.NoError(t, err)
	require.Equal(t, int64(7), allowance.Int64())
}

func TestSnapshotRevertDiscardsStagedWrites(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(1), big.NewInt(50)))
	require.NoError(t, mgr.Commit())

	snap := mgr.Snapshot()
	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(1), big.NewInt(10)))
	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(2), big.NewInt(40)))
	mgr.RevertTo(snap)

	bal, err := mgr.TokenBalanceGet(token.KindPrimary, testAddr(1))
	require.NoError(t, err)
	require.Equal(t, int64(50), bal.Int64())
	other, err := mgr.TokenBalanceGet(token.KindPrimary, testAddr(2))
	require.NoError(t, err)
	require.Zero(t, other.Sign())
}

func TestRevertKeepsEarlierStagedWrites(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(1), big.NewInt(50)))

	snap := mgr.Snapshot()
	require.NoError(t, mgr.TokenBalancePut(token.KindPrimary, testAddr(1), big.NewInt(99)))
	mgr.RevertTo(snap)

	bal, err := mgr.TokenBalanceGet(token.KindPrimary, testAddr(1))
	require.NoError(t, err)
	require.Equal(t, int64(50), bal.Int64())
}

func TestCommitPersists(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	require.NoError(t, mgr.OperatorPut(&registry.Operator{Address: testAddr(4), Verified: true}))

	// Uncommitted writes are invisible to a fresh manager over the same db.
	fresh := NewManager(db)
	_, ok, err := fresh.OperatorGet(testAddr(4))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mgr.Commit())
	loaded, ok, err := fresh.OperatorGet(testAddr(4))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, loaded.Verified)
}

func TestGenesisAppliedFlag(t *testing.T) {
	db := storage.NewMemDB()
	mgr := NewManager(db)
	applied, err := mgr.GenesisApplied()
	require.NoError(t, err)
	require.False(t, applied)

	mgr.MarkGenesisApplied()
	require.NoError(t, mgr.Commit())

	reopened := NewManager(db)
	applied, err = reopened.GenesisApplied()
	require.NoError(t, err)
	require.True(t, applied)
}

func TestPutClonesInput(t *testing.T) {
	mgr := NewManager(storage.NewMemDB())
	c := &collection.Collection{
		Address: testAddr(1),
		Catalog: []collection.Entry{{URI: "a", Price: big.NewInt(1), Token: token.KindSecondary}},
	}
	require.NoError(t, mgr.CollectionPut(c))
	c.Catalog[0].URI = "mutated"

	loaded, ok, err := mgr.CollectionGet(testAddr(1))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", loaded.Catalog[0].URI)
}
