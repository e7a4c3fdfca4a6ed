package rpc

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"modelmarket/core"
	"modelmarket/core/types"
	"modelmarket/native/collection"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/storage"
)

const testToken = "test-admin-token"

func testAddr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

var (
	adminAddr = testAddr(1)
	modelAddr = testAddr(2)
	buyerAddr = testAddr(3)
)

type rpcHarness struct {
	t      *testing.T
	server *httptest.Server
	node   *core.Node
}

func newRPCHarness(t *testing.T) *rpcHarness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	node := core.NewNode(storage.NewMemDB(), logger)
	params := &registry.Params{
		Admin:          adminAddr,
		PrimaryToken:   "MAIN",
		SecondaryToken: "ALT",
		FeeAggregator:  testAddr(10),
		FarmAddress:    testAddr(11),
		FeeSplitter:    testAddr(12),
		Platform:       testAddr(13),
	}
	allocs := []core.TokenAlloc{
		{Account: buyerAddr, Kind: token.KindSecondary, Amount: big.NewInt(1_000_000)},
	}
	require.NoError(t, node.Bootstrap(params, 365*24*time.Hour, allocs))

	srv := httptest.NewServer(NewServer(node, testToken).Router())
	t.Cleanup(srv.Close)
	return &rpcHarness{t: t, server: srv, node: node}
}

func (h *rpcHarness) call(method string, params interface{}, authToken string) RPCResponse {
	h.t.Helper()
	reqParams := []interface{}{}
	if params != nil {
		reqParams = append(reqParams, params)
	}
	payload, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  reqParams,
	})
	require.NoError(h.t, err)

	req, err := http.NewRequest(http.MethodPost, h.server.URL, bytes.NewReader(payload))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var decoded RPCResponse
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func (h *rpcHarness) mustResult(method string, params interface{}, authToken string, out interface{}) {
	h.t.Helper()
	resp := h.call(method, params, authToken)
	require.Nil(h.t, resp.Error, "method %s returned error: %+v", method, resp.Error)
	if out != nil {
		raw, err := json.Marshal(resp.Result)
		require.NoError(h.t, err)
		require.NoError(h.t, json.Unmarshal(raw, out))
	}
}

// provision verifies the model and provisions a collection over RPC, returning
// the collection address.
func (h *rpcHarness) provision() string {
	h.t.Helper()
	h.mustResult("market_verifyModel", map[string]string{
		"caller":  adminAddr.Hex(),
		"account": modelAddr.Hex(),
	}, testToken, nil)

	var result struct {
		Collection string `json:"collection"`
	}
	h.mustResult("market_newCollection", map[string]string{
		"caller":      modelAddr.Hex(),
		"name":        "Colonel Sanders",
		"description": "Finger lickin' good",
		"gender":      "male",
		"referrer":    "",
		"salt":        "salt",
	}, "", &result)
	require.NotEmpty(h.t, result.Collection)
	return result.Collection
}

func TestMethodNotFound(t *testing.T) {
	h := newRPCHarness(t)
	resp := h.call("market_bogus", nil, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestParseError(t *testing.T) {
	h := newRPCHarness(t)
	resp, err := h.server.Client().Post(h.server.URL, "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	var decoded RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.NotNil(t, decoded.Error)
	require.Equal(t, codeParseError, decoded.Error.Code)
}

func TestGetOnRPCEndpointRejected(t *testing.T) {
	h := newRPCHarness(t)
	resp, err := h.server.Client().Get(h.server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAdminMethodRequiresToken(t *testing.T) {
	h := newRPCHarness(t)
	params := map[string]string{"caller": adminAddr.Hex(), "account": modelAddr.Hex()}

	resp := h.call("market_verifyModel", params, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = h.call("market_verifyModel", params, "wrong-token")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = h.call("market_verifyModel", params, testToken)
	require.Nil(t, resp.Error)
}

func TestNonAdminCallerRejectedByEngine(t *testing.T) {
	h := newRPCHarness(t)
	// Valid bearer token, but the caller address is not the administrator.
	resp := h.call("market_verifyModel", map[string]string{
		"caller":  buyerAddr.Hex(),
		"account": modelAddr.Hex(),
	}, testToken)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)
}

func TestInvalidParams(t *testing.T) {
	h := newRPCHarness(t)
	resp := h.call("token_balanceOf", map[string]string{
		"token":   "governance",
		"account": buyerAddr.Hex(),
	}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)

	resp = h.call("token_balanceOf", map[string]string{
		"token":   "primary",
		"account": "0xzz",
	}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)

	// Missing params object entirely.
	resp = h.call("token_balanceOf", nil, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestPurchaseFlowOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	collectionHex := h.provision()

	var added struct {
		Index int `json:"index"`
	}
	h.mustResult("collection_addNft", map[string]interface{}{
		"caller":     modelAddr.Hex(),
		"collection": collectionHex,
		"uri":        "https://nftaddress.io",
		"token":      "secondary",
		"price":      "100",
		"supply":     10,
	}, "", &added)

	h.mustResult("token_approve", map[string]string{
		"token":   "secondary",
		"owner":   buyerAddr.Hex(),
		"spender": collectionHex,
		"amount":  "100",
	}, "", nil)

	var purchased struct {
		AssetID uint64 `json:"assetId"`
	}
	h.mustResult("collection_purchaseNft", map[string]interface{}{
		"caller":     buyerAddr.Hex(),
		"collection": collectionHex,
		"index":      added.Index,
	}, "", &purchased)
	require.Equal(t, uint64(1), purchased.AssetID)

	var owner struct {
		Owner string `json:"owner"`
	}
	h.mustResult("collection_ownerOf", map[string]uint64{"assetId": purchased.AssetID}, "", &owner)
	require.Equal(t, buyerAddr.Hex(), owner.Owner)

	var uri struct {
		URI string `json:"uri"`
	}
	h.mustResult("collection_tokenURI", map[string]uint64{"assetId": purchased.AssetID}, "", &uri)
	require.Equal(t, "https://nftaddress.io", uri.URI)

	// Fee split visible through token_balanceOf.
	var balance struct {
		Amount string `json:"amount"`
	}
	h.mustResult("token_balanceOf", map[string]string{
		"token":   "secondary",
		"account": testAddr(12).Hex(),
	}, "", &balance)
	require.Equal(t, "15", balance.Amount)

	var modelBalance struct {
		Amount string `json:"amount"`
	}
	h.mustResult("token_balanceOf", map[string]string{
		"token":   "secondary",
		"account": modelAddr.Hex(),
	}, "", &modelBalance)
	require.Equal(t, "85", modelBalance.Amount)
}

func TestCollectionGetOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	collectionHex := h.provision()

	h.mustResult("collection_addNft", map[string]interface{}{
		"caller":     modelAddr.Hex(),
		"collection": collectionHex,
		"uri":        "https://nftaddress.io",
		"token":      "secondary",
		"price":      "100",
		"supply":     10,
	}, "", nil)

	var result struct {
		Name    string `json:"name"`
		Catalog []struct {
			URI             string `json:"uri"`
			Token           string `json:"token"`
			Price           string `json:"price"`
			RemainingSupply uint64 `json:"remainingSupply"`
		} `json:"catalog"`
	}
	h.mustResult("collection_get", map[string]string{"collection": collectionHex}, "", &result)
	require.Equal(t, "Colonel Sanders", result.Name)
	require.Len(t, result.Catalog, 1)
	require.Equal(t, "secondary", result.Catalog[0].Token)
	require.Equal(t, "100", result.Catalog[0].Price)
	require.Equal(t, uint64(10), result.Catalog[0].RemainingSupply)
}

func TestPurchaseDomainErrorsOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	collectionHex := h.provision()

	resp := h.call("collection_purchaseNft", map[string]interface{}{
		"caller":     buyerAddr.Hex(),
		"collection": collectionHex,
		"index":      0,
	}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code, "empty catalog index is an invalid-params failure")

	h.mustResult("collection_addNft", map[string]interface{}{
		"caller":     modelAddr.Hex(),
		"collection": collectionHex,
		"uri":        "https://nftaddress.io",
		"token":      "secondary",
		"price":      "100",
		"supply":     10,
	}, "", nil)

	// Payment failure surfaces as a server error, not invalid params.
	resp = h.call("collection_purchaseNft", map[string]interface{}{
		"caller":     buyerAddr.Hex(),
		"collection": collectionHex,
		"index":      0,
	}, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)
}

func TestGetPaymentTokens(t *testing.T) {
	h := newRPCHarness(t)
	var result struct {
		Primary   string `json:"primary"`
		Secondary string `json:"secondary"`
	}
	h.mustResult("market_getPaymentTokens", nil, "", &result)
	require.Equal(t, "MAIN", result.Primary)
	require.Equal(t, "ALT", result.Secondary)
}

func TestBlacklistOverRPC(t *testing.T) {
	h := newRPCHarness(t)
	h.mustResult("market_blacklist", map[string]string{
		"caller":  adminAddr.Hex(),
		"account": modelAddr.Hex(),
	}, testToken, nil)
	require.True(t, h.node.Registry().IsBlacklisted(modelAddr))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newRPCHarness(t)
	resp, err := h.server.Client().Get(h.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorCodeMapping(t *testing.T) {
	require.Equal(t, codeUnauthorized, errorCode(registry.ErrUnauthorized))
	require.Equal(t, codeUnauthorized, errorCode(collection.ErrUnauthorized))
	require.Equal(t, codeInvalidParams, errorCode(collection.ErrInvalidIndex))
	require.Equal(t, codeInvalidParams, errorCode(token.ErrInvalidAmount))
	require.Equal(t, codeServerError, errorCode(collection.ErrSoldOut))
	require.Equal(t, codeServerError, errorCode(collection.ErrPaymentFailed))
}
