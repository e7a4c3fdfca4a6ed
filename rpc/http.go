package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelmarket/core"
	"modelmarket/native/collection"
	"modelmarket/native/registry"
	"modelmarket/native/token"
	"modelmarket/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
)

// Server exposes the marketplace node over JSON-RPC 2.0. Administrator
// methods additionally require the configured bearer token.
type Server struct {
	node      *core.Node
	authToken string
	metrics   *observability.MarketMetrics
}

// NewServer constructs a server for the node. An empty authToken disables the
// administrator methods entirely.
func NewServer(node *core.Node, authToken string) *Server {
	return &Server{
		node:      node,
		authToken: strings.TrimSpace(authToken),
		metrics:   observability.Metrics(),
	}
}

// Router returns the HTTP handler serving the RPC endpoint and /metrics.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves the router on addr until the listener fails.
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Router())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// errorCode maps engine failures onto JSON-RPC error codes. Authorization
// failures get their own code so clients can distinguish them from domain
// rejections.
func errorCode(err error) int {
	switch {
	case errors.Is(err, registry.ErrUnauthorized), errors.Is(err, collection.ErrUnauthorized):
		return codeUnauthorized
	case errors.Is(err, collection.ErrInvalidIndex),
		errors.Is(err, collection.ErrInvalidPrice),
		errors.Is(err, token.ErrUnknownKind),
		errors.Is(err, token.ErrInvalidAmount):
		return codeInvalidParams
	default:
		return codeServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	code := errorCode(err)
	status := http.StatusOK
	if code == codeUnauthorized {
		status = http.StatusForbidden
	}
	writeError(w, status, id, code, err.Error(), nil)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.authToken == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	supplied := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(s.authToken)) == 1
}

var adminMethods = map[string]struct{}{
	"market_verifyModel":      {},
	"market_blacklist":        {},
	"market_setFeeAggregator": {},
	"market_setFarmAddress":   {},
	"market_setFeeSplitter":   {},
	"market_setPlatform":      {},
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, nil, codeInvalidRequest, "POST required", nil)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	req := &RPCRequest{}
	if err := json.NewDecoder(body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if strings.TrimSpace(req.Method) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}
	if _, isAdmin := adminMethods[req.Method]; isAdmin && !s.authorized(r) {
		s.metrics.ObserveRPC(req.Method, "unauthorized")
		writeError(w, http.StatusUnauthorized, req.ID, codeUnauthorized, "administrator token required", nil)
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		s.metrics.ObserveRPC(req.Method, "unknown")
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %s", req.Method), nil)
		return
	}
	handler(w, req)
	s.metrics.ObserveRPC(req.Method, "handled")
}

type methodHandler func(http.ResponseWriter, *RPCRequest)

func (s *Server) methods() map[string]methodHandler {
	return map[string]methodHandler{
		"market_verifyModel":      s.handleVerifyModel,
		"market_newCollection":    s.handleNewCollection,
		"market_getModelContract": s.handleGetModelContract,
		"market_blacklist":        s.handleBlacklist,
		"market_setFeeAggregator": s.handleSetFeeAggregator,
		"market_setFarmAddress":   s.handleSetFarmAddress,
		"market_setFeeSplitter":   s.handleSetFeeSplitter,
		"market_setPlatform":      s.handleSetPlatform,
		"market_getPaymentTokens": s.handleGetPaymentTokens,

		"collection_get":           s.handleCollectionGet,
		"collection_addNft":        s.handleAddNft,
		"collection_purchaseNft":   s.handlePurchaseNft,
		"collection_tokenURI":      s.handleTokenURI,
		"collection_ownerOf":       s.handleOwnerOf,
		"collection_approveAsset":  s.handleApproveAsset,
		"collection_transferAsset": s.handleTransferAsset,

		"token_balanceOf": s.handleTokenBalanceOf,
		"token_allowance": s.handleTokenAllowance,
		"token_approve":   s.handleTokenApprove,
		"token_transfer":  s.handleTokenTransfer,
	}
}

// decodeParams unmarshals the single positional params object.
func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("expected exactly one params object, got %d", len(req.Params))
	}
	return json.Unmarshal(req.Params[0], out)
}
