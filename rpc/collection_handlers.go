package rpc

import (
	"math/big"
	"net/http"
	"strings"

	"modelmarket/native/token"
)

type collectionGetParams struct {
	Collection string `json:"collection"`
}

type addNftParams struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	URI        string `json:"uri"`
	Token      string `json:"token"`
	Price      string `json:"price"`
	Supply     uint64 `json:"supply"`
}

type purchaseNftParams struct {
	Caller     string `json:"caller"`
	Collection string `json:"collection"`
	Index      int    `json:"index"`
}

type assetParams struct {
	AssetID uint64 `json:"assetId"`
}

type assetApproveParams struct {
	Caller  string `json:"caller"`
	AssetID uint64 `json:"assetId"`
	Spender string `json:"spender"`
}

type assetTransferParams struct {
	Caller  string `json:"caller"`
	AssetID uint64 `json:"assetId"`
	To      string `json:"to"`
}

type catalogEntryResult struct {
	URI             string `json:"uri"`
	Token           string `json:"token"`
	Price           string `json:"price"`
	RemainingSupply uint64 `json:"remainingSupply"`
	TotalMinted     uint64 `json:"totalMinted"`
}

type collectionResult struct {
	Address     string               `json:"address"`
	Operator    string               `json:"operator"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Gender      string               `json:"gender"`
	Referrer    string               `json:"referrer"`
	CreatedAt   int64                `json:"createdAt"`
	Catalog     []catalogEntryResult `json:"catalog"`
}

type addNftResult struct {
	Index int `json:"index"`
}

type purchaseResult struct {
	AssetID uint64 `json:"assetId"`
}

type tokenURIResult struct {
	URI string `json:"uri"`
}

type ownerResult struct {
	Owner string `json:"owner"`
}

func parseAmount(w http.ResponseWriter, id interface{}, value string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, "invalid integer amount", value)
		return nil, false
	}
	return amount, true
}

func parseKind(w http.ResponseWriter, id interface{}, value string) (token.Kind, bool) {
	kind, err := token.ParseKind(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
		return 0, false
	}
	return kind, true
}

func (s *Server) handleCollectionGet(w http.ResponseWriter, req *RPCRequest) {
	var params collectionGetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, ok := parseAddr(w, req.ID, params.Collection)
	if !ok {
		return
	}
	c, err := s.node.Collection(addr)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	result := collectionResult{
		Address:     c.Address.Hex(),
		Operator:    c.Operator.Hex(),
		Name:        c.Name,
		Description: c.Description,
		Gender:      c.Gender,
		Referrer:    c.Referrer.Hex(),
		CreatedAt:   c.CreatedAt,
		Catalog:     make([]catalogEntryResult, 0, len(c.Catalog)),
	}
	for _, entry := range c.Catalog {
		result.Catalog = append(result.Catalog, catalogEntryResult{
			URI:             entry.URI,
			Token:           entry.Token.String(),
			Price:           entry.Price.String(),
			RemainingSupply: entry.RemainingSupply,
			TotalMinted:     entry.TotalMinted,
		})
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleAddNft(w http.ResponseWriter, req *RPCRequest) {
	var params addNftParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	addr, ok := parseAddr(w, req.ID, params.Collection)
	if !ok {
		return
	}
	kind, ok := parseKind(w, req.ID, params.Token)
	if !ok {
		return
	}
	price, ok := parseAmount(w, req.ID, params.Price)
	if !ok {
		return
	}
	index, err := s.node.AddNft(caller, addr, params.URI, kind, price, params.Supply)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, addNftResult{Index: index})
}

func (s *Server) handlePurchaseNft(w http.ResponseWriter, req *RPCRequest) {
	var params purchaseNftParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	addr, ok := parseAddr(w, req.ID, params.Collection)
	if !ok {
		return
	}
	id, err := s.node.PurchaseNft(caller, addr, params.Index)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, purchaseResult{AssetID: id})
}

func (s *Server) handleTokenURI(w http.ResponseWriter, req *RPCRequest) {
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	uri, err := s.node.TokenURI(params.AssetID)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, tokenURIResult{URI: uri})
}

func (s *Server) handleOwnerOf(w http.ResponseWriter, req *RPCRequest) {
	var params assetParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	owner, err := s.node.OwnerOf(params.AssetID)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, ownerResult{Owner: owner.Hex()})
}

func (s *Server) handleApproveAsset(w http.ResponseWriter, req *RPCRequest) {
	var params assetApproveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	spender, ok := parseAddr(w, req.ID, params.Spender)
	if !ok {
		return
	}
	if err := s.node.ApproveAsset(caller, params.AssetID, spender); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleTransferAsset(w http.ResponseWriter, req *RPCRequest) {
	var params assetTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	to, ok := parseAddr(w, req.ID, params.To)
	if !ok {
		return
	}
	if err := s.node.TransferAsset(caller, params.AssetID, to); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}
