package rpc

import (
	"net/http"

	"modelmarket/core/types"
)

type accountParams struct {
	Caller  string `json:"caller"`
	Account string `json:"account"`
}

type addressParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

type newCollectionParams struct {
	Caller      string `json:"caller"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Gender      string `json:"gender"`
	Referrer    string `json:"referrer"`
	Salt        string `json:"salt"`
}

type collectionAddressResult struct {
	Collection string `json:"collection"`
}

type paymentTokensResult struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func parseAddr(w http.ResponseWriter, id interface{}, value string) (types.Address, bool) {
	addr, err := types.ParseAddress(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, id, codeInvalidParams, err.Error(), nil)
		return types.ZeroAddress, false
	}
	return addr, true
}

func (s *Server) handleVerifyModel(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	account, ok := parseAddr(w, req.ID, params.Account)
	if !ok {
		return
	}
	if err := s.node.VerifyModel(caller, account); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleNewCollection(w http.ResponseWriter, req *RPCRequest) {
	var params newCollectionParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	referrer, ok := parseAddr(w, req.ID, params.Referrer)
	if !ok {
		return
	}
	addr, err := s.node.NewCollection(caller, params.Name, params.Description, params.Gender, referrer, params.Salt)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, collectionAddressResult{Collection: addr.Hex()})
}

func (s *Server) handleGetModelContract(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	account, ok := parseAddr(w, req.ID, params.Account)
	if !ok {
		return
	}
	addr, err := s.node.ModelContract(account)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, collectionAddressResult{Collection: addr.Hex()})
}

func (s *Server) handleBlacklist(w http.ResponseWriter, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	account, ok := parseAddr(w, req.ID, params.Account)
	if !ok {
		return
	}
	if err := s.node.Blacklist(caller, account); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAddressSetter(w http.ResponseWriter, req *RPCRequest, set func(caller, addr types.Address) error) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, ok := parseAddr(w, req.ID, params.Caller)
	if !ok {
		return
	}
	addr, ok := parseAddr(w, req.ID, params.Address)
	if !ok {
		return
	}
	if err := set(caller, addr); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetFeeAggregator(w http.ResponseWriter, req *RPCRequest) {
	s.handleAddressSetter(w, req, s.node.SetFeeAggregator)
}

func (s *Server) handleSetFarmAddress(w http.ResponseWriter, req *RPCRequest) {
	s.handleAddressSetter(w, req, s.node.SetFarmAddress)
}

func (s *Server) handleSetFeeSplitter(w http.ResponseWriter, req *RPCRequest) {
	s.handleAddressSetter(w, req, s.node.SetFeeSplitter)
}

func (s *Server) handleSetPlatform(w http.ResponseWriter, req *RPCRequest) {
	s.handleAddressSetter(w, req, s.node.SetPlatform)
}

func (s *Server) handleGetPaymentTokens(w http.ResponseWriter, req *RPCRequest) {
	primary, secondary, err := s.node.PaymentTokens()
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, paymentTokensResult{Primary: primary, Secondary: secondary})
}
