package rpc

import "net/http"

type tokenAccountParams struct {
	Token   string `json:"token"`
	Account string `json:"account"`
}

type tokenAllowanceParams struct {
	Token   string `json:"token"`
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
}

type tokenApproveParams struct {
	Token   string `json:"token"`
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type tokenTransferParams struct {
	Token  string `json:"token"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type amountResult struct {
	Amount string `json:"amount"`
}

func (s *Server) handleTokenBalanceOf(w http.ResponseWriter, req *RPCRequest) {
	var params tokenAccountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	kind, ok := parseKind(w, req.ID, params.Token)
	if !ok {
		return
	}
	account, ok := parseAddr(w, req.ID, params.Account)
	if !ok {
		return
	}
	balance, err := s.node.TokenBalanceOf(kind, account)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: balance.String()})
}

func (s *Server) handleTokenAllowance(w http.ResponseWriter, req *RPCRequest) {
	var params tokenAllowanceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	kind, ok := parseKind(w, req.ID, params.Token)
	if !ok {
		return
	}
	owner, ok := parseAddr(w, req.ID, params.Owner)
	if !ok {
		return
	}
	spender, ok := parseAddr(w, req.ID, params.Spender)
	if !ok {
		return
	}
	allowance, err := s.node.TokenAllowance(kind, owner, spender)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: allowance.String()})
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, req *RPCRequest) {
	var params tokenApproveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	kind, ok := parseKind(w, req.ID, params.Token)
	if !ok {
		return
	}
	owner, ok := parseAddr(w, req.ID, params.Owner)
	if !ok {
		return
	}
	spender, ok := parseAddr(w, req.ID, params.Spender)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.ID, params.Amount)
	if !ok {
		return
	}
	if err := s.node.TokenApprove(kind, owner, spender, amount); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleTokenTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params tokenTransferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	kind, ok := parseKind(w, req.ID, params.Token)
	if !ok {
		return
	}
	from, ok := parseAddr(w, req.ID, params.From)
	if !ok {
		return
	}
	to, ok := parseAddr(w, req.ID, params.To)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req.ID, params.Amount)
	if !ok {
		return
	}
	if err := s.node.TokenTransfer(kind, from, to, amount); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}
