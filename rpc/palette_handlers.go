package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"palettecore/core/types"
	"palettecore/native/bank"
	"palettecore/native/palette"
	"palettecore/native/registry"
)

type tokenParams struct {
	Token uint64 `json:"token"`
}

type accountParams struct {
	Account string `json:"account"`
}

type swapParams struct {
	Caller string `json:"caller"`
	TokenA uint64 `json:"tokenA"`
	TokenB uint64 `json:"tokenB"`
	Value  string `json:"value,omitempty"`
}

type approveSwapParams struct {
	Caller   string `json:"caller"`
	Delegate string `json:"delegate"`
	Token    uint64 `json:"token"`
}

type setPriceParams struct {
	Caller string `json:"caller"`
	Token  uint64 `json:"token"`
	Amount string `json:"amount"`
}

type withdrawParams struct {
	Beneficiary string `json:"beneficiary"`
}

type transferParams struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Token  uint64 `json:"token"`
}

type approveParams struct {
	Caller   string `json:"caller"`
	Approved string `json:"approved"`
	Token    uint64 `json:"token"`
}

type positionResult struct {
	Token uint64 `json:"token"`
	X     uint32 `json:"x"`
	Y     uint32 `json:"y"`
}

type amountResult struct {
	Amount string `json:"amount"`
}

type addressResult struct {
	Address string `json:"address,omitempty"`
}

func decodeParams(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddress(value string) ([20]byte, error) {
	trimmed := strings.TrimSpace(value)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("%q is not a hex address", value)
	}
	return common.HexToAddress(trimmed), nil
}

func parseTokenID(value uint64) (types.TokenID, error) {
	if value > uint64(types.MaxTokenID) {
		return 0, fmt.Errorf("token id %d outside the color namespace", value)
	}
	return types.TokenID(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is not a non-negative decimal", value)
	}
	return amount, nil
}

func formatAddress(addr [20]byte) string {
	return common.Address(addr).Hex()
}

// writeDomainError maps engine sentinels onto JSON-RPC error codes while
// preserving the exact reason string integrations match on.
func writeDomainError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, palette.ErrNotFound), errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, id, codeNotFound, err.Error(), nil)
	case errors.Is(err, palette.ErrSelfSwap):
		writeError(w, http.StatusBadRequest, id, codeInvalidArgument, err.Error(), nil)
	case errors.Is(err, palette.ErrUnauthorized),
		errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, registry.ErrWrongOwner):
		writeError(w, http.StatusForbidden, id, codeForbidden, err.Error(), nil)
	case errors.Is(err, palette.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, id, codeInvalidPayment, err.Error(), nil)
	case errors.Is(err, bank.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, id, codeInsufficientFunds, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, id, codeServerError, err.Error(), nil)
	}
}

func (s *Server) handlePositionOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	pos, err := s.node.PositionOf(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, positionResult{Token: params.Token, X: pos.X, Y: pos.Y})
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params swapParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	a, err := parseTokenID(params.TokenA)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	b, err := parseTokenID(params.TokenB)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	value, err := parseAmount(params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.Swap(caller, a, b, value); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	version, err := s.node.Version()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"version": version})
}

func (s *Server) handleApproveSwap(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params approveSwapParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	delegate, err := parseAddress(params.Delegate)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.ApproveSwap(caller, delegate, id); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetSwapApproved(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	delegate, ok, err := s.node.SwapApproved(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	if !ok {
		writeResult(w, req.ID, addressResult{})
		return
	}
	writeResult(w, req.ID, addressResult{Address: formatAddress(delegate)})
}

func (s *Server) handleSetSwapPrice(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params setPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parseAmount(params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.SetSwapPrice(caller, id, amount); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetSwapPrice(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	price, err := s.node.SwapPrice(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: price.String()})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params withdrawParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	beneficiary, err := parseAddress(params.Beneficiary)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := s.node.Withdraw(beneficiary)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: amount.String()})
}

func (s *Server) handlePayments(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	balance, err := s.node.Payments(account)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: balance.String()})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	version, err := s.node.Version()
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"version": version})
}

func (s *Server) handleOwnerOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	owner, err := s.node.OwnerOf(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, addressResult{Address: formatAddress(owner)})
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	count, err := s.node.BalanceOf(account)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"balance": count})
}

func (s *Server) handleCashBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params accountParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := parseAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	balance, err := s.node.CashBalance(account)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, amountResult{Amount: balance.String()})
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params transferParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	from, err := parseAddress(params.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	to, err := parseAddress(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.TransferFrom(caller, from, to, id); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params approveParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	approved, err := parseAddress(params.Approved)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.Approve(caller, approved, id); err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetApproved(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	approved, ok, err := s.node.Approved(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	if !ok {
		writeResult(w, req.ID, addressResult{})
		return
	}
	writeResult(w, req.ID, addressResult{Address: formatAddress(approved)})
}

func (s *Server) handleTokenURI(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := parseTokenID(params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	uri, err := s.node.TokenURI(id)
	if err != nil {
		writeDomainError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"uri": uri})
}

func (s *Server) handleContractURI(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	writeResult(w, req.ID, map[string]string{
		"uri":    s.node.ContractURI(),
		"name":   registry.CollectionName,
		"symbol": registry.CollectionSymbol,
	})
}
