package rpc

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"palettecore/core"
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
	codeServerError    = -32000
	codeUnauthorized   = -32001

	codeNotFound          = -32041
	codeForbidden         = -32042
	codeInvalidPayment    = -32043
	codeInsufficientFunds = -32044
	codeInvalidArgument   = -32045
)

// Server exposes the palette node over JSON-RPC 2.0 plus a websocket event
// stream and Prometheus metrics.
type Server struct {
	node      *core.Node
	logger    *slog.Logger
	authToken string
}

// NewServer builds a server around the node. Mutating methods require a
// bearer token when PALETTE_RPC_TOKEN is set in the environment.
func NewServer(node *core.Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		node:      node,
		logger:    logger,
		authToken: strings.TrimSpace(os.Getenv("PALETTE_RPC_TOKEN")),
	}
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/", s.handle)
	r.Get("/ws/events", s.handleEventsWS)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start serves the router on the provided address, blocking until the
// listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
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
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	token := strings.TrimSpace(header[len(prefix):])
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid bearer token"}
	}
	return nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", nil)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	handler, ok := s.methods()[req.Method]
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	handler(w, r, &req)
}

type handlerFunc func(http.ResponseWriter, *http.Request, *RPCRequest)

func (s *Server) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"palette_positionOf":      s.handlePositionOf,
		"palette_swap":            s.handleSwap,
		"palette_approveSwap":     s.handleApproveSwap,
		"palette_getSwapApproved": s.handleGetSwapApproved,
		"palette_setSwapPrice":    s.handleSetSwapPrice,
		"palette_getSwapPrice":    s.handleGetSwapPrice,
		"palette_withdraw":        s.handleWithdraw,
		"palette_payments":        s.handlePayments,
		"palette_version":         s.handleVersion,
		"palette_ownerOf":         s.handleOwnerOf,
		"palette_balanceOf":       s.handleBalanceOf,
		"palette_cashBalance":     s.handleCashBalance,
		"palette_transferFrom":    s.handleTransferFrom,
		"palette_approve":         s.handleApprove,
		"palette_getApproved":     s.handleGetApproved,
		"palette_tokenURI":        s.handleTokenURI,
		"palette_contractURI":     s.handleContractURI,
	}
}
