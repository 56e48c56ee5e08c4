package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"palettecore/core"
	"palettecore/storage"
)

const (
	platformHex = "0x00000000000000000000000000000000000000fe"
	aliceHex    = "0x0000000000000000000000000000000000000001"
	bobHex      = "0x0000000000000000000000000000000000000002"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bob := common.HexToAddress(bobHex)
	node, err := core.NewNode(storage.NewMemDB(), core.Config{
		FeePercent:      3,
		Platform:        common.HexToAddress(platformHex),
		BaseMetadataURI: "http://localhost:3000/",
		GenesisAlloc:    map[[20]byte]*big.Int{bob: big.NewInt(1000)},
	})
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	return NewServer(node, nil)
}

func call(t *testing.T, server *Server, method string, params interface{}, headers map[string]string) (*http.Response, RPCResponse) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	var resp RPCResponse
	if err := json.NewDecoder(rec.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Result(), resp
}

func resultInto(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func TestPositionOf(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_positionOf", map[string]interface{}{"token": 0xFFFFFF}, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result positionResult
	resultInto(t, resp, &result)
	if result.X != 0 || result.Y != 0 {
		t.Fatalf("white position = (%d,%d), want (0,0)", result.X, result.Y)
	}
}

func TestPositionOfUnknownToken(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_positionOf", map[string]interface{}{"token": 0x123456}, nil)
	if resp.Error == nil || resp.Error.Code != codeNotFound {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeNotFound)
	}
}

func TestPositionOfRejectsOutOfRangeID(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_positionOf", map[string]interface{}{"token": 0x1000000}, nil)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeInvalidParams)
	}
}

func TestVersion(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_version", nil, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result map[string]uint64
	resultInto(t, resp, &result)
	if result["version"] != 1 {
		t.Fatalf("version = %d, want 1", result["version"])
	}
}

func TestMethodNotFound(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_unknown", nil, nil)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeMethodNotFound)
	}
}

func TestSwapSameOwnerOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_swap", map[string]interface{}{
		"caller": platformHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
	}, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result map[string]uint64
	resultInto(t, resp, &result)
	if result["version"] != 2 {
		t.Fatalf("version = %d, want 2", result["version"])
	}
}

func TestSwapPaymentErrorsOverRPC(t *testing.T) {
	server := newTestServer(t)

	// Same-owner swaps never take payment.
	_, resp := call(t, server, "palette_swap", map[string]interface{}{
		"caller": platformHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
		"value":  "5",
	}, nil)
	if resp.Error == nil || resp.Error.Code != codeInvalidPayment {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeInvalidPayment)
	}

	// Priced swaps demand the exact amount.
	_, resp = call(t, server, "palette_transferFrom", map[string]interface{}{
		"caller": platformHex,
		"from":   platformHex,
		"to":     aliceHex,
		"token":  0xFFFFFF,
	}, nil)
	if resp.Error != nil {
		t.Fatalf("transfer error: %+v", resp.Error)
	}
	_, resp = call(t, server, "palette_transferFrom", map[string]interface{}{
		"caller": platformHex,
		"from":   platformHex,
		"to":     bobHex,
		"token":  0x000000,
	}, nil)
	if resp.Error != nil {
		t.Fatalf("transfer error: %+v", resp.Error)
	}
	_, resp = call(t, server, "palette_setSwapPrice", map[string]interface{}{
		"caller": aliceHex,
		"token":  0xFFFFFF,
		"amount": "100",
	}, nil)
	if resp.Error != nil {
		t.Fatalf("setSwapPrice error: %+v", resp.Error)
	}
	_, resp = call(t, server, "palette_approveSwap", map[string]interface{}{
		"caller":   aliceHex,
		"delegate": bobHex,
		"token":    0xFFFFFF,
	}, nil)
	if resp.Error != nil {
		t.Fatalf("approveSwap error: %+v", resp.Error)
	}
	_, resp = call(t, server, "palette_swap", map[string]interface{}{
		"caller": bobHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
		"value":  "99",
	}, nil)
	if resp.Error == nil || resp.Error.Code != codeInvalidPayment {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeInvalidPayment)
	}

	_, resp = call(t, server, "palette_swap", map[string]interface{}{
		"caller": bobHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
		"value":  "100",
	}, nil)
	if resp.Error != nil {
		t.Fatalf("exact payment rejected: %+v", resp.Error)
	}

	_, resp = call(t, server, "palette_payments", map[string]interface{}{"account": aliceHex}, nil)
	if resp.Error != nil {
		t.Fatalf("payments error: %+v", resp.Error)
	}
	var result amountResult
	resultInto(t, resp, &result)
	if result.Amount != "97" {
		t.Fatalf("seller escrow = %s, want 97", result.Amount)
	}
}

func TestSwapUnauthorizedOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_swap", map[string]interface{}{
		"caller": aliceHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
	}, nil)
	if resp.Error == nil || resp.Error.Code != codeForbidden {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeForbidden)
	}
}

func TestWithdrawOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_withdraw", map[string]interface{}{"beneficiary": aliceHex}, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result amountResult
	resultInto(t, resp, &result)
	if result.Amount != "0" {
		t.Fatalf("withdrawn = %s, want 0", result.Amount)
	}
}

func TestTokenURIOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_tokenURI", map[string]interface{}{"token": 0xFFFFFF}, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result map[string]string
	resultInto(t, resp, &result)
	if result["uri"] != "http://localhost:3000/16777215" {
		t.Fatalf("uri = %q", result["uri"])
	}
}

func TestContractURIOverRPC(t *testing.T) {
	server := newTestServer(t)
	_, resp := call(t, server, "palette_contractURI", nil, nil)
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var result map[string]string
	resultInto(t, resp, &result)
	if result["name"] != "Web Colors Palette" || result["symbol"] != "WCP" {
		t.Fatalf("collection metadata = %+v", result)
	}
}

func TestMutationsRequireBearerToken(t *testing.T) {
	t.Setenv("PALETTE_RPC_TOKEN", "secret")
	server := newTestServer(t)

	params := map[string]interface{}{
		"caller": platformHex,
		"tokenA": 0xFFFFFF,
		"tokenB": 0x000000,
	}
	_, resp := call(t, server, "palette_swap", params, nil)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeUnauthorized)
	}

	_, resp = call(t, server, "palette_swap", params, map[string]string{"Authorization": "Bearer wrong"})
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeUnauthorized)
	}

	_, resp = call(t, server, "palette_swap", params, map[string]string{"Authorization": "Bearer secret"})
	if resp.Error != nil {
		t.Fatalf("authorized swap rejected: %+v", resp.Error)
	}

	// Reads stay open.
	_, resp = call(t, server, "palette_version", nil, nil)
	if resp.Error != nil {
		t.Fatalf("read rejected: %+v", resp.Error)
	}
}

func TestParseError(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	var resp RPCResponse
	if err := json.NewDecoder(rec.Result().Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("error = %+v, want code %d", resp.Error, codeParseError)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
