package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func writeResult(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.NewEncoder(w).Encode(Response{Result: raw}); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestCallEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.JSONRPC != "2.0" {
			t.Fatalf("jsonrpc = %q", req.JSONRPC)
		}
		if req.ID == "" {
			t.Fatalf("request id is empty")
		}
		if req.Method != "creek_getBalance" {
			t.Fatalf("method = %q", req.Method)
		}
		writeResult(t, w, Balance{CoinType: "0x2::sui::SUI", TotalBalance: "42"})
	})

	balance, err := client.GetBalance(context.Background(), "creek1xyz", "0x2::sui::SUI")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	total, err := balance.TotalInt()
	if err != nil {
		t.Fatalf("TotalInt: %v", err)
	}
	if total.Int64() != 42 {
		t.Fatalf("total = %s, want 42", total)
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Error: &Error{Code: -32000, Message: "object not found"}})
	})

	err := client.Call(context.Background(), "creek_getObject", nil, nil)
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("err = %v, want *rpc.Error", err)
	}
	if rpcErr.Code != -32000 {
		t.Fatalf("code = %d", rpcErr.Code)
	}
}

func TestCallRejectsHTTPFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	if err := client.Call(context.Background(), "creek_getCoins", nil, nil); err == nil {
		t.Fatalf("expected error for HTTP 502")
	}
}

func TestGetCoinsDecodesPage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, CoinPage{Data: []Coin{
			{CoinObjectID: "0x1", CoinType: "0x2::sui::SUI", Version: 7, Digest: "dg", Balance: "1000"},
		}})
	})

	coins, err := client.GetCoins(context.Background(), "creek1xyz", "0x2::sui::SUI")
	if err != nil {
		t.Fatalf("GetCoins: %v", err)
	}
	if len(coins) != 1 || coins[0].Version != 7 {
		t.Fatalf("coins = %+v", coins)
	}
	balance, err := coins[0].BalanceInt()
	if err != nil {
		t.Fatalf("BalanceInt: %v", err)
	}
	if balance.Int64() != 1000 {
		t.Fatalf("balance = %s", balance)
	}
}

func TestWaitForTransactionEmptyDigestMeansNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, Receipt{})
	})

	receipt, err := client.WaitForTransaction(context.Background(), "abc", 0)
	if err != nil {
		t.Fatalf("WaitForTransaction: %v", err)
	}
	if receipt != nil {
		t.Fatalf("receipt = %+v, want nil", receipt)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
	if _, err := New(Config{Endpoint: "http://localhost:1", ProxyURL: "://bad"}); err == nil {
		t.Fatalf("expected error for malformed proxy url")
	}
}

func TestDynamicFieldEntryName(t *testing.T) {
	t.Parallel()

	named := DynamicFieldInfo{Name: DynamicFieldName{Value: json.RawMessage(`{"name":"0x2::sui::SUI"}`)}}
	if got := named.EntryName(); got != "0x2::sui::SUI" {
		t.Fatalf("EntryName = %q", got)
	}
	plain := DynamicFieldInfo{Name: DynamicFieldName{Value: json.RawMessage(`"gr_key"`)}}
	if got := plain.EntryName(); got != "gr_key" {
		t.Fatalf("EntryName = %q", got)
	}
	other := DynamicFieldInfo{Name: DynamicFieldName{Value: json.RawMessage(`{"idx":3}`)}}
	if got := other.EntryName(); got != "" {
		t.Fatalf("EntryName = %q, want empty", got)
	}
}
