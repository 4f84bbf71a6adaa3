package protocol

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creekbot/crypto"
	"creekbot/ledger"
	"creekbot/rpc"
	"creekbot/submit"
)

// ledgerNode is a scripted fake of the remote node. Handlers are keyed by
// method and receive the raw params plus a per-method call counter.
type ledgerNode struct {
	t        *testing.T
	handlers map[string]func(params json.RawMessage, call int) (any, *rpc.Error)
	calls    map[string]int

	// executed collects the decoded intents submitted through the node.
	executed []ledger.Intent
}

func newLedgerNode(t *testing.T) *ledgerNode {
	return &ledgerNode{
		t:        t,
		handlers: make(map[string]func(json.RawMessage, int) (any, *rpc.Error)),
		calls:    make(map[string]int),
	}
}

func (n *ledgerNode) handle(method string, fn func(params json.RawMessage, call int) (any, *rpc.Error)) {
	n.handlers[method] = fn
}

// confirmExecutions accepts every submitted transaction with inline success
// effects, collecting the decoded intents for later assertions.
func (n *ledgerNode) confirmExecutions() {
	n.handle("creek_executeTransaction", func(params json.RawMessage, call int) (any, *rpc.Error) {
		var req struct {
			TxBytes string `json:"txBytes"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			n.t.Fatalf("decode execute params: %v", err)
		}
		payload, err := base64.StdEncoding.DecodeString(req.TxBytes)
		if err != nil {
			n.t.Fatalf("txBytes not base64: %v", err)
		}
		var intent ledger.Intent
		if err := json.Unmarshal(payload, &intent); err != nil {
			n.t.Fatalf("txBytes not an intent: %v", err)
		}
		n.executed = append(n.executed, intent)
		return rpc.ExecuteResult{Digest: "dgtest", Effects: &rpc.TransactionEffects{
			Status: rpc.ExecutionStatus{Status: "success"},
		}}, nil
	})
}

func (n *ledgerNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.t.Fatalf("decode request: %v", err)
	}
	handler, ok := n.handlers[req.Method]
	if !ok {
		n.t.Fatalf("unexpected method %q", req.Method)
	}
	n.calls[req.Method]++
	params, err := json.Marshal(req.Params)
	if err != nil {
		n.t.Fatalf("re-marshal params: %v", err)
	}
	result, rpcErr := handler(params, n.calls[req.Method])
	if rpcErr != nil {
		json.NewEncoder(w).Encode(rpc.Response{Error: rpcErr})
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		n.t.Fatalf("marshal result: %v", err)
	}
	json.NewEncoder(w).Encode(rpc.Response{Result: raw})
}

func newTestSession(t *testing.T, node *ledgerNode, opts ...SessionOption) *Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(node.serve))
	t.Cleanup(srv.Close)
	client, err := rpc.New(rpc.Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	submitter := submit.New(client, slog.Default())
	opts = append([]SessionOption{
		WithSettleDelay(time.Millisecond),
		WithSleep(func(context.Context, time.Duration) {}),
	}, opts...)
	return NewSession(client, submitter, key, slog.Default(), opts...)
}

func balanceHandler(t *testing.T, totals map[string]string) func(json.RawMessage, int) (any, *rpc.Error) {
	return func(params json.RawMessage, _ int) (any, *rpc.Error) {
		var req struct {
			CoinType string `json:"coinType"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			t.Fatalf("decode balance params: %v", err)
		}
		total, ok := totals[req.CoinType]
		if !ok {
			total = "0"
		}
		return rpc.Balance{CoinType: req.CoinType, TotalBalance: total}, nil
	}
}

func coinHandler(t *testing.T, balances map[string]string) func(json.RawMessage, int) (any, *rpc.Error) {
	return func(params json.RawMessage, call int) (any, *rpc.Error) {
		var req struct {
			CoinType string `json:"coinType"`
		}
		if err := json.Unmarshal(params, &req); err != nil {
			t.Fatalf("decode coin params: %v", err)
		}
		balance, ok := balances[req.CoinType]
		if !ok {
			return rpc.CoinPage{}, nil
		}
		return rpc.CoinPage{Data: []rpc.Coin{{
			CoinObjectID: "0xcoin-" + string(rune('a'+call)),
			CoinType:     req.CoinType,
			Version:      1,
			Digest:       "dg",
			Balance:      balance,
		}}}, nil
	}
}

func keyObjectResult(keyID, obligationID string) rpc.ObjectResult {
	fields, _ := json.Marshal(map[string]any{
		"ownership": map[string]any{
			"fields": map[string]any{"of": obligationID},
		},
	})
	return rpc.ObjectResult{Data: &rpc.ObjectData{
		ObjectID: keyID,
		Version:  12,
		Digest:   "keydg",
		Type:     ObligationKeyType,
		Content:  &rpc.ObjectContent{DataType: "moveObject", Type: ObligationKeyType, Fields: fields},
	}}
}
