package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Request is a JSON-RPC 2.0 call envelope.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is the JSON-RPC 2.0 reply envelope.
type Response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Error carries a JSON-RPC error object returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Coin describes a single owned value object of one asset type.
type Coin struct {
	CoinObjectID string `json:"coinObjectId"`
	CoinType     string `json:"coinType"`
	Version      uint64 `json:"version,string"`
	Digest       string `json:"digest"`
	Balance      string `json:"balance"`
}

// BalanceInt parses the coin balance into an exact integer.
func (c Coin) BalanceInt() (*big.Int, error) {
	v, ok := new(big.Int).SetString(c.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("coin %s: invalid balance %q", c.CoinObjectID, c.Balance)
	}
	return v, nil
}

// CoinPage is the paged result of creek_getCoins.
type CoinPage struct {
	Data        []Coin `json:"data"`
	HasNextPage bool   `json:"hasNextPage"`
	NextCursor  string `json:"nextCursor,omitempty"`
}

// Balance is the aggregate balance of one asset type for an owner.
type Balance struct {
	CoinType     string `json:"coinType"`
	CoinCount    int    `json:"coinObjectCount"`
	TotalBalance string `json:"totalBalance"`
}

// TotalInt parses the aggregate balance into an exact integer.
func (b Balance) TotalInt() (*big.Int, error) {
	v, ok := new(big.Int).SetString(b.TotalBalance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid total balance %q", b.TotalBalance)
	}
	return v, nil
}

// ObjectContent holds the decoded on-chain representation of an object. The
// Fields payload is schema-dependent and left raw for callers to interpret.
type ObjectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

// ObjectData describes one on-chain object with optional content.
type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  uint64         `json:"version,string"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type,omitempty"`
	Content  *ObjectContent `json:"content,omitempty"`
}

// ObjectResult wraps an object lookup; Data is nil when the object is absent.
type ObjectResult struct {
	Data  *ObjectData     `json:"data,omitempty"`
	Error json.RawMessage `json:"error,omitempty"`
}

// OwnedObjectPage is the paged result of creek_getOwnedObjects.
type OwnedObjectPage struct {
	Data        []ObjectResult `json:"data"`
	HasNextPage bool           `json:"hasNextPage"`
}

// DynamicFieldName is the key of one entry inside an on-chain bag or table.
type DynamicFieldName struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// DynamicFieldInfo enumerates one entry of a bag/table without its content.
type DynamicFieldInfo struct {
	Name     DynamicFieldName `json:"name"`
	ObjectID string           `json:"objectId"`
}

// EntryName extracts the asset-type name reported for a dynamic entry.
// Bag and table keys are encoded as {"name": "<type string>"} in this
// protocol's schema; entries with a different key shape yield "".
func (f DynamicFieldInfo) EntryName() string {
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(f.Name.Value, &named); err == nil && named.Name != "" {
		return named.Name
	}
	var plain string
	if err := json.Unmarshal(f.Name.Value, &plain); err == nil {
		return plain
	}
	return ""
}

// DynamicFieldPage is the paged result of creek_getDynamicFields.
type DynamicFieldPage struct {
	Data        []DynamicFieldInfo `json:"data"`
	HasNextPage bool               `json:"hasNextPage"`
}

// ExecutionStatus reports the terminal result of executing a transaction.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TransactionEffects is the subset of execution effects the bot inspects.
type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

// ExecuteResult is the synchronous reply to creek_executeTransaction.
// Effects may be nil when the node did not execute locally before replying.
type ExecuteResult struct {
	Digest  string              `json:"digest"`
	Effects *TransactionEffects `json:"effects,omitempty"`
}

// Receipt is a durable transaction record fetched after submission.
type Receipt struct {
	Digest     string              `json:"digest"`
	Checkpoint string              `json:"checkpoint,omitempty"`
	Effects    *TransactionEffects `json:"effects,omitempty"`
}
