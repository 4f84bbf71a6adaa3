package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"
)

// Config controls how the Client reaches the ledger JSON-RPC endpoint.
type Config struct {
	// Endpoint is the full node URL, e.g. https://fullnode.testnet.creek.net.
	Endpoint string
	// ProxyURL optionally routes all requests through a forward proxy.
	// Schemes socks5/socks5h use a SOCKS dialer, anything else HTTP CONNECT.
	ProxyURL string
	// Timeout bounds a single HTTP round trip. Defaults to 30s.
	Timeout time.Duration
	// RequestsPerSecond paces outbound calls. Zero disables pacing.
	RequestsPerSecond float64
}

// Client implements the subset of JSON-RPC 2.0 the activity bot needs.
// A client is built fresh per (account, proxy) pairing so connection state
// is never shared across principals.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// New constructs a Client from the provided configuration.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport, err := buildTransport(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout, Transport: transport},
		limiter:  limiter,
	}, nil
}

func buildTransport(proxyURL string) (*http.Transport, error) {
	trimmed := strings.TrimSpace(proxyURL)
	if trimmed == "" {
		return &http.Transport{}, nil
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy url: %w", err)
	}
	switch parsed.Scheme {
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("configure socks proxy: %w", err)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks proxy dialer does not support context dialing")
		}
		return &http.Transport{DialContext: contextDialer.DialContext}, nil
	default:
		return &http.Transport{Proxy: http.ProxyURL(parsed)}, nil
	}
}

// Call performs a JSON-RPC request against the configured endpoint and
// decodes the result payload into result when non-nil.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	if c == nil {
		return fmt.Errorf("rpc client is nil")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	reqBody := Request{JSONRPC: "2.0", ID: uuid.NewString(), Method: method, Params: params}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Client", "creekbotd")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call rpc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc call failed with status %s", resp.Status)
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}
	return nil
}

// GetCoins enumerates the coin objects of one asset type owned by owner.
func (c *Client) GetCoins(ctx context.Context, owner, coinType string) ([]Coin, error) {
	var page CoinPage
	params := map[string]any{"owner": owner, "coinType": coinType}
	if err := c.Call(ctx, "creek_getCoins", params, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetBalance fetches the aggregate balance of one asset type for owner.
func (c *Client) GetBalance(ctx context.Context, owner, coinType string) (*Balance, error) {
	var balance Balance
	params := map[string]any{"owner": owner, "coinType": coinType}
	if err := c.Call(ctx, "creek_getBalance", params, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// GetObject fetches a single object, optionally with full content.
func (c *Client) GetObject(ctx context.Context, objectID string, showContent bool) (*ObjectResult, error) {
	var result ObjectResult
	params := map[string]any{
		"objectId": objectID,
		"options":  map[string]bool{"showContent": showContent, "showType": true},
	}
	if err := c.Call(ctx, "creek_getObject", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOwnedObjects lists objects owned by owner filtered to one struct type.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string) ([]ObjectResult, error) {
	var page OwnedObjectPage
	params := map[string]any{
		"owner":   owner,
		"filter":  map[string]string{"StructType": structType},
		"options": map[string]bool{"showContent": true, "showType": true},
	}
	if err := c.Call(ctx, "creek_getOwnedObjects", params, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetDynamicFields enumerates the entries of an on-chain bag or table.
func (c *Client) GetDynamicFields(ctx context.Context, parentID string, limit int) ([]DynamicFieldInfo, error) {
	var page DynamicFieldPage
	params := map[string]any{"parentId": parentID, "limit": limit}
	if err := c.Call(ctx, "creek_getDynamicFields", params, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// ExecuteTransaction submits a signed transaction requesting inline effects.
// The node may reply without effects when local execution is unavailable,
// in which case the caller must poll for a receipt.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes, signature string) (*ExecuteResult, error) {
	var result ExecuteResult
	params := map[string]any{
		"txBytes":   txBytes,
		"signature": signature,
		"options":   map[string]bool{"showEffects": true},
	}
	if err := c.Call(ctx, "creek_executeTransaction", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForTransaction blocks server-side until the transaction is finalized
// or the supplied timeout elapses. The context should carry a client-side
// deadline slightly above timeout.
func (c *Client) WaitForTransaction(ctx context.Context, digest string, timeout time.Duration) (*Receipt, error) {
	var receipt Receipt
	params := map[string]any{"digest": digest, "timeoutMs": timeout.Milliseconds()}
	if err := c.Call(ctx, "creek_waitForTransaction", params, &receipt); err != nil {
		return nil, err
	}
	if receipt.Digest == "" {
		return nil, nil
	}
	return &receipt, nil
}

// GetTransaction fetches a durable transaction record by digest.
func (c *Client) GetTransaction(ctx context.Context, digest string) (*Receipt, error) {
	var receipt Receipt
	params := map[string]any{
		"digest":  digest,
		"options": map[string]bool{"showEffects": true, "showEvents": true},
	}
	if err := c.Call(ctx, "creek_getTransaction", params, &receipt); err != nil {
		return nil, err
	}
	if receipt.Digest == "" {
		return nil, nil
	}
	return &receipt, nil
}
