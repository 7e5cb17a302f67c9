package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// RPCClient 一个最小的以太坊 JSON-RPC 客户端。
// HTTPClient 可注入 httptest，默认不发起真实网络调用的测试都走这里。
type RPCClient struct {
	URL        string
	HTTPClient *http.Client
	Limiter    RateLimiter

	nextID atomic.Uint64
}

func NewRPCClient(url string, limiter RateLimiter) *RPCClient {
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return &RPCClient{
		URL:        url,
		HTTPClient: NewDefaultHTTPClient(),
		Limiter:    limiter,
	}
}

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Call 发送一次 JSON-RPC 请求并返回原始 result。
func (c *RPCClient) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if c == nil || c.HTTPClient == nil {
		return nil, fmt.Errorf("http client not set")
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	var rr rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, err
	}
	if rr.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rr.Error.Code, rr.Error.Message)
	}
	return rr.Result, nil
}

type ethCallArgs struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// EthCall 对合约做只读调用，返回十六进制结果。
func (c *RPCClient) EthCall(ctx context.Context, to, data string) (string, error) {
	raw, err := c.Call(ctx, "eth_call", ethCallArgs{To: to, Data: data}, "latest")
	if err != nil {
		return "", err
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode eth_call result: %w", err)
	}
	return result, nil
}
