package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEthCall(t *testing.T) {
	var gotReq rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0xf4240"}`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, nil)
	c.HTTPClient = srv.Client()

	result, err := c.EthCall(context.Background(), "0xpool", "0xdata")
	if err != nil {
		t.Fatalf("eth_call: %v", err)
	}
	if result != "0xf4240" {
		t.Errorf("Unexpected result: %s", result)
	}
	if gotReq.Method != "eth_call" {
		t.Errorf("Expected eth_call method, got %s", gotReq.Method)
	}
	if gotReq.Jsonrpc != "2.0" {
		t.Errorf("Expected jsonrpc 2.0, got %s", gotReq.Jsonrpc)
	}
	if len(gotReq.Params) != 2 {
		t.Fatalf("Expected 2 params, got %d", len(gotReq.Params))
	}
}

func TestCallSurfacesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, nil)
	c.HTTPClient = srv.Client()

	if _, err := c.Call(context.Background(), "eth_call"); err == nil {
		t.Fatalf("Expected rpc error to surface")
	}
}

func TestCallHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, nil)
	c.HTTPClient = srv.Client()

	if _, err := c.Call(context.Background(), "eth_blockNumber"); err == nil {
		t.Fatalf("Expected error on 502")
	}
}

func TestCallIncrementsID(t *testing.T) {
	var ids []uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		ids = append(ids, req.ID)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x1"}`))
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, nil)
	c.HTTPClient = srv.Client()

	_, _ = c.Call(context.Background(), "eth_blockNumber")
	_, _ = c.Call(context.Background(), "eth_blockNumber")
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Errorf("Expected distinct request IDs, got %v", ids)
	}
}
