package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/uhyunpark/venueorder/pkg/app/intake"
	"github.com/uhyunpark/venueorder/pkg/crypto"
	"github.com/uhyunpark/venueorder/pkg/order"
	"github.com/uhyunpark/venueorder/pkg/util"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	app := intake.NewApp(intake.Config{
		Credentials: order.Credentials{SesKey1: "s1", SesKey2: "s2"},
		Clock:       util.NewFixedClock(time.UnixMilli(1_700_000_000_000)),
		Logger:      zap.NewNop().Sugar(),
	})
	s := NewServer(app, zap.NewNop().Sugar(), []string{"http://localhost:3000"})

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Shutdown(context.Background())
	})
	return s, ts
}

func postOrder(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/orders/normalize", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST normalize: %v", err)
	}
	return resp
}

func TestNormalizeOrder(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postOrder(t, ts, `{"price":"50000","amount":"-1.5","cid":7,"type":"EXCHANGE_MARKET","symbol":"BTC.USDT"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var got NormalizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if got.Parsed.Symbol != "tBTCUST" || got.Parsed.Flags != 4 || got.Parsed.Notation != "dotted" {
		t.Errorf("unexpected parsed info: %+v", got.Parsed)
	}
	if got.Message.ClientID != 7 || got.Message.Amount != "-1.5" {
		t.Errorf("unexpected message: %+v", got.Message)
	}
	if got.Payload.Order.Price != 5e14 || got.Payload.Order.Amount != -1.5e10 {
		t.Errorf("unexpected payload scaling: %+v", got.Payload.Order)
	}
	if got.Payload.Order.Nonce != 1_700_000_000_000 || got.Payload.Order.SesKey1 != "s1" {
		t.Errorf("unexpected payload header: %+v", got.Payload.Order)
	}

	encoded, err := got.Payload.Encode()
	if err != nil {
		t.Fatalf("re-encode payload: %v", err)
	}
	if got.Digest != crypto.DigestHex(encoded) {
		t.Errorf("digest %s does not match payload", got.Digest)
	}
}

func TestNormalizeOrderRejected(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"price too large", `{"price":900720,"amount":1,"symbol":"tBTCUSD"}`, http.StatusUnprocessableEntity, "PriceTooLarge"},
		{"amount out of range", `{"amount":-900720,"symbol":"tBTCUSD"}`, http.StatusUnprocessableEntity, "AmountOutOfRange"},
		{"flag overload", `{"amount":1,"type":"EXCHANGE_MARKET","flags":2,"symbol":"tBTCUSD"}`, http.StatusUnprocessableEntity, "FlagOverload"},
		{"invalid amount", `{"amount":"lots","symbol":"tBTCUSD"}`, http.StatusUnprocessableEntity, "InvalidAmount"},
		{"malformed json", `{"amount":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postOrder(t, ts, tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", errResp.Kind, tt.kind)
			}
		})
	}
}

func TestParseSymbolEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		body string
		want SymbolInfo
	}{
		{`{"symbol":"ETH.USDT"}`, SymbolInfo{Input: "ETH.USDT", Notation: "dotted", Base: "ETH", Quote: "USDT", Wire: "tETHUST"}},
		{`{"symbol":"tBTC/USD"}`, SymbolInfo{Input: "tBTC/USD", Notation: "prefixed", Base: "BTC", Quote: "/USD", Wire: "tBTC/USD"}},
		{`{"symbol":""}`, SymbolInfo{Input: "", Notation: "prefixed"}},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/symbols/parse", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST symbol: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var got SymbolInfo
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("symbol info = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSymbolEndpointBadRequest(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{`{}`, `{"symbol":null}`, `{"symbol":`} {
		resp, err := http.Post(ts.URL+"/api/v1/symbols/parse", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST symbol: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, resp.StatusCode, http.StatusBadRequest)
		}
	}

	resp, err := http.Get(ts.URL + "/api/v1/symbols/parse")
	if err != nil {
		t.Fatalf("GET symbol: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	postOrder(t, ts, `{"amount":1,"symbol":"tBTCUSD"}`).Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`venueorder_orders_accepted_total{notation="prefixed"} 1`)) {
		t.Errorf("metrics missing accepted counter:\n%s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/orders/normalize", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestWebSocketOrderStream(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(WSSubscribeRequest{Op: "subscribe", Channels: []string{"orders:tETHUSD"}}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var ack WSAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != "subscribed" || len(ack.Channels) != 1 {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	// Different symbol first; the client must not see it.
	postOrder(t, ts, `{"amount":1,"symbol":"tBTCUSD"}`).Body.Close()
	postOrder(t, ts, `{"amount":"2.5","cid":11,"symbol":"tETHUSD"}`).Body.Close()

	var update OrderUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.Type != "order" || update.Channel != "orders:tETHUSD" {
		t.Errorf("unexpected update envelope: %+v", update)
	}
	if update.Order.ClientID != 11 || update.Order.Amount != "2.5" || update.Order.Symbol != "tETHUSD" {
		t.Errorf("unexpected streamed order: %+v", update.Order)
	}
}

func TestWebSocketWithoutStart(t *testing.T) {
	app := intake.NewApp(intake.Config{Logger: zap.NewNop().Sugar()})
	s := NewServer(app, zap.NewNop().Sugar(), nil)
	defer s.Shutdown(context.Background())

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(WSSubscribeRequest{Op: "subscribe", Channels: []string{"orders"}}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	var ack WSAck
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != "subscribed" {
		t.Errorf("unexpected ack: %+v", ack)
	}
}
