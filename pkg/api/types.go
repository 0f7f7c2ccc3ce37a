package api

import "github.com/uhyunpark/venueorder/pkg/order"

// API request/response types for REST endpoints and WebSocket messages

// ==============================
// REST Response Types
// ==============================

// ParsedInfo is the normalized order record
type ParsedInfo struct {
	ClientID int64   `json:"clientId"`
	Type     string  `json:"type"`
	Flags    int64   `json:"flags"`
	FlagSet  string  `json:"flagSet"` // e.g. "POST_ONLY|IOC"
	Price    float64 `json:"price"`
	Amount   float64 `json:"amount"`
	Base     string  `json:"base"`
	Quote    string  `json:"quote"`
	Symbol   string  `json:"symbol"`   // wire symbol
	Notation string  `json:"notation"` // "dotted" or "prefixed"
}

// NormalizeResponse is returned by POST /api/v1/orders/normalize
type NormalizeResponse struct {
	Parsed  ParsedInfo          `json:"parsed"`
	Message order.MessageObject `json:"message"`
	Payload order.WirePayload   `json:"payload"`
	Digest  string              `json:"digest"` // keccak256 of the encoded payload
}

// ParseSymbolRequest is the body of POST /api/v1/symbols/parse
type ParseSymbolRequest struct {
	Symbol *string `json:"symbol"`
}

// SymbolInfo is returned by POST /api/v1/symbols/parse
type SymbolInfo struct {
	Input    string `json:"input"`
	Notation string `json:"notation"`
	Base     string `json:"base"`
	Quote    string `json:"quote"`
	Wire     string `json:"wire"`
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"` // validation failure kind, e.g. "FlagOverload"
}

// ==============================
// WebSocket Message Types
// ==============================

// WSSubscribeRequest is sent by client to subscribe to channels
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g., ["orders", "orders:tBTCUSD"]
}

// WSAck confirms a subscription change
type WSAck struct {
	Type     string   `json:"type"` // "subscribed" or "unsubscribed"
	Channels []string `json:"channels"`
}

// OrderUpdate is broadcast when an order is accepted
type OrderUpdate struct {
	Type    string              `json:"type"` // "order"
	Channel string              `json:"channel"`
	Order   order.MessageObject `json:"order"`
	Digest  string              `json:"digest"`
}

func toParsedInfo(p order.Parsed) ParsedInfo {
	return ParsedInfo{
		ClientID: p.ClientID,
		Type:     p.Type,
		Flags:    int64(p.Flags),
		FlagSet:  p.Flags.String(),
		Price:    p.Price,
		Amount:   p.Amount,
		Base:     p.Base,
		Quote:    p.Quote,
		Symbol:   p.Symbol,
		Notation: p.Notation.String(),
	}
}
