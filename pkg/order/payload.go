package order

import (
	"encoding/json"
	"fmt"
	"math"
)

// WirePayload is the submission body handed to the transport layer.
//
//	{
//	  "order": {
//	    "nonce": 1700000000000,
//	    "seskey1": "...",
//	    "seskey2": "...",
//	    "price": 5000000000000,
//	    "amount": -15000000000,
//	    "base": "BTC",
//	    "quote": "USD",
//	    "flags": 4
//	  }
//	}
type WirePayload struct {
	Order WireOrder `json:"order"`
}

// WireOrder carries price and amount scaled by WireScale.
type WireOrder struct {
	Nonce   int64   `json:"nonce"`
	SesKey1 string  `json:"seskey1"`
	SesKey2 string  `json:"seskey2"`
	Price   float64 `json:"price"`
	Amount  float64 `json:"amount"`
	Base    string  `json:"base"`
	Quote   string  `json:"quote"`
	Flags   Flags   `json:"flags"`
}

// Validate performs structural checks on a payload.
func (p WirePayload) Validate() error {
	o := p.Order
	if o.Nonce <= 0 {
		return fmt.Errorf("invalid nonce: %d", o.Nonce)
	}
	if !isFinite(o.Price) {
		return fmt.Errorf("price is not finite: %v", o.Price)
	}
	if !isFinite(o.Amount) {
		return fmt.Errorf("amount is not finite: %v", o.Amount)
	}
	if o.Flags.Has(FlagIOC) && o.Flags.Has(FlagMarket) {
		return fmt.Errorf("flags %s: IOC & MARKET", o.Flags)
	}
	return nil
}

// Encode converts the payload to JSON bytes
func (p WirePayload) Encode() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return json.Marshal(p)
}

// DecodeWirePayload parses JSON bytes into a WirePayload
func DecodeWirePayload(data []byte) (WirePayload, error) {
	var p WirePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return WirePayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if err := p.Validate(); err != nil {
		return WirePayload{}, fmt.Errorf("invalid payload: %w", err)
	}
	return p, nil
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
