// Package order validates raw venue order requests and projects them into
// a message object and a wire payload.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/uhyunpark/venueorder/pkg/util"
)

// Threshold bounds price and |amount|. It sits below the largest exact
// float64 integer divided by WireScale so scaled values stay exact.
const Threshold = 900719.92547

// WireScale is the fixed-point factor applied to price and amount on the wire.
const WireScale = 1e10

// RawOrder is an order request as received from a client. Numeric fields
// may hold JSON numbers, numeric strings or be absent. A nil Symbol means
// the field was absent; an empty one is parsed like any other symbol.
type RawOrder struct {
	Price    any     `json:"price,omitempty"`
	Amount   any     `json:"amount,omitempty"`
	ClientID any     `json:"clientId,omitempty"`
	CID      any     `json:"cid,omitempty"`
	Type     string  `json:"type,omitempty"`
	Flags    any     `json:"flags,omitempty"`
	PostOnly any     `json:"postOnly,omitempty"`
	Symbol   *string `json:"symbol"`
}

// SymbolPtr returns a pointer to s for filling RawOrder.Symbol.
func SymbolPtr(s string) *string { return &s }

// SymbolText returns the requested symbol, or "" when it is absent.
func (r RawOrder) SymbolText() string {
	if r.Symbol == nil {
		return ""
	}
	return *r.Symbol
}

// DecodeRawOrder parses a JSON order request, keeping numbers as
// json.Number so their literal text is coerced rather than a pre-rounded
// float.
func DecodeRawOrder(data []byte) (RawOrder, error) {
	var raw RawOrder
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return RawOrder{}, fmt.Errorf("failed to decode order: %w", err)
	}
	return raw, nil
}

// Credentials are the session keys copied into every wire payload.
type Credentials struct {
	SesKey1 string `json:"seskey1"`
	SesKey2 string `json:"seskey2"`
}

// Parsed is the normalized form of a RawOrder.
type Parsed struct {
	ClientID int64
	Type     string
	Flags    Flags
	Price    float64
	Amount   float64
	Base     string
	Quote    string
	Symbol   string
	Notation Notation
}

// Order is a validated order request. It is immutable once built.
type Order struct {
	raw    RawOrder
	parsed Parsed
	creds  Credentials
	clock  util.Clock
}

type Option func(*Order)

// WithClock sets the clock used for the client id fallback and nonces.
func WithClock(c util.Clock) Option {
	return func(o *Order) {
		if c != nil {
			o.clock = c
		}
	}
}

// New validates raw and parses it. No Order is returned on failure.
func New(raw RawOrder, creds Credentials, opts ...Option) (*Order, error) {
	o := &Order{raw: raw, creds: creds, clock: util.RealClock{}}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.validate(); err != nil {
		return nil, err
	}
	parsed, err := o.parse()
	if err != nil {
		return nil, err
	}
	o.parsed = parsed
	return o, nil
}

func (o *Order) validate() error {
	if LooseNumber(o.raw.Price) > Threshold {
		return &ValidationError{
			Kind:    KindPriceTooLarge,
			Message: "price should be less than " + FormatNumber(Threshold),
		}
	}

	amount := StrictNumber(o.raw.Amount)
	if math.Abs(amount) > Threshold {
		return &ValidationError{
			Kind: KindAmountOutOfRange,
			Message: fmt.Sprintf("amount should be between -%s and %s",
				FormatNumber(Threshold), FormatNumber(Threshold)),
		}
	}
	if math.IsNaN(amount) {
		return &ValidationError{
			Kind:    KindInvalidAmount,
			Message: fmt.Sprintf("amount %v is not a number", o.raw.Amount),
		}
	}
	return nil
}

func (o *Order) parse() (Parsed, error) {
	raw := o.raw

	clientID, ok := looseInt64(raw.ClientID)
	if !ok {
		clientID, ok = looseInt64(raw.CID)
	}
	if !ok {
		clientID = util.NowMillis(o.clock)
	}

	flags, err := deriveFlags(raw.Flags, raw.Type, raw.PostOnly)
	if err != nil {
		return Parsed{}, err
	}

	if raw.Symbol == nil {
		return Parsed{}, &ValidationError{Kind: KindMissingSymbol, Message: "symbol is required"}
	}
	sym := ParseSymbol(*raw.Symbol)

	return Parsed{
		ClientID: clientID,
		Type:     raw.Type,
		Flags:    flags,
		Price:    LooseNumber(raw.Price),
		Amount:   StrictNumber(raw.Amount),
		Base:     sym.Base,
		Quote:    sym.Quote,
		Symbol:   sym.Wire,
		Notation: sym.Notation,
	}, nil
}

// Raw returns the request the order was built from.
func (o *Order) Raw() RawOrder { return o.raw }

func (o *Order) Parsed() Parsed { return o.parsed }

// MessageObject is the lightweight view of an order used for logging and
// messaging. Price and amount are decimal strings, not scaled.
type MessageObject struct {
	ClientID int64  `json:"cid"`
	Type     string `json:"type"`
	Symbol   string `json:"symbol"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
}

func (o *Order) MessageObject() MessageObject {
	p := o.parsed
	return MessageObject{
		ClientID: p.ClientID,
		Type:     p.Type,
		Symbol:   p.Symbol,
		Price:    FormatNumber(p.Price),
		Amount:   FormatNumber(p.Amount),
	}
}

// Serialize builds the submission payload. Every call draws a fresh nonce.
func (o *Order) Serialize() WirePayload {
	p := o.parsed
	return WirePayload{
		Order: WireOrder{
			Nonce:   util.NowMillis(o.clock),
			SesKey1: o.creds.SesKey1,
			SesKey2: o.creds.SesKey2,
			Price:   p.Price * WireScale,
			Amount:  p.Amount * WireScale,
			Base:    p.Base,
			Quote:   p.Quote,
			Flags:   p.Flags,
		},
	}
}
