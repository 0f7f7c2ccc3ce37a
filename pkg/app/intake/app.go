// Package intake turns raw client order requests into validated orders and
// their submission payloads, recording the outcome in logs and metrics.
package intake

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/uhyunpark/venueorder/pkg/crypto"
	"github.com/uhyunpark/venueorder/pkg/metrics"
	"github.com/uhyunpark/venueorder/pkg/order"
	"github.com/uhyunpark/venueorder/pkg/util"
)

// kindUnencodable labels orders that validated but produced a payload
// JSON cannot carry (e.g. a -Infinity price).
const kindUnencodable = "Unencodable"

type Config struct {
	Credentials order.Credentials
	Clock       util.Clock
	Logger      *zap.SugaredLogger
	Metrics     *metrics.Metrics
}

type App struct {
	creds   order.Credentials
	clock   util.Clock
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	// OnAccepted is called after an order is prepared (set by the API layer
	// to stream message objects).
	OnAccepted func(p *Prepared)
}

func NewApp(cfg Config) *App {
	if cfg.Clock == nil {
		cfg.Clock = util.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	return &App{
		creds:   cfg.Credentials,
		clock:   cfg.Clock,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
}

func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// Prepared is an accepted order with both of its projections.
type Prepared struct {
	Order   *order.Order
	Message order.MessageObject
	Payload order.WirePayload
	Encoded []byte
	Digest  string
}

// Prepare validates raw and builds its payload. creds overrides the
// configured session keys when non-nil.
func (a *App) Prepare(raw order.RawOrder, creds *order.Credentials) (*Prepared, error) {
	c := a.creds
	if creds != nil {
		c = *creds
	}

	o, err := order.New(raw, c, order.WithClock(a.clock))
	if err != nil {
		kind, _ := order.KindOf(err)
		a.metrics.OrdersRejected.WithLabelValues(string(kind)).Inc()
		a.log.Warnw("order_rejected",
			"kind", string(kind),
			"symbol", raw.SymbolText(),
			"type", raw.Type,
			"err", err)
		return nil, err
	}

	payload := o.Serialize()
	encoded, err := payload.Encode()
	if err != nil {
		a.metrics.OrdersRejected.WithLabelValues(kindUnencodable).Inc()
		a.log.Errorw("order_payload_encode_failed", "symbol", raw.SymbolText(), "err", err)
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	p := &Prepared{
		Order:   o,
		Message: o.MessageObject(),
		Payload: payload,
		Encoded: encoded,
		Digest:  crypto.DigestHex(encoded),
	}

	parsed := o.Parsed()
	a.metrics.OrdersAccepted.WithLabelValues(parsed.Notation.String()).Inc()
	a.metrics.OrderAmount.Observe(math.Abs(parsed.Amount))
	a.log.Infow("order_accepted",
		"cid", parsed.ClientID,
		"symbol", parsed.Symbol,
		"base", parsed.Base,
		"quote", parsed.Quote,
		"flags", parsed.Flags.String(),
		"nonce", payload.Order.Nonce,
		"digest", p.Digest)

	if a.OnAccepted != nil {
		a.OnAccepted(p)
	}
	return p, nil
}

// PrepareJSON decodes a JSON order request and prepares it.
func (a *App) PrepareJSON(data []byte, creds *order.Credentials) (*Prepared, error) {
	raw, err := order.DecodeRawOrder(data)
	if err != nil {
		return nil, err
	}
	return a.Prepare(raw, creds)
}
