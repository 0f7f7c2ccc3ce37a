package order

import "strings"

// Notation tells which venue convention a symbol is written in.
type Notation int

const (
	// Prefixed symbols carry a one-letter venue marker followed by a
	// three-letter base and the quote, e.g. "tBTCUSD".
	Prefixed Notation = iota
	// Dotted symbols separate base and quote, e.g. "BTC.USDT".
	Dotted
)

func (n Notation) String() string {
	switch n {
	case Dotted:
		return "dotted"
	case Prefixed:
		return "prefixed"
	default:
		return "unknown"
	}
}

// Symbol is a parsed asset pair together with its wire form.
type Symbol struct {
	Notation Notation
	Base     string
	Quote    string
	Wire     string
}

// wireQuotes renames quote assets whose wire code differs.
var wireQuotes = map[string]string{
	"USDT": "UST",
}

// ParseSymbol splits a human-facing symbol into base, quote and wire
// symbol. Malformed input yields truncated or empty parts rather than an
// error.
func ParseSymbol(s string) Symbol {
	if strings.Contains(s, ".") {
		parts := strings.Split(s, ".")
		base, quote := parts[0], parts[1]
		wq, ok := wireQuotes[quote]
		if !ok {
			wq = quote
		}
		return Symbol{Notation: Dotted, Base: base, Quote: quote, Wire: "t" + base + wq}
	}

	var rest []rune
	if r := []rune(s); len(r) > 1 {
		rest = r[1:]
	}
	base, quote := string(rest), ""
	if len(rest) > 3 {
		base, quote = string(rest[:3]), string(rest[3:])
	}
	return Symbol{Notation: Prefixed, Base: base, Quote: quote, Wire: s}
}
