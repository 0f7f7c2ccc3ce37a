package order

import "strings"

// Flags is the venue order-flag bitmask. Bits outside the known ones are
// carried through untouched.
type Flags int64

const (
	FlagPostOnly Flags = 1
	FlagIOC      Flags = 2
	FlagMarket   Flags = 4
)

// Order types that imply a flag.
const (
	TypeExchangeMarket = "EXCHANGE_MARKET"
	TypeExchangeIOC    = "EXCHANGE_IOC"
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

func (f Flags) String() string {
	var names []string
	if f.Has(FlagPostOnly) {
		names = append(names, "POST_ONLY")
	}
	if f.Has(FlagIOC) {
		names = append(names, "IOC")
	}
	if f.Has(FlagMarket) {
		names = append(names, "MARKET")
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// deriveFlags extends the caller's explicit flags with the bits implied by
// the order type and post-only marker. IOC and MARKET never coexist.
func deriveFlags(explicit any, orderType string, postOnly any) (Flags, error) {
	n := LooseNumber(explicit)
	v, ok := truncInt64(n)
	if !ok {
		v = int64(toInt32(n))
	}
	flags := Flags(v)

	switch orderType {
	case TypeExchangeMarket:
		flags |= FlagMarket
	case TypeExchangeIOC:
		flags |= FlagIOC
	}

	if flags.Has(FlagMarket) && flags.Has(FlagIOC) {
		return 0, &ValidationError{
			Kind:    KindFlagOverload,
			Message: "flag/ordertype overload: IOC & MARKET",
		}
	}

	if Truthy(postOnly) {
		flags |= FlagPostOnly
	}
	return flags, nil
}
