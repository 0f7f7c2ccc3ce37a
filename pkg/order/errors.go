package order

import "errors"

// Kind classifies why a raw order was rejected.
type Kind string

const (
	KindPriceTooLarge    Kind = "PriceTooLarge"
	KindAmountOutOfRange Kind = "AmountOutOfRange"
	KindInvalidAmount    Kind = "InvalidAmount"
	KindFlagOverload     Kind = "FlagOverload"
	KindMissingSymbol    Kind = "MissingSymbol"
)

// ValidationError rejects a raw order as a whole. Two ValidationErrors
// match under errors.Is when their kinds are equal.
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrPriceTooLarge    = &ValidationError{Kind: KindPriceTooLarge, Message: "price too large"}
	ErrAmountOutOfRange = &ValidationError{Kind: KindAmountOutOfRange, Message: "amount out of range"}
	ErrInvalidAmount    = &ValidationError{Kind: KindInvalidAmount, Message: "amount is not a number"}
	ErrFlagOverload     = &ValidationError{Kind: KindFlagOverload, Message: "flag/ordertype overload"}
	ErrMissingSymbol    = &ValidationError{Kind: KindMissingSymbol, Message: "missing symbol"}
)

// KindOf extracts the rejection kind from err, if any.
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
