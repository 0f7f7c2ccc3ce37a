package order

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Raw order fields arrive loosely typed (JSON numbers, numeric strings,
// booleans, null). The helpers below give them one numeric reading:
// strict coercion yields NaN for anything that is not a number literal,
// loose coercion additionally folds NaN and zero into 0.

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	hexLiteral     = regexp.MustCompile(`^0[xX][0-9a-fA-F]+$`)
	octalLiteral   = regexp.MustCompile(`^0[oO][0-7]+$`)
	binaryLiteral  = regexp.MustCompile(`^0[bB][01]+$`)
)

// StrictNumber converts v to a float64, returning NaN when v is missing or
// not numeric. Empty and whitespace-only strings read as 0.
func StrictNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case json.Number:
		return stringToNumber(string(x))
	case string:
		return stringToNumber(x)
	default:
		return math.NaN()
	}
}

// LooseNumber is StrictNumber with NaN and zero folded into 0.
func LooseNumber(v any) float64 {
	n := StrictNumber(v)
	if math.IsNaN(n) || n == 0 {
		return 0
	}
	return n
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	switch {
	case hexLiteral.MatchString(s):
		return radixToNumber(s[2:], 16)
	case octalLiteral.MatchString(s):
		return radixToNumber(s[2:], 8)
	case binaryLiteral.MatchString(s):
		return radixToNumber(s[2:], 2)
	case !decimalLiteral.MatchString(s):
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func radixToNumber(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// Truthy reports whether v would pass a boolean test in the upstream
// request format: missing, false, zero, NaN and "" are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n := StrictNumber(x)
		return n != 0 && !math.IsNaN(n)
	default:
		return true
	}
}

// toInt32 wraps a number into the signed 32-bit range the way bitwise
// operators on the upstream side see it.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return int32(uint32(m))
}

// looseInt64 reports whether the loose reading of v is truthy and, if so,
// returns it truncated toward zero. A truthy fraction such as 0.5 yields 0.
func looseInt64(v any) (int64, bool) {
	n := LooseNumber(v)
	if n == 0 || math.IsInf(n, 0) {
		return 0, false
	}
	return truncInt64(n)
}

// truncInt64 truncates a finite n toward zero, failing when the result does
// not fit an int64.
func truncInt64(n float64) (int64, bool) {
	n = math.Trunc(n)
	if math.IsNaN(n) || math.IsInf(n, 0) || n >= math.MaxInt64 || n < math.MinInt64 {
		return 0, false
	}
	return int64(n), true
}

// FormatNumber renders f the way the upstream message format prints
// numbers: shortest round-trip digits, plain notation for exponents in
// [-7, 21), exponent notation otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// d.ddddde±XX
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)
	digits := strings.Replace(mant, ".", "", 1)
	k := len(digits)
	n := exp + 1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		e := n - 1
		expSign := "+"
		if e < 0 {
			expSign = "-"
			e = -e
		}
		if k == 1 {
			out = digits + "e" + expSign + strconv.Itoa(e)
		} else {
			out = digits[:1] + "." + digits[1:] + "e" + expSign + strconv.Itoa(e)
		}
	}
	return sign + out
}
