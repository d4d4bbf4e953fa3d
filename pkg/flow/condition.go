package flow

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/rcflow/pkg/domain"
)

// EvaluateCondition compares the memory value of variable against compare.
//
// Equality operators (and the empty operator, which means "==") compare the
// exact string forms. Ordering operators compare numerically and are false
// unless both sides start with a finite number. Unknown operators are false.
func EvaluateCondition(variable string, op domain.Operator, compare string, mem domain.GameMemory) bool {
	left := mem.Lookup(variable)

	switch op {
	case "", domain.OpEqual:
		return left == compare
	case domain.OpNotEqual:
		return left != compare
	case domain.OpGreater, domain.OpLess, domain.OpGreaterEqual, domain.OpLessEqual:
		a, okA := parseNumber(left)
		b, okB := parseNumber(compare)
		if !okA || !okB {
			return false
		}
		return compareNumbers(op, a, b)
	default:
		return false
	}
}

func compareNumbers(op domain.Operator, a, b float64) bool {
	switch op {
	case domain.OpGreater:
		return a > b
	case domain.OpLess:
		return a < b
	case domain.OpGreaterEqual:
		return a >= b
	case domain.OpLessEqual:
		return a <= b
	}
	return false
}

// numericPrefix matches the longest leading decimal literal. An exponent
// marker only counts when digits follow it, so "1e" reads as 1.
var numericPrefix = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

// parseNumber reads the number a value starts with, ignoring leading
// whitespace and any trailing text: "10abc" is 10 and "5px" is 5.
// Values without a leading number, and infinities, are not numbers.
func parseNumber(s string) (float64, bool) {
	lit := numericPrefix.FindString(strings.TrimLeft(s, " \t\n\r\v\f\u00a0\ufeff"))
	if lit == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
