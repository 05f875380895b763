package propschema

import (
	"reflect"
	"strings"
)

// Comparison operators accepted by Compare.
const (
	OpEq = "="
	OpNe = "!="
	OpGt = ">"
	OpGe = ">="
	OpLt = "<"
	OpLe = "<="
)

// Compare evaluates a op b for the six supported operators. Numbers of any
// Go type (and json.Number) compare numerically, strings lexicographically;
// for other operands only = and != apply, by deep equality. Unsupported
// operators return false.
func Compare(a any, op string, b any) bool {
	switch op {
	case OpEq:
		return StrictEqual(a, b)
	case OpNe:
		return !StrictEqual(a, b)
	case OpGt, OpGe, OpLt, OpLe:
		return compareOrdered(a, op, b)
	default:
		return false
	}
}

func compareOrdered(a any, op string, b any) bool {
	var c int
	if x, ok := AsFloat(a); ok {
		y, ok := AsFloat(b)
		if !ok {
			return false
		}
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else if x, ok := a.(string); ok {
		y, ok := b.(string)
		if !ok {
			return false
		}
		c = strings.Compare(x, y)
	} else {
		return false
	}
	switch op {
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	}
	return false
}

// StrictEqual is type-strict equality, except that numbers compare by value
// whatever their Go representation: decoded documents carry float64 or
// json.Number where callers usually wrote int.
func StrictEqual(a, b any) bool {
	if x, ok := AsFloat(a); ok {
		if y, ok := AsFloat(b); ok {
			return x == y
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}
