package domain

import (
	"maps"

	"github.com/spf13/cast"
)

// Operator is a comparison operator of a Condition node.
// The zero value behaves as OpEqual.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

// Operators lists the recognised operators.
var Operators = []Operator{OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual}

// Valid reports whether op is empty or one of the recognised operators.
func (op Operator) Valid() bool {
	if op == "" {
		return true
	}
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// GameMemory holds the variables shared between the game and the flow.
// Values are strings, numbers or booleans; the engine only ever writes strings.
type GameMemory map[string]any

// Lookup returns the string form of a variable, or "" when it is absent.
// Numbers are rendered in their shortest form (100, 2.5) and booleans as true/false.
func (m GameMemory) Lookup(name string) string {
	v, ok := m[name]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Clone returns a shallow copy of the memory. A nil memory clones to an empty one.
func (m GameMemory) Clone() GameMemory {
	out := make(GameMemory, len(m))
	maps.Copy(out, m)
	return out
}
