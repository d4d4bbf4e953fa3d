package flow

import (
	"testing"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateCondition(t *testing.T) {
	mem := domain.GameMemory{
		"score": "100", "name": "marcus", "flag": "true", "level": 15, "padded": " 7 ",
		"gold": "10abc", "width": "5px", "exp": "1e", "half": ".5", "huge": "1e999", "neg": "-3.5kg",
	}

	tests := []struct {
		name     string
		variable string
		op       domain.Operator
		compare  string
		want     bool
	}{
		{name: "== match", variable: "name", op: domain.OpEqual, compare: "marcus", want: true},
		{name: "== mismatch", variable: "name", op: domain.OpEqual, compare: "john", want: false},
		{name: "== numeric string", variable: "score", op: domain.OpEqual, compare: "100", want: true},
		{name: "== is not numeric", variable: "score", op: domain.OpEqual, compare: "100.0", want: false},
		{name: "!= match", variable: "name", op: domain.OpNotEqual, compare: "john", want: true},
		{name: "!= same", variable: "name", op: domain.OpNotEqual, compare: "marcus", want: false},
		{name: "> true", variable: "score", op: domain.OpGreater, compare: "50", want: true},
		{name: "> false", variable: "score", op: domain.OpGreater, compare: "200", want: false},
		{name: "< true", variable: "score", op: domain.OpLess, compare: "200", want: true},
		{name: ">= equal", variable: "score", op: domain.OpGreaterEqual, compare: "100", want: true},
		{name: "<= equal", variable: "score", op: domain.OpLessEqual, compare: "100", want: true},
		{name: "<= false", variable: "score", op: domain.OpLessEqual, compare: "99.5", want: false},
		{name: "non-numeric ordering is false", variable: "name", op: domain.OpGreater, compare: "aaa", want: false},
		{name: "non-numeric right side is false", variable: "score", op: domain.OpLess, compare: "lots", want: false},
		{name: "numeric memory value", variable: "level", op: domain.OpGreaterEqual, compare: "10", want: true},
		{name: "whitespace is trimmed for ordering", variable: "padded", op: domain.OpGreater, compare: "6", want: true},
		{name: "infinity is not a number", variable: "score", op: domain.OpLess, compare: "Inf", want: false},
		{name: "spelled infinity is not a number", variable: "score", op: domain.OpLess, compare: "Infinity", want: false},
		{name: "overflow is not a number", variable: "huge", op: domain.OpGreater, compare: "1", want: false},
		{name: "leading digits are read", variable: "gold", op: domain.OpGreaterEqual, compare: "5", want: true},
		{name: "unit suffix is ignored", variable: "width", op: domain.OpLess, compare: "6", want: true},
		{name: "suffix on compare value", variable: "score", op: domain.OpGreater, compare: "99 points", want: true},
		{name: "dangling exponent is dropped", variable: "exp", op: domain.OpLessEqual, compare: "1", want: true},
		{name: "leading dot fraction", variable: "half", op: domain.OpLess, compare: "1", want: true},
		{name: "signed prefix", variable: "neg", op: domain.OpLess, compare: "-3", want: true},
		{name: "text before digits is not a number", variable: "score", op: domain.OpGreater, compare: "x5", want: false},
		{name: "lone sign is not a number", variable: "score", op: domain.OpGreater, compare: "-", want: false},
		{name: "missing variable equals empty", variable: "nonexistent", op: domain.OpEqual, compare: "", want: true},
		{name: "missing variable differs from x", variable: "nonexistent", op: domain.OpEqual, compare: "x", want: false},
		{name: "empty operator means ==", variable: "flag", op: "", compare: "true", want: true},
		{name: "unknown operator", variable: "score", op: "=~", compare: "100", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(tt.variable, tt.op, tt.compare, mem))
		})
	}
}

func TestEvaluateCondition_NilMemory(t *testing.T) {
	assert.True(t, EvaluateCondition("anything", domain.OpEqual, "", nil))
	assert.False(t, EvaluateCondition("anything", domain.OpGreater, "0", nil))
}
