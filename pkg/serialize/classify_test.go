package serialize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFieldReference(t *testing.T) {
	assert.True(t, IsFieldReference([]any{"field-id", float64(9)}))
	assert.True(t, IsFieldReference([]any{"fk->", float64(5), []any{"field-id", float64(9)}}))
	assert.True(t, IsFieldReference([]any{"field-literal", "total", "type/Float"}))

	// Head normalization: keyword colon and case.
	assert.True(t, IsFieldReference([]any{":field-id", float64(9)}))
	assert.True(t, IsFieldReference([]any{"FIELD-ID", float64(9)}))

	assert.False(t, IsFieldReference([]any{"metric", float64(42)}))
	assert.False(t, IsFieldReference([]any{"count"}))
	assert.False(t, IsFieldReference("field-id"))
	assert.False(t, IsFieldReference(nil))
	assert.False(t, IsFieldReference([]any{}))
}

func TestIsEntityReference_TaggedTuples(t *testing.T) {
	assert.True(t, IsEntityReference([]any{"metric", float64(42)}, nil))
	assert.True(t, IsEntityReference([]any{"segment", float64(17)}, nil))
	assert.True(t, IsEntityReference([]any{":METRIC", float64(42)}, nil))

	// String arguments are allowed: an already-rewritten tuple still
	// classifies, the rewriter just leaves it alone.
	assert.True(t, IsEntityReference([]any{"metric", "p/metrics/orders_total"}, nil))

	// Wrong argument shapes do not classify.
	assert.False(t, IsEntityReference([]any{"metric", true}, nil))
	assert.False(t, IsEntityReference([]any{"metric", []any{"nested"}}, nil))
	assert.False(t, IsEntityReference([]any{"metric"}, nil))
}

func TestIsEntityReference_FieldShapes(t *testing.T) {
	assert.True(t, IsEntityReference([]any{"field-id", float64(9)}, nil))

	// A custom grammar predicate takes precedence.
	custom := func(form any) bool {
		head, ok := refHead(form)
		return ok && head == "expression"
	}
	assert.True(t, IsEntityReference([]any{"expression", "margin"}, custom))
	assert.False(t, IsEntityReference([]any{"field-id", float64(9)}, custom))
}

func TestIsEntityReference_NonReferences(t *testing.T) {
	assert.False(t, IsEntityReference("some/path/name", nil))
	assert.False(t, IsEntityReference(float64(42), nil))
	assert.False(t, IsEntityReference(map[string]any{"metric": float64(1)}, nil))
	assert.False(t, IsEntityReference([]any{float64(1), float64(2)}, nil))
	assert.False(t, IsEntityReference(nil, nil))
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int(3), 3, true},
		{int32(3), 3, true},
		{int64(3), 3, true},
		{float64(42), 42, true},
		{float64(42.5), 0, false},
		{json.Number("42"), 42, true},
		{json.Number("4.2"), 0, false},
		{"42", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := asInt(tt.in)
		assert.Equal(t, tt.ok, ok, "asInt(%v) ok", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "asInt(%v)", tt.in)
		}
	}
}
