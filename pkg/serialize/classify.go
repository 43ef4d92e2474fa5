package serialize

import (
	"encoding/json"
	"math"
	"strings"
)

// FieldRefPredicate reports whether a form is a field reference in the query
// grammar. The default is IsFieldReference; callers with a richer grammar can
// supply their own.
type FieldRefPredicate func(form any) bool

const (
	headMetric       = "metric"
	headSegment      = "segment"
	headFieldID      = "field-id"
	headFieldLiteral = "field-literal"
	headFK           = "fk->"
)

var fieldRefHeads = map[string]bool{
	headFieldID:      true,
	headFieldLiteral: true,
	headFK:           true,
}

// IsFieldReference recognizes the field reference shapes of the query grammar.
func IsFieldReference(form any) bool {
	head, ok := refHead(form)
	return ok && fieldRefHeads[head]
}

// IsEntityReference reports whether a form is an entity reference: either a
// field reference per the supplied predicate, or a metric/segment tuple whose
// arguments are integer ids or string values. Already-rewritten string path
// names on their own are not references.
func IsEntityReference(form any, isFieldRef FieldRefPredicate) bool {
	if isFieldRef == nil {
		isFieldRef = IsFieldReference
	}
	if isFieldRef(form) {
		return true
	}

	head, ok := refHead(form)
	if !ok || (head != headMetric && head != headSegment) {
		return false
	}

	seq := form.([]any)
	if len(seq) < 2 {
		return false
	}
	for _, arg := range seq[1:] {
		if _, ok := asInt(arg); ok {
			continue
		}
		if _, ok := arg.(string); ok {
			continue
		}
		return false
	}
	return true
}

// refHead returns the normalized head of a candidate reference tuple: the
// first element of a non-empty sequence, lowercased, with any leading keyword
// colon stripped.
func refHead(form any) (string, bool) {
	seq, ok := form.([]any)
	if !ok || len(seq) == 0 {
		return "", false
	}
	head, ok := seq[0].(string)
	if !ok {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(head, ":")), true
}

// asInt normalizes the integer shapes produced by JSON and YAML decoding.
// Non-integral floats do not count as ids.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
		return 0, false
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
