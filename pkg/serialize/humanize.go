package serialize

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// Rewriter replaces entity ids embedded in nested query structures with their
// resolved path names. The rewrite never mutates its input and is idempotent:
// a reference that already carries a string path is left untouched.
type Rewriter struct {
	resolver   *Resolver
	isFieldRef FieldRefPredicate
}

// NewRewriter creates a Rewriter. A nil predicate falls back to
// IsFieldReference.
func NewRewriter(resolver *Resolver, isFieldRef FieldRefPredicate) *Rewriter {
	if isFieldRef == nil {
		isFieldRef = IsFieldReference
	}
	return &Rewriter{resolver: resolver, isFieldRef: isFieldRef}
}

// Humanize walks a nested form post-order, rewriting every recognized entity
// reference and every known id-bearing map key into path-name form. The
// returned structure is a new value; the input is never modified.
func (rw *Rewriter) Humanize(ctx context.Context, form any) (any, error) {
	switch node := form.(type) {
	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			rewritten, err := rw.Humanize(ctx, child)
			if err != nil {
				return nil, err
			}
			out[i] = rewritten
		}
		return rw.rewriteSeq(ctx, out)

	case map[string]any:
		out := make(map[string]any, len(node))
		for key, child := range node {
			rewritten, err := rw.Humanize(ctx, child)
			if err != nil {
				return nil, err
			}
			out[key] = rewritten
		}
		return rw.rewriteMap(ctx, out)

	case models.Query:
		return rw.Humanize(ctx, map[string]any(node))

	default:
		return form, nil
	}
}

// rewriteSeq applies the reference-tuple rules to a sequence whose children
// have already been rewritten.
func (rw *Rewriter) rewriteSeq(ctx context.Context, seq []any) (any, error) {
	head, ok := refHead(seq)
	if !ok {
		return seq, nil
	}

	if rw.isFieldRef(seq) {
		return rw.rewriteFieldRef(ctx, seq, head)
	}

	if head == headMetric || head == headSegment {
		if len(seq) < 2 {
			return seq, nil
		}
		if !IsEntityReference(seq, rw.isFieldRef) {
			return nil, fmt.Errorf("%s reference %v: %w", head, seq[1], apperrors.ErrMalformedReference)
		}
		resolve := rw.resolver.MetricPath
		if head == headSegment {
			resolve = rw.resolver.SegmentPath
		}
		return rw.rewriteTagged(ctx, seq, resolve)
	}

	return seq, nil
}

// rewriteFieldRef handles the field reference shapes the grammar predicate
// recognized.
func (rw *Rewriter) rewriteFieldRef(ctx context.Context, seq []any, head string) (any, error) {
	switch head {
	case headFieldID:
		if len(seq) < 2 {
			return seq, nil
		}
		if _, already := seq[1].(string); already {
			return seq, nil
		}
		id, ok := asInt(seq[1])
		if !ok {
			return nil, fmt.Errorf("%s argument %v: %w", head, seq[1], apperrors.ErrMalformedReference)
		}
		path, err := rw.resolver.FieldPath(ctx, id)
		if err != nil {
			return nil, err
		}
		return []any{seq[0], path}, nil

	case headFK:
		out := make([]any, len(seq))
		copy(out, seq)
		for i, arg := range seq[1:] {
			id, ok := asInt(arg)
			if !ok {
				// Non-numeric arguments were already handled by the walk.
				continue
			}
			path, err := rw.resolver.FieldPath(ctx, id)
			if err != nil {
				return nil, err
			}
			out[i+1] = []any{headFieldID, path}
		}
		return out, nil

	default:
		// field-literal and any custom shapes are self-describing.
		return seq, nil
	}
}

// rewriteTagged handles metric and segment tuples. A string id means the
// tuple was already rewritten and is left alone.
func (rw *Rewriter) rewriteTagged(ctx context.Context, seq []any, resolve func(context.Context, int64) (string, error)) (any, error) {
	if _, already := seq[1].(string); already {
		return seq, nil
	}
	id, _ := asInt(seq[1])
	path, err := resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return []any{seq[0], path}, nil
}

// rewriteMap applies the targeted key rules to a mapping whose children have
// already been rewritten. Unknown keys pass through untouched.
func (rw *Rewriter) rewriteMap(ctx context.Context, m map[string]any) (any, error) {
	if value, ok := m["database"]; ok {
		if id, isID := asInt(value); isID {
			if id == models.VirtualDatabaseID {
				m["database"] = models.VirtualDatabaseMarker
			} else {
				path, err := rw.resolver.DatabasePath(ctx, id)
				if err != nil {
					return nil, err
				}
				m["database"] = path
			}
		}
	}

	if value, ok := m["card_id"]; ok {
		if id, isID := asInt(value); isID {
			path, err := rw.resolver.CardPath(ctx, id)
			if err != nil {
				return nil, err
			}
			m["card_id"] = path
		}
	}

	if value, ok := m["source-table"]; ok {
		if cardID, isCard := models.ParseCardTable(value); isCard {
			path, err := rw.resolver.CardPath(ctx, cardID)
			if err != nil {
				return nil, err
			}
			m["source-table"] = path
		} else if id, isID := asInt(value); isID {
			path, err := rw.resolver.TablePath(ctx, id)
			if err != nil {
				return nil, err
			}
			m["source-table"] = path
		}
	}

	return m, nil
}
