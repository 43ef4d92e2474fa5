package serialize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jinzhu/inflection"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// Resolver computes fully-qualified path names for entities by walking their
// containment chain through the store. Resolved paths are memoized per
// (kind, id) for the lifetime of the resolver, so one instance should not
// outlive a dump run. The cache is safe for concurrent use.
type Resolver struct {
	store Store
	root  string

	mu    sync.Mutex
	cache map[pathKey]string
}

type pathKey struct {
	kind string
	id   int64
}

// NewResolver creates a Resolver rooted at the given path prefix.
func NewResolver(store Store, root string) *Resolver {
	return &Resolver{
		store: store,
		root:  root,
		cache: make(map[pathKey]string),
	}
}

// segment returns the path segment for an entity kind, e.g. "databases".
func segment(kind string) string {
	return "/" + inflection.Plural(kind) + "/"
}

// Path resolves the fully-qualified path name of an already-fetched entity.
func (r *Resolver) Path(ctx context.Context, entity any) (string, error) {
	switch e := entity.(type) {
	case *models.Database:
		return r.root + segment("database") + e.Name, nil

	case *models.Table:
		parent, err := r.DatabasePath(ctx, e.DatabaseID)
		if err != nil {
			return "", err
		}
		return parent + segment("schema") + e.Schema + segment("table") + e.Name, nil

	case *models.Field:
		parent, err := r.TablePath(ctx, e.TableID)
		if err != nil {
			return "", err
		}
		return parent + segment("field") + e.Name, nil

	case *models.Metric:
		parent, err := r.TablePath(ctx, e.TableID)
		if err != nil {
			return "", err
		}
		return parent + segment("metric") + e.Name, nil

	case *models.Segment:
		parent, err := r.TablePath(ctx, e.TableID)
		if err != nil {
			return "", err
		}
		return parent + segment("segment") + e.Name, nil

	case *models.Collection:
		return r.collectionPath(ctx, e)

	case *models.Dashboard:
		if e.CollectionID == nil {
			return r.root + segment("collection") + "dashboards/" + e.Name, nil
		}
		parent, err := r.CollectionPath(ctx, *e.CollectionID)
		if err != nil {
			return "", err
		}
		return parent + segment("dashboard") + e.Name, nil

	case *models.Card:
		return r.cardPath(ctx, e)

	default:
		return "", fmt.Errorf("cannot resolve path for entity of type %T", entity)
	}
}

// collectionPath joins the names of every ancestor in the location chain,
// outermost first, with a /collections/ segment per level.
func (r *Resolver) collectionPath(ctx context.Context, c *models.Collection) (string, error) {
	ancestors, err := c.AncestorIDs()
	if err != nil {
		return "", err
	}

	path := r.root
	for _, id := range ancestors {
		ancestor, err := r.store.Collection(ctx, id)
		if err != nil {
			return "", unresolved("collection", id, err)
		}
		path += segment("collection") + ancestor.Name
	}
	return path + segment("collection") + c.Name, nil
}

// cardPath resolves a card through its source card if the query is built on
// one, otherwise through its collection, otherwise the bare collections root.
func (r *Resolver) cardPath(ctx context.Context, c *models.Card) (string, error) {
	if sourceID, ok := c.SourceCardID(); ok {
		parent, err := r.CardPath(ctx, sourceID)
		if err != nil {
			return "", err
		}
		return parent + segment("card") + c.Name, nil
	}

	if c.CollectionID != nil {
		parent, err := r.CollectionPath(ctx, *c.CollectionID)
		if err != nil {
			return "", err
		}
		return parent + segment("card") + c.Name, nil
	}

	return r.root + segment("collection") + "cards/" + c.Name, nil
}

// DatabasePath resolves a database path by id.
func (r *Resolver) DatabasePath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "database", id, func(ctx context.Context) (string, error) {
		db, err := r.store.Database(ctx, id)
		if err != nil {
			return "", unresolved("database", id, err)
		}
		return r.Path(ctx, db)
	})
}

// TablePath resolves a table path by id.
func (r *Resolver) TablePath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "table", id, func(ctx context.Context) (string, error) {
		table, err := r.store.Table(ctx, id)
		if err != nil {
			return "", unresolved("table", id, err)
		}
		return r.Path(ctx, table)
	})
}

// FieldPath resolves a field path by id.
func (r *Resolver) FieldPath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "field", id, func(ctx context.Context) (string, error) {
		field, err := r.store.Field(ctx, id)
		if err != nil {
			return "", unresolved("field", id, err)
		}
		return r.Path(ctx, field)
	})
}

// MetricPath resolves a metric path by id.
func (r *Resolver) MetricPath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "metric", id, func(ctx context.Context) (string, error) {
		metric, err := r.store.Metric(ctx, id)
		if err != nil {
			return "", unresolved("metric", id, err)
		}
		return r.Path(ctx, metric)
	})
}

// SegmentPath resolves a segment path by id.
func (r *Resolver) SegmentPath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "segment", id, func(ctx context.Context) (string, error) {
		seg, err := r.store.Segment(ctx, id)
		if err != nil {
			return "", unresolved("segment", id, err)
		}
		return r.Path(ctx, seg)
	})
}

// CollectionPath resolves a collection path by id.
func (r *Resolver) CollectionPath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "collection", id, func(ctx context.Context) (string, error) {
		coll, err := r.store.Collection(ctx, id)
		if err != nil {
			return "", unresolved("collection", id, err)
		}
		return r.Path(ctx, coll)
	})
}

// CardPath resolves a card path by id.
func (r *Resolver) CardPath(ctx context.Context, id int64) (string, error) {
	return r.cached(ctx, "card", id, func(ctx context.Context) (string, error) {
		card, err := r.store.Card(ctx, id)
		if err != nil {
			return "", unresolved("card", id, err)
		}
		return r.Path(ctx, card)
	})
}

// cached returns the memoized path for (kind, id) or computes and stores it.
// Errors are not cached; a failed lookup is retried on the next call.
func (r *Resolver) cached(ctx context.Context, kind string, id int64, resolve func(context.Context) (string, error)) (string, error) {
	key := pathKey{kind: kind, id: id}

	r.mu.Lock()
	path, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return path, nil
	}

	path, err := resolve(ctx)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[key] = path
	r.mu.Unlock()
	return path, nil
}

// unresolved maps a store miss to ErrUnresolvedParent, keeping kind and id in
// the message. Other lookup failures are wrapped as-is.
func unresolved(kind string, id int64, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, apperrors.ErrUnresolvedParent)
	}
	return fmt.Errorf("lookup %s %d: %w", kind, id, err)
}
