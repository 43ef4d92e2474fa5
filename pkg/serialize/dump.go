package serialize

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// Dumper exports single entities to the sink, one fully assembled record per
// call. Databases, tables and collections are directory-style targets (their
// children nest beneath them); everything else is a single file at its
// resolved path. A Dumper is safe for concurrent use across distinct
// entities.
type Dumper struct {
	store    Store
	sink     Sink
	resolver *Resolver
	rewriter *Rewriter
	logger   *zap.Logger
}

// NewDumper creates a Dumper rooted at the given path prefix. A nil field
// predicate falls back to the default query grammar.
func NewDumper(store Store, sink Sink, root string, isFieldRef FieldRefPredicate, logger *zap.Logger) *Dumper {
	resolver := NewResolver(store, root)
	return &Dumper{
		store:    store,
		sink:     sink,
		resolver: resolver,
		rewriter: NewRewriter(resolver, isFieldRef),
		logger:   logger.Named("dump"),
	}
}

// Resolver exposes the dumper's memoizing path resolver.
func (d *Dumper) Resolver() *Resolver {
	return d.resolver
}

// Dump exports one entity. It either writes the complete record or, on any
// resolution failure, writes nothing at all.
func (d *Dumper) Dump(ctx context.Context, entity any) error {
	switch e := entity.(type) {
	case *models.Database:
		return d.dumpDatabase(ctx, e)
	case *models.Table:
		return d.dumpContainer(ctx, e, e.Name)
	case *models.Collection:
		return d.dumpContainer(ctx, e, e.Name)
	case *models.Field:
		return d.dumpPlain(ctx, e)
	case *models.Metric:
		return d.dumpWithDefinition(ctx, e)
	case *models.Segment:
		return d.dumpWithDefinition(ctx, e)
	case *models.Card:
		return d.dumpCard(ctx, e)
	case *models.Dashboard:
		return d.dumpDashboard(ctx, e)
	default:
		return fmt.Errorf("cannot dump entity of type %T", entity)
	}
}

// dumpDatabase writes a database record inside its own directory, dropping
// the transient capability probe along with the administrative fields.
func (d *Dumper) dumpDatabase(ctx context.Context, db *models.Database) error {
	path, err := d.resolver.Path(ctx, db)
	if err != nil {
		return err
	}

	record, err := exportRecord(db)
	if err != nil {
		return err
	}
	delete(record, "features")
	stripAdministrative(record)

	return d.write(path+"/"+db.Name, record)
}

// dumpContainer writes a directory-style record: the entity's path is a
// directory and its record file sits inside it.
func (d *Dumper) dumpContainer(ctx context.Context, entity any, name string) error {
	path, err := d.resolver.Path(ctx, entity)
	if err != nil {
		return err
	}

	record, err := exportRecord(entity)
	if err != nil {
		return err
	}
	stripAdministrative(record)

	return d.write(path+"/"+name, record)
}

// dumpPlain writes a file-style record with no query to rewrite.
func (d *Dumper) dumpPlain(ctx context.Context, entity any) error {
	path, err := d.resolver.Path(ctx, entity)
	if err != nil {
		return err
	}

	record, err := exportRecord(entity)
	if err != nil {
		return err
	}
	stripAdministrative(record)

	return d.write(path, record)
}

// dumpWithDefinition writes a metric or segment with its definition rewritten
// into path-name form.
func (d *Dumper) dumpWithDefinition(ctx context.Context, entity any) error {
	path, err := d.resolver.Path(ctx, entity)
	if err != nil {
		return err
	}

	record, err := exportRecord(entity)
	if err != nil {
		return err
	}
	definition, err := d.rewriter.Humanize(ctx, record["definition"])
	if err != nil {
		return err
	}
	record["definition"] = definition
	stripAdministrative(record)

	return d.write(path, record)
}

func (d *Dumper) dumpCard(ctx context.Context, card *models.Card) error {
	path, err := d.resolver.Path(ctx, card)
	if err != nil {
		return err
	}

	record, err := exportRecord(card)
	if err != nil {
		return err
	}
	query, err := d.rewriter.Humanize(ctx, record["dataset_query"])
	if err != nil {
		return err
	}
	record["dataset_query"] = query
	stripAdministrative(record)

	return d.write(path, record)
}

// dumpDashboard assembles the dashboard together with its cards and their
// series before the single sink call.
func (d *Dumper) dumpDashboard(ctx context.Context, dashboard *models.Dashboard) error {
	path, err := d.resolver.Path(ctx, dashboard)
	if err != nil {
		return err
	}

	cards, err := d.store.DashboardCards(ctx, dashboard.ID)
	if err != nil {
		return fmt.Errorf("list dashboard cards for dashboard %d: %w", dashboard.ID, err)
	}

	exported := make([]any, 0, len(cards))
	for _, card := range cards {
		record, err := d.dashboardCardRecord(ctx, card)
		if err != nil {
			return err
		}
		exported = append(exported, record)
	}

	record, err := exportRecord(dashboard)
	if err != nil {
		return err
	}
	stripAdministrative(record)
	record["dashboard_cards"] = exported

	return d.write(path, record)
}

// dashboardCardRecord assembles one dashboard-card with its series attached,
// series card references resolved, and the whole record rewritten.
func (d *Dumper) dashboardCardRecord(ctx context.Context, card *models.DashboardCard) (any, error) {
	series, err := d.store.Series(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("list series for dashboard card %d: %w", card.ID, err)
	}

	seriesRecords := make([]any, 0, len(series))
	for _, s := range series {
		record, err := exportRecord(s)
		if err != nil {
			return nil, err
		}
		cardPath, err := d.resolver.CardPath(ctx, s.CardID)
		if err != nil {
			return nil, err
		}
		record["card_id"] = cardPath
		stripAdministrative(record)
		seriesRecords = append(seriesRecords, record)
	}

	record, err := exportRecord(card)
	if err != nil {
		return nil, err
	}
	stripAdministrative(record)
	record["series"] = seriesRecords

	return d.rewriter.Humanize(ctx, record)
}

func (d *Dumper) write(path string, record map[string]any) error {
	if err := d.sink.Write(path, record); err != nil {
		return err
	}
	d.logger.Debug("Dumped entity", zap.String("path", path))
	return nil
}
