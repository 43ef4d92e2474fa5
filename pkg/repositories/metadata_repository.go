package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/database"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
	"github.com/ekaya-inc/ekaya-export/pkg/serialize"
)

// MetadataRepository provides read access to the content database: by-id
// lookups for the path resolver and rewriter, and listings for the batch
// orchestrator. Lookups for missing ids return apperrors.ErrNotFound.
type MetadataRepository interface {
	serialize.Store

	ListDatabases(ctx context.Context) ([]*models.Database, error)
	ListTables(ctx context.Context, databaseID int64) ([]*models.Table, error)
	ListFields(ctx context.Context, tableID int64) ([]*models.Field, error)
	ListMetrics(ctx context.Context, tableID int64) ([]*models.Metric, error)
	ListSegments(ctx context.Context, tableID int64) ([]*models.Segment, error)
	ListCollections(ctx context.Context) ([]*models.Collection, error)
	ListDashboards(ctx context.Context) ([]*models.Dashboard, error)
	ListCards(ctx context.Context) ([]*models.Card, error)
}

type metadataRepository struct {
	db *database.DB
}

// NewMetadataRepository creates a new MetadataRepository.
func NewMetadataRepository(db *database.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

var _ MetadataRepository = (*metadataRepository)(nil)

const databaseColumns = `id, name, description, engine, features, created_at, updated_at`

func scanDatabase(row pgx.Row) (*models.Database, error) {
	var db models.Database
	err := row.Scan(&db.ID, &db.Name, &db.Description, &db.Engine, &db.Features, &db.CreatedAt, &db.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan database: %w", err)
	}
	return &db, nil
}

func (r *metadataRepository) Database(ctx context.Context, id int64) (*models.Database, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+databaseColumns+` FROM databases WHERE id = $1`, id)
	return scanDatabase(row)
}

func (r *metadataRepository) ListDatabases(ctx context.Context) ([]*models.Database, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+databaseColumns+` FROM databases ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	defer rows.Close()

	var result []*models.Database
	for rows.Next() {
		db, err := scanDatabase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, db)
	}
	return result, rows.Err()
}

const tableColumns = `id, db_id, schema, name, display_name, description, created_at, updated_at`

func scanTable(row pgx.Row) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.DatabaseID, &t.Schema, &t.Name, &t.DisplayName, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan table: %w", err)
	}
	return &t, nil
}

func (r *metadataRepository) Table(ctx context.Context, id int64) (*models.Table, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1`, id)
	return scanTable(row)
}

func (r *metadataRepository) ListTables(ctx context.Context, databaseID int64) ([]*models.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE db_id = $1 ORDER BY id`, databaseID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var result []*models.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

const fieldColumns = `id, table_id, name, display_name, description, base_type, special_type, fingerprint, last_analyzed, created_at, updated_at`

func scanField(row pgx.Row) (*models.Field, error) {
	var f models.Field
	err := row.Scan(&f.ID, &f.TableID, &f.Name, &f.DisplayName, &f.Description, &f.BaseType,
		&f.SpecialType, &f.Fingerprint, &f.LastAnalyzed, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan field: %w", err)
	}
	return &f, nil
}

func (r *metadataRepository) Field(ctx context.Context, id int64) (*models.Field, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id)
	return scanField(row)
}

func (r *metadataRepository) ListFields(ctx context.Context, tableID int64) ([]*models.Field, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE table_id = $1 ORDER BY id`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	var result []*models.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

const metricColumns = `id, table_id, creator_id, name, description, definition, created_at, updated_at`

func scanMetric(row pgx.Row) (*models.Metric, error) {
	var m models.Metric
	err := row.Scan(&m.ID, &m.TableID, &m.CreatorID, &m.Name, &m.Description, &m.Definition, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan metric: %w", err)
	}
	return &m, nil
}

func (r *metadataRepository) Metric(ctx context.Context, id int64) (*models.Metric, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+metricColumns+` FROM metrics WHERE id = $1`, id)
	return scanMetric(row)
}

func (r *metadataRepository) ListMetrics(ctx context.Context, tableID int64) ([]*models.Metric, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+metricColumns+` FROM metrics WHERE table_id = $1 ORDER BY id`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var result []*models.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func scanSegment(row pgx.Row) (*models.Segment, error) {
	var s models.Segment
	err := row.Scan(&s.ID, &s.TableID, &s.CreatorID, &s.Name, &s.Description, &s.Definition, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan segment: %w", err)
	}
	return &s, nil
}

func (r *metadataRepository) Segment(ctx context.Context, id int64) (*models.Segment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+metricColumns+` FROM segments WHERE id = $1`, id)
	return scanSegment(row)
}

func (r *metadataRepository) ListSegments(ctx context.Context, tableID int64) ([]*models.Segment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+metricColumns+` FROM segments WHERE table_id = $1 ORDER BY id`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var result []*models.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

const collectionColumns = `id, name, description, color, location, personal_owner_id, created_at, updated_at`

func scanCollection(row pgx.Row) (*models.Collection, error) {
	var c models.Collection
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Location, &c.PersonalOwnerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan collection: %w", err)
	}
	return &c, nil
}

func (r *metadataRepository) Collection(ctx context.Context, id int64) (*models.Collection, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = $1`, id)
	return scanCollection(row)
}

func (r *metadataRepository) ListCollections(ctx context.Context) ([]*models.Collection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+collectionColumns+` FROM collections ORDER BY location, id`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var result []*models.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

const dashboardColumns = `id, name, description, collection_id, creator_id, parameters, made_public_by_id, public_uuid, created_at, updated_at`

func scanDashboard(row pgx.Row) (*models.Dashboard, error) {
	var d models.Dashboard
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.CollectionID, &d.CreatorID,
		&d.Parameters, &d.MadePublicByID, &d.PublicUUID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan dashboard: %w", err)
	}
	return &d, nil
}

func (r *metadataRepository) ListDashboards(ctx context.Context) ([]*models.Dashboard, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+dashboardColumns+` FROM dashboards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	defer rows.Close()

	var result []*models.Dashboard
	for rows.Next() {
		d, err := scanDashboard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *metadataRepository) DashboardCards(ctx context.Context, dashboardID int64) ([]*models.DashboardCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, dashboard_id, card_id, "row", col, size_x, size_y,
		       parameter_mappings, visualization_settings, created_at, updated_at
		FROM dashboard_cards
		WHERE dashboard_id = $1
		ORDER BY "row", col, id`, dashboardID)
	if err != nil {
		return nil, fmt.Errorf("list dashboard cards: %w", err)
	}
	defer rows.Close()

	var result []*models.DashboardCard
	for rows.Next() {
		var c models.DashboardCard
		err := rows.Scan(&c.ID, &c.DashboardID, &c.CardID, &c.Row, &c.Col, &c.SizeX, &c.SizeY,
			&c.ParameterMappings, &c.VisualizationSettings, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan dashboard card: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (r *metadataRepository) Series(ctx context.Context, dashboardCardID int64) ([]*models.DashboardCardSeries, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, dashboardcard_id, card_id, position
		FROM dashboard_card_series
		WHERE dashboardcard_id = $1
		ORDER BY position`, dashboardCardID)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var result []*models.DashboardCardSeries
	for rows.Next() {
		var s models.DashboardCardSeries
		if err := rows.Scan(&s.ID, &s.DashboardCardID, &s.CardID, &s.Position); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		result = append(result, &s)
	}
	return result, rows.Err()
}

const cardColumns = `id, name, description, collection_id, creator_id, database_id, table_id,
	       query_type, display, dataset_query, visualization_settings,
	       made_public_by_id, public_uuid, created_at, updated_at`

func scanCard(row pgx.Row) (*models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CollectionID, &c.CreatorID,
		&c.DatabaseID, &c.TableID, &c.QueryType, &c.Display, &c.DatasetQuery,
		&c.VisualizationSettings, &c.MadePublicByID, &c.PublicUUID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan card: %w", err)
	}
	return &c, nil
}

func (r *metadataRepository) Card(ctx context.Context, id int64) (*models.Card, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row)
}

func (r *metadataRepository) ListCards(ctx context.Context) ([]*models.Card, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var result []*models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
