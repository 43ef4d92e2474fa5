package serialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// memorySink records writes instead of touching the filesystem.
type memorySink struct {
	writes map[string]any
}

func newMemorySink() *memorySink {
	return &memorySink{writes: make(map[string]any)}
}

func (s *memorySink) Write(path string, value any) error {
	s.writes[path] = value
	return nil
}

func newTestDumper(store *mockStore) (*Dumper, *memorySink) {
	sink := newMemorySink()
	return NewDumper(store, sink, root, nil, zap.NewNop()), sink
}

func (s *memorySink) record(t *testing.T, path string) map[string]any {
	t.Helper()
	value, ok := s.writes[path]
	require.True(t, ok, "no record written at %s; wrote %v", path, s.paths())
	return value.(map[string]any)
}

func (s *memorySink) paths() []string {
	paths := make([]string, 0, len(s.writes))
	for p := range s.writes {
		paths = append(paths, p)
	}
	return paths
}

func TestDump_Database(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.databases[1]))

	// Directory-style: the record file sits inside the database's directory.
	record := sink.record(t, "/dump/databases/warehouse/warehouse")
	assert.Equal(t, "warehouse", record["name"])
	assert.Equal(t, "postgres", record["engine"])

	// Transient and administrative fields do not survive export.
	assert.NotContains(t, record, "features")
	assert.NotContains(t, record, "id")
	assert.NotContains(t, record, "created_at")
}

func TestDump_Table(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.tables[10]))

	record := sink.record(t, "/dump/databases/warehouse/schemas/public/tables/orders/orders")
	assert.Equal(t, "orders", record["name"])
	assert.Equal(t, "public", record["schema"])
	assert.NotContains(t, record, "db_id")
	assert.NotContains(t, record, "id")
}

func TestDump_Field(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.fields[9]))

	// File-style: the resolved path is the file itself.
	record := sink.record(t, "/dump/databases/warehouse/schemas/public/tables/orders/fields/total")
	assert.Equal(t, "total", record["name"])
	assert.Equal(t, "type/Float", record["base_type"])
	assert.NotContains(t, record, "table_id")
	assert.NotContains(t, record, "fingerprint")
	assert.NotContains(t, record, "last_analyzed")
}

func TestDump_MetricRewritesDefinition(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.metrics[42]))

	record := sink.record(t, ordersPath+"/metrics/orders_total")
	assert.NotContains(t, record, "creator_id")
	assert.NotContains(t, record, "table_id")

	definition := record["definition"].(map[string]any)
	aggregation := definition["aggregation"].([]any)
	sum := aggregation[0].([]any)
	assert.Equal(t, "sum", sum[0])
	assert.Equal(t, []any{"field-id", ordersPath + "/fields/total"}, sum[1])
}

func TestDump_SegmentRewritesDefinition(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.segments[17]))

	record := sink.record(t, ordersPath+"/segments/paid")
	filter := record["definition"].(map[string]any)["filter"].([]any)
	assert.Equal(t, "=", filter[0])
	assert.Equal(t, []any{"field-id", ordersPath + "/fields/total"}, filter[1])
}

func TestDump_Collection(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.collections[7]))

	record := sink.record(t,
		"/dump/collections/Analytics/collections/Finance/collections/Quarterly/Quarterly")
	assert.Equal(t, "Quarterly", record["name"])
	assert.NotContains(t, record, "location")
	assert.NotContains(t, record, "personal_owner_id")
}

func TestDump_CardRewritesQuery(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), store.cards[3]))

	// Nested beneath its source card.
	record := sink.record(t, basePath+"/cards/revenue")
	assert.NotContains(t, record, "database_id")
	assert.NotContains(t, record, "collection_id")

	query := record["dataset_query"].(map[string]any)
	assert.Equal(t, models.VirtualDatabaseMarker, query["database"])
	assert.Equal(t, basePath, query["query"].(map[string]any)["source-table"])
}

func TestDump_DashboardAssemblesCardsAndSeries(t *testing.T) {
	store := contentWorld()
	dashboard := &models.Dashboard{ID: 2, Name: "kpis", CollectionID: int64p(4), CreatorID: 1}
	store.dashCards[2] = []*models.DashboardCard{
		{ID: 100, DashboardID: 2, CardID: int64p(7), Row: 0, Col: 0, SizeX: 4, SizeY: 4},
	}
	store.series[100] = []*models.DashboardCardSeries{
		{ID: 1, DashboardCardID: 100, CardID: 3, Position: 0},
	}
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), dashboard))

	// One write: the dashboard carries its cards and their series inline.
	require.Len(t, sink.writes, 1)
	record := sink.record(t, "/dump/collections/Analytics/collections/Finance/dashboards/kpis")
	assert.Equal(t, "kpis", record["name"])
	assert.NotContains(t, record, "creator_id")
	assert.NotContains(t, record, "collection_id")

	cards := record["dashboard_cards"].([]any)
	require.Len(t, cards, 1)
	card := cards[0].(map[string]any)
	assert.Equal(t, basePath, card["card_id"])
	assert.NotContains(t, card, "id")
	assert.NotContains(t, card, "dashboard_id")

	series := card["series"].([]any)
	require.Len(t, series, 1)
	entry := series[0].(map[string]any)
	assert.Equal(t, basePath+"/cards/revenue", entry["card_id"])
	assert.NotContains(t, entry, "id")
	assert.NotContains(t, entry, "dashboardcard_id")
}

func TestDump_UnfiledDashboard(t *testing.T) {
	store := contentWorld()
	dumper, sink := newTestDumper(store)

	require.NoError(t, dumper.Dump(context.Background(), &models.Dashboard{ID: 3, Name: "scratch"}))
	assert.Contains(t, sink.writes, "/dump/collections/dashboards/scratch")
}

func TestDump_NothingWrittenOnResolutionFailure(t *testing.T) {
	store := contentWorld()
	delete(store.databases, 1)
	dumper, sink := newTestDumper(store)

	err := dumper.Dump(context.Background(), store.tables[10])
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnresolvedParent)
	assert.Empty(t, sink.writes)
}

func TestDump_NothingWrittenOnRewriteFailure(t *testing.T) {
	store := contentWorld()
	store.metrics[50] = &models.Metric{ID: 50, TableID: 10, Name: "broken",
		Definition: models.Query{"aggregation": []any{[]any{"sum", []any{"field-id", float64(999)}}}}}
	dumper, sink := newTestDumper(store)

	err := dumper.Dump(context.Background(), store.metrics[50])
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnresolvedParent)
	assert.Empty(t, sink.writes)
}

func TestDump_UnknownEntityType(t *testing.T) {
	dumper, sink := newTestDumper(contentWorld())

	err := dumper.Dump(context.Background(), struct{ Name string }{"mystery"})
	require.Error(t, err)
	assert.Empty(t, sink.writes)
}
