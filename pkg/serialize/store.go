package serialize

import (
	"context"

	"github.com/ekaya-inc/ekaya-export/pkg/models"
)

// Store provides read-only lookups against the content database. Lookups for
// missing ids return apperrors.ErrNotFound. Implementations must tolerate
// concurrent reads; the dump core never writes through this interface.
type Store interface {
	Database(ctx context.Context, id int64) (*models.Database, error)
	Table(ctx context.Context, id int64) (*models.Table, error)
	Field(ctx context.Context, id int64) (*models.Field, error)
	Metric(ctx context.Context, id int64) (*models.Metric, error)
	Segment(ctx context.Context, id int64) (*models.Segment, error)
	Collection(ctx context.Context, id int64) (*models.Collection, error)
	Card(ctx context.Context, id int64) (*models.Card, error)

	DashboardCards(ctx context.Context, dashboardID int64) ([]*models.DashboardCard, error)
	Series(ctx context.Context, dashboardCardID int64) ([]*models.DashboardCardSeries, error)
}
