package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/database"
)

// PostgresImage is the stock image used to back integration tests.
const PostgresImage = "postgres:16-alpine"

// ContentDB holds a shared test content database: a Postgres container with
// the content schema migrated, plus a connection pool against it.
type ContentDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedContentDB     *ContentDB
	sharedContentDBOnce sync.Once
	sharedContentDBErr  error
)

// GetContentDB returns a shared Postgres container with the content schema
// applied. The container is created once and reused across all tests in the
// run.
func GetContentDB(t *testing.T) *ContentDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedContentDBOnce.Do(func() {
		sharedContentDB, sharedContentDBErr = setupContentDB()
	})

	if sharedContentDBErr != nil {
		t.Fatalf("Failed to setup content database: %v", sharedContentDBErr)
	}

	return sharedContentDB
}

func setupContentDB() (*ContentDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        PostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "content_test",
			"POSTGRES_USER":     "ekaya",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://ekaya:test_password@%s:%s/content_test?sslmode=disable",
		host, port.Port())

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to content database: %w", err)
	}

	// Apply the content schema using database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, migrationsDir(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &ContentDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// TruncateContent clears every content table between tests.
func (c *ContentDB) TruncateContent(t *testing.T) {
	t.Helper()

	_, err := c.DB.Exec(context.Background(), `
		TRUNCATE dashboard_card_series, dashboard_cards, cards, dashboards,
		         collections, segments, metrics, fields, tables, databases
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate content tables: %v", err)
	}
}

// migrationsDir locates the migrations directory relative to this source
// file, so integration tests work from any package directory.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
