package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-export/pkg/config"
	"github.com/ekaya-inc/ekaya-export/pkg/database"
	"github.com/ekaya-inc/ekaya-export/pkg/logging"
	"github.com/ekaya-inc/ekaya-export/pkg/repositories"
	"github.com/ekaya-inc/ekaya-export/pkg/serialize"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to content database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	repo := repositories.NewMetadataRepository(db)
	sink := serialize.NewYAMLSink(logger)
	dumper := serialize.NewDumper(repo, sink, cfg.Export.Directory, nil, logger)

	runID := uuid.New()
	logger.Info("Starting content export",
		zap.String("run_id", runID.String()),
		zap.String("version", cfg.Version),
		zap.String("directory", cfg.Export.Directory),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	exported, failed := exportAll(ctx, repo, dumper, logger)

	logger.Info("Content export finished",
		zap.String("run_id", runID.String()),
		zap.Int("exported", exported),
		zap.Int("failed", failed))

	if failed > 0 {
		os.Exit(1)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// exportAll walks the content tree in dependency order and dumps every
// entity. One entity's failure is logged and skipped; the dump core
// guarantees nothing partial was written for it.
func exportAll(ctx context.Context, repo repositories.MetadataRepository, dumper *serialize.Dumper, logger *zap.Logger) (exported, failed int) {
	dump := func(entity any) {
		if err := dumper.Dump(ctx, entity); err != nil {
			logger.Warn("Skipping entity", zap.Error(err))
			failed++
			return
		}
		exported++
	}

	databases, err := repo.ListDatabases(ctx)
	if err != nil {
		logger.Error("Failed to list databases", zap.Error(err))
		return exported, failed + 1
	}
	for _, db := range databases {
		dump(db)

		tables, err := repo.ListTables(ctx, db.ID)
		if err != nil {
			logger.Error("Failed to list tables",
				zap.Int64("database_id", db.ID), zap.Error(err))
			failed++
			continue
		}
		for _, table := range tables {
			dump(table)

			fields, err := repo.ListFields(ctx, table.ID)
			if err != nil {
				logger.Error("Failed to list fields",
					zap.Int64("table_id", table.ID), zap.Error(err))
				failed++
				continue
			}
			for _, field := range fields {
				dump(field)
			}

			metrics, err := repo.ListMetrics(ctx, table.ID)
			if err != nil {
				logger.Error("Failed to list metrics",
					zap.Int64("table_id", table.ID), zap.Error(err))
				failed++
				continue
			}
			for _, metric := range metrics {
				dump(metric)
			}

			segments, err := repo.ListSegments(ctx, table.ID)
			if err != nil {
				logger.Error("Failed to list segments",
					zap.Int64("table_id", table.ID), zap.Error(err))
				failed++
				continue
			}
			for _, segment := range segments {
				dump(segment)
			}
		}
	}

	collections, err := repo.ListCollections(ctx)
	if err != nil {
		logger.Error("Failed to list collections", zap.Error(err))
		failed++
	} else {
		for _, collection := range collections {
			dump(collection)
		}
	}

	dashboards, err := repo.ListDashboards(ctx)
	if err != nil {
		logger.Error("Failed to list dashboards", zap.Error(err))
		failed++
	} else {
		for _, dashboard := range dashboards {
			dump(dashboard)
		}
	}

	cards, err := repo.ListCards(ctx)
	if err != nil {
		logger.Error("Failed to list cards", zap.Error(err))
		failed++
	} else {
		for _, card := range cards {
			dump(card)
		}
	}

	return exported, failed
}
