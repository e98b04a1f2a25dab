package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	analytics "energy-dashboard/internal/analytics/application"
	"energy-dashboard/internal/dashboard/interfaces/console"
	"energy-dashboard/internal/dashboard/interfaces/report"
	ingestionapp "energy-dashboard/internal/ingestion/application"
	ingestion "energy-dashboard/internal/ingestion/domain"
	"energy-dashboard/internal/ingestion/infrastructure/files"
	"energy-dashboard/internal/ingestion/infrastructure/sqlstore"
	"energy-dashboard/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, os.Stdin, os.Stdout, logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config, in io.Reader, out io.Writer, logger *log.Logger) int {
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			logger.Printf("db open error: %v", err)
			return 1
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err != nil {
			logger.Printf("db ping error: %v", err)
			return 1
		}
	}

	metrics.Init(db, cfg.ReadingsTable, logger)
	defer writeMetrics(cfg.MetricsTextfile, logger)

	catalog, err := buildCatalog(cfg, db, logger)
	if err != nil {
		logger.Printf("catalog error: %v", err)
		return 1
	}
	loader, err := ingestionapp.NewLoader(catalog, logger,
		ingestionapp.WithCanonicalizer(ingestion.NewCanonicalizer(cfg.ValueSuffixes...)))
	if err != nil {
		logger.Printf("loader error: %v", err)
		return 1
	}
	cache, err := ingestionapp.NewSnapshotCache(loader, logger)
	if err != nil {
		logger.Printf("cache error: %v", err)
		return 1
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	snapshot, err := cache.Get(loadCtx)
	cancel()
	switch {
	case errors.Is(err, ingestion.ErrNoSources):
		logger.Printf("Error: No data files found in %s", cfg.DataDir)
		return 1
	case errors.Is(err, ingestion.ErrNoUsableData):
		logger.Printf("Error: No data files could be loaded: %v", err)
		return 1
	case err != nil:
		logger.Printf("load error: %v", err)
		return 1
	}
	for _, skipped := range snapshot.Report.Skipped {
		logger.Printf("skipped %s: %v", skipped.Ref.Name, skipped.Err)
	}

	service, err := analytics.NewDashboardService(cache, logger)
	if err != nil {
		logger.Printf("dashboard service error: %v", err)
		return 1
	}
	sel, err := service.Resolve(ctx, cfg.Region, cfg.StartDate, cfg.EndDate)
	if err != nil {
		logger.Printf("selection error: %v", err)
		return 1
	}

	if cfg.Interactive {
		session, err := console.NewSession(service, in, out,
			console.WithSelection(sel.Region, sel.Window),
			console.WithExportDir(cfg.ExportDir),
			console.WithLogger(logger),
			console.WithRefresh(func(ctx context.Context) (bool, error) {
				_, changed, err := cache.Refresh(ctx)
				return changed, err
			}),
		)
		if err != nil {
			logger.Printf("console error: %v", err)
			return 1
		}
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("console error: %v", err)
			return 1
		}
		return 0
	}

	dashboard, err := service.ComputeSelection(ctx, sel)
	if err != nil {
		logger.Printf("dashboard error: %v", err)
		return 1
	}
	if err := report.WriteText(out, dashboard); err != nil {
		logger.Printf("render error: %v", err)
		return 1
	}
	if cfg.ExportDir != "" {
		paths, err := report.Export(cfg.ExportDir, dashboard, cfg.ExportFormats...)
		for _, path := range paths {
			logger.Printf("exported %s", path)
		}
		if err != nil {
			logger.Printf("export error: %v", err)
			return 1
		}
	}
	return 0
}

func buildCatalog(cfg config, db *sql.DB, logger *log.Logger) (*ingestionapp.CompositeCatalog, error) {
	catalog := ingestionapp.NewCompositeCatalog()
	if cfg.DataDir != "" {
		fileCatalog, err := files.NewCatalog(cfg.DataDir, files.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := catalog.Add("files", fileCatalog); err != nil {
			return nil, err
		}
	}
	if db != nil {
		sqlCatalog, err := sqlstore.NewCatalog(db, cfg.DatabaseDriver, sqlstore.WithTable(cfg.ReadingsTable))
		if err != nil {
			return nil, err
		}
		if err := catalog.Add("sql", sqlCatalog); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

func writeMetrics(path string, logger *log.Logger) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Printf("metrics textfile error: %v", err)
	}
}
