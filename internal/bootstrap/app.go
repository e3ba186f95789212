package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/exports"
	"holiday-backend/internal/holidays"
	"holiday-backend/internal/services/health"
	"holiday-backend/internal/shared/config"
	"holiday-backend/internal/shared/server"
	"holiday-backend/internal/shared/storage/db"
	"holiday-backend/internal/shared/storage/object"
	localstore "holiday-backend/internal/shared/storage/object/local"
	s3store "holiday-backend/internal/shared/storage/object/s3"
	"holiday-backend/internal/uploads"
)

// Process-wide database handle; Lambda warm starts reuse it.
var sharedDB db.Shared

// App holds the wired dependencies.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     object.Store
	Artifacts *artifacts.Service
	Registry  *holidays.Registry
	Uploads   *uploads.Service
	Exports   *exports.Generator
	Health    *health.Service
}

// Build wires storage, the holiday registry, handlers and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(ctx, cfg, sqlDB)
	if err != nil {
		return nil, err
	}

	svc := artifacts.NewService(store, artifacts.WithTimeout(cfg.StorageTimeout))
	downloads := &artifacts.Downloader{Svc: svc, PresignTTL: cfg.PresignTTL}
	uploadSvc := &uploads.Service{Artifacts: svc}
	generator := &exports.Generator{Artifacts: svc, Registry: registry}

	checks := map[string]health.Check{
		"storage": func(ctx context.Context) error {
			_, err := store.List(ctx, object.KindExport)
			return err
		},
	}
	if sqlDB != nil {
		checks["database"] = sqlDB.PingContext
	}
	healthSvc := health.NewService(checks)

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Artifacts: svc,
		Registry:  registry,
		Uploads:   uploadSvc,
		Exports:   generator,
		Health:    healthSvc,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Uploads:  uploads.NewHandler(uploadSvc, downloads, cfg.MaxUploadBytes),
		Exports:  exports.NewHandler(generator, svc, downloads),
		Holidays: holidays.NewHandler(registry),
		Health:   healthSvc,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}

	opts := db.DefaultOptions(db.DetectProfile()).FromEnv()
	sqlDB, err := sharedDB.Get(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; holidays persist to %s: %v", cfg.HolidaysFile, err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
			KMSKeyID: cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRegistry(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (*holidays.Registry, error) {
	var store holidays.Store
	switch {
	case sqlDB != nil:
		store = &holidays.PGStore{DB: sqlDB}
	case strings.TrimSpace(cfg.HolidaysFile) != "":
		path := cfg.HolidaysFile
		if !filepath.IsAbs(path) && cfg.ObjectStoreType == "local" && cfg.LocalStoreDir != "" {
			path = filepath.Join(cfg.LocalStoreDir, path)
		}
		store = holidays.NewFileStore(path)
	default:
		store = holidays.NewMemoryStore()
	}

	opts := []holidays.Option{holidays.WithTimeout(cfg.StorageTimeout)}
	if seed := strings.TrimSpace(cfg.HolidaySeedFile); seed != "" {
		opts = append(opts, holidays.WithSeed(holidays.FileSeed(seed)))
	}
	return holidays.NewRegistry(ctx, store, opts...)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
