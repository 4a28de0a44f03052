// Package infrastructure assembles the dependencies shared by the server, batch
// and demo binaries: metrics, the optional database, the catalog, the encoder,
// the yield predictor and the advisory engine.
package infrastructure

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"yield-advisor/internal/advisory"
	"yield-advisor/internal/catalog"
	"yield-advisor/internal/config"
	"yield-advisor/internal/encoding"
	"yield-advisor/internal/handlers"
	"yield-advisor/internal/predictor"
	"yield-advisor/internal/repository"
	"yield-advisor/internal/services"
	"yield-advisor/pkg/database"
	"yield-advisor/pkg/id"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "yield_advisor"

// Infrastructure holds the initialized systems. DB and Repository are nil
// unless the catalog comes from Postgres.
type Infrastructure struct {
	Config      *config.Config
	Logger      *logging.StructuredLogger
	Metrics     *metrics.Collector
	DB          *database.PostgresDB
	Repository  repository.CatalogRepository
	Catalog     *catalog.Catalog
	Encoder     *encoding.Encoder
	Predictor   predictor.Predictor
	Engine      *advisory.Engine
	Predictions *services.PredictionService
	Catalogs    *services.CatalogService
}

// New initializes every system from cfg. Metrics register against reg.
func New(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, reg prometheus.Registerer) (*Infrastructure, error) {
	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("id generator init failed: %w", err)
	}

	infra := &Infrastructure{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewCollector(MetricsNamespace, reg),
	}

	if cfg.Catalog.Source == config.CatalogSourcePostgres {
		db, err := database.NewPostgresDB(ctx, &cfg.Database, logger, infra.Metrics)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.DB = db
		infra.Repository = repository.NewCatalogRepository(db, logger, infra.Metrics)

		if v, dirty, err := infra.Repository.SchemaVersion(ctx); err == nil {
			logger.Info(ctx, "[DB_SCHEMA] Catalog schema version", logging.Fields{
				"version": v,
				"dirty":   dirty,
			})
		}
	}

	cat, err := services.LoadCatalog(ctx, cfg.Catalog, infra.Repository, logger)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Catalog = cat
	infra.Encoder = encoding.NewEncoder(cat, cfg.Catalog.EncodingOrder())

	infra.Predictor, err = NewPredictor(cfg.Predictor)
	if err != nil {
		infra.Close()
		return nil, err
	}

	infra.Engine = advisory.Default()
	infra.Predictions = services.NewPredictionService(
		infra.Encoder,
		infra.Predictor,
		infra.Engine,
		cfg.Predictor.TimeoutDuration(),
		logger,
		infra.Metrics,
	)
	infra.Catalogs = services.NewCatalogService(infra.Encoder, logger)

	logger.Info(ctx, "[INFRA_READY] Infrastructure initialized", logging.Fields{
		"catalog_source": cfg.Catalog.Source,
		"encoding_order": cfg.Catalog.Order,
		"predictor_mode": cfg.Predictor.Mode,
		"node_id":        cfg.NodeID,
	})

	return infra, nil
}

// NewPredictor builds the predictor selected by cfg.
func NewPredictor(cfg config.PredictorConfig) (predictor.Predictor, error) {
	switch cfg.Mode {
	case config.PredictorModeHTTP:
		return predictor.NewHTTPClient(cfg.Endpoint, cfg.TimeoutDuration()), nil
	case config.PredictorModeLinear:
		return predictor.NewLinear(cfg.LinearWeights(), cfg.Intercept), nil
	default:
		return nil, fmt.Errorf("unknown predictor mode %q", cfg.Mode)
	}
}

// HealthChecks returns the dependencies the health endpoint should probe.
func (i *Infrastructure) HealthChecks() map[string]handlers.HealthChecker {
	checks := make(map[string]handlers.HealthChecker)
	if i.Repository != nil {
		checks["database"] = i.Repository
	}
	return checks
}

// Close releases the database connection, if any.
func (i *Infrastructure) Close() error {
	if i.DB != nil {
		return i.DB.Close()
	}
	return nil
}
