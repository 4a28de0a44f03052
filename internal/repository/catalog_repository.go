package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yield-advisor/internal/catalog"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

// CatalogRepository reads the categorical domains stored in Postgres
type CatalogRepository interface {
	// LoadSpec returns the stored catalog definition in stored position order.
	LoadSpec(ctx context.Context) (catalog.Spec, error)
	// SchemaVersion returns the applied migration version.
	SchemaVersion(ctx context.Context) (uint, bool, error)
	HealthCheck(ctx context.Context) error
}

// Querier is the subset of database.PostgresDB the repository needs
type Querier interface {
	GetContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, queryType string, dest interface{}, query string, args ...interface{}) error
	HealthCheck(ctx context.Context) error
}

type locationRow struct {
	Name string `db:"name"`
}

type subLocationRow struct {
	Location string `db:"location"`
	Name     string `db:"name"`
}

type labelRow struct {
	Name string `db:"name"`
}

type migrationRow struct {
	Version uint `db:"version"`
	Dirty   bool `db:"dirty"`
}

// catalogRepository implements CatalogRepository
type catalogRepository struct {
	db      Querier
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db Querier, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) CatalogRepository {
	return &catalogRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// LoadSpec reads locations, sub-locations, seasons and crops
func (r *catalogRepository) LoadSpec(ctx context.Context) (catalog.Spec, error) {
	var spec catalog.Spec

	var locations []locationRow
	if err := r.db.SelectContext(ctx, "select_locations", &locations, `
		SELECT name FROM locations ORDER BY position, id
	`); err != nil {
		return spec, fmt.Errorf("failed to load locations: %w", err)
	}
	if len(locations) == 0 {
		return spec, &NotFoundError{Resource: "catalog", ID: "locations"}
	}

	var subs []subLocationRow
	if err := r.db.SelectContext(ctx, "select_sub_locations", &subs, `
		SELECT l.name AS location, s.name
		FROM sub_locations s
		JOIN locations l ON l.id = s.location_id
		ORDER BY l.position, l.id, s.position, s.id
	`); err != nil {
		return spec, fmt.Errorf("failed to load sub-locations: %w", err)
	}

	nested := make(map[string][]string, len(locations))
	for _, s := range subs {
		nested[s.Location] = append(nested[s.Location], s.Name)
	}

	spec.Locations = make([]catalog.LocationSpec, 0, len(locations))
	for _, l := range locations {
		spec.Locations = append(spec.Locations, catalog.LocationSpec{
			Name:         l.Name,
			SubLocations: nested[l.Name],
		})
	}

	seasons, err := r.selectLabels(ctx, "select_seasons", `SELECT name FROM seasons ORDER BY position, id`)
	if err != nil {
		return spec, fmt.Errorf("failed to load seasons: %w", err)
	}
	spec.Seasons = seasons

	crops, err := r.selectLabels(ctx, "select_crops", `SELECT name FROM crops ORDER BY position, id`)
	if err != nil {
		return spec, fmt.Errorf("failed to load crops: %w", err)
	}
	spec.Crops = crops

	r.logger.Debug(ctx, "[CATALOG_LOAD] Catalog read from database", logging.Fields{
		"locations":     len(spec.Locations),
		"sub_locations": len(subs),
		"seasons":       len(spec.Seasons),
		"crops":         len(spec.Crops),
	})

	return spec, nil
}

// SchemaVersion reads the golang-migrate bookkeeping table
func (r *catalogRepository) SchemaVersion(ctx context.Context) (uint, bool, error) {
	var row migrationRow
	err := r.db.GetContext(ctx, "get_schema_version", &row, `
		SELECT version, dirty FROM schema_migrations LIMIT 1
	`)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, &NotFoundError{Resource: "schema_migrations", ID: "version"}
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get schema version: %w", err)
	}

	return row.Version, row.Dirty, nil
}

// HealthCheck checks database connectivity
func (r *catalogRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func (r *catalogRepository) selectLabels(ctx context.Context, queryType, query string) ([]string, error) {
	var rows []labelRow
	if err := r.db.SelectContext(ctx, queryType, &rows, query); err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.Name)
	}
	return labels, nil
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsTransient returns false as a missing resource will not appear on retry
func (e *NotFoundError) IsTransient() bool {
	return false
}
