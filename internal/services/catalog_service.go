package services

import (
	"context"
	"errors"
	"fmt"

	"yield-advisor/internal/catalog"
	"yield-advisor/internal/config"
	"yield-advisor/internal/encoding"
	"yield-advisor/internal/models"
	"yield-advisor/internal/repository"
	"yield-advisor/pkg/logging"
)

// LoadCatalog builds the catalog from the configured source. repo is only used,
// and only required, for the postgres source.
func LoadCatalog(ctx context.Context, cfg config.CatalogConfig, repo repository.CatalogRepository, logger *logging.StructuredLogger) (*catalog.Catalog, error) {
	var (
		c   *catalog.Catalog
		err error
	)

	switch cfg.Source {
	case config.CatalogSourceBuiltin, "":
		c = catalog.Builtin()
	case config.CatalogSourceFile:
		c, err = catalog.LoadFile(cfg.File)
	case config.CatalogSourcePostgres:
		if repo == nil {
			return nil, errors.New("catalog source postgres needs a repository")
		}
		var spec catalog.Spec
		spec, err = repo.LoadSpec(ctx)
		if err == nil {
			c, err = catalog.New(spec)
		}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s catalog: %w", cfg.Source, err)
	}

	logger.Info(ctx, "[CATALOG_READY] Catalog loaded", logging.Fields{
		"source":        cfg.Source,
		"order":         cfg.Order,
		"locations":     len(c.Labels(catalog.FieldLocation)),
		"sub_locations": len(c.Labels(catalog.FieldSubLocation)),
		"seasons":       len(c.Labels(catalog.FieldSeason)),
		"crops":         len(c.Labels(catalog.FieldCrop)),
	})

	return c, nil
}

// CatalogService exposes the encoder's domains to API clients
type CatalogService struct {
	encoder *encoding.Encoder
	logger  *logging.StructuredLogger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(encoder *encoding.Encoder, logger *logging.StructuredLogger) *CatalogService {
	return &CatalogService{
		encoder: encoder,
		logger:  logger,
	}
}

// Describe lists every domain in index order, the hierarchy and the plausible ranges
func (s *CatalogService) Describe() models.CatalogResponse {
	c := s.encoder.Catalog()

	hierarchy := make(map[string][]string)
	for _, loc := range c.Labels(catalog.FieldLocation) {
		subs, _ := c.SubLocations(loc)
		hierarchy[loc] = subs
	}

	return models.CatalogResponse{
		Order:        string(s.encoder.Order()),
		Locations:    s.encoder.Labels(catalog.FieldLocation),
		SubLocations: hierarchy,
		Seasons:      s.encoder.Labels(catalog.FieldSeason),
		Crops:        s.encoder.Labels(catalog.FieldCrop),
		Ranges:       models.Ranges(),
	}
}

// SubLocations returns the sub-locations of location, or an UnknownCategoryError
func (s *CatalogService) SubLocations(location string) (models.SubLocationsResponse, error) {
	subs, ok := s.encoder.Catalog().SubLocations(location)
	if !ok {
		return models.SubLocationsResponse{}, &encoding.UnknownCategoryError{Field: catalog.FieldLocation, Label: location}
	}
	return models.SubLocationsResponse{Location: location, SubLocations: subs}, nil
}
