package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pkordes/tourbook/internal/domain"
)

// CatalogService answers catalog lookups and completes the package context a
// booking is started with.
type CatalogService struct {
	destinations []domain.Destination
	byRef        map[string]int
	logger       *slog.Logger
}

// NewCatalogService indexes dests by ref. A nil logger uses slog.Default.
func NewCatalogService(dests []domain.Destination, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &CatalogService{destinations: dests, byRef: make(map[string]int, len(dests)), logger: logger}
	for i, d := range dests {
		s.byRef[d.Ref] = i
	}
	return s
}

// List returns every destination in catalog order.
func (s *CatalogService) List() []domain.Destination {
	return slices.Clone(s.destinations)
}

// Get returns the destination with ref or domain.ErrNotFound.
func (s *CatalogService) Get(ref string) (domain.Destination, error) {
	i, ok := s.byRef[ref]
	if !ok {
		return domain.Destination{}, fmt.Errorf("service.CatalogService.Get: %w", domain.ErrNotFound)
	}
	return s.destinations[i], nil
}

// Resolve fills blank fields of pkg from the catalog entry its refs name.
// For a catalog package the catalog price label always applies; other
// values supplied by the caller win. Unknown refs leave pkg unchanged apart
// from defaulting the flow kind.
func (s *CatalogService) Resolve(ctx context.Context, pkg domain.PackageContext) domain.PackageContext {
	if i, ok := s.byRef[pkg.DestinationRef]; ok {
		dest := s.destinations[i]
		if pkg.Flow == "" {
			pkg.Flow = dest.Flow
		}
		if p, ok := dest.FindPackage(pkg.PackageRef); ok {
			if pkg.PriceLabel != "" && pkg.PriceLabel != p.PriceLabel {
				s.logger.WarnContext(ctx, "ignoring client price label for catalog package",
					"destination_ref", pkg.DestinationRef, "package_ref", pkg.PackageRef,
					"client_price_label", pkg.PriceLabel, "catalog_price_label", p.PriceLabel)
			}
			pkg.PriceLabel = p.PriceLabel
			if pkg.DurationLabel == "" {
				pkg.DurationLabel = p.DurationLabel
			}
			if len(pkg.IncludedItems) == 0 {
				pkg.IncludedItems = slices.Clone(p.IncludedItems)
			}
		}
	}
	if pkg.Flow == "" {
		pkg.Flow = domain.FlowDestination
	}
	return pkg
}
