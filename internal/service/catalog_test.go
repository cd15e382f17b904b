package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/service"
)

func catalogFixture() []domain.Destination {
	return []domain.Destination{
		{
			Ref:  "serengeti",
			Name: "Serengeti Safari",
			Flow: domain.FlowExperience,
			Packages: []domain.Package{{
				Ref:           "serengeti-3day",
				PriceLabel:    "$450",
				DurationLabel: "3 days",
				IncludedItems: []string{"Tented camp", "All meals"},
			}},
		},
		{Ref: "kyoto", Name: "Kyoto", Flow: domain.FlowDestination},
	}
}

func TestCatalogService_Get(t *testing.T) {
	svc := service.NewCatalogService(catalogFixture(), discardLogger())

	got, err := svc.Get("kyoto")
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", got.Name)

	_, err = svc.Get("atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogService_List_IsACopy(t *testing.T) {
	svc := service.NewCatalogService(catalogFixture(), discardLogger())

	list := svc.List()
	list[0].Name = "changed"

	assert.Equal(t, "Serengeti Safari", svc.List()[0].Name)
}

func TestCatalogService_Resolve_FillsBlanks(t *testing.T) {
	svc := service.NewCatalogService(catalogFixture(), discardLogger())

	got := svc.Resolve(context.Background(), domain.PackageContext{DestinationRef: "serengeti", PackageRef: "serengeti-3day"})

	assert.Equal(t, domain.FlowExperience, got.Flow)
	assert.Equal(t, "$450", got.PriceLabel)
	assert.Equal(t, "3 days", got.DurationLabel)
	assert.Equal(t, []string{"Tented camp", "All meals"}, got.IncludedItems)
}

func TestCatalogService_Resolve_CallerValuesWin(t *testing.T) {
	svc := service.NewCatalogService(catalogFixture(), discardLogger())

	got := svc.Resolve(context.Background(), domain.PackageContext{
		DestinationRef: "serengeti",
		PackageRef:     "serengeti-3day",
		DurationLabel:  "3 days, 2 nights",
		IncludedItems:  []string{"Guide"},
	})

	assert.Equal(t, "3 days, 2 nights", got.DurationLabel)
	assert.Equal(t, []string{"Guide"}, got.IncludedItems)
}

func TestCatalogService_Resolve_CatalogPriceWins(t *testing.T) {
	var logs bytes.Buffer
	svc := service.NewCatalogService(catalogFixture(), slog.New(slog.NewJSONHandler(&logs, nil)))

	got := svc.Resolve(context.Background(), domain.PackageContext{
		DestinationRef: "serengeti",
		PackageRef:     "serengeti-3day",
		PriceLabel:     "$1",
	})

	assert.Equal(t, "$450", got.PriceLabel)
	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), `"client_price_label":"$1"`)
}

func TestCatalogService_Resolve_MatchingPriceNotLogged(t *testing.T) {
	var logs bytes.Buffer
	svc := service.NewCatalogService(catalogFixture(), slog.New(slog.NewJSONHandler(&logs, nil)))

	got := svc.Resolve(context.Background(), domain.PackageContext{
		DestinationRef: "serengeti",
		PackageRef:     "serengeti-3day",
		PriceLabel:     "$450",
	})

	assert.Equal(t, "$450", got.PriceLabel)
	assert.Empty(t, logs.String())
}

func TestCatalogService_Resolve_UnknownRefs(t *testing.T) {
	svc := service.NewCatalogService(catalogFixture(), discardLogger())

	in := domain.PackageContext{DestinationRef: "atlantis", PackageRef: "x", PriceLabel: "$10"}
	got := svc.Resolve(context.Background(), in)

	assert.Equal(t, domain.FlowDestination, got.Flow)
	assert.Equal(t, "$10", got.PriceLabel)
}
