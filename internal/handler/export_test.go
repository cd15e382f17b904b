package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tourbook/internal/domain"
	"github.com/pkordes/tourbook/internal/handler"
)

// ---- mock ExportServicer ---------------------------------------------------

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

// compile-time check: mockExportServicer must satisfy handler.ExportServicer.
var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newExportHTTPHandler wires a Server with only the export service mock.
func newExportHTTPHandler(exportSvc handler.ExportServicer) http.Handler {
	return handler.NewServer(handler.Services{Export: exportSvc}, nil, discardLogger()).Routes()
}

// exportRowFixture returns a fully-populated domain.ExportRow for testing.
func exportRowFixture() domain.ExportRow {
	return domain.ExportRow{
		ID:               7,
		ConfirmationCode: "3f1c2a9e-8d47-4c2b-b5a1-6e0f9d3c7a21",
		Status:           "confirmed",
		Flow:             "experience",
		DestinationRef:   "serengeti",
		PackageRef:       "serengeti-3day",
		StartDate:        "2026-11-01",
		EndDate:          "2026-11-04",
		Adults:           2,
		Children:         1,
		GuestName:        "Ada Lovelace",
		Email:            "ada@example.com",
		Phone:            "+44 20 7946 0958",
		Accommodation:    "premium",
		Transport:        "private",
		TotalPrice:       1465,
		Currency:         "USD",
		ConfirmedAt:      time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
	}
}

func staticExport(rows ...domain.ExportRow) *mockExportServicer {
	return &mockExportServicer{
		export: func(context.Context) ([]domain.ExportRow, error) { return rows, nil },
	}
}

// ---- GET /admin/export (JSON) --------------------------------------------

func TestGetExport_DefaultJSON_EmptyResult(t *testing.T) {
	rec := serve(newExportHTTPHandler(staticExport()), http.MethodGet, "/admin/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var rows []handler.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	assert.Empty(t, rows)
	assert.NotContains(t, rec.Body.String(), "null")
}

func TestGetExport_JSON_FullRow(t *testing.T) {
	fixture := exportRowFixture()

	rec := serve(newExportHTTPHandler(staticExport(fixture)), http.MethodGet, "/admin/export?format=json", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []handler.ExportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, handler.ExportRow(fixture), rows[0])
}

// ---- GET /admin/export?format=csv ------------------------------------------

func TestGetExport_CSV(t *testing.T) {
	rec := serve(newExportHTTPHandler(staticExport(exportRowFixture())), http.MethodGet, "/admin/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reservations.csv")

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "confirmed_at", records[0][len(records[0])-1])

	row := records[1]
	assert.Equal(t, "7", row[0])
	assert.Equal(t, "Ada Lovelace", row[10])
	assert.Equal(t, "1465.00", row[15])
	assert.Equal(t, "false", row[17])
	assert.Equal(t, "2026-03-10T15:30:00Z", row[18])
}

func TestGetExport_CSV_HeaderOnlyWhenEmpty(t *testing.T) {
	rec := serve(newExportHTTPHandler(staticExport()), http.MethodGet, "/admin/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 1)
}

// ---- errors ----------------------------------------------------------------

func TestGetExport_422_UnknownFormat(t *testing.T) {
	rec := serve(newExportHTTPHandler(staticExport()), http.MethodGet, "/admin/export?format=xml", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetExport_500_ServiceError(t *testing.T) {
	svc := &mockExportServicer{
		export: func(context.Context) ([]domain.ExportRow, error) {
			return nil, fmt.Errorf("service.ExportService.Export: %w", context.DeadlineExceeded)
		},
	}

	rec := serve(newExportHTTPHandler(svc), http.MethodGet, "/admin/export", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Code)
}
