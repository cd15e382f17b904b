package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/tourbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"id", "confirmation_code", "status", "flow", "destination_ref", "package_ref",
	"start_date", "end_date", "adults", "children",
	"guest_name", "email", "phone", "accommodation", "transport",
	"total_price", "currency", "price_unparsed", "confirmed_at",
}

// GetExport implements GET /admin/export.
// It returns every committed reservation as a flat table.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	var format string
	if err := queryParam(r, "format", &format); err != nil {
		requestError(w, err.Error())
		return
	}
	switch format {
	case "", "json", "csv":
	default:
		requestError(w, "format must be json or csv")
		return
	}

	rows, err := s.export.Export(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err, "export")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response rows.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow(r))
	}
	return out
}

// writeCSV encodes rows as CSV into a buffer and writes it in one response.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.ConfirmationCode,
		r.Status,
		r.Flow,
		r.DestinationRef,
		r.PackageRef,
		r.StartDate,
		r.EndDate,
		strconv.Itoa(r.Adults),
		strconv.Itoa(r.Children),
		r.GuestName,
		r.Email,
		r.Phone,
		r.Accommodation,
		r.Transport,
		strconv.FormatFloat(r.TotalPrice, 'f', 2, 64),
		r.Currency,
		strconv.FormatBool(r.PriceUnparsed),
		r.ConfirmedAt.UTC().Format(time.RFC3339),
	}
}
