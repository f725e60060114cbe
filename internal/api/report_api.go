package api

import (
	"fmt"
	"net/http"
	"time"

	"carrent/internal/metrics"
	"carrent/internal/report"

	"github.com/julienschmidt/httprouter"
)

// handleExportBookings streams every booking as an xlsx workbook.
// GET /api/admin/bookings/export
func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("bookings_export")

	bookings, err := s.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	filename := fmt.Sprintf("bookings_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := report.WriteBookingsXLSX(w, bookings); err != nil {
		s.log.Error().Err(err).Msg("failed to write bookings export")
	}
}
