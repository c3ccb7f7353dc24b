package http

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"fintrack/internal/impexp"
	applog "fintrack/internal/log"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "text/csv; charset=utf-8", "transactions.csv", s.ledger.ExportCSV)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "application/json", "transactions.json", s.ledger.ExportJSON)
}

// export renders into a buffer so a failed read still yields a clean error
// response.
func (s *Server) export(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := write(r.Context(), &buf); err != nil {
		s.fail(w, r, applog.OpExport, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleImport takes the raw JSON document as the body; mode and path come
// from the query string.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode, err := impexp.ParseMode(q.Get("mode"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	body, err := readBody(r)
	if err != nil {
		bodyError(err).Write(w)
		return
	}

	result, err := s.ledger.Import(r.Context(), body, impexp.Options{Mode: mode, Path: q.Get("path")})
	if err != nil {
		s.fail(w, r, applog.OpImport, err)
		return
	}
	s.invalidate()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, result.Imported)
	NewResponse().JSON(result).Write(w)
}
