package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.ledger.Settings(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(settings).Write(w)
}

// handlePutSettings replaces the settings wholesale.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		bodyError(err).Write(w)
		return
	}
	var settings core.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		BadRequestError("invalid JSON body: " + err.Error()).Write(w)
		return
	}
	if err := settings.Validate(); err != nil {
		ErrorResponse(http.StatusUnprocessableEntity, err.Error()).Write(w)
		return
	}
	if err := s.ledger.SaveSettings(r.Context(), settings); err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}

	saved, err := s.ledger.Settings(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(saved).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	status, err := s.ledger.Budget(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(status).Write(w)
}

// handlePutBudget accepts {"limit": "500.00"} or limit=500.00.
func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		bodyError(err).Write(w)
		return
	}
	if _, err := s.ledger.SetBudget(r.Context(), parser.Get("limit")); err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	s.invalidate()
	s.writeBudget(w, r)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearBudget(r.Context()); err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	s.invalidate()
	s.writeBudget(w, r)
}

func (s *Server) writeBudget(w http.ResponseWriter, r *http.Request) {
	status, err := s.ledger.Budget(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(status).Write(w)
}
