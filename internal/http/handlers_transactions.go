package http

import (
	"errors"
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	result, err := s.ledger.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(result).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		bodyError(err).Write(w)
		return
	}

	t, err := s.ledger.Create(r.Context(), parser.Transaction())
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	s.invalidate()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTxnID, t.ID,
		applog.FieldAmount, t.Amount.String(),
		applog.FieldCategory, t.Category)

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		JSON(t).
		Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		bodyError(err).Write(w)
		return
	}

	id := r.PathValue("id")
	t, err := s.ledger.Edit(r.Context(), id, parser.Patch())
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	s.invalidate()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldTxnID, id)
	NewResponse().JSON(t).Write(w)
}

// handleDeleteTransaction answers 204 whether or not the id existed.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	removed, err := s.ledger.Remove(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	if removed {
		s.invalidate()
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTxnID, id)
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

func bodyError(err error) *ResponseBuilder {
	if errors.Is(err, errBodyTooLarge) {
		return ErrorResponse(http.StatusRequestEntityTooLarge, err.Error())
	}
	return BadRequestError(err.Error())
}
