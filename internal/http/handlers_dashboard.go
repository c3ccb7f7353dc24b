package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// handleDashboard serves the summary, cached per anchor day until the next
// mutation.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	anchor := s.ledger.Today()
	if v := strings.TrimSpace(r.URL.Query().Get("anchor")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		anchor = d
	}

	key := anchor.String()
	if d, ok := s.dashboard.Get(key); ok {
		NewResponse().Header("X-Cache", "HIT").JSON(d).Write(w)
		return
	}

	gen := s.cacheGeneration()
	d, err := s.ledger.Dashboard(r.Context(), anchor)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	s.storeDashboard(gen, key, d)
	NewResponse().Header("X-Cache", "MISS").JSON(d).Write(w)
}

// handleConvert converts between any two known currencies. A missing from
// means the base currency.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(q.Get("amount")))
	if err != nil {
		BadRequestError("amount must be a number").Write(w)
		return
	}

	from := strings.TrimSpace(q.Get("from"))
	to := strings.TrimSpace(q.Get("to"))
	if from == "" || to == "" {
		settings, err := s.ledger.Settings(r.Context())
		if err != nil {
			s.fail(w, r, applog.OpRead, err)
			return
		}
		if from == "" {
			from = settings.BaseCurrency
		}
		if to == "" {
			to = settings.BaseCurrency
		}
	}

	conv, err := s.ledger.Convert(r.Context(), amount, from, to)
	if err != nil {
		s.fail(w, r, applog.OpRead, err)
		return
	}
	NewResponse().JSON(conv).Write(w)
}
