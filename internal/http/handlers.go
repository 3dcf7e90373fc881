package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
)

type uidHandler func(w http.ResponseWriter, r *http.Request, uid string)

// withUID rejects /api calls without a uid before the handler runs.
func (s *Server) withUID(next uidHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := RequireUID(r)
		if err != nil {
			s.writeError(w, r, err, log.OpValidate)
			return
		}
		next(w, r, uid)
	}
}

// writeError maps err to a response. Client errors are returned as they are;
// everything else is logged and hidden behind a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		BadRequestError(reqErr.Message).Write(w)
	case errors.Is(err, records.ErrNotFound):
		NotFoundError("transaction not found").Write(w)
	default:
		errorType := log.ErrorTypeDatabase
		if errors.Is(err, core.ErrInvalidAmount) {
			errorType = log.ErrorTypeInternal
		}
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, errorType, op, nil)
		InternalServerError("internal server error").Write(w)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks the store. A missing assistant is reported but does not
// make the service unready: every other route still works.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if err := s.ready(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.assistantConfigured {
		checks["assistant"] = "ok"
	} else {
		checks["assistant"] = "not_configured"
	}

	checks["rate_limiter"] = s.rateLimiter.GetMetrics()

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_request_duration_average_microseconds", "Average request duration", "gauge", traceMetrics.AverageResponseTime)
	metric("records_written_total", "Transactions and goals written", "counter", s.appMetrics.recordsWritten.Load())
	metric("chat_requests_total", "Chat requests answered or attempted", "counter", s.appMetrics.chatRequests.Load())
	metric("chat_failures_total", "Chat requests that failed downstream", "counter", s.appMetrics.chatFailures.Load())
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.started).Seconds()))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, uid string) {
	tx, err := ParseTransactionCreate(r)
	if err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	id, err := s.store.CreateTransaction(r.Context(), uid, tx)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	s.recordWritten(r, log.OpCreate, uid, "transaction", id)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Transaction created",
		log.NewFields().WithTransaction(string(tx.Type), tx.CategoryOr(""), string(tx.Amount)).ToSlice()...)
	StatusResponse(http.StatusCreated, "ok", id).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, uid string) {
	txs, err := s.store.ListTransactions(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, uid string) {
	id := r.PathValue("id")
	patch, err := ParseTransactionPatch(r)
	if err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	if _, err := s.store.UpdateTransaction(r.Context(), uid, id, patch); err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	s.recordWritten(r, log.OpUpdate, uid, "transaction", id)
	StatusResponse(http.StatusOK, "updated", "").Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, uid string) {
	id := r.PathValue("id")
	if err := s.store.DeleteTransaction(r.Context(), uid, id); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	s.recordWritten(r, log.OpDelete, uid, "transaction", id)
	StatusResponse(http.StatusOK, "deleted", "").Write(w)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, uid string) {
	goals, err := s.store.ListGoals(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	if goals == nil {
		goals = []core.Goal{}
	}
	NewJSONResponse().Body(goals).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, uid string) {
	g, err := ParseGoalCreate(r)
	if err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}
	id, err := s.store.CreateGoal(r.Context(), uid, g)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	s.recordWritten(r, log.OpCreate, uid, "goal", id)
	StatusResponse(http.StatusCreated, "ok", id).Write(w)
}

func (s *Server) recordWritten(r *http.Request, op, uid, kind, id string) {
	s.appMetrics.recordsWritten.Add(1)
	log.NewStructuredLogger(log.FromContext(r.Context())).LogRecordWritten(r.Context(), op, uid, kind, id)
}
