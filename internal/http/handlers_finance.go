package http

import (
	"errors"
	"net/http"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, uid string) {
	totals, err := s.finance.Summary(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpSummary)
		return
	}
	NewJSONResponse().Body(totals).Write(w)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request, uid string) {
	entries, err := s.finance.CategorySummary(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpSummary)
		return
	}
	NewJSONResponse().Body(entries).Write(w)
}

func (s *Server) handleGoalsWithProgress(w http.ResponseWriter, r *http.Request, uid string) {
	progress, err := s.finance.GoalsWithProgress(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpSummary)
		return
	}
	NewJSONResponse().Body(progress).Write(w)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request, uid string) {
	report, err := s.finance.Insights(r.Context(), uid)
	if err != nil {
		s.writeError(w, r, err, log.OpInsights)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, uid string) {
	req, err := ParseChatRequest(r)
	if err != nil {
		s.writeError(w, r, err, log.OpParse)
		return
	}

	s.appMetrics.chatRequests.Add(1)
	reply, err := s.finance.Chat(r.Context(), uid, req.Message, req.History)
	switch {
	case err == nil:
		NewJSONResponse().Body(chatResponse{Reply: reply}).Write(w)
	case errors.Is(err, services.ErrEmptyMessage):
		BadRequestError("message is required").Write(w)
	case errors.Is(err, services.ErrAssistant):
		s.appMetrics.chatFailures.Add(1)
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Assistant request failed", err,
			log.ErrorTypeDownstream, log.OpChat, log.NewFields().WithUser(uid))
		InternalServerError("AI request failed").Write(w)
	default:
		s.writeError(w, r, err, log.OpChat)
	}
}
