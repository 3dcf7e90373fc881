// Package http provides the JSON API server and its handlers.
//
// This file decodes and validates request bodies. Every failure is a
// *RequestError carrying the message sent back with the 400.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/insights"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// RequestError is a client error. Message is safe to return to the caller.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

func badRequest(message string) *RequestError {
	return &RequestError{Message: message}
}

// invalid reports a failed validation. Amount errors carry the offending
// literal; the response only names the problem.
func invalid(err error) *RequestError {
	if errors.Is(err, core.ErrInvalidAmount) {
		return &RequestError{Message: core.ErrInvalidAmount.Error(), Err: err}
	}
	return &RequestError{Message: err.Error(), Err: err}
}

var errEmptyBody = errors.New("empty body")

// RequireUID returns the uid query parameter, which scopes every /api call.
func RequireUID(r *http.Request) (string, error) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		return "", badRequest("uid is required")
	}
	return uid, nil
}

// decodeJSON reads at most maxBodyBytes and decodes them into v. An empty
// body yields errEmptyBody so callers can decide whether it is acceptable.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &RequestError{Message: "could not read request body", Err: err}
	}
	if len(body) > maxBodyBytes {
		return badRequest("request body too large")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			return invalid(err)
		}
		return &RequestError{Message: "invalid JSON body", Err: err}
	}
	return nil
}

func decodeRequiredJSON(r *http.Request, v any) error {
	err := decodeJSON(r, v)
	if errors.Is(err, errEmptyBody) {
		return &RequestError{Message: "invalid JSON body", Err: err}
	}
	return err
}

// transactionFields mirrors the JSON of a transaction. Pointers tell a
// missing field from a zero one.
type transactionFields struct {
	Date        *string      `json:"date"`
	Type        *core.TxType `json:"type"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Amount      *core.Amount `json:"amount"`
}

// ParseTransactionCreate decodes a new transaction. date, type and amount
// are required.
func ParseTransactionCreate(r *http.Request) (core.Transaction, error) {
	var in transactionFields
	if err := decodeRequiredJSON(r, &in); err != nil {
		return core.Transaction{}, err
	}
	switch {
	case in.Date == nil || strings.TrimSpace(*in.Date) == "":
		return core.Transaction{}, badRequest("date is required")
	case in.Type == nil || *in.Type == "":
		return core.Transaction{}, badRequest("type is required")
	case in.Amount == nil || *in.Amount == "":
		return core.Transaction{}, badRequest("amount is required")
	}

	tx := core.Transaction{
		Date:        strings.TrimSpace(*in.Date),
		Type:        *in.Type,
		Category:    sanitizeInput(valueOr(in.Category)),
		Description: sanitizeInput(valueOr(in.Description)),
		Amount:      *in.Amount,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	return tx, nil
}

// ParseTransactionPatch decodes a partial update. Only the fields present
// are validated and applied; at least one is required.
func ParseTransactionPatch(r *http.Request) (core.TransactionPatch, error) {
	var in transactionFields
	if err := decodeRequiredJSON(r, &in); err != nil {
		return core.TransactionPatch{}, err
	}

	patch := core.TransactionPatch{
		Date:        sanitizePtr(in.Date),
		Type:        in.Type,
		Category:    sanitizePtr(in.Category),
		Description: sanitizePtr(in.Description),
		Amount:      in.Amount,
	}
	if patch.IsEmpty() {
		return core.TransactionPatch{}, badRequest("no fields to update")
	}

	// Validate the patched fields against a record that is valid everywhere
	// else, so only the incoming values can fail.
	probe := patch.Apply(core.Transaction{Date: "2000-01-01", Type: core.Expense, Amount: "0"})
	if err := probe.Validate(); err != nil {
		return core.TransactionPatch{}, invalid(err)
	}
	return patch, nil
}

type goalFields struct {
	Name        *string      `json:"name"`
	Category    *string      `json:"category"`
	Month       *string      `json:"month"`
	LimitAmount *core.Amount `json:"limitAmount"`
}

// ParseGoalCreate decodes a new goal. name, month and limitAmount are
// required; a missing category means the goal covers every category.
func ParseGoalCreate(r *http.Request) (core.Goal, error) {
	var in goalFields
	if err := decodeRequiredJSON(r, &in); err != nil {
		return core.Goal{}, err
	}
	switch {
	case in.Name == nil || strings.TrimSpace(*in.Name) == "":
		return core.Goal{}, badRequest("name is required")
	case in.Month == nil || strings.TrimSpace(*in.Month) == "":
		return core.Goal{}, badRequest("month is required")
	case in.LimitAmount == nil || *in.LimitAmount == "":
		return core.Goal{}, badRequest("limitAmount is required")
	}

	g := core.Goal{
		Name:        sanitizeInput(*in.Name),
		Category:    sanitizeInput(valueOr(in.Category)),
		Month:       strings.TrimSpace(*in.Month),
		LimitAmount: *in.LimitAmount,
	}
	g.Category = g.CategoryOrAll()
	if err := g.Validate(); err != nil {
		return core.Goal{}, invalid(err)
	}
	return g, nil
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	Message string          `json:"message"`
	History []insights.Turn `json:"history"`
}

// ParseChatRequest decodes a chat body. An empty body is treated as an empty
// message; the message is trimmed and emptiness is left to the caller.
func ParseChatRequest(r *http.Request) (ChatRequest, error) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		return ChatRequest{}, err
	}
	req.Message = strings.TrimSpace(req.Message)
	return req, nil
}
