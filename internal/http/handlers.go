package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pgledger/internal/core"
	applog "pgledger/internal/log"
)

const (
	msgRunning         = "Backend is running ✅"
	msgCustomerMissing = "Customer not found ❌"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	Text(http.StatusOK, msgRunning).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the database; a failed ping reports 503.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status, code := "ready", http.StatusOK
	if s.deps.Ledger == nil {
		checks["database"] = "not configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := s.deps.Ledger.Ping(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		checks["database"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	JSON(code, map[string]any{"status": status, "checks": checks}).Write(w)
}

// failure maps service errors onto responses. serverMsg is the body for anything unexpected.
func failure(ctx context.Context, err error, serverMsg string) *Response {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return Text(http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, core.ErrCustomerNotFound):
		return Text(http.StatusNotFound, msgCustomerMissing)
	default:
		applog.FromContext(ctx).ErrorContext(ctx, serverMsg, applog.FieldError, err)
		return Text(http.StatusInternalServerError, serverMsg)
	}
}

// parseBody reads the request body; a malformed body is a 422.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, *Response) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, Text(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return nil, Text(http.StatusUnprocessableEntity, "Malformed request body")
	}
	return p, nil
}
