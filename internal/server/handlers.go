package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/orchestration"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/service"
	"github.com/agbru/fibseq/pkg/models"
)

// defaultKind is used when a request omits the kind parameter.
const defaultKind = sequence.KindFibonacci

// handleHealth reports liveness and the number of open sessions.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Sessions:  s.service.Sessions(),
	})
}

// handleKinds lists the registered sequence kinds.
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.KindsResponse{Kinds: s.service.Kinds()})
}

// handleSequence answers GET /sequence with a stateless window: a fresh
// instance of kind, optionally skipped, pulled count times with resets sent
// at the reset_at calls.
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	kind, plan, err := parseSequenceParams(r)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	terms, err := s.service.Window(ctx, kind, plan)
	duration := time.Since(start)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), err.Error())
		return
	}

	s.writeJSONResponse(w, http.StatusOK, buildSequenceResponse(kind, plan, terms, duration))
}

// handleSessions opens (POST) or closes (DELETE) a session.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		kind := r.URL.Query().Get("kind")
		if kind == "" {
			kind = defaultKind
		}
		resp, err := s.service.Open(kind)
		if err != nil {
			s.writeErrorResponse(w, statusFor(err), err.Error())
			return
		}
		s.writeJSONResponse(w, http.StatusCreated, resp)

	case http.MethodDelete:
		id, err := requireParam(r, "id")
		if err != nil {
			s.writeErrorResponse(w, statusFor(err), err.Error())
			return
		}
		if err := s.service.Close(id); err != nil {
			s.writeErrorResponse(w, statusFor(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSessionNext advances a session by one call. reset=true makes this
// call carry the reset signal, so the reset shows from the next call on.
func (s *Server) handleSessionNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := requireParam(r, "id")
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), err.Error())
		return
	}
	reset := false
	if raw := r.URL.Query().Get("reset"); raw != "" {
		if reset, err = strconv.ParseBool(raw); err != nil {
			err = apperrors.NewValidationError("reset", "must be a boolean", raw)
			s.writeErrorResponse(w, statusFor(err), err.Error())
			return
		}
	}

	resp, err := s.service.Next(id, reset)
	if err != nil {
		s.writeErrorResponse(w, statusFor(err), err.Error())
		return
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// parseSequenceParams extracts kind, count, reset_at and skip.
//
// Returns:
//   - kind: The sequence kind ("fibonacci" if not specified).
//   - plan: The driving plan.
//   - err: An apperrors.ValidationError if validation fails, nil otherwise.
func parseSequenceParams(r *http.Request) (kind string, plan orchestration.Plan, err error) {
	q := r.URL.Query()

	countStr := q.Get("count")
	if countStr == "" {
		return "", plan, apperrors.NewValidationError("count", "missing parameter", nil)
	}
	// ParseUint rejects a leading minus sign.
	if plan.Count, err = strconv.ParseUint(countStr, 10, 64); err != nil || plan.Count == 0 {
		return "", plan, apperrors.NewValidationError("count", "must be a positive integer", countStr)
	}

	if skipStr := q.Get("skip"); skipStr != "" {
		if plan.Skip, err = strconv.ParseUint(skipStr, 10, 64); err != nil {
			return "", plan, apperrors.NewValidationError("skip", "must be a non-negative integer", skipStr)
		}
	}

	if plan.ResetAt, err = orchestration.ParseCalls(q.Get("reset_at")); err != nil {
		return "", plan, apperrors.NewValidationError("reset_at", err.Error(), q.Get("reset_at"))
	}

	kind = q.Get("kind")
	if kind == "" {
		kind = defaultKind
	}
	return kind, plan, nil
}

func requireParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", apperrors.NewValidationError(name, "missing parameter", nil)
	}
	return v, nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sequence.ErrUnknownKind), errors.Is(err, service.ErrUnknownSession):
		return http.StatusNotFound
	case errors.As(err, new(apperrors.ValidationError)),
		errors.Is(err, service.ErrMaxCountExceeded), errors.Is(err, service.ErrMaxSkipExceeded):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperrors.IsContextError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// buildSequenceResponse constructs the body of a successful window.
func buildSequenceResponse(kind string, plan orchestration.Plan, terms []models.Term, duration time.Duration) models.SequenceResponse {
	return models.SequenceResponse{
		Kind:      kind,
		Count:     plan.Count,
		Skip:      plan.Skip,
		ResetAt:   plan.ResetAt,
		Terms:     terms,
		Exhausted: uint64(len(terms)) < plan.Count,
		Duration:  duration.String(),
	}
}

// writeJSONResponse writes data as JSON with the given status code.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

// writeErrorResponse writes a standardized models.ErrorResponse.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
