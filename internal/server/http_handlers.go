package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "internmatch/internal/errors"
)

// healthHandler reports generator availability, breaker state and the
// active taxonomy. Missing generators are not a failure: the pipeline has
// deterministic fallbacks. An open breaker or a failing model check marks
// the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "internmatch",
		"version": s.Version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	}

	healthy := true
	if s.deps.AI != nil {
		ctx, cancel := context.WithTimeout(r.Context(), s.healthCheckTimeout())
		defer cancel()

		models := s.deps.AI.GetModelInfo(ctx)
		response["ai_models"] = models
		for _, info := range models {
			if info != nil && !info.Available && info.Name != "none" {
				healthy = false
			}
		}

		breakers := s.deps.AI.CircuitBreakerStats()
		response["circuit_breakers"] = breakers
		if anyBreakerOpen(breakers) {
			healthy = false
		}
		response["embedding_provider"] = s.AppConfig.GetEmbeddingConfig().Provider
	}

	if s.deps.Taxonomy != nil {
		tax := s.deps.Taxonomy.Current()
		response["taxonomy"] = map[string]any{
			"name":     tax.Name,
			"file":     s.deps.Taxonomy.Path(),
			"watching": s.deps.Watcher != nil && s.deps.Watcher.IsRunning(),
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// anyBreakerOpen walks the per-operation stats maps for state "open"
func anyBreakerOpen(stats map[string]any) bool {
	for _, v := range stats {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if state, _ := m["state"].(string); state == "open" {
			return true
		}
		if anyBreakerOpen(m) {
			return true
		}
	}
	return false
}

func (s *Server) healthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.AIModelCheckTimeout; t > 0 {
		return t
	}
	return 10 * time.Second
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "internmatch",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"clean_batch_threshold":  s.CleanBatchThreshold,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.deps.Taxonomy != nil {
		tax := s.deps.Taxonomy.Current()
		response["taxonomy"] = map[string]any{
			"name":   tax.Name,
			"tables": tax.Stats(),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// decodeJSON parses and validates a JSON request body into v
func (s *Server) decodeJSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return apperrors.NewIOError(apperrors.ErrCodeFileNotReadable, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return s.validateStruct(v)
}

// validateStruct runs the validate tags and flattens the first failures
func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest, "invalid request", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
		if len(fields) == 5 {
			break
		}
	}
	return apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
		"validation failed: "+strings.Join(fields, "; "), err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, errMsg, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:     errMsg,
		Message:   message,
		RequestID: requestIDFrom(r.Context()),
	})
}

// writeAppError maps err onto a status code and logs server-side failures
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error, summary string) {
	status := apperrors.HTTPStatus(err)
	resp := ErrorResponse{
		Error:     summary,
		Message:   err.Error(),
		RequestID: requestIDFrom(r.Context()),
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		resp.Code = appErr.Code
		resp.Message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, summary, "endpoint", r.URL.Path, "request_id", resp.RequestID)
	}
	writeJSON(w, status, resp)
}
