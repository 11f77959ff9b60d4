package server

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	oteltrace "go.opentelemetry.io/otel/trace"

	"internmatch/internal/ai"
	"internmatch/internal/config"
	"internmatch/internal/errors"
	"internmatch/internal/match"
	"internmatch/internal/observability"
	"internmatch/internal/taxonomy"
	"internmatch/internal/types"
)

// ParseResumeRequest is the body of /parse-resume
type ParseResumeRequest struct {
	ResumeText string   `json:"resumeText" validate:"required,max=200000"`
	Skills     []string `json:"skills" validate:"max=200,dive,max=100"`
}

// AnalyzeResumeRequest is the body of /analyze-resume
type AnalyzeResumeRequest struct {
	ResumeText string `json:"resumeText" validate:"required,max=200000"`
}

// CleanDataRequest is the body of /clean-data
type CleanDataRequest struct {
	Items []types.CleanItem `json:"items" validate:"required,max=100000"`
}

// SuccessResponse wraps every successful payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"jobId,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Deps are the collaborators the HTTP layer serves. AI and Watcher may be nil.
type Deps struct {
	Matcher    *match.Matcher
	DeepParser *match.DeepParser
	AI         *ai.Service
	Taxonomy   *taxonomy.Store
	Watcher    *taxonomy.Watcher
	Metrics    *observability.Manager
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	CleanBatchThreshold int
	CleanWorkers        int

	deps      Deps
	validate  *validator.Validate
	jobs      sync.WaitGroup
	bgCtx     context.Context
	startedAt time.Time

	Logger *errors.Logger
}

// NewServer creates a Server from the application config and its pipeline
func NewServer(appCfg *config.Config, version string, deps Deps, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if deps.Taxonomy == nil && deps.Matcher != nil {
		deps.Taxonomy = deps.Matcher.Taxonomy()
	}

	cfg := appCfg.Server

	// Map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	rateLimit := cfg.RateLimit
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, logger)
	}

	threshold := cfg.CleanBatchThreshold
	if threshold <= 0 {
		threshold = 50
	}

	return &Server{
		Host:                cfg.Host,
		Port:                cfg.Port,
		Version:             version,
		AppConfig:           appCfg,
		TLSConfig:           cfg.TLS,
		APIKeys:             apiKeyMap,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		IdleTimeout:         cfg.IdleTimeout,
		ShutdownTimeout:     cfg.ShutdownTimeout,
		MaxRequestSize:      appCfg.App.MaxFileSize,
		RateLimit:           &rateLimit,
		RateLimiter:         rateLimiter,
		CleanBatchThreshold: threshold,
		CleanWorkers:        cfg.CleanWorkers,
		deps:                deps,
		validate:            validator.New(validator.WithRequiredStructEnabled()),
		startedAt:           time.Now(),
		Logger:              logger,
	}
}

func (s *Server) tracer() oteltrace.Tracer {
	return s.deps.Metrics.Tracer("internmatch.api")
}
