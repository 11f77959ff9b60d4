package server

import (
	"fmt"
	"net/http"

	"internmatch/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(httpServer *http.Server) {
	scheme := "http"
	if httpServer.TLSConfig != nil {
		scheme = "https"
	}
	fmt.Printf("Starting server on %s://%s\n", scheme, httpServer.Addr)

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
	s.displayTaxonomyInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health          - Health check")
	fmt.Println("  GET  /stats           - Server statistics")
	fmt.Println("  POST /match           - Rank internships for a student")
	fmt.Println("  POST /parse-resume    - Extract skills from resume text or PDF")
	fmt.Println("  POST /analyze-resume  - Structured resume analysis")
	fmt.Println("  POST /clean-data      - Normalize scraped listings")
	if s.deps.Metrics != nil {
		if endpoint, ok := s.deps.Metrics.ServeMetricsOnAPI(); ok {
			fmt.Printf("  GET  %-16s - Prometheus metrics\n", endpoint)
		}
	}
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in POST requests")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%s)\n", s.MaxRequestSize, utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}

func (s *Server) displayTaxonomyInfo() {
	if s.deps.Taxonomy == nil {
		return
	}
	fmt.Printf("Taxonomy: %s\n", s.deps.Taxonomy.Current().Name)
	if s.deps.Watcher != nil && s.deps.Watcher.IsRunning() {
		fmt.Printf("  - Watching %s for changes\n", s.deps.Taxonomy.Path())
	}
}
