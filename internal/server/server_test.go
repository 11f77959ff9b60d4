package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internmatch/internal/ai"
	"internmatch/internal/config"
	"internmatch/internal/match"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.MaxFileSize = 1 << 20
	cfg.Server.CleanBatchThreshold = 50
	cfg.Server.CleanWorkers = 2
	if mutate != nil {
		mutate(cfg)
	}

	settings := match.DefaultSettings()
	matcher, err := match.New(match.Deps{
		Embedder: ai.NewHashEmbedder(64),
		Settings: settings,
	})
	require.NoError(t, err)

	s := NewServer(cfg, "test", Deps{
		Matcher:    matcher,
		DeepParser: match.NewDeepParser(nil, matcher.Taxonomy(), settings, "", nil),
	}, nil)
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func matchBody() map[string]any {
	return map[string]any{
		"student": map[string]any{
			"name":                "Asha",
			"skills":              []string{"Python", "SQL"},
			"preferred_locations": []string{"Bangalore"},
			"work_mode":           "office",
		},
		"internships": []map[string]any{
			{"id": "1", "role": "Data Analyst Intern", "location": "Bangalore", "skills_required": "Python, SQL, Excel"},
			{"id": "2", "role": "Graphic Designer", "location": "Mumbai", "skills_required": "Figma, Photoshop"},
		},
	}
}

func TestHealthAndStats(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	taxonomy, ok := body["taxonomy"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, taxonomy["name"])
	assert.Equal(t, false, taxonomy["watching"])

	rec = doJSON(t, h, http.MethodGet, "/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, map[string]any{"enabled": false}, body["rate_limiting"])
	assert.Contains(t, body, "taxonomy")
}

func TestMatchEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doJSON(t, h, http.MethodPost, "/match", matchBody(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Meta    map[string]any   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.EqualValues(t, 2, resp.Meta["candidates"])
	assert.Equal(t, "fallback", resp.Meta["rerank_source"])
	for _, r := range resp.Data {
		for _, key := range []string{"match_score", "match_type", "location_label", "ai_explanation", "score_breakdown", "llm_reranked"} {
			assert.Contains(t, r, key)
		}
		assert.NotContains(t, r, "locationLabel")
		breakdown, ok := r["score_breakdown"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, breakdown, "profile_skill_score")
		assert.Contains(t, breakdown, "location_score")
	}
}

func TestMatchValidation(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name string
		body any
		ct   string
		code string
	}{
		{name: "missing student", body: map[string]any{"internships": []any{}}, code: "INVALID_REQUEST"},
		{name: "bad work preference", body: func() map[string]any {
			b := matchBody()
			b["workPreference"] = "moon"
			return b
		}(), code: "INVALID_REQUEST"},
		{name: "opportunity without role", body: map[string]any{
			"student":     map[string]any{"name": "Asha"},
			"internships": []map[string]any{{"id": "1"}},
		}, code: "INVALID_REQUEST"},
		{name: "wrong content type", body: matchBody(), ct: "text/plain", code: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.ct != "" {
				headers["Content-Type"] = tt.ct
			}
			rec := doJSON(t, h, http.MethodPost, "/match", tt.body, headers)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["requestId"])
		})
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Encode(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

func TestMatchEmbeddingFailure(t *testing.T) {
	settings := match.DefaultSettings()
	matcher, err := match.New(match.Deps{Embedder: failingEmbedder{}, Settings: settings})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.MaxFileSize = 1 << 20
	h := NewServer(cfg, "test", Deps{Matcher: matcher}, nil).Handler()

	rec := doJSON(t, h, http.MethodPost, "/match", matchBody(), nil)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "EMBEDDING_FAILED", body["code"])
}

func TestRequestTooLarge(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.App.MaxFileSize = 64 }).Handler()

	rec := doJSON(t, h, http.MethodPost, "/match", matchBody(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.Server.APIKeys = []string{"secret-key-123"}
	}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/match", matchBody(), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing API key")

	rec = doJSON(t, h, http.MethodPost, "/match", matchBody(), map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/match", matchBody(), map[string]string{"Authorization": "Bearer secret-key-123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// health stays public
	rec = doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimit.Enabled = true
		c.Server.RateLimit.RequestsPerMin = 1
		c.Server.RateLimit.BurstCapacity = 1
		c.Server.RateLimit.ByIP = true
	})
	h := s.Handler()

	rec := doJSON(t, h, http.MethodPost, "/parse-resume", map[string]any{"resumeText": "Python developer"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/parse-resume", map[string]any{"resumeText": "Python developer"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// a different client has its own bucket
	rec = doJSON(t, h, http.MethodPost, "/parse-resume", map[string]any{"resumeText": "Python developer"},
		map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, http.StatusOK, rec.Code)

	stats := s.RateLimiter.GetStats()
	assert.EqualValues(t, 1, stats["rejected_requests"])
	assert.Equal(t, 2, stats["active_limiters"])
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", nil, map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, h, http.MethodGet, "/health", nil, nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	rec = doJSON(t, h, http.MethodGet, "/health", nil, map[string]string{"X-Request-ID": strings.Repeat("x", 200)})
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestParseResumeEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	t.Run("json", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/parse-resume", map[string]any{
			"resumeText": "Bachelor of Technology. 2 years experience with Python and Docker.",
			"skills":     []string{"Figma"},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data struct {
				Skills          []string `json:"skills"`
				Education       string   `json:"education"`
				ExperienceYears int      `json:"experience_years"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Subset(t, resp.Data.Skills, []string{"python", "docker", "figma"})
		assert.Equal(t, "bachelor", resp.Data.Education)
		assert.Equal(t, 2, resp.Data.ExperienceYears)
	})

	t.Run("multipart text upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("resume", "resume.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("Experienced with Docker and SQL"))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("skills", "Excel, Figma"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/parse-resume", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "docker")
		assert.Contains(t, rec.Body.String(), "figma")
	})

	t.Run("bad pdf upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("resume", "resume.pdf")
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 not really"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/parse-resume", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_FORMAT")
	})

	t.Run("missing text", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/parse-resume", map[string]any{"resumeText": ""}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAnalyzeResumeEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := doJSON(t, h, http.MethodPost, "/analyze-resume", map[string]any{"resumeText": "Python"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RESUME_TOO_SHORT", decodeBody(t, rec)["code"])

	resume := "Reach me at asha@example.com. Bachelor of Engineering with 1 year experience building Python and SQL services."
	rec = doJSON(t, h, http.MethodPost, "/analyze-resume", map[string]any{"resumeText": resume}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Email           string   `json:"email"`
			ExtractedSkills []string `json:"extractedSkills"`
			Source          string   `json:"source"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "asha@example.com", resp.Data.Email)
	assert.Equal(t, match.SourceFallback, resp.Data.Source)
	assert.Subset(t, resp.Data.ExtractedSkills, []string{"python", "sql"})
}

func TestCleanDataEndpoint(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.CleanBatchThreshold = 2 })
	h := s.Handler()

	t.Run("small batch is cleaned inline", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/clean-data", map[string]any{
			"items": []map[string]any{
				{"title": "Intern", "location": "BLR, Karnataka"},
				{"title": "Remote intern", "location": nil, "description": "<p>Build <b>APIs</b></p>"},
			},
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "Bangalore", resp.Data[0]["location"])
		assert.Equal(t, "Remote", resp.Data[1]["location"])
		assert.Equal(t, "Build APIs", resp.Data[1]["description"])
	})

	t.Run("large batch is queued", func(t *testing.T) {
		items := make([]map[string]any, 3)
		for i := range items {
			items[i] = map[string]any{"location": "Mumbai"}
		}
		rec := doJSON(t, h, http.MethodPost, "/clean-data", map[string]any{"items": items}, nil)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["jobId"], 36)
		assert.Contains(t, body["message"], "background")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.WaitForJobs(ctx))
	})

	t.Run("items are required", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/clean-data", map[string]any{}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	rec := doJSON(t, h, http.MethodGet, "/match", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeAndShutdown(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = "0"
		c.Server.ShutdownTimeout = 2 * time.Second
	})
	httpServer, err := s.setupHTTPServer()
	require.NoError(t, err)
	assert.Nil(t, httpServer.TLSConfig)

	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, httpServer, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestBuildTLSConfig(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Server.TLS.Mode = "mutual" })
	_, err := s.buildTLSConfig()
	assert.ErrorContains(t, err, "invalid TLS mode")

	s = newTestServer(t, func(c *config.Config) { c.Server.TLS.Mode = "server" })
	_, err = s.buildTLSConfig()
	assert.ErrorContains(t, err, "required")
}
