package observability

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"

	"internmatch/internal/config"
)

// PrometheusSettings holds Prometheus-specific configuration. An empty Port
// serves the endpoint on the API server instead of a dedicated listener.
type PrometheusSettings struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// newPrometheusReader creates an OTel reader backed by a private registry and
// the handler that exposes it. The registry also carries the Go runtime and
// process collectors.
func newPrometheusReader() (metric.Reader, http.Handler, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return exporter, handler, nil
}

// startPrometheusServer serves handler on a dedicated port and returns the
// shutdown function for it.
func startPrometheusServer(handler http.Handler, settings PrometheusSettings) func(context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(settings.Endpoint, handler)

	addr := ":" + settings.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting Prometheus metrics server on http://localhost%s%s", addr, settings.Endpoint)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Prometheus server error: %v", err)
		}
	}()

	return server.Shutdown
}

// PrometheusSettingsFromConfig extracts Prometheus settings from the config
func PrometheusSettingsFromConfig(cfg *config.Config) PrometheusSettings {
	if cfg != nil {
		endpoint := cfg.Observability.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		return PrometheusSettings{
			Enabled:  cfg.Observability.Prometheus.Enabled,
			Endpoint: endpoint,
			Port:     cfg.Observability.Prometheus.Port,
		}
	}

	return PrometheusSettings{
		Enabled:  true,
		Endpoint: "/metrics",
		Port:     "9090",
	}
}
