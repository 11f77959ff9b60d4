package cli

import (
	"fmt"

	"internmatch/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that exposes the matching pipeline.

Available endpoints:
- POST /match: Rank internships for a student
- POST /parse-resume: Extract skills, education and experience from a resume
- POST /analyze-resume: Structured resume analysis (LLM with local fallback)
- POST /clean-data: Normalize scraped listings (large batches run in the background)
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

var serveFlags struct {
	port          string
	host          string
	tlsMode       string
	certFile      string
	keyFile       string
	watchTaxonomy bool
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().BoolVar(&serveFlags.watchTaxonomy, "watch-taxonomy", false, "Reload the taxonomy file when it changes (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = serveFlags.port
	}
	if flags.Changed("host") {
		cfg.Server.Host = serveFlags.host
	}
	if flags.Changed("tls-mode") {
		cfg.Server.TLS.Mode = serveFlags.tlsMode
	}
	if flags.Changed("cert-file") {
		cfg.Server.TLS.CertFile = serveFlags.certFile
	}
	if flags.Changed("key-file") {
		cfg.Server.TLS.KeyFile = serveFlags.keyFile
	}
	if flags.Changed("watch-taxonomy") {
		cfg.Match.WatchTaxonomy = serveFlags.watchTaxonomy
	}

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	rt, err := newRuntime(cfg, logger, runtimeOptions{serve: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := server.NewServer(cfg, Version, server.Deps{
		Matcher:    rt.matcher,
		DeepParser: rt.deepParser,
		AI:         rt.ai,
		Taxonomy:   rt.store,
		Watcher:    rt.watcher,
		Metrics:    rt.obs,
	}, logger)
	return srv.Start(cmd.Context())
}
