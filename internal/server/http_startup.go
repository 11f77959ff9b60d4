package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Start serves until ctx is cancelled or the listener fails, then shuts
// down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer, err := s.setupHTTPServer()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpServer.Addr, err)
	}

	return s.Serve(ctx, httpServer, listener)
}

// Serve runs httpServer on an existing listener. Background jobs get a
// context that outlives requests and ends at shutdown.
func (s *Server) Serve(ctx context.Context, httpServer *http.Server, listener net.Listener) error {
	bgCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJobs()
	s.bgCtx = bgCtx

	if s.deps.Watcher != nil {
		if err := s.deps.Watcher.Start(); err != nil {
			s.Logger.LogError(err, "Failed to start taxonomy watcher")
		}
	}

	s.displayServerInfo(httpServer)

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", listener.Addr().String(),
			"tls_enabled", httpServer.TLSConfig != nil)

		var err error
		if httpServer.TLSConfig != nil {
			// certificates are already loaded into TLSConfig
			err = httpServer.ServeTLS(listener, "", "")
		} else {
			err = httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		s.releaseResources()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		err := s.performGracefulShutdown(httpServer)
		cancelJobs()
		return err
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() (*http.Server, error) {
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return httpServer, nil
}

// performGracefulShutdown drains connections, then waits for background
// cleaning jobs within the same deadline
func (s *Server) performGracefulShutdown(server *http.Server) error {
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		_ = server.Close()
	}

	if err := s.WaitForJobs(shutdownCtx); err != nil {
		s.Logger.Warn("Abandoning background jobs", "error", err.Error())
	}

	s.releaseResources()
	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// releaseResources stops the taxonomy watcher and the rate limiter
func (s *Server) releaseResources() {
	if s.deps.Watcher != nil && s.deps.Watcher.IsRunning() {
		if err := s.deps.Watcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop taxonomy watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
