// Package server runs the HTTP inspection endpoint of a nodeflow session.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-nodeflow/pkg/logging"
)

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server         *http.Server
	logger         logging.Logger
	shutdownCh     chan struct{}
	shutdownOnce   sync.Once
	configReloadFn ConfigReloadFunc
	configMu       sync.RWMutex
}

// NewGracefulServer creates a new graceful HTTP server. A zero readTimeout
// keeps the default of 30s.
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger, readTimeout time.Duration) *GracefulServer {
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    readTimeout,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger:     logger.With(logging.Component("http")),
		shutdownCh: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until Shutdown.
func (gs *GracefulServer) Start() error {
	l, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(l)
}

// Serve serves on l until Shutdown.
func (gs *GracefulServer) Serve(l net.Listener) error {
	gs.logger.Info("starting HTTP server", logging.String("addr", l.Addr().String()))
	if err := gs.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))

		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.logger.Error("error during shutdown", logging.Error(shutdownErr))
		} else {
			gs.logger.Info("server shutdown complete")
		}
	})
	return err
}

// WatchSignals reloads configuration on SIGHUP and shuts down on SIGINT or
// SIGTERM. It returns after shutdown or when ctx is done.
func (gs *GracefulServer) WatchSignals(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-gs.shutdownCh:
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				gs.logger.Info("received SIGHUP, reloading configuration")
				_ = gs.ReloadConfig()
			default:
				gs.logger.Info("received signal, shutting down", logging.String("signal", sig.String()))
				_ = gs.Shutdown(30 * time.Second)
				return
			}
		}
	}
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("configuration reload complete")
	return nil
}
