package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Serve listens on the configured TCP address and blocks until the process
// receives SIGINT/SIGTERM or the listener fails. Shutdown is graceful,
// bounded by Config.ShutdownTimeout.
func (a *App[G, T]) Serve() error {
	ln, err := net.Listen("tcp", a.config.Address)
	if err != nil {
		return err
	}
	return a.serve(ln, "")
}

// ServeTLS is Serve over TLS with the given certificate and key files.
func (a *App[G, T]) ServeTLS(certFile, keyFile string) error {
	ln, err := net.Listen("tcp", a.config.Address)
	if err != nil {
		return err
	}
	return a.serveTLS(ln, certFile, keyFile)
}

// ServeUnix is Serve on a Unix domain socket at path. The socket file is
// removed first so a stale socket from a previous run does not block the
// bind.
func (a *App[G, T]) ServeUnix(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	return a.serve(ln, path)
}

func (a *App[G, T]) serve(ln net.Listener, socketPath string) error {
	a.httpServer = a.newHTTPServer()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- a.httpServer.Serve(ln)
	}()

	return a.wait(errCh, socketPath)
}

func (a *App[G, T]) serveTLS(ln net.Listener, certFile, keyFile string) error {
	a.httpServer = a.newHTTPServer()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", ln.Addr().String(), "tls", true)
		errCh <- a.httpServer.ServeTLS(ln, certFile, keyFile)
	}()

	return a.wait(errCh, "")
}

func (a *App[G, T]) newHTTPServer() *http.Server {
	return &http.Server{
		Handler:           a,
		ReadHeaderTimeout: a.config.ReadHeaderTimeout,
		ReadTimeout:       a.config.ReadTimeout,
		WriteTimeout:      a.config.WriteTimeout,
		IdleTimeout:       a.config.IdleTimeout,
	}
}

func (a *App[G, T]) wait(errCh <-chan error, socketPath string) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-shutdown:
		a.logger.Info("shutting down")
		err := a.Shutdown(context.Background())
		if socketPath != "" {
			_ = os.Remove(socketPath)
		}
		return err
	}
}

// Shutdown gracefully stops the serve loop: the listener closes at once
// and in-flight requests get Config.ShutdownTimeout to finish.
func (a *App[G, T]) Shutdown(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("shutdown error", "error", err)
		return err
	}
	a.logger.Info("server shutdown complete")
	return nil
}
