package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Demonism0/blog-api/config"
)

type Server struct {
	server          *http.Server
	shutDownTimeout time.Duration
	logger          *slog.Logger
}

func New(conf config.HTTPServer, handler http.Handler, logger *slog.Logger) *Server {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  conf.ReadTimeout,
		WriteTimeout: conf.WriteTimeout,
		Addr:         fmt.Sprintf("%v:%v", conf.BindAddress, conf.BindPort),
	}

	s := &Server{
		server:          srv,
		shutDownTimeout: conf.ShutdownTimeout,
		logger:          logger,
	}
	return s
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("[HTTPSERVER] listening", "addr", s.server.Addr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		err := s.server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("[HTTPSERVER] http server error", "error", err)
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("[SHUTDOWN] http server shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutDownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
