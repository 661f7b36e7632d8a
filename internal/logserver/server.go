package logserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Tiliavir/adolog/internal/logger"
)

type Server struct {
	ListenAddr string
	Handler    http.Handler
	log        logger.Logger
}

func NewServer(addr string, store Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithGroup("logserver")
	return &Server{
		ListenAddr: addr,
		Handler:    NewRouter(store, log),
		log:        log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.log.Error("HTTP server shutdown timeout exceeded, forcing shutdown")
		}
		s.log.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	s.log.Info("starting server", "addr", ln.Addr().String())
	err := httpServer.Serve(ln)
	srvCtxCancel()
	<-idleConnsClosed

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
