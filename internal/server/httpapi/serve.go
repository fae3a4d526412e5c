package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

// Serve runs handler on bind until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, bind string, handler http.Handler, logger logging.Logger) error {
	lis, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	return ServeListener(ctx, lis, handler, logger)
}

func ServeListener(ctx context.Context, lis net.Listener, handler http.Handler, logger logging.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute * 5,
	}
	log := logger.With("server.addr", lis.Addr().String())

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "Starting HTTP server")
		err := server.Serve(lis)
		if errors.Is(err, http.ErrServerClosed) {
			// shutdown called
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "Initiating shutdown process")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "Shutdown completed")
	return <-errc
}
