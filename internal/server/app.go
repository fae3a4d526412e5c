// Package server wires the todokeeper server together: logging, storage,
// services, the HTTP API and the gRPC health endpoint, and runs them until
// a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/server/throttle"

	gs "github.com/dmitrijs2005/todokeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	throttle    *throttle.LoginThrottle
	userService *services.UserService
	todoService *services.TodoService
}

func openRepositories(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	if dsn == config.MemoryDSN {
		return memory.NewManager(), nil
	}

	rm, err := repomanager.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(c.Logger, os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewHasher(c.PasswordHasher)
	if err != nil {
		return nil, err
	}

	rm, err := openRepositories(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	lim, err := throttle.New(ctx, c.LoginMaxAttempts, c.LoginWindow)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("throttle init error: %w", err)
	}

	codec := auth.NewCodec([]byte(c.SecretKey))

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		throttle:    lim,
		userService: services.NewUserService(rm, codec, hasher, lim, logger),
		todoService: services.NewTodoService(rm, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) handler() http.Handler {
	return httpapi.New(httpapi.Options{
		Accounts:            app.userService,
		Todos:               app.todoService,
		Health:              app.repomanager,
		Logger:              app.logger,
		AllowAnonymousTodos: app.config.AllowAnonymousTodos,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := httpapi.Serve(ctx, app.config.EndpointAddrHTTP, app.handler(), app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repomanager, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases storage. It returns the first server error, if any.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.startHTTPServer(ctx, cancelFunc); err != nil {
			record(err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.startGRPCServer(ctx, cancelFunc); err != nil {
			record(err)
		}
	}()

	wg.Wait()

	_ = app.throttle.Close()
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")

	return firstErr
}
