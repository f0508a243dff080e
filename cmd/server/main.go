package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forget-me-not/internal/config"
	"forget-me-not/internal/handler"
	"forget-me-not/internal/repository"
	"forget-me-not/internal/service"
	"forget-me-not/internal/view"
	"forget-me-not/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

type repositories struct {
	notes    repository.NoteRepository
	users    repository.UserRepository
	sessions repository.SessionRepository
	close    func() error
}

func openCouchDB(ctx context.Context, cfg *config.Config) (*repositories, error) {
	couchURL := &url.URL{
		Scheme: "http",
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Host:   fmt.Sprintf("%s:%s", cfg.Database.Host, cfg.Database.Port),
	}

	client, err := kivik.New("couch", couchURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	if err := repository.SetupCouchDB(ctx, client, cfg.Database.Name); err != nil {
		client.Close()
		return nil, err
	}

	slog.Info("connected to CouchDB", "host", cfg.Database.Host, "port", cfg.Database.Port, "db", cfg.Database.Name)

	return &repositories{
		notes:    repository.NewNoteRepository(client, cfg.Database.Name),
		users:    repository.NewUserRepository(client, cfg.Database.Name),
		sessions: repository.NewSessionRepository(client, cfg.Database.Name),
		close:    client.Close,
	}, nil
}

func openSQLite(cfg *config.Config) (*repositories, error) {
	db, err := repository.OpenSQLite(cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}

	slog.Info("opened SQLite database", "path", cfg.Database.SQLitePath)

	return &repositories{
		notes:    repository.NewSQLiteNoteRepository(db),
		users:    repository.NewSQLiteUserRepository(db),
		sessions: repository.NewSQLiteSessionRepository(db),
		close:    db.Close,
	}, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos *repositories
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		repos, err = openSQLite(cfg)
	default:
		repos, err = openCouchDB(ctx, cfg)
	}
	if err != nil {
		return err
	}
	defer repos.close()

	sessionRepo := repos.sessions
	if cfg.Session.Store == config.StoreMemory {
		sessionRepo = repository.NewMemorySessionRepository()
	}

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run(ctx)

	sessionService := service.NewSessionService(
		sessionRepo,
		cfg.Session.Secret,
		cfg.Session.CookieName,
		cfg.Session.TTL,
		cfg.Server.Production(),
	)
	go sessionService.RunSweeper(ctx, cfg.Session.SweepInterval)

	userService := service.NewUserService(repos.users)
	authService := service.NewAuthService(repos.users)
	noteService := service.NewNoteService(repos.notes, wsManager)

	views, err := view.NewTemplateRenderer()
	if err != nil {
		return err
	}

	responder := handler.NewResponder(views, sessionService, logger)
	handlers := &handler.Handlers{
		Responder: responder,
		Pages:     handler.NewPageHandler(responder),
		Notes:     handler.NewNoteHandler(responder, noteService),
		Users:     handler.NewUserHandler(responder, authService, sessionService),
		WebSocket: handler.NewWebSocketHandler(wsManager),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(handlers, sessionService, userService, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting forget-me-not",
			"addr", srv.Addr,
			"env", cfg.Server.Env,
			"db", cfg.Database.Driver,
			"sessions", cfg.Session.Store,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
