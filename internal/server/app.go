// Package server initializes and runs the vault server. It opens the
// database, runs migrations, selects a blob backend, builds the crypto
// engine from the configured master key, and serves the HTTP API with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"docvault/internal/logging"
	"docvault/internal/server/blob"
	"docvault/internal/server/config"
	"docvault/internal/server/crypto"
	"docvault/internal/server/httpapi"
	"docvault/internal/server/repositories/repomanager"
	"docvault/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *httpapi.Handler
	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	masterKey, err := hex.DecodeString(cfg.MasterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	engine, err := crypto.NewEngine(masterKey)
	if err != nil {
		return nil, fmt.Errorf("crypto init error: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	app := &App{config: cfg, logger: logger, db: db}
	app.closers = append(app.closers, db.Close)

	blobs, err := app.newBlobStore(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	userService := services.NewUserService(db, rm, cfg, logger)
	documentService := services.NewDocumentService(db, rm, blobs, engine, logger)
	folderService := services.NewFolderService(db, rm)
	auditService := services.NewAuditService(db, rm)

	app.handler = httpapi.NewHandler(userService, documentService, folderService,
		auditService, logger, []byte(cfg.SecretKey))

	return app, nil
}

// newBlobStore picks the ciphertext store implied by the configuration.
func (app *App) newBlobStore(ctx context.Context) (blob.Store, error) {
	switch app.config.BlobBackend {
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Options{
			Region:       app.config.S3Region,
			AccessKey:    app.config.S3RootUser,
			SecretKey:    app.config.S3RootPassword,
			Bucket:       app.config.S3Bucket,
			BaseEndpoint: app.config.S3BaseEndpoint,
		})
	case "badger":
		store, err := blob.NewBadgerStore(app.config.BadgerPath)
		if err != nil {
			return nil, fmt.Errorf("badger init error: %w", err)
		}
		app.closers = append(app.closers, store.Close)
		return store, nil
	case "memory":
		return blob.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", app.config.BlobBackend)
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "err", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close error", "err", err)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
}
