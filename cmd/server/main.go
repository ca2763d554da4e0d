// Package main initializes and starts the scheduling API server: config,
// logging, database, spreadsheet adapter, services, background sync timers
// and the HTTP surface.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/otaviobp/agendasync/internal/config"
	"github.com/otaviobp/agendasync/internal/db"
	"github.com/otaviobp/agendasync/internal/logger"
	"github.com/otaviobp/agendasync/internal/repository"
	"github.com/otaviobp/agendasync/internal/scheduler"
	"github.com/otaviobp/agendasync/internal/server/handler/http"
	"github.com/otaviobp/agendasync/internal/service"
	"github.com/otaviobp/agendasync/internal/session"
	"github.com/otaviobp/agendasync/internal/sheets"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer func() { _ = postgresDB.Close() }()

	// Stops the session sweeper and the sync timers on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clienteRepo := repository.NewPostgresClienteRepository(postgresDB)
	usuarioRepo := repository.NewPostgresUsuarioRepository(postgresDB)

	sheetsClient := sheets.New(sheets.Config{
		SpreadsheetID:   options.SpreadsheetID,
		ClienteRange:    options.ClienteRange,
		UsuarioRange:    options.UsuarioRange,
		CredentialsJSON: options.GoogleCredentials,
		SecretFile:      options.SecretFile,
		LocalFile:       options.LocalFile,
		PublicCSV:       options.PublicCSV,
	}, zapLogger)

	var credSource service.CredentialSource
	if options.AuthSource == "local" {
		credSource = &service.LocalCredentialSource{Repo: usuarioRepo}
	} else {
		credSource = &service.SheetsCredentialSource{Sheets: sheetsClient}
	}
	authService := service.NewAuthService(credSource, zapLogger)
	clienteService := service.NewClienteService(clienteRepo, zapLogger)
	syncService := service.NewSyncService(clienteRepo, sheetsClient, zapLogger)

	store := session.NewStore(options.SessionSecret, zapLogger)
	store.IniciarLimpeza(ctx, 10*time.Minute)

	sched := scheduler.New(syncService, zapLogger)
	sched.Start(ctx)

	secure := options.Env == "production"
	authHandler := &http.AuthHandler{Auth: authService, Sessions: store, Secure: secure, Log: zapLogger}
	clienteHandler := &http.ClienteHandler{Service: clienteService, Log: zapLogger}
	syncHandler := &http.SyncHandler{Service: syncService, Sheets: sheetsClient, Log: zapLogger}
	usuarioHandler := &http.UsuarioHandler{Repo: usuarioRepo, Log: zapLogger}

	router := http.NewRouter(authHandler, clienteHandler, syncHandler, usuarioHandler, store, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown error", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}

	sched.Wait()
	zapLogger.Info("server stopped")
}
