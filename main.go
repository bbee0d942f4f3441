package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/danielhkuo/pollbooth/accounts"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/auth"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/docstore"
	"github.com/danielhkuo/pollbooth/ledger"
	"github.com/danielhkuo/pollbooth/metrics"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/repo"
	"github.com/danielhkuo/pollbooth/router"
)

func main() {
	// A missing .env is fine; flags and the environment still apply
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx := context.Background()

	var app *firebase.App
	if cfg.UsesFirebase() {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			slog.Error("firebase initialization failed", "error", err)
			os.Exit(1)
		}
	}

	store, err := openStore(ctx, cfg, app)
	if err != nil {
		slog.Error("document store unavailable", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Document store ready", "type", cfg.DatabaseType)

	authn, err := newAuthenticator(ctx, cfg, app)
	if err != nil {
		slog.Error("identity provider unavailable", "provider", cfg.IdentityProvider, "error", err)
		os.Exit(1)
	}

	r := repo.New(store)
	ms := metrics.NewMetricService()
	auditLog := audit.New(r, time.Now)
	l := ledger.New(r,
		ledger.WithRetry(cfg.RetryAttempts, cfg.RetryDelay),
		ledger.WithMetrics(ms),
		ledger.WithAudit(auditLog))

	// Create router
	mux := router.NewRouter(router.Services{
		Ledger:   l,
		Accounts: accounts.New(r, auditLog, time.Now, accounts.WithAdminEmails(cfg.AdminEmails)),
		Audit:    auditLog,
		Authn:    authn,
		Metrics:  ms,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigin)(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func newFirebaseApp(ctx context.Context, cfg cliparse.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}
	return firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
}

func openStore(ctx context.Context, cfg cliparse.Config, app *firebase.App) (docstore.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.StoreMemory:
		return docstore.NewMemoryStore(), nil
	case cliparse.StoreSQLite, cliparse.StorePostgres:
		return docstore.OpenSQLStore(cfg.DatabaseType, cfg.DatabaseURL)
	case cliparse.StoreFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "firestore client")
		}
		return docstore.NewFirestoreStore(client), nil
	case cliparse.StoreMongo:
		return docstore.OpenMongoStore(cfg.DatabaseURL, cfg.MongoDatabase)
	default:
		return nil, errors.Errorf("unknown database type %q", cfg.DatabaseType)
	}
}

func newAuthenticator(ctx context.Context, cfg cliparse.Config, app *firebase.App) (auth.Authenticator, error) {
	if cfg.IdentityProvider != cliparse.IdentityFirebase {
		return auth.NewTokenAuthenticator(cfg.SessionSalt), nil
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "firebase auth client")
	}
	return auth.NewFirebaseAuthenticator(client), nil
}
