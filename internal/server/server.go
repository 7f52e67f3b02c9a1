package server // import "github.com/Xunop/library-tracker/internal/server"

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	v1 "github.com/Xunop/library-tracker/internal/api/v1"
	"github.com/Xunop/library-tracker/internal/config"
	"github.com/Xunop/library-tracker/internal/http/response"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/storage"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/version"
)

// StartServer starts the HTTP server in the background.
func StartServer(ctx context.Context, s *store.Store, opts *config.Options) (*http.Server, error) {
	secret, err := SessionSecret(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           setupHandler(s, opts, secret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	startHTTPServer(server)

	return server, nil
}

// SessionSecret prefers the configured secret and otherwise uses the one
// persisted in the database, generating it on first start.
func SessionSecret(ctx context.Context, s *store.Store, opts *config.Options) (string, error) {
	if opts.SessionSecret != "" {
		return opts.SessionSecret, nil
	}
	return s.GetOrCreateSessionSecret(ctx)
}

func startHTTPServer(server *http.Server) {
	go func() {
		log.Info("Starting HTTP server", zap.String("listen_address", server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()
}

func setupHandler(s *store.Store, opts *config.Options, secret string) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ping(); err != nil {
			log.Error("Database health check failed", zap.Error(err))
			builder := response.New(w, r)
			builder.WithStatus(http.StatusInternalServerError)
			builder.WithBody("Database Connection Error")
			builder.Write()
			return
		}
		response.Text(w, r, "ok")
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		response.Text(w, r, version.GetCurrentVersion())
	}).Name("version")

	v1.Server(router, v1.NewHandler(s, storage.NewCoverStorage(opts), opts, secret))

	return router
}
