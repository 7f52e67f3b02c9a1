package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Xunop/library-tracker/internal/config"
	"github.com/Xunop/library-tracker/internal/log"
	"github.com/Xunop/library-tracker/internal/server"
	"github.com/Xunop/library-tracker/internal/store"
	"github.com/Xunop/library-tracker/internal/store/db"
	"github.com/Xunop/library-tracker/internal/version"
)

var (
	configFile string
	data       string
	dsn        string
	host       string
	port       int

	rootCmd = &cobra.Command{
		Use:          "library-tracker",
		Short:        "library-tracker catalogs the books of a personal library",
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, _ *db.DB, _ *store.Store) error {
				log.Info("Database is up to date", zap.String("version", version.GetCurrentVersion()))
				return nil
			})
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetCurrentVersion())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().StringVar(&data, "data", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "sqlite database file")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "address to listen on")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "port to listen on")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, seedDemoCmd, userCmd, importCmd, exportCmd, versionCmd)
}

// loadOptions reads the config file and environment, then applies the
// command line flags on top.
func loadOptions() (*config.Options, error) {
	opts, err := config.ParseFile(configFile)
	if err != nil {
		return nil, err
	}
	if data != "" {
		opts.Data = data
	}
	if dsn != "" {
		opts.DSN = dsn
	}
	if host != "" {
		opts.Host = host
	}
	if port != 0 {
		opts.Port = port
	}
	if err := opts.Resolve(); err != nil {
		return nil, err
	}
	return opts, nil
}

// withStore opens and migrates the database, then runs fn.
func withStore(ctx context.Context, fn func(ctx context.Context, d *db.DB, s *store.Store) error) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}
	log.Logger = log.NewLogger(opts)
	defer log.Logger.Sync()

	d, err := db.NewDB(opts.DSN)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Migrate(ctx); err != nil {
		log.Error("Error migrating database", zap.Error(err))
		return err
	}

	s := store.NewStore(d.DB)
	if err := s.Ping(); err != nil {
		log.Error("Error pinging database", zap.Error(err))
		return err
	}
	return fn(ctx, d, s)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withStore(ctx, func(ctx context.Context, _ *db.DB, s *store.Store) error {
		srv, err := server.StartServer(ctx, s, config.Opts)
		if err != nil {
			log.Error("Error creating server", zap.Error(err))
			return err
		}

		<-ctx.Done()
		log.Info("Shutting down the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
