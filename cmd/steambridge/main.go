package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dropDatabas3/steambridge/internal/config"
	"github.com/dropDatabas3/steambridge/internal/http/server"
	"github.com/dropDatabas3/steambridge/internal/observability/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Seteadas por ldflags: -X main.version=... -X main.commit=...
var (
	version = "dev"
	commit  = "none"
)

func main() {
	configPath := envOr("CONFIG_PATH", "")

	root := &cobra.Command{
		Use:           "steambridge",
		Short:         "Bridge Steam OpenID 2.0 -> OAuth2 authorization code",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env es opcional
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Archivo YAML de configuración (env CONFIG_PATH)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Valida la configuración e imprime qué settings faltan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(cfg.Health(), "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return cfg.Validate()
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "steambridge %s (%s)\n", version, commit)
		},
	}

	root.AddCommand(serveCmd, checkCmd, versionCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	env := "dev"
	if cfg.IsProd() {
		env = "prod"
	}
	logger.Init(logger.Config{Env: env, Level: cfg.Log.Level, ServiceName: "steambridge", Version: version})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	app, err := server.Build(cfg, server.Options{Version: version})
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	srv := server.NewHTTPServer(cfg, app.Handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	app.Store.Clear()
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
