package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ordertrail/ordertrail/internal/classification"
	"github.com/ordertrail/ordertrail/internal/llm"
	"github.com/ordertrail/ordertrail/internal/pipeline"
	"github.com/ordertrail/ordertrail/internal/server"
	"github.com/ordertrail/ordertrail/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and API server",
		Long: `Start the HTTP server: the email webhook, the order CRUD API,
settings, and the stats endpoint. Runs database migrations on startup.`,
		RunE: runServe,
	}

	cmd.Flags().String("port", "", "listen port (default 3001)")
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	dbPath := databasePath()
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	oracle, err := llm.NewOracle(oracleConfig(), classification.NewDefaultDetector(), func(ctx context.Context) []string {
		return store.GetStringList(ctx, storage.SettingVendors, storage.DefaultVendors)
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create oracle client: %w", err)
	}
	defer oracle.Close()

	p := pipeline.New(oracle, store, logger)
	handler := server.NewHandler(p, store, logger)

	cfg := serverConfig()
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.New(handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr, "database", dbPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

func oracleConfig() llm.Config {
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.rate_limit", 60)
	viper.SetDefault("llm.cache_ttl", 15*time.Minute)

	return llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Endpoint:    viper.GetString("llm.endpoint"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		Timeout:     viper.GetDuration("llm.timeout"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
	}
}

func serverConfig() server.Config {
	cfg := server.DefaultConfig()
	if host := viper.GetString("server.host"); host != "" {
		cfg.Host = host
	}
	if port := viper.GetString("server.port"); port != "" {
		cfg.Port = port
	}
	return cfg
}
