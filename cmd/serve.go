package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dkoval/jobscout/internal/api"
	"github.com/dkoval/jobscout/internal/logger"
	"github.com/dkoval/jobscout/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search pipeline and application tracker over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	// The server profile is optional. Requests may carry their own.
	prof, err := resolveProfile(config)
	if err != nil {
		logger.Warn("no default profile", zap.Error(err))
		prof = nil
	}

	a, err := buildAgent(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the search pipeline", zap.Error(err))
	}

	var st *store.Store
	if config.Storage != nil && config.Storage.DataDir != "" {
		st, err = store.Open(config.Storage.DataDir)
		if err != nil {
			logger.Fatal("opening store", zap.Error(err))
		}
		defer st.Close()
	}

	addr := defaultAddr
	if config.Server != nil && config.Server.Addr != "" {
		addr = config.Server.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.New(a, st, prof, logger).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
