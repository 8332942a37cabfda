package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/wizardry/internal/config"
	"github.com/dfryer1193/wizardry/internal/middleware"
	"github.com/dfryer1193/wizardry/internal/rest"
	"github.com/dfryer1193/wizardry/wizard/application"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.Addr = addr
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: $WIZARDRY_ADDR or :3000)")
	return cmd
}

func serve(cfg *config.Config) error {
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	naming, err := application.NamingByName(cfg.Naming)
	if err != nil {
		return err
	}

	service := application.NewWizardService(b.repo, b.store, application.ServiceConfig{
		DefaultExtension: cfg.DefaultExt,
		Naming:           naming,
		Observer:         application.NewLogObserver(log.Logger),
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, rest.NewWizardHandler(service, cfg.MaxUploadBytes), cfg.FilesDir)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("files", cfg.FilesDir).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
