package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gupshup-gateway/internal/api"
	"gupshup-gateway/internal/config"
	"gupshup-gateway/internal/database"
	"gupshup-gateway/internal/logger"
	"gupshup-gateway/internal/webhook"
	"gupshup-gateway/internal/ws"
	"gupshup-gateway/pkg/gupshup"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.LoadConfig()

	appLog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}
	if err := cfg.Validate(); err != nil {
		appLog.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, appLog); err != nil {
		appLog.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, appLog zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(cfg, appLog)
	if err != nil {
		return err
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	clientLog := appLog.With().Str("component", "gupshup").Logger()

	sender, err := gupshup.NewSender(cfg.Source, cfg.APIKey,
		gupshup.WithSourceName(cfg.SourceName),
		gupshup.WithHTTPClient(httpClient),
		gupshup.WithLogger(clientLog),
	)
	if err != nil {
		return err
	}
	partner, err := gupshup.NewPartnerClient(cfg.PartnerEmail, cfg.PartnerPassword,
		gupshup.WithHTTPClient(httpClient),
		gupshup.WithLogger(clientLog),
	)
	if err != nil {
		return err
	}

	hub := ws.NewHub(appLog)
	go hub.Run(ctx)

	if !logger.IsDevelopment(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestID(), api.RequestLogger(appLog), api.CORS())

	webhookHandler := webhook.NewHandler(store, hub, appLog)
	r.POST("/webhook", webhookHandler.HandleEvent)
	r.GET("/ws", gin.WrapF(hub.ServeWs))
	r.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": hub.ClientCount()})
	})

	api.RegisterRoutes(r.Group("/api"),
		api.NewMessageHandler(sender, store, hub),
		api.NewContactHandler(store),
		api.NewPartnerHandler(partner, store, hub),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info().Str("addr", srv.Addr).Str("source", sender.Source()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
