package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/api"
	"github.com/MrEthical07/lmsAuth/jobs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	rt, err := loadServices(ctx, configPath)
	if err != nil {
		return err
	}
	defer rt.close()
	log := rt.logger

	if rt.db != nil {
		if err := postgresMigrate(ctx, rt); err != nil {
			return err
		}
	}

	cfg, err := rt.settings.EngineConfig()
	if err != nil {
		return err
	}
	rdb, err := rt.redisClient(ctx)
	if err != nil {
		return err
	}
	mailer, err := rt.mailer()
	if err != nil {
		return err
	}
	mediaProvider, err := rt.mediaProvider(ctx)
	if err != nil {
		return err
	}

	builder := lmsAuth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithPrincipalStore(rt.principals).
		WithMailer(mailer).
		WithLogger(log).
		WithAuditSink(lmsAuth.NewZapAuditSink(log.Named("audit")))
	if mediaProvider != nil {
		builder = builder.WithMediaProvider(mediaProvider)
	}
	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	metricsHandler, stopMetrics, err := rt.metricsExporter(ctx, engine)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), rt.settings.Server.ShutdownTimeout)
		defer cancel()
		if err := stopMetrics(stopCtx); err != nil {
			log.Warn("metrics exporter shutdown failed", zap.Error(err))
		}
	}()

	if rt.settings.Jobs.CleanupEnabled {
		cleaner := jobs.NewNotificationCleaner(rt.notifications, rt.settings.Jobs.NotificationRetention, log)
		cleaner.Start(ctx)
		defer cleaner.Stop()
	}

	server := &http.Server{
		Addr: rt.settings.Server.Addr,
		Handler: api.NewRouter(api.Options{
			Engine:        engine,
			Notifications: rt.notifications,
			Logger:        log,
			Prefix:        rt.settings.Server.APIPrefix,
			Origins:       rt.settings.Server.Origins,
			MaxBodyBytes:  rt.settings.Server.MaxBodyBytes,
			Metrics:       metricsHandler,
		}),
		ReadTimeout:  rt.settings.Server.ReadTimeout,
		WriteTimeout: rt.settings.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.settings.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
