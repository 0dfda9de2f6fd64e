package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/config"
	"github.com/MrEthical07/lmsAuth/logger"
	"github.com/MrEthical07/lmsAuth/mail"
	"github.com/MrEthical07/lmsAuth/media"
	otelexport "github.com/MrEthical07/lmsAuth/metrics/export/otel"
	"github.com/MrEthical07/lmsAuth/metrics/export/prometheus"
	"github.com/MrEthical07/lmsAuth/store"
	"github.com/MrEthical07/lmsAuth/store/memory"
	"github.com/MrEthical07/lmsAuth/store/postgres"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// services holds every long-lived client opened for a command. close releases
// them in reverse order of creation.
type services struct {
	settings      config.Settings
	logger        *zap.Logger
	db            *sql.DB
	principals    lmsAuth.PrincipalStore
	notifications store.NotificationStore
	closers       []io.Closer
}

func (rt *services) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.logger.Warn("close failed", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

func loadServices(ctx context.Context, configPath string) (*services, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(settings.Log.Level, settings.Log.Environment)
	if err != nil {
		return nil, err
	}

	rt := &services{settings: settings, logger: log}
	if settings.Postgres.DSN == "" {
		log.Warn("postgres.dsn not set, using in-memory stores")
		rt.principals = memory.NewPrincipals()
		rt.notifications = memory.NewNotifications()
		return rt, nil
	}

	db, err := postgres.Open(ctx, settings.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.closers = append(rt.closers, db)
	rt.principals = postgres.NewPrincipals(db)
	rt.notifications = postgres.NewNotifications(db)
	return rt, nil
}

func (rt *services) redisClient(ctx context.Context) (redis.UniversalClient, error) {
	rs := rt.settings.Redis
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    rs.Addrs,
		Password: rs.Password,
		DB:       rs.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	rt.closers = append(rt.closers, client)
	return client, nil
}

func (rt *services) mailer() (lmsAuth.Mailer, error) {
	ms := rt.settings.Mail
	switch ms.Transport {
	case "smtp":
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     ms.Host,
			Port:     ms.Port,
			Username: ms.Username,
			Password: ms.Password,
			From:     ms.From,
		}, rt.logger), nil
	case "kafka":
		producer, err := mail.NewKafkaProducer(rt.settings.Kafka.Brokers)
		if err != nil {
			return nil, err
		}
		m := mail.NewKafkaMailer(producer, rt.settings.Kafka.ActivationTopic, rt.logger)
		rt.closers = append(rt.closers, m)
		return m, nil
	case "log":
		rt.logger.Warn("mail.transport is log, activation codes are written to the log")
		return mail.NewLogMailer(rt.logger), nil
	default:
		return nil, fmt.Errorf("unknown mail.transport %q", ms.Transport)
	}
}

// mediaProvider returns nil when no bucket is configured; avatar updates then
// fail with ErrEngineNotReady.
func (rt *services) mediaProvider(ctx context.Context) (lmsAuth.MediaProvider, error) {
	s := rt.settings.S3
	if s.Bucket == "" {
		rt.logger.Warn("s3.bucket not set, avatar uploads disabled")
		return nil, nil
	}
	provider, err := media.New(ctx, media.Config{
		Region:       s.Region,
		BaseEndpoint: s.BaseEndpoint,
		AccessKey:    s.AccessKey,
		SecretKey:    s.SecretKey,
		Bucket:       s.Bucket,
		PublicURL:    s.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// metricsExporter publishes source according to metrics.exporter. The handler
// is nil when metrics are pushed rather than scraped; stop is always callable.
func (rt *services) metricsExporter(ctx context.Context, source prometheus.MetricsSource) (http.Handler, func(context.Context) error, error) {
	ms := rt.settings.Metrics
	switch ms.Exporter {
	case config.ExporterPrometheus:
		return prometheus.Handler(source), func(context.Context) error { return nil }, nil
	case config.ExporterOTel:
		pipeline, err := otelexport.Start(ctx, otelexport.PipelineConfig{
			ServiceName: ms.ServiceName,
			Endpoint:    ms.OTLPEndpoint,
			Insecure:    ms.OTLPInsecure,
			Interval:    ms.Interval,
		}, source)
		if err != nil {
			return nil, nil, err
		}
		rt.logger.Info("pushing metrics over otlp",
			zap.String("endpoint", ms.OTLPEndpoint),
			zap.Duration("interval", ms.Interval),
		)
		return nil, pipeline.Shutdown, nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics.exporter %q", ms.Exporter)
	}
}
