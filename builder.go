package lmsAuth

import (
	"errors"

	"github.com/MrEthical07/lmsAuth/internal/audit"
	"github.com/MrEthical07/lmsAuth/jwt"
	"github.com/MrEthical07/lmsAuth/password"
	"github.com/MrEthical07/lmsAuth/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dummyPassword is hashed once per engine so that logins for unknown emails
// cost the same bcrypt comparison as a wrong password.
const dummyPassword = "lmsauth-dummy-password"

// Builder wires an [Engine]. Configure it during initialization, then call
// [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	sessions   SessionStore
	tokens     TokenCodec
	principals PrincipalStore
	mailer     Mailer
	media      MediaProvider
	logger     *zap.Logger
	auditSink  AuditSink

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. The value is copied.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the default session cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore injects a session cache and takes precedence over WithRedis.
func (b *Builder) WithSessionStore(store SessionStore) *Builder {
	b.sessions = store
	return b
}

// WithTokenCodec injects a token codec. When set, the JWT secrets in Config
// are not required.
func (b *Builder) WithTokenCodec(codec TokenCodec) *Builder {
	b.tokens = codec
	return b
}

func (b *Builder) WithPrincipalStore(store PrincipalStore) *Builder {
	b.principals = store
	return b
}

func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithMediaProvider enables avatar uploads.
func (b *Builder) WithMediaProvider(m MediaProvider) *Builder {
	b.media = m
	return b
}

// WithLogger sets the logger for best-effort failures. Nil means zap.NewNop.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination. Without one, audit events are
// logged through the engine logger.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.validate(b.tokens == nil); err != nil {
		return nil, err
	}

	if b.principals == nil {
		return nil, errors.New("principal store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	// -------- SESSION STORE --------
	sessions := b.sessions
	if sessions == nil {
		if b.redis == nil {
			return nil, errors.New("redis client or session store required")
		}
		sessions = session.NewStore(b.redis, cfg.Session.RedisPrefix)
	}

	// -------- TOKEN CODEC --------
	tokens := b.tokens
	if tokens == nil {
		codec, err := jwt.NewCodec(jwt.Config{
			AccessSecret:     cloneBytes(cfg.JWT.AccessSecret),
			RefreshSecret:    cloneBytes(cfg.JWT.RefreshSecret),
			ActivationSecret: cloneBytes(cfg.JWT.ActivationSecret),
			AccessTTL:        cfg.JWT.AccessTTL,
			RefreshTTL:       cfg.JWT.RefreshTTL,
			ActivationTTL:    cfg.JWT.ActivationTTL,
			Issuer:           cfg.JWT.Issuer,
			Leeway:           cfg.JWT.Leeway,
		})
		if err != nil {
			return nil, err
		}
		tokens = codec
	}

	// -------- PASSWORD HASHER --------
	hasher, err := password.NewBcrypt(cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := b.auditSink
	if sink == nil {
		sink = NewZapAuditSink(logger)
	}

	engineLogger := logger.Named("lmsauth")
	engine := &Engine{
		config:     cfg,
		sessions:   sessions,
		tokens:     tokens,
		principals: b.principals,
		mailer:     b.mailer,
		media:      b.media,
		hasher:     hasher,
		dummyHash:  dummy,
		logger:     engineLogger,
		metrics:    NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:      cfg.Audit.Enabled,
			BufferSize:   cfg.Audit.BufferSize,
			DropIfFull:   cfg.Audit.DropIfFull,
			DrainTimeout: cfg.Audit.DrainTimeout,
			Logger:       engineLogger.Named("audit"),
		}, sink),
	}
	engine.flows = engine.buildFlows()

	b.built = true

	return engine, nil
}
