package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/tailor/internal/pkg/clock"
	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/docstore"
	"github.com/shandysiswandi/tailor/internal/pkg/goroutine"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/pkg/storage"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
	"github.com/shandysiswandi/tailor/internal/tailor/inbound"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	docDriverMemory   = "memory"
	docDriverPostgres = "postgres"
	docDriverRedis    = "redis"
	docDriverObject   = "object"
)

func loadConfig() (config.Config, error) {
	if os.Getenv("LOCAL") == "true" {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to load .env", "error", err)
		}
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	return config.NewViper(path)
}

func (a *App) initConfig() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

func newJWT(cfg config.Config, clk clock.Clocker, uuid uid.StringID) (jwt.JWT, error) {
	return jwt.NewHS512(jwt.Config{
		Secret:    []byte(cfg.GetString("jwt.secret")),
		Issuer:    cfg.GetString("jwt.issuer"),
		Audiences: cfg.GetArray("jwt.audiences"),
		TTL:       cfg.GetMinute("jwt.ttl_minutes"),
		Clock:     clk,
		UUID:      uuid,
	})
}

func (a *App) initJWT() {
	defaultJWT, err := newJWT(a.config, a.clock, a.uuid)
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

// initCache connects redis when configured. Without it Gmail deliveries are
// not deduplicated.
func (a *App) initCache() {
	a.idemp = idempotency.Noop{}

	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.NewRedis(rdb, a.config.GetString("redis.idempotency_prefix"))
}

func (a *App) initDocStore() {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("docstore.driver")))

	switch driver {
	case docDriverMemory:
		slog.Warn("document store is in memory, data is lost on restart")
		a.docs = docstore.NewMemory()
	case docDriverPostgres:
		a.initDatabase()
		store, err := docstore.NewPostgres(a.ctx, a.dbConn)
		if err != nil {
			slog.Error("failed to init postgres document store", "error", err)
			os.Exit(1)
		}
		a.docs = store
	case docDriverRedis:
		if a.cacheConn == nil {
			slog.Error("redis document store requires redis.url")
			os.Exit(1)
		}
		a.docs = docstore.NewRedis(a.cacheConn, a.config.GetString("docstore.redis.prefix"))
	case docDriverObject:
		a.initStorage()
		a.docs = docstore.NewObject(a.storage)
	default:
		slog.Error("unknown document store driver", "driver", driver)
		os.Exit(1)
	}
}

func (a *App) initDatabase() {
	config, err := pgxpool.ParseConfig(a.config.GetString("docstore.postgres.dsn"))
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	if n := a.config.GetInt("docstore.postgres.pool.max_conns"); n > 0 {
		config.MaxConns = int32(n) //nolint:gosec // bounded by config
	}
	if n := a.config.GetInt("docstore.postgres.pool.min_conns"); n > 0 {
		config.MinConns = int32(n) //nolint:gosec // bounded by config
	}
	config.MaxConnLifetime = a.config.GetSecond("docstore.postgres.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("docstore.postgres.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("docstore.postgres.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

//nolint:gocognit // it's fine
func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("docstore.storage.driver"))

	var gcsClient *gcs.Client
	if driver == storage.DriverGCS {
		gcsOptions := []option.ClientOption{}
		if a.config.GetBool("docstore.storage.gcs.without_auth") {
			gcsOptions = append(gcsOptions, option.WithoutAuthentication())
		}
		if v := strings.TrimSpace(a.config.GetString("docstore.storage.gcs.credentials_file")); v != "" {
			// #nosec G304 -- path is from trusted config file.
			credsJSON, err := os.ReadFile(v)
			if err != nil {
				slog.Error("failed to read gcs credentials file", "error", err)
				os.Exit(1)
			}
			creds, err := google.CredentialsFromJSON(a.ctx, credsJSON, gcs.ScopeFullControl)
			if err != nil {
				slog.Error("failed to parse gcs credentials file", "error", err)
				os.Exit(1)
			}
			gcsOptions = append(gcsOptions, option.WithCredentials(creds))
		}
		if v := strings.TrimSpace(a.config.GetString("docstore.storage.gcs.endpoint")); v != "" {
			gcsOptions = append(gcsOptions, option.WithEndpoint(v))
		}
		if len(gcsOptions) > 0 {
			client, err := gcs.NewClient(a.ctx, gcsOptions...)
			if err != nil {
				slog.Error("failed to init gcs client", "error", err)
				os.Exit(1)
			}
			gcsClient = client
		}
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		Bucket: strings.TrimSpace(a.config.GetString("docstore.storage.bucket")),
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("docstore.storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("docstore.storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("docstore.storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("docstore.storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("docstore.storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("docstore.storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Client: gcsClient,
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("docstore.storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("docstore.storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("docstore.storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("docstore.storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("docstore.storage.minio.session_token")),
			UseSSL:       a.config.GetBool("docstore.storage.minio.use_ssl"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err)
		os.Exit(1)
	}

	a.storage = stg
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	var pubsubOptions []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		// Emulator
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v), option.WithoutAuthentication())
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			Config: func() *nsq.Config {
				cfg := nsq.NewConfig()
				cfg.DialTimeout = a.config.GetSecond("messaging.nsq.dial_timeout_seconds")
				cfg.ReadTimeout = a.config.GetSecond("messaging.nsq.read_timeout_seconds")
				cfg.WriteTimeout = a.config.GetSecond("messaging.nsq.write_timeout_seconds")
				return cfg
			}(),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout: time.Duration(a.config.GetInt("messaging.kafka.batch_timeout_ms")) * time.Millisecond,
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// newEnforcer loads "role:obj:act" policies and "role:parent" groupings.
func newEnforcer(policies, roles []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	rules := make([][]string, 0, len(policies))
	for _, p := range policies {
		parts := strings.Split(p, ":")
		if len(parts) != 3 {
			slog.Warn("skipping malformed casbin policy", "policy", p)
			continue
		}
		rules = append(rules, parts)
	}
	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, err
		}
	}

	for _, r := range roles {
		child, parent, ok := strings.Cut(r, ":")
		if !ok {
			slog.Warn("skipping malformed casbin role", "role", r)
			continue
		}
		if _, err := e.AddGroupingPolicy(child, parent); err != nil {
			return nil, err
		}
	}

	return e, nil
}

func (a *App) initCasbin() {
	e, err := newEnforcer(a.config.GetArray("tailor.policies"), a.config.GetArray("tailor.roles"))
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
		Public:     append([]string{"GET /health"}, inbound.PublicRoutes...),
	})
	a.router.GET("/health", func(*router.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors.origins"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "DocStore",
			fn: func(context.Context) error {
				return a.docs.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				if a.storage == nil {
					return nil
				}
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
