package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace/internal/app"
	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/config"
	"github.com/veritrace/veritrace/internal/database"
	"github.com/veritrace/veritrace/internal/health"
	"github.com/veritrace/veritrace/internal/http/handler"
	"github.com/veritrace/veritrace/internal/http/middleware"
	"github.com/veritrace/veritrace/internal/http/router"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
	"github.com/veritrace/veritrace/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideChainGateway,
	provideOwnerCacheStore,
	provideStorageService,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewProductRepository,
	repository.NewUserRepository,
)

var ServiceSet = wire.NewSet(
	service.NewProductWorkflowService,
	service.NewPaymentWorkflowService,
	service.NewWalletRegistryService,
	wire.Bind(new(service.ProductWorkflow), new(*service.ProductWorkflowService)),
	wire.Bind(new(service.PaymentWorkflow), new(*service.PaymentWorkflowService)),
	wire.Bind(new(service.WalletRegistry), new(*service.WalletRegistryService)),
)

var HTTPSet = wire.NewSet(
	handler.NewProductHandler,
	handler.NewPaymentHandler,
	handler.NewWalletHandler,
	provideGlobalRateLimiter,
	provideMintRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideChainGateway(cfg *config.Config) (chain.Gateway, error) {
	return chain.NewEthereumGateway(cfg)
}

// provideOwnerCacheStore picks the owner-cache backend: redis when the redis
// client is wired, otherwise an in-process cache, or no cache at all when the
// TTL is zero.
func provideOwnerCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.OwnerCacheStore {
	if cfg.OwnerCacheTTL <= 0 {
		return service.NewNoopOwnerCacheStore()
	}
	if redisClient != nil {
		return service.NewRedisOwnerCacheStore(redisClient, "veritrace:owner")
	}
	return service.NewInMemoryOwnerCacheStore()
}

func provideStorageService(cfg *config.Config) (service.StorageService, error) {
	if !cfg.StorageEnabled {
		return service.NewNoopStorageService(), nil
	}
	return service.NewMinIOStorageService(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

// provideMintRateLimiter fails closed: when the limiter backend is down it is
// safer to refuse mints than to let a burst of on-chain transactions through.
func provideMintRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.MintRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":mint")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.MintRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"mint",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.MintRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	productHandler *handler.ProductHandler,
	paymentHandler *handler.PaymentHandler,
	walletHandler *handler.WalletHandler,
	globalRateLimiter router.GlobalRateLimiterFunc,
	mintRateLimiter router.MintRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		ProductHandler:    productHandler,
		PaymentHandler:    paymentHandler,
		WalletHandler:     walletHandler,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		MintRateLimitRPM:  cfg.MintRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		MintRateLimiter:   mintRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, gateway chain.Gateway) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 3)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RateLimitRedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	if c := health.NewChainChecker(gateway); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
