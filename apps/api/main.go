package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	authhandler "github.com/academia-hub/academia-backend/domains/auth/be/handler"
	authrepo "github.com/academia-hub/academia-backend/domains/auth/be/repo"
	authservice "github.com/academia-hub/academia-backend/domains/auth/be/service"
	schoolshandler "github.com/academia-hub/academia-backend/domains/schools/be/handler"
	schoolsrepo "github.com/academia-hub/academia-backend/domains/schools/be/repo"
	schoolsservice "github.com/academia-hub/academia-backend/domains/schools/be/service"
	studentshandler "github.com/academia-hub/academia-backend/domains/students/be/handler"
	studentsrepo "github.com/academia-hub/academia-backend/domains/students/be/repo"
	studentsservice "github.com/academia-hub/academia-backend/domains/students/be/service"
	usershandler "github.com/academia-hub/academia-backend/domains/users/be/handler"
	usersrepo "github.com/academia-hub/academia-backend/domains/users/be/repo"
	usersservice "github.com/academia-hub/academia-backend/domains/users/be/service"
	platformauth "github.com/academia-hub/academia-backend/platform/go/auth"
	"github.com/academia-hub/academia-backend/platform/go/gate"
	platformlogging "github.com/academia-hub/academia-backend/platform/go/logging"
	platformmiddleware "github.com/academia-hub/academia-backend/platform/go/middleware"
	"github.com/academia-hub/academia-backend/platform/go/persistence"
	"github.com/academia-hub/academia-backend/platform/go/ratelimit"
	"github.com/academia-hub/academia-backend/platform/go/tenant"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	JWTRefresh      string        `env:"JWT_REFRESH_SECRET,required"`
	// RedisAddr switches rate limiting to a shared Redis counter store when
	// set; empty keeps the per-process in-memory store.
	RedisAddr      string        `env:"REDIS_ADDR"`
	LookupTimeout  time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"2s"`
	SchoolCacheTTL time.Duration `env:"SCHOOL_CACHE_TTL" envDefault:"1m"`
	SchoolCacheMax int64         `env:"SCHOOL_CACHE_MAX" envDefault:"10000"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	schoolStore, err := persistence.NewSchoolStore(ctx, pool)
	if err != nil {
		logger.Fatal("init school store", zap.Error(err))
	}
	userStore, err := persistence.NewUserStore(ctx, pool)
	if err != nil {
		logger.Fatal("init user store", zap.Error(err))
	}
	tokenStore, err := persistence.NewRefreshTokenStore(ctx, pool)
	if err != nil {
		logger.Fatal("init refresh token store", zap.Error(err))
	}
	studentStore, err := persistence.NewStudentStore(ctx, pool)
	if err != nil {
		logger.Fatal("init student store", zap.Error(err))
	}

	resolver, err := tenant.NewCachedResolver(schoolStore, cfg.SchoolCacheMax, cfg.SchoolCacheTTL)
	if err != nil {
		logger.Fatal("init tenant resolver cache", zap.Error(err))
	}
	defer resolver.Close()

	tokens, err := platformauth.NewTokens([]byte(cfg.JWTSecret), []byte(cfg.JWTRefresh))
	if err != nil {
		logger.Fatal("init token verifier", zap.Error(err))
	}

	var counterStore ratelimit.CounterStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("ping redis", zap.Error(err))
		}
		counterStore = ratelimit.NewRedisStore(client)
		logger.Info("rate limiting via redis", zap.String("addr", cfg.RedisAddr))
	} else {
		memStore := ratelimit.NewMemoryStore()
		stopCleanup := memStore.StartCleanup(5*time.Minute, time.Hour)
		defer stopCleanup()
		counterStore = memStore
	}
	limiter := ratelimit.NewLimiter(counterStore, ratelimit.DefaultClasses())

	classifier := gate.NewClassifier([]gate.RouteClassification{
		{
			Name:           "auth",
			PathPrefix:     "/api/auth",
			RequiresTenant: true,
			RateClass:      ratelimit.ClassAuth,
		},
		{
			Name:         "platform-admin",
			PathPrefix:   "/api/admin/schools",
			RequiresAuth: true,
			AllowedRoles: []platformauth.Role{platformauth.RoleSuperAdmin},
			RateClass:    ratelimit.ClassGeneral,
		},
		{
			Name:           "users-admin",
			PathPrefix:     "/api/users",
			RequiresTenant: true,
			RequiresAuth:   true,
			AllowedRoles:   []platformauth.Role{platformauth.RoleSuperAdmin, platformauth.RoleSchoolAdmin},
			RateClass:      ratelimit.ClassGeneral,
		},
		{
			Name:           "students",
			PathPrefix:     "/api/students",
			RequiresTenant: true,
			RequiresAuth:   true,
			AllowedRoles: []platformauth.Role{
				platformauth.RoleSuperAdmin,
				platformauth.RoleSchoolAdmin,
				platformauth.RoleTeacher,
			},
			RateClass: ratelimit.ClassGeneral,
		},
	}, gate.RouteClassification{
		Name:           "default",
		PathPrefix:     "/",
		RequiresTenant: true,
		RequiresAuth:   true,
		RateClass:      ratelimit.ClassGeneral,
	})

	pipeline := gate.New(gate.Config{
		Classifier:    classifier,
		Limiter:       limiter,
		Resolver:      resolver,
		Verifier:      tokens,
		Users:         userStore,
		LookupTimeout: cfg.LookupTimeout,
		Logger:        logger,
	})

	authSvc := authservice.New(authrepo.NewPostgresRepository(userStore, tokenStore), tokens)
	authHTTPHandler := authhandler.New(authSvc, logger)

	schoolsSvc := schoolsservice.New(schoolsrepo.NewPostgresRepository(schoolStore), resolver)
	schoolsHTTPHandler := schoolshandler.New(schoolsSvc, logger)

	usersSvc := usersservice.New(usersrepo.NewPostgresRepository(userStore, tokenStore))
	usersHTTPHandler := usershandler.New(usersSvc, logger)

	studentsSvc := studentsservice.New(studentsrepo.NewPostgresRepository(studentStore))
	studentsHTTPHandler := studentshandler.New(studentsSvc, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := chi.NewRouter()
	apiRouter.Use(pipeline.Handler)
	apiRouter.Use(platformmiddleware.ActorLogFields)

	apiRouter.Mount("/auth", authHTTPHandler.Routes())
	apiRouter.Mount("/admin/schools", schoolsHTTPHandler.Routes())
	apiRouter.Mount("/users", usersHTTPHandler.Routes())
	apiRouter.Mount("/students", studentsHTTPHandler.Routes())

	rootRouter.Mount("/api", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
