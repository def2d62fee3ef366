package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/contentflow/api/handler"
	"github.com/fastygo/contentflow/domain"
	"github.com/fastygo/contentflow/domain/workflow"
	"github.com/fastygo/contentflow/internal/bootstrap"
	"github.com/fastygo/contentflow/internal/config"
	"github.com/fastygo/contentflow/internal/infrastructure/genai"
	"github.com/fastygo/contentflow/internal/infrastructure/monitor"
	"github.com/fastygo/contentflow/internal/infrastructure/preferences"
	redisInfra "github.com/fastygo/contentflow/internal/infrastructure/redis"
	"github.com/fastygo/contentflow/internal/middleware"
	"github.com/fastygo/contentflow/internal/router"
	"github.com/fastygo/contentflow/internal/services/lifecycle"
	"github.com/fastygo/contentflow/pkg/httpcontext"
	"github.com/fastygo/contentflow/pkg/logger"
	redisRepo "github.com/fastygo/contentflow/repository/redis"
	authUC "github.com/fastygo/contentflow/usecase/auth"
	clientUC "github.com/fastygo/contentflow/usecase/client"
	commentUC "github.com/fastygo/contentflow/usecase/comment"
	dashboardUC "github.com/fastygo/contentflow/usecase/dashboard"
	prefsUC "github.com/fastygo/contentflow/usecase/preferences"
	taskUC "github.com/fastygo/contentflow/usecase/task"
	usersUC "github.com/fastygo/contentflow/usecase/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	backend, err := bootstrap.OpenStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	manager.Register(backend.Driver, backend.Close)

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	prefStore, err := preferences.Open(cfg.Preferences.Path)
	if err != nil {
		zapLogger.Fatal("failed to open preference store", zap.Error(err))
	}
	manager.Register("preferences", func(ctx context.Context) error {
		return prefStore.Close()
	})

	mon, err := monitor.New(cfg.Monitor.Schedule, zapLogger,
		backend.Check,
		monitor.RedisCheck(redisClient),
		monitor.SizeCheck("preferences", prefStore.Size),
	)
	if err != nil {
		zapLogger.Fatal("invalid monitor schedule", zap.Error(err))
	}
	mon.Start()
	manager.Register("monitor", mon.Stop)

	store := backend.Store
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	authUseCase := authUC.New(store.Users, store.Credentials, sessionRepo, authUC.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		SessionTTL: cfg.JWT.SessionTTL,
	}, zapLogger)
	unsubscribe := authUseCase.Subscribe(func(event authUC.Event, session *domain.Session) {
		fields := []zap.Field{zap.String("event", string(event))}
		if session != nil {
			fields = append(fields, zap.String("user_id", session.UserID), zap.String("session_id", session.ID))
		}
		zapLogger.Debug("auth state changed", fields...)
	})
	defer unsubscribe()

	if !cfg.GenAI.Enabled() {
		zapLogger.Warn("GENAI_API_KEY not set, briefings will use the fallback text")
	}
	generator := genai.New(cfg.GenAI, zapLogger.Named("genai"))

	userUseCase := usersUC.New(store.Users, store.Clients, store.Tasks, authUseCase, zapLogger)
	clientUseCase := clientUC.New(store.Clients, store.Tasks, zapLogger)
	taskUseCase := taskUC.New(store.Tasks, store.Clients, store.Users, workflow.NewEngine(nil), generator, zapLogger)
	commentUseCase := commentUC.New(store.Comments, store.Tasks, zapLogger)
	dashboardUseCase := dashboardUC.New(store.Users, store.Clients, store.Tasks, zapLogger)
	prefsUseCase := prefsUC.New(prefStore, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, userUseCase, zapLogger),
		Users:       apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Clients:     apiHandler.NewClientHandler(clientUseCase, ctxAdapter, userUseCase, zapLogger),
		Tasks:       apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, userUseCase, zapLogger),
		Comments:    apiHandler.NewCommentHandler(commentUseCase, ctxAdapter, userUseCase, zapLogger),
		Dashboard:   apiHandler.NewDashboardHandler(dashboardUseCase, ctxAdapter, userUseCase, zapLogger),
		Preferences: apiHandler.NewPreferencesHandler(prefsUseCase, ctxAdapter, userUseCase, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.Auth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		Name:               cfg.AppName,
		MaxRequestBodySize: 4 << 20,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("store", backend.Driver),
		)
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(appCtx); err != nil {
		zapLogger.Error("stopping after component failure", zap.Error(err))
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
