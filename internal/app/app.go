package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskList/internal/config"
	"taskList/internal/handlers"
	"taskList/internal/logger"
	"taskList/internal/middleware"
	"taskList/internal/migrations"
	"taskList/internal/repository/task/inmemory"
	"taskList/internal/repository/task/mysql"
	"taskList/internal/repository/task/postgres"
	"taskList/internal/service"
	"taskList/internal/tracing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	service   *service.TaskService
	tracer    *sdktrace.TracerProvider // nil - трассировка выключена
	shutdowns []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	logCfg := a.config.Logging
	if err := logger.InitWithFile(logCfg.Development, logger.FileOptions{
		Path:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
	}); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initTracing(); err != nil {
		a.Shutdown()
		return nil, err
	}

	repo, repoType, err := a.initRepository(ctx)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.service = service.NewTaskService(repo, repoType)

	var limiter middleware.Limiter
	if a.config.RateLimit.Enabled {
		limiter = a.initLimiter()
	}

	a.router = NewRouter(handlers.NewTaskHandler(a.service), RouterOptions{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		Limiter:        limiter,
		Metrics:        middleware.NewMetrics(),
		TracerProvider: a.tracerProvider(),
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", string(repoType)),
		zap.Bool("rate_limit", limiter != nil),
		zap.Bool("tracing", a.tracer != nil),
		zap.String("addr", a.server.Addr))

	return a, nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, service.RepoType, error) {
	db := a.config.Database

	switch service.RepoType(a.config.Repository.Type) {
	case service.PostgresType:
		var storage *postgres.Storage
		err := a.connect(ctx, "postgres", func() error {
			if db.AutoMigrate {
				if err := migrations.Up(migrations.Postgres, db.PostgresURL); err != nil {
					return fmt.Errorf("миграции postgres: %w", err)
				}
			}

			var err error
			storage, err = postgres.New(ctx, db.PostgresURL,
				postgres.WithPoolSize(int32(db.MaxConnections), int32(db.MinConnections)),
				postgres.WithIdleTimeout(db.IdleTimeout))
			if err != nil {
				return fmt.Errorf("подключение к postgres: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, "", err
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, service.PostgresType, nil

	case service.MySQLType:
		var storage *mysql.Storage
		err := a.connect(ctx, "mysql", func() error {
			if db.AutoMigrate {
				if err := migrations.Up(migrations.MySQL, db.MySQLDSN); err != nil {
					return fmt.Errorf("миграции mysql: %w", err)
				}
			}

			var err error
			storage, err = mysql.New(ctx, mysql.Config{
				DSN:             db.MySQLDSN,
				MaxOpenConns:    db.MaxConnections,
				MaxIdleConns:    db.MinConnections,
				ConnMaxIdleTime: db.IdleTimeout,
			})
			if err != nil {
				return fmt.Errorf("подключение к mysql: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, "", err
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, service.MySQLType, nil

	case service.InMemoryType:
		logger.Warn("Используется in-memory хранилище, данные не переживут перезапуск")
		return inmemory.NewTaskStorage(), service.InMemoryType, nil

	default:
		return nil, "", fmt.Errorf("неизвестный тип репозитория: %q", a.config.Repository.Type)
	}
}

// connect повторяет подключение к хранилищу с экспоненциальной паузой,
// пока не истечёт database.connect_timeout. Запросы API не повторяются никогда
func (a *App) connect(ctx context.Context, storage string, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = a.config.Database.ConnectTimeout

	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		logger.Warn("Хранилище недоступно, повторная попытка",
			zap.String("storage", storage),
			zap.Error(err),
			zap.Duration("retry_in", next))
	})
}

func (a *App) initTracing() error {
	tc := a.config.Tracing
	if !tc.Enabled {
		return nil
	}

	tp, err := tracing.NewProvider(tracing.Options{
		ServiceName: tc.ServiceName,
		Exporter:    tc.Exporter,
		SampleRatio: tc.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("инициализация трассировки: %w", err)
	}
	tracing.Install(tp)
	a.tracer = tp

	a.shutdowns = append(a.shutdowns, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(ctx, tp); err != nil {
			logger.Warn("Ошибка остановки трассировки", zap.Error(err))
		}
	})

	logger.Info("Трассировка включена",
		zap.String("exporter", tc.Exporter),
		zap.Float64("sample_ratio", tc.SampleRatio))
	return nil
}

// tracerProvider возвращает nil интерфейс, если провайдер не создан
func (a *App) tracerProvider() trace.TracerProvider {
	if a.tracer == nil {
		return nil
	}
	return a.tracer
}

func (a *App) initLimiter() middleware.Limiter {
	rl := a.config.RateLimit
	client := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
		DB:       rl.RedisDB,
	})
	a.shutdowns = append(a.shutdowns, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Ошибка закрытия клиента Redis", zap.Error(err))
		}
	})

	logger.Info("Ограничение запросов включено",
		zap.String("redis_addr", rl.RedisAddr),
		zap.Int("requests_per_minute", rl.RequestsPerMinute))

	return middleware.NewRedisLimiter(client, rl.RequestsPerMinute)
}

func (a *App) Router() http.Handler {
	return a.router
}

// Run блокируется до отмены ctx или ошибки сервера, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Получен сигнал остановки")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	logger.Info("Сервер остановлен")
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
