package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"claira-social/internal/ai"
	appsvc "claira-social/internal/app"
	"claira-social/internal/cache"
	"claira-social/internal/config"
	"claira-social/internal/media"
	mysqlClient "claira-social/internal/platform/mysql"
	rabbitmqClient "claira-social/internal/platform/rabbitmq"
	redisClient "claira-social/internal/platform/redis"
	"claira-social/internal/repository"
	"claira-social/internal/scheduler"
	"claira-social/internal/storage"
	"claira-social/internal/worker"
)

// ObjectStore is an upload backend that can report its own health.
type ObjectStore interface {
	appsvc.ObjectStorage
	Health(ctx context.Context) error
}

type Services struct {
	Auth      *appsvc.AuthService
	Chat      *appsvc.ChatService
	Cycles    *appsvc.CycleService
	Posts     *appsvc.PostService
	Social    *appsvc.SocialService
	Dashboard *appsvc.DashboardService
	Upload    *appsvc.UploadService
}

type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	MySQL      *gorm.DB
	Redis      *redis.Client
	MQConn     *amqp.Connection
	Storage    ObjectStore
	Services   *Services
	PostWorker *worker.PostPublishWorker
	Dispatcher *scheduler.Dispatcher

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log, StartedAt: time.Now()}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), log)
	if err != nil {
		return nil, err
	}
	a.MySQL = mysqlDB
	if err := repository.Migrate(mysqlDB); err != nil {
		_ = a.Close()
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Redis = redisCli

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.PostPublishQueue)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.MQConn = mqConn

	store, err := newObjectStore(ctx, cfg.Storage, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Storage = store

	dashboardCache := cache.NewDashboardCache(
		redisCli,
		time.Duration(cfg.Redis.DashboardTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.DashboardDirtyTTLSeconds)*time.Second,
	)
	services, err := NewServices(cfg, mysqlDB, dashboardCache, newProvider(cfg.LLM, log), store, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Services = services

	a.PostWorker = worker.NewPostPublishWorker(
		mqConn,
		cfg.RabbitMQ.PostPublishQueue,
		repository.NewPostRepository(mysqlDB),
		repository.NewSocialAccountRepository(mysqlDB),
		repository.NewAnalyticsRepository(mysqlDB),
		dashboardCache,
		worker.StubPlatformPublisher{},
		log,
	)
	if err := a.PostWorker.Start(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start post publish worker failed: %w", err)
	}

	if cfg.Scheduler.Enabled {
		a.Dispatcher = scheduler.NewDispatcher(
			repository.NewPostRepository(mysqlDB),
			rabbitmqClient.NewPostJobPublisher(mqConn, cfg.RabbitMQ.PostPublishQueue),
			cfg.Scheduler.BatchSize,
			log,
		)
		if err := a.Dispatcher.Start(cfg.Scheduler.Cron); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	return a, nil
}

// NewServices wires the application services on top of db. dashboardCache may
// be nil, in which case dashboards are always computed.
func NewServices(
	cfg *config.Config,
	db *gorm.DB,
	dashboardCache appsvc.DashboardCache,
	provider ai.StreamProvider,
	store appsvc.ObjectStorage,
	log zerolog.Logger,
) (*Services, error) {
	persona, err := loadPersona(cfg.LLM.PersonaFile)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatMessageRepository(db)
	cycleRepo := repository.NewCycleRepository(db)
	postRepo := repository.NewPostRepository(db)
	accountRepo := repository.NewSocialAccountRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	var invalidator appsvc.StatsInvalidator
	if dashboardCache != nil {
		invalidator = dashboardCache
	}

	assembler := appsvc.NewContextAssembler(persona, chatRepo, cycleRepo, cfg.LLM.HistoryLimit)
	optimizer := media.NewOptimizer(cfg.Upload.MaxDimension, cfg.Upload.JPEGQuality, cfg.Upload.MaxPixels)

	return &Services{
		Auth:      appsvc.NewAuthService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute),
		Chat:      appsvc.NewChatService(userRepo, assembler, chatRepo, provider, log),
		Cycles:    appsvc.NewCycleService(cycleRepo),
		Posts:     appsvc.NewPostService(postRepo, invalidator),
		Social:    appsvc.NewSocialService(accountRepo, appsvc.StubOAuthExchanger{}, invalidator),
		Dashboard: appsvc.NewDashboardService(postRepo, analyticsRepo, accountRepo, dashboardCache, log),
		Upload:    appsvc.NewUploadService(optimizer, store, cfg.Upload.MaxBytes, log),
	}, nil
}

func newProvider(cfg config.LLMConfig, log zerolog.Logger) ai.StreamProvider {
	provider, err := ai.NewOpenAIProvider(ai.ChatConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		log.Warn().Err(err).Msg("completion provider disabled, chat requests will fail")
		return ai.UnavailableProvider{Reason: err.Error()}
	}
	return provider
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (ObjectStore, error) {
	if cfg.Driver == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKeyID:   cfg.S3AccessKeyID,
			SecretKey:     cfg.S3SecretKey,
			UsePathStyle:  cfg.S3UsePathStyle,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, log)
	}
	return storage.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL, log)
}

func loadPersona(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return appsvc.DefaultPersona, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona file failed: %w", err)
	}
	persona := strings.TrimSpace(string(raw))
	if persona == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	return persona, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Dispatcher != nil {
		a.Dispatcher.Stop()
	}
	if a.PostWorker != nil {
		a.PostWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
