package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/accounts"
	"github.com/hongminglow/ledger-be/internal/config"
	"github.com/hongminglow/ledger-be/internal/events"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"github.com/hongminglow/ledger-be/internal/logging"
	"github.com/hongminglow/ledger-be/internal/ratelimit"
	"github.com/hongminglow/ledger-be/internal/server"
	"github.com/hongminglow/ledger-be/internal/storage"
	"github.com/hongminglow/ledger-be/internal/storage/memory"
	"github.com/hongminglow/ledger-be/internal/storage/postgres"
)

type store interface {
	storage.UserStore
	storage.AccountStore
	storage.LedgerStore
}

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, closeDB, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer closeDB()

	publisher := openPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	}()

	redisClient := openRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	accountService := accounts.NewService(db,
		accounts.WithMaxAttempts(cfg.AccountNumberAttempts),
		accounts.WithLogger(logger.Named("accounts")))
	engine := ledger.New(db,
		ledger.WithPublisher(publisher),
		ledger.WithLogger(logger.Named("ledger")))
	limiter := ratelimit.New(redisClient, "ledger:postings", cfg.PostRatePerSec, cfg.PostRateBurst, logger.Named("ratelimit"))

	srv := server.New(cfg, server.Deps{
		Users:    db,
		Accounts: accountService,
		Ledger:   engine,
		Limiter:  limiter,
		Logger:   logger.Named("http"),
	})

	go func() {
		logger.Info("ledger backend listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory store")
		return memory.New(), func() {}, nil
	}
	pg, err := postgres.New(ctx, cfg.DatabaseURL, postgres.Options{
		MaxConns: cfg.DBMaxConns,
		Logger:   logger.Named("postgres"),
	})
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func openPublisher(cfg config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set; transaction events disabled")
		return events.Noop{}
	}
	logger.Info("publishing transaction events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic))
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

// openRedis returns nil when Redis is not configured or unreachable, which
// leaves rate limiting local to this process.
func openRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; rate limiting is local only", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
