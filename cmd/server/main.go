package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/config"
	"github.com/hongminglow/all-in-blog/internal/http/handlers"
	"github.com/hongminglow/all-in-blog/internal/kv"
	"github.com/hongminglow/all-in-blog/internal/logging"
	"github.com/hongminglow/all-in-blog/internal/mail"
	"github.com/hongminglow/all-in-blog/internal/metrics"
	"github.com/hongminglow/all-in-blog/internal/server"
	"github.com/hongminglow/all-in-blog/internal/service"
	"github.com/hongminglow/all-in-blog/internal/storage/postgres"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	if !envLoaded {
		logger.Info("no .env file found; relying on existing environment")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer store.Close()

	redisCfg := kv.DefaultConfig()
	redisCfg.Addr = cfg.RedisAddr
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB
	redisClient, err := kv.Connect(ctx, redisCfg, logger)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	mailer, err := newMailer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init mailer", zap.Error(err))
	}

	m := metrics.New()
	signer := auth.NewCookieSigner(cfg.SessionSecret, "all-in-blog", cfg.SessionTTL)
	sessions := auth.NewSessionManager(redisClient, signer, auth.SessionOptions{
		TTL:    cfg.SessionTTL,
		Secure: !cfg.IsDevelopment(),
	})

	accounts := service.NewAccounts(service.AccountsDeps{
		Users:    store,
		Sessions: sessions,
		Resets:   auth.NewResetTokenStore(redisClient, cfg.ResetTokenTTL),
		Hasher:   auth.NewBcryptHasher(cfg.BcryptCost),
		Mailer:   mailer,
		Events:   m,
		Logger:   logger,
	}, service.AccountsConfig{
		ClientURL:   cfg.ClientURL,
		DefaultRole: cfg.DefaultRole,
	})

	srv := server.New(cfg, server.Deps{
		Accounts: accounts,
		Posts:    service.NewPosts(store, logger),
		Sessions: sessions,
		Metrics:  m,
		Logger:   logger,
		Checks: map[string]handlers.Pinger{
			"postgres": store.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})

	go func() {
		logger.Info("blog backend listening", zap.String("addr", cfg.HTTPAddress()), zap.String("env", cfg.Env))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func newMailer(ctx context.Context, cfg config.Config, logger *zap.Logger) (mail.Sender, error) {
	if cfg.MailDriver == config.MailDriverLog {
		return mail.NewLogSender(logger.Named("mail")), nil
	}
	return mail.NewSESSender(ctx, mail.SESConfig{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.SESAccessKey,
		SecretKey: cfg.SESSecretKey,
		From:      cfg.MailFrom,
	})
}
