package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/business/delivery"
	"oip/dpnotify/internal/domains"
	"oip/dpnotify/internal/domains/common"
	"oip/dpnotify/internal/framework"
	"oip/dpnotify/internal/server/handlers/notification"
	"oip/dpnotify/internal/server/handlers/webhook"
	"oip/dpnotify/internal/server/routers"
	"oip/dpnotify/internal/worker"
	"oip/dpnotify/pkg/config"
	"oip/dpnotify/pkg/infra/mysql"
	"oip/dpnotify/pkg/infra/redis"
	"oip/dpnotify/pkg/lmstfy"
	"oip/dpnotify/pkg/logger"
	"oip/dpnotify/pkg/mailer"
)

var (
	configPath = flag.String("config", "", "配置文件路径（为空时只读取环境变量）")
)

// queue 投递队列：发布端给 Notifier，消费端给 Worker
type queue interface {
	framework.Publisher
	framework.MessageSource
}

func main() {
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Errorf(context.Background(), "dpnotify exited with error: %v", err)
		zapLogger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, zapLogger logger.Logger) error {
	ctx := context.Background()
	zapLogger.Infof(ctx, "Config loaded: %s, env: %s, dedup: %s/%s, transport: %s",
		cfg.App.Name, cfg.App.Env, cfg.Dedup.Backend, cfg.Dedup.KeyFormat, cfg.Delivery.Transport)

	// 3. Redis（去重状态或结果发布需要时才连接）
	var redisClient *goredis.Client
	if cfg.Dedup.Backend == "redis" || cfg.Redis.ResultChannel != "" {
		client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	// 4. 去重状态
	var (
		cache    alert.FieldCache
		notified alert.NotifiedSet
	)
	if cfg.Dedup.Backend == "redis" {
		store := redis.NewStateStore(redisClient, cfg.Redis.KeyPrefix, cfg.Dedup.TTL)
		cache, notified = store, store
	} else {
		cache, notified = alert.NewMemoryFieldCache(), alert.NewMemoryNotifiedSet(cfg.Dedup.TTL)
	}

	// 5. 投递队列
	var q queue
	if cfg.Delivery.Transport == "lmstfy" {
		q = lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	} else {
		q = framework.NewMemorySource(cfg.Delivery.Workers[0].Processor.BufferSize * 16)
	}

	// 6. 邮件投递服务
	var opts []delivery.Option
	var historyRepo notification.Repository
	if cfg.MySQL.DSN != "" {
		dao, err := mysql.NewNotificationDAO(cfg.MySQL.DSN)
		if err != nil {
			return err
		}
		defer dao.Close()
		if cfg.MySQL.AutoMigrate {
			if err := dao.AutoMigrate(ctx); err != nil {
				return err
			}
		}
		opts = append(opts, delivery.WithNotificationLog(dao))
		historyRepo = dao
	}
	if cfg.Redis.ResultChannel != "" {
		opts = append(opts, delivery.WithResultPublisher(redis.NewPubSub(redisClient, cfg.Redis.ResultChannel)))
	}
	mail := mailer.New(cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.Timeout, zapLogger)
	mailService := delivery.NewMailService(mail, zapLogger, opts...)

	// 7. Worker
	proc := domains.GetProcess(zapLogger, &common.Services{Mail: mailService})
	mgr, err := worker.NewManagerInstance(cfg.Delivery.Workers, q, proc, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	go func() {
		if err := mgr.Start(); err != nil {
			zapLogger.Errorf(ctx, "Manager start failed: %v", err)
		}
	}()

	// 8. Notifier + HTTP
	keyFormat, err := alert.ParseKeyFormat(cfg.Dedup.KeyFormat)
	if err != nil {
		return err
	}
	notifier := alert.NewNotifier(
		cache,
		notified,
		delivery.NewQueueDispatcher(q, cfg.Delivery.Workers[0].QueueName, cfg.Delivery.JobTTL, zapLogger),
		alert.NewRecipientBook(cfg.Alerts.QAEmails, cfg.Alerts.ModificationEmails, cfg.Alerts.PackingEmails),
		keyFormat,
		zapLogger,
	)

	engine := routers.SetupRoutes(
		cfg.App.Name,
		webhook.NewWebhookHandler(notifier, zapLogger),
		notification.NewNotificationHandler(historyRepo, zapLogger),
		zapLogger,
	)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		zapLogger.Infof(ctx, "Webhook server running on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	// 9. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		zapLogger.Infof(ctx, "Received signal: %v, shutting down", sig)
	case runErr = <-serverErrChan:
		zapLogger.Errorf(ctx, "HTTP server error: %v", runErr)
	}

	// 10. 优雅关闭：先停 HTTP，再让 Worker 处理完已入队的通知
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warnf(ctx, "HTTP server shutdown error: %v", err)
	}
	mgr.Shutdown()

	zapLogger.Infof(ctx, "dpnotify exited gracefully")
	return runErr
}
