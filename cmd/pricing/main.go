package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/marketdata"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/mysql"
	pricingredis "github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/persistence/redis"
	"github.com/wyfcoding/optionpricing/internal/pricing/interfaces/consumer"
	httpserver "github.com/wyfcoding/optionpricing/internal/pricing/interfaces/http"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"github.com/wyfcoding/pkg/middleware"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/pricing/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	logger := logging.NewFromConfig(logging.Config{
		Service:    cfg.Server.Name,
		Module:     "pricing",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	slog.SetDefault(logger.Logger)

	// 3. 指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		stopMetrics := metricsImpl.ExposeHttp(cfg.Metrics.Port)
		defer stopMetrics()
	}

	// 4. 数据库
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(&mysql.ValuationResultModel{}, &outbox.OutboxMessage{}); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Redis
	redisCache, err := cache.NewRedisCache(cfg.Data.Redis)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	// 6. Kafka & Outbox
	// 事件按类型写入各自主题，writer 不固定 Topic。
	kafkaWriter := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.MessageQueue.Kafka.Brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	defer kafkaWriter.Close()

	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaWriter.WriteMessages(ctx, kafkago.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: payload,
			Time:  time.Now(),
		})
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)
	publisher := outbox.NewPublisher(outboxMgr)

	// 7. 仓储与应用服务
	repo := mysql.NewValuationRepository(db.RawDB())
	valuationCache := pricingredis.NewValuationCache(redisCache.GetClient())
	marketClient := marketdata.NewRedisQuoteClient(redisCache.GetClient())

	service := application.NewPricingService(repo, valuationCache, marketClient, publisher)

	// 8. Kafka 消费者：异步估值请求
	kafkaCfg := cfg.MessageQueue.Kafka
	kafkaCfg.GroupID = "pricing-group"
	kafkaCfg.Topic = domain.ValuationRequestedEventType
	valuationConsumer := kafka.NewConsumer(kafkaCfg, logger)

	requestHandler := consumer.NewValuationRequestHandler(service, publisher, slog.Default())

	// 9. HTTP 接口
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS())

	httpHandler := httpserver.NewPricingHandler(service)
	httpHandler.RegisterRoutes(r.Group("/api"))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTP.Port),
		Handler: r,
	}

	// 10. 启动
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		valuationConsumer.Start(ctx, 1, requestHandler.Handle)
		<-ctx.Done()
		return valuationConsumer.Close()
	})

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
