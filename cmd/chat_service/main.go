package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "marketplace_chat_service/cmd/chat_service/docs" // swagger docs
	"marketplace_chat_service/internal/chat/app"
	"marketplace_chat_service/internal/chat/presence"
	"marketplace_chat_service/internal/chat/realtime"
	"marketplace_chat_service/internal/chat/repository"
	"marketplace_chat_service/internal/chat/router"
	"marketplace_chat_service/internal/chat/session"
	listingrepo "marketplace_chat_service/internal/listing/repository"
	memberapp "marketplace_chat_service/internal/member/app"
	memberdomain "marketplace_chat_service/internal/member/domain"
	memberrepo "marketplace_chat_service/internal/member/repository"
	"marketplace_chat_service/pkg/config"
	"marketplace_chat_service/pkg/database"
	"marketplace_chat_service/pkg/logger"
	"marketplace_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	cfg.ApplyDefaults()
	if config.EnvConfig.ChatServicePort != "" {
		cfg.Port = config.EnvConfig.ChatServicePort
	}
	if cfg.JWTSecret != "" {
		token.SetSecret(cfg.JWTSecret)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Mongo (conversations, messages)
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval) * time.Second,
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries",
			zap.String("host", cfg.MongoSQL.Host),
			zap.Error(err),
		)
	}
	defer mongo.Close(context.Background())

	convRepo := repository.NewMongoConversationRepository(mongo.Database)
	msgRepo := repository.NewMongoMessageRepository(mongo.Database)
	if err := convRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("ensure conversation indexes", zap.Error(err))
	}
	if err := msgRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("ensure message indexes", zap.Error(err))
	}

	// 2. Redis (room bus, member sessions, profile cache)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 3. member directory (PostgreSQL via pgx)
	memberPool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    database.PostgresDSN(cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to member database after retries", zap.Error(err))
	}
	defer memberPool.Close()

	memberUC := memberapp.NewMemberUseCase(
		memberrepo.NewMemberRepository(memberPool),
		database.NewRedisRepository[memberdomain.MemberSession](redisClient),
		database.NewRedisRepository[memberdomain.Profile](redisClient),
		cfg.ProfileCacheTTL,
	)

	// 4. listing catalog (PostgreSQL via gorm)
	catalogDB, err := database.NewPGConnection(database.Connection{
		ConnectStr:    database.PostgresDSN(cfg.Catalog.Host, cfg.Catalog.Port, cfg.Catalog.User, cfg.Catalog.Password, cfg.Catalog.Database),
		RetryCount:    cfg.Catalog.RetryCount,
		RetryInterval: time.Duration(cfg.Catalog.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to catalog database after retries", zap.Error(err))
	}
	listingRepo := listingrepo.NewListingRepository(catalogDB)

	// 5. kafka (message-created events), optional
	var events repository.EventRepository
	if brokers := nonEmpty(cfg.Kafka.Brokers); len(brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Warn("kafka unavailable, message events disabled", zap.Error(err))
		} else {
			defer writer.Close()
			events = repository.NewKafkaEventRepository(writer)
		}
	}

	// 6. realtime: local hub fed by the redis room bus
	hub := realtime.NewHub()
	defer hub.Close()
	bus := repository.NewRedisPubSub(redisClient)
	if err := bus.Subscribe(ctx, hub); err != nil {
		logger.Log.Fatal("subscribe room bus", zap.Error(err))
	}
	registry := presence.NewRegistry()

	chatUC := app.NewChatUseCase(convRepo, msgRepo, memberUC, listingRepo, bus, events, cfg.StoreTimeout)
	wsHandler := app.NewChatWebsocketHandler(
		session.Deps{
			Machine:  session.NewMachine(chatUC),
			Presence: registry,
			Rooms:    hub,
			// presence is per process, so its snapshot stays on local connections
			Bus: hub,
		},
		hub,
		app.WebsocketOptions{
			HandshakeTimeout: cfg.HandshakeTimeout,
			PingInterval:     cfg.PingInterval,
			SendBuffer:       cfg.SendBuffer,
		},
	)

	// 7. fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, memberUC, app.NewChatHandler(chatUC), wsHandler, registry)

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Log.Info("Chat Service listening", zap.String("port", cfg.Port))
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Error("Server failed to start", zap.Error(err))
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
