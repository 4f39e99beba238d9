package main

import (
	"context"
	"log"

	authService "github.com/hilthontt/chatroom/internal/application/auth"
	roomService "github.com/hilthontt/chatroom/internal/application/rooms"
	"github.com/hilthontt/chatroom/internal/domain"
	"github.com/hilthontt/chatroom/internal/infrastructure/configs"
	"github.com/hilthontt/chatroom/internal/infrastructure/events"
	"github.com/hilthontt/chatroom/internal/infrastructure/logging"
	"github.com/hilthontt/chatroom/internal/infrastructure/messaging"
	"github.com/hilthontt/chatroom/internal/infrastructure/metrics"
	"github.com/hilthontt/chatroom/internal/infrastructure/tracing"
	"github.com/hilthontt/chatroom/internal/infrastructure/ws"
	"github.com/hilthontt/chatroom/internal/persistence/db"
	"github.com/hilthontt/chatroom/internal/persistence/repository"
	"github.com/hilthontt/chatroom/internal/presentation/api"
	authHandler "github.com/hilthontt/chatroom/internal/presentation/handler/auth"
	"github.com/hilthontt/chatroom/internal/presentation/handler/health"
	profileHandler "github.com/hilthontt/chatroom/internal/presentation/handler/profile"
	"github.com/hilthontt/chatroom/internal/presentation/handler/realtime"
	"github.com/hilthontt/chatroom/internal/presentation/handler/rooms"
	"github.com/hilthontt/chatroom/internal/presentation/utils"
	"github.com/hilthontt/chatroom/internal/presentation/web"
)

func main() {
	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to initialize the tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer shutdownTracer(context.Background())

	mongoCfg := db.NewMongoConfig(cfg.Mongo)
	mongoClient, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		logger.Fatal(logging.Mongo, logging.Startup, "failed to connect to mongodb", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer db.DisconnectMongo(context.Background(), mongoClient)

	database := db.GetDatabase(mongoClient, mongoCfg)

	userRepository := repository.NewUserRepository(database)
	if err := userRepository.EnsureIndexes(ctx); err != nil {
		logger.Fatal(logging.Mongo, logging.Migration, "failed to create user indexes", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	auditRepository := repository.NewRoomAuditLogRepository(database)
	if err := auditRepository.EnsureIndexes(ctx); err != nil {
		logger.Fatal(logging.Mongo, logging.Migration, "failed to create audit indexes", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	var sessionRepository domain.SessionRepository
	switch cfg.Session.Store {
	case "redis":
		redisClient, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(logging.Redis, logging.Startup, "failed to connect to redis", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer redisClient.Close()
		sessionRepository = repository.NewRedisSessionRepository(redisClient)
	default:
		memory := repository.NewMemorySessionRepository()
		defer memory.Close()
		sessionRepository = memory
	}

	auth, err := authService.NewService(userRepository, sessionRepository, logger, authService.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		SessionTTL: cfg.Session.TTL,
	})
	if err != nil {
		logger.Fatal(logging.Auth, logging.Startup, "failed to create auth service", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	var publisher roomService.Publisher
	if cfg.Events.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.Events.RabbitMQURI, logger)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbitmq.Close()

		publisher = events.NewRoomPublisher(rabbitmq)

		roomConsumer := events.NewRoomConsumer(rabbitmq, auditRepository, logger)
		go func() {
			if err := roomConsumer.Listen(ctx); err != nil {
				logger.Error(logging.RabbitMQ, logging.Consume, "room consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	roomsSvc := roomService.NewService(repository.NewRoomRepository(database), publisher, logger)

	m := metrics.New()
	relay := ws.NewRelay(m)
	socket := ws.NewHandler(relay, roomsSvc, logger, ws.Options{
		ValidateRooms:  cfg.Relay.ValidateRooms,
		SendBuffer:     cfg.Relay.SendBuffer,
		MaxMessageSize: cfg.Relay.MaxMessageSize,
		PongWait:       cfg.Relay.PongWait,
		WriteWait:      cfg.Relay.WriteWait,
		CheckOrigin:    cfg.Security.CheckOrigin,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, m)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to parse templates", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	cookies := utils.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}

	app := api.NewApplication(*cfg, api.Handlers{
		Auth:     authHandler.NewHandler(auth, renderer, cookies, logger),
		Profile:  profileHandler.NewHandler(auth, renderer, logger),
		Rooms:    rooms.NewHandler(roomsSvc, auditRepository, renderer, logger),
		Health:   health.NewHandler(),
		Realtime: realtime.NewHandler(socket),
	}, auth, logger, m)

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server stopped with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
