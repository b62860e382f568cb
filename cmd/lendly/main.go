package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"lendly/internal/app/commands"
	bookingapp "lendly/internal/app/handlers/booking"
	catalogapp "lendly/internal/app/handlers/catalog"
	paymentsapp "lendly/internal/app/handlers/payments"
	"lendly/internal/app/middleware"
	appoutbox "lendly/internal/app/outbox"
	"lendly/internal/app/queries"
	authsvc "lendly/internal/app/services/auth"
	"lendly/internal/app/uow"
	domainauth "lendly/internal/domain/auth"
	"lendly/internal/infra/broker/kafka"
	"lendly/internal/infra/config"
	mongodb "lendly/internal/infra/db/mongo"
	ginserver "lendly/internal/infra/http/gin"
	"lendly/internal/infra/notify"
	"lendly/internal/infra/obs"
	infraoutbox "lendly/internal/infra/outbox"
	"lendly/internal/infra/payments"
	"lendly/internal/infra/security"
	"lendly/internal/infra/storage/memory"
	redisstore "lendly/internal/infra/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Config{Env: "dev", HTTPAddr: ":8080"}
	}
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
	}
	obs.RegisterMetrics()

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}
	if app.consumer != nil {
		go func() {
			topics := []string{app.topic("booking.events.v1")}
			if err := app.consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *infraoutbox.Worker
	consumer *kafka.Consumer
	ready    func() error
	cfg      config.Config
}

func (a application) topic(base string) string {
	return a.cfg.KafkaTopicPrefix + base
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		uowFactory  uow.Factory
		outboxStore appoutbox.Outbox
		workerStore infraoutbox.Store
		ready       = func() error { return nil }
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		mongoOutbox := infraoutbox.NewMongoStore(client.DB)
		uowFactory = mongodb.Factory{
			DB:          client.DB,
			ItemRepo:    mongodb.NewItemRepository(client.DB),
			BookingRepo: mongodb.NewBookingRepository(client.DB),
			UserRepo:    mongodb.NewUserRepository(client.DB),
		}
		outboxStore = mongoOutbox
		workerStore = mongoOutbox
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("storage: mongo", "db", cfg.MongoDB)
	} else {
		memOutbox := memory.NewOutboxStore()
		uowFactory = memory.Factory{
			ItemRepo:    memory.NewItemRepository(),
			BookingRepo: memory.NewBookingRepository(),
			UserRepo:    memory.NewUserRepository(),
		}
		outboxStore = memOutbox
		workerStore = memOutbox
		logger.Info("storage: in-memory")
	}

	var (
		idStore  middleware.IdempotencyStore
		sessions domainauth.SessionStore
	)
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		idStore = redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		sessions = redisstore.NewSessionStore(client)
		logger.Info("idempotency + sessions: redis", "addr", cfg.RedisAddr)
	} else {
		idStore = memory.NewIdempotencyStore()
		sessions = memory.NewSessionStore()
		logger.Info("idempotency + sessions: in-memory")
	}

	authService := &authsvc.Service{
		UoWFactory: uowFactory,
		Sessions:   sessions,
		Hasher:     security.BcryptHasher{Cost: cfg.BcryptCost},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
	}

	processor := &payments.StubProcessor{Logger: logger}
	encoder := appoutbox.JSONEventEncoder{IDGenerator: uuid.NewString}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.ChangeStatusCommand{}.Key(), &bookingapp.ChangeStatusHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.UpdatePaymentCommand{}.Key(), &bookingapp.UpdatePaymentHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, bookingapp.ReportIssueCommand{}.Key(), &bookingapp.ReportIssueHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, paymentsapp.ProcessPaymentCommand{}.Key(), &paymentsapp.ProcessPaymentHandler{
		UoWFactory: uowFactory, Processor: processor, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, paymentsapp.RefundPaymentCommand{}.Key(), &paymentsapp.RefundPaymentHandler{
		UoWFactory: uowFactory, Processor: processor, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, catalogapp.CreateItemCommand{}.Key(), &catalogapp.CreateItemHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListRentalsQuery{}.Key(), &bookingapp.ListRentalsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, bookingapp.ListListingsQuery{}.Key(), &bookingapp.ListListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, paymentsapp.PaymentDetailsQuery{}.Key(), &paymentsapp.PaymentDetailsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, catalogapp.GetItemQuery{}.Key(), &catalogapp.GetItemHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, catalogapp.ListItemsQuery{}.Key(), &catalogapp.ListItemsHandler{UoWFactory: uowFactory})

	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore),
		middleware.Transaction(uowFactory),
		middleware.OutboxFlush(outboxStore),
	)
	queryPipeline := middleware.ChainQueries(queryBus)

	app := application{
		handlers: ginserver.Handlers{
			Booking:        ginserver.BookingHandler{Commands: commandPipeline, Queries: queryPipeline},
			Payment:        ginserver.PaymentHandler{Commands: commandPipeline, Queries: queryPipeline},
			Item:           ginserver.ItemHandler{Commands: commandPipeline, Queries: queryPipeline},
			Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		ready: ready,
		cfg:   cfg,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		app.worker = &infraoutbox.Worker{
			Store:       workerStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		emitter := &notify.Emitter{Notifier: notify.LogNotifier{Logger: logger}, Logger: logger}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "lendly-notify", nil, emitter)
		if err != nil {
			return application{}, err
		}
		app.consumer = consumer
		logger.Info("broker: kafka", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("broker: disabled, outbox records stay queued")
	}

	return app, nil
}
