package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sharearide/sharearide-backend/internal/config"
	"github.com/sharearide/sharearide-backend/internal/database"
	"github.com/sharearide/sharearide-backend/internal/handlers"
	"github.com/sharearide/sharearide-backend/internal/logger"
	"github.com/sharearide/sharearide-backend/internal/middleware"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sharearide/sharearide-backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env is normal in containers.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		log.Debug("No .env file loaded, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(cfg, log)

	var redisClient *redis.Client
	if cfg.RedisRequired() {
		client, err := services.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Redis")
		}
		redisClient = client
		defer redisClient.Close()
	}

	var codes services.CodeStore = services.NewMemoryCodeStore(cfg.CodeTTL)
	if cfg.CodeStore == "redis" {
		codes = services.NewRedisCodeStore(redisClient, cfg.CodeTTL)
	}

	hub := services.NewHub(log)
	go hub.Run(ctx)

	sms := utils.NewSMSClient(cfg.SMS.Username, cfg.SMS.APIKey)
	mailer := utils.NewMailer(cfg.Email.From, cfg.Email.Password, cfg.Email.Host, cfg.Email.Port, cfg.Storage.BaseURL)

	notifiers := services.Notifiers{hub, services.NewContactNotifier(st, sms, mailer, log)}

	switch cfg.EventsBackend {
	case "redis":
		notifiers = append(notifiers, services.NewEventNotifier(services.NewRedisPublisher(redisClient), log))
	case "rabbitmq":
		publisher, err := services.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitExchange)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer publisher.Close()
		notifiers = append(notifiers, services.NewEventNotifier(publisher, log))
	}

	fcm, err := services.InitFirebase(ctx, cfg.FirebaseCredentials)
	if err != nil {
		log.WithError(err).Warn("Firebase initialization failed, push notifications disabled")
	}
	if fcm != nil {
		notifiers = append(notifiers, services.NewPushNotifier(st, fcm, log))
		log.Info("Firebase Cloud Messaging initialized")
	}

	var receipts services.Receipts
	storage, err := services.NewFileStorage(cfg.Storage)
	if err != nil {
		log.WithError(err).Warn("File storage unavailable, receipts disabled")
	} else {
		receipts = services.NewReceiptIssuer(storage)
	}

	sender := services.NewContactCodeSender(st, sms, mailer, cfg.CodeTTL, log)
	sender.LogCodes = !cfg.IsProduction()

	scheduler := services.NewScheduler(cfg.SchedulerWorkers, cfg.SchedulerQueue, log)
	scheduler.Start(ctx)

	locks := services.NewKeyedMutex()
	flow := services.NewRideFlow(st, scheduler, notifiers, locks, cfg.DecisionDelay, log)
	if _, err := flow.ResumePending(ctx); err != nil {
		log.WithError(err).Error("Failed to resume pending ride requests")
	}

	svc := handlers.Services{
		Offers:   services.NewOfferService(st, locks, log),
		Flow:     flow,
		Rides:    services.NewRideService(st),
		Bookings: services.NewBookingService(st, codes, sender, notifiers, receipts, log),
		Persons:  services.NewPersonService(st),
		Hub:      hub,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-Id", middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	if storage != nil && !storage.UsingS3() {
		r.Static("/uploads", cfg.Storage.UploadDir)
	}

	handlers.RegisterRoutes(r, svc, cfg.JWTSecret, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := scheduler.Stop(); err != nil {
		log.WithError(err).Error("Scheduler shutdown failed")
	}
	log.Info("Server exited")
}

// openStore picks the record store. The memory store forgets everything on
// restart and is meant for local runs and demos.
func openStore(cfg config.Config, log *logrus.Logger) store.Store {
	if cfg.Store == "memory" {
		log.Warn("Using in-memory store, data will not survive a restart")
		return store.NewMemoryStore()
	}

	db, err := database.InitDB(cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	log.Info("Database connected and migrated")
	return store.NewGormStore(db)
}
