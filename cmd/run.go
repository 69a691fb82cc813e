package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rewarder/api"
	"rewarder/application"
	"rewarder/config"
	"rewarder/database"
	"rewarder/events"
	"rewarder/infrastructure"
	"rewarder/metrics"
	"rewarder/repository"
	"rewarder/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	SetupLogging(cfg)

	log.Info("Starting rewarder...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("Closing database connection...")
		db.Close()
	}()
	log.Info("Database connection established successfully")

	// Initialize event bus and its subscribers
	eventBus := events.NewBus()
	metrics.Register(eventBus)

	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureStream(infrastructure.RewardsStreamName, mapper.GetAllSubjects()); err != nil {
			return err
		}
		infrastructure.NewNATSEventPublisher(natsClient, mapper).Register(eventBus)
		log.Info("Event export to NATS enabled")
	}

	if cfg.DiscordWebhookID != "" && cfg.DiscordWebhookToken != "" {
		notifier, err := infrastructure.NewDiscordNotifier(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		if err != nil {
			return err
		}
		notifier.Register(eventBus)
		log.Info("Discord reward notices enabled")
	}

	// Initialize unit of work factory and services
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	userService := service.NewUserService(uowFactory)
	profileService := service.NewProfileService(uowFactory)
	executionService := service.NewRewardExecutionService(uowFactory)
	requestService := service.NewRewardRequestService(uowFactory, service.RewardRules{
		MaxAmount: cfg.MaxRewardAmount,
		Delay:     cfg.RewardDelay,
		Location:  cfg.RewardLocation,
	})

	g, ctx := errgroup.WithContext(ctx)

	// Periodic reward execution
	if cfg.SchedulerEnabled {
		var locker gocron.Locker
		if cfg.RedisAddr != "" {
			redisClient, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer closeRedis(redisClient)
			// The lock outlives a slow pass by one interval at most
			locker = infrastructure.NewRedisLocker(redisClient, 2*cfg.RewardRunInterval)
		}

		scheduler := application.NewRewardScheduler(executionService, cfg.RewardRunInterval, locker)
		stop, err := scheduler.Start(ctx)
		if err != nil {
			return err
		}
		defer stop()
	} else {
		log.Info("Reward scheduler disabled, run process-rewards to execute due rewards")
	}

	// HTTP API
	router := api.NewRouter(api.RouterConfig{
		Handler:     api.NewHandler(requestService, profileService),
		Users:       userService,
		JWTSecret:   []byte(cfg.JWTSecret),
		HealthCheck: db.HealthCheck,
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	log.Infof("Rewarder is running in %s mode", cfg.Environment)
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Shutdown completed")
	return nil
}

// SetupLogging configures the global logger from cfg
func SetupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("Error closing Redis client")
	}
}
