package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/clock"
	"taskboard/backend/internal/config"
	"taskboard/backend/internal/database"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/monitoring"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := connectRedis(cfg)
	cacheInstance := buildCache(redisClient)

	taskService := services.NewCachedTaskService(
		services.NewTaskService(clock.System()),
		cacheInstance,
	)
	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService()

	registerHealthChecks(db, redisClient)

	router := buildRouter(cfg, db, taskService, authService, registerService)

	var tokenWorker *worker.Worker
	if redisClient != nil {
		tokenWorker = startTokenCleanupWorker(cfg, db, redisClient)
	}

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if tokenWorker != nil {
		tokenWorker.Stop()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server stopped")
}

// connectRedis returns nil when Redis is unreachable; the server then runs
// with the in-memory cache only and without the background worker.
func connectRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
		client.Close()
		return nil
	}

	return client
}

func buildCache(redisClient *redis.Client) *cache.MultiLevelCache {
	if redisClient == nil {
		return cache.NewMultiLevelCache(nil)
	}
	return cache.NewMultiLevelCache(cache.NewRedisCacheWithClient(redisClient))
}

func registerHealthChecks(db *gorm.DB, redisClient *redis.Client) {
	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	if redisClient != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
}

func buildRouter(
	cfg *config.Config,
	db *gorm.DB,
	taskService services.TaskService,
	authService services.AuthService,
	registerService services.RegisterService,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())
	router.Use(monitoring.MetricsMiddleware())

	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/ready", monitoring.ReadinessHandler())
	router.GET("/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	authHandler := handlers.NewAuthHandler(db, authService)
	registerHandler := handlers.NewRegisterHandler(db, registerService)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", registerHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	tasks := v1.Group("/tasks")
	tasks.Use(middleware.AuthRequired(cfg.Auth))
	tasks.GET("", taskHandler.ListTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/:id", taskHandler.GetTaskByID)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return router
}

// startTokenCleanupWorker runs the expired refresh token purge on a rolling
// schedule: each run enqueues the next one.
func startTokenCleanupWorker(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *worker.Worker {
	queue := worker.NewJobQueue(redisClient)
	queueName := cfg.Worker.Queues[0]

	w := worker.NewWorker(worker.WorkerConfig{
		RedisClient: redisClient,
		Queues:      cfg.Worker.Queues,
	})

	w.RegisterHandler(worker.JobTypeTokenCleanup, func(ctx context.Context, job *worker.Job) error {
		result := db.WithContext(ctx).
			Where("expires_at < ?", time.Now()).
			Delete(&models.Token{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Purged %d expired refresh tokens", result.RowsAffected)
		}

		return queue.EnqueueAt(queueName, worker.JobTypeTokenCleanup, nil,
			time.Now().Add(cfg.Worker.CleanupInterval))
	})

	if err := queue.Enqueue(queueName, worker.JobTypeTokenCleanup, nil); err != nil {
		log.Printf("Failed to enqueue token cleanup job: %v", err)
	}

	w.Start(cfg.Worker.Concurrency)

	return w
}
