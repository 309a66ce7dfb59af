package main

import (
	"context"
	"log"
	"strings"
	"time"

	"adaptive-service/internal/config"
	"adaptive-service/internal/db"
	"adaptive-service/internal/event"
	"adaptive-service/internal/handlers"
	"adaptive-service/internal/metrics"
	"adaptive-service/internal/middleware"
	"adaptive-service/internal/repository"
	"adaptive-service/internal/selection"
	"adaptive-service/internal/service"
	"adaptive-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	gin.SetMode(cfg.GinMode)

	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := repository.NewStore(ctx, db.Client, database)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQURI != "" && cfg.RabbitExchange != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitMQURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, adaptive events will not be published")
	}

	// Redis-backed rate limiting
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		opt, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		redisClient = redis.NewClient(opt)
	} else {
		log.Println("Redis not configured, rate limiting disabled")
	}

	// Consul service registration
	if cfg.ConsulAddress != "" {
		registry, err := discovery.NewServiceRegistry(cfg)
		if err != nil {
			log.Fatalf("Failed to create Consul client: %v", err)
		}
		if err := registry.Register(); err != nil {
			log.Fatalf("Failed to register with Consul: %v", err)
		}
		defer registry.Deregister()
	}

	practiceService := service.NewPracticeService(store, selection.NewSelector())
	adaptiveHandler := handlers.NewAdaptiveHandler(practiceService)
	masteryHandler := handlers.NewMasteryHandler(practiceService)
	healthHandler := handlers.NewHealthHandler(store.Provisioned())

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(metrics.Observe())

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", metrics.Handler())

	protected := r.Group("/protected/adaptive")
	protected.Use(middleware.Auth())
	protected.Use(middleware.RateLimit(redisClient, 60, time.Minute))
	{
		protected.GET("/next", func(c *gin.Context) {
			adaptiveHandler.NextQuestion(c)
			if publisher != nil {
				publisher.Publish("adaptive.question.served", gin.H{
					"user_id":   c.GetString("user_id"),
					"quiz_id":   c.Query("quiz_id"),
					"timestamp": time.Now(),
				})
			}
		})

		protected.POST("/record", func(c *gin.Context) {
			adaptiveHandler.RecordAnswer(c)
			if publisher != nil {
				publisher.Publish("adaptive.answer.recorded", gin.H{
					"user_id":   c.GetString("user_id"),
					"timestamp": time.Now(),
				})
			}
		})

		protected.GET("/mastery/:topic", masteryHandler.GetMastery)
		protected.GET("/history", masteryHandler.GetHistory)
	}

	r.Run(":" + cfg.Port)
}
