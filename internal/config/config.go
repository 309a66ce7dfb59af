package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	GinMode        string
	MongoURI       string
	MongoDatabase  string
	RabbitMQURI    string
	RabbitExchange string
	RedisURI       string
	ConsulAddress  string
	ServiceName    string
	ServiceAddress string
	JWTSecret      string
	AllowOrigins   string
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:           getEnvOrDefault("PORT", "6677"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:       getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnvOrDefault("MONGO_DATABASE", "adaptive_service"),
		RabbitMQURI:    getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", ""),
		RedisURI:       getEnvOrDefault("REDIS_URI", ""),
		ConsulAddress:  getEnvOrDefault("CONSUL_ADDRESS", ""),
		ServiceName:    getEnvOrDefault("SERVICE_NAME", "adaptive-service"),
		ServiceAddress: getEnvOrDefault("SERVICE_ADDRESS", "localhost"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", "your-jwt-secret-key"),
		AllowOrigins:   getEnvOrDefault("ALLOW_ORIGINS", "http://localhost:3000"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
