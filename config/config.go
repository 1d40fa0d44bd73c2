package config

import (
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the store monitor service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Connection pool
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	DBPingMaxWaitSec     int

	// Server configuration
	Port string

	// RabbitMQ configuration, report events are not published when AMQPURL is empty
	AMQPURL                  string
	RabbitMQExchange         string
	RabbitMQReportRoutingKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables, reading .env first when present
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to read .env file: %v", err)
	}

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "store_monitor"),

		DBMaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetimeMin: getIntEnv("DB_CONN_MAX_LIFETIME_MIN", 5),
		DBPingMaxWaitSec:     getIntEnv("DB_PING_MAX_WAIT_SEC", 60),

		Port: getEnv("PORT", "8080"),

		AMQPURL:                  getEnv("AMQP_URL", ""),
		RabbitMQExchange:         getEnv("RABBITMQ_EXCHANGE", "store-monitor"),
		RabbitMQReportRoutingKey: getEnv("RABBITMQ_REPORT_ROUTING_KEY", "report.finished"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets a positive integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
