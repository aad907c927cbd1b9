package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	StoreBackend string
	DB           DBEnv

	JWTSecret   string
	AMQPURL     string
	RedisURL    string
	CacheTTL    time.Duration
	CORSOrigins []string

	NotifyWorkers    int
	NotifyMaxRetries int
	TxMaxRetries     int
}

type DBEnv struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	MaxOpenConns int
}

// DSN renders the go-sql-driver/mysql connection string.
func (d DBEnv) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
	)
}

func LoadEnv() Env {
	storeBackend := strings.ToLower(getEnv("STORE_BACKEND", StoreMySQL))
	if storeBackend != StoreMemory {
		storeBackend = StoreMySQL
	}

	return Env{
		AppAddr:      getEnv("APP_ADDR", ":8080"),
		GinMode:      getEnv("GIN_MODE", ""),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		StoreBackend: storeBackend,
		DB: DBEnv{
			Host:         getEnv("DB_HOST", "127.0.0.1"),
			Port:         getEnvInt("DB_PORT", 3306),
			User:         getEnv("DB_USER", "root"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         getEnv("DB_NAME", "carpool"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		},
		JWTSecret:        getEnv("JWT_SECRET", "change-me"),
		AMQPURL:          getEnv("AMQP_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		CacheTTL:         getEnvDuration("CACHE_TTL", 30*time.Second),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		NotifyWorkers:    getEnvInt("NOTIFY_WORKERS", 2),
		NotifyMaxRetries: getEnvInt("NOTIFY_MAX_RETRIES", 5),
		TxMaxRetries:     getEnvInt("TX_MAX_RETRIES", 3),
	}
}

func getEnv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getEnvInt(key string, def int) int {
	valStr := strings.TrimSpace(os.Getenv(key))
	if valStr == "" {
		return def
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	valStr := strings.TrimSpace(os.Getenv(key))
	if valStr == "" {
		return def
	}
	val, err := time.ParseDuration(valStr)
	if err != nil {
		return def
	}
	return val
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
