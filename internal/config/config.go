package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers supported by the server and seed commands.
const (
	DriverMongo = "mongo"
	DriverMySQL = "mysql"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort   string
	StoreDriver  string
	MongoURI     string
	MongoDB      string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	JWTSecret    string
	SwaggerHost  string
	LogLevel     string
	LogFormat    string
	CORSOrigins  []string
	CookieSecure bool
	ResetDB      bool
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "estate"),
		MySQLDSN:     getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/estate?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:  os.Getenv("SWAGGER_HOST"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		ResetDB:      getEnvBool("RESET_DB", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
