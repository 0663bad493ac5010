package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is loaded once at startup and passed down explicitly.
type Config struct {
	Port         string
	ClientOrigin string

	StoreDriver string
	MongoURI    string
	MongoDB     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TaskCacheTTL  time.Duration

	JWTSecret    string
	JWTExpiresIn time.Duration
	BcryptCost   int

	LogDir string
}

func LoadConfig() Config {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment")
		}
	}

	clientOrigin := os.Getenv("CLIENT_ORIGIN")
	if clientOrigin == "" {
		clientOrigin = "http://localhost:" + getenv("FE_PORT", "5173")
	}

	return Config{
		Port:         getenv("PORT", "8000"),
		ClientOrigin: clientOrigin,

		StoreDriver: getenv("STORE_DRIVER", DriverMongo),
		MongoURI:    getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGO_DB", "simple_todo"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		TaskCacheTTL:  getenvDuration("TASK_CACHE_TTL", 5*time.Minute),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTExpiresIn: getenvDuration("JWT_EXPIRES_IN", 2*time.Hour),
		BcryptCost:   getenvInt("BCRYPT_COST", 10),

		LogDir: getenv("LOG_DIR", "logs"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
