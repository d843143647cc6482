package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envDevelopment = "development"

type Config struct {
	Port string
	Env  string

	PostgresConnStr string
	MongoURI        string
	MongoDatabase   string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NATSURL     string
	NATSSubject string

	FirebaseCredentialsPath string
	FCMEnabled              bool

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string

	RateLimitPerMinute int

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", envDevelopment),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "socialmedia"),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		JWTTTL:                  getEnvDuration("JWT_TTL", 72*time.Hour),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		NATSURL:                 getEnv("NATS_URL", ""),
		NATSSubject:             getEnv("NATS_SUBJECT", "notifications"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FCMEnabled:              getEnvBool("FCM_ENABLED", false),
		S3Endpoint:              getEnv("S3_ENDPOINT", ""),
		S3Region:                getEnv("S3_REGION", "auto"),
		S3Bucket:                getEnv("S3_BUCKET", ""),
		S3AccessKey:             getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:             getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL:         getEnv("S3_PUBLIC_BASE_URL", ""),
		RateLimitPerMinute:      getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPath:                 getEnv("LOG_PATH", ""),
		LogMaxSizeMB:            getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups:           getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:           getEnvInt("LOG_MAX_AGE_DAYS", 7),
	}

	if cfg.PostgresConnStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET must be set when ENV=%s", cfg.Env)
		}
		cfg.JWTSecret = "supersecretjwtkey"
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == envDevelopment
}

// MediaEnabled reports whether an object store is configured for uploads.
func (c *Config) MediaEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
