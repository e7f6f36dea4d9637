package config

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"time"
)

type DB struct {
	DbHOST       string
	DbPORT       string
	DbUSER       string
	DbPASSWORD   string
	DbNAME       string
	DbSSLMODE    string
	DbMIGRATIONS string
}

type MinIO struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketName      string
	UseSSL          bool
	Region          string
	PhotoRoot       string
	DownloadTimeout time.Duration
}

type Cache struct {
	Dir       string
	MaxImages int
}

type Jobs struct {
	RankingInterval time.Duration
	SweepInterval   time.Duration
	IngestInterval  time.Duration
	Workers         int
}

type Config struct {
	ServerPort           int
	DB                   DB
	MinIO                MinIO
	Cache                Cache
	Jobs                 Jobs
	JWTSecretKey         string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "imagetinder"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
		DbMIGRATIONS: getEnv("DB_MIGRATIONS",
			"migrations/001_create_tables.sql"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:       getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:       getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName:      getEnv("MINIO_BUCKET_NAME", "photos"),
		UseSSL:          getEnvBool("MINIO_USE_SSL", false),
		Region:          getEnv("MINIO_REGION", "us-east-1"),
		PhotoRoot:       getEnv("MINIO_PHOTO_ROOT", "Photos/"),
		DownloadTimeout: parseDuration(getEnv("MINIO_DOWNLOAD_TIMEOUT", "30s"), 30*time.Second),
	}
}

func LoadCache() Cache {
	return Cache{
		Dir:       getEnv("CACHE_DIR", "./Cache"),
		MaxImages: getEnvAsInt("CACHE_MAX_IMAGES", 200),
	}
}

func LoadJobs() Jobs {
	return Jobs{
		RankingInterval: parseDuration(getEnv("RANKING_INTERVAL", "24h"), 24*time.Hour),
		SweepInterval:   parseDuration(getEnv("SWEEP_INTERVAL", "24h"), 24*time.Hour),
		IngestInterval:  parseDuration(getEnv("INGEST_INTERVAL", "24h"), 24*time.Hour),
		Workers:         getEnvAsInt("JOB_WORKERS", 4),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		ServerPort:           getEnvAsInt("SERVER_PORT", 8080),
		DB:                   LoadDB(),
		MinIO:                LoadMinIO(),
		Cache:                LoadCache(),
		Jobs:                 LoadJobs(),
		JWTSecretKey:         getEnv("JWT_SECRET_KEY", ""),
		AccessTokenDuration:  parseDuration(getEnv("ACCESS_TOKEN_DURATION", "2h"), 2*time.Hour),
		RefreshTokenDuration: parseDuration(getEnv("REFRESH_TOKEN_DURATION", "168h"), 168*time.Hour),
	}
}
