package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	LogLevel        string
	DevMode         bool
	CORSAllowOrigin string

	// Capture store
	MaxCaptures int
	CaptureTTL  time.Duration

	// Upload limits
	MaxBodyBytes int64
	UploadRPS    float64
	UploadBurst  int

	// Analysis defaults
	BucketSeconds int

	// Optional TLS server (HTTP/2 enabled by default in net/http)
	TLSAddr     string
	TLSCertFile string
	TLSKeyFile  string
}

func FromEnv() Config {
	cfg := Config{
		Addr:            getEnv("ADDR", ":9095"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
	}
	if os.Getenv("DEV_MODE") == "1" || os.Getenv("DEV_MODE") == "true" {
		cfg.DevMode = true
	}
	cfg.MaxCaptures = getEnvInt("MAX_CAPTURES", 100)
	cfg.CaptureTTL = time.Duration(getEnvInt("CAPTURE_TTL_MINUTES", 120)) * time.Minute
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", 64<<20)) // 64MB
	cfg.UploadRPS = getEnvFloat("UPLOAD_RPS", 2)
	cfg.UploadBurst = getEnvInt("UPLOAD_BURST", 5)
	cfg.BucketSeconds = getEnvInt("BUCKET_SECONDS", 5)
	cfg.TLSAddr = getEnv("TLS_ADDR", "")
	cfg.TLSCertFile = getEnv("TLS_CERT_FILE", "")
	cfg.TLSKeyFile = getEnv("TLS_KEY_FILE", "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
