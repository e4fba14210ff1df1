package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Object storage. When ObjectStoreURL is empty the service falls back to
	// a local filesystem store rooted at StoragePath.
	ObjectStoreURL string
	ObjectStoreKey string
	OutputBucket   string
	StoragePath    string
	PresignTTL     time.Duration
	TenantPrefixes []string

	// Provider credentials. Availability flags are derived from these once at
	// startup and never recomputed per call.
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	VeoModel       string
	KlingAccessKey string
	KlingSecretKey string
	KlingBaseURL   string
	QwenAPIKey     string
	QwenBaseURL    string
	QwenModel      string

	// Prompt enhancement agent.
	EnhancerProvider string
	EnhancerTimeout  time.Duration

	// Status cache tier.
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool
	CacheTTL      time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),

		ObjectStoreURL: os.Getenv("OBJECT_STORE_URL"),
		ObjectStoreKey: os.Getenv("OBJECT_STORE_SERVICE_KEY"),
		OutputBucket:   getEnv("OUTPUT_BUCKET", "creative-brief-generation-output"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		PresignTTL:     time.Second * time.Duration(getEnvInt("PRESIGN_TTL_SECONDS", 3600)),
		TenantPrefixes: getEnvList("TENANT_PREFIXES", []string{"dfsa", "atlas", "yourbud"}),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:  getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VeoModel:       getEnv("VEO_MODEL", "veo-3.0-generate-preview"),
		KlingAccessKey: os.Getenv("KLING_ACCESS_KEY"),
		KlingSecretKey: os.Getenv("KLING_SECRET_KEY"),
		KlingBaseURL:   getEnv("KLING_BASE_URL", "https://api.klingai.com"),
		QwenAPIKey:     os.Getenv("QWEN_API_KEY"),
		QwenBaseURL:    getEnv("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1"),
		QwenModel:      getEnv("QWEN_MODEL", "qwen-image"),

		EnhancerProvider: getEnv("ENHANCER_PROVIDER", "gemini"),
		EnhancerTimeout:  time.Second * time.Duration(getEnvInt("ENHANCER_TIMEOUT_SECONDS", 15)),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisUseTLS:   getEnvBool("REDIS_USE_TLS", false),
		CacheTTL:      time.Second * time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      getEnvList("CORS_ORIGINS", nil),
	}

	if cfg.ObjectStoreURL != "" && cfg.ObjectStoreKey == "" {
		return nil, fmt.Errorf("OBJECT_STORE_SERVICE_KEY is required when OBJECT_STORE_URL is set")
	}

	if len(cfg.TenantPrefixes) == 0 {
		return nil, fmt.Errorf("TENANT_PREFIXES must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
