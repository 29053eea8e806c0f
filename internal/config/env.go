package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	AIAPIKey       string
	EmbedModel     string
	EmbedDim       int
	GenModel       string
	JWTSecret      string
	Port           string
	AllowedOrigins []string

	// SopCharBudget is the canonical per-document truncation cap applied to
	// every SOP section before it enters the prompt.
	SopCharBudget int

	// KnowledgeTimeoutMs bounds the semantic lookup race; an elapsed timeout
	// degrades the lookup to an empty snippet.
	KnowledgeTimeoutMs int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		AwsAccessKey:       getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:       getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:          getEnv("AWS_REGION", "us-east-2"),
		BucketName:         getEnv("BUCKET_NAME", "spediak-sop-docs"),
		AIAPIKey:           getEnv("GEMINI_API_KEY", ""),
		EmbedModel:         getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:           getEnvInt("EMBED_DIM", 768),
		GenModel:           getEnv("GEN_MODEL", "gemini-1.5-flash"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006"),
		SopCharBudget:      getEnvInt("SOP_CHAR_BUDGET", 15000),
		KnowledgeTimeoutMs: getEnvInt("KNOWLEDGE_TIMEOUT_MS", 2000),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvList(key, def string) []string {
	raw := getEnv(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
