package config

import (
	"os"
	"time"
)

type Config struct {
	// Database. When neither DATABASE_URL nor DB_PASSWORD is set the server
	// falls back to the in-memory store.
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// AI provider (bad-faith scorer + assist routes)
	OpenAIAPIKey string
	OpenAIAPIURL string
	OpenAIModel  string
	AITimeout    time.Duration

	// Email provider
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	NotifyEmail  string

	// Tenancy
	DefaultTenant string

	// Server
	Port        string
	CORSOrigins string
	UploadDir   string
	AppEnv      string
}

func Load() *Config {
	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "ohisee_db"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 168*time.Hour),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL: getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "no-reply@ohisee.app"),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),

		DefaultTenant: getEnv("DEFAULT_TENANT", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		AppEnv:      getEnv("APP_ENV", "development"),
	}
}

// HasDatabase reports whether a relational backend is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != "" || c.DBPassword != ""
}

// HasSMTP reports whether the email provider is configured. Notifications are
// skipped entirely when it is not.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != ""
}

// HasAI reports whether the language-model provider is configured. The scorer
// and assist routes use stub behavior when it is not.
func (c *Config) HasAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
