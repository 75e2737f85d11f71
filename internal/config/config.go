package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"production"`

	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// Managed auth service (Supabase GoTrue).
	SupabaseURL     string `envconfig:"SUPABASE_URL" required:"true"`
	SupabaseAnonKey string `envconfig:"SUPABASE_ANON_KEY" required:"true"`
	JWTSecret       string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`

	// LLM settings. The API key may be provided directly or fetched from
	// Secret Manager when AnthropicKeySecretName is set.
	AnthropicAPIKey        string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicKeySecretName string `envconfig:"ANTHROPIC_API_KEY_SECRET_NAME"`
	LLMTimeoutSec          int    `envconfig:"LLM_TIMEOUT_SEC" default:"25"`

	// Usage limiter settings.
	ReportLimit        int  `envconfig:"REPORT_LIMIT" default:"30"`
	EnforceReportLimit bool `envconfig:"ENFORCE_REPORT_LIMIT" default:"true"`

	// Comma-separated list of allowed CORS origins. Localhost origins are
	// appended automatically in development.
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS"`

	// Telemetry settings (optional).
	GCPProjectID     string `envconfig:"GCP_PROJECT_ID"`
	UsageEventsTopic string `envconfig:"USAGE_EVENTS_TOPIC"`

	// Export archive settings (optional, S3-compatible storage).
	S3URL       string `envconfig:"S3_URL"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the app runs with relaxed CORS and debug
// error detail.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// CORSOrigins returns the configured allow-list, with localhost origins
// appended in development.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if c.IsDevelopment() {
		origins = append(origins,
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		)
	}
	return origins
}

// ArchiveEnabled reports whether exported PDFs should be uploaded to the
// configured S3-compatible bucket.
func (c *Config) ArchiveEnabled() bool {
	return c.S3URL != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
