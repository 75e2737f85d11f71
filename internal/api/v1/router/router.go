package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"complipilot/internal/api/v1/handler"
	"complipilot/internal/config"
	"complipilot/internal/middleware"
	"complipilot/internal/pdf"
	"complipilot/internal/pubsub"
	"complipilot/internal/repository"
	"complipilot/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// toolkitIconURL is the icon drawn in exported PDF headers.
const toolkitIconURL = "https://complipilot.app/assets/toolkit-icon.png"

// New builds the API router and every long-lived dependency behind it. The
// returned DB handle is owned by the caller and closed at shutdown.
func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *sql.DB, error) {
	// 1. Open DB connection (connection pooling)
	db, err := sql.Open("pgx", dsnWithDefaults(cfg))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open DB connection")
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		logger.Error().Err(err).Msg("Failed to ping DB")
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// Pool limits sized for short-lived execution environments.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 2. Resolve the LLM API key, optionally through Secret Manager.
	llmKey := cfg.AnthropicAPIKey
	if llmKey == "" && cfg.AnthropicKeySecretName != "" {
		loader, err := service.NewSecretLoader(context.Background(), cfg.GCPProjectID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create secret loader")
			return nil, nil, err
		}
		llmKey, err = loader.LoadSecret(context.Background(), cfg.AnthropicKeySecretName)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load LLM API key from Secret Manager")
			return nil, nil, err
		}
		_ = loader.Close()
	}

	// 3. Optional S3 client for the export archive.
	var s3Client *s3.Client
	if cfg.ArchiveEnabled() {
		s3Config, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.S3Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
			awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
		)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load S3 config")
			return nil, nil, err
		}
		s3Client = s3.NewFromConfig(s3Config, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		})
	}

	// 4. Optional Pub/Sub publisher for usage telemetry.
	var publisher pubsub.Publisher
	if cfg.GCPProjectID != "" && cfg.UsageEventsTopic != "" {
		p, err := pubsub.NewPublisher(context.Background(), cfg.GCPProjectID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create Pub/Sub publisher")
			return nil, nil, err
		}
		publisher = p
	}

	// 5. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 6. Initialize repositories & services & handlers
	usageRepo := repository.NewUsageRepo(db)
	reportRepo := repository.NewReportRepo(db)

	usageSvc := service.NewUsageService(usageRepo, cfg.ReportLimit, cfg.EnforceReportLimit, logger)
	reportSvc := service.NewReportService(reportRepo, logger)
	generateSvc := service.NewGenerateService(
		service.NewAnthropicClient(llmKey),
		time.Duration(cfg.LLMTimeoutSec)*time.Second,
		logger,
	)
	authSvc := service.NewAuthService(cfg.SupabaseURL, cfg.SupabaseAnonKey, logger)
	exportSvc := service.NewExportService(pdf.NewExporter(toolkitIconURL, logger), s3Client, cfg.S3Bucket, logger)

	debug := cfg.IsDevelopment()
	healthHandler := handler.NewHealthHandler(db, debug, logger)
	authHandler := handler.NewAuthHandler(authSvc, validate, debug, logger)
	generateHandler := handler.NewGenerateHandler(generateSvc, usageSvc, publisher, cfg.UsageEventsTopic, validate, debug, logger)
	usageHandler := handler.NewUsageHandler(usageSvc, debug, logger)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc, validate, debug, logger)

	// 7. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	// 8. Route table. Every route is an explicit (method, pattern) pair; no
	// suffix matching.
	apiMux := http.NewServeMux()
	healthHandler.RegisterRoutes(apiMux)
	authHandler.RegisterRoutes(apiMux)
	generateHandler.RegisterRoutes(apiMux)
	usageHandler.RegisterRoutes(apiMux)
	reportHandler.RegisterRoutes(apiMux, authMiddleware)

	mux := mountAPI(apiMux)

	// 9. Apply CORS middleware: single shared policy for every route.
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux)), db, nil
}

// mountAPI places the route table under /api and wires the JSON 404
// fallbacks. The fallback is registered on both muxes: the inner one catches
// unknown /api/* paths, the outer one everything else, so no request ever
// reaches a ServeMux default plain-text response.
func mountAPI(apiMux *http.ServeMux) *http.ServeMux {
	apiMux.HandleFunc("/", notFoundJSON)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))
	mux.HandleFunc("/", notFoundJSON)
	return mux
}

func notFoundJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"not found"}`))
}

// dsnWithDefaults appends the environment-dependent connection options the
// deployment needs: sslmode=disable for local development, simple protocol
// for transaction poolers like pgbouncer in everything else.
func dsnWithDefaults(cfg *config.Config) string {
	dsn := cfg.DBConnectionString
	if cfg.IsDevelopment() {
		if !strings.Contains(dsn, "sslmode") {
			dsn += dsnSeparator(dsn) + "sslmode=disable"
		}
		return dsn
	}
	if !strings.Contains(dsn, "prefer_simple_protocol") {
		dsn += dsnSeparator(dsn) + "prefer_simple_protocol=true"
	}
	return dsn
}

func dsnSeparator(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return "&"
		}
		return "?"
	}
	return " "
}

// removeDisableGzip is a workaround for S3 signature errors with some
// S3-compatible services. See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
