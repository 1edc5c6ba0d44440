package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/ProgramacionCECADE/kiosk-assistant/internal/api/router"
	"github.com/ProgramacionCECADE/kiosk-assistant/internal/assistant"
	appconfig "github.com/ProgramacionCECADE/kiosk-assistant/internal/config"
	"github.com/ProgramacionCECADE/kiosk-assistant/internal/http/handlers"
	"github.com/ProgramacionCECADE/kiosk-assistant/internal/kioskchat"
	"github.com/ProgramacionCECADE/kiosk-assistant/internal/observability/metrics"
	"github.com/ProgramacionCECADE/kiosk-assistant/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting kiosk-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistantMetrics := metrics.NewAssistantMetrics(nil)

	// LLM providers: Gemini primary, Bedrock secondary when configured.
	var llm assistant.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		llm = gemini

		if cfg.BedrockModelID != "" {
			awsCfg, err := loadAWSConfig(ctx, cfg)
			if err != nil {
				logger.Error("failed to load AWS config", "error", err)
				os.Exit(1)
			}
			bedrock := assistant.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			llm = assistant.NewFallbackLLMClient(gemini, modelPinned{bedrock, cfg.BedrockModelID}, logger.Logger)
		}
	} else {
		logger.Warn("no GEMINI_API_KEY configured, running in heuristic-only mode")
	}

	// Session persistence: optional, in-memory state stays authoritative.
	var persistence assistant.Persistence
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, sessions will not be persisted", "error", err)
		} else {
			persistence = assistant.NewRedisSessionStore(redisClient)
		}
	}

	// Long-term summary archive: optional.
	var archive assistant.Archiver
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Warn("failed to open archive database", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			if a := assistant.NewSummaryArchive(db); a != nil {
				archive = a
			}
		}
	}

	store := assistant.NewContextStore(assistant.StoreConfig{
		MaxShortTermMessages: cfg.MaxShortTermMessages,
		RetentionDays:        cfg.ContextRetentionDays,
		CleanupInterval:      cfg.CleanupInterval,
		CompressionThreshold: cfg.CompressionThreshold,
		LevelConfidenceGate:  cfg.LevelConfidenceGate,
	}, persistence, archive, logger, assistantMetrics)
	if err := store.Hydrate(ctx); err != nil {
		logger.Warn("failed to hydrate sessions", "error", err)
	}
	store.StartCleanup(ctx)

	analyzer := assistant.NewAnalyzer(llm, logger, assistantMetrics)
	sentiment := assistant.NewSentimentAnalyzer(llm, cfg.SentimentCacheTTL, logger, assistantMetrics)
	matcher := assistant.NewMatcher(assistant.DefaultCatalog(), cfg.MatchThreshold)
	service := assistant.NewService(store, analyzer, sentiment, matcher, llm, logger, assistantMetrics)

	assistantHandler := handlers.NewAssistantHandler(service, logger)
	chatHandler := kioskchat.NewHandler(service, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		AssistantHandler:   assistantHandler,
		ChatHandler:        chatHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// loadAWSConfig centralizes AWS SDK initialization, including the endpoint
// override used against LocalStack in development.
func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}

// modelPinned fixes the model id on every request so the fallback provider
// can share the generic LLMRequest shape.
type modelPinned struct {
	client  assistant.LLMClient
	modelID string
}

func (m modelPinned) Complete(ctx context.Context, req assistant.LLMRequest) (assistant.LLMResponse, error) {
	req.Model = m.modelID
	return m.client.Complete(ctx, req)
}
