package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finwise/finwise-backend/internal/ai"
	"github.com/finwise/finwise-backend/internal/config"
	"github.com/finwise/finwise-backend/internal/handler"
	"github.com/finwise/finwise-backend/internal/jobs/inmemory"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/repository/postgres"
	"github.com/finwise/finwise-backend/internal/repository/storage"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Attachment storage is optional: without it only the receipt endpoints
	// degrade, never the ledger core.
	var attachments storage.AttachmentRepository
	if cfg.S3.Configured() {
		attachmentRepo, err := storage.NewS3AttachmentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Attachment storage unavailable; receipt endpoints disabled")
		} else {
			attachments = attachmentRepo
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage enabled")
		}
	} else {
		log.Info().Msg("Attachment storage disabled (no S3 credentials)")
	}

	// Gemini client; nil when no API key is configured. The interface vars
	// stay nil in that case so the advisory paths degrade cleanly.
	aiClient, err := ai.NewClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI client")
	}
	var (
		categorizer     ai.Categorizer
		insightWriter   ai.InsightWriter
		statementParser ai.StatementParser
		receiptAnalyzer ai.ReceiptAnalyzer
	)
	if aiClient != nil {
		categorizer = aiClient
		insightWriter = aiClient
		statementParser = aiClient
		receiptAnalyzer = aiClient
		log.Info().Msg("AI advisory features enabled")
	} else {
		log.Info().Msg("AI advisory features disabled (no API key)")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	summaryRepo := postgres.NewSummaryRepository(pool)
	recommendationRepo := postgres.NewSavingsRecommendationRepository(pool)
	planRepo := postgres.NewInvestmentPlanRepository(pool)
	anomalyRepo := postgres.NewAnomalyWarningRepository(pool)
	reportRepo := postgres.NewAIReportRepository(pool)

	// Advisory job queue
	queue := inmemory.NewQueue(0, 0)

	// Initialize services
	summaryService := service.NewSummaryService(userRepo, transactionRepo, summaryRepo)
	transactionService := service.NewTransactionService(userRepo, transactionRepo, summaryService, queue, log.Logger)
	statementService := service.NewStatementService(statementParser, transactionService, log.Logger)
	receiptService := service.NewReceiptService(attachments, receiptAnalyzer, log.Logger)
	savingsService := service.NewSavingsService(recommendationRepo)
	investmentService := service.NewInvestmentService(planRepo, cfg.Planner)
	advisoryService := service.NewAdvisoryService(transactionRepo, summaryRepo, anomalyRepo, reportRepo, categorizer, insightWriter, log.Logger)

	if err := queue.Start(context.Background(), advisoryService.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start advisory queue")
	}

	// Initialize handlers
	transactionHandler := handler.NewTransactionHandler(transactionService)
	statementHandler := handler.NewStatementHandler(statementService)
	receiptHandler := handler.NewReceiptHandler(receiptService, transactionService)
	summaryHandler := handler.NewSummaryHandler(summaryService)
	savingsHandler := handler.NewSavingsHandler(savingsService)
	investmentHandler := handler.NewInvestmentHandler(investmentService)
	advisoryHandler := handler.NewAdvisoryHandler(advisoryService)

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.UserIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())

	handler.RegisterRoutes(e, rateLimiter, transactionHandler, statementHandler, receiptHandler, summaryHandler, savingsHandler, investmentHandler, advisoryHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Drain pending advisory jobs before exit
	if err := queue.Stop(ctx); err != nil {
		log.Warn().Err(err).Msg("Advisory queue did not drain cleanly")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
