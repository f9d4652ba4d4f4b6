package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/raymond0208/CashCatalyst/src/config"
	"github.com/raymond0208/CashCatalyst/src/database"
	"github.com/raymond0208/CashCatalyst/src/handlers"
	"github.com/raymond0208/CashCatalyst/src/llm"
	"github.com/raymond0208/CashCatalyst/src/logger"
	"github.com/raymond0208/CashCatalyst/src/processors"
	"github.com/raymond0208/CashCatalyst/src/security"
	"github.com/raymond0208/CashCatalyst/src/services"
	"github.com/raymond0208/CashCatalyst/src/taxonomy"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("CashCatalyst backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	tax := taxonomy.New(config.Cfg.InterestPaidPolicy)
	classifier := taxonomy.NewClassifier(tax)
	totalsProcessor := processors.NewTotalsProcessor(tax)
	metricsProcessor := processors.NewMetricsProcessor()
	forecastProcessor := processors.NewForecastProcessor()

	var narrativeClient llm.NarrativeClient
	if config.Cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(context.Background(), config.Cfg.GeminiAPIKey, config.Cfg.NarrativeModel)
		if err != nil {
			logger.L.Error("Failed to initialize narrative client", "error", err)
			os.Exit(1)
		}
		narrativeClient = client
	} else {
		logger.L.Warn("GEMINI_API_KEY not set; analysis endpoints will report the service as unconfigured")
		narrativeClient = llm.UnconfiguredClient{}
	}

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	transactionService := services.NewTransactionService(totalsProcessor, classifier, reportCache)
	uploadService := services.NewUploadService(classifier)
	analyticsService := services.NewAnalyticsService(
		transactionService, metricsProcessor, forecastProcessor,
		narrativeClient, reportCache,
		config.Cfg.NarrativeMaxTokens, config.Cfg.BurnRateMonths, config.Cfg.NarrativeTimeout,
	)
	exportService := services.NewExportService(transactionService)

	userHandler := handlers.NewUserHandler(authService, emailService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	balanceHandler := handlers.NewBalanceHandler(transactionService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	exportHandler := handlers.NewExportHandler(exportService)
	handlers.InitializeGoogleOAuthConfig()

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public routes. The CSRF token and email verification arrive by GET.
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	csrfProtection := handlers.CSRFMiddleware()

	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("GET /api/transactions", applyCsrfAndAuth(transactionHandler.HandleList))
	apiRouter.Handle("POST /api/transactions", applyCsrfAndAuth(transactionHandler.HandleCreate))
	apiRouter.Handle("POST /api/transactions/bulk", applyCsrfAndAuth(transactionHandler.HandleBulkCreate))
	apiRouter.Handle("PUT /api/transactions/{id}", applyCsrfAndAuth(transactionHandler.HandleUpdate))
	apiRouter.Handle("DELETE /api/transactions/all", applyCsrfAndAuth(transactionHandler.HandleDeleteAll))
	apiRouter.Handle("DELETE /api/transactions/{id}", applyCsrfAndAuth(transactionHandler.HandleDelete))

	apiRouter.Handle("GET /api/balance", applyCsrfAndAuth(balanceHandler.HandleGetBalance))
	apiRouter.Handle("POST /api/balance/initial", applyCsrfAndAuth(balanceHandler.HandleSetInitialBalance))
	apiRouter.Handle("POST /api/balance/by-date", applyCsrfAndAuth(balanceHandler.HandleBalanceByDate))
	apiRouter.Handle("GET /api/balance/monthly", applyCsrfAndAuth(balanceHandler.HandleMonthlyBalances))

	apiRouter.Handle("POST /api/upload", applyCsrfAndAuth(uploadHandler.HandleUpload))
	apiRouter.Handle("GET /api/export/csv", applyCsrfAndAuth(exportHandler.HandleExportCSV))
	apiRouter.Handle("GET /api/export/excel", applyCsrfAndAuth(exportHandler.HandleExportExcel))

	apiRouter.Handle("GET /api/analytics/forecast", applyCsrfAndAuth(analyticsHandler.HandleForecast))
	apiRouter.Handle("GET /api/analytics/statement", applyCsrfAndAuth(analyticsHandler.HandleStatement))

	rootMux.Handle("/api/", apiRouter)
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "CashCatalyst backend is running"})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 30)
	finalHandler := handlers.CORSMiddleware(handlers.RateLimitMiddleware(limiter)(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // forecast responses wait on the model call
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
