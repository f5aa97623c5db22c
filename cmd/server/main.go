package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleanbook/scheduler-backend/internal/config"
	"github.com/cleanbook/scheduler-backend/internal/database"
	"github.com/cleanbook/scheduler-backend/internal/handlers"
	"github.com/cleanbook/scheduler-backend/internal/middleware"
	"github.com/cleanbook/scheduler-backend/internal/services"
	"github.com/cleanbook/scheduler-backend/pkg/jwt"
	"github.com/cleanbook/scheduler-backend/pkg/validator"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting CleanBook scheduler backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     version,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("Sentry error reporting enabled")
	}

	// Initialize database connection
	logger.WithField("driver", cfg.Database.Driver).Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := database.CreateSchema(startupCtx, db); err != nil {
			logger.Fatalf("Failed to create schema: %v", err)
		}
		logger.Info("Database schema is up to date")
	}

	// Initialize repositories
	bookingRepo := database.NewBookingRepository(db)
	assignmentRepo := database.NewAssignmentRepository(db)
	employeeRepo := database.NewEmployeeRepository(db)
	customerRepo := database.NewCustomerRepository(db)
	roleRepo := database.NewRoleRepository(db)
	identityRepo := database.NewIdentityRepository(db)
	loginAttemptRepo := database.NewLoginAttemptRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	passwordPolicy := validator.DefaultPasswordPolicy()
	passwordPolicy.MinLength = cfg.Security.PasswordMinLength

	identityService := services.NewIdentityService(identityRepo, passwordPolicy, cfg.Security.BcryptCost)
	assignmentService := services.NewAssignmentService(db, bookingRepo, assignmentRepo, employeeRepo, logger)
	bookingService := services.NewBookingService(db, bookingRepo, customerRepo, assignmentRepo, assignmentService, logger)
	customerService := services.NewCustomerService(db, customerRepo, bookingRepo, logger)
	employeeService := services.NewEmployeeService(db, employeeRepo, roleRepo, assignmentRepo, identityService, logger)
	visibilityService := services.NewVisibilityService(bookingRepo, assignmentRepo, employeeRepo, identityService, logger)
	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfigFrom(cfg.RateLimit))
	authService := services.NewAuthService(identityService, visibilityService, rateLimitService, jwtService, logger)

	bootstrap := services.NewBootstrapService(roleRepo, identityService, employeeService, logger)
	if err := bootstrap.EnsureRoles(startupCtx); err != nil {
		logger.Fatalf("Failed to seed roles: %v", err)
	}
	if err := bootstrap.EnsureAdmin(startupCtx, cfg.Seed); err != nil {
		logger.Fatalf("Failed to seed administrator: %v", err)
	}

	cronService := services.NewCronService(rateLimitService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	logger.Info("Services initialized")

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger),
		Bookings:  handlers.NewBookingHandler(bookingService, assignmentService, visibilityService, logger),
		Customers: handlers.NewCustomerHandler(customerService, bookingService, logger),
		Employees: handlers.NewEmployeeHandler(employeeService, logger),
	}, middleware.AuthMiddleware(jwtService, visibilityService, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// requestLogger logs each request with its status and latency. The caller
// is added when the auth middleware resolved one.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
			"has_auth":   c.GetHeader("Authorization") != "",
		}

		if caller, ok := middleware.GetCaller(c); ok {
			fields["account_id"] = caller.AccountID
			fields["employee_id"] = caller.EmployeeID
			fields["roles"] = caller.Roles
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler reports whether the store is reachable
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
