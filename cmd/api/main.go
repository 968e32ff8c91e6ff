package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "invoicing/api/swagger" // swagger docs
	"invoicing/internal/app"
	"invoicing/internal/config"
	"invoicing/internal/handler"
	"invoicing/internal/logger"
	"invoicing/internal/middleware"
	"invoicing/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

// @title           Recurring Invoices API
// @version         1.0
// @description     Recurring invoice templates and the scheduled draft invoice run.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey CronSecret
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	application, err := app.New(ctx, cfg, wsHub)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Warn().Err(err).Msg("Shutdown cleanup failed")
		}
	}()
	log.Info().Bool("redis_lock", application.Redis != nil).Msg("Connected to PostgreSQL successfully.")

	jwtSecret := []byte(cfg.JwtSecret)
	auth := middleware.RequireMembership(application.Members, jwtSecret)

	// Initialize Handlers
	recurringHandler := handler.NewRecurringHandler(application.Recurring)
	scheduleHandler := handler.NewScheduleHandler(cfg.Timezone)
	cronHandler := handler.NewCronHandler(application.Scheduler)
	auditHandler := handler.NewAuditHandler(application.Audit)

	// Set up Gin Router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, jwtSecret, application.Members)
	})

	// API Routing
	recurringHandler.RegisterRoutes(router.Group(""), auth)
	scheduleHandler.RegisterRoutes(router.Group(""), auth)
	auditHandler.RegisterRoutes(router.Group(""), auth)
	cronHandler.RegisterRoutes(router.Group(""), cfg.CronSecret)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Msg("Server listening")
	if err := serve(ctx, srv, shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Server failed")
	}
}

// serve runs srv until it fails or ctx is done, then drains open requests for at most
// timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
