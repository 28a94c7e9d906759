package main

import (
	"context"   // Context for shutdown and Redis operations
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signal handling
	"os/signal" // Signal handling
	"syscall"   // Signal constants
	"time"      // Timeouts and pool lifetimes

	"inventory_system/internal/api"        // Custom package for API handlers
	"inventory_system/internal/config"     // Custom package for configuration
	"inventory_system/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	// The pool is a process-scoped resource: configure it at startup,
	// release it on shutdown
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to access DB pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)                 // Cap concurrent connections
	sqlDB.SetMaxIdleConns(5)                  // Keep a small idle set
	sqlDB.SetConnMaxLifetime(5 * time.Minute) // Recycle stale connections

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Allow cross-origin requests from browser frontends
	r.Use(cors.Default())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db))          // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Public inventory listing by username (deliberately unauthenticated)
	r.GET("/inventory/:username", api.ListInventoryByUsernameHandler(db, redisClient))

	// Inventory routes (protected by JWT)
	invGroup := r.Group("/inventory")
	// Protect inventory routes with JWT middleware and inject Redis client into context
	invGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	invGroup.POST("", api.CreateItemHandler(db))               // Create item endpoint
	invGroup.GET("", api.ListOwnItemsHandler(db, redisClient)) // List own items endpoint
	invGroup.PUT("/:id", api.UpdateItemHandler(db))            // Update item endpoint
	invGroup.DELETE("/:id", api.DeleteItemHandler(db))         // Delete item endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))        // List users endpoint
	adminGroup.GET("/inventory", api.ListAllItemsHandler(db, redisClient)) // List all items endpoint

	// Run the server and drain it on SIGINT/SIGTERM
	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("server shutdown: %v", err)
	}
	// Release process-scoped resources
	if err := redisClient.Close(); err != nil {
		logrus.Errorf("redis close: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		logrus.Errorf("db close: %v", err)
	}
}
