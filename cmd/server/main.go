package main

import (
	"context"                        // context package is needed for Redis operations
	"log"                            // log package is needed for logging
	"needledrop/internal/api"        // Custom package for API handlers
	"needledrop/internal/config"     // Custom package for configuration
	catalogdb "needledrop/internal/db" // Schema migration and demo seeding
	"needledrop/internal/middleware" // Custom package for middleware
	"needledrop/internal/service"    // Album and song services

	// For loading .env files
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

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Load demo catalog fixtures when requested
	if cfg.SeedData {
		if err := catalogdb.Seed(db); err != nil {
			logrus.Fatalf("failed to seed demo catalog: %v", err)
		}
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	albumService := service.NewAlbumService(db) // Album lifecycle and search
	songService := service.NewSongService(db)   // Song management

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(db))          // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Public catalog read routes
	r.GET("/albums", api.GetAlbumsHandler(albumService, redisClient))                   // List all albums
	r.GET("/albums/:id", api.GetAlbumHandler(albumService, redisClient))                // Album by id
	r.GET("/albums/:id/songs", api.GetSongsByAlbumHandler(songService, redisClient))    // Songs of an album
	r.GET("/users/:userId/albums", api.GetAlbumsByUserHandler(albumService))            // Albums by owner
	r.GET("/search/albums", api.SearchAlbumsHandler(albumService))                      // Free-text search
	r.GET("/search/albums/advanced", api.AdvancedSearchHandler(albumService))           // Combined filters
	r.GET("/search/albums/genre/:genre", api.GetAlbumsByGenreHandler(albumService))     // Exact genre filter
	r.GET("/search/albums/artist/:artist", api.GetAlbumsByArtistHandler(albumService))  // Exact artist filter
	r.GET("/search/albums/year-range", api.GetAlbumsByYearRangeHandler(albumService))   // Inclusive year range
	r.GET("/songs", api.GetSongsHandler(songService))                                   // List all songs
	r.GET("/songs/:id", api.GetSongHandler(songService))                                // Song by id

	// Catalog write routes (protected by JWT)
	authGroup := r.Group("")
	// Protect write routes with JWT middleware and inject Redis client into context
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	authGroup.GET("/my-albums", api.GetMyAlbumsHandler(albumService))        // Caller's own albums
	authGroup.POST("/albums", api.CreateAlbumHandler(albumService))          // Create album endpoint
	authGroup.PUT("/albums/:id", api.UpdateAlbumHandler(albumService))       // Merge-patch update endpoint
	authGroup.DELETE("/albums/:id", api.DeleteAlbumHandler(albumService))    // Cascading delete endpoint
	authGroup.POST("/albums/:id/songs", api.CreateSongHandler(songService))  // Add song to album endpoint
	authGroup.PUT("/songs/:id", api.UpdateSongHandler(songService))          // Update song endpoint
	authGroup.DELETE("/songs/:id", api.DeleteSongHandler(songService))       // Delete song endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, albumService, redisClient)) // List users endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
