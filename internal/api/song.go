package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"needledrop/internal/domain"  // Importing domain models
	"needledrop/internal/service" // Song management
	"needledrop/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client

	"github.com/sirupsen/logrus" // Logging library
)

// GetSongsHandler returns every song in the catalog
func GetSongsHandler(svc *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		songs, err := svc.GetAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch songs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"songs": songs}) // Return song list
	}
}

// GetSongHandler returns a single song by id
func GetSongHandler(svc *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id") // Song id from the path
		if !ok {
			return
		}
		song, err := svc.GetByID(id)
		if err != nil {
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"song": song}) // Return song
	}
}

// GetSongsByAlbumHandler returns all songs belonging to an album
func GetSongsByAlbumHandler(svc *service.SongService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		albumID, ok := parseID(c, "id") // Album id from the path
		if !ok {
			return
		}
		ctx := context.Background()                              // Context for Redis operations
		cacheKey := "songs:album:" + strconv.Itoa(int(albumID))  // Cache key for this track list
		var songs []domain.Song                                  // Slice to hold songs
		found, err := utils.GetCache(ctx, rdb, cacheKey, &songs) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"songs": songs, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		songs, err = svc.GetByAlbumID(albumID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch songs"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, songs, utils.CatalogCacheTTL) // Cache the track list
		c.JSON(http.StatusOK, gin.H{"songs": songs, "cached": false})        // Return song list
	}
}

// CreateSongHandler adds a song to an existing album
func CreateSongHandler(svc *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		albumID, ok := parseID(c, "id") // Album id from the path
		if !ok {
			return
		}
		var req service.CreateSongRequest // Bind JSON request to struct
		// Validate request: title and a positive track number are required
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		song, err := svc.Create(req, albumID)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"album_id": albumID,     // Target album ID
				"title":    req.Title,   // Requested title
				"error":    err.Error(), // Error message
			}).Error("Song creation failed") // Log creation failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"album_id":  albumID,                         // Owning album ID
			"song_id":   song.ID,                         // New song ID
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Song created") // Log song creation
		// Invalidate the album's track list cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                                                // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "songs:album:"+strconv.Itoa(int(albumID))) // Invalidate track list cache
		}
		// Return the created song
		c.JSON(http.StatusCreated, gin.H{"song": song})
	}
}

// UpdateSongHandler applies a merge patch to a song
func UpdateSongHandler(svc *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id") // Song id from the path
		if !ok {
			return
		}
		var req service.UpdateSongRequest // Bind JSON request to struct
		// All fields are optional; absent fields stay untouched
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		song, err := svc.Update(id, req)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"song_id": id,          // Target song ID
				"error":   err.Error(), // Error message
			}).Error("Song update failed") // Log update failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Invalidate the album's track list cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                                                     // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "songs:album:"+strconv.Itoa(int(song.AlbumID))) // Invalidate track list cache
		}
		// Return the updated song
		c.JSON(http.StatusOK, gin.H{"song": song})
	}
}

// DeleteSongHandler removes a single song by id
func DeleteSongHandler(svc *service.SongService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id") // Song id from the path
		if !ok {
			return
		}
		// Load first so the owning album's cache can be invalidated
		song, err := svc.GetByID(id)
		if err != nil {
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		if err := svc.Delete(id); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"song_id": id,          // Target song ID
				"error":   err.Error(), // Error message
			}).Error("Song deletion failed") // Log deletion failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Invalidate the album's track list cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                                                     // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "songs:album:"+strconv.Itoa(int(song.AlbumID))) // Invalidate track list cache
		}
		// Deletion has no body
		c.Status(http.StatusNoContent)
	}
}
