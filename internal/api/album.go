package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"needledrop/internal/domain"  // Importing domain models
	"needledrop/internal/service" // Album lifecycle and search
	"needledrop/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client

	"github.com/sirupsen/logrus" // Logging library
)

// parseID reads a numeric path parameter; replies 400 when it is not a number
func parseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}

// albumErrorStatus maps service failures to HTTP status codes
func albumErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrAlbumNotFound),
		errors.Is(err, service.ErrSongNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound // Resource absent
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden // Authenticated but not owner/admin
	default:
		return http.StatusInternalServerError // Store failure
	}
}

// GetAlbumsHandler returns every album in the catalog
func GetAlbumsHandler(svc *service.AlbumService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		cacheKey := "albums:all"    // Cache key for the full listing
		var albums []domain.Album
		found, err := utils.GetCache(ctx, rdb, cacheKey, &albums) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"albums": albums, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		albums, err = svc.GetAll()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, albums, utils.CatalogCacheTTL) // Cache the listing
		c.JSON(http.StatusOK, gin.H{"albums": albums, "cached": false})       // Return album list
	}
}

// GetAlbumHandler returns a single album by id
func GetAlbumHandler(svc *service.AlbumService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id") // Album id from the path
		if !ok {
			return
		}
		ctx := context.Background()                        // Context for Redis operations
		cacheKey := "album:" + strconv.Itoa(int(id))       // Cache key for this album
		var album domain.Album                             // Album struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &album) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"album": album, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		result, err := svc.GetByID(id)
		if err != nil {
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, result, utils.CatalogCacheTTL) // Cache the album
		c.JSON(http.StatusOK, gin.H{"album": result, "cached": false})        // Return album
	}
}

// GetAlbumsByUserHandler returns all albums created by the given user
func GetAlbumsByUserHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseID(c, "userId") // Owner id from the path
		if !ok {
			return
		}
		albums, err := svc.GetByUserID(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return album list
	}
}

// GetMyAlbumsHandler returns the authenticated caller's albums
func GetMyAlbumsHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		albums, err := svc.GetByUserID(userID.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return album list
	}
}

// SearchAlbumsHandler matches albums whose title or artist contains the
// query, ignoring case. The query parameter must be present; an empty
// value is passed through and matches everything.
func SearchAlbumsHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := c.GetQuery("query") // Query parameter is required
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
			return
		}
		albums, err := svc.Search(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return matches
	}
}

// AdvancedSearchHandler combines optional title/artist/genre/year filters.
// Omitted text filters match everything; omitted year bounds default to
// 1900 and the current year inside the service.
func AdvancedSearchHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var title, artist, genre *string // Optional text predicates
		if v, ok := c.GetQuery("title"); ok {
			title = &v
		}
		if v, ok := c.GetQuery("artist"); ok {
			artist = &v
		}
		if v, ok := c.GetQuery("genre"); ok {
			genre = &v
		}
		var yearFrom, yearTo *int // Optional year bounds
		if v := c.Query("yearFrom"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid yearFrom"})
				return
			}
			yearFrom = &n
		}
		if v := c.Query("yearTo"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid yearTo"})
				return
			}
			yearTo = &n
		}
		albums, err := svc.AdvancedSearch(title, artist, genre, yearFrom, yearTo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return matches
	}
}

// GetAlbumsByGenreHandler returns albums whose genre matches exactly, ignoring case
func GetAlbumsByGenreHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		albums, err := svc.FilterByGenre(c.Param("genre"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return matches
	}
}

// GetAlbumsByArtistHandler returns albums whose artist matches exactly, ignoring case
func GetAlbumsByArtistHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		albums, err := svc.FilterByArtist(c.Param("artist"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return matches
	}
}

// GetAlbumsByYearRangeHandler returns albums released within [from, to].
// Both bounds are required here, unlike advanced search.
func GetAlbumsByYearRangeHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := strconv.Atoi(c.Query("from")) // Lower bound, required
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing from parameter"})
			return
		}
		to, err := strconv.Atoi(c.Query("to")) // Upper bound, required
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing to parameter"})
			return
		}
		albums, err := svc.FilterByYearRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums}) // Return matches
	}
}

// CreateAlbumHandler creates a new album owned by the authenticated caller
func CreateAlbumHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req service.CreateAlbumRequest // Bind JSON request to struct
		// Validate request: title, artist and release year are required
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		album, err := svc.Create(req, userID.(uint))
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Creating user ID
				"title":   req.Title,   // Requested title
				"error":   err.Error(), // Error message
			}).Error("Album creation failed") // Log creation failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // Creating user ID
			"album_id":  album.ID,                        // New album ID
			"title":     album.Title,                     // Album title
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Album created") // Log album creation
		// Invalidate the album listing cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                   // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "albums:all") // Invalidate listing cache
		}
		// Return the created album
		c.JSON(http.StatusCreated, gin.H{"album": album})
	}
}

// UpdateAlbumHandler applies a merge patch to an album; only the owner
// or an admin may do so
func UpdateAlbumHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseID(c, "id") // Album id from the path
		if !ok {
			return
		}
		var req service.UpdateAlbumRequest // Bind JSON request to struct
		// All fields are optional; absent fields stay untouched
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		album, err := svc.Update(id, req, userID.(uint))
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // Requesting user ID
				"album_id": id,          // Target album ID
				"error":    err.Error(), // Error message
			}).Error("Album update failed") // Log update failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // Requesting user ID
			"album_id":  album.ID,                        // Updated album ID
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Album updated") // Log album update
		// Invalidate album and listing cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                                           // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "album:"+strconv.Itoa(int(album.ID))) // Invalidate album cache
			_ = utils.DeleteCache(ctx, rdb, "albums:all")                         // Invalidate listing cache
		}
		// Return the updated album
		c.JSON(http.StatusOK, gin.H{"album": album})
	}
}

// DeleteAlbumHandler deletes an album and all of its songs; only the
// owner or an admin may do so
func DeleteAlbumHandler(svc *service.AlbumService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, ok := parseID(c, "id") // Album id from the path
		if !ok {
			return
		}
		if err := svc.Delete(id, userID.(uint)); err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // Requesting user ID
				"album_id": id,          // Target album ID
				"error":    err.Error(), // Error message
			}).Error("Album deletion failed") // Log deletion failure
			c.JSON(albumErrorStatus(err), gin.H{"error": err.Error()})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // Requesting user ID
			"album_id":  id,                              // Deleted album ID
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Album deleted") // Log album deletion
		// Invalidate album, listing and song caches
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background()                                           // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, "album:"+strconv.Itoa(int(id)))       // Invalidate album cache
			_ = utils.DeleteCache(ctx, rdb, "albums:all")                         // Invalidate listing cache
			_ = utils.DeleteCache(ctx, rdb, "songs:album:"+strconv.Itoa(int(id))) // Invalidate song listing cache
		}
		// Deletion has no body
		c.Status(http.StatusNoContent)
	}
}
