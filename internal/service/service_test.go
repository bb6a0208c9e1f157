package service

import (
	"testing"
	"time"

	"needledrop/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an in-memory sqlite catalog with the full schema
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// One connection only, so every session sees the same :memory: database
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.User{}, &domain.Album{}, &domain.Song{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// createUser inserts a user row directly
func createUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// createAlbum inserts an album row owned by owner directly
func createAlbum(t *testing.T, db *gorm.DB, owner *domain.User, title, artist string, year int, genre string) *domain.Album {
	t.Helper()
	now := time.Now()
	album := &domain.Album{
		Title:       title,
		Artist:      artist,
		ReleaseYear: year,
		Genre:       genre,
		CreatedByID: owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(album).Error; err != nil {
		t.Fatalf("create album %s: %v", title, err)
	}
	return album
}

// createSong inserts a song row for an album directly
func createSong(t *testing.T, db *gorm.DB, albumID uint, title string, track int, duration time.Duration) *domain.Song {
	t.Helper()
	song := &domain.Song{
		Title:       title,
		TrackNumber: track,
		Duration:    duration,
		AlbumID:     albumID,
	}
	if err := db.Create(song).Error; err != nil {
		t.Fatalf("create song %s: %v", title, err)
	}
	return song
}

// countSongs returns how many songs an album has in the store
func countSongs(t *testing.T, db *gorm.DB, albumID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Song{}).Where("album_id = ?", albumID).Count(&n).Error; err != nil {
		t.Fatalf("count songs: %v", err)
	}
	return n
}
