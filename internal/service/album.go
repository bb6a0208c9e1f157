package service

import (
	"errors"                    // Error inspection
	"strings"                   // Case folding for search patterns
	"time"                      // Timestamps and default year bounds
	"needledrop/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Earliest release year considered by AdvancedSearch when no lower bound is given
const defaultYearFrom = 1900

// CreateAlbumRequest carries the fields needed to create an album
type CreateAlbumRequest struct {
	Title         string `json:"title" binding:"required"`       // Album title, required
	Artist        string `json:"artist" binding:"required"`      // Artist, required
	ReleaseYear   int    `json:"releaseYear" binding:"required"` // Release year, required
	Genre         string `json:"genre"`                          // Optional genre
	CoverImageURL string `json:"coverImageUrl"`                  // Optional cover image URL
}

// UpdateAlbumRequest is a merge patch: only non-nil fields are applied,
// nil fields leave the stored value untouched. There is no way to clear
// a field to empty through this request.
type UpdateAlbumRequest struct {
	Title         *string `json:"title"`         // New title, if set
	Artist        *string `json:"artist"`        // New artist, if set
	ReleaseYear   *int    `json:"releaseYear"`   // New release year, if set
	Genre         *string `json:"genre"`         // New genre, if set
	CoverImageURL *string `json:"coverImageUrl"` // New cover image URL, if set
}

// AlbumService orchestrates the album lifecycle and catalog queries
type AlbumService struct {
	db *gorm.DB // Catalog store handle
}

// NewAlbumService creates a new album service
func NewAlbumService(db *gorm.DB) *AlbumService {
	return &AlbumService{db: db}
}

// GetAll returns every album in the catalog
func (s *AlbumService) GetAll() ([]domain.Album, error) {
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// GetByID returns a single album by its primary key
func (s *AlbumService) GetByID(id uint) (*domain.Album, error) {
	var album domain.Album
	if err := s.db.Preload("CreatedBy").First(&album, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlbumNotFound // Album does not exist
		}
		return nil, err
	}
	return &album, nil
}

// GetByUserID returns all albums created by the given user
func (s *AlbumService) GetByUserID(userID uint) ([]domain.Album, error) {
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").Where("created_by_id = ?", userID).Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// Create persists a new album owned by the requesting user.
// Exactly one album row is written; songs are added separately.
func (s *AlbumService) Create(req CreateAlbumRequest, userID uint) (*domain.Album, error) {
	var user domain.User // Resolve the caller to a user row
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound // Broken identity link
		}
		return nil, err
	}
	now := time.Now() // Both timestamps stamped once, identically, at creation
	album := domain.Album{
		Title:         req.Title,         // Album title
		Artist:        req.Artist,        // Artist
		ReleaseYear:   req.ReleaseYear,   // Release year
		Genre:         req.Genre,         // Optional genre
		CoverImageURL: req.CoverImageURL, // Optional cover URL
		CreatedByID:   user.ID,           // Ownership, set once, never reassigned
		CreatedAt:     now,               // Creation timestamp
		UpdatedAt:     now,               // Equal to CreatedAt on a fresh album
	}
	// Omit the association so the user row is left untouched
	if err := s.db.Omit("CreatedBy").Create(&album).Error; err != nil {
		return nil, err
	}
	album.CreatedBy = user // Attach the owner for the response
	return &album, nil
}

// Update applies a merge patch to an existing album. Only the owner or
// an admin may update; UpdatedAt is refreshed even when no field changes.
func (s *AlbumService) Update(id uint, req UpdateAlbumRequest, userID uint) (*domain.Album, error) {
	var user domain.User // Resolve the caller
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	album, err := s.GetByID(id) // Load the album, fail fast if absent
	if err != nil {
		return nil, err
	}
	// Owner-or-admin policy check
	if !domain.CanModify(&user, album) {
		return nil, ErrPermissionDenied
	}
	// Apply only the fields that were provided
	if req.Title != nil {
		album.Title = *req.Title
	}
	if req.Artist != nil {
		album.Artist = *req.Artist
	}
	if req.ReleaseYear != nil {
		album.ReleaseYear = *req.ReleaseYear
	}
	if req.Genre != nil {
		album.Genre = *req.Genre
	}
	if req.CoverImageURL != nil {
		album.CoverImageURL = *req.CoverImageURL
	}
	album.UpdatedAt = time.Now() // Refreshed unconditionally, even on a no-op patch
	// Ownership and the owner row are never touched by updates
	if err := s.db.Omit("CreatedBy", "CreatedByID", "CreatedAt").Save(album).Error; err != nil {
		return nil, err
	}
	return album, nil
}

// Delete removes an album and all of its songs. The songs are deleted
// first (the store enforces a foreign key from songs to albums) as a
// single bulk statement, and both deletes run in one transaction: if
// either fails, neither takes effect.
func (s *AlbumService) Delete(id uint, userID uint) error {
	var user domain.User // Resolve the caller
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	var album domain.Album // Load the album, fail fast before any mutation
	if err := s.db.First(&album, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAlbumNotFound
		}
		return err
	}
	// Owner-or-admin policy check
	if !domain.CanModify(&user, &album) {
		return ErrPermissionDenied
	}
	// Atomic two-step delete: songs first, then the album
	return s.db.Transaction(func(tx *gorm.DB) error {
		// Bulk delete of all dependent songs in one statement
		if err := tx.Where("album_id = ?", album.ID).Delete(&domain.Song{}).Error; err != nil {
			return err // Rollback, album remains with its songs
		}
		// Delete the album row itself
		if err := tx.Delete(&album).Error; err != nil {
			return err // Rollback, songs are restored
		}
		return nil // Commit
	})
}

// Search returns albums whose title or artist contains the query as a
// case-insensitive substring. An empty query is passed through as-is
// and therefore matches every album.
func (s *AlbumService) Search(query string) ([]domain.Album, error) {
	pattern := "%" + strings.ToLower(query) + "%" // Substring pattern
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").
		Where("LOWER(title) LIKE ? OR LOWER(artist) LIKE ?", pattern, pattern).
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// FilterByGenre returns albums whose genre matches exactly, ignoring case
func (s *AlbumService) FilterByGenre(genre string) ([]domain.Album, error) {
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").
		Where("LOWER(genre) = LOWER(?)", genre).
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// FilterByArtist returns albums whose artist matches exactly, ignoring case
func (s *AlbumService) FilterByArtist(artist string) ([]domain.Album, error) {
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").
		Where("LOWER(artist) = LOWER(?)", artist).
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// FilterByYearRange returns albums released between from and to inclusive.
// Both bounds are required at this level; defaulting happens only in
// AdvancedSearch.
func (s *AlbumService) FilterByYearRange(from, to int) ([]domain.Album, error) {
	var albums []domain.Album
	if err := s.db.Preload("CreatedBy").
		Where("release_year BETWEEN ? AND ?", from, to).
		Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// AdvancedSearch combines the provided predicates with AND. Nil text
// predicates match everything; the year range always applies, defaulting
// to 1900 and the current calendar year. The upper default is computed
// per call, so it moves as real time passes.
func (s *AlbumService) AdvancedSearch(title, artist, genre *string, yearFrom, yearTo *int) ([]domain.Album, error) {
	from := defaultYearFrom // Default lower bound
	if yearFrom != nil {
		from = *yearFrom
	}
	to := time.Now().Year() // Default upper bound, evaluated at call time
	if yearTo != nil {
		to = *yearTo
	}
	q := s.db.Preload("CreatedBy").Where("release_year BETWEEN ? AND ?", from, to)
	// Text predicates are case-insensitive substring matches when present
	if title != nil {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(*title)+"%")
	}
	if artist != nil {
		q = q.Where("LOWER(artist) LIKE ?", "%"+strings.ToLower(*artist)+"%")
	}
	if genre != nil {
		q = q.Where("LOWER(genre) LIKE ?", "%"+strings.ToLower(*genre)+"%")
	}
	var albums []domain.Album
	if err := q.Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// CountByUserID returns the number of albums created by the given user
func (s *AlbumService) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&domain.Album{}).Where("created_by_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByTitleAndOwner reports whether the user already has an album
// with the given title. Used by the demo-data seeder for idempotency.
func (s *AlbumService) ExistsByTitleAndOwner(title string, userID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&domain.Album{}).
		Where("title = ? AND created_by_id = ?", title, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
