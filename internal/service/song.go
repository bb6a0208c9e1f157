package service

import (
	"errors"                    // Error inspection
	"time"                      // Duration composition
	"needledrop/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CreateSongRequest carries the fields needed to add a song to an album.
// The track length is given as minutes plus seconds and composed into a
// single duration value.
type CreateSongRequest struct {
	Title       string `json:"title" binding:"required"`            // Song title, required
	TrackNumber int    `json:"trackNumber" binding:"required,gt=0"` // Position on the album, must be positive
	Minutes     int    `json:"minutes"`                             // Duration minutes component
	Seconds     int    `json:"seconds"`                             // Duration seconds component
}

// UpdateSongRequest is a merge patch for a song: only non-nil fields are
// applied. When either duration component is provided the whole duration
// is recomposed, with a missing component treated as zero.
type UpdateSongRequest struct {
	Title       *string `json:"title"`       // New title, if set
	TrackNumber *int    `json:"trackNumber"` // New track number, if set
	Minutes     *int    `json:"minutes"`     // New duration minutes component, if set
	Seconds     *int    `json:"seconds"`     // New duration seconds component, if set
}

// SongService manages songs within the catalog
type SongService struct {
	db *gorm.DB // Catalog store handle
}

// NewSongService creates a new song service
func NewSongService(db *gorm.DB) *SongService {
	return &SongService{db: db}
}

// GetAll returns every song in the catalog
func (s *SongService) GetAll() ([]domain.Song, error) {
	var songs []domain.Song
	if err := s.db.Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// GetByID returns a single song by its primary key
func (s *SongService) GetByID(id uint) (*domain.Song, error) {
	var song domain.Song
	if err := s.db.First(&song, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound // Song does not exist
		}
		return nil, err
	}
	return &song, nil
}

// GetByAlbumID returns all songs belonging to the given album
func (s *SongService) GetByAlbumID(albumID uint) ([]domain.Song, error) {
	var songs []domain.Song
	if err := s.db.Where("album_id = ?", albumID).Find(&songs).Error; err != nil {
		return nil, err
	}
	return songs, nil
}

// Create adds a song to an existing album. A song can only be created in
// the context of an album that exists.
func (s *SongService) Create(req CreateSongRequest, albumID uint) (*domain.Song, error) {
	var album domain.Album // The parent album must exist
	if err := s.db.First(&album, albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}
	song := domain.Song{
		Title:       req.Title,                              // Song title
		TrackNumber: req.TrackNumber,                        // Track position
		Duration:    composeDuration(req.Minutes, req.Seconds), // Minutes+seconds as one value
		AlbumID:     album.ID,                               // Owning album
	}
	if err := s.db.Create(&song).Error; err != nil {
		return nil, err
	}
	return &song, nil
}

// Update applies a merge patch to an existing song
func (s *SongService) Update(id uint, req UpdateSongRequest) (*domain.Song, error) {
	song, err := s.GetByID(id) // Load the song, fail fast if absent
	if err != nil {
		return nil, err
	}
	// Apply only the fields that were provided
	if req.Title != nil {
		song.Title = *req.Title
	}
	if req.TrackNumber != nil {
		song.TrackNumber = *req.TrackNumber
	}
	// Recompose the duration when either component is present
	if req.Minutes != nil || req.Seconds != nil {
		minutes, seconds := 0, 0
		if req.Minutes != nil {
			minutes = *req.Minutes
		}
		if req.Seconds != nil {
			seconds = *req.Seconds
		}
		song.Duration = composeDuration(minutes, seconds)
	}
	if err := s.db.Save(song).Error; err != nil {
		return nil, err
	}
	return song, nil
}

// Delete removes a single song by its primary key
func (s *SongService) Delete(id uint) error {
	song, err := s.GetByID(id) // Existence check before deleting
	if err != nil {
		return err
	}
	return s.db.Delete(song).Error
}

// DeleteByAlbumID removes every song belonging to the given album in a
// single bulk statement. The album cascade in AlbumService.Delete uses
// the same predicate inside its transaction.
func (s *SongService) DeleteByAlbumID(albumID uint) error {
	return s.db.Where("album_id = ?", albumID).Delete(&domain.Song{}).Error
}

// composeDuration builds a single duration from minutes and seconds
func composeDuration(minutes, seconds int) time.Duration {
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
}
