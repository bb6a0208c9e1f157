package domain

import "time"

// Song Model
type Song struct {
	ID          uint          `gorm:"primaryKey" json:"id"`  // Primary key
	Title       string        `gorm:"not null" json:"title"` // Song title
	TrackNumber int           `json:"trackNumber"`           // Position on the album, not necessarily unique
	Duration    time.Duration `json:"duration"`              // Track length, stored as nanoseconds
	AlbumID     uint          `gorm:"not null" json:"albumId"` // Foreign key to the owning Album
	Album       Album         `json:"-"`                     // Owning album; a song cannot exist without one
}
