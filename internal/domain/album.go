package domain

import "time"

// Album Model
type Album struct {
	ID            uint      `gorm:"primaryKey" json:"id"`            // Primary key
	Title         string    `gorm:"not null" json:"title"`           // Album title
	Artist        string    `gorm:"not null" json:"artist"`          // Performing artist
	ReleaseYear   int       `gorm:"not null" json:"releaseYear"`     // Year of release
	Genre         string    `json:"genre,omitempty"`                 // Optional genre
	CoverImageURL string    `json:"coverImageUrl,omitempty"`         // Optional cover image URL
	CreatedByID   uint      `gorm:"not null" json:"-"`               // Foreign key to the owning User
	CreatedBy     User      `gorm:"foreignKey:CreatedByID" json:"createdBy"` // Owner, set once at creation
	CreatedAt     time.Time `json:"createdAt"`                       // Stamped once at creation
	UpdatedAt     time.Time `json:"updatedAt"`                       // Refreshed on every mutation
}

// CanModify reports whether user is allowed to mutate album.
// Only the album's owner or an admin may do so; ownership is
// identity equality on the creating user's ID.
func CanModify(user *User, album *Album) bool {
	isOwner := album.CreatedByID == user.ID // Owner check by ID equality
	isAdmin := user.Role == RoleAdmin       // Admin override
	return isOwner || isAdmin
}
