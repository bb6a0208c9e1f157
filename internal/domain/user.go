package domain

// Role is the authorization level of a user account
type Role string

// Supported roles
const (
	RoleAdmin Role = "ADMIN" // Admin: may mutate any album
	RoleUser  Role = "USER"  // Regular user: may mutate only albums they created
)

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`            // Primary key
	Username string `gorm:"unique;not null" json:"username"` // Unique username
	Email    string `json:"email"`                           // Contact email
	Password string `gorm:"not null" json:"-"`               // Hashed password, never serialized
	Role     Role   `gorm:"default:USER" json:"role"`        // Role: USER or ADMIN
}
