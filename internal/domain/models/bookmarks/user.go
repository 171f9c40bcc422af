package bookmarks

import "time"

// Role is a user's access level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	Image     *string   `json:"image,omitempty" db:"image"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
