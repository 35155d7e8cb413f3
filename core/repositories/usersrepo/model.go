package usersrepo

import (
	"time"

	"github.com/google/uuid"
)

// User is a directory entry.
type User struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Username  string     `db:"username" json:"username"`
	Email     string     `db:"email" json:"email"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	Deleted   bool       `db:"deleted" json:"deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// UserID returns the identifier of u.
func UserID(u User) uuid.UUID {
	return u.ID
}

// CreateUser contains fields for creating a new user. The identifier,
// timestamps and deleted flag are assigned by the store.
type CreateUser struct {
	Name     string
	Username string
	Email    string
}

// UpdateUser contains fields for updating an existing user.
// Nil fields keep their current value.
type UpdateUser struct {
	ID       uuid.UUID
	Name     *string
	Username *string
	Email    *string
}
