package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole int

const (
	RoleUser      UserRole = 1 // Default for new users
	RoleModerator UserRole = 2
	RoleAdmin     UserRole = 3
)

func (r UserRole) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

type User struct {
	ID int `db:"id"`

	Username string `db:"username"`
	Password string `db:"password"`

	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
	IsBanned bool     `db:"is_banned"`

	DateJoined time.Time `db:"date_joined"`

	AvatarAssetID *uuid.UUID `db:"avatar_asset_id"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
