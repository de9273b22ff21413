package models

import "time"

// Role is the role flag on a user record.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the local record of an identity managed by the external identity provider.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ExternalID string    `json:"-" gorm:"uniqueIndex;type:varchar(191);not null"`
	Name       string    `json:"name" gorm:"type:varchar(200)" validate:"omitempty,max=200"`
	Email      string    `json:"email" gorm:"index;type:varchar(255)" validate:"omitempty,email"`
	Role       Role      `json:"role" gorm:"type:varchar(16);not null;default:USER"`
	Wishlist   *string   `json:"-" gorm:"type:text"`
	Orders     []Order   `json:"orders,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
