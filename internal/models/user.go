package models

import "gorm.io/gorm"

// UserRole is the application-level role of an account.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User represents an account. Accounts are created through registration and are
// only read by the household services.
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username    string   `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email       string   `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password    string   `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	DisplayName string   `json:"display_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Role        UserRole `json:"role" gorm:"type:varchar(16);default:'USER'"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// IsAdmin reports whether the account carries the application ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
