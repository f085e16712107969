package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the permission tier of a user. Only the four values below are valid.
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleLibrarian Role = "LIBRARIAN"
	RolePrincipal Role = "PRINCIPAL"
	RoleAdmin     Role = "ADMIN"
)

var ErrInvalidRole = errors.New("invalid role")

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleLibrarian, RolePrincipal, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLibrarian, RolePrincipal, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	Role      Role      `gorm:"type:varchar(16);not null;default:'STUDENT'" json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	Password  string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// BeforeSave rejects roles outside the closed set, so a free string never reaches the table.
func (user *User) BeforeSave(tx *gorm.DB) error {
	if !user.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
