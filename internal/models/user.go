package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Admin-only routes require RoleAdmin, donee accounts carry
// RoleDonee and a DoneeStatus.
const (
	RoleAdmin = "administrador"
	RoleDonor = "doador"
	RoleDonee = "donatario"
)

// Donee account states, flipped by the admin switch-status endpoint.
const (
	DoneeStatusActive   = "ativo"
	DoneeStatusInactive = "inativo"
)

// User represents a user in the system
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);not null;unique;index"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone        string    `json:"phone" gorm:"type:varchar(32)"`
	Address      string    `json:"address" gorm:"type:varchar(512)"`
	// RequestMessage is the free-text justification a donee submits when
	// asking to join the platform. Shown in the admin review modal.
	RequestMessage string     `json:"request_message,omitempty" gorm:"type:text"`
	Role           string     `json:"role" gorm:"type:varchar(32);not null;default:'doador';index"`
	DoneeStatus    string     `json:"donee_status" gorm:"type:varchar(16);default:'inativo';index"`
	TokenVersion   uint       `json:"token_version" gorm:"default:0"`
	LastLoginAt    *time.Time `json:"last_login_at"`
	// Relationships
	RefreshTokens []RefreshToken `json:"refresh_tokens,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	RequestMessage string     `json:"request_message,omitempty"`
	Role           string     `json:"role"`
	DoneeStatus    string     `json:"donee_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// ToResponse converts a User to its public projection.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Address:        u.Address,
		RequestMessage: u.RequestMessage,
		Role:           u.Role,
		DoneeStatus:    u.DoneeStatus,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}
