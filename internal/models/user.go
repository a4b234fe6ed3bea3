package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is an account record. Password is empty for federated (OAuth)
// accounts and is never serialized.
type User struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"size:50;uniqueIndex"`
	Email         string    `json:"email" gorm:"uniqueIndex"`
	Password      string    `json:"-"`
	Bio           string    `json:"bio,omitempty"`
	AvatarURL     string    `json:"avatar,omitempty"`
	CoverImageURL string    `json:"cover_image,omitempty"`
	OAuthProvider string    `json:"-" gorm:"size:20;index:idx_oauth_provider_id"`
	OAuthID       string    `json:"-" gorm:"index:idx_oauth_provider_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
