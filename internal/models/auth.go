package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the sign-up form.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         UserRole   `json:"role"`
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
}

// NewUserInfo projects a user row into the public shape.
func NewUserInfo(u *User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		IsPremium:    u.IsPremium,
		PremiumUntil: u.PremiumUntil,
	}
}

// JWTClaims represents the JWT payload for access tokens.
// Premium fields are display hints; access checks re-read the user row.
type JWTClaims struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         UserRole   `json:"role"`
	IsPremium    bool       `json:"is_premium"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	jwt.RegisteredClaims
}

// Viewer identifies who is requesting content. A nil *Viewer is anonymous.
type Viewer struct {
	UserID string
	Role   UserRole
}

// ViewerFromClaims returns the viewer for validated claims, or nil.
func ViewerFromClaims(claims *JWTClaims) *Viewer {
	if claims == nil || claims.UserID == "" {
		return nil
	}
	return &Viewer{UserID: claims.UserID, Role: claims.Role}
}
