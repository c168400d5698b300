package models

import "github.com/golang-jwt/jwt/v5"

// Role distinguishes the two account tables a token can resolve against.
type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// UserInfo describes an authenticated account in responses. The password is
// never part of this shape.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse returns the issued token and, for teacher endpoints, the
// public profile.
type AuthResponse struct {
	User  *UserInfo `json:"user,omitempty"`
	Token string    `json:"token"`
}
