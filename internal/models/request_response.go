package models

import "time"

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type CreateEventRequest struct {
	Name        string     `json:"name" binding:"required,max=120"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
	Location    string     `json:"location" binding:"required,max=160"`
	Description string     `json:"description" binding:"max=10000"`
	Host        string     `json:"host" binding:"max=300"`
	Tags        string     `json:"tags"`
}

// UpdateEventRequest carries a partial update; nil fields are left untouched.
// A null endsAt in the body is indistinguishable from an absent one, so
// clearEndsAt is the explicit way to drop an end time. Sending both endsAt
// and clearEndsAt is rejected.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	ClearEndsAt bool       `json:"clearEndsAt"`
	Location    *string    `json:"location"`
	Description *string    `json:"description"`
	Host        *string    `json:"host"`
	Tags        *string    `json:"tags"`
}

// EventQuery holds the parsed event listing filters.
type EventQuery struct {
	Text        string
	Tag         string
	StartFrom   *time.Time
	StartTo     *time.Time
	IncludePast bool
	Limit       int
}

// Response models
type AuthResponse struct {
	Status    string       `json:"status"`
	Token     string       `json:"token,omitempty"`
	ExpiresIn int          `json:"expiresIn,omitempty"`
	Account   *AccountView `json:"account,omitempty"`
}

// AccountView is the externally visible shape of an account. The admin flag
// is derived from configuration at render time, never stored.
type AccountView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsHost    bool      `json:"isHost"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type EventListResponse struct {
	Status string  `json:"status"`
	Events []Event `json:"events"`
}

type AccountListResponse struct {
	Status   string        `json:"status"`
	Accounts []AccountView `json:"accounts"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
