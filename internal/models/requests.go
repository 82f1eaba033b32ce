package models

import "time"

// WatchedAddRequest creates a movie/show entry (POST /watched).
type WatchedAddRequest struct {
	ContentID   int            `json:"contentId"`
	ContentType MediaType      `json:"contentType"`
	Status      *WatchedStatus `json:"status,omitempty"`
	Rating      *float64       `json:"rating,omitempty"`
}

// PlayedAddRequest creates a game entry (POST /game/played).
type PlayedAddRequest struct {
	IgdbID int            `json:"igdbId"`
	Status *WatchedStatus `json:"status,omitempty"`
	Rating *float64       `json:"rating,omitempty"`
}

// WatchedUpdateRequest is a partial update (PUT /watched/{id}).
//
// Only non-nil fields are sent. Clearing thoughts is requested with
// RemoveThoughts rather than an empty Thoughts string.
type WatchedUpdateRequest struct {
	Status         *WatchedStatus `json:"status,omitempty"`
	Rating         *float64       `json:"rating,omitempty"`
	Thoughts       *string        `json:"thoughts,omitempty"`
	RemoveThoughts bool           `json:"removeThoughts,omitempty"`
}

// Empty reports whether the update would change nothing.
func (r WatchedUpdateRequest) Empty() bool {
	return r.Status == nil && r.Rating == nil && r.Thoughts == nil && !r.RemoveThoughts
}

// WatchedUpdateResponse carries the activity the server logged for an update, if any.
type WatchedUpdateResponse struct {
	NewActivity *Activity `json:"newActivity,omitempty"`
}

// ActivityUpdateRequest sets an activity's custom date (PUT /activity/{id}).
type ActivityUpdateRequest struct {
	CustomDate time.Time `json:"customDate"`
}

// LoginRequest authenticates with username and password (POST /auth/).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PlexLoginRequest exchanges a plex.tv auth token for a session (POST /auth/plex).
type PlexLoginRequest struct {
	AuthToken string `json:"authToken"`
}

// AuthResponse is returned by every login endpoint.
type AuthResponse struct {
	Token string `json:"token"`
}

// PasswordChangeRequest changes the current user's password (POST /auth/change_password).
type PasswordChangeRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthProviders lists the login methods a server offers (GET /auth/available).
type AuthProviders struct {
	Available     []string `json:"available"`
	SignupEnabled bool     `json:"signupEnabled"`
	IsInSetup     bool     `json:"isInSetup"`
}

// Offers reports whether the server accepts logins from provider.
func (p AuthProviders) Offers(provider string) bool {
	for _, a := range p.Available {
		if a == provider {
			return true
		}
	}
	return false
}
