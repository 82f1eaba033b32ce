package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrNoCredential     = fmt.Errorf("no auth token found")
	ErrUnauthorized     = fmt.Errorf("credential rejected by server")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAuthFailed       = fmt.Errorf("authentication failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrHTTPStatus         = fmt.Errorf("unexpected status code")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Cache precondition errors
	ErrEntryNotFound      = fmt.Errorf("watched entry not found")
	ErrActivityNotFound   = fmt.Errorf("activity not found")
	ErrSettingsNotLoaded  = fmt.Errorf("user settings not loaded")
	ErrNothingToUpdate    = fmt.Errorf("nothing to update")
	ErrJellyfinNotEnabled = fmt.Errorf("not a jellyfin user")

	// Plex bridge errors
	ErrPopupFailed   = fmt.Errorf("failed to prepare popup")
	ErrPopupClosed   = fmt.Errorf("plex popup closed before login completed")
	ErrPinPollFailed = fmt.Errorf("pin poll failed")
	ErrBridgeState   = fmt.Errorf("plex login out of order")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
