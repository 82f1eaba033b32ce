package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/services"
	"github.com/desertthunder/wtx/internal/shared"
)

// MessageError carries a message fit to show the user alongside the error
// that produced it.
type MessageError struct {
	Message string
	Err     error
}

func (e *MessageError) Error() string { return e.Message }

func (e *MessageError) Unwrap() error { return e.Err }

// LoadUserSettings fetches the account settings.
func (g *Gateway) LoadUserSettings(ctx context.Context) Result[models.UserSettings] {
	var s models.UserSettings
	if err := g.api.GetJSON(ctx, "/user/settings", &s); err != nil {
		g.logger.Error("failed to load user settings", "error", err)
		return failed[models.UserSettings](err, "")
	}
	g.settings.Set(&s)
	return succeeded(s, "")
}

// UpdateUserSetting changes one server-side setting. Nothing happens until
// settings have been loaded. The value is validated locally first.
//
// On failure the setting is put back to the value it had when the call
// started.
func (g *Gateway) UpdateUserSetting(ctx context.Context, name string, value any) Result[models.UserSettings] {
	cur := g.settings.Get()
	if cur == nil {
		g.logger.Warn("user settings not loaded", "setting", name)
		return failed[models.UserSettings](shared.ErrSettingsNotLoaded, "")
	}
	if _, err := cur.WithField(name, value); err != nil {
		return failed[models.UserSettings](fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err), "")
	}

	original, hadOriginal := cur.Field(name)
	nid := g.loading("Updating")

	if err := g.api.DoJSON(ctx, http.MethodPost, "/user/update", map[string]any{name: value}, nil); err != nil {
		g.logger.Error("failed to update user setting", "setting", name, "error", err)
		g.reject(nid, "Couldn't Update", err)
		var restore any
		if hadOriginal {
			restore = original
		}
		g.setField(name, restore)
		return failed[models.UserSettings](err, nid)
	}

	next := g.setField(name, value)
	g.resolve(nid, "Updated")
	return succeeded(next, nid)
}

// setField applies one field to the settings as they are now.
func (g *Gateway) setField(name string, value any) models.UserSettings {
	var out models.UserSettings
	g.settings.Update(func(s *models.UserSettings) *models.UserSettings {
		if s == nil {
			return s
		}
		next, err := s.WithField(name, value)
		if err != nil {
			g.logger.Error("failed to apply user setting", "setting", name, "error", err)
			out = *s
			return s
		}
		out = next
		return &next
	})
	return out
}

// ChangePassword changes the account password. On failure the loading
// notification is withdrawn and the returned error's message is the
// server's explanation, for the caller to show.
func (g *Gateway) ChangePassword(ctx context.Context, oldPassword, newPassword string) Result[struct{}] {
	nid := g.loading("Changing Password")

	req := models.PasswordChangeRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := g.api.DoJSON(ctx, http.MethodPost, "/auth/change_password", req, nil); err != nil {
		g.logger.Error("failed to change password", "error", err)
		g.notes.UnNotify(nid)
		msg := services.ErrorMessage(err)
		if msg == "" {
			msg = "Couldn't Change Password"
		}
		return failed[struct{}](&MessageError{Message: msg, Err: err}, "")
	}

	g.resolve(nid, "Password Changed")
	return succeeded(struct{}{}, nid)
}

// GetServerFeatures refreshes the optional features the server reports.
// Failures are only logged.
func (g *Gateway) GetServerFeatures(ctx context.Context) Result[models.ServerFeatures] {
	var f models.ServerFeatures
	if err := g.api.GetJSON(ctx, "/features", &f); err != nil {
		g.logger.Error("getServerFeatures failed", "error", err)
		return failed[models.ServerFeatures](err, "")
	}
	if f != nil {
		g.features.Set(f)
	}
	return succeeded(f, "")
}

// LoadFollows fetches the users the current user follows.
func (g *Gateway) LoadFollows(ctx context.Context) Result[[]models.Follow] {
	var list []models.Follow
	if err := g.api.GetJSON(ctx, "/follow", &list); err != nil {
		g.logger.Error("failed to load follows", "error", err)
		return failed[[]models.Follow](err, "")
	}
	g.follows.Set(list)
	return succeeded(g.Follows(), "")
}

// FollowUser follows the user with id.
func (g *Gateway) FollowUser(ctx context.Context, id uint) Result[models.Follow] {
	nid := g.loading("Following")

	var f models.Follow
	if err := g.api.DoJSON(ctx, http.MethodPost, fmt.Sprintf("/follow/%d", id), nil, &f); err != nil {
		g.logger.Error("failed to follow user", "user", id, "error", err)
		g.reject(nid, "Failed To Follow!", err)
		return failed[models.Follow](err, nid)
	}

	g.follows.Update(func(list []models.Follow) []models.Follow {
		return append(slices.Clone(list), f)
	})
	g.logger.Debug("followed", "user", f.FollowedUser.Username)
	g.resolve(nid, "Followed!")
	return succeeded(f, nid)
}

// UnfollowUser stops following the user with id.
func (g *Gateway) UnfollowUser(ctx context.Context, id uint) Result[struct{}] {
	nid := g.loading("Unfollowing")

	if err := g.api.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/follow/%d", id), nil, nil); err != nil {
		g.logger.Error("failed to unfollow user", "user", id, "error", err)
		g.reject(nid, "Failed To Unfollow!", err)
		return failed[struct{}](err, nid)
	}

	g.follows.Update(func(list []models.Follow) []models.Follow {
		return slices.DeleteFunc(slices.Clone(list), func(f models.Follow) bool { return f.FollowedUser.ID == id })
	})
	g.resolve(nid, "Unfollowed!")
	return succeeded(struct{}{}, nid)
}

// ContentExistsOnJellyfin asks the server whether the user's Jellyfin
// library holds a title. Only Jellyfin accounts can ask; for anyone else it
// returns [shared.ErrJellyfinNotEnabled] without a request.
func (g *Gateway) ContentExistsOnJellyfin(ctx context.Context, t models.MediaType, name string, tmdbID int) (*models.JellyfinFoundContent, error) {
	if !g.isJellyfinUser() {
		return nil, shared.ErrJellyfinNotEnabled
	}

	var found models.JellyfinFoundContent
	path := fmt.Sprintf("/jellyfin/%s/%s/%d", t, url.PathEscape(name), tmdbID)
	if err := g.api.GetJSON(ctx, path, &found); err != nil {
		g.logger.Error("jellyfin lookup failed", "type", t, "name", name, "error", err)
		return nil, err
	}
	g.logger.Debug("jellyfin lookup", "name", name, "found", found.HasContent)
	return &found, nil
}

func (g *Gateway) isJellyfinUser() bool {
	if g.creds == nil {
		return false
	}
	token, err := g.creds.Token()
	if err != nil {
		return false
	}
	claims, err := services.ParseClaims(token)
	if err != nil {
		g.logger.Warn("unreadable credential", "error", err)
		return false
	}
	return claims.Type == models.UserJellyfin
}
