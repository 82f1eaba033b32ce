package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/preferences"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/urfave/cli/v3"
)

// FollowList prints the users the account follows.
func (r *Runner) FollowList(ctx context.Context, cmd *cli.Command) error {
	res := r.gateway.LoadFollows(ctx)
	if res.Err != nil {
		return res.Err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res.Value, cmd.Bool("pretty"))
	}
	if len(res.Value) == 0 {
		return r.writePlain("Not following anyone\n")
	}
	for _, f := range res.Value {
		r.writePlain("%5d  %s\n", f.FollowedUser.ID, f.FollowedUser.Username)
	}
	return nil
}

// FollowAdd follows a user.
func (r *Runner) FollowAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "user-id")
	if err != nil {
		return err
	}
	return r.gateway.FollowUser(ctx, id).Err
}

// FollowRemove unfollows a user.
func (r *Runner) FollowRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "user-id")
	if err != nil {
		return err
	}
	r.gateway.LoadFollows(ctx)
	return r.gateway.UnfollowUser(ctx, id).Err
}

type prefsView struct {
	Theme    preferences.Theme   `json:"theme"`
	Sort     []string            `json:"sort"`
	Filters  preferences.Filters `json:"filters"`
	Detailed map[string]bool     `json:"detailedView"`
}

// PrefsShow prints every local preference.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	v := prefsView{
		Theme:    r.prefs.Theme(),
		Sort:     r.prefs.Sort(),
		Filters:  r.prefs.Filters(),
		Detailed: r.prefs.DetailedViews(),
	}
	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}

	r.writePlain("Theme:   %s\n", v.Theme)
	r.writePlain("Sort:    %s\n", strings.Join(v.Sort, " "))
	r.writePlain("Types:   %s\n", orAll(v.Filters.Type))
	r.writePlain("Status:  %s\n", orAll(v.Filters.Status))

	views := make([]string, 0, len(v.Detailed))
	for k := range v.Detailed {
		views = append(views, k)
	}
	slices.Sort(views)
	r.writePlain("Detailed views: %s\n", orNone(views))
	return nil
}

func orAll(v []string) string {
	if len(v) == 0 {
		return "all"
	}
	return strings.Join(v, ", ")
}

func orNone(v []string) string {
	if len(v) == 0 {
		return "none"
	}
	return strings.Join(v, ", ")
}

// PrefsTheme stores the theme. Without an argument the stored theme is
// removed and the terminal background decides.
func (r *Runner) PrefsTheme(ctx context.Context, cmd *cli.Command) error {
	theme := preferences.Theme(strings.ToLower(cmd.StringArg("theme")))
	switch theme {
	case "", preferences.ThemeLight, preferences.ThemeDark:
	default:
		return fmt.Errorf("%w: theme must be light or dark, got %q", shared.ErrInvalidArgument, theme)
	}
	if err := r.prefs.SetTheme(theme); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return r.writePlain("Theme: %s\n", r.prefs.Theme())
}

// PrefsSort stores the list sort. Without a mode the default is restored.
func (r *Runner) PrefsSort(ctx context.Context, cmd *cli.Command) error {
	var sort []string
	if mode := strings.ToUpper(cmd.StringArg("mode")); mode != "" {
		dir := strings.ToUpper(cmd.StringArg("direction"))
		if dir != preferences.SortUp && dir != preferences.SortDown {
			return fmt.Errorf("%w: direction must be UP or DOWN, got %q", shared.ErrInvalidArgument, dir)
		}
		sort = []string{mode, dir}
	}
	if err := r.prefs.SetSort(sort); err != nil {
		return fmt.Errorf("failed to save sort: %w", err)
	}
	return r.writePlain("Sort: %s\n", strings.Join(r.prefs.Sort(), " "))
}

// PrefsFilter stores the list filters. Without flags the filters are cleared.
func (r *Runner) PrefsFilter(ctx context.Context, cmd *cli.Command) error {
	f := preferences.Filters{Type: cmd.StringSlice("type")}
	for _, s := range cmd.StringSlice("status") {
		status, err := models.ParseWatchedStatus(s)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		f.Status = append(f.Status, string(status))
	}
	if err := r.prefs.SetFilters(f); err != nil {
		return fmt.Errorf("failed to save filters: %w", err)
	}
	f = r.prefs.Filters()
	return r.writePlain("Types: %s\nStatus: %s\n", orAll(f.Type), orAll(f.Status))
}

// PrefsDetailed turns a detailed view on or off.
func (r *Runner) PrefsDetailed(ctx context.Context, cmd *cli.Command) error {
	view := cmd.StringArg("view")
	if view == "" {
		return fmt.Errorf("%w: view", shared.ErrMissingArgument)
	}

	var on bool
	switch strings.ToLower(cmd.StringArg("state")) {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return fmt.Errorf("%w: state must be on or off", shared.ErrInvalidArgument)
	}

	if err := r.prefs.SetDetailed(view, on); err != nil {
		return fmt.Errorf("failed to save detailed view: %w", err)
	}
	return r.writePlain("Detailed %s: %t\n", view, on)
}

// SettingsShow prints the account settings kept on the server.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	res := r.gateway.LoadUserSettings(ctx)
	if res.Err != nil {
		return res.Err
	}
	return r.writeJSON(res.Value, cmd.Bool("pretty") || !cmd.Bool("json"))
}

// SettingsSet changes one account setting. The value is decoded as JSON so
// that booleans and numbers keep their type, and sent as a string otherwise.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if !models.IsUserSetting(name) {
		return fmt.Errorf("%w: unknown setting %q", shared.ErrInvalidArgument, name)
	}

	raw := cmd.StringArg("value")
	var value any
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
	}

	if res := r.gateway.LoadUserSettings(ctx); res.Err != nil {
		return res.Err
	}
	return r.gateway.UpdateUserSetting(ctx, name, value).Err
}

// Features prints the optional server features.
func (r *Runner) Features(ctx context.Context, cmd *cli.Command) error {
	res := r.gateway.GetServerFeatures(ctx)
	if res.Err != nil {
		return res.Err
	}
	if cmd.Bool("json") {
		return r.writeJSON(res.Value, cmd.Bool("pretty"))
	}

	names := make([]string, 0, len(res.Value))
	for k := range res.Value {
		names = append(names, k)
	}
	slices.Sort(names)
	for _, k := range names {
		mark := "✗"
		if res.Value[k] {
			mark = "✓"
		}
		r.writePlain("%s %s\n", mark, k)
	}
	return nil
}

// JellyfinFind reports whether the linked Jellyfin server has a title.
func (r *Runner) JellyfinFind(ctx context.Context, cmd *cli.Command) error {
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	found, err := r.gateway.ContentExistsOnJellyfin(ctx, t, cmd.String("name"), cmd.Int("tmdb"))
	if err != nil {
		return err
	}
	if !found.HasContent {
		return r.writePlain("✗ Not on Jellyfin\n")
	}
	return r.writePlain("✓ On Jellyfin: %s\n", found.URL)
}
