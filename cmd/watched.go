package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wtx/internal/formatter"
	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/preferences"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/desertthunder/wtx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func parseID(value, name string) (uint, error) {
	if value == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseUint(value, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, value)
	}
	return uint(id), nil
}

func idArg(cmd *cli.Command, name string) (uint, error) {
	return parseID(cmd.StringArg(name), name)
}

// parseUpdate collects the update flags that were given. A flag that was not
// given is left out of the update entirely.
func parseUpdate(cmd *cli.Command) (tasks.Update, error) {
	var u tasks.Update
	if cmd.IsSet("status") {
		s, err := models.ParseWatchedStatus(cmd.String("status"))
		if err != nil {
			return u, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		u.Status = &s
	}
	if cmd.IsSet("rating") {
		r := cmd.Float("rating")
		if r < 0 || r > 10 {
			return u, fmt.Errorf("%w: rating must be between 0 and 10", shared.ErrInvalidFlag)
		}
		u.Rating = &r
	}
	if cmd.IsSet("thoughts") {
		t := cmd.String("thoughts")
		u.Thoughts = &t
	}
	return u, nil
}

// WatchedList prints the cached list with the saved sort and filters applied.
func (r *Runner) WatchedList(ctx context.Context, cmd *cli.Command) error {
	if err := r.load(ctx); err != nil {
		return err
	}
	r.gateway.LoadUserSettings(ctx)

	list := r.gateway.Cache().List()
	if !cmd.Bool("all") {
		list = r.prefs.Filters().Apply(list)
	}
	preferences.SortEntries(list, r.prefs.Sort())

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	if len(list) == 0 {
		return r.writePlain("No entries\n")
	}

	settings := r.gateway.Settings()
	detailed := r.prefs.Detailed("list")
	for _, e := range list {
		line := fmt.Sprintf("%5d  %-5s %-9s %s", e.ID, e.Kind(), e.Status, e.Title())
		if rating := formatter.FormatRating(e.Rating, settings); rating != "" {
			line += "  " + rating
		}
		if p, ok := models.LatestWatched(&e); ok {
			line += "  " + p.String()
		}
		r.writePlain("%s\n", line)

		if detailed {
			if e.Thoughts != "" {
				r.writePlain("       > %s\n", e.Thoughts)
			}
			for _, a := range e.Activity {
				r.writePlain("       %s %s (#%d)\n", a.When().Format("2006-01-02"), a.Type, a.ID)
			}
		}
	}
	return nil
}

// WatchedAdd adds a movie or show, or updates the existing entry for it.
func (r *Runner) WatchedAdd(ctx context.Context, cmd *cli.Command) error {
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	u, err := parseUpdate(cmd)
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.UpdateWatched(ctx, cmd.Int("tmdb"), t, u).Err
}

// WatchedUpdate changes an entry by id.
func (r *Runner) WatchedUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	u, err := parseUpdate(cmd)
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.UpdateByID(ctx, id, u).Err
}

// WatchedRemove deletes an entry by id.
func (r *Runner) WatchedRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.RemoveWatched(ctx, id).Err
}

// WatchedBulk applies one update to several entries concurrently.
func (r *Runner) WatchedBulk(ctx context.Context, cmd *cli.Command) error {
	var ids []uint
	for _, v := range cmd.StringSlice("id") {
		for part := range strings.SplitSeq(v, ",") {
			id, err := parseID(strings.TrimSpace(part), "id")
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
	}
	u, err := parseUpdate(cmd)
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(ids)+1)
	result, err := r.gateway.BulkUpdate(ctx, progress, ids, u, tasks.BulkOpts{
		Workers:   cmd.Int("workers"),
		RateLimit: r.config.Backend.RateLimit,
	})
	close(progress)
	for p := range progress {
		r.logger.Debug(p.Message, "phase", p.Phase, "step", p.Step, "total", p.Total)
	}
	if result != nil {
		r.writePlain("Updated %d of %d entries\n", result.Succeeded, len(ids))
	}
	return err
}

// WatchedExport writes the watched list to a file. With --offline the last
// snapshot saved by a successful load is used instead of the server.
func (r *Runner) WatchedExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	export := &formatter.Export{ExportedAt: time.Now()}
	if cmd.Bool("offline") {
		list, at, err := r.backend.Snapshots.Latest()
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		r.logger.Info("exporting snapshot", "taken", at, "entries", len(list))
		export.Entries = list
	} else {
		if err := r.load(ctx); err != nil {
			return err
		}
		r.gateway.LoadUserSettings(ctx)
		export.Entries = r.gateway.Cache().List()
		export.Settings = r.gateway.Settings()
	}

	path, err := formatter.WriteExport(r.fs, export, format, cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "format", format)
	return r.writePlain("✓ Exported %d entries to %s\n", len(export.Entries), path)
}

// WatchedStats prints aggregate counts for the watched list.
func (r *Runner) WatchedStats(ctx context.Context, cmd *cli.Command) error {
	if err := r.load(ctx); err != nil {
		return err
	}
	r.gateway.LoadUserSettings(ctx)

	stats := models.ComputeStats(r.gateway.Cache().List())
	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}
	r.writePlainHeader("Watched list")
	_, err := r.output.Write(formatter.StatsToText(stats, r.gateway.Settings()))
	return err
}

// PlayedAdd adds a game, or updates the existing entry for it.
func (r *Runner) PlayedAdd(ctx context.Context, cmd *cli.Command) error {
	u, err := parseUpdate(cmd)
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.UpdatePlayed(ctx, cmd.Int("igdb"), u).Err
}

// ActivityDate sets the custom date of an activity. The date is YYYY-MM-DD
// or RFC 3339.
func (r *Runner) ActivityDate(ctx context.Context, cmd *cli.Command) error {
	watchedID, err := idArg(cmd, "watched-id")
	if err != nil {
		return err
	}
	activityID, err := idArg(cmd, "activity-id")
	if err != nil {
		return err
	}
	date, err := parseDate(cmd.StringArg("date"))
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.UpdateActivity(ctx, watchedID, activityID, date).Err
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: date", shared.ErrMissingArgument)
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if d, err := time.Parse(layout, v); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", shared.ErrInvalidArgument, v)
}

// ActivityRemove deletes an activity.
func (r *Runner) ActivityRemove(ctx context.Context, cmd *cli.Command) error {
	watchedID, err := idArg(cmd, "watched-id")
	if err != nil {
		return err
	}
	activityID, err := idArg(cmd, "activity-id")
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.RemoveActivity(ctx, watchedID, activityID).Err
}

func tagFromFlags(cmd *cli.Command) models.Tag {
	return models.Tag{ID: uint(cmd.Int("tag")), Name: cmd.String("name")}
}

// TagAdd tags an entry.
func (r *Runner) TagAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "watched-id")
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.TagWatched(ctx, id, tagFromFlags(cmd)).Err
}

// TagRemove untags an entry.
func (r *Runner) TagRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := idArg(cmd, "watched-id")
	if err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	return r.gateway.UntagWatched(ctx, id, tagFromFlags(cmd)).Err
}
