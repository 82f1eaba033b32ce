package tasks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
)

// Update carries the optional fields of an add-or-update call. A nil field
// is not provided. An empty, non-nil Thoughts asks the server to remove the
// entry's thoughts.
type Update struct {
	Status   *models.WatchedStatus
	Rating   *float64
	Thoughts *string
}

// Empty reports whether no field is provided.
func (u Update) Empty() bool {
	return u.Status == nil && u.Rating == nil && u.Thoughts == nil
}

// Request builds the partial update payload: only provided fields, with an
// empty thoughts string sent as the remove flag instead of as text.
func (u Update) Request() models.WatchedUpdateRequest {
	req := models.WatchedUpdateRequest{Status: u.Status, Rating: u.Rating}
	if u.Thoughts != nil {
		if *u.Thoughts == "" {
			req.RemoveThoughts = true
		} else {
			t := *u.Thoughts
			req.Thoughts = &t
		}
	}
	return req
}

// ApplyUpdate returns e with the fields carried by req set and, when the
// server logged one, the new activity appended. UpdatedAt moves to the
// activity's creation time so recency follows the change itself.
func ApplyUpdate(e models.Entry, req models.WatchedUpdateRequest, resp models.WatchedUpdateResponse) models.Entry {
	out := e.Clone()
	if req.Status != nil {
		out.Status = *req.Status
	}
	if req.Rating != nil {
		out.Rating = *req.Rating
	}
	if req.Thoughts != nil {
		out.Thoughts = *req.Thoughts
	} else if req.RemoveThoughts {
		out.Thoughts = ""
	}
	if a := resp.NewActivity; a != nil {
		out.Activity = append(out.Activity, *a)
		out.UpdatedAt = a.CreatedAt
	}
	return out
}

// UpdateWatched adds a movie or show to the list, or updates its entry when
// one is already cached for the same content.
func (g *Gateway) UpdateWatched(ctx context.Context, tmdbID int, t models.MediaType, u Update) Result[models.Entry] {
	if e, ok := g.cache.FindByContent(tmdbID, t); ok && e.ID != 0 {
		return g.updateEntry(ctx, e, u)
	}
	return g.create(ctx, "/watched", models.WatchedAddRequest{
		ContentID:   tmdbID,
		ContentType: t,
		Status:      u.Status,
		Rating:      u.Rating,
	})
}

// UpdatePlayed adds a game to the list, or updates its entry when one is
// already cached for the same game.
func (g *Gateway) UpdatePlayed(ctx context.Context, igdbID int, u Update) Result[models.Entry] {
	if e, ok := g.cache.FindByGame(igdbID); ok && e.ID != 0 {
		return g.updateEntry(ctx, e, u)
	}
	return g.create(ctx, "/game/played", models.PlayedAddRequest{
		IgdbID: igdbID,
		Status: u.Status,
		Rating: u.Rating,
	})
}

// UpdateByID updates the cached entry with a server id.
func (g *Gateway) UpdateByID(ctx context.Context, id uint, u Update) Result[models.Entry] {
	e, ok := g.cache.FindByID(id)
	if !ok {
		g.logger.Warn("update of unknown entry", "id", id)
		return failed[models.Entry](shared.ErrEntryNotFound, g.preconditionFailed("Failed To Update! Watched entry not found."))
	}
	return g.updateEntry(ctx, e, u)
}

func (g *Gateway) updateEntry(ctx context.Context, e models.Entry, u Update) Result[models.Entry] {
	if u.Empty() {
		return failed[models.Entry](shared.ErrNothingToUpdate, "")
	}

	req := u.Request()
	nid := g.loading("Saving")

	var resp models.WatchedUpdateResponse
	if err := g.api.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/watched/%d", e.ID), req, &resp); err != nil {
		g.logger.Error("failed to update watched entry", "id", e.ID, "error", err)
		g.reject(nid, "Failed To Update!", err)
		return failed[models.Entry](err, nid)
	}

	// Reconcile against the entry as it is now, not the copy taken before
	// the request.
	updated, ok := g.cache.UpdateByID(e.ID, func(cur *models.Entry) {
		*cur = ApplyUpdate(*cur, req, resp)
	})
	if !ok {
		g.logger.Warn("updated entry left the cache before reconciling", "id", e.ID)
		updated = ApplyUpdate(e, req, resp)
	}

	g.resolve(nid, "Saved!")
	return succeeded(updated, nid)
}

func (g *Gateway) create(ctx context.Context, path string, body any) Result[models.Entry] {
	nid := g.loading("Adding")

	var created models.Entry
	err := g.api.DoJSON(ctx, http.MethodPost, path, body, &created)
	if err == nil && created.ID == 0 {
		err = fmt.Errorf("%w: created entry has no id", shared.ErrAPIRequest)
	}
	if err != nil {
		g.logger.Error("failed to add entry", "path", path, "error", err)
		g.reject(nid, "Failed To Add!", err)
		return failed[models.Entry](err, nid)
	}

	g.cache.Append(created)
	g.logger.Info("added entry", "id", created.ID, "title", created.Title())
	g.resolve(nid, "Added!")
	return succeeded(created, nid)
}

// RemoveWatched deletes an entry. An id that is not cached is reported as an
// error without contacting the server.
func (g *Gateway) RemoveWatched(ctx context.Context, id uint) Result[models.Entry] {
	e, ok := g.cache.FindByID(id)
	if !ok {
		g.logger.Warn("remove of unknown entry", "id", id)
		return failed[models.Entry](shared.ErrEntryNotFound, g.preconditionFailed("Item Doesn't Exist On Watched List!"))
	}

	nid := g.loading("Removing")
	if err := g.api.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/watched/%d", id), nil, nil); err != nil {
		g.logger.Error("failed to remove watched entry", "id", id, "error", err)
		g.reject(nid, "Failed To Remove!", err)
		return failed[models.Entry](err, nid)
	}

	g.cache.RemoveByID(id)
	g.resolve(nid, "Removed!")
	return succeeded(e, nid)
}
