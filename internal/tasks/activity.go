package tasks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
)

// checkActivity reports a precondition failure when the entry or its
// activity is not cached. It returns the error notification id on failure.
func (g *Gateway) checkActivity(watchedID, activityID uint, failText string) (string, error) {
	e, ok := g.cache.FindByID(watchedID)
	if !ok {
		g.logger.Error("activity of unknown entry", "watched", watchedID, "activity", activityID)
		return g.preconditionFailed(failText + " Watched entry not found."), shared.ErrEntryNotFound
	}
	for _, a := range e.Activity {
		if a.ID == activityID {
			return "", nil
		}
	}
	g.logger.Error("unknown activity", "watched", watchedID, "activity", activityID)
	return g.preconditionFailed(failText + " Activity not found."), shared.ErrActivityNotFound
}

// UpdateActivity sets the custom date of one activity on an entry.
func (g *Gateway) UpdateActivity(ctx context.Context, watchedID, activityID uint, date time.Time) Result[models.Entry] {
	if nid, err := g.checkActivity(watchedID, activityID, "Failed to Update!"); err != nil {
		return failed[models.Entry](err, nid)
	}

	nid := g.loading("Updating")

	req := models.ActivityUpdateRequest{CustomDate: date}
	if err := g.api.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/activity/%d", activityID), req, nil); err != nil {
		g.logger.Error("failed to update activity", "watched", watchedID, "activity", activityID, "error", err)
		g.reject(nid, "Failed to Update!", err)
		return failed[models.Entry](err, nid)
	}

	updated, ok := g.cache.UpdateByID(watchedID, func(e *models.Entry) {
		for i := range e.Activity {
			if e.Activity[i].ID == activityID {
				d := date
				e.Activity[i].CustomDate = &d
				return
			}
		}
		g.logger.Warn("updated activity not in cache", "watched", watchedID, "activity", activityID)
	})
	if !ok {
		g.logger.Warn("entry for updated activity not in cache", "watched", watchedID)
	}

	g.resolve(nid, "Updated!")
	return succeeded(updated, nid)
}

// RemoveActivity deletes one activity from an entry's history.
func (g *Gateway) RemoveActivity(ctx context.Context, watchedID, activityID uint) Result[models.Entry] {
	if nid, err := g.checkActivity(watchedID, activityID, "Failed to Delete!"); err != nil {
		return failed[models.Entry](err, nid)
	}

	nid := g.loading("Deleting")

	if err := g.api.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/activity/%d", activityID), nil, nil); err != nil {
		g.logger.Error("failed to delete activity", "watched", watchedID, "activity", activityID, "error", err)
		g.reject(nid, "Failed to Delete!", err)
		return failed[models.Entry](err, nid)
	}

	updated, ok := g.cache.UpdateByID(watchedID, func(e *models.Entry) {
		kept := e.Activity[:0]
		for _, a := range e.Activity {
			if a.ID != activityID {
				kept = append(kept, a)
			}
		}
		e.Activity = kept
	})
	if !ok {
		g.logger.Warn("entry for deleted activity not in cache", "watched", watchedID)
	}

	g.resolve(nid, "Deleted!")
	return succeeded(updated, nid)
}
