package tasks

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
)

// TagWatched attaches tag to an entry.
func (g *Gateway) TagWatched(ctx context.Context, watchedID uint, tag models.Tag) Result[models.Entry] {
	if _, ok := g.cache.FindByID(watchedID); !ok {
		g.logger.Error("tag of unknown entry", "watched", watchedID, "tag", tag.ID)
		return failed[models.Entry](shared.ErrEntryNotFound, g.preconditionFailed("Failed To Tag! Watched entry not found."))
	}

	nid := g.loading("Tagging")
	if err := g.api.DoJSON(ctx, http.MethodPost, tagPath(watchedID, tag.ID), nil, nil); err != nil {
		g.logger.Error("failed to tag entry", "watched", watchedID, "tag", tag.ID, "error", err)
		g.reject(nid, "Failed To Tag!", err)
		return failed[models.Entry](err, nid)
	}

	updated, _ := g.cache.UpdateByID(watchedID, func(e *models.Entry) {
		if !e.HasTag(tag.ID) {
			e.Tags = append(e.Tags, tag)
		}
	})
	g.resolve(nid, "Tagged!")
	return succeeded(updated, nid)
}

// UntagWatched detaches tag from an entry.
func (g *Gateway) UntagWatched(ctx context.Context, watchedID uint, tag models.Tag) Result[models.Entry] {
	if _, ok := g.cache.FindByID(watchedID); !ok {
		g.logger.Error("untag of unknown entry", "watched", watchedID, "tag", tag.ID)
		return failed[models.Entry](shared.ErrEntryNotFound, g.preconditionFailed("Failed To Untag! Watched entry not found."))
	}

	nid := g.loading("Untagging")
	if err := g.api.DoJSON(ctx, http.MethodDelete, tagPath(watchedID, tag.ID), nil, nil); err != nil {
		g.logger.Error("failed to untag entry", "watched", watchedID, "tag", tag.ID, "error", err)
		g.reject(nid, "Failed To Untag!", err)
		return failed[models.Entry](err, nid)
	}

	updated, _ := g.cache.UpdateByID(watchedID, func(e *models.Entry) {
		e.Tags = slices.DeleteFunc(e.Tags, func(t models.Tag) bool { return t.ID == tag.ID })
	})
	g.resolve(nid, "Untagged!")
	return succeeded(updated, nid)
}

func tagPath(watchedID, tagID uint) string {
	return fmt.Sprintf("/watched/%d/tag/%d", watchedID, tagID)
}
