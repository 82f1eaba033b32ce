package tasks

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/notify"
	"github.com/desertthunder/wtx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivity(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)

	t.Run("UpdateActivity sets the custom date", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))

		res := f.gw.UpdateActivity(ctx, 5, 1, date)
		require.NoError(t, res.Err)

		puts := f.backend.CallsTo(http.MethodPut, "/activity/{id}")
		require.Len(t, puts, 1)
		assert.Equal(t, "/activity/1", puts[0].Path)
		assert.JSONEq(t, `{"customDate":"2023-12-24T00:00:00Z"}`, string(puts[0].Body))

		e, _ := f.gw.Cache().FindByID(5)
		require.NotNil(t, e.Activity[0].CustomDate)
		assert.True(t, date.Equal(*e.Activity[0].CustomDate))
		assert.Equal(t, "Updated!", f.notes.List()[0].Text)
	})

	t.Run("UpdateActivity failure", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))
		f.backend.Fail(http.MethodPut, "/activity/{id}", http.StatusInternalServerError, "")

		res := f.gw.UpdateActivity(ctx, 5, 1, date)
		require.Error(t, res.Err)
		e, _ := f.gw.Cache().FindByID(5)
		assert.Nil(t, e.Activity[0].CustomDate)
		assert.Equal(t, "Failed to Update!", f.notes.List()[0].Text)
	})

	t.Run("RemoveActivity", func(t *testing.T) {
		f := newFixture(t)
		e := movie(5, 100)
		e.Activity = append(e.Activity, models.Activity{ID: 2, WatchedID: 5, Type: models.ActivityRatingChanged})
		f.seed(e)

		res := f.gw.RemoveActivity(ctx, 5, 1)
		require.NoError(t, res.Err)
		assert.Len(t, f.backend.CallsTo(http.MethodDelete, "/activity/{id}"), 1)

		cached, _ := f.gw.Cache().FindByID(5)
		require.Len(t, cached.Activity, 1)
		assert.Equal(t, uint(2), cached.Activity[0].ID)
		assert.Equal(t, "Deleted!", f.notes.List()[0].Text)
	})

	t.Run("RemoveActivity failure", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))
		f.backend.Fail(http.MethodDelete, "/activity/{id}", http.StatusInternalServerError, "")

		require.Error(t, f.gw.RemoveActivity(ctx, 5, 1).Err)
		cached, _ := f.gw.Cache().FindByID(5)
		assert.Len(t, cached.Activity, 1)
		assert.Equal(t, "Failed to Delete!", f.notes.List()[0].Text)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFixture(t)

		res := f.gw.UpdateActivity(ctx, 99, 1, date)
		assert.ErrorIs(t, res.Err, shared.ErrEntryNotFound)
		res = f.gw.RemoveActivity(ctx, 99, 1)
		assert.ErrorIs(t, res.Err, shared.ErrEntryNotFound)

		assert.Empty(t, f.backend.Calls())
		notes := f.notes.List()
		require.Len(t, notes, 2)
		for _, n := range notes {
			assert.Equal(t, notify.KindError, n.Kind)
		}
		assert.Equal(t, "Failed to Update! Watched entry not found.", notes[0].Text)
		assert.Equal(t, "Failed to Delete! Watched entry not found.", notes[1].Text)
	})

	t.Run("unknown activity", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))

		assert.ErrorIs(t, f.gw.UpdateActivity(ctx, 5, 7, date).Err, shared.ErrActivityNotFound)
		assert.ErrorIs(t, f.gw.RemoveActivity(ctx, 5, 7).Err, shared.ErrActivityNotFound)

		assert.Empty(t, f.backend.Calls())
		cached, _ := f.gw.Cache().FindByID(5)
		require.Len(t, cached.Activity, 1)
		assert.Nil(t, cached.Activity[0].CustomDate)
		assert.Equal(t, "Failed to Delete! Activity not found.", f.notes.List()[1].Text)
	})
}

func TestTags(t *testing.T) {
	ctx := context.Background()
	drama := models.Tag{ID: 2, Name: "drama"}

	t.Run("tag and untag", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))

		res := f.gw.TagWatched(ctx, 5, drama)
		require.NoError(t, res.Err)
		assert.Len(t, res.Value.Tags, 2)
		posts := f.backend.CallsTo(http.MethodPost, "/watched/{id}/tag/{tagId}")
		require.Len(t, posts, 1)
		assert.Equal(t, "/watched/5/tag/2", posts[0].Path)

		res = f.gw.TagWatched(ctx, 5, drama)
		require.NoError(t, res.Err)
		assert.Len(t, res.Value.Tags, 2, "a tag is only listed once")

		res = f.gw.UntagWatched(ctx, 5, drama)
		require.NoError(t, res.Err)
		assert.Equal(t, []models.Tag{{ID: 1, Name: "crime"}}, res.Value.Tags)
		assert.Len(t, f.backend.CallsTo(http.MethodDelete, "/watched/{id}/tag/{tagId}"), 1)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newFixture(t)

		res := f.gw.TagWatched(ctx, 5, drama)
		assert.ErrorIs(t, res.Err, shared.ErrEntryNotFound)
		res = f.gw.UntagWatched(ctx, 5, drama)
		assert.ErrorIs(t, res.Err, shared.ErrEntryNotFound)
		assert.Empty(t, f.backend.Calls())

		list := f.notes.List()
		require.Len(t, list, 2)
		assert.Equal(t, "Failed To Tag! Watched entry not found.", list[0].Text)
		assert.Equal(t, "Failed To Untag! Watched entry not found.", list[1].Text)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t)
		f.seed(movie(5, 100))
		f.backend.Fail(http.MethodPost, "/watched/{id}/tag/{tagId}", http.StatusInternalServerError, "")

		res := f.gw.TagWatched(ctx, 5, drama)
		require.Error(t, res.Err)
		cached, _ := f.gw.Cache().FindByID(5)
		assert.Len(t, cached.Tags, 1)
		assert.Equal(t, "Failed To Tag!", f.notes.List()[0].Text)
	})
}

func TestUserSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("not loaded", func(t *testing.T) {
		f := newFixture(t)
		res := f.gw.UpdateUserSetting(ctx, "private", true)
		assert.ErrorIs(t, res.Err, shared.ErrSettingsNotLoaded)
		assert.Empty(t, f.backend.Calls())
		assert.Empty(t, f.notes.List())
	})

	t.Run("update", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SetSettings(models.UserSettings{Private: ptr(false)})
		require.NoError(t, f.gw.LoadUserSettings(ctx).Err)

		res := f.gw.UpdateUserSetting(ctx, "private", true)
		require.NoError(t, res.Err)

		posts := f.backend.CallsTo(http.MethodPost, "/user/update")
		require.Len(t, posts, 1)
		assert.JSONEq(t, `{"private":true}`, string(posts[0].Body))

		s := f.gw.Settings()
		require.NotNil(t, s)
		assert.True(t, *s.Private)
		assert.Equal(t, "Updated", f.notes.List()[0].Text)
	})

	t.Run("invalid value", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SetSettings(models.UserSettings{})
		require.NoError(t, f.gw.LoadUserSettings(ctx).Err)
		f.backend.ResetCalls()

		res := f.gw.UpdateUserSetting(ctx, "private", "yes")
		assert.ErrorIs(t, res.Err, shared.ErrInvalidArgument)
		assert.Empty(t, f.backend.Calls())
	})

	t.Run("failure restores the original", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SetSettings(models.UserSettings{Country: ptr("GB")})
		require.NoError(t, f.gw.LoadUserSettings(ctx).Err)
		f.backend.Fail(http.MethodPost, "/user/update", http.StatusInternalServerError, "")

		gate := f.backend.Hold(http.MethodPost, "/user/update")
		ch := Async(f.gw, ctx, func(ctx context.Context) Result[models.UserSettings] {
			return f.gw.UpdateUserSetting(ctx, "country", "US")
		})
		<-gate.Arrived()
		f.gw.setField("country", "FR")
		f.gw.setField("hideSpoilers", true)
		gate.Release()

		res := <-ch
		require.Error(t, res.Err)
		s := f.gw.Settings()
		require.NotNil(t, s)
		assert.Equal(t, "GB", *s.Country)
		require.NotNil(t, s.HideSpoilers, "other settings are kept")
		assert.True(t, *s.HideSpoilers)
		assert.Equal(t, "Couldn't Update", f.notes.List()[0].Text)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		res := f.gw.ChangePassword(ctx, "old", "new")
		require.NoError(t, res.Err)

		posts := f.backend.CallsTo(http.MethodPost, "/auth/change_password")
		require.Len(t, posts, 1)
		assert.JSONEq(t, `{"oldPassword":"old","newPassword":"new"}`, string(posts[0].Body))
		assert.Equal(t, "Password Changed", f.notes.List()[0].Text)
	})

	t.Run("failure with server message", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodPost, "/auth/change_password", http.StatusBadRequest, "old password is wrong")

		res := f.gw.ChangePassword(ctx, "bad", "new")
		var me *MessageError
		require.ErrorAs(t, res.Err, &me)
		assert.Equal(t, "old password is wrong", me.Message)
		assert.Empty(t, f.notes.List())
	})

	t.Run("failure without message", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodPost, "/auth/change_password", http.StatusInternalServerError, "")

		res := f.gw.ChangePassword(ctx, "bad", "new")
		require.Error(t, res.Err)
		assert.Equal(t, "Couldn't Change Password", res.Err.Error())
		assert.ErrorIs(t, res.Err, shared.ErrHTTPStatus)
	})
}

func TestFeaturesAndFollows(t *testing.T) {
	ctx := context.Background()

	t.Run("GetServerFeatures", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SetFeatures(models.ServerFeatures{"sonarr": true, "radarr": false})

		res := f.gw.GetServerFeatures(ctx)
		require.NoError(t, res.Err)
		assert.Equal(t, models.ServerFeatures{"sonarr": true, "radarr": false}, f.gw.Features())
		assert.Empty(t, f.notes.List())
	})

	t.Run("GetServerFeatures failure is silent", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodGet, "/features", http.StatusInternalServerError, "")
		require.Error(t, f.gw.GetServerFeatures(ctx).Err)
		assert.Nil(t, f.gw.Features())
		assert.Empty(t, f.notes.List())
	})

	t.Run("follow and unfollow", func(t *testing.T) {
		f := newFixture(t)
		f.backend.SetFollows([]models.Follow{{FollowedUser: models.PublicUser{ID: 1, Username: "ann"}}})
		require.NoError(t, f.gw.LoadFollows(ctx).Err)

		res := f.gw.FollowUser(ctx, 7)
		require.NoError(t, res.Err)
		assert.Equal(t, "user7", res.Value.FollowedUser.Username)
		assert.Len(t, f.gw.Follows(), 2)

		require.NoError(t, f.gw.UnfollowUser(ctx, 1).Err)
		follows := f.gw.Follows()
		require.Len(t, follows, 1)
		assert.Equal(t, uint(7), follows[0].FollowedUser.ID)

		texts := []string{}
		for _, n := range f.notes.List() {
			texts = append(texts, n.Text)
		}
		assert.Equal(t, []string{"Followed!", "Unfollowed!"}, texts)
	})

	t.Run("follow failure", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodPost, "/follow/{id}", http.StatusNotFound, "no such user")
		require.Error(t, f.gw.FollowUser(ctx, 7).Err)
		assert.Empty(t, f.gw.Follows())
		n := f.notes.List()[0]
		assert.Equal(t, "Failed To Follow!", n.Text)
		assert.Equal(t, notify.KindError, n.Kind)
	})
}
