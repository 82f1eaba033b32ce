package models

import (
	"fmt"
	"slices"
	"time"
)

// Entry is a user's watched (movie/show) or played (game) record.
//
// An Entry with a non-zero ID has been persisted by the server; the client
// never assigns one itself.
type Entry struct {
	ID               uint             `json:"id"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	Status           WatchedStatus    `json:"status"`
	Rating           float64          `json:"rating"`
	Thoughts         string           `json:"thoughts"`
	Pinned           bool             `json:"pinned"`
	Content          *Content         `json:"content,omitempty"`
	Game             *Game            `json:"game,omitempty"`
	Activity         []Activity       `json:"activity"`
	WatchedSeasons   []WatchedSeason  `json:"watchedSeasons,omitempty"`
	WatchedEpisodes  []WatchedEpisode `json:"watchedEpisodes,omitempty"`
	Tags             []Tag            `json:"tags,omitempty"`
	LastViewedSeason *int             `json:"lastViewedSeason,omitempty"`
}

// Content is the movie or show an entry refers to.
type Content struct {
	ID          int       `json:"id"`
	TmdbID      int       `json:"tmdbId"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	Type        MediaType `json:"type"`
	ReleaseDate string    `json:"release_date,omitempty"`
}

// Game is the IGDB game a played entry refers to.
type Game struct {
	ID      int    `json:"id"`
	IgdbID  int    `json:"igdbId"`
	Name    string `json:"name"`
	CoverID string `json:"coverId,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ActivityType names the kind of change an [Activity] records.
type ActivityType string

const (
	ActivityAddedWatched    ActivityType = "ADDED_WATCHED"
	ActivityRemovedWatched  ActivityType = "REMOVED_WATCHED"
	ActivityRatingChanged   ActivityType = "RATING_CHANGED"
	ActivityStatusChanged   ActivityType = "STATUS_CHANGED"
	ActivityThoughtsChanged ActivityType = "THOUGHTS_CHANGED"
	ActivityThoughtsRemoved ActivityType = "THOUGHTS_REMOVED"
)

// Activity is an append-only log record of one change to an entry.
type Activity struct {
	ID         uint         `json:"id"`
	WatchedID  uint         `json:"watchedId"`
	Type       ActivityType `json:"type"`
	Data       string       `json:"data"`
	CustomDate *time.Time   `json:"customDate,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// When returns the user supplied date if set, else the creation time.
func (a Activity) When() time.Time {
	if a.CustomDate != nil {
		return *a.CustomDate
	}
	return a.CreatedAt
}

// WatchedSeason is the per-season status of a show.
type WatchedSeason struct {
	ID           uint          `json:"id"`
	SeasonNumber int           `json:"seasonNumber"`
	Status       WatchedStatus `json:"status"`
	Rating       int8          `json:"rating"`
}

// WatchedEpisode is the per-episode status of a show.
type WatchedEpisode struct {
	ID            uint          `json:"id"`
	SeasonNumber  int           `json:"seasonNumber"`
	EpisodeNumber int           `json:"episodeNumber"`
	Status        WatchedStatus `json:"status"`
	Rating        int8          `json:"rating"`
}

// Tag is a user defined label attached to entries.
type Tag struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	BgColor string `json:"bgColor,omitempty"`
}

// NaturalKey identifies an entry by its external ids: TMDB id and type for
// movies/shows, IGDB id for games.
type NaturalKey struct {
	ContentID   int
	ContentType MediaType
	GameID      int
}

// ContentKey returns the natural key of a movie or show.
func ContentKey(tmdbID int, t MediaType) NaturalKey {
	return NaturalKey{ContentID: tmdbID, ContentType: t}
}

// GameKey returns the natural key of a game.
func GameKey(igdbID int) NaturalKey {
	return NaturalKey{GameID: igdbID}
}

func (k NaturalKey) IsGame() bool { return k.GameID != 0 }

func (k NaturalKey) String() string {
	if k.IsGame() {
		return fmt.Sprintf("game:%d", k.GameID)
	}
	return fmt.Sprintf("%s:%d", k.ContentType, k.ContentID)
}

// Key returns the entry's natural key. Entries missing both content and game
// return the zero key, which matches nothing.
func (e *Entry) Key() NaturalKey {
	switch {
	case e.Content != nil:
		return ContentKey(e.Content.TmdbID, e.Content.Type)
	case e.Game != nil:
		return GameKey(e.Game.IgdbID)
	}
	return NaturalKey{}
}

// Matches reports whether the entry has natural key k.
func (e *Entry) Matches(k NaturalKey) bool {
	if k == (NaturalKey{}) {
		return false
	}
	return e.Key() == k
}

// Title returns the content title or game name.
func (e *Entry) Title() string {
	switch {
	case e.Content != nil:
		return e.Content.Title
	case e.Game != nil:
		return e.Game.Name
	}
	return ""
}

// Kind returns the media type, or "game" for played entries.
func (e *Entry) Kind() string {
	switch {
	case e.Content != nil:
		return string(e.Content.Type)
	case e.Game != nil:
		return "game"
	}
	return ""
}

// HasTag reports whether a tag with id is attached.
func (e *Entry) HasTag(id uint) bool {
	return slices.ContainsFunc(e.Tags, func(t Tag) bool { return t.ID == id })
}

// Clone returns a deep copy so the copy can be mutated without touching e.
func (e Entry) Clone() Entry {
	c := e
	if e.Content != nil {
		content := *e.Content
		c.Content = &content
	}
	if e.Game != nil {
		game := *e.Game
		c.Game = &game
	}
	if e.LastViewedSeason != nil {
		s := *e.LastViewedSeason
		c.LastViewedSeason = &s
	}
	c.Activity = slices.Clone(e.Activity)
	for i, a := range c.Activity {
		if a.CustomDate != nil {
			d := *a.CustomDate
			c.Activity[i].CustomDate = &d
		}
	}
	c.WatchedSeasons = slices.Clone(e.WatchedSeasons)
	c.WatchedEpisodes = slices.Clone(e.WatchedEpisodes)
	c.Tags = slices.Clone(e.Tags)
	return c
}

// FindEntry returns the index of the first entry matching pred, or -1.
func FindEntry(list []Entry, pred func(*Entry) bool) int {
	for i := range list {
		if pred(&list[i]) {
			return i
		}
	}
	return -1
}

// WatchedProps is the status and rating of one cached movie/show, as the
// web client's cards display them.
type WatchedProps struct {
	Status WatchedStatus
	Rating float64
}

// GetWatchedDependedProps looks up the status and rating of a movie/show in
// list. The boolean is false when the content is not on the list.
func GetWatchedDependedProps(tmdbID int, t MediaType, list []Entry) (WatchedProps, bool) {
	i := FindEntry(list, func(e *Entry) bool { return e.Matches(ContentKey(tmdbID, t)) })
	if i < 0 {
		return WatchedProps{}, false
	}
	return WatchedProps{Status: list[i].Status, Rating: list[i].Rating}, true
}
