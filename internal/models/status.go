package models

import (
	"fmt"
	"strings"
)

// WatchedStatus is the user's progress through a piece of content.
type WatchedStatus string

const (
	StatusPlanned  WatchedStatus = "PLANNED"
	StatusWatching WatchedStatus = "WATCHING"
	StatusFinished WatchedStatus = "FINISHED"
	StatusHold     WatchedStatus = "HOLD"
	StatusDropped  WatchedStatus = "DROPPED"
)

// WatchedStatuses maps each status to the icon the web client shows for it.
var WatchedStatuses = map[WatchedStatus]string{
	StatusPlanned:  "calendar",
	StatusWatching: "clock",
	StatusFinished: "check",
	StatusHold:     "pause",
	StatusDropped:  "thumb-down",
}

// AllStatuses lists statuses in display order.
var AllStatuses = []WatchedStatus{StatusPlanned, StatusWatching, StatusFinished, StatusHold, StatusDropped}

func (s WatchedStatus) Valid() bool {
	_, ok := WatchedStatuses[s]
	return ok
}

func (s WatchedStatus) Icon() string {
	return WatchedStatuses[s]
}

// ParseWatchedStatus accepts a status name in any case.
func ParseWatchedStatus(v string) (WatchedStatus, error) {
	s := WatchedStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown watched status %q", v)
	}
	return s, nil
}

// MediaType is the TMDB content type of a watched entry.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

func (m MediaType) Valid() bool {
	return m == MediaMovie || m == MediaTV
}

// ParseMediaType accepts "movie" or "tv" (and "show" as an alias for tv).
func ParseMediaType(v string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "movie":
		return MediaMovie, nil
	case "tv", "show":
		return MediaTV, nil
	}
	return "", fmt.Errorf("unknown media type %q", v)
}
