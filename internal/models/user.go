package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// UserType is how an account authenticates with the server.
type UserType uint8

const (
	UserWatcharr UserType = iota
	UserJellyfin
	UserPlex
)

func (t UserType) String() string {
	switch t {
	case UserJellyfin:
		return "jellyfin"
	case UserPlex:
		return "plex"
	default:
		return "watcharr"
	}
}

// RatingSystem is the scale a user wants ratings displayed on.
// Ratings are always stored out of 10.
type RatingSystem uint8

const (
	RatingOutOf10 RatingSystem = iota
	RatingOutOf5
	RatingOutOf100
	RatingThumbs
)

// RatingStep is the display granularity within a [RatingSystem].
type RatingStep uint8

const (
	StepWhole RatingStep = iota
	StepPoint5
	StepPoint1
)

// UserSettings are the per-account preferences kept on the server.
type UserSettings struct {
	Private                  *bool         `json:"private,omitempty"`
	PrivateThoughts          *bool         `json:"privateThoughts,omitempty"`
	HideSpoilers             *bool         `json:"hideSpoilers,omitempty"`
	IncludePreviouslyWatched *bool         `json:"includePreviouslyWatched,omitempty"`
	Country                  *string       `json:"country,omitempty"`
	RatingSystem             *RatingSystem `json:"ratingSystem,omitempty"`
	RatingStep               *RatingStep   `json:"ratingStep,omitempty"`
}

// Field returns the JSON value of the setting called name.
func (s UserSettings) Field(name string) (json.RawMessage, bool) {
	m, err := s.asMap()
	if err != nil {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// WithField returns a copy of s with the setting called name replaced by value.
// A nil value clears the setting.
func (s UserSettings) WithField(name string, value any) (UserSettings, error) {
	if !IsUserSetting(name) {
		return s, fmt.Errorf("unknown user setting %q", name)
	}
	m, err := s.asMap()
	if err != nil {
		return s, err
	}

	if value == nil {
		delete(m, name)
	} else {
		raw, err := json.Marshal(value)
		if err != nil {
			return s, err
		}
		m[name] = raw
	}

	data, err := json.Marshal(m)
	if err != nil {
		return s, err
	}
	var out UserSettings
	if err := json.Unmarshal(data, &out); err != nil {
		return s, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return out, nil
}

func (s UserSettings) asMap() (map[string]json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var userSettingNames = map[string]struct{}{
	"private": {}, "privateThoughts": {}, "hideSpoilers": {}, "includePreviouslyWatched": {},
	"country": {}, "ratingSystem": {}, "ratingStep": {},
}

// IsUserSetting reports whether name is a known server-side setting.
func IsUserSetting(name string) bool {
	_, ok := userSettingNames[name]
	return ok
}

// PublicUser is the public profile of another user.
type PublicUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
}

// Follow is one user the current user follows.
type Follow struct {
	CreatedAt    time.Time  `json:"createdAt"`
	FollowedUser PublicUser `json:"followedUser"`
}

// ServerFeatures reports which optional server functionality is enabled.
type ServerFeatures map[string]bool

// JellyfinFoundContent is the result of a Jellyfin library lookup.
type JellyfinFoundContent struct {
	HasContent bool   `json:"hasContent"`
	URL        string `json:"url"`
}
