package models

import "fmt"

// Progress is a position in a show.
type Progress struct {
	Season  int
	Episode int // 0 when only a season is known
}

func (p Progress) String() string {
	if p.Episode == 0 {
		return fmt.Sprintf("S%d", p.Season)
	}
	return fmt.Sprintf("S%dE%d", p.Season, p.Episode)
}

func (p Progress) after(o Progress) bool {
	if p.Season != o.Season {
		return p.Season > o.Season
	}
	return p.Episode > o.Episode
}

func counts(s WatchedStatus) bool {
	return s == StatusWatching || s == StatusFinished
}

// LatestWatched finds the furthest episode marked WATCHING or FINISHED.
// When no episode qualifies it falls back to the furthest such season.
// The boolean is false when neither exists.
func LatestWatched(e *Entry) (Progress, bool) {
	var (
		best  Progress
		found bool
	)
	for _, ep := range e.WatchedEpisodes {
		if !counts(ep.Status) {
			continue
		}
		p := Progress{Season: ep.SeasonNumber, Episode: ep.EpisodeNumber}
		if !found || p.after(best) {
			best, found = p, true
		}
	}
	if found {
		return best, true
	}

	for _, s := range e.WatchedSeasons {
		if !counts(s.Status) {
			continue
		}
		p := Progress{Season: s.SeasonNumber}
		if !found || p.after(best) {
			best, found = p, true
		}
	}
	return best, found
}
