package models

import "math"

// ToShowableRating scales a stored rating (out of 10) to the user's display
// system and step. A zero rating means unrated and shows as 0. Thumbs are
// handled by [ToWhichThumb].
func ToShowableRating(r float64, settings *UserSettings) float64 {
	if r == 0 {
		return 0
	}

	var (
		system RatingSystem
		step   RatingStep
	)
	if settings != nil {
		if settings.RatingSystem != nil {
			system = *settings.RatingSystem
		}
		if settings.RatingStep != nil {
			step = *settings.RatingStep
		}
	}

	switch system {
	case RatingOutOf100:
		return r * 10
	case RatingOutOf5:
		switch step {
		case StepPoint5:
			return math.Ceil(r) / 2
		case StepPoint1:
			return r / 2
		}
		return math.Round(r / 2)
	case RatingOutOf10:
		switch step {
		case StepPoint5:
			return math.Ceil(r*2) / 2
		case StepPoint1:
			return r
		}
	}
	return math.Round(r)
}

// Thumb is a thumbs rating.
type Thumb int

const (
	ThumbDown    Thumb = -1
	ThumbNeutral Thumb = 0
	ThumbUp      Thumb = 1
)

// ToWhichThumb maps a stored rating onto thumbs. The boolean is false for
// unrated entries and for the gap between 7 and 8.
func ToWhichThumb(r float64) (Thumb, bool) {
	if r == 0 {
		return 0, false
	}
	rr := math.Round(r)
	switch {
	case rr > 0 && rr <= 4:
		return ThumbDown, true
	case r >= 4 && r <= 7:
		return ThumbNeutral, true
	case r >= 8:
		return ThumbUp, true
	}
	return 0, false
}
