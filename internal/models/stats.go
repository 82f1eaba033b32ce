package models

// Stats summarises a watched list.
type Stats struct {
	Total         int                   `json:"total"`
	ByStatus      map[WatchedStatus]int `json:"byStatus"`
	ByKind        map[string]int        `json:"byKind"`
	Rated         int                   `json:"rated"`
	AverageRating float64               `json:"averageRating"`
	Pinned        int                   `json:"pinned"`
	Activities    int                   `json:"activities"`
}

// ComputeStats counts entries by status and kind and averages the ratings of
// rated entries. Unrated (zero) ratings do not pull the average down.
func ComputeStats(list []Entry) Stats {
	s := Stats{
		ByStatus: make(map[WatchedStatus]int),
		ByKind:   make(map[string]int),
	}

	var sum float64
	for i := range list {
		e := &list[i]
		s.Total++
		if e.Status != "" {
			s.ByStatus[e.Status]++
		}
		if k := e.Kind(); k != "" {
			s.ByKind[k]++
		}
		if e.Rating > 0 {
			s.Rated++
			sum += e.Rating
		}
		if e.Pinned {
			s.Pinned++
		}
		s.Activities += len(e.Activity)
	}

	if s.Rated > 0 {
		s.AverageRating = sum / float64(s.Rated)
	}
	return s
}
