package repositories

import (
	"errors"
	"fmt"
)

// Storage keys used by the client.
const (
	KeyToken        = "token"
	KeyTheme        = "theme"
	KeySort         = "activeFilter"
	KeyFilters      = "activeFilterReal"
	KeyDetailedView = "detailedView"
	KeyPlexClientID = "plex-cid"
)

var ErrStorageClosed = errors.New("storage closed")

// Storage is durable client storage: a flat string key/value namespace.
//
// Get reports a missing key with ok == false and a nil error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Keys lists every key the client writes.
var Keys = []string{KeyToken, KeyTheme, KeySort, KeyFilters, KeyDetailedView, KeyPlexClientID}

// Dump reads every known key present in s.
func Dump(s Storage) (map[string]string, error) {
	out := make(map[string]string)
	for _, k := range Keys {
		v, ok, err := s.Get(k)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}
