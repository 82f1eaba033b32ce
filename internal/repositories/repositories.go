package repositories

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/desertthunder/wtx/internal/models"
	"github.com/desertthunder/wtx/internal/shared"
)

// Snapshots persists the last bulk-loaded watched list.
type Snapshots interface {
	Save(list []models.Entry) error
	Latest() ([]models.Entry, time.Time, error)
}

// Backend bundles the storage selected by configuration.
type Backend struct {
	Storage   Storage
	Snapshots Snapshots
	closer    io.Closer
}

// Close releases the underlying database, if any.
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Open returns the storage backend named by cfg.Driver ("sqlite" or "file").
func Open(cfg shared.StorageConfig) (*Backend, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := shared.OpenStorageDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return newSQLiteBackend(db), nil
	case "file":
		fs := NewOSFileStore(cfg.Path)
		return &Backend{Storage: fs, Snapshots: fs}, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

func newSQLiteBackend(db *sql.DB) *Backend {
	return &Backend{
		Storage:   NewKVRepository(db),
		Snapshots: NewSnapshotRepository(db),
		closer:    db,
	}
}
