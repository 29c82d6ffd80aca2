// Package bbolt persists parse results in bbolt (embedded B+ tree).
// Each project root gets its own top-level bucket; inside it a "files"
// bucket maps a source path to the latest FileEvents for that path. A put
// replaces the previous record, so the index always holds the most recent
// successful parse.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/codetrail/internal/domain/events"
	"github.com/corey/codetrail/internal/ports"
)

var bucketFiles = []byte("files")

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores fe under project, replacing any earlier record for its path.
func (s *Store) Put(project string, fe *events.FileEvents) error {
	if fe == nil {
		return fmt.Errorf("nil file events")
	}
	data, err := encodeFileEvents(fe)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		proj, err := tx.CreateBucketIfNotExists([]byte(project))
		if err != nil {
			return err
		}
		files, err := proj.CreateBucketIfNotExists(bucketFiles)
		if err != nil {
			return err
		}
		return files.Put([]byte(fe.Path), data)
	})
}

// Delete removes the record for path. Deleting a missing record is not an
// error.
func (s *Store) Delete(project, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		files := filesBucket(tx, project)
		if files == nil {
			return nil
		}
		return files.Delete([]byte(path))
	})
}

// Get returns the record for path, or nil, nil if none exists.
func (s *Store) Get(project, path string) (*events.FileEvents, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		files := filesBucket(tx, project)
		if files == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := files.Get([]byte(path)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}
	return decodeFileEvents(data)
}

// Paths lists stored paths for project in key order.
func (s *Store) Paths(project string) ([]string, error) {
	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		files := filesBucket(tx, project)
		if files == nil {
			return nil
		}
		return files.ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	return paths, err
}

// DeleteProject drops everything stored for project.
func (s *Store) DeleteProject(project string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(project)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(project))
	})
}

func filesBucket(tx *bolt.Tx, project string) *bolt.Bucket {
	proj := tx.Bucket([]byte(project))
	if proj == nil {
		return nil
	}
	return proj.Bucket(bucketFiles)
}

// Sink binds the store to one project as a ports.Sink.
func (s *Store) Sink(project string) ports.Sink {
	return projectSink{store: s, project: project}
}

type projectSink struct {
	store   *Store
	project string
}

func (p projectSink) Put(fe *events.FileEvents) error { return p.store.Put(p.project, fe) }

func (p projectSink) Delete(path string) error { return p.store.Delete(p.project, path) }

// IsLocked reports whether err comes from failing to acquire the database
// file lock within the open timeout, usually because another process holds it.
func IsLocked(err error) bool {
	return errors.Is(err, bolt.ErrTimeout)
}
