// Package corpus keeps findings on disk so they can be inspected and replayed.
// Each case is one msgpack file named after its ID.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"jsfuzz/internal/jsgen"
)

// Bump when Case changes shape; older files are then reported as stale.
const schemaVersion uint16 = 1

const fileExt = ".mp"

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("corpus: case not found")

// ErrStale is returned for files written with another schema version.
var ErrStale = errors.New("corpus: stale schema")

// Case is one stored program together with what the oracle said about it.
type Case struct {
	Schema  uint16
	ID      string
	Seed    uint64
	Options jsgen.Options
	Source  string
	Stats   jsgen.Stats
	Verdict string
	Message string
	Created time.Time
}

// Store is a directory of cases. Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("corpus: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store root.
func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Put assigns an ID and creation time when missing and writes c atomically.
func (s *Store) Put(c *Case) error {
	if s == nil {
		return nil
	}
	if c == nil {
		return errors.New("corpus: nil case")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if _, err := uuid.Parse(c.ID); err != nil {
		return fmt.Errorf("corpus: invalid case id %q: %w", c.ID, err)
	}
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}
	c.Schema = schemaVersion

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// Rename consumed the temp file on success; this only cleans up failures.
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("corpus: encode %s: %w", c.ID, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.pathFor(c.ID))
}

// Get reads one case.
func (s *Store) Get(id string) (*Case, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.pathFor(id))
}

func (s *Store) read(path string) (*Case, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return nil, err
	}
	defer f.Close()

	var c Case
	if err := msgpack.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("corpus: decode %s: %w", filepath.Base(path), err)
	}
	if c.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrStale, filepath.Base(path), c.Schema, schemaVersion)
	}
	return &c, nil
}

// List returns every readable case, oldest first. Unreadable files are
// reported together after the readable ones are collected.
func (s *Store) List() ([]*Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	var (
		cases []*Case
		errs  []error
	)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		c, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cases = append(cases, c)
	}
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].Created.Equal(cases[j].Created) {
			return cases[i].ID < cases[j].ID
		}
		return cases[i].Created.Before(cases[j].Created)
	})
	return cases, errors.Join(errs...)
}
