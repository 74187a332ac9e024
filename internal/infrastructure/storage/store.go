package storage

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
	"zungenrede/internal/ports/output"
)

// DefaultPath is used when STORAGE_FILE is not set.
const DefaultPath = "translations_storage.json"

var _ output.TranslationStore = (*Store)(nil)

// Store is the file-backed translation memory.
//
// Readers load the current snapshot without locking. Writers serialize on mu,
// persist the next snapshot with a temp-file-and-rename write and publish it
// only once the rename succeeded, so a failed write leaves both memory and
// disk at the previous state.
type Store struct {
	path string
	log  logrus.FieldLogger

	mu    sync.Mutex
	snap  atomic.Pointer[snapshot]
	files *fileWriter
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for commit and failure messages.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the store from path. A missing file is an empty store; a file
// that cannot be read or parsed is a *domain.CorruptStoreError.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path:  path,
		log:   logrus.StandardLogger(),
		files: newFileWriter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.CorruptStoreError{Path: path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}

	entries, err := load(path)
	if err != nil {
		return nil, &domain.CorruptStoreError{Path: path, Err: err}
	}
	s.snap.Store(newSnapshot(entries))
	s.log.WithFields(logrus.Fields{"path": path, "entries": len(entries)}).Info("translation store loaded")
	return s, nil
}

func load(path string) ([]entities.TranslationEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// Path returns the storage file location.
func (s *Store) Path() string { return s.path }

// Get returns the entry stored for key (normalized) and pair.
func (s *Store) Get(key string, pair entities.LanguagePair) (entities.TranslationEntry, bool) {
	return s.snap.Load().get(entities.NormalizeKey(key), pair)
}

// List yields the entries, optionally restricted to one pair, in insertion
// order. The sequence reads the snapshot current at the time of the call and
// can be ranged over any number of times.
func (s *Store) List(pair *entities.LanguagePair) iter.Seq[entities.TranslationEntry] {
	snap := s.snap.Load()
	var filter *entities.LanguagePair
	if pair != nil {
		p := *pair
		filter = &p
	}
	return func(yield func(entities.TranslationEntry) bool) {
		for _, e := range snap.entries {
			if filter != nil && e.Pair != *filter {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.snap.Load().entries) }

// Stats counts entries per language pair, in order of first appearance.
func (s *Store) Stats() []output.PairCount {
	var out []output.PairCount
	pos := make(map[entities.LanguagePair]int)
	for _, e := range s.snap.Load().entries {
		i, ok := pos[e.Pair]
		if !ok {
			i = len(out)
			pos[e.Pair] = i
			out = append(out, output.PairCount{Pair: e.Pair})
		}
		out[i].Count++
	}
	return out
}

// Export returns the serialized current content and the number of entries
// it holds, both taken from the same snapshot.
func (s *Store) Export() ([]byte, int, error) {
	entries := s.snap.Load().entries
	data, err := Encode(entries)
	if err != nil {
		return nil, 0, err
	}
	return data, len(entries), nil
}

// Put inserts or overwrites entry. It returns nil only once the change is on
// disk. ctx is only consulted before the mutation starts.
func (s *Store) Put(ctx context.Context, entry entities.TranslationEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if old, ok := cur.get(entry.Key, entry.Pair); ok && old == entry {
		return nil
	}
	return s.commit("put", cur.with(entry))
}

// Remove deletes the entry for key and pair and reports whether it existed.
func (s *Store) Remove(ctx context.Context, key string, pair entities.LanguagePair) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key = entities.NormalizeKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	if _, ok := cur.get(key, pair); !ok {
		return false, nil
	}
	if err := s.commit("remove", cur.without(key, pair)); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every entry and returns how many there were.
func (s *Store) Clear(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.snap.Load().entries)
	if n == 0 {
		return 0, nil
	}
	if err := s.commit("clear", newSnapshot(nil)); err != nil {
		return 0, err
	}
	return n, nil
}

// Replace swaps the whole content for entries. Every entry must be valid;
// repeated (key, pair) keep the first position and the last value.
func (s *Store) Replace(ctx context.Context, entries []entities.TranslationEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	next := newSnapshot(dedupe(entries))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("replace", next)
}

// Flush rewrites the current content to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit("flush", s.snap.Load())
}

// commit persists next and publishes it. Callers hold mu.
func (s *Store) commit(op string, next *snapshot) error {
	start := time.Now()
	data, err := Encode(next.entries)
	if err == nil {
		err = s.files.write(s.path, data)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{"op": op, "path": s.path}).WithError(err).Error("translation store write failed")
		return &domain.PersistenceError{Op: op, Path: s.path, Err: err}
	}
	s.snap.Store(next)
	s.log.WithFields(logrus.Fields{
		"op":       op,
		"entries":  len(next.entries),
		"bytes":    len(data),
		"duration": time.Since(start),
	}).Debug("translation store committed")
	return nil
}
