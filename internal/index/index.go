// Package index persists library entries in a LevelDB database so that listing
// and month queries do not need to re-parse every card.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/library"
)

const entryPrefix = "entry/"

// ErrNotFound is returned by Get for an unknown file.
var ErrNotFound = errors.New(config.ErrIndexNotFound)

// Store is a LevelDB-backed set of library entries keyed by file path.
type Store struct {
	db *leveldb.DB
}

// Open opens (or creates) the index stored in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrIndexOpen, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(file string) []byte {
	return []byte(entryPrefix + file)
}

// Put stores or replaces the entry for e.File.
func (s *Store) Put(e library.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrIndexWrite, err)
	}
	if err := s.db.Put(key(e.File), data, nil); err != nil {
		return fmt.Errorf("%s: %w", config.ErrIndexWrite, err)
	}
	return nil
}

// Get returns the entry stored for file.
func (s *Store) Get(file string) (library.Entry, error) {
	data, err := s.db.Get(key(file), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return library.Entry{}, ErrNotFound
	}
	if err != nil {
		return library.Entry{}, fmt.Errorf("%s: %w", config.ErrIndexRead, err)
	}
	var e library.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return library.Entry{}, fmt.Errorf("%s: %w", config.ErrIndexRead, err)
	}
	return e, nil
}

// Delete removes the entry for file. Deleting an unknown file is not an error.
func (s *Store) Delete(file string) error {
	if err := s.db.Delete(key(file), nil); err != nil {
		return fmt.Errorf("%s: %w", config.ErrIndexWrite, err)
	}
	return nil
}

// List returns every entry in key order.
func (s *Store) List() ([]library.Entry, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(entryPrefix)), nil)
	defer iter.Release()

	var out []library.Entry
	for iter.Next() {
		var e library.Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrIndexRead, err)
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrIndexRead, err)
	}
	return out, nil
}

// ByMonth returns the entries whose birthday falls in month.
func (s *Store) ByMonth(month int) ([]library.Entry, error) {
	if err := library.ValidateMonth(month); err != nil {
		return nil, err
	}
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	return library.FilterByMonth(all, month), nil
}

// Replace makes the index hold exactly entries: new and changed entries are
// written and entries for files no longer present are removed, in one batch.
// It returns the number of removed entries.
func (s *Store) Replace(entries []library.Entry) (int, error) {
	keep := make(map[string]struct{}, len(entries))
	batch := new(leveldb.Batch)
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", config.ErrIndexWrite, err)
		}
		batch.Put(key(e.File), data)
		keep[string(key(e.File))] = struct{}{}
	}

	pruned := 0
	iter := s.db.NewIterator(util.BytesPrefix([]byte(entryPrefix)), nil)
	for iter.Next() {
		k := string(iter.Key())
		if _, ok := keep[k]; ok {
			continue
		}
		batch.Delete([]byte(k))
		pruned++
		slog.Debug(config.MsgIndexPruned,
			config.LogKeyComponent, config.CompIndex,
			config.LogKeyFile, k[len(entryPrefix):],
		)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrIndexRead, err)
	}

	if err := s.db.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("%s: %w", config.ErrIndexWrite, err)
	}
	slog.Info(config.MsgIndexUpdated,
		config.LogKeyComponent, config.CompIndex,
		config.LogKeyCount, len(entries),
		config.LogKeySkipped, pruned,
	)
	return pruned, nil
}
