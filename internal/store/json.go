package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// jsonState mirrors the on-disk layout. Order in Seen is insertion order and
// drives FIFO eviction.
type jsonState struct {
	Seen []string `json:"seen"`
}

// JSONStore keeps the seen set in memory and writes it out as a single JSON
// file on Save. A missing or unreadable state file starts an empty set rather
// than failing the run.
type JSONStore struct {
	path    string
	maxSeen int

	order []string
	index map[string]struct{}
	dirty bool
}

// OpenJSON loads the state file at path, tolerating absence and corruption.
func OpenJSON(path string, maxSeen int) (*JSONStore, error) {
	s := &JSONStore{
		path:    path,
		maxSeen: maxSeen,
		index:   make(map[string]struct{}),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			zap.L().Warn("state file unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s, nil
	}

	var st jsonState
	if err := json.Unmarshal(raw, &st); err != nil {
		zap.L().Warn("state file malformed, starting empty",
			zap.String("path", path), zap.Error(err))
		return s, nil
	}

	for _, id := range st.Seen {
		if id == "" {
			continue
		}
		if _, ok := s.index[id]; ok {
			continue
		}
		s.order = append(s.order, id)
		s.index[id] = struct{}{}
	}
	return s, nil
}

func (s *JSONStore) Has(_ context.Context, filingID string) (bool, error) {
	_, ok := s.index[filingID]
	return ok, nil
}

func (s *JSONStore) Add(_ context.Context, filingID string) error {
	if filingID == "" {
		return eris.New("store: empty filing ID")
	}
	if _, ok := s.index[filingID]; ok {
		return nil
	}
	s.order = append(s.order, filingID)
	s.index[filingID] = struct{}{}
	s.dirty = true
	return nil
}

func (s *JSONStore) Len(_ context.Context) (int, error) {
	return len(s.order), nil
}

func (s *JSONStore) Compact(_ context.Context) (int, error) {
	if s.maxSeen <= 0 || len(s.order) <= s.maxSeen {
		return 0, nil
	}
	drop := len(s.order) - s.maxSeen
	for _, id := range s.order[:drop] {
		delete(s.index, id)
	}
	s.order = append([]string(nil), s.order[drop:]...)
	s.dirty = true
	return drop, nil
}

// Save writes the state atomically via a temp file rename in the same
// directory.
func (s *JSONStore) Save(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	if _, err := s.Compact(ctx); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(jsonState{Seen: s.order}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal state")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return eris.Wrap(err, "store: create temp state file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrap(err, "store: write state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "store: close state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return eris.Wrap(err, "store: replace state file")
	}
	s.dirty = false
	return nil
}

func (s *JSONStore) Close() error {
	return s.Save(context.Background())
}
