package homekit

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/cybre/mrsteam-homekit/internal/errors"
	"go.mills.io/bitcask/v2"
)

const (
	keyPrefix = "hap/"
	indexKey  = "hap-index"
)

// Store keeps the HAP server's pairings and identity in bitcask. The key
// names are tracked in an index entry so lookups by suffix don't need to
// walk the whole database.
type Store struct {
	mu sync.Mutex
	db bitcask.DB
}

func NewStore(db bitcask.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.index()
	if err != nil {
		return err
	}

	// the index is written first so a stored value is never missing from it
	_, known := keys[key]
	if !known {
		keys[key] = struct{}{}
		if err := s.writeIndex(keys); err != nil {
			return err
		}
	}

	if err := s.db.Put([]byte(keyPrefix+key), value); err != nil {
		if !known {
			delete(keys, key)
			if rbErr := s.writeIndex(keys); rbErr != nil {
				slog.Warn("failed to roll back key index", slog.String("key", key), slog.Any("error", rbErr))
			}
		}

		return errors.Wrapf(err, "put %s", key)
	}

	return nil
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.db.Get([]byte(keyPrefix + key))
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", key)
	}

	return v, nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.index()
	if err != nil {
		return err
	}

	_, known := keys[key]
	if known {
		delete(keys, key)
		if err := s.writeIndex(keys); err != nil {
			return err
		}
	}

	if err := s.db.Delete([]byte(keyPrefix + key)); err != nil && err != bitcask.ErrKeyNotFound {
		if known {
			keys[key] = struct{}{}
			if rbErr := s.writeIndex(keys); rbErr != nil {
				slog.Warn("failed to roll back key index", slog.String("key", key), slog.Any("error", rbErr))
			}
		}

		return errors.Wrapf(err, "delete %s", key)
	}

	return nil
}

func (s *Store) KeysWithSuffix(suffix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.index()
	if err != nil {
		return nil, err
	}

	var matches []string
	for k := range keys {
		if strings.HasSuffix(k, suffix) {
			matches = append(matches, k)
		}
	}
	sort.Strings(matches)

	return matches, nil
}

func (s *Store) index() (map[string]struct{}, error) {
	keys := make(map[string]struct{})

	raw, err := s.db.Get([]byte(indexKey))
	if err != nil {
		if err == bitcask.ErrKeyNotFound {
			return keys, nil
		}

		return nil, errors.Wrapf(err, "get key index")
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrapf(err, "unmarshal key index")
	}
	for _, k := range list {
		keys[k] = struct{}{}
	}

	return keys, nil
}

func (s *Store) writeIndex(keys map[string]struct{}) error {
	list := make([]string, 0, len(keys))
	for k := range keys {
		list = append(list, k)
	}
	sort.Strings(list)

	buf, err := json.Marshal(list)
	if err != nil {
		return errors.Wrapf(err, "marshal key index")
	}

	if err := s.db.Put([]byte(indexKey), buf); err != nil {
		return errors.Wrapf(err, "put key index")
	}

	return nil
}
