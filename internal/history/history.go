// Package history persists the list of postal codes that resolved
// successfully. The whole list is stored as one JSON array under a single key,
// deduplicated and kept in first-insertion order.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// DefaultKey is the storage key the list lives under.
const DefaultKey = "searchHistory"

// ErrStorageRead is returned by Load when a value exists under the key but is
// not a JSON array of strings.
var ErrStorageRead = errors.New("stored history is unreadable")

// KV is the subset of the key-value store the history needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// List is an ordered, duplicate-free sequence of postal codes.
type List []string

// Contains reports whether code is already in the list.
func (l List) Contains(code string) bool {
	return slices.Contains(l, code)
}

// Store maps the search history onto one key of a KV.
type Store struct {
	kv  KV
	key string
}

// NewStore creates a Store. An empty key selects DefaultKey.
func NewStore(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the storage key in use.
func (s *Store) Key() string { return s.key }

// Load reads the persisted list. An absent key yields an empty list.
func (s *Store) Load(ctx context.Context) (List, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return List{}, nil
	}

	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	// "null" decodes without error but is not a list.
	if codes == nil {
		return nil, fmt.Errorf("%w: value is not an array", ErrStorageRead)
	}
	return List(codes), nil
}

// Append returns list with code added at the end and persists the result.
// When code is already present, list is returned as is and nothing is written.
// The input slice is never modified.
func (s *Store) Append(ctx context.Context, list List, code string) (List, error) {
	if list.Contains(code) {
		return list, nil
	}

	next := make(List, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, code)

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear deletes the key and returns an empty list.
func (s *Store) Clear(ctx context.Context) (List, error) {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return nil, fmt.Errorf("clear history: %w", err)
	}
	return List{}, nil
}

func (s *Store) save(ctx context.Context, list List) error {
	b, err := json.Marshal([]string(list))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
