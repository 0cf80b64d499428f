// Package lookup drives a postal code search: address lookup, history update
// and best-effort weather enrichment.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/cep-lookup/internal/history"
)

// State is what a search surface renders.
type State struct {
	Address    *AddressRecord   `json:"address"`
	Weather    *WeatherSnapshot `json:"weather"`
	History    history.List     `json:"history"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

// Outcome describes one completed search.
type Outcome struct {
	SearchID   string           `json:"searchId"`
	PostalCode string           `json:"postalCode"`
	Address    *AddressRecord   `json:"address"`
	Weather    *WeatherSnapshot `json:"weather"`
	Enriched   bool             `json:"enriched"`
	History    history.List     `json:"history"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

// Session is the search surface: it owns the current address, weather and its
// own copy of the history list. Overlapping searches are not cancelled; the
// last one to finish decides the address and weather. History updates are
// serialized so no successful code is lost.
type Session struct {
	history   *history.Store
	addresses AddressClient
	enricher  Enricher
	logger    *zap.Logger

	mu         sync.Mutex
	address    *AddressRecord
	weather    *WeatherSnapshot
	entries    history.List
	diagnostic string
}

// NewSession creates a Session. A nil enricher disables weather.
func NewSession(hist *history.Store, addresses AddressClient, enricher Enricher, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if enricher == nil {
		enricher = NewEnricher(logger)
	}
	return &Session{
		history:   hist,
		addresses: addresses,
		enricher:  enricher,
		logger:    logger,
		entries:   history.List{},
	}
}

// Mount (re)loads the history list from storage. An unreadable stored value
// is replaced by an empty list and reported through State().Diagnostic.
func (s *Session) Mount(ctx context.Context) error {
	list, err := s.history.Load(ctx)
	diagnostic := ""
	if err != nil {
		if !errors.Is(err, history.ErrStorageRead) {
			return err
		}
		s.logger.Warn("ignoring unreadable search history", zap.Error(err))
		list = history.List{}
		diagnostic = "stored history was unreadable and has been ignored"
	}

	s.mu.Lock()
	s.entries = list
	s.diagnostic = diagnostic
	s.mu.Unlock()
	return nil
}

// Search looks up raw as a postal code. The returned error is ErrNotFound or
// wraps ErrLookupFailed; enrichment problems never produce an error.
func (s *Session) Search(ctx context.Context, raw string) (Outcome, error) {
	code := raw
	out := Outcome{
		SearchID:   uuid.NewString(),
		PostalCode: code,
	}
	log := s.logger.With(zap.String("search_id", out.SearchID), zap.String("cep", code))

	addr, err := s.addresses.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.mu.Lock()
			s.address = nil
			out.History = slices.Clone(s.entries)
			s.mu.Unlock()

			log.Info("postal code not found")
			return out, ErrNotFound
		}

		s.mu.Lock()
		out.History = slices.Clone(s.entries)
		s.mu.Unlock()

		log.Warn("address lookup failed", zap.Error(err))
		if !errors.Is(err, ErrLookupFailed) {
			err = fmt.Errorf("%w: %v", ErrLookupFailed, err)
		}
		return out, err
	}
	out.Address = &addr

	s.mu.Lock()
	s.address = &addr
	entries, err := s.history.Append(ctx, s.entries, code)
	if err != nil {
		log.Error("failed to save search history", zap.Error(err))
		out.Diagnostic = "search history could not be saved"
	} else {
		s.entries = entries
	}
	out.History = slices.Clone(s.entries)
	s.mu.Unlock()

	snap, ok := s.enricher.Enrich(ctx, addr.City)

	s.mu.Lock()
	if ok {
		s.weather = &snap
	}
	out.Enriched = ok
	out.Weather = cloneWeather(s.weather)
	s.mu.Unlock()

	log.Info("postal code resolved",
		zap.String("city", addr.City),
		zap.Bool("enriched", ok),
		zap.Int("history_len", len(out.History)))
	return out, nil
}

// SelectHistoryEntry replays a past search. It always performs a fresh lookup.
func (s *Session) SelectHistoryEntry(ctx context.Context, code string) (Outcome, error) {
	return s.Search(ctx, code)
}

// ClearHistory removes the persisted history and empties this session's list.
func (s *Session) ClearHistory(ctx context.Context) (history.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.history.Clear(ctx)
	if err != nil {
		return slices.Clone(s.entries), err
	}
	s.entries = list
	s.diagnostic = ""
	return history.List{}, nil
}

// History returns this session's copy of the history list.
func (s *Session) History() history.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// State returns a snapshot of everything the search surface shows.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Weather:    cloneWeather(s.weather),
		History:    slices.Clone(s.entries),
		Diagnostic: s.diagnostic,
	}
	if s.address != nil {
		a := *s.address
		st.Address = &a
	}
	return st
}

func cloneWeather(w *WeatherSnapshot) *WeatherSnapshot {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}
