package tokenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Sessions do not survive a
// restart; intended for tests and ephemeral kiosks.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(ctx context.Context, profileID string) (*Record, error) {
	s.mu.RLock()
	data, ok := s.records[profileID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (s *MemoryStore) Save(ctx context.Context, profileID string, rec *Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[profileID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetAccessToken(ctx context.Context, profileID, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.records[profileID]
	if !ok {
		return ErrNotFound
	}
	rec, err := Decode(data)
	if err != nil {
		return err
	}

	rec.AccessToken = accessToken
	if refreshToken != "" {
		rec.RefreshToken = refreshToken
	}
	rec.UpdatedAt = time.Now().Unix()

	updated, err := Encode(rec)
	if err != nil {
		return err
	}
	s.records[profileID] = updated
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, profileID string) error {
	s.mu.Lock()
	delete(s.records, profileID)
	s.mu.Unlock()
	return nil
}
