package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/codec"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

// ProfileStore is an in-memory implementation of domain.ProfileStore.
// It keeps the encoded blob rather than the struct so reads never alias
// the caller's profile. It is NOT persistent and is only suitable for
// development / local mode.
type ProfileStore struct {
	mu   sync.RWMutex
	blob []byte
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{}
}

func (s *ProfileStore) Load(_ context.Context) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.blob == nil {
		return nil, domain.Ef(domain.KindNotFound, "memory load profile", "profile not found")
	}
	return codec.Decode(s.blob)
}

func (s *ProfileStore) Save(_ context.Context, profile *domain.Profile) error {
	b, err := codec.Encode(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = b
	return nil
}

func (s *ProfileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = nil
	return nil
}

// SetRaw replaces the slot content with an arbitrary blob, bypassing encoding.
// Used to import blobs written by other clients.
func (s *ProfileStore) SetRaw(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blob = append([]byte(nil), b...)
}
