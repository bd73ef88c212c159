// Package postgres stores the profile blob as one JSONB row keyed by slot.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/codec"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS lifeline_profiles (
	slot_key   TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

type ProfileStore struct {
	db  *sql.DB
	key string
	now func() time.Time
}

func NewProfileStore(db *sql.DB, key string) *ProfileStore {
	return &ProfileStore{db: db, key: key, now: time.Now}
}

// Open connects with the lib/pq driver and creates the table if needed.
func Open(ctx context.Context, dsn, key string) (*ProfileStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, domain.E(domain.KindStorageUnavailable, "postgres open", err)
	}
	s := NewProfileStore(db, key)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ProfileStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return domain.E(domain.KindStorageUnavailable, "postgres migrate", err)
	}
	return nil
}

func (s *ProfileStore) Load(ctx context.Context) (*domain.Profile, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM lifeline_profiles WHERE slot_key = $1`, s.key,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Ef(domain.KindNotFound, "postgres load profile", "profile not found")
		}
		return nil, domain.E(domain.KindStorageUnavailable, "postgres load profile", err)
	}
	return codec.Decode(body)
}

func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	body, err := codec.Encode(profile)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lifeline_profiles (slot_key, body, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (slot_key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.key, body, s.now().UTC(),
	)
	if err != nil {
		return domain.E(domain.KindStorageUnavailable, "postgres save profile", err)
	}
	return nil
}

func (s *ProfileStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lifeline_profiles WHERE slot_key = $1`, s.key); err != nil {
		return domain.E(domain.KindStorageUnavailable, "postgres clear profile", err)
	}
	return nil
}

func (s *ProfileStore) Close() error {
	return s.db.Close()
}
