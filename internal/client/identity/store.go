package identity

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/studysync/internal/cryptox"
	"github.com/dmitrijs2005/studysync/internal/dbx"
)

const (
	refreshTokenKey = "identity.refresh_token"
	savedAtKey      = "identity.saved_at"
)

// SealedStore keeps the refresh token in the local metadata table, sealed
// with a device key, together with the time it was written.
type SealedStore struct {
	db   *sql.DB
	repo metadata.Repository
	key  []byte
	now  func() time.Time
}

// NewSealedStore returns a SessionStore using key for sealing. Reads go
// through repo; writes run in a transaction on db so the token and its
// timestamp change together.
func NewSealedStore(db *sql.DB, repo metadata.Repository, key []byte) *SealedStore {
	return &SealedStore{db: db, repo: repo, key: key, now: time.Now}
}

// Load returns the stored refresh token or "". A value that no longer opens
// with the current key is discarded.
func (s *SealedStore) Load(ctx context.Context) (string, error) {
	sealed, err := s.repo.Get(ctx, refreshTokenKey)
	if err != nil {
		return "", err
	}
	if sealed == nil {
		return "", nil
	}
	plain, err := cryptox.Open(sealed, s.key)
	if err != nil {
		if derr := s.Clear(ctx); derr != nil {
			return "", fmt.Errorf("discard unreadable session: %w", derr)
		}
		return "", nil
	}
	return string(plain), nil
}

// Save writes the sealed token and its timestamp in one transaction.
func (s *SealedStore) Save(ctx context.Context, refreshToken string) error {
	sealed, err := cryptox.Seal([]byte(refreshToken), s.key)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}
	savedAt := []byte(s.now().UTC().Format(time.RFC3339))

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, refreshTokenKey, sealed); err != nil {
			return err
		}
		return repo.Set(ctx, savedAtKey, savedAt)
	})
}

// SavedAt reports when the current session was stored. ok is false when
// nothing is stored.
func (s *SealedStore) SavedAt(ctx context.Context) (t time.Time, ok bool, err error) {
	raw, err := s.repo.Get(ctx, savedAtKey)
	if err != nil || raw == nil {
		return time.Time{}, false, err
	}
	t, err = time.Parse(time.RFC3339, string(raw))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse session timestamp: %w", err)
	}
	return t, true, nil
}

func (s *SealedStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, refreshTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, savedAtKey)
	})
}

// MemoryStore is an in-process SessionStore.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(_ context.Context, refreshToken string) error {
	m.mu.Lock()
	m.token = refreshToken
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
