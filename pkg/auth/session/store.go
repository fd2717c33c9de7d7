package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tokenBytes = 32

// ErrNoSession is returned when a token does not resolve to a live session:
// unknown token, expired session, or a deactivated owner all look the same to
// callers.
var ErrNoSession = errors.New("no valid session")

// Store persists opaque session tokens. Sessions are created on login and
// deleted on logout; they are never mutated in place.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewStore constructs a session store with the configured lifetime.
func NewStore(db *gorm.DB, ttl time.Duration) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Store{db: db, ttl: ttl}, nil
}

// Create mints a fresh token for the user and persists the session row.
func (s *Store) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return session, nil
}

// Resolve loads the session for a token. A session only resolves while it
// exists, is unexpired, and its owning user is still active; everything else
// is ErrNoSession. Expiry is checked here on every lookup, not lazily.
func (s *Store) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("looking up session: %w", err)
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, ErrNoSession
	}
	if !session.User.IsActive {
		return nil, ErrNoSession
	}
	return &session, nil
}

// Destroy deletes every session row carrying the token. Unknown tokens are
// not an error, which makes logout idempotent.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.Session{}).Error
}

// PurgeExpired removes sessions past their expiry and reports how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// NewToken produces an opaque bearer token with 256 bits of entropy.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
