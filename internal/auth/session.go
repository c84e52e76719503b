// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	TokenBytes        = 32 // 32 bytes = 64 hex chars
	DefaultSessionTTL = 24 * time.Hour
)

// Session is an issued actor session. Only the token hash is stored; the
// plaintext token is returned once at issue time.
type Session struct {
	ID        ulid.ULID
	ActorID   ulid.ULID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// IsExpiredAt reports whether the session would be expired at the given time.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// IsActiveAt reports whether the session is neither revoked nor expired at
// the given time.
func (s *Session) IsActiveAt(t time.Time) bool {
	return s.RevokedAt == nil && !s.IsExpiredAt(t)
}

// SessionRepository persists sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Revoke(ctx context.Context, id ulid.ULID, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ActorRepository resolves actor identities.
type ActorRepository interface {
	Get(ctx context.Context, id ulid.ULID) (*Actor, error)
}

// SessionStore implements the session lifecycle: issue, validate, revoke.
// It is injected into callers rather than held as ambient process state.
type SessionStore struct {
	sessions SessionRepository
	actors   ActorRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a SessionStore. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionStore(sessions SessionRepository, actors ActorRepository, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: sessions,
		actors:   actors,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue creates a session for the actor and returns the plaintext token.
// The token is not recoverable afterwards; only its hash is stored.
func (s *SessionStore) Issue(ctx context.Context, actorID ulid.ULID) (string, *Session, error) {
	if actorID.IsZero() {
		return "", nil, oops.Code("VALIDATION").Errorf("actor ID cannot be zero")
	}

	token, hash, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	session := &Session{
		ID:        ulid.Make(),
		ActorID:   actorID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// Validate resolves a plaintext token to its actor. Expired or revoked
// sessions fail with UNAUTHORIZED.
func (s *SessionStore) Validate(ctx context.Context, token string) (*Actor, error) {
	if token == "" {
		return nil, oops.Code("UNAUTHORIZED").Errorf("session token cannot be empty")
	}

	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, oops.Code("UNAUTHORIZED").
			With("operation", "look up session").
			Wrap(err)
	}
	if !session.IsActiveAt(s.now()) {
		return nil, oops.Code("UNAUTHORIZED").
			With("session_id", session.ID.String()).
			Errorf("session expired or revoked")
	}

	actor, err := s.actors.Get(ctx, session.ActorID)
	if err != nil {
		return nil, oops.Code("UNAUTHORIZED").
			With("actor_id", session.ActorID.String()).
			Wrap(err)
	}
	return actor, nil
}

// Revoke invalidates a session immediately.
func (s *SessionStore) Revoke(ctx context.Context, id ulid.ULID) error {
	return s.sessions.Revoke(ctx, id, s.now())
}

// PruneExpired deletes sessions that expired before now. Returns the number
// of sessions removed.
func (s *SessionStore) PruneExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// GenerateToken creates a secure random token and its hash.
// The plaintext token goes to the client; the hash is stored.
func GenerateToken() (token, hash string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.Code("TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken computes the SHA256 hash of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyToken checks a plaintext token against a stored hash in constant
// time.
func VerifyToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
