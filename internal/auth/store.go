package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// dummyPassword feeds the hash compared against when a username is unknown,
// so both failure paths cost one hash check.
const dummyPassword = "numgate-unknown-user"

// Store is the in-memory credential store. It lives as long as the process
// and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]Credential

	hasher    PasswordHasher
	dummyHash string
	now       func() time.Time
}

func NewStore(hasher PasswordHasher) (*Store, error) {
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &Store{
		records:   make(map[string]Credential),
		hasher:    hasher,
		dummyHash: dummyHash,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register inserts a new credential. Of two concurrent registrations of the
// same username exactly one succeeds; the other gets ErrAlreadyExists.
func (s *Store) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return ErrInvalidUsername
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Skip the expensive hash for names that are obviously taken.
	if s.exists(username) {
		return ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.records[username]; taken {
		return ErrAlreadyExists
	}
	s.records[username] = Credential{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	return nil
}

// VerifyCredentials returns the same ErrInvalidCredentials for an unknown
// username and for a wrong password.
func (s *Store) VerifyCredentials(ctx context.Context, username, password string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	record, ok := s.Lookup(username)
	if !ok {
		_ = s.hasher.Check(password, s.dummyHash)
		return Identity{}, ErrInvalidCredentials
	}

	if !s.hasher.Check(password, record.PasswordHash) {
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{Subject: record.Username}, nil
}

func (s *Store) Lookup(username string) (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[username]
	return record, ok
}

func (s *Store) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *Store) exists(username string) bool {
	_, ok := s.Lookup(username)
	return ok
}

var (
	ErrAlreadyExists      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username format is invalid")
)
