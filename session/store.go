package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/storage"
)

const defaultNamespace = "goauthclient"

// Store is a write-through session cache over a [storage.KV] backend. Every
// mutation persists the full snapshot before the in-memory copy changes, so
// a failed write leaves the previous state intact.
type Store struct {
	kv  storage.KV
	key string

	mu  sync.RWMutex
	cur Snapshot

	now func() time.Time
}

// NewStore opens a store over kv and loads any previously persisted
// snapshot. A missing record is not an error; the store starts signed out.
// An empty namespace falls back to the package default.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
func NewStore(ctx context.Context, kv storage.KV, namespace string) (*Store, error) {
	if kv == nil {
		return nil, errors.New("session: nil storage backend")
	}
	if namespace == "" {
		namespace = defaultNamespace
	}

	s := &Store{
		kv:  kv,
		key: namespace + ":session",
		now: time.Now,
	}

	blob, err := kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, err
	}

	snapshot, err := Decode(blob)
	if err != nil {
		// A corrupt blob is unrecoverable; start signed out rather than
		// failing initialization.
		return s, nil
	}

	s.cur = snapshot
	return s, nil
}

// Create atomically replaces the session with a fresh signed-in snapshot
// built from the provider profile. The logged-in flag, the user ID, and the
// login timestamp are written in the same operation.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Create(ctx context.Context, profile Profile, loginType LoginType) (Snapshot, error) {
	if profile.UserID == "" {
		return Snapshot{}, errors.New("session: profile has no user ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := Snapshot{
		UserID:             profile.UserID,
		DisplayName:        profile.DisplayName,
		Phone:              profile.Phone,
		Email:              profile.Email,
		LoginType:          loginType,
		LastLoginUnixMilli: s.now().UnixMilli(),
		LoggedIn:           true,
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return Snapshot{}, err
	}

	s.cur = next
	return next, nil
}

// SetDisplayName patches the display name of the current session.
//
// SetDisplayName may return an error when input validation, dependency calls, or security checks fail.
// SetDisplayName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetDisplayName(ctx context.Context, name string) error {
	return s.patch(ctx, func(snapshot *Snapshot) { snapshot.DisplayName = name })
}

// SetEmail patches the email of the current session.
//
// SetEmail may return an error when input validation, dependency calls, or security checks fail.
// SetEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetEmail(ctx context.Context, email string) error {
	return s.patch(ctx, func(snapshot *Snapshot) { snapshot.Email = email })
}

// SetPhone patches the phone number of the current session.
//
// SetPhone may return an error when input validation, dependency calls, or security checks fail.
// SetPhone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) SetPhone(ctx context.Context, phone string) error {
	return s.patch(ctx, func(snapshot *Snapshot) { snapshot.Phone = phone })
}

// Clear resets every field to its signed-out default and removes the
// persisted record. The in-memory state is cleared even when the backend
// delete fails, so sign-out always succeeds locally.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = Snapshot{}

	err := s.kv.Delete(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Current returns a copy of the cached snapshot.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Valid reports whether the cached snapshot is a usable signed-in session.
//
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Valid()
}

// DisplayIdentifier returns the identifier to show for the cached session.
//
// DisplayIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) DisplayIdentifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.DisplayIdentifier()
}

func (s *Store) patch(ctx context.Context, mutate func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cur.Valid() {
		return errors.New("session: no active session to patch")
	}

	next := s.cur
	mutate(&next)

	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}

	s.cur = next
	return nil
}

func (s *Store) persistLocked(ctx context.Context, snapshot Snapshot) error {
	blob, err := Encode(snapshot)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key, blob)
}
