package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/storage"
)

func newTestStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), kv, "test")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return store
}

func TestCreateProducesValidSession(t *testing.T) {
	store := newTestStore(t, storage.NewMemoryKV())

	snapshot, err := store.Create(context.Background(), Profile{
		UserID: "uid-1",
		Phone:  "+919876543210",
	}, LoginPhone)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !snapshot.LoggedIn || snapshot.UserID != "uid-1" {
		t.Fatalf("logged-in flag and user ID must be set together, got %+v", snapshot)
	}
	if snapshot.LastLoginUnixMilli != 1700000000000 {
		t.Fatalf("unexpected login timestamp %d", snapshot.LastLoginUnixMilli)
	}
	if !store.Valid() {
		t.Fatal("store must report a valid session after Create")
	}
}

func TestCreateRejectsEmptyUserID(t *testing.T) {
	store := newTestStore(t, storage.NewMemoryKV())

	if _, err := store.Create(context.Background(), Profile{}, LoginEmail); err == nil {
		t.Fatal("expected error for profile without user ID")
	}
	if store.Valid() {
		t.Fatal("failed Create must not leave a valid session")
	}
}

func TestClearResetsEveryField(t *testing.T) {
	store := newTestStore(t, storage.NewMemoryKV())

	if _, err := store.Create(context.Background(), Profile{UserID: "uid-1", Email: "a@b.co"}, LoginEmail); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if got := store.Current(); got != (Snapshot{}) {
		t.Fatalf("expected zero snapshot after Clear, got %+v", got)
	}
	if store.Valid() {
		t.Fatal("cleared session must not validate")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t, storage.NewMemoryKV())

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("clearing a signed-out store must succeed, got %v", err)
	}
}

func TestPatchRequiresActiveSession(t *testing.T) {
	store := newTestStore(t, storage.NewMemoryKV())

	if err := store.SetDisplayName(context.Background(), "Alice"); err == nil {
		t.Fatal("expected patch of signed-out store to fail")
	}

	if _, err := store.Create(context.Background(), Profile{UserID: "uid-1"}, LoginPhone); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SetDisplayName(context.Background(), "Alice"); err != nil {
		t.Fatalf("SetDisplayName: %v", err)
	}
	if got := store.Current().DisplayName; got != "Alice" {
		t.Fatalf("expected patched display name, got %q", got)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := newTestStore(t, kv)

	if _, err := store.Create(context.Background(), Profile{
		UserID:      "uid-1",
		DisplayName: "Alice",
		Email:       "alice@example.org",
	}, LoginEmail); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened := newTestStore(t, kv)
	got := reopened.Current()
	if !got.Valid() || got.DisplayName != "Alice" || got.LoginType != LoginEmail {
		t.Fatalf("reopened store must see the persisted session, got %+v", got)
	}
}

func TestCorruptBlobStartsSignedOut(t *testing.T) {
	kv := storage.NewMemoryKV()
	if err := kv.Set(context.Background(), "test:session", []byte{0xFF, 0x01}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	store := newTestStore(t, kv)
	if store.Valid() {
		t.Fatal("corrupt persisted blob must fall back to signed out")
	}
}

type failingKV struct {
	storage.KV
	setErr error
}

func (f *failingKV) Set(context.Context, string, []byte) error { return f.setErr }

func TestFailedWriteKeepsPreviousState(t *testing.T) {
	inner := storage.NewMemoryKV()
	kv := &failingKV{KV: inner}
	store := newTestStore(t, kv)

	if _, err := store.Create(context.Background(), Profile{UserID: "uid-1"}, LoginPhone); err != nil {
		t.Fatalf("Create: %v", err)
	}

	kv.setErr = errors.New("disk full")
	if err := store.SetEmail(context.Background(), "new@example.org"); err == nil {
		t.Fatal("expected failed persist to surface")
	}
	if got := store.Current().Email; got != "" {
		t.Fatalf("failed write must not mutate the cache, got %q", got)
	}
}

func TestDisplayIdentifierFollowsLoginType(t *testing.T) {
	cases := []struct {
		name string
		s    Snapshot
		want string
	}{
		{"phone login shows the phone", Snapshot{UserID: "u", Phone: "+91987", LoginType: LoginPhone}, "+91987"},
		{"display name never substitutes", Snapshot{UserID: "u", DisplayName: "Asha", Phone: "+91987", LoginType: LoginPhone}, "+91987"},
		{"email login shows the email", Snapshot{UserID: "u", Email: "a@b.co", LoginType: LoginEmail}, "a@b.co"},
		{"federated login shows the email", Snapshot{UserID: "u", Email: "a@b.co", LoginType: LoginFederated}, "a@b.co"},
		{"signed out shows nothing", Snapshot{}, ""},
	}

	for _, tc := range cases {
		if got := tc.s.DisplayIdentifier(); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
