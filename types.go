package goAuthClient

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/session"
)

// LoginType records which credential family produced the current session.
//
//	Docs: docs/session.md
type LoginType = session.LoginType

const (
	// LoginNone is an exported constant or variable used by the auth client.
	LoginNone = session.LoginNone
	// LoginPhone is an exported constant or variable used by the auth client.
	LoginPhone = session.LoginPhone
	// LoginEmail is an exported constant or variable used by the auth client.
	LoginEmail = session.LoginEmail
	// LoginFederated is an exported constant or variable used by the auth client.
	LoginFederated = session.LoginFederated
)

// UserProfile is the identity record an [IdentityProvider] hands back after
// a successful sign-in or account creation. Fields the provider does not
// know stay empty.
type UserProfile struct {
	UserID      string
	DisplayName string
	Phone       string
	Email       string
}

// DispatchResult is returned by the provider's phone verification dispatch
// calls. A non-empty AutoCode means the provider verified the number
// without user input and the orchestrator may complete immediately.
type DispatchResult struct {
	ChallengeID string
	ResendToken string
	AutoCode    string
}

// EmailCredential authenticates with an email address and password.
type EmailCredential struct {
	Email    string
	Password string
}

// FederatedCredential authenticates with tokens minted by an external
// identity source (e.g. a platform sign-in sheet).
type FederatedCredential struct {
	Provider    string
	IDToken     string
	AccessToken string
}

// IdentityProvider is the interface that callers must implement to connect
// the orchestrator to a remote identity backend. Every method is
// synchronous: implementations block until the backend answers or ctx is
// done, and classify failures into the package sentinel errors
// ([ErrNetwork], [ErrInvalidCredential], [ErrRateLimited],
// [ErrMissingChallenge], [ErrPermissionDenied]). Unclassified errors are
// wrapped in [ErrUnknownProvider] by the orchestrator.
//
// StartPhoneVerification receives the challenge TTL as timeout so the
// provider can bound its own dispatch to the window in which the code is
// still confirmable.
//
//	Docs: docs/provider.md
type IdentityProvider interface {
	StartPhoneVerification(ctx context.Context, phone string, timeout time.Duration) (DispatchResult, error)
	ResendPhoneVerification(ctx context.Context, phone, resendToken string) (DispatchResult, error)
	ConfirmPhoneCode(ctx context.Context, challengeID, code string) (UserProfile, error)
	SignInWithPassword(ctx context.Context, email, password string) (UserProfile, error)
	CreateAccount(ctx context.Context, email, password string) (UserProfile, error)
	SignInFederated(ctx context.Context, credential FederatedCredential) (UserProfile, error)
	SignOut(ctx context.Context) error
}

// ChallengeState is the lifecycle phase of the active phone verification
// challenge.
//
//	Docs: docs/verification.md
type ChallengeState uint8

const (
	// ChallengeIdle is an exported constant or variable used by the auth client.
	ChallengeIdle ChallengeState = iota
	// ChallengePending is an exported constant or variable used by the auth client.
	ChallengePending
	// ChallengeCodeSent is an exported constant or variable used by the auth client.
	ChallengeCodeSent
	// ChallengeVerified is an exported constant or variable used by the auth client.
	ChallengeVerified
	// ChallengeFailed is an exported constant or variable used by the auth client.
	ChallengeFailed
	// ChallengeExpired is an exported constant or variable used by the auth client.
	ChallengeExpired
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s ChallengeState) String() string {
	switch s {
	case ChallengePending:
		return "pending"
	case ChallengeCodeSent:
		return "code_sent"
	case ChallengeVerified:
		return "verified"
	case ChallengeFailed:
		return "failed"
	case ChallengeExpired:
		return "expired"
	default:
		return "idle"
	}
}

// Challenge is a read-only snapshot of the active phone verification
// challenge, returned by [Orchestrator.Challenge].
type Challenge struct {
	ID          string
	Phone       string
	State       ChallengeState
	ResendToken string
	CanResend   bool
}

// AuditEvent is a structured audit record emitted by the orchestrator.
//
//	Docs: docs/audit.md
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the orchestrator's audit
// dispatcher.
//
//	Docs: docs/audit.md
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
//
//	Docs: docs/audit.md
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
//
//	Docs: docs/audit.md
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
//
//	Docs: docs/audit.md
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
//
//	Docs: docs/audit.md
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
