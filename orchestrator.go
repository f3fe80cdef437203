package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MrEthical07/goAuthClient/discovery"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/otp"
	"github.com/MrEthical07/goAuthClient/session"
)

// Orchestrator coordinates credential flows against an [IdentityProvider]
// and owns the device-local session. Construct it with [Builder.Build].
//
// All exported methods are safe for concurrent use. Only one phone
// verification challenge is active at a time; starting a new one supersedes
// the old, and completions belonging to a superseded challenge are
// discarded.
//
//	Docs: docs/orchestrator.md
type Orchestrator struct {
	config   Config
	provider IdentityProvider
	sessions *session.Store
	detector *discovery.Detector
	cooldown *otp.Timer
	audit    *internalaudit.Dispatcher
	metrics  *Metrics

	mu            sync.Mutex
	challenge     *phoneChallenge
	seq           uint64
	countdown     <-chan otp.Event
	cooldownUntil time.Time
	closed        bool
}

// cooldownActiveLocked reports whether the resend cooldown deadline is still
// in the future. Gating is time-based so an unconsumed countdown stream
// never blocks a resend.
func (o *Orchestrator) cooldownActiveLocked() bool {
	return time.Now().Before(o.cooldownUntil)
}

func (o *Orchestrator) guard() error {
	if o == nil || o.provider == nil || o.sessions == nil {
		return ErrOrchestratorNotReady
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOrchestratorClosed
	}
	return nil
}

// classify maps a provider failure onto the package error taxonomy.
// Recognized sentinels pass through; everything else is wrapped in
// [ErrUnknownProvider].
func (o *Orchestrator) classify(err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range classifiedErrors {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	o.metrics.Inc(MetricProviderError)
	return fmt.Errorf("%w: %v", ErrUnknownProvider, err)
}

func (o *Orchestrator) observeProvider(start time.Time) {
	o.metrics.Observe(MetricProviderLatency, time.Since(start))
}

// Session returns a copy of the current session snapshot.
//
// Session does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) Session() session.Snapshot {
	if o == nil || o.sessions == nil {
		return session.Snapshot{}
	}
	return o.sessions.Current()
}

// IsSignedIn reports whether a valid session is present.
//
// IsSignedIn does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) IsSignedIn() bool {
	return o != nil && o.sessions != nil && o.sessions.Valid()
}

// DisplayIdentifier returns the identifier to show for the signed-in user.
//
// DisplayIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) DisplayIdentifier() string {
	if o == nil || o.sessions == nil {
		return ""
	}
	return o.sessions.DisplayIdentifier()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) MetricsSnapshot() MetricsSnapshot {
	if o == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return o.metrics.Snapshot()
}

// DiscoverIdentifiers collects device-known phone numbers and email
// accounts for sign-in suggestions. Returns empty identifiers when
// discovery is disabled or no source was configured.
//
// DiscoverIdentifiers does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) DiscoverIdentifiers(ctx context.Context) discovery.Identifiers {
	if o == nil || o.detector == nil || !o.config.Discovery.Enabled {
		return discovery.Identifiers{}
	}

	o.metrics.Inc(MetricDiscoveryRun)
	return o.detector.Detect(ctx)
}

// SignInWithPassword authenticates with an email address and password and
// replaces the local session on success.
//
// SignInWithPassword may return an error when input validation, dependency calls, or security checks fail.
// SignInWithPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) SignInWithPassword(ctx context.Context, credential EmailCredential) (session.Snapshot, error) {
	if err := o.guard(); err != nil {
		return session.Snapshot{}, err
	}
	if !discovery.IsValidEmail(credential.Email) {
		return session.Snapshot{}, ErrInvalidEmail
	}
	if credential.Password == "" {
		return session.Snapshot{}, ErrEmptyPassword
	}

	start := time.Now()
	profile, err := o.provider.SignInWithPassword(ctx, credential.Email, credential.Password)
	o.observeProvider(start)
	if err != nil {
		err = o.classify(err)
		o.metrics.Inc(MetricSignInFailure)
		o.emitAudit(ctx, auditSignIn, false, func(e *AuditEvent) {
			e.LoginType = LoginEmail.String()
			e.Error = err.Error()
		})
		return session.Snapshot{}, err
	}

	if profile.Email == "" {
		profile.Email = credential.Email
	}
	return o.establishSession(ctx, profile, LoginEmail, auditSignIn, MetricSignInSuccess)
}

// CreateAccount registers a new email account and signs it in. A non-empty
// displayName is patched onto the provider profile after creation; a patch
// failure does not fail the sign-up.
//
// CreateAccount may return an error when input validation, dependency calls, or security checks fail.
// CreateAccount does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) CreateAccount(ctx context.Context, credential EmailCredential, displayName string) (session.Snapshot, error) {
	if err := o.guard(); err != nil {
		return session.Snapshot{}, err
	}
	if !discovery.IsValidEmail(credential.Email) {
		return session.Snapshot{}, ErrInvalidEmail
	}
	if credential.Password == "" {
		return session.Snapshot{}, ErrEmptyPassword
	}

	start := time.Now()
	profile, err := o.provider.CreateAccount(ctx, credential.Email, credential.Password)
	o.observeProvider(start)
	if err != nil {
		err = o.classify(err)
		o.metrics.Inc(MetricSignUpFailure)
		o.emitAudit(ctx, auditSignUp, false, func(e *AuditEvent) {
			e.LoginType = LoginEmail.String()
			e.Error = err.Error()
		})
		return session.Snapshot{}, err
	}

	if profile.Email == "" {
		profile.Email = credential.Email
	}
	if displayName != "" {
		profile.DisplayName = displayName
	}

	if _, err := o.establishSession(ctx, profile, LoginEmail, auditSignUp, MetricSignUpSuccess); err != nil {
		return session.Snapshot{}, err
	}

	if displayName != "" {
		if err := o.sessions.SetDisplayName(ctx, displayName); err != nil {
			log.Print("goAuthClient: display name patch after sign-up failed: ", err)
		}
	}

	return o.sessions.Current(), nil
}

// SignInFederated authenticates with tokens from an external identity
// source. Profile fields the provider leaves empty are filled from the ID
// token's unverified claims when one is present.
//
// SignInFederated may return an error when input validation, dependency calls, or security checks fail.
// SignInFederated does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) SignInFederated(ctx context.Context, credential FederatedCredential) (session.Snapshot, error) {
	if err := o.guard(); err != nil {
		return session.Snapshot{}, err
	}
	if credential.IDToken == "" && credential.AccessToken == "" {
		return session.Snapshot{}, ErrInvalidCredential
	}

	start := time.Now()
	profile, err := o.provider.SignInFederated(ctx, credential)
	o.observeProvider(start)
	if err != nil {
		err = o.classify(err)
		o.metrics.Inc(MetricSignInFailure)
		o.emitAudit(ctx, auditSignIn, false, func(e *AuditEvent) {
			e.LoginType = LoginFederated.String()
			e.Error = err.Error()
		})
		return session.Snapshot{}, err
	}

	profile = fillProfileFromIDToken(profile, credential.IDToken)
	return o.establishSession(ctx, profile, LoginFederated, auditSignIn, MetricSignInSuccess)
}

// SignOut clears the local session unconditionally. The provider sign-out
// is best effort: a remote failure is logged, never surfaced, and never
// leaves the device signed in.
//
// SignOut may return an error when input validation, dependency calls, or security checks fail.
// SignOut does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) SignOut(ctx context.Context) error {
	if err := o.guard(); err != nil {
		return err
	}

	if err := o.provider.SignOut(ctx); err != nil {
		log.Print("goAuthClient: provider sign-out failed: ", err)
	}

	o.cancelChallenge()

	err := o.sessions.Clear(ctx)
	o.metrics.Inc(MetricSignOut)
	o.metrics.Inc(MetricSessionCleared)
	o.emitAudit(ctx, auditSignOut, err == nil, nil)
	o.emitAudit(ctx, auditSessionCleared, err == nil, nil)
	return err
}

// Close releases background resources: the resend countdown, the challenge
// expiry timer, and the audit dispatcher. The orchestrator rejects all
// operations afterwards.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) Close() {
	if o == nil {
		return
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.cancelChallenge()
	if o.cooldown != nil {
		o.cooldown.Stop()
	}
	o.audit.Close()
}

func (o *Orchestrator) establishSession(ctx context.Context, profile UserProfile, loginType LoginType, eventType string, successMetric MetricID) (session.Snapshot, error) {
	snapshot, err := o.sessions.Create(ctx, session.Profile{
		UserID:      profile.UserID,
		DisplayName: profile.DisplayName,
		Phone:       profile.Phone,
		Email:       profile.Email,
	}, loginType)
	if err != nil {
		return session.Snapshot{}, err
	}

	o.metrics.Inc(successMetric)
	o.metrics.Inc(MetricSessionCreated)
	o.emitAudit(ctx, eventType, true, func(e *AuditEvent) {
		e.UserID = snapshot.UserID
		e.LoginType = loginType.String()
	})

	return snapshot, nil
}
