package goAuthClient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/storage"
)

type fakeProvider struct {
	mu sync.Mutex

	startCalls   int
	resendCalls  int
	confirmCalls int

	lastTimeout time.Duration

	dispatch    DispatchResult
	dispatchErr error

	profile    UserProfile
	confirmErr error

	signOutErr error

	// confirmHook runs inside ConfirmPhoneCode before it returns, with the
	// provider mutex released.
	confirmHook func()
}

func (p *fakeProvider) StartPhoneVerification(_ context.Context, phone string, timeout time.Duration) (DispatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startCalls++
	p.lastTimeout = timeout
	return p.dispatch, p.dispatchErr
}

func (p *fakeProvider) ResendPhoneVerification(_ context.Context, phone, resendToken string) (DispatchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resendCalls++
	return p.dispatch, p.dispatchErr
}

func (p *fakeProvider) ConfirmPhoneCode(_ context.Context, challengeID, code string) (UserProfile, error) {
	p.mu.Lock()
	p.confirmCalls++
	hook := p.confirmHook
	profile, err := p.profile, p.confirmErr
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	return profile, err
}

func (p *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (UserProfile, error) {
	return p.profile, p.confirmErr
}

func (p *fakeProvider) CreateAccount(_ context.Context, email, password string) (UserProfile, error) {
	return p.profile, p.confirmErr
}

func (p *fakeProvider) SignInFederated(_ context.Context, credential FederatedCredential) (UserProfile, error) {
	return p.profile, p.confirmErr
}

func (p *fakeProvider) SignOut(context.Context) error {
	return p.signOutErr
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Verification.ChallengeTTL = time.Second
	cfg.Verification.ResendCooldown = 200 * time.Millisecond
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestOrchestrator(t *testing.T, provider IdentityProvider, cfg Config) *Orchestrator {
	t.Helper()

	o, err := New().
		WithConfig(cfg).
		WithProvider(provider).
		WithStorage(storage.NewMemoryKV()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func TestStartPhoneVerificationDispatchesCode(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1", ResendToken: "rt-1"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	challenge, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("StartPhoneVerification: %v", err)
	}
	if challenge.State != ChallengeCodeSent {
		t.Fatalf("expected code_sent, got %v", challenge.State)
	}
	if challenge.Phone != "+919876543210" {
		t.Fatalf("expected normalized phone, got %q", challenge.Phone)
	}
	if challenge.ResendToken != "rt-1" {
		t.Fatalf("resend token not recorded: %+v", challenge)
	}
	if got := o.MetricsSnapshot().Counters[MetricVerificationStarted]; got != 1 {
		t.Fatalf("expected 1 started metric, got %d", got)
	}
	if provider.lastTimeout != testConfig().Verification.ChallengeTTL {
		t.Fatalf("dispatch must carry the challenge TTL, got %v", provider.lastTimeout)
	}
}

func TestStartPhoneVerificationEmptyNumber(t *testing.T) {
	o := newTestOrchestrator(t, &fakeProvider{}, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "  -- "); !errors.Is(err, ErrEmptyPhoneNumber) {
		t.Fatalf("expected ErrEmptyPhoneNumber, got %v", err)
	}
}

func TestStartSameNumberIsIdempotent(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	first, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := o.StartPhoneVerification(context.Background(), "+91 98765 43210")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	if provider.startCalls != 1 {
		t.Fatalf("same-number restart must not redial the provider, got %d calls", provider.startCalls)
	}
	if first.ID != second.ID {
		t.Fatalf("challenge identity must be stable across idempotent starts")
	}
}

func TestStartDifferentNumberSupersedes(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	first, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := o.StartPhoneVerification(context.Background(), "9123456789")
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	if provider.startCalls != 2 {
		t.Fatalf("expected 2 provider dispatches, got %d", provider.startCalls)
	}
	if first.ID == second.ID {
		t.Fatal("superseding start must mint a new challenge")
	}
	if got := o.Challenge().Phone; got != "+919123456789" {
		t.Fatalf("active challenge must be the newer one, got %q", got)
	}
	if got := o.MetricsSnapshot().Counters[MetricVerificationSuperseded]; got != 1 {
		t.Fatalf("expected 1 superseded metric, got %d", got)
	}
}

func TestCompleteVerificationSignsIn(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1"},
		profile:  UserProfile{UserID: "uid-1"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}
	challenge, err := o.CompleteVerification(context.Background(), "482913")
	if err != nil {
		t.Fatalf("CompleteVerification: %v", err)
	}

	if challenge.State != ChallengeVerified {
		t.Fatalf("expected verified, got %v", challenge.State)
	}
	if !o.IsSignedIn() {
		t.Fatal("expected a signed-in session")
	}
	got := o.Session()
	if got.UserID != "uid-1" || got.LoginType != LoginPhone {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.Phone != "+919876543210" {
		t.Fatalf("challenge phone must backfill the profile, got %q", got.Phone)
	}
}

func TestCompleteVerificationMalformedCodeFailsLocally(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := o.CompleteVerification(context.Background(), "12ab"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if provider.confirmCalls != 0 {
		t.Fatal("malformed code must not reach the provider")
	}
	if got := o.Challenge().State; got != ChallengeCodeSent {
		t.Fatalf("challenge must stay code_sent, got %v", got)
	}
}

func TestCompleteVerificationRejectedCodeIsRetryable(t *testing.T) {
	provider := &fakeProvider{
		dispatch:   DispatchResult{ChallengeID: "ch-1"},
		confirmErr: ErrInvalidCredential,
	}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}
	challenge, err := o.CompleteVerification(context.Background(), "482913")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if challenge.State != ChallengeFailed {
		t.Fatalf("expected failed, got %v", challenge.State)
	}
	if o.IsSignedIn() {
		t.Fatal("rejected code must not create a session")
	}

	// A corrected code on the same challenge still succeeds.
	provider.mu.Lock()
	provider.confirmErr = nil
	provider.profile = UserProfile{UserID: "uid-1"}
	provider.mu.Unlock()

	if _, err := o.CompleteVerification(context.Background(), "482914"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if !o.IsSignedIn() {
		t.Fatal("expected sign-in after corrected code")
	}
}

func TestCompleteVerificationWithoutChallenge(t *testing.T) {
	o := newTestOrchestrator(t, &fakeProvider{}, testConfig())

	if _, err := o.CompleteVerification(context.Background(), "482913"); !errors.Is(err, ErrMissingChallenge) {
		t.Fatalf("expected ErrMissingChallenge, got %v", err)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1"},
		profile:  UserProfile{UserID: "uid-stale"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// While the confirm call is in flight, a different number supersedes
	// the challenge.
	provider.mu.Lock()
	provider.confirmHook = func() {
		provider.mu.Lock()
		provider.confirmHook = nil
		provider.mu.Unlock()
		if _, err := o.StartPhoneVerification(context.Background(), "9123456789"); err != nil {
			t.Errorf("superseding start: %v", err)
		}
	}
	provider.mu.Unlock()

	if _, err := o.CompleteVerification(context.Background(), "482913"); !errors.Is(err, ErrMissingChallenge) {
		t.Fatalf("expected stale completion to be discarded, got %v", err)
	}
	if o.IsSignedIn() {
		t.Fatal("stale completion must not create a session")
	}
	if got := o.MetricsSnapshot().Counters[MetricStaleCompletionDiscarded]; got != 1 {
		t.Fatalf("expected 1 stale discard metric, got %d", got)
	}
}

func TestResendDuringCooldownIsNoOp(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1", ResendToken: "rt-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := o.ResendVerification(context.Background(), "9876543210"); !errors.Is(err, ErrResendUnavailable) {
		t.Fatalf("expected ErrResendUnavailable during cooldown, got %v", err)
	}
	if provider.resendCalls != 0 {
		t.Fatalf("cooldown resend must not dial the provider, got %d calls", provider.resendCalls)
	}
}

func TestResendAfterCooldownDispatches(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1", ResendToken: "rt-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for !o.Challenge().CanResend {
		select {
		case <-deadline:
			t.Fatal("cooldown never finished")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := o.ResendVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if provider.resendCalls != 1 {
		t.Fatalf("expected 1 resend dispatch, got %d", provider.resendCalls)
	}
}

func TestResendWithoutChallengeStartsFresh(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	challenge, err := o.ResendVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("resend with no prior challenge must fall back to a fresh start, got %v", err)
	}
	if challenge.State != ChallengeCodeSent {
		t.Fatalf("expected code_sent, got %v", challenge.State)
	}
	if provider.startCalls != 1 || provider.resendCalls != 0 {
		t.Fatalf("expected a fresh start dispatch, got start=%d resend=%d",
			provider.startCalls, provider.resendCalls)
	}
}

func TestResendDifferentNumberStartsFresh(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1", ResendToken: "rt-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	first, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := o.ResendVerification(context.Background(), "9123456789")
	if err != nil {
		t.Fatalf("resend with a different number: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("a different number must supersede, not resend")
	}
	if provider.startCalls != 2 || provider.resendCalls != 0 {
		t.Fatalf("expected a superseding start dispatch, got start=%d resend=%d",
			provider.startCalls, provider.resendCalls)
	}
}

func TestResendAfterVerifiedIsRejected(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1", ResendToken: "rt-1"},
		profile:  UserProfile{UserID: "uid-1"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := o.CompleteVerification(context.Background(), "482913"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if _, err := o.ResendVerification(context.Background(), "9876543210"); !errors.Is(err, ErrMissingChallenge) {
		t.Fatalf("verified challenge must not be re-dispatched, got %v", err)
	}
	if got := o.Challenge().State; got != ChallengeVerified {
		t.Fatalf("verified state is terminal, got %v", got)
	}
	if provider.startCalls != 1 || provider.resendCalls != 0 {
		t.Fatalf("no provider dial expected for a terminal challenge, got start=%d resend=%d",
			provider.startCalls, provider.resendCalls)
	}
}

func TestResendWithoutTokenFallsBackToFreshStart(t *testing.T) {
	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for !o.Challenge().CanResend {
		select {
		case <-deadline:
			t.Fatal("cooldown never finished")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := o.ResendVerification(context.Background(), ""); err != nil {
		t.Fatalf("ResendVerification: %v", err)
	}
	if provider.startCalls != 2 || provider.resendCalls != 0 {
		t.Fatalf("token-less resend must redial the start path, got start=%d resend=%d",
			provider.startCalls, provider.resendCalls)
	}
}

func TestChallengeExpires(t *testing.T) {
	cfg := testConfig()
	cfg.Verification.ChallengeTTL = 50 * time.Millisecond
	cfg.Verification.ResendCooldown = 10 * time.Millisecond

	provider := &fakeProvider{dispatch: DispatchResult{ChallengeID: "ch-1"}}
	o := newTestOrchestrator(t, provider, cfg)

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for o.Challenge().State != ChallengeExpired {
		select {
		case <-deadline:
			t.Fatalf("challenge never expired, state %v", o.Challenge().State)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if _, err := o.CompleteVerification(context.Background(), "482913"); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
	if got := o.MetricsSnapshot().Counters[MetricVerificationExpired]; got != 1 {
		t.Fatalf("expected 1 expiry metric, got %d", got)
	}
}

func TestAutoCodeCompletesWithoutUserInput(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1", AutoCode: "482913"},
		profile:  UserProfile{UserID: "uid-1"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	challenge, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if challenge.State != ChallengeVerified {
		t.Fatalf("expected auto-verified challenge, got %v", challenge.State)
	}
	if !o.IsSignedIn() {
		t.Fatal("auto-completion must sign in")
	}
	if got := o.MetricsSnapshot().Counters[MetricVerificationAutoCompleted]; got != 1 {
		t.Fatalf("expected 1 auto-complete metric, got %d", got)
	}
}

func TestAutoCompleteDisabledKeepsCodeSent(t *testing.T) {
	cfg := testConfig()
	cfg.Verification.AutoComplete = false

	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1", AutoCode: "482913"},
		profile:  UserProfile{UserID: "uid-1"},
	}
	o := newTestOrchestrator(t, provider, cfg)

	challenge, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if challenge.State != ChallengeCodeSent {
		t.Fatalf("expected code_sent with auto-complete disabled, got %v", challenge.State)
	}
	if o.IsSignedIn() {
		t.Fatal("must not sign in without user input")
	}
}

func TestResolveAutoCodeFromInboundMessage(t *testing.T) {
	provider := &fakeProvider{
		dispatch: DispatchResult{ChallengeID: "ch-1"},
		profile:  UserProfile{UserID: "uid-1"},
	}
	o := newTestOrchestrator(t, provider, testConfig())

	if _, err := o.StartPhoneVerification(context.Background(), "9876543210"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := o.ResolveAutoCode(context.Background(), "no digits here"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for codeless message, got %v", err)
	}

	challenge, err := o.ResolveAutoCode(context.Background(), "Your code is 482913. Do not share it.")
	if err != nil {
		t.Fatalf("ResolveAutoCode: %v", err)
	}
	if challenge.State != ChallengeVerified || !o.IsSignedIn() {
		t.Fatalf("expected verified sign-in, got %v", challenge.State)
	}
}

func TestDispatchFailureMarksChallengeFailed(t *testing.T) {
	provider := &fakeProvider{dispatchErr: ErrRateLimited}
	o := newTestOrchestrator(t, provider, testConfig())

	challenge, err := o.StartPhoneVerification(context.Background(), "9876543210")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if challenge.State != ChallengeFailed {
		t.Fatalf("expected failed challenge, got %v", challenge.State)
	}
}
