package goAuthClient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goAuthClient/discovery"
	"github.com/MrEthical07/goAuthClient/otp"
)

// phoneChallenge is the single in-flight phone verification. It is guarded
// by the orchestrator mutex; seq decides whether a late provider completion
// still belongs to it.
type phoneChallenge struct {
	seq         uint64
	ref         string // local reference, stable across resends
	providerID  string
	phone       string
	resendToken string
	state       ChallengeState
	expiry      *time.Timer
}

func (c *phoneChallenge) snapshot(cooldownRunning bool) Challenge {
	if c == nil {
		return Challenge{State: ChallengeIdle}
	}

	canResend := !cooldownRunning
	switch c.state {
	case ChallengeCodeSent, ChallengeFailed, ChallengeExpired:
	default:
		canResend = false
	}

	return Challenge{
		ID:          c.ref,
		Phone:       c.phone,
		State:       c.state,
		ResendToken: c.resendToken,
		CanResend:   canResend,
	}
}

// Challenge returns a read-only snapshot of the active phone verification
// challenge, or an idle snapshot when none is in flight.
//
// Challenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) Challenge() Challenge {
	if o == nil {
		return Challenge{State: ChallengeIdle}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.challenge.snapshot(o.cooldownActiveLocked())
}

// ResendCountdown returns the event stream of the most recently started
// resend cooldown. The stream is closed when the countdown finishes or a
// newer dispatch supersedes it.
//
// ResendCountdown does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) ResendCountdown() <-chan otp.Event {
	if o == nil {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.countdown
}

// StartPhoneVerification dispatches a verification code to phone. Starting
// again with the same number while a challenge is pending is a no-op;
// starting with a different number supersedes the previous challenge and
// its late completions are discarded.
//
// StartPhoneVerification may return an error when input validation, dependency calls, or security checks fail.
// StartPhoneVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) StartPhoneVerification(ctx context.Context, phone string) (Challenge, error) {
	if err := o.guard(); err != nil {
		return Challenge{State: ChallengeIdle}, err
	}

	normalized := discovery.NormalizePhone(phone, o.config.Discovery.DefaultCountryPrefix)
	if normalized == "" {
		return Challenge{State: ChallengeIdle}, ErrEmptyPhoneNumber
	}

	o.mu.Lock()
	if c := o.challenge; c != nil && c.phone == normalized &&
		(c.state == ChallengePending || c.state == ChallengeCodeSent) {
		snap := c.snapshot(o.cooldownActiveLocked())
		o.mu.Unlock()
		return snap, nil
	}

	if o.challenge != nil {
		o.metrics.Inc(MetricVerificationSuperseded)
	}
	o.cancelChallengeLocked()

	o.seq++
	challenge := &phoneChallenge{
		seq:   o.seq,
		ref:   uuid.NewString(),
		phone: normalized,
		state: ChallengePending,
	}
	o.challenge = challenge
	seq := challenge.seq
	o.mu.Unlock()

	o.metrics.Inc(MetricVerificationStarted)

	start := time.Now()
	result, err := o.provider.StartPhoneVerification(ctx, normalized, o.config.Verification.ChallengeTTL)
	o.observeProvider(start)

	return o.applyDispatch(ctx, seq, result, err, auditVerificationStarted)
}

// ResendVerification dispatches the verification code for phone again.
// With no challenge in flight, or a different number than the active one,
// it falls back to a fresh [Orchestrator.StartPhoneVerification]. While
// the resend cooldown is counting down the call is a no-op and returns
// [ErrResendUnavailable]. A verified challenge is terminal and is never
// re-dispatched. A challenge that never received a resend token falls
// back to a fresh dispatch for the same number.
//
// ResendVerification may return an error when input validation, dependency calls, or security checks fail.
// ResendVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) ResendVerification(ctx context.Context, phone string) (Challenge, error) {
	if err := o.guard(); err != nil {
		return Challenge{State: ChallengeIdle}, err
	}

	normalized := discovery.NormalizePhone(phone, o.config.Discovery.DefaultCountryPrefix)

	o.mu.Lock()
	challenge := o.challenge
	if challenge == nil {
		o.mu.Unlock()
		return o.StartPhoneVerification(ctx, phone)
	}
	if challenge.state == ChallengeVerified {
		snap := challenge.snapshot(false)
		o.mu.Unlock()
		return snap, ErrMissingChallenge
	}
	if normalized != "" && normalized != challenge.phone {
		o.mu.Unlock()
		return o.StartPhoneVerification(ctx, phone)
	}
	if o.cooldownActiveLocked() {
		snap := challenge.snapshot(true)
		o.mu.Unlock()
		return snap, ErrResendUnavailable
	}

	seq := challenge.seq
	target := challenge.phone
	token := challenge.resendToken
	o.mu.Unlock()

	o.metrics.Inc(MetricVerificationResent)

	var (
		result DispatchResult
		err    error
	)
	start := time.Now()
	if token == "" {
		result, err = o.provider.StartPhoneVerification(ctx, target, o.config.Verification.ChallengeTTL)
	} else {
		result, err = o.provider.ResendPhoneVerification(ctx, target, token)
	}
	o.observeProvider(start)

	return o.applyDispatch(ctx, seq, result, err, auditVerificationResent)
}

// CompleteVerification submits the user-entered code for the active
// challenge. A malformed code fails locally without a provider call; a
// rejected code leaves the challenge resendable.
//
// CompleteVerification may return an error when input validation, dependency calls, or security checks fail.
// CompleteVerification does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) CompleteVerification(ctx context.Context, code string) (Challenge, error) {
	if err := o.guard(); err != nil {
		return Challenge{State: ChallengeIdle}, err
	}
	if !otp.IsValidCode(code, o.config.Verification.CodeLength) {
		return o.Challenge(), ErrInvalidCode
	}

	o.mu.Lock()
	challenge := o.challenge
	if challenge == nil {
		o.mu.Unlock()
		return Challenge{State: ChallengeIdle}, ErrMissingChallenge
	}
	switch challenge.state {
	case ChallengeExpired:
		snap := challenge.snapshot(o.cooldownActiveLocked())
		o.mu.Unlock()
		return snap, ErrChallengeExpired
	case ChallengeCodeSent, ChallengeFailed:
	default:
		snap := challenge.snapshot(o.cooldownActiveLocked())
		o.mu.Unlock()
		return snap, ErrMissingChallenge
	}

	seq := challenge.seq
	providerID := challenge.providerID
	phone := challenge.phone
	o.mu.Unlock()

	start := time.Now()
	profile, err := o.provider.ConfirmPhoneCode(ctx, providerID, code)
	o.observeProvider(start)

	o.mu.Lock()
	if o.challenge == nil || o.challenge.seq != seq {
		// The challenge was superseded or cancelled while the provider
		// call was in flight.
		o.mu.Unlock()
		o.metrics.Inc(MetricStaleCompletionDiscarded)
		return o.Challenge(), ErrMissingChallenge
	}

	if err != nil {
		err = o.classify(err)
		o.challenge.state = ChallengeFailed
		snap := o.challenge.snapshot(o.cooldownActiveLocked())
		o.mu.Unlock()

		o.metrics.Inc(MetricVerificationFailed)
		o.emitAudit(ctx, auditVerificationFailed, false, func(e *AuditEvent) {
			e.ChallengeID = snap.ID
			e.LoginType = LoginPhone.String()
			e.Error = err.Error()
		})
		return snap, err
	}

	o.challenge.state = ChallengeVerified
	o.cancelTimersLocked(o.challenge)
	snap := o.challenge.snapshot(false)
	o.mu.Unlock()

	if profile.Phone == "" {
		profile.Phone = phone
	}

	o.metrics.Inc(MetricVerificationCompleted)
	o.emitAudit(ctx, auditVerificationCompleted, true, func(e *AuditEvent) {
		e.ChallengeID = snap.ID
		e.LoginType = LoginPhone.String()
	})

	if _, err := o.establishSession(ctx, profile, LoginPhone, auditSignIn, MetricSignInSuccess); err != nil {
		return snap, err
	}
	return snap, nil
}

// ResolveAutoCode extracts a verification code from an inbound message and
// completes the active challenge with it. Messages without a 4-6 digit
// code are ignored.
//
// ResolveAutoCode may return an error when input validation, dependency calls, or security checks fail.
// ResolveAutoCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) ResolveAutoCode(ctx context.Context, message string) (Challenge, error) {
	if err := o.guard(); err != nil {
		return Challenge{State: ChallengeIdle}, err
	}

	code, ok := otp.ExtractCode(message)
	if !ok || !otp.IsValidCode(code, o.config.Verification.CodeLength) {
		return o.Challenge(), ErrInvalidCode
	}

	snap, err := o.CompleteVerification(ctx, code)
	if err == nil {
		o.metrics.Inc(MetricVerificationAutoCompleted)
	}
	return snap, err
}

// applyDispatch folds a provider dispatch result into the challenge, unless
// a newer challenge has taken its place in the meantime.
func (o *Orchestrator) applyDispatch(ctx context.Context, seq uint64, result DispatchResult, err error, eventType string) (Challenge, error) {
	o.mu.Lock()
	if o.challenge == nil || o.challenge.seq != seq {
		o.mu.Unlock()
		o.metrics.Inc(MetricStaleCompletionDiscarded)
		return o.Challenge(), ErrMissingChallenge
	}

	if err != nil {
		err = o.classify(err)
		o.challenge.state = ChallengeFailed
		snap := o.challenge.snapshot(o.cooldownActiveLocked())
		o.mu.Unlock()

		o.metrics.Inc(MetricVerificationFailed)
		o.emitAudit(ctx, eventType, false, func(e *AuditEvent) {
			e.ChallengeID = snap.ID
			e.LoginType = LoginPhone.String()
			e.Error = err.Error()
		})
		return snap, err
	}

	challenge := o.challenge
	challenge.state = ChallengeCodeSent
	if result.ChallengeID != "" {
		challenge.providerID = result.ChallengeID
	}
	if result.ResendToken != "" {
		challenge.resendToken = result.ResendToken
	}
	o.armExpiryLocked(challenge)
	o.cooldownUntil = time.Now().Add(o.config.Verification.ResendCooldown)
	o.countdown = o.cooldown.Start(int(o.config.Verification.ResendCooldown / time.Second))
	snap := challenge.snapshot(true)
	autoCode := result.AutoCode
	o.mu.Unlock()

	o.emitAudit(ctx, eventType, true, func(e *AuditEvent) {
		e.ChallengeID = snap.ID
		e.LoginType = LoginPhone.String()
	})

	if autoCode != "" && o.config.Verification.AutoComplete {
		if snap, err := o.CompleteVerification(ctx, autoCode); err == nil {
			o.metrics.Inc(MetricVerificationAutoCompleted)
			return snap, nil
		}
	}

	return snap, nil
}

func (o *Orchestrator) armExpiryLocked(challenge *phoneChallenge) {
	if challenge.expiry != nil {
		challenge.expiry.Stop()
	}

	seq := challenge.seq
	challenge.expiry = time.AfterFunc(o.config.Verification.ChallengeTTL, func() {
		o.expireChallenge(seq)
	})
}

func (o *Orchestrator) expireChallenge(seq uint64) {
	o.mu.Lock()
	challenge := o.challenge
	if challenge == nil || challenge.seq != seq ||
		(challenge.state != ChallengePending && challenge.state != ChallengeCodeSent && challenge.state != ChallengeFailed) {
		o.mu.Unlock()
		return
	}

	challenge.state = ChallengeExpired
	o.cooldown.Stop()
	o.cooldownUntil = time.Time{}
	snap := challenge.snapshot(false)
	o.mu.Unlock()

	o.metrics.Inc(MetricVerificationExpired)
	o.emitAudit(context.Background(), auditVerificationExpired, false, func(e *AuditEvent) {
		e.ChallengeID = snap.ID
		e.LoginType = LoginPhone.String()
	})
}

func (o *Orchestrator) cancelChallenge() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelChallengeLocked()
}

func (o *Orchestrator) cancelChallengeLocked() {
	if o.challenge != nil {
		o.cancelTimersLocked(o.challenge)
		o.challenge = nil
	}
	o.countdown = nil
	o.cooldownUntil = time.Time{}
}

func (o *Orchestrator) cancelTimersLocked(challenge *phoneChallenge) {
	if challenge.expiry != nil {
		challenge.expiry.Stop()
		challenge.expiry = nil
	}
	o.cooldown.Stop()
	o.cooldownUntil = time.Time{}
}
