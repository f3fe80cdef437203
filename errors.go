package goAuthClient

import "errors"

var (
	// ErrNetwork is an exported constant or variable used by the auth client.
	ErrNetwork = errors.New("network failure")
	// ErrInvalidCredential is an exported constant or variable used by the auth client.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrRateLimited is an exported constant or variable used by the auth client.
	ErrRateLimited = errors.New("too many attempts")
	// ErrMissingChallenge is an exported constant or variable used by the auth client.
	ErrMissingChallenge = errors.New("no verification challenge in progress")
	// ErrPermissionDenied is an exported constant or variable used by the auth client.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnknownProvider is an exported constant or variable used by the auth client.
	ErrUnknownProvider = errors.New("unclassified provider failure")
	// ErrEmptyPhoneNumber is an exported constant or variable used by the auth client.
	ErrEmptyPhoneNumber = errors.New("phone number is empty")
	// ErrInvalidCode is an exported constant or variable used by the auth client.
	ErrInvalidCode = errors.New("verification code is malformed")
	// ErrChallengeExpired is an exported constant or variable used by the auth client.
	ErrChallengeExpired = errors.New("verification challenge expired")
	// ErrResendUnavailable is an exported constant or variable used by the auth client.
	ErrResendUnavailable = errors.New("resend cooldown active")
	// ErrInvalidEmail is an exported constant or variable used by the auth client.
	ErrInvalidEmail = errors.New("email address is malformed")
	// ErrEmptyPassword is an exported constant or variable used by the auth client.
	ErrEmptyPassword = errors.New("password is empty")
	// ErrOrchestratorClosed is an exported constant or variable used by the auth client.
	ErrOrchestratorClosed = errors.New("orchestrator closed")
	// ErrOrchestratorNotReady is an exported constant or variable used by the auth client.
	ErrOrchestratorNotReady = errors.New("orchestrator not initialized")
)

// sentinels that pass through provider-call classification untouched.
var classifiedErrors = []error{
	ErrNetwork,
	ErrInvalidCredential,
	ErrRateLimited,
	ErrMissingChallenge,
	ErrPermissionDenied,
}
