package goAuthClient

import (
	"errors"
	"time"
)

// Config defines a public type used by goAuthClient APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Verification VerificationConfig
	Discovery    DiscoveryConfig
	Session      SessionConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig defines a public type used by goAuthClient APIs.
//
// VerificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationConfig struct {
	// ChallengeTTL bounds how long a dispatched code stays confirmable.
	ChallengeTTL time.Duration
	// ResendCooldown is the countdown the caller must wait out before a
	// resend is dispatched again.
	ResendCooldown time.Duration
	// CodeLength is the exact number of digits a submitted code must have.
	CodeLength int
	// AutoComplete confirms provider-retrieved codes without user input.
	AutoComplete bool
}

/*
====================================
DISCOVERY CONFIG
====================================
*/

// DiscoveryConfig defines a public type used by goAuthClient APIs.
//
// DiscoveryConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type DiscoveryConfig struct {
	Enabled              bool
	DefaultCountryPrefix string // e.g. "+91", prepended to bare ten-digit numbers
	LocalCountryDigits   string // e.g. "91", stripped when rendering local numbers
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goAuthClient APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// Namespace prefixes every storage key written by the session store.
	Namespace string
}

// AuditConfig defines a public type used by goAuthClient APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goAuthClient APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Verification: VerificationConfig{
			ChallengeTTL:   2 * time.Minute,
			ResendCooldown: 60 * time.Second,
			CodeLength:     6,
			AutoComplete:   true,
		},
		Discovery: DiscoveryConfig{
			Enabled:              true,
			DefaultCountryPrefix: "+91",
			LocalCountryDigits:   "91",
		},
		Session: SessionConfig{
			Namespace: "goauthclient",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Verification
	if c.Verification.ChallengeTTL <= 0 {
		return errors.New("Verification ChallengeTTL must be > 0")
	}
	if c.Verification.ResendCooldown <= 0 {
		return errors.New("Verification ResendCooldown must be > 0")
	}
	if c.Verification.ResendCooldown > c.Verification.ChallengeTTL {
		return errors.New("Verification ResendCooldown must not exceed ChallengeTTL")
	}
	if c.Verification.CodeLength < 4 || c.Verification.CodeLength > 10 {
		return errors.New("Verification CodeLength must be between 4 and 10")
	}

	// Discovery
	if c.Discovery.Enabled {
		if c.Discovery.DefaultCountryPrefix == "" || c.Discovery.DefaultCountryPrefix[0] != '+' {
			return errors.New("Discovery DefaultCountryPrefix must start with '+'")
		}
		if c.Discovery.LocalCountryDigits == "" {
			return errors.New("Discovery LocalCountryDigits is required when discovery is enabled")
		}
	}

	// Session
	if c.Session.Namespace == "" {
		return errors.New("Session Namespace must not be empty")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
