package goAuthClient

import (
	"context"
	"errors"

	"github.com/MrEthical07/goAuthClient/discovery"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/otp"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/storage"
)

// Builder defines a public type used by goAuthClient APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config  Config
	storage storage.KV

	provider IdentityProvider

	discoverySource discovery.Source
	discoveryGate   discovery.Gate

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithProvider describes the withprovider operation and its observable behavior.
//
// WithProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithProvider(provider IdentityProvider) *Builder {
	b.provider = provider
	return b
}

// WithStorage describes the withstorage operation and its observable behavior.
//
// WithStorage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithStorage(kv storage.KV) *Builder {
	b.storage = kv
	return b
}

// WithDiscoverySource describes the withdiscoverysource operation and its observable behavior.
//
// WithDiscoverySource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithDiscoverySource(source discovery.Source, gate discovery.Gate) *Builder {
	b.discoverySource = source
	b.discoveryGate = gate
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Orchestrator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.provider == nil {
		return nil, errors.New("identity provider required")
	}

	if b.storage == nil {
		return nil, errors.New("storage backend required")
	}

	// -------- SESSION STORE --------
	sessions, err := session.NewStore(context.Background(), b.storage, cfg.Session.Namespace)
	if err != nil {
		return nil, err
	}

	// -------- DISCOVERY --------
	var detector *discovery.Detector
	if cfg.Discovery.Enabled && b.discoverySource != nil {
		detector = discovery.NewDetector(b.discoverySource, b.discoveryGate, discovery.Config{
			DefaultCountryPrefix: cfg.Discovery.DefaultCountryPrefix,
			LocalCountryDigits:   cfg.Discovery.LocalCountryDigits,
		})
	}

	orchestrator := &Orchestrator{
		config:   cfg,
		provider: b.provider,
		sessions: sessions,
		detector: detector,
		cooldown: otp.NewTimer(),
	}

	orchestrator.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	orchestrator.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return orchestrator, nil
}
