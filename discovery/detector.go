package discovery

import "context"

// Capability identifies an optional platform permission guarding an
// identifier source.
type Capability uint8

const (
	// CapabilityAccounts is an exported constant or variable used by identifier discovery.
	CapabilityAccounts Capability = iota
	// CapabilityPhoneState is an exported constant or variable used by identifier discovery.
	CapabilityPhoneState
)

// Gate answers whether a capability is currently granted. Denial is an
// expected state, not an error.
type Gate interface {
	Allowed(c Capability) bool
}

// GateFunc adapts a function to the [Gate] interface.
type GateFunc func(c Capability) bool

// Allowed describes the allowed operation and its observable behavior.
//
// Allowed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f GateFunc) Allowed(c Capability) bool {
	return f(c)
}

// AllowAll is a [Gate] that grants every capability.
var AllowAll = GateFunc(func(Capability) bool { return true })

// Source is the device identifier collaborator: it exposes the account emails
// and line numbers the platform knows about.
type Source interface {
	ListAccountEmails(ctx context.Context) ([]string, error)
	DeviceLine1Number(ctx context.Context) (string, error)
	ActiveLineNumbers(ctx context.Context) ([]string, error)
}

// Identifiers is the result of a detection pass. Both slices preserve source
// insertion order after deduplication; the primaries are the respective first
// entries.
type Identifiers struct {
	Phones []string
	Emails []string

	PrimaryPhone string
	PrimaryEmail string
}

// HasPhone describes the hasphone operation and its observable behavior.
//
// HasPhone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (i Identifiers) HasPhone() bool {
	return i.PrimaryPhone != ""
}

// HasEmail describes the hasemail operation and its observable behavior.
//
// HasEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (i Identifiers) HasEmail() bool {
	return i.PrimaryEmail != ""
}

// Config controls normalization during detection.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// DefaultCountryPrefix is prepended to bare ten-digit numbers, e.g. "+91".
	DefaultCountryPrefix string
	// LocalCountryDigits is the country code stripped by LocalNumber, e.g. "91".
	LocalCountryDigits string
}

// Detector merges gated identifier sources into normalized candidates.
//
// Detector instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Detector struct {
	source Source
	gate   Gate
	cfg    Config
}

// NewDetector creates a [Detector] over the given source and capability gate.
// A nil gate denies everything. Zero-value config fields fall back to the
// package defaults.
//
// NewDetector does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDetector(source Source, gate Gate, cfg Config) *Detector {
	if cfg.DefaultCountryPrefix == "" {
		cfg.DefaultCountryPrefix = DefaultCountryPrefix
	}
	if cfg.LocalCountryDigits == "" {
		cfg.LocalCountryDigits = DefaultLocalCountryDigits
	}
	if gate == nil {
		gate = GateFunc(func(Capability) bool { return false })
	}
	return &Detector{
		source: source,
		gate:   gate,
		cfg:    cfg,
	}
}

// Detect collects, deduplicates, and normalizes every available identifier.
// Denied capabilities and source errors contribute empty results; Detect
// itself never fails.
//
// Detect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Detector) Detect(ctx context.Context) Identifiers {
	var out Identifiers

	out.Emails = d.detectEmails(ctx)
	if len(out.Emails) > 0 {
		out.PrimaryEmail = out.Emails[0]
	}

	out.Phones = d.detectPhones(ctx)
	if len(out.Phones) > 0 {
		out.PrimaryPhone = out.Phones[0]
	}

	return out
}

// LocalNumber renders a normalized phone number back to its local ten-digit
// form using the detector's country configuration.
func (d *Detector) LocalNumber(phone string) string {
	return LocalNumber(phone, d.cfg.LocalCountryDigits)
}

func (d *Detector) detectEmails(ctx context.Context) []string {
	if d.source == nil || !d.gate.Allowed(CapabilityAccounts) {
		return nil
	}

	raw, err := d.source.ListAccountEmails(ctx)
	if err != nil {
		return nil
	}

	var (
		emails []string
		seen   = make(map[string]struct{}, len(raw))
	)
	for _, email := range raw {
		if !IsValidEmail(email) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}

	return emails
}

func (d *Detector) detectPhones(ctx context.Context) []string {
	if d.source == nil || !d.gate.Allowed(CapabilityPhoneState) {
		return nil
	}

	var (
		phones []string
		seen   = make(map[string]struct{})
	)
	add := func(raw string) {
		if raw == "" {
			return
		}
		normalized := NormalizePhone(raw, d.cfg.DefaultCountryPrefix)
		if normalized == "" {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		phones = append(phones, normalized)
	}

	if line1, err := d.source.DeviceLine1Number(ctx); err == nil {
		add(line1)
	}
	if lines, err := d.source.ActiveLineNumbers(ctx); err == nil {
		for _, line := range lines {
			add(line)
		}
	}

	return phones
}
