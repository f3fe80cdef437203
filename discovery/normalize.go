package discovery

import (
	"regexp"
	"strings"
)

const (
	// DefaultCountryPrefix is an exported constant or variable used by identifier discovery.
	DefaultCountryPrefix = "+91"
	// DefaultLocalCountryDigits is an exported constant or variable used by identifier discovery.
	DefaultLocalCountryDigits = "91"

	localNumberLength = 10
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// NormalizePhone strips everything except digits and a leading plus from raw.
// Numbers without a leading plus have one leading zero removed; when exactly
// ten digits remain, defaultCountryPrefix (e.g. "+91") is prepended. Anything
// else is left as-is — ambiguous multi-region numbers are not corrected.
//
// NormalizePhone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizePhone(raw, defaultCountryPrefix string) string {
	if defaultCountryPrefix == "" {
		defaultCountryPrefix = DefaultCountryPrefix
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "0")
	if len(cleaned) == localNumberLength {
		return defaultCountryPrefix + cleaned
	}

	return cleaned
}

// LocalNumber strips non-digits from phone, drops a leading countryDigits
// (e.g. "91") when more than ten digits remain, and returns the trailing ten
// digits of anything still longer than ten.
//
// LocalNumber does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func LocalNumber(phone, countryDigits string) string {
	if countryDigits == "" {
		countryDigits = DefaultLocalCountryDigits
	}

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, countryDigits) && len(cleaned) > localNumberLength {
		cleaned = cleaned[len(countryDigits):]
	}
	if len(cleaned) > localNumberLength {
		cleaned = cleaned[len(cleaned)-localNumberLength:]
	}

	return cleaned
}

// IsValidEmail reports whether s looks like a syntactically valid email
// address.
//
// IsValidEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
