package otp

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultCodeLength is an exported constant or variable used by the verification timer.
const DefaultCodeLength = 6

// codePattern matches the first 4–6 digit run bounded by word boundaries.
var codePattern = regexp.MustCompile(`\b\d{4,6}\b`)

// ExtractCode scans free-form message text for a plausible verification code:
// the first maximal run of 4–6 consecutive digits bounded by non-digit
// characters. The second return value is false when no such run exists.
//
// ExtractCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ExtractCode(text string) (string, bool) {
	code := codePattern.FindString(text)
	if code == "" {
		return "", false
	}
	return code, true
}

// IsValidCode reports whether code is exactly length digit characters.
// A non-positive length means [DefaultCodeLength].
//
// IsValidCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IsValidCode(code string, length int) bool {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatDisplay renders a code with single-space separators for entry UIs,
// e.g. "482913" becomes "4 8 2 9 1 3". Codes shorter than four characters are
// returned unchanged.
func FormatDisplay(code string) string {
	if len(code) < 4 {
		return code
	}

	var b strings.Builder
	for i, r := range code {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatClock renders seconds as mm:ss for countdown display.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
