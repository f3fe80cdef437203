// Package discovery merges device-known phone numbers and email accounts into
// normalized sign-in suggestions.
//
// # Degradation contract
//
// Detection never fails hard: every identifier source sits behind a
// capability gate, and a denied or erroring source simply contributes
// nothing. [Detector.Detect] therefore always returns a usable
// [Identifiers] value.
//
// # Architecture boundaries
//
// This package owns identifier collection, deduplication, and phone/email
// normalization. It does NOT request capabilities from the platform and it
// never talks to an identity provider.
//
// # What this package must NOT do
//
//   - Import goAuthClient or any sibling package.
//   - Surface source errors to callers.
//   - Guess country codes for numbers that are not exactly ten digits.
package discovery
