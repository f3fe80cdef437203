// Package otp provides the verification-code utilities used around a phone
// sign-in challenge: a single-flight resend countdown and best-effort code
// extraction from delivered message text.
//
// # Countdown semantics
//
// [Timer.Start] emits one [Event] per interval carrying SecondsRemaining,
// followed by exactly one finished event, then closes the stream. Starting a
// new countdown atomically replaces the previous one: a superseded run emits
// no further events, its stream is simply closed.
//
// # Architecture boundaries
//
// This package owns timing and text scanning only. It does NOT talk to an
// identity provider, and it has no idea what a challenge is.
//
// # What this package must NOT do
//
//   - Import goAuthClient or any sibling package.
//   - Retry or reschedule on its own; every countdown is caller-initiated.
//   - Interpret extracted codes beyond digit-run matching.
package otp
