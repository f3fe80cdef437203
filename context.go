package goAuthClient

import "context"

type deviceIDContextKey struct{}
type localeContextKey struct{}

// WithDeviceID attaches the caller's device identifier to ctx. The
// orchestrator stamps it onto audit events so a fleet-wide sink can
// attribute sign-in activity to a device.
//
//	Docs: docs/audit.md
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithLocale attaches a BCP 47 locale tag to ctx. Providers may use it to
// localize the verification message they dispatch.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

// LocaleFromContext returns the locale previously attached with
// [WithLocale], or "" when none is set.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}
