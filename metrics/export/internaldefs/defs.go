// Package internaldefs holds the shared metric name and bucket tables used
// by the exporters. It is internal plumbing; import the prometheus or otel
// packages instead.
package internaldefs

import (
	dineauth "github.com/hostline/dineauth"
)

// CounterDef names one counter for export.
type CounterDef struct {
	ID   dineauth.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram for export.
type HistogramDef struct {
	ID   dineauth.MetricID
	Name string
	Help string
}

// CounterDefs maps every core counter to its exported name.
var CounterDefs = []CounterDef{
	{ID: dineauth.MetricLoginSuccess, Name: "dineauth_login_success_total", Help: "Successful credential logins."},
	{ID: dineauth.MetricLoginFailure, Name: "dineauth_login_failure_total", Help: "Rejected credential logins."},
	{ID: dineauth.MetricTwoFactorRequired, Name: "dineauth_two_factor_required_total", Help: "Logins answered with a two-factor challenge."},
	{ID: dineauth.MetricTwoFactorSuccess, Name: "dineauth_two_factor_success_total", Help: "Accepted authenticator codes."},
	{ID: dineauth.MetricTwoFactorFailure, Name: "dineauth_two_factor_failure_total", Help: "Rejected authenticator codes."},
	{ID: dineauth.MetricChallengeExpired, Name: "dineauth_challenge_expired_total", Help: "Verifications against an expired challenge."},
	{ID: dineauth.MetricBackupCodeUsed, Name: "dineauth_backup_code_used_total", Help: "Accepted backup codes."},
	{ID: dineauth.MetricBackupCodeFailed, Name: "dineauth_backup_code_failed_total", Help: "Rejected backup codes."},
	{ID: dineauth.MetricRefreshSuccess, Name: "dineauth_refresh_success_total", Help: "Successful access-token refreshes."},
	{ID: dineauth.MetricRefreshRejected, Name: "dineauth_refresh_rejected_total", Help: "Refresh tokens rejected by the backend."},
	{ID: dineauth.MetricRefreshDeduplicated, Name: "dineauth_refresh_deduplicated_total", Help: "Refresh callers coalesced onto an in-flight refresh."},
	{ID: dineauth.MetricRetryAfterRefresh, Name: "dineauth_retry_after_refresh_total", Help: "Requests replayed after a transparent refresh."},
	{ID: dineauth.MetricUnreachable, Name: "dineauth_unreachable_total", Help: "Transport-level failures reaching the backend."},
	{ID: dineauth.MetricLogout, Name: "dineauth_logout_total", Help: "Explicit logouts."},
	{ID: dineauth.MetricSessionRestored, Name: "dineauth_session_restored_total", Help: "Sessions rehydrated from the token store."},
	{ID: dineauth.MetricEnrollStarted, Name: "dineauth_enroll_started_total", Help: "Two-factor enrollments begun."},
	{ID: dineauth.MetricEnrollConfirmed, Name: "dineauth_enroll_confirmed_total", Help: "Two-factor enrollments completed."},
	{ID: dineauth.MetricTwoFactorDisabled, Name: "dineauth_two_factor_disabled_total", Help: "Two-factor deactivations."},
	{ID: dineauth.MetricBackupCodesRegenerated, Name: "dineauth_backup_codes_regenerated_total", Help: "Backup-code regenerations."},
}

// HistogramDefs maps every core histogram to its exported name.
var HistogramDefs = []HistogramDef{
	{ID: dineauth.MetricRequestLatency, Name: "dineauth_request_latency_seconds", Help: "Authentication request round-trip latency."},
}

// HistogramBounds are the upper bounds of the core latency buckets, in
// seconds, as exposition-format labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are instrument-name-safe forms of HistogramBounds.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
