package internaldefs

import (
	"maps"
	"slices"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
)

// BucketCount is the number of latency buckets, +Inf included.
const BucketCount = 8

type CounterDef struct {
	ID   lmsAuth.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   lmsAuth.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: lmsAuth.MetricLoginSuccess, Name: "lmsauth_login_success_total", Help: "Successful logins."},
	{ID: lmsAuth.MetricLoginFailure, Name: "lmsauth_login_failure_total", Help: "Rejected logins."},
	{ID: lmsAuth.MetricRefreshSuccess, Name: "lmsauth_refresh_success_total", Help: "Successful token rotations."},
	{ID: lmsAuth.MetricRefreshFailure, Name: "lmsauth_refresh_failure_total", Help: "Rejected token rotations."},
	{ID: lmsAuth.MetricAuthenticateSuccess, Name: "lmsauth_authenticate_success_total", Help: "Requests admitted by the authentication gate."},
	{ID: lmsAuth.MetricAuthenticateFailure, Name: "lmsauth_authenticate_failure_total", Help: "Requests rejected by the authentication gate."},
	{ID: lmsAuth.MetricAuthorizationDenied, Name: "lmsauth_authorization_denied_total", Help: "Requests rejected by the role gate."},
	{ID: lmsAuth.MetricRegistrationRequest, Name: "lmsauth_registration_request_total", Help: "Activation tickets issued."},
	{ID: lmsAuth.MetricRegistrationFailure, Name: "lmsauth_registration_failure_total", Help: "Rejected registrations."},
	{ID: lmsAuth.MetricActivationSuccess, Name: "lmsauth_activation_success_total", Help: "Principals created by activation."},
	{ID: lmsAuth.MetricActivationFailure, Name: "lmsauth_activation_failure_total", Help: "Rejected activations."},
	{ID: lmsAuth.MetricSocialAuth, Name: "lmsauth_social_auth_total", Help: "Social logins."},
	{ID: lmsAuth.MetricSessionCreated, Name: "lmsauth_session_created_total", Help: "Session cache entries written by login or rotation."},
	{ID: lmsAuth.MetricSessionInvalidated, Name: "lmsauth_session_invalidated_total", Help: "Session cache entries removed."},
	{ID: lmsAuth.MetricLogout, Name: "lmsauth_logout_total", Help: "Logouts."},
	{ID: lmsAuth.MetricPasswordChangeSuccess, Name: "lmsauth_password_change_success_total", Help: "Successful password changes."},
	{ID: lmsAuth.MetricPasswordChangeInvalidOld, Name: "lmsauth_password_change_invalid_old_total", Help: "Password changes rejected for a wrong current password."},
	{ID: lmsAuth.MetricRoleUpdated, Name: "lmsauth_role_updated_total", Help: "Role changes."},
	{ID: lmsAuth.MetricPrincipalDeleted, Name: "lmsauth_principal_deleted_total", Help: "Deleted principals."},
}

var HistogramDefs = []HistogramDef{
	{ID: lmsAuth.MetricValidateLatency, Name: "lmsauth_validate_latency_seconds", Help: "Authentication gate latency."},
}

// AuditDroppedName counts audit events that never reached the sink, split by
// AuditDroppedLabel.
const (
	AuditDroppedName  = "lmsauth_audit_dropped_total"
	AuditDroppedHelp  = "Audit events dropped by the dispatcher, by event type."
	AuditDroppedLabel = "event_type"
)

// EventName is the counter name without the lmsauth_ prefix and _total suffix,
// e.g. "login_success".
func EventName(counterName string) string {
	return strings.TrimSuffix(strings.TrimPrefix(counterName, "lmsauth_"), "_total")
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]uint64) []string {
	return slices.Sorted(maps.Keys(m))
}

// HistogramBounds are the finite upper bounds in seconds; the last bucket is +Inf.
var HistogramBounds = [BucketCount - 1]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundLabels are the le values of each bucket, in Prometheus notation.
var HistogramBoundLabels = [BucketCount]string{"0.005", "0.01", "0.025", "0.05", "0.1", "0.25", "0.5", "+Inf"}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := range raw {
		running += raw[i]
		out[i] = running
	}
	return out
}
