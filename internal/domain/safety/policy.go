package safety

// FailurePolicy decides what happens when a safety check itself fails
// (transport error, malformed response, non-2xx).
type FailurePolicy string

const (
	// FailOpen lets the request through when the check cannot complete.
	FailOpen FailurePolicy = "fail_open"
	// FailSecure blocks the request when the check cannot complete.
	FailSecure FailurePolicy = "fail_secure"
)

// Default policies: an injection-check outage must never silently pass a
// malicious prompt, while moderation is a secondary probabilistic layer
// where availability wins. Both are configurable per deployment.
const (
	DefaultInjectionFailurePolicy  = FailSecure
	DefaultModerationFailurePolicy = FailOpen
)
