package client

import "time"

const (
	// DefaultRetryBase is the per-attempt delay increment.
	DefaultRetryBase = 500 * time.Millisecond
	// DefaultRetryMax caps the reconnect delay. Linear-capped rather than
	// exponential: a single-client tool has no thundering-herd risk, and the
	// cap keeps recovery under five seconds.
	DefaultRetryMax = 5 * time.Second
)

// RetryDelay returns the delay before reconnect attempt n (n >= 1):
// min(max, base*n). There is no maximum attempt count; callers retry until
// torn down.
func RetryDelay(n int, base, max time.Duration) time.Duration {
	if n < 1 {
		n = 1
	}
	d := time.Duration(n) * base
	if d > max {
		return max
	}
	return d
}
