package roomclient

import "time"

const (
	baseBackoff = time.Second
	maxBackoff  = 30 * time.Second
)

// Backoff returns the delay before reconnection attempt n, zero-indexed
// from the last successful connect: min(1000·2^n, 30000) milliseconds.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// 2^5 already exceeds the cap.
	if attempt > 5 {
		return maxBackoff
	}

	delay := baseBackoff << uint(attempt)
	if delay > maxBackoff {
		return maxBackoff
	}

	return delay
}
