package llm

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryableError marks a transient API failure: rate limiting, a 5xx, or a
// dropped connection.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("retryable error: %s", truncate(e.Message, 200))
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether err is worth another request.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns the wait before attempt n (0-indexed): exponential from
// one second, capped at 30s, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := min(time.Duration(1<<uint(min(attempt, 5)))*time.Second, 30*time.Second)
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
