package datasource

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/context"
)

type Backoff int

const (
	FixedBackoff Backoff = iota
	ExponentialBackoff
)

func (b Backoff) String() string {
	if b == ExponentialBackoff {
		return "exponential"
	}
	return "fixed"
}

func ParseBackoff(s string) (Backoff, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return FixedBackoff, nil
	case "exponential", "exp":
		return ExponentialBackoff, nil
	}
	return FixedBackoff, fmt.Errorf("datasource: unknown backoff %q", s)
}

const (
	DefaultMaxAttempts = 100
	DefaultRetryDelay  = 100 * time.Millisecond
	DefaultMaxDelay    = 10 * time.Second
)

// RetryPolicy controls how a failed read attempt is repeated. The whole
// open-parse-close sequence is one attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	Backoff  Backoff
	// RetryParseErrors retries malformed data like an I/O failure instead
	// of failing on the first attempt.
	RetryParseErrors bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
		MaxDelay:    DefaultMaxDelay,
		Backoff:     FixedBackoff,
	}
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) retryable(kind ErrorKind) bool {
	if kind == ParseFailure {
		return p.RetryParseErrors
	}
	return true
}

// delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.Delay <= 0 {
		return 0
	}
	if p.Backoff != ExponentialBackoff {
		return p.Delay
	}
	max := p.MaxDelay
	if max <= 0 {
		max = DefaultMaxDelay
	}
	d := p.Delay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
