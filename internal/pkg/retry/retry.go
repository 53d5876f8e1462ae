// Package retry wraps outbound calls that may fail transiently, such as
// handing a code to an SMTP server or to SNS.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Policy bounds how hard Do tries before giving up.
type Policy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxRetries: 2, InitialInterval: 200 * time.Millisecond, MaxInterval: 2 * time.Second}
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs fn until it succeeds, returns a Permanent error, exhausts the
// policy, or ctx is done. The last error is returned unwrapped.
func Do(ctx context.Context, name string, p Policy, fn func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	return backoff.RetryNotify(
		func() error { return fn(ctx) },
		backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx),
		func(err error, next time.Duration) {
			log.Ctx(ctx).Warn().Err(err).Str("operation", name).Dur("next", next).Msg("retrying")
		},
	)
}
