package crawler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RandomDelay waits a duration drawn uniformly from [Min, Max] before each call returns.
// The zero value of the unexported fields is usable, so a struct literal works too.
type RandomDelay struct {
	Min time.Duration
	Max time.Duration

	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRandomDelay creates a delay policy. rng may be nil.
func NewRandomDelay(minDelay, maxDelay time.Duration, rng *rand.Rand) (*RandomDelay, error) {
	if minDelay < 0 || maxDelay < minDelay {
		return nil, fmt.Errorf("invalid delay range [%v, %v]", minDelay, maxDelay)
	}
	if rng == nil {
		rng = newRand()
	}
	return &RandomDelay{
		Min:   minDelay,
		Max:   maxDelay,
		rng:   rng,
		sleep: sleepContext,
	}, nil
}

// Next draws the next delay
func (d *RandomDelay) Next() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	if d.rng == nil {
		d.rng = newRand()
	}
	return d.Min + time.Duration(d.rng.Int64N(int64(d.Max-d.Min)+1))
}

// Wait blocks for the next delay or until ctx is done
func (d *RandomDelay) Wait(ctx context.Context) error {
	sleep := d.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d.Next())
}

// NoDelay never waits
type NoDelay struct{}

// Wait returns immediately unless ctx is already done
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
