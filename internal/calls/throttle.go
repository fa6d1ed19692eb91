package calls

import (
	"context"
	"errors"
	"time"

	"voiceagent-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrDialThrottled means the target number was dialed too recently.
var ErrDialThrottled = errors.New("calls: number dialed too recently")

// DialThrottle is an optional cross-process guard against rapid re-dials of
// the same number. A nil throttle disables the guard entirely.
//
// Built on the Redis concurrency-cap helpers: one slot per number, released
// either explicitly on a terminal status or by TTL expiry after a crash.
type DialThrottle struct {
	rdb    *redis.Client
	window time.Duration
}

const dialKeyPrefix = "dial:"

// NewDialThrottle builds a throttle. window bounds how long a number stays
// blocked when no terminal event arrives.
func NewDialThrottle(rdb *redis.Client, window time.Duration) *DialThrottle {
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &DialThrottle{rdb: rdb, window: window}
}

// Acquire claims the dial slot for number. Returns ErrDialThrottled when the
// slot is taken; infrastructure errors are returned as-is.
func (t *DialThrottle) Acquire(ctx context.Context, number string) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	ok, err := utils.AcquireConcurrencyCap(ctx, t.rdb, dialKeyPrefix+number, 1, t.window)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDialThrottled
	}
	return nil
}

// Release frees the dial slot, typically when the call reaches a terminal
// status. Best-effort; TTL expiry covers missed releases.
func (t *DialThrottle) Release(ctx context.Context, number string) error {
	if t == nil || t.rdb == nil {
		return nil
	}
	return utils.ReleaseConcurrencyCap(ctx, t.rdb, dialKeyPrefix+number)
}
