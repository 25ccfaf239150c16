package browser

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces automation actions at least slowMo apart. A zero delay disables it.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(slowMo time.Duration) *pacer {
	if slowMo <= 0 {
		return &pacer{}
	}
	return &pacer{
		limiter: rate.NewLimiter(rate.Every(slowMo), 1),
	}
}

func (p *pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
