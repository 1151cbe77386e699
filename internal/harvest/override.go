package harvest

import "time"

// delayOverride swaps a strategy's built-in pacing for a configured one.
type delayOverride struct {
	Strategy
	delay time.Duration
}

func (d delayOverride) Delay() time.Duration { return d.delay }

// WithDelay returns strat paced at d instead of its default. d <= 0 returns
// strat unchanged.
func WithDelay(strat Strategy, d time.Duration) Strategy {
	if d <= 0 {
		return strat
	}
	return delayOverride{Strategy: strat, delay: d}
}
