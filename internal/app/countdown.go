package app

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
)

// TickerFunc returns a channel that fires every d and a function stopping it.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

// RealTicker is the TickerFunc backed by time.Ticker.
func RealTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Countdown drives Controller.Tick from a periodic source. It is owned by a
// single session and must be stopped when the session ends.
type Countdown struct {
	controller *Controller
	interval   time.Duration
	newTicker  TickerFunc
	onTick     func(domain.SessionState)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCountdown wires a countdown for controller. onTick may be nil.
func NewCountdown(controller *Controller, interval time.Duration, ticker TickerFunc, onTick func(domain.SessionState)) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	if ticker == nil {
		ticker = RealTicker
	}
	return &Countdown{
		controller: controller,
		interval:   interval,
		newTicker:  ticker,
		onTick:     onTick,
	}
}

// Start launches the tick loop. Calling Start on a running countdown is a no-op.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticks, stopTicker := c.newTicker(c.interval)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer func() {
			stopTicker()
			// Forget this loop unless Stop already did, so Running reports
			// false and a later Start launches a new one.
			c.mu.Lock()
			if c.done == done {
				c.cancel, c.done = nil, nil
			}
			c.mu.Unlock()
			cancel()
			close(done)
		}()
		last := -1
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				state := c.controller.Tick()
				// Repeated ticks at zero change nothing worth reporting.
				if state.SecondsRemaining == 0 && last == 0 {
					continue
				}
				last = state.SecondsRemaining
				if c.onTick != nil {
					c.onTick(state)
				}
			}
		}
	}()
}

// Stop cancels the tick loop and waits for it to exit. Safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}
