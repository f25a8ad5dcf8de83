package rotation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Issuer mints a fresh check-in credential. The HTTP client in the
// presenter binary implements this against the server API.
type Issuer interface {
	Issue(ctx context.Context) (token string, expiresAt time.Time, err error)
}

// ErrRefreshInFlight is returned when a refresh is requested while another
// one is still talking to the issuer. The slot is single occupancy: a slow
// issue call is never stacked behind a second one.
var ErrRefreshInFlight = errors.New("refresh already in flight")

// Callbacks receive rotation events. Nil funcs are skipped. They are
// invoked from the client's goroutine and must not block.
type Callbacks struct {
	OnToken     func(token string, expiresAt time.Time)
	OnCountdown func(remaining time.Duration)
	OnError     func(err error)
}

// Client drives the display side of the check-in flow: it refreshes the
// credential on a fixed interval and ticks a once-a-second countdown
// toward the next rotation.
type Client struct {
	issuer   Issuer
	interval time.Duration
	cb       Callbacks

	inFlight atomic.Bool

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	nextAt    time.Time
}

func New(issuer Issuer, interval time.Duration, cb Callbacks) *Client {
	return &Client{
		issuer:   issuer,
		interval: interval,
		cb:       cb,
	}
}

// Run refreshes immediately, then on every interval tick until ctx is
// cancelled. A countdown callback fires each second in between.
func (c *Client) Run(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInFlight) {
		c.reportError(err)
	}

	rotate := time.NewTicker(c.interval)
	defer rotate.Stop()
	countdown := time.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rotate.C:
			if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInFlight) {
				c.reportError(err)
			}
		case <-countdown.C:
			c.tickCountdown()
		}
	}
}

// Refresh mints a new credential now. If another refresh holds the slot,
// it returns ErrRefreshInFlight without waiting; the in-flight call's
// result will arrive through the callbacks either way.
func (c *Client) Refresh(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrRefreshInFlight
	}
	defer c.inFlight.Store(false)

	token, expiresAt, err := c.issuer.Issue(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = token
	c.expiresAt = expiresAt
	c.nextAt = time.Now().Add(c.interval)
	c.mu.Unlock()

	if c.cb.OnToken != nil {
		c.cb.OnToken(token, expiresAt)
	}
	return nil
}

// Current returns the latest minted credential, if any.
func (c *Client) Current() (token string, expiresAt time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.expiresAt, c.token != ""
}

// Remaining is the time left until the next scheduled rotation, floored
// at zero.
func (c *Client) Remaining() time.Duration {
	c.mu.Lock()
	nextAt := c.nextAt
	c.mu.Unlock()

	if nextAt.IsZero() {
		return 0
	}
	left := time.Until(nextAt)
	if left < 0 {
		return 0
	}
	return left
}

func (c *Client) tickCountdown() {
	if c.cb.OnCountdown == nil {
		return
	}
	c.cb.OnCountdown(c.Remaining().Truncate(time.Second))
}

func (c *Client) reportError(err error) {
	if c.cb.OnError != nil {
		c.cb.OnError(err)
	}
}
