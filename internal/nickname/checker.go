package nickname

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
)

// ErrSuperseded is returned to a caller whose check was replaced by a newer one.
var ErrSuperseded = errors.New("nickname check superseded")

type pendingCheck struct {
	timer      *time.Timer
	cancel     context.CancelFunc
	superseded chan struct{}
}

// Checker debounces nickname checks. Each Check cancels the pending timer of
// the previous one, and the previous backend call if it is already running.
type Checker struct {
	delay    time.Duration
	validate *validator.Validate
	src      ExistenceChecker

	mu      sync.Mutex
	current *pendingCheck
}

func NewChecker(delay time.Duration, v *validator.Validate, src ExistenceChecker) *Checker {
	return &Checker{delay: delay, validate: v, src: src}
}

// supersede replaces the current check with next (nil to clear).
// Must be called with c.mu held.
func (c *Checker) supersede(next *pendingCheck) {
	if prev := c.current; prev != nil {
		if prev.timer != nil {
			prev.timer.Stop()
		}
		prev.cancel()
		close(prev.superseded)
	}
	c.current = next
}

// Check waits for the debounce delay and evaluates nickname, unless a newer
// Check arrives first, in which case it returns ErrSuperseded. Format failures
// are answered at once.
func (c *Checker) Check(ctx context.Context, cookie, nickname, current string) (Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !ValidFormat(c.validate, nickname) {
		c.mu.Lock()
		c.supersede(nil)
		c.mu.Unlock()
		return Result{Valid: false, Format: true, Message: MsgInvalid}, nil
	}

	pc := &pendingCheck{cancel: cancel, superseded: make(chan struct{})}
	done := make(chan Result, 1)

	c.mu.Lock()
	c.supersede(pc)
	pc.timer = time.AfterFunc(c.delay, func() {
		done <- Evaluate(runCtx, c.validate, c.src, cookie, nickname, current)
	})
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.current == pc {
			c.current = nil
		}
		c.mu.Unlock()
	}()

	select {
	case r := <-done:
		select {
		case <-pc.superseded:
			return Result{}, ErrSuperseded
		default:
			return r, nil
		}
	case <-pc.superseded:
		return Result{}, ErrSuperseded
	case <-ctx.Done():
		pc.timer.Stop()
		return Result{}, ctx.Err()
	}
}

// Registry keeps one Checker per session scope, so only checks typed in the
// same session debounce each other.
type Registry struct {
	delay    time.Duration
	validate *validator.Validate
	src      ExistenceChecker
	checkers *cache.Cache
	mu       sync.Mutex
}

func NewRegistry(delay time.Duration, v *validator.Validate, src ExistenceChecker) *Registry {
	return &Registry{
		delay:    delay,
		validate: v,
		src:      src,
		checkers: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// For returns the Checker of a scope, creating it on first use.
func (r *Registry) For(scope string) *Checker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.checkers.Get(scope); ok {
		r.checkers.SetDefault(scope, v)
		return v.(*Checker)
	}
	c := NewChecker(r.delay, r.validate, r.src)
	r.checkers.SetDefault(scope, c)
	return c
}
