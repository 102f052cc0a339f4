// Package enrich resolves researched sender profiles. Profiles live in
// their own per-address cache, decoupled from the email entities, and
// are filled by a time-bounded polling loop started lazily on demand.
package enrich

import (
	"context"
	"strings"
	gosync "sync"
	"time"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/remote"
)

const (
	// DefaultInterval is how often an initiated search is re-checked.
	DefaultInterval = 3 * time.Second

	// DefaultDeadline bounds how long an initiated search is polled
	// before it is reported as timed out.
	DefaultDeadline = 30 * time.Second
)

// Handle cancels a running profile poll. Stop is bound to the owning
// view's lifetime: once called, the poll issues no further lookups and
// performs no further state transitions.
type Handle struct {
	stop chan struct{}
	once gosync.Once
}

// Stop cancels the poll. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

func (h *Handle) stopped() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

// Profiles is the per-sender enrichment cache and poller. One profile
// slot exists per lowercased address, shared across every email from
// that sender.
type Profiles struct {
	api      remote.API
	interval time.Duration
	deadline time.Duration

	mu       gosync.Mutex
	profiles map[string]*model.SenderProfile
	watchers []chan struct{}
}

// New creates a profile cache polling through the given backend client.
// Non-positive interval/deadline fall back to the defaults.
func New(api remote.API, interval, deadline time.Duration) *Profiles {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Profiles{
		api:      api,
		interval: interval,
		deadline: deadline,
		profiles: make(map[string]*model.SenderProfile),
	}
}

// Subscribe returns a channel signaled after every profile state change.
func (p *Profiles) Subscribe() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan struct{}, 1)
	p.watchers = append(p.watchers, ch)
	return ch
}

// Get returns the current profile slot for an address. Unknown addresses
// report ProfileAbsent.
func (p *Profiles) Get(email string) model.SenderProfile {
	key := normalize(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	if prof, ok := p.profiles[key]; ok {
		return *prof
	}
	return model.SenderProfile{Email: key, State: model.ProfileAbsent}
}

// set transitions the profile slot unless the owning poll was stopped.
func (p *Profiles) set(h *Handle, prof model.SenderProfile) {
	if h != nil && h.stopped() {
		return
	}

	p.mu.Lock()
	p.profiles[prof.Email] = &prof
	for _, ch := range p.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	p.mu.Unlock()
}

// Load starts resolving the profile for a sender address and returns the
// cancellation handle. The flow: check the existing-details lookup; when
// absent, issue a research request; a synchronous result resolves
// immediately, while an "initiated" acknowledgement enters the bounded
// polling loop. Already-resolved addresses return a no-op handle.
func (p *Profiles) Load(ctx context.Context, email, name string) *Handle {
	key := normalize(email)
	h := &Handle{stop: make(chan struct{})}

	if p.Get(key).State == model.ProfileResolved {
		return h
	}

	p.set(h, model.SenderProfile{Email: key, State: model.ProfileLoading})

	go p.resolve(ctx, h, key, name)
	return h
}

// Retry re-enters the loading flow from a retry-eligible error state.
func (p *Profiles) Retry(ctx context.Context, email, name string) *Handle {
	key := normalize(email)

	p.mu.Lock()
	delete(p.profiles, key)
	p.mu.Unlock()

	return p.Load(ctx, email, name)
}

// resolve runs the lookup / research / poll flow for one address.
func (p *Profiles) resolve(ctx context.Context, h *Handle, key, name string) {
	// Stored details first; a hit skips research entirely.
	if existing, err := p.api.LookupProfile(ctx, key); err == nil &&
		existing.Success && existing.UserDetails != nil {
		p.set(h, model.SenderProfile{
			Email:   key,
			State:   model.ProfileResolved,
			Details: remote.MapProfile(existing.UserDetails),
		})
		return
	}

	resp, err := p.api.RequestProfile(ctx, remote.ProfileRequest{
		Email: key,
		Name:  name,
	})
	if err != nil {
		p.set(h, model.SenderProfile{
			Email:   key,
			State:   model.ProfileError,
			Message: err.Error(),
		})
		return
	}

	// Definitive synchronous result.
	if resp.UserDetails != nil {
		p.set(h, model.SenderProfile{
			Email:   key,
			State:   model.ProfileResolved,
			Details: remote.MapProfile(resp.UserDetails),
		})
		return
	}

	if !resp.Success {
		p.set(h, model.SenderProfile{
			Email:   key,
			State:   model.ProfileError,
			Message: resp.Message,
		})
		return
	}

	// Research initiated; re-check on the interval until the deadline.
	p.set(h, model.SenderProfile{Email: key, State: model.ProfilePolling})
	p.poll(ctx, h, key)
}

// poll re-issues the existing-details lookup on a fixed interval until
// it resolves, the deadline elapses, or the handle is stopped.
func (p *Profiles) poll(ctx context.Context, h *Handle, key string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(p.deadline)
	defer deadline.Stop()

	for {
		select {
		case <-h.stop:
			return

		case <-ctx.Done():
			return

		case <-deadline.C:
			p.set(h, model.SenderProfile{
				Email:   key,
				State:   model.ProfileError,
				Message: "profile research timed out; retry to search again",
			})
			return

		case <-ticker.C:
			if h.stopped() {
				return
			}
			resp, err := p.api.LookupProfile(ctx, key)
			if err != nil {
				// Lookup hiccups during polling are not fatal;
				// the deadline bounds the loop.
				continue
			}
			if resp.Success && resp.UserDetails != nil {
				p.set(h, model.SenderProfile{
					Email:   key,
					State:   model.ProfileResolved,
					Details: remote.MapProfile(resp.UserDetails),
				})
				return
			}
		}
	}
}

// normalize lowercases and trims a sender address for use as a cache
// key, matching the backend's storage keying.
func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
