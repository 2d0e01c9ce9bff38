package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/logging"
)

// ErrMalformedEvent reports that the upstream returned no usable event (an
// empty page, or an event with no cost attached). The cache keeps whatever
// it held before; callers annotate their output rather than failing.
var ErrMalformedEvent = errors.New("no well-formed usage event in response")

// EventFetcher is the slice of the API client the cache depends on.
type EventFetcher interface {
	FetchLastEvents(ctx context.Context, token string, window time.Duration, pageSize int) ([]api.UsageEvent, error)
}

// Events caches the most recent usage event with a fixed TTL, so that the
// frequent summary refreshes don't hammer the heavier events endpoint.
//
// Failures are deliberately non-destructive: a fetch error or malformed
// response leaves the previously cached event in place. Staleness is
// preferable to a flickering detail view.
type Events struct {
	fetcher EventFetcher
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	event     *api.UsageEvent
	fetchedAt time.Time
}

// NewEvents creates an event cache with the given TTL. A non-positive TTL
// falls back to 5 minutes.
func NewEvents(fetcher EventFetcher, ttl time.Duration) *Events {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Events{fetcher: fetcher, ttl: ttl, now: time.Now}
}

// Cached returns the currently cached event without fetching. Nil when
// nothing has been cached yet.
func (e *Events) Cached() *api.UsageEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.event
}

// GetOrFetch returns the cached event when it is fresh, fetching otherwise.
// force bypasses the TTL check. On transport or parse failure the stale
// event is returned with a nil error; ErrMalformedEvent is returned when
// the upstream answered successfully but carried nothing usable.
func (e *Events) GetOrFetch(ctx context.Context, token string, force bool) (*api.UsageEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !force && e.event != nil && e.now().Sub(e.fetchedAt) < e.ttl {
		return e.event, nil
	}

	events, err := e.fetcher.FetchLastEvents(ctx, token, 0, 0)
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) {
			// Auth failures must propagate so the credential gets cleared.
			return e.event, err
		}
		logging.FromContext(ctx).Warn("event refresh failed, keeping cached event", "error", err)
		return e.event, nil
	}

	ev := firstWellFormed(events)
	if ev == nil {
		return e.event, ErrMalformedEvent
	}

	e.event = ev
	e.fetchedAt = e.now()
	return e.event, nil
}

// firstWellFormed picks the first event carrying a cost. Events without a
// totalCents are placeholders the dashboard renders as in-flight.
func firstWellFormed(events []api.UsageEvent) *api.UsageEvent {
	for i := range events {
		ev := &events[i]
		if ev.TokenUsage != nil && ev.TokenUsage.TotalCents != nil {
			return ev
		}
	}
	return nil
}
