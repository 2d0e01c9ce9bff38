package meter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/cache"
	"github.com/wyilio/cursor-meter/internal/display"
	"github.com/wyilio/cursor-meter/internal/logging"
)

// SummaryFetcher is the slice of the API client the meter depends on.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, token string) (*api.UsageSummary, error)
}

// TokenSource supplies the session token for each refresh. Invalidate is
// called when the upstream rejects the token, so the next acquisition can
// start fresh.
type TokenSource interface {
	Token() (string, bool)
	Invalidate() bool
}

// Timings controls the meter's refresh cadence.
type Timings struct {
	// Interval is the periodic refresh interval.
	Interval time.Duration
	// Debounce delays the refresh triggered by edit activity.
	Debounce time.Duration
	// ActivityDelay is how long after an edit the usage event is force-
	// refreshed, giving the upstream time to record the request.
	ActivityDelay time.Duration
}

// DefaultTimings matches the polling cadence the dashboard tolerates.
func DefaultTimings() Timings {
	return Timings{
		Interval:      30 * time.Minute,
		Debounce:      2 * time.Second,
		ActivityDelay: 3 * time.Second,
	}
}

func (t Timings) withDefaults() Timings {
	d := DefaultTimings()
	if t.Interval <= 0 {
		t.Interval = d.Interval
	}
	if t.Debounce <= 0 {
		t.Debounce = d.Debounce
	}
	if t.ActivityDelay <= 0 {
		t.ActivityDelay = d.ActivityDelay
	}
	return t
}

// Meter orchestrates usage refreshes: a periodic timer, debounced refreshes
// on edit activity, and immediate refreshes on save. Refresh work is
// serialized by a mutex so overlapping triggers (timer firing during a
// save-driven refresh) never interleave their fetches or state writes.
type Meter struct {
	fetcher SummaryFetcher
	events  *cache.Events
	tokens  TokenSource
	widget  Widget
	timings Timings
	now     func() time.Time

	// refreshMu serializes refresh work end to end.
	refreshMu sync.Mutex

	// timerMu guards the timer handles below.
	timerMu         sync.Mutex
	periodic        *time.Timer
	debounce        *time.Timer
	activity        *time.Timer
	activityPending bool
	stopped         bool

	stateMu sync.RWMutex
	state   State

	ctx context.Context
}

// New creates a Meter. widget may be nil when no live surface is attached.
func New(fetcher SummaryFetcher, events *cache.Events, tokens TokenSource, widget Widget, timings Timings) *Meter {
	return &Meter{
		fetcher: fetcher,
		events:  events,
		tokens:  tokens,
		widget:  widget,
		timings: timings.withDefaults(),
		now:     time.Now,
		state:   State{Phase: PhaseLoading, Text: "Loading..."},
	}
}

// State returns the last published state.
func (m *Meter) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// Start performs an immediate refresh and arms the periodic timer. The
// context bounds all background refreshes; Stop (or context cancellation)
// ends them.
func (m *Meter) Start(ctx context.Context) {
	m.ctx = ctx
	m.publish(State{Phase: PhaseLoading, Text: "Loading...", FetchedAt: m.now()})
	m.Refresh(ctx)
	m.armPeriodic()
}

// Stop cancels all pending timers. In-flight refreshes finish on their own.
func (m *Meter) Stop() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	m.stopped = true
	for _, t := range []*time.Timer{m.periodic, m.debounce, m.activity} {
		if t != nil {
			t.Stop()
		}
	}
}

// Refresh runs a full refresh now: the summary is re-fetched and the event
// cache is force-refreshed, bypassing its TTL.
func (m *Meter) Refresh(ctx context.Context) {
	m.refresh(ctx, true)
}

// NoteEdit records edit activity. The summary refresh is debounced so a
// burst of edits costs one fetch. Separately, a non-debounced force-refresh
// of the usage event fires a fixed delay after the first edit of a burst,
// picking up the request that edit produced; later edits in the burst do
// not push it back.
func (m *Meter) NoteEdit() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.stopped {
		return
	}

	if m.debounce != nil {
		m.debounce.Stop()
	}
	m.debounce = time.AfterFunc(m.timings.Debounce, func() {
		m.refresh(m.ctx, false)
	})

	if !m.activityPending {
		m.activityPending = true
		m.activity = time.AfterFunc(m.timings.ActivityDelay, func() {
			m.timerMu.Lock()
			m.activityPending = false
			m.timerMu.Unlock()
			m.refreshEventOnly()
		})
	}
}

// NoteSave records a save: refresh immediately, event cache included.
func (m *Meter) NoteSave() {
	m.timerMu.Lock()
	stopped := m.stopped
	m.timerMu.Unlock()
	if stopped {
		return
	}
	go m.refresh(m.ctx, true)
}

func (m *Meter) armPeriodic() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	if m.stopped {
		return
	}
	if m.periodic != nil {
		m.periodic.Stop()
	}
	m.periodic = time.AfterFunc(m.timings.Interval, func() {
		m.refresh(m.ctx, false)
		m.armPeriodic()
	})
}

// refresh fetches the summary and the cached event, then publishes the
// resulting state. forceEvents bypasses the event cache TTL.
func (m *Meter) refresh(ctx context.Context, forceEvents bool) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return
	}

	token, ok := m.tokens.Token()
	if !ok {
		m.publish(State{Phase: PhaseError, Text: "No token", FetchedAt: m.now()})
		return
	}

	summary, err := m.fetcher.FetchSummary(ctx, token)
	if err != nil {
		m.handleFetchError(ctx, err)
		m.publish(State{Phase: PhaseError, Text: "Refresh Failed", FetchedAt: m.now()})
		return
	}
	// A summary without the plan object (or its enabled flag) is malformed,
	// even when on-demand data is present.
	if summary == nil || summary.Plan == nil || summary.Plan.Enabled == nil {
		logging.FromContext(ctx).Warn("usage summary missing plan quota shape")
		m.publish(State{Phase: PhaseError, Text: "Refresh Failed", FetchedAt: m.now()})
		return
	}

	event, eventErr := m.events.GetOrFetch(ctx, token, forceEvents)
	var authErr *api.AuthError
	if errors.As(eventErr, &authErr) {
		m.handleFetchError(ctx, eventErr)
		eventErr = nil
	}

	phase := PhaseOK
	text := display.SummaryLine(summary)
	if !quotaActive(summary) {
		// Neither quota is enabled: a valid response, but nothing to meter.
		phase = PhaseError
	}

	m.publish(State{
		Phase:     phase,
		Text:      text,
		Summary:   summary,
		Event:     event,
		EventErr:  eventErr,
		FetchedAt: m.now(),
	})
}

// refreshEventOnly force-refreshes the cached usage event without touching
// the summary, then republishes the current state with the new event.
func (m *Meter) refreshEventOnly() {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	ctx := m.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return
	}

	token, ok := m.tokens.Token()
	if !ok {
		return
	}

	event, eventErr := m.events.GetOrFetch(ctx, token, true)
	var authErr *api.AuthError
	if errors.As(eventErr, &authErr) {
		m.handleFetchError(ctx, eventErr)
		return
	}

	m.stateMu.Lock()
	m.state.Event = event
	m.state.EventErr = eventErr
	state := m.state
	m.stateMu.Unlock()
	m.notify(state)
}

// handleFetchError clears the stored credential on auth rejection so the
// next refresh re-acquires a token. The token itself is never logged.
func (m *Meter) handleFetchError(ctx context.Context, err error) {
	logger := logging.FromContext(ctx)
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		logger.Warn("session token rejected, clearing stored credential", "status", authErr.Status)
		m.tokens.Invalidate()
		return
	}
	logger.Warn("usage refresh failed", "error", err)
}

func (m *Meter) publish(state State) {
	m.stateMu.Lock()
	m.state = state
	m.stateMu.Unlock()
	m.notify(state)
}

func (m *Meter) notify(state State) {
	if m.widget != nil {
		m.widget.Update(state)
	}
}

// quotaActive reports whether at least one quota is enabled.
func quotaActive(s *api.UsageSummary) bool {
	if s.Plan != nil && s.Plan.Enabled != nil && *s.Plan.Enabled {
		return true
	}
	return s.OnDemand.WellFormed() && *s.OnDemand.Enabled
}
