package meter

import (
	"time"

	"github.com/wyilio/cursor-meter/internal/api"
)

// Phase classifies the meter's current state for presentation.
type Phase string

const (
	// PhaseLoading is the initial state before the first refresh lands.
	PhaseLoading Phase = "loading"
	// PhaseOK means the last refresh produced a usable summary.
	PhaseOK Phase = "ok"
	// PhaseError means the last refresh failed; Text carries the reason.
	PhaseError Phase = "error"
)

// State is the meter's published snapshot. It is a value: widgets receive
// a copy and never share mutable data with the orchestrator.
type State struct {
	Phase Phase
	// Text is the one-line rendering of the state: the usage summary in
	// PhaseOK, a short reason otherwise.
	Text string

	Summary *api.UsageSummary
	Event   *api.UsageEvent
	// EventErr annotates the event as unusable or stale; it never makes
	// the whole state an error.
	EventErr error

	FetchedAt time.Time
}

// IsError reports whether the state should render with a warning marker.
func (s State) IsError() bool { return s.Phase == PhaseError }

// Widget receives state updates. Implementations must be safe to call from
// the orchestrator's timer goroutines and must not block.
type Widget interface {
	Update(State)
}

// WidgetFunc adapts a function to the Widget interface.
type WidgetFunc func(State)

func (f WidgetFunc) Update(s State) { f(s) }
