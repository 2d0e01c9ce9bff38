package display

import (
	"encoding/json"
	"io"
	"time"

	"github.com/wyilio/cursor-meter/internal/api"
)

// OutputJSON writes pretty-printed JSON to the given writer.
func OutputJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// usageJSON is the machine-readable shape of a usage report.
type usageJSON struct {
	Summary   string          `json:"summary"`
	Plan      *quotaJSON      `json:"plan,omitempty"`
	OnDemand  *quotaJSON      `json:"onDemand,omitempty"`
	LastEvent *api.UsageEvent `json:"lastEvent,omitempty"`
	EventNote string          `json:"eventNote,omitempty"`
	FetchedAt string          `json:"fetchedAt"`
}

type quotaJSON struct {
	Enabled    bool    `json:"enabled"`
	Used       float64 `json:"used"`
	Limit      float64 `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// OutputUsageJSON writes the usage summary and last event as JSON.
func OutputUsageJSON(w io.Writer, summary *api.UsageSummary, event *api.UsageEvent, cacheErr error) error {
	data := usageJSON{
		Summary:   SummaryLine(summary),
		LastEvent: event,
		FetchedAt: time.Now().Format(time.RFC3339),
	}
	if cacheErr != nil {
		data.EventNote = cacheErr.Error()
	}
	if summary != nil {
		if p := summary.Plan; p != nil && p.Enabled != nil {
			data.Plan = &quotaJSON{
				Enabled:    *p.Enabled,
				Used:       p.Used,
				Limit:      p.Limit,
				Percentage: Percentage(p.Used, p.Limit),
			}
		}
		if od := summary.OnDemand; od.WellFormed() {
			data.OnDemand = &quotaJSON{
				Enabled:    *od.Enabled,
				Used:       od.Used,
				Limit:      *od.Limit,
				Percentage: Percentage(od.Used, *od.Limit),
			}
		}
	}
	return OutputJSON(w, data)
}
