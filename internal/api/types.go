package api

import (
	"strconv"
	"strings"
	"time"
)

// UsageSummary is the billing-cycle snapshot returned by the usage-summary
// endpoint. All monetary amounts are in cents. A fresh summary fully
// supersedes the previous one; there are no merge semantics.
type UsageSummary struct {
	Plan     *PlanUsage     `json:"plan,omitempty"`
	OnDemand *OnDemandUsage `json:"onDemand,omitempty"`
}

// PlanUsage is usage against the included plan quota (cents).
// Enabled is a pointer so a missing field is distinguishable from false,
// which the shape validation relies on.
type PlanUsage struct {
	Enabled   *bool          `json:"enabled,omitempty"`
	Used      float64        `json:"used"`
	Limit     float64        `json:"limit"`
	Remaining float64        `json:"remaining"`
	Breakdown *PlanBreakdown `json:"breakdown,omitempty"`
	AutoSpend float64        `json:"autoSpend"`
	APISpend  float64        `json:"apiSpend"`
	AutoLimit float64        `json:"autoLimit"`
	APILimit  float64        `json:"apiLimit"`
}

// PlanBreakdown splits plan usage into included and bonus credits (cents).
type PlanBreakdown struct {
	Included float64 `json:"included"`
	Bonus    float64 `json:"bonus"`
	Total    float64 `json:"total"`
}

// OnDemandUsage is spending outside the included quota (cents).
// Limit and Remaining are nullable (nil when on-demand is disabled or
// has no hard limit).
type OnDemandUsage struct {
	Enabled   *bool    `json:"enabled,omitempty"`
	Used      float64  `json:"used"`
	Limit     *float64 `json:"limit"`
	Remaining *float64 `json:"remaining"`
}

// WellFormed reports whether the on-demand sub-object carries everything
// needed to render it: an explicit enabled flag and a numeric limit.
func (o *OnDemandUsage) WellFormed() bool {
	return o != nil && o.Enabled != nil && o.Limit != nil
}

// UsageEvent is a single billed request record from the filtered-usage-events
// endpoint. Only the most recent event is ever held; no history is kept.
type UsageEvent struct {
	Timestamp      string      `json:"timestamp"`
	Model          string      `json:"model"`
	Kind           string      `json:"kind"`
	RequestsCosts  float64     `json:"requestsCosts"`
	TokenUsage     *TokenUsage `json:"tokenUsage,omitempty"`
	OwningUser     string      `json:"owningUser,omitempty"`
	CursorTokenFee float64     `json:"cursorTokenFee"`
	IsChargeable   bool        `json:"isChargeable"`
}

// Time parses the event's string-encoded epoch-millisecond timestamp.
// Returns nil when the timestamp is absent or unparseable.
func (e *UsageEvent) Time() *time.Time {
	if e.Timestamp == "" {
		return nil
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(e.Timestamp), 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms)
	return &t
}

// IsIncluded reports whether the event was covered by the plan quota,
// distinguished from chargeable events by a substring of the kind tag
// (e.g. "USAGE_EVENT_KIND_INCLUDED_IN_PRO").
func (e *UsageEvent) IsIncluded() bool {
	return strings.Contains(e.Kind, "INCLUDED")
}

// TokenUsage carries per-event token counts. The four count fields are
// independently optional; TotalCents is expected on every well-formed event.
type TokenUsage struct {
	InputTokens      *int64   `json:"inputTokens,omitempty"`
	OutputTokens     *int64   `json:"outputTokens,omitempty"`
	CacheWriteTokens *int64   `json:"cacheWriteTokens,omitempty"`
	CacheReadTokens  *int64   `json:"cacheReadTokens,omitempty"`
	TotalCents       *float64 `json:"totalCents"`
}

// UsageEventsResponse is the envelope of the filtered-usage-events endpoint.
// Events are ordered by the API, most recent first.
type UsageEventsResponse struct {
	TotalUsageEventsCount int          `json:"totalUsageEventsCount"`
	UsageEventsDisplay    []UsageEvent `json:"usageEventsDisplay"`
}

// usageEventsRequest is the POST body for the filtered-usage-events endpoint.
// Start and end dates are string-encoded epoch milliseconds.
type usageEventsRequest struct {
	TeamID    int    `json:"teamId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}
