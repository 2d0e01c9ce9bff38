package display

import (
	"strings"
	"testing"
	"time"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/cache"
)

func boolPtr(b bool) *bool          { return &b }
func float64Ptr(f float64) *float64 { return &f }
func int64Ptr(n int64) *int64       { return &n }

func planSummary() *api.UsageSummary {
	return &api.UsageSummary{
		Plan: &api.PlanUsage{Enabled: boolPtr(true), Used: 595, Limit: 40000},
	}
}

func TestSummaryLine_PlanOnly(t *testing.T) {
	if got := SummaryLine(planSummary()); got != "595/40000 (1.5%)" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestSummaryLine_PlanWithOnDemand(t *testing.T) {
	s := planSummary()
	s.OnDemand = &api.OnDemandUsage{Enabled: boolPtr(true), Used: 10, Limit: float64Ptr(20)}
	if got := SummaryLine(s); got != "595/40000 (1.5%) | On-Demand: 10/20 (50.0%)" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestSummaryLine_OnDemandFallback(t *testing.T) {
	s := &api.UsageSummary{
		Plan:     &api.PlanUsage{Enabled: boolPtr(false)},
		OnDemand: &api.OnDemandUsage{Enabled: boolPtr(true), Used: 10, Limit: float64Ptr(20)},
	}
	if got := SummaryLine(s); got != "10/20 (50.0%)" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestSummaryLine_OnDemandOnly(t *testing.T) {
	s := &api.UsageSummary{
		OnDemand: &api.OnDemandUsage{Enabled: boolPtr(true), Used: 10, Limit: float64Ptr(20)},
	}
	if got := SummaryLine(s); got != "10/20 (50.0%)" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestSummaryLine_BothDisabled(t *testing.T) {
	s := &api.UsageSummary{
		Plan:     &api.PlanUsage{Enabled: boolPtr(false)},
		OnDemand: &api.OnDemandUsage{Enabled: boolPtr(false), Limit: float64Ptr(0)},
	}
	if got := SummaryLine(s); got != "Plan disabled" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestSummaryLine_NilSummary(t *testing.T) {
	if got := SummaryLine(nil); got != "No data" {
		t.Errorf("SummaryLine(nil) = %q", got)
	}
}

func TestSummaryLine_MalformedOnDemandIgnored(t *testing.T) {
	// Enabled on-demand without a limit cannot be rendered as a quota.
	s := &api.UsageSummary{
		OnDemand: &api.OnDemandUsage{Enabled: boolPtr(true), Used: 10},
	}
	if got := SummaryLine(s); got != "Plan disabled" {
		t.Errorf("SummaryLine = %q", got)
	}
}

func TestRenderStatus_WarningGlyph(t *testing.T) {
	got := RenderStatus("Refresh Failed", true, true)
	if got != "⚠ Refresh Failed" {
		t.Errorf("RenderStatus = %q", got)
	}
	if got := RenderStatus("595/40000 (1.5%)", false, true); got != "595/40000 (1.5%)" {
		t.Errorf("RenderStatus = %q", got)
	}
}

func TestDetailView_ContainsQuotaAndEvent(t *testing.T) {
	cents := 1.25
	ev := &api.UsageEvent{
		Timestamp: "1770724800000",
		Model:     "composer",
		Kind:      "USAGE_EVENT_KIND_INCLUDED_IN_PRO",
		TokenUsage: &api.TokenUsage{
			InputTokens: int64Ptr(1200),
			TotalCents:  &cents,
		},
	}

	out := DetailView(planSummary(), ev, nil, true)
	for _, want := range []string{"595/40000 (1.5%)", "composer", "included", "1,200", "$0.0125"} {
		if !strings.Contains(out, want) {
			t.Errorf("DetailView missing %q:\n%s", want, out)
		}
	}
	// Absent token fields are omitted, not rendered as zeros.
	if strings.Contains(out, "Output tokens") {
		t.Errorf("DetailView should omit absent output tokens:\n%s", out)
	}
}

func TestDetailView_NoEvent(t *testing.T) {
	out := DetailView(planSummary(), nil, nil, true)
	if !strings.Contains(out, "No recent usage events") {
		t.Errorf("DetailView missing placeholder:\n%s", out)
	}
}

func TestDetailView_NoEventAfterFailedRefresh(t *testing.T) {
	out := DetailView(planSummary(), nil, cache.ErrMalformedEvent, true)
	if !strings.Contains(out, "⚠ Refresh Failed: no usable usage event") {
		t.Errorf("DetailView missing refresh-failed note:\n%s", out)
	}
}

func TestDetailView_StaleEventAnnotated(t *testing.T) {
	cents := 0.5
	ev := &api.UsageEvent{
		Timestamp:  "1770724800000",
		Model:      "auto",
		Kind:       "USAGE_EVENT_KIND_USAGE_BASED",
		TokenUsage: &api.TokenUsage{TotalCents: &cents},
	}
	out := DetailView(planSummary(), ev, cache.ErrMalformedEvent, true)
	if !strings.Contains(out, "⚠ Refresh Failed: showing last known event") {
		t.Errorf("DetailView missing refresh-failed stale note:\n%s", out)
	}
	if !strings.Contains(out, "charged") {
		t.Errorf("non-included event should show as charged:\n%s", out)
	}
}

func TestStatusline_Truncates(t *testing.T) {
	line := Statusline(strings.Repeat("x", 200), nil, time.Time{}, false, StatuslineOptions{NoColor: true, Width: 40})
	if len(line) != 40 {
		t.Errorf("len = %d, want 40", len(line))
	}
}
