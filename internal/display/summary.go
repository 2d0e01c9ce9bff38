package display

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wyilio/cursor-meter/internal/api"
	"github.com/wyilio/cursor-meter/internal/cache"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func colorStyle(color string) lipgloss.Style {
	switch color {
	case "green":
		return greenStyle
	case "yellow":
		return yellowStyle
	case "red":
		return redStyle
	default:
		return lipgloss.NewStyle()
	}
}

// UtilizationColor maps a percentage to a traffic-light color name.
func UtilizationColor(pct float64) string {
	switch {
	case pct < 50:
		return "green"
	case pct < 80:
		return "yellow"
	default:
		return "red"
	}
}

// RenderBar renders a fixed-width utilization bar.
func RenderBar(pct float64, width int, color string) string {
	filled := max(0, min(int(pct)*width/100, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return colorStyle(color).Render(bar)
}

// SummaryLine renders the one-line usage summary. The plan quota leads when
// it is present and enabled, with on-demand usage appended alongside when
// that quota is also active; a well-formed enabled on-demand quota alone is
// the fallback; otherwise the account has nothing metered to show.
func SummaryLine(summary *api.UsageSummary) string {
	if summary == nil {
		return "No data"
	}
	od := summary.OnDemand
	odActive := od.WellFormed() && *od.Enabled

	if p := summary.Plan; p != nil && p.Enabled != nil && *p.Enabled {
		line := FormatQuota(p.Used, p.Limit)
		if odActive {
			line += " | On-Demand: " + FormatQuota(od.Used, *od.Limit)
		}
		return line
	}
	if odActive {
		return FormatQuota(od.Used, *od.Limit)
	}
	return "Plan disabled"
}

// RenderStatus renders a short status with a warning glyph for error phases.
func RenderStatus(text string, isError, noColor bool) string {
	if !isError {
		return text
	}
	if noColor {
		return "⚠ " + text
	}
	return yellowStyle.Render("⚠ " + text)
}

// DetailView renders the expanded usage view: quota lines for plan and
// on-demand, plus the last cached usage event. Absent fields are omitted,
// never rendered as zeros. cacheErr annotates the event section when the
// last event refresh came back unusable.
func DetailView(summary *api.UsageSummary, event *api.UsageEvent, cacheErr error, noColor bool) string {
	var b strings.Builder

	b.WriteString(renderQuotaSection(summary, noColor))
	b.WriteString("\n\n")
	b.WriteString(renderEventSection(event, cacheErr, noColor))

	return b.String()
}

func renderQuotaSection(summary *api.UsageSummary, noColor bool) string {
	title := "Cursor Usage"
	if !noColor {
		title = titleStyle.Render(title)
	}

	var lines []string
	if summary == nil {
		lines = append(lines, "No data")
	} else {
		if p := summary.Plan; p != nil && p.Enabled != nil {
			if *p.Enabled {
				pct := Percentage(p.Used, p.Limit)
				line := "Plan      " + FormatQuota(p.Used, p.Limit)
				if !noColor {
					line += "  " + RenderBar(pct, 20, UtilizationColor(pct))
				}
				lines = append(lines, line)
				lines = append(lines, planBreakdownLines(p, noColor)...)
			} else {
				lines = append(lines, "Plan      disabled")
			}
		}
		if od := summary.OnDemand; od.WellFormed() {
			if *od.Enabled {
				pct := Percentage(od.Used, *od.Limit)
				line := "On-demand " + FormatQuota(od.Used, *od.Limit)
				if !noColor {
					line += "  " + RenderBar(pct, 20, UtilizationColor(pct))
				}
				lines = append(lines, line)
			} else {
				lines = append(lines, "On-demand disabled")
			}
		}
		if len(lines) == 0 {
			lines = append(lines, "No quota data")
		}
	}

	return title + "\n" + strings.Join(lines, "\n")
}

// planBreakdownLines renders the optional spend breakdown under the plan
// quota. Each component appears only when its limit is known.
func planBreakdownLines(p *api.PlanUsage, noColor bool) []string {
	var lines []string
	dim := func(s string) string {
		if noColor {
			return s
		}
		return dimStyle.Render(s)
	}
	if p.AutoLimit > 0 {
		lines = append(lines, dim("  auto "+FormatCurrencyCents(p.AutoSpend)+" / "+FormatCurrencyCents(p.AutoLimit)))
	}
	if p.APILimit > 0 {
		lines = append(lines, dim("  api  "+FormatCurrencyCents(p.APISpend)+" / "+FormatCurrencyCents(p.APILimit)))
	}
	return lines
}

func renderEventSection(event *api.UsageEvent, cacheErr error, noColor bool) string {
	title := "Last Request"
	if !noColor {
		title = titleStyle.Render(title)
	}

	if event == nil {
		note := "No recent usage events"
		if cacheErr != nil {
			note = RenderStatus("Refresh Failed: no usable usage event", true, noColor)
		}
		return title + "\n" + note
	}

	headers := []string{"Field", "Value"}
	rows := [][]string{
		{"Time", FormatEventTime(event.Time())},
	}
	if event.Model != "" {
		rows = append(rows, []string{"Model", event.Model})
	}
	kind := "charged"
	if event.IsIncluded() {
		kind = "included"
	}
	rows = append(rows, []string{"Billing", kind})

	if tu := event.TokenUsage; tu != nil {
		if tu.InputTokens != nil {
			rows = append(rows, []string{"Input tokens", FormatTokenCount(*tu.InputTokens)})
		}
		if tu.OutputTokens != nil {
			rows = append(rows, []string{"Output tokens", FormatTokenCount(*tu.OutputTokens)})
		}
		if tu.CacheWriteTokens != nil {
			rows = append(rows, []string{"Cache write", FormatTokenCount(*tu.CacheWriteTokens)})
		}
		if tu.CacheReadTokens != nil {
			rows = append(rows, []string{"Cache read", FormatTokenCount(*tu.CacheReadTokens)})
		}
		if tu.TotalCents != nil {
			rows = append(rows, []string{"Cost", FormatCurrencyCents(*tu.TotalCents)})
		}
	}

	out := title + "\n" + NewTableWithOptions(headers, rows, TableOptions{NoColor: noColor})

	if errors.Is(cacheErr, cache.ErrMalformedEvent) {
		age := ""
		if t := event.Time(); t != nil {
			age = " (" + formatAge(time.Since(*t)) + " old)"
		}
		out += "\n" + RenderStatus("Refresh Failed: showing last known event"+age, true, noColor)
	}
	return out
}
