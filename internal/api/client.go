package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wyilio/cursor-meter/internal/httpclient"
)

// sessionCookieName is the cookie the dashboard API authenticates with.
// The token is a bearer secret; it is never logged.
const sessionCookieName = "WorkosCursorSessionToken"

const (
	summaryPath = "/api/usage-summary"
	eventsPath  = "/api/dashboard/get-filtered-usage-events"

	// DefaultEventsWindow is the lookback used when no window is given.
	DefaultEventsWindow = 7 * 24 * time.Hour
)

// Client talks to the Cursor dashboard API. Both requests are single-shot
// and unary; there is no retry or pagination loop.
type Client struct {
	http    *httpclient.Client
	baseURL string
	now     func() time.Time
}

// NewClient creates a Client for the given base URL (empty means the
// production dashboard) with the given request timeout in seconds.
func NewClient(baseURL string, timeoutSeconds float64) *Client {
	if baseURL == "" {
		baseURL = "https://cursor.com"
	}
	return &Client{
		http:    httpclient.NewFromConfig(timeoutSeconds),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// FetchSummary retrieves the current billing-cycle usage summary.
// Returns *AuthError for 401-class responses, *HTTPError for other non-2xx
// statuses, and *ParseError when the body is not the expected JSON shape.
func (c *Client) FetchSummary(ctx context.Context, token string) (*UsageSummary, error) {
	var summary UsageSummary
	resp, err := c.http.GetJSONCtx(ctx, c.baseURL+summaryPath, &summary,
		httpclient.WithHeader("Accept", "*/*"),
		httpclient.WithCookie(sessionCookieName, token),
		// The dashboard rejects requests without its own referer — a
		// compatibility contract, not a security measure.
		httpclient.WithHeader("Referer", c.baseURL+"/dashboard?tab=billing"),
	)
	if err != nil {
		return nil, fmt.Errorf("usage summary request: %w", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	if resp.JSONErr != nil {
		return nil, &ParseError{Err: resp.JSONErr}
	}
	return &summary, nil
}

// FetchLastEvents retrieves the most recent usage events, most recent first.
// A non-positive window falls back to DefaultEventsWindow; a non-positive
// pageSize falls back to 1.
func (c *Client) FetchLastEvents(ctx context.Context, token string, window time.Duration, pageSize int) ([]UsageEvent, error) {
	if window <= 0 {
		window = DefaultEventsWindow
	}
	if pageSize <= 0 {
		pageSize = 1
	}

	end := c.now()
	start := end.Add(-window)
	body := usageEventsRequest{
		TeamID:    0,
		StartDate: strconv.FormatInt(start.UnixMilli(), 10),
		EndDate:   strconv.FormatInt(end.UnixMilli(), 10),
		Page:      1,
		PageSize:  pageSize,
	}

	var events UsageEventsResponse
	resp, err := c.http.PostJSONCtx(ctx, c.baseURL+eventsPath, body, &events,
		httpclient.WithHeader("Accept", "*/*"),
		httpclient.WithCookie(sessionCookieName, token),
		httpclient.WithHeader("Origin", c.baseURL),
		httpclient.WithHeader("Referer", c.baseURL+"/dashboard?tab=usage"),
	)
	if err != nil {
		return nil, fmt.Errorf("usage events request: %w", err)
	}
	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	if resp.JSONErr != nil {
		return nil, &ParseError{Err: resp.JSONErr}
	}
	return events.UsageEventsDisplay, nil
}

func (c *Client) checkStatus(resp *httpclient.Response) error {
	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return &AuthError{Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &HTTPError{Status: resp.StatusCode, BodyPrefix: httpclient.SummarizeBody(resp.Body)}
	}
	return nil
}
