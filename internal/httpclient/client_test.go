package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_DefaultTimeout(t *testing.T) {
	c := New()
	if c.http.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", c.http.Timeout)
	}
}

func TestNewFromConfig_ZeroFallsBack(t *testing.T) {
	c := NewFromConfig(0)
	if c.http.Timeout != 30*time.Second {
		t.Errorf("expected fallback timeout 30s, got %v", c.http.Timeout)
	}
}

func TestNewFromConfig_Seconds(t *testing.T) {
	c := NewFromConfig(2.5)
	if c.http.Timeout != 2500*time.Millisecond {
		t.Errorf("expected timeout 2.5s, got %v", c.http.Timeout)
	}
}

func TestGetJSONCtx_Success(t *testing.T) {
	type resp struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp{Name: "test", Value: 42})
	}))
	defer srv.Close()

	c := New()
	var out resp
	httpResp, err := c.GetJSONCtx(context.Background(), srv.URL, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if httpResp.StatusCode != 200 {
		t.Errorf("expected status 200, got %d", httpResp.StatusCode)
	}
	if out.Name != "test" || out.Value != 42 {
		t.Errorf("unexpected response: %+v", out)
	}
}

func TestGetJSONCtx_Non200CapturesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	c := New()
	var out map[string]string
	httpResp, err := c.GetJSONCtx(context.Background(), srv.URL, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if httpResp.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", httpResp.StatusCode)
	}
	if len(httpResp.Body) == 0 {
		t.Error("expected body to be captured even on non-200")
	}
}

func TestGetJSONCtx_InvalidJSONSetsJSONErr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New()
	var out map[string]string
	httpResp, err := c.GetJSONCtx(context.Background(), srv.URL, &out)
	if err != nil {
		t.Fatalf("unexpected network error: %v", err)
	}
	if httpResp.JSONErr == nil {
		t.Error("expected JSONErr to be set for malformed body")
	}
}

func TestPostJSONCtx_SendsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var body map[string]int
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		if body["page"] != 1 {
			t.Errorf("expected page 1 in body, got %d", body["page"])
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New()
	var out map[string]bool
	resp, err := c.PostJSONCtx(context.Background(), srv.URL, map[string]int{"page": 1}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.JSONErr != nil {
		t.Fatalf("unexpected JSON error: %v", resp.JSONErr)
	}
	if !out["ok"] {
		t.Error("expected ok response")
	}
}

func TestDoCtx_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New()
	_, err := c.DoCtx(ctx, http.MethodGet, srv.URL, nil)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestWithCookie_AddsCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("SessionToken")
		if err != nil {
			t.Errorf("expected SessionToken cookie: %v", err)
			return
		}
		if cookie.Value != "secret" {
			t.Errorf("cookie value = %q, want %q", cookie.Value, "secret")
		}
	}))
	defer srv.Close()

	c := New()
	_, err := c.GetJSONCtx(context.Background(), srv.URL, nil, WithCookie("SessionToken", "secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
