package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

type fakeRecorder struct {
	visits []models.Visit
	err    error
}

func (f *fakeRecorder) RecordVisit(ctx context.Context, v models.Visit, at time.Time) error {
	f.visits = append(f.visits, v)
	return f.err
}

func TestRecordVisits(t *testing.T) {
	rec := &fakeRecorder{}
	status := http.StatusOK
	h := RecordVisits(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36")
	req.Header.Set("Referer", "https://example.com/")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if len(rec.visits) != 1 {
		t.Fatalf("got %d visits, want 1", len(rec.visits))
	}
	want := models.Visit{IP: "203.0.113.9", OS: "Windows", Browser: "Chrome", Referrer: "https://example.com/"}
	if rec.visits[0] != want {
		t.Errorf("visit: got %+v, want %+v", rec.visits[0], want)
	}

	status = http.StatusInternalServerError
	h.ServeHTTP(httptest.NewRecorder(), req)
	if len(rec.visits) != 1 {
		t.Error("failed responses should not count as visits")
	}
}

func TestRecordVisitsErrorDoesNotFailRequest(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	h := RecordVisits(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/data", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Errorf("response: got %d %q", rr.Code, rr.Body.String())
	}
}

func TestDetectUserAgent(t *testing.T) {
	tests := []struct {
		ua, os, browser string
	}{
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_2) AppleWebKit/605.1.15 Version/17.2 Safari/605.1.15", "macOS", "Safari"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 CriOS/120.0 Mobile Safari/604.1", "iOS", "Chrome"},
		{"Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36", "Android", "Chrome"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Linux", "Firefox"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0", "Windows", "Edge"},
		{"curl/8.4.0", "Other", "curl"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := DetectOS(tt.ua); got != tt.os {
			t.Errorf("DetectOS(%q): got %q, want %q", tt.ua, got, tt.os)
		}
		if got := DetectBrowser(tt.ua); got != tt.browser {
			t.Errorf("DetectBrowser(%q): got %q, want %q", tt.ua, got, tt.browser)
		}
	}
}
