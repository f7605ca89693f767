package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starwishes/Nav/internal/models"
)

// VisitRecorder stores one dashboard visit.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, v models.Visit, at time.Time) error
}

// RecordVisits counts every successful request through next as a visit.
// Recording failures are logged and never affect the response.
func RecordVisits(rec VisitRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)
			if wrapped.statusCode != http.StatusOK {
				return
			}

			ua := r.UserAgent()
			v := models.Visit{
				IP:       ClientIP(r),
				OS:       DetectOS(ua),
				Browser:  DetectBrowser(ua),
				Referrer: r.Referer(),
			}
			if err := rec.RecordVisit(context.WithoutCancel(r.Context()), v, time.Now()); err != nil {
				slog.Warn("failed to record visit", "error", err)
			}
		})
	}
}

// uaRule maps a user agent substring to a family name. Order matters:
// the first match wins.
type uaRule struct {
	token string
	name  string
}

var osRules = []uaRule{
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"android", "Android"},
	{"mac os x", "macOS"},
	{"macintosh", "macOS"},
	{"cros", "ChromeOS"},
	{"linux", "Linux"},
}

// Chromium derivatives carry "chrome" and "safari" too, so they go first.
var browserRules = []uaRule{
	{"edg/", "Edge"},
	{"opr/", "Opera"},
	{"samsungbrowser", "Samsung Internet"},
	{"firefox", "Firefox"},
	{"fxios", "Firefox"},
	{"crios", "Chrome"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"curl", "curl"},
}

// DetectOS returns the operating system family of a user agent, "Other"
// when unknown and "" for an empty user agent.
func DetectOS(ua string) string {
	return matchRule(osRules, ua)
}

// DetectBrowser returns the browser family of a user agent, with the same
// fallbacks as DetectOS.
func DetectBrowser(ua string) string {
	return matchRule(browserRules, ua)
}

func matchRule(rules []uaRule, ua string) string {
	ua = strings.ToLower(ua)
	if ua == "" {
		return ""
	}
	for _, rule := range rules {
		if strings.Contains(ua, rule.token) {
			return rule.name
		}
	}
	return "Other"
}
