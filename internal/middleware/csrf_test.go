// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starwishes/Nav/internal/session"
)

func csrfHandler(secure bool) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

// csrfToken performs a GET and returns the issued token cookie.
func csrfToken(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

// authed returns a request that carries a session cookie and the token cookie.
func authed(method, path string, token *http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "some-session"})
	if token != nil {
		req.AddCookie(token)
	}
	return req
}

func TestNewCSRFSecureFlag(t *testing.T) {
	for _, secure := range []bool{true, false} {
		c := csrfToken(t, csrfHandler(secure))
		if c.Secure != secure {
			t.Errorf("cookie Secure: got %v, want %v", c.Secure, secure)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie SameSite: got %v, want StrictMode", c.SameSite)
		}
		if c.HttpOnly {
			t.Error("cookie must be readable by the dashboard")
		}
		if len(c.Value) != 2*csrfTokenLength {
			t.Errorf("token length: got %d, want %d", len(c.Value), 2*csrfTokenLength)
		}
	}
}

func TestCSRFUnsafeMethodsRequireToken(t *testing.T) {
	h := csrfHandler(false)
	token := csrfToken(t, h)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, authed(method, "/api/items/1", token))
			if rr.Code != http.StatusForbidden {
				t.Errorf("%s without header: got %d, want 403", method, rr.Code)
			}

			req := authed(method, "/api/items/1", token)
			req.Header.Set(CSRFHeaderName, "wrong")
			rr = httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != http.StatusForbidden {
				t.Errorf("%s with wrong header: got %d, want 403", method, rr.Code)
			}
		})
	}
}

func TestCSRFAcceptsValidToken(t *testing.T) {
	h := csrfHandler(false)
	token := csrfToken(t, h)

	req := authed(http.MethodPost, "/api/items", token)
	req.Header.Set(CSRFHeaderName, token.Value)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("POST with valid token: got %d, want 200", rr.Code)
	}
}

func TestCSRFSkipsRequestsWithoutSession(t *testing.T) {
	h := csrfHandler(false)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("POST without session: got %d, want 200", rr.Code)
	}
}

func TestCSRFSafeMethodsPassThrough(t *testing.T) {
	h := csrfHandler(false)
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authed(method, "/api/data", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rr.Code)
		}
	}
}

func TestCSRFReusesExistingCookie(t *testing.T) {
	h := csrfHandler(false)
	token := csrfToken(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req.AddCookie(token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing token should not be replaced")
	}
	if got := GetCSRFToken(req); got != token.Value {
		t.Errorf("GetCSRFToken: got %q, want %q", got, token.Value)
	}
}
