// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// csrfCookie performs a GET through h and returns the issued CSRF cookie.
func csrfCookie(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not issued")
	return nil
}

func csrfOKHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCSRFCookieAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		c := csrfCookie(t, NewCSRF(secure)(csrfOKHandler()))
		if c.Secure != secure {
			t.Errorf("secure=%v: cookie Secure = %v", secure, c.Secure)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("SameSite = %v, want Strict", c.SameSite)
		}
		if c.HttpOnly {
			t.Error("CSRF cookie must be readable by scripts")
		}
		if len(c.Value) != 2*csrfTokenLength {
			t.Errorf("token length = %d, want %d", len(c.Value), 2*csrfTokenLength)
		}
	}
}

func TestCSRFReusesExistingCookie(t *testing.T) {
	h := NewCSRF(false)(csrfOKHandler())
	c := csrfCookie(t, h)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(c)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(rr.Result().Cookies()) != 0 {
		t.Error("a request that already carries a token should not get a new cookie")
	}
}

func TestCSRFValidation(t *testing.T) {
	h := NewCSRF(false)(csrfOKHandler())
	c := csrfCookie(t, h)

	form := func(token string) *http.Request {
		body := url.Values{CSRFFormField: {token}, "email": {"a@b.co"}}.Encode()
		r := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return r
	}
	header := func(method, token string) *http.Request {
		r := httptest.NewRequest(method, "/admin/logout", nil)
		if token != "" {
			r.Header.Set(CSRFHeaderName, token)
		}
		return r
	}

	tests := []struct {
		name       string
		req        *http.Request
		withCookie bool
		want       int
	}{
		{"GET needs no token", header(http.MethodGet, ""), true, http.StatusNoContent},
		{"HEAD needs no token", header(http.MethodHead, ""), true, http.StatusNoContent},
		{"OPTIONS needs no token", header(http.MethodOptions, ""), true, http.StatusNoContent},
		{"POST header token", header(http.MethodPost, c.Value), true, http.StatusNoContent},
		{"DELETE header token", header(http.MethodDelete, c.Value), true, http.StatusNoContent},
		{"POST form token", form(c.Value), true, http.StatusNoContent},
		{"POST without token", header(http.MethodPost, ""), true, http.StatusForbidden},
		{"PUT without token", header(http.MethodPut, ""), true, http.StatusForbidden},
		{"PATCH without token", header(http.MethodPatch, ""), true, http.StatusForbidden},
		{"POST wrong header token", header(http.MethodPost, "forged"), true, http.StatusForbidden},
		{"POST wrong form token", form("forged"), true, http.StatusForbidden},
		{"POST token without cookie", header(http.MethodPost, c.Value), false, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.withCookie {
				tt.req.AddCookie(c)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, tt.req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestCSRFTokenFromCtx(t *testing.T) {
	var seen string
	h := NewCSRF(false)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/login", nil))

	issued := rr.Result().Cookies()[0].Value
	if seen == "" || seen != issued {
		t.Errorf("token in context = %q, want issued cookie %q", seen, issued)
	}

	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("token outside middleware = %q, want empty", got)
	}
}
