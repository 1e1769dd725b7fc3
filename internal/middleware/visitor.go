// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// VisitorCookieName identifies an anonymous visitor across requests.
// The value goes into post view rows as the session identifier; it is
// not tied to authentication.
const VisitorCookieName = "iw_visitor"

// Visitor assigns each anonymous visitor a random identifier cookie on their
// first request. Existing cookies pass through unchanged.
func Visitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(VisitorCookieName); err != nil {
			id := uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   60 * 60 * 24 * 365,
			})
			// Make the fresh ID visible to this request's handlers too.
			r.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: id})
		}
		next.ServeHTTP(w, r)
	})
}

// VisitorID returns the visitor identifier from the request, or an empty
// string if the cookie is absent.
func VisitorID(r *http.Request) string {
	cookie, err := r.Cookie(VisitorCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
