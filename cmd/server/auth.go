package main

import (
	"net/http"
	"time"
)

const sessionCookie = "newsnotes_session"

type SessionHandlerFunc func(http.ResponseWriter, *http.Request, *Session)

// withSession looks up the caller's session from its cookie, starting a new
// one when the cookie is missing or stale.
func withSession(store *SessionStore, maxAge time.Duration) func(SessionHandlerFunc) http.HandlerFunc {
	return func(next SessionHandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(sessionCookie); err == nil {
				id = c.Value
			}
			session := store.Get(id)
			if session.Id != id {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    session.Id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next(w, r, session)
		}
	}
}
