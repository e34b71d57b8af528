package main

import (
	"context"
	"errors"
	"log"
	"net/http"
)

func (app *application) requireAuthenticatedUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, errors.New("authentication required"), http.StatusUnauthorized)
			return
		}
		userID, err := app.parseSessionToken(cookie.Value)
		if err != nil {
			log.Println(err)
			writeError(w, errors.New("invalid token"), http.StatusUnauthorized)
			return
		}
		u, err := app.storage.getUserByID(userID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if u == nil {
			writeError(w, errors.New("user no longer exists"), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PATCH, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}

type userContext string

const userContextKey userContext = "userContextKey"

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}
