package middleware

import (
	"net/http"
	"strings"
)

// Keys holds the accepted API keys per access class. An empty class disables
// enforcement for that class (handy for local dev).
type Keys struct {
	Public []string
	Admin  []string
}

func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// RequireAny allows requests that present either a public or admin key.
// If no keys are configured at all, every request passes.
func RequireAny(keys Keys) func(http.Handler) http.Handler {
	public := keySet(keys.Public)
	admin := keySet(keys.Admin)
	enabled := len(public) > 0 || len(admin) > 0

	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			if key != "" {
				if _, ok := public[key]; ok {
					next.ServeHTTP(w, r)
					return
				}
				if _, ok := admin[key]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAdmin only permits requests that present an admin key.
// If no admin keys are configured, every request passes.
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	admin := keySet(keys.Admin)

	return func(next http.Handler) http.Handler {
		if len(admin) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key := presentedKey(r); key != "" {
				if _, ok := admin[key]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "forbidden")
		})
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
