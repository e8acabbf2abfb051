package server

import (
	"net/http"
)

// originValidationMiddleware rejects browser requests whose Origin is not allowed;
// requests without Origin pass.
func originValidationMiddleware(allowed []string) Middleware {
	cors := &Cors{AllowOrigins: allowed}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && !cors.allowsOrigin(origin) {
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
