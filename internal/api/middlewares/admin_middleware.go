package middleware

import (
	"net/http"

	"github.com/spediak/spediak-backend/internal/core"
)

// AdminOnly rejects requests whose authenticated user lacks the admin flag.
// Must run after JWTAuth.
func AdminOnly(db core.DbClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value("user_id").(string)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			user, err := db.GetUserByID(r.Context(), userID)
			if err != nil || user == nil || !user.IsAdmin {
				http.Error(w, "admin access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
