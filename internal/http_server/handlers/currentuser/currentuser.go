package currentuser

import (
	"net/http"

	resp "account_service/internal/lib/api/response"
	"account_service/internal/lib/api/userview"
	"account_service/internal/http_server/middleware/authn"

	"github.com/go-chi/render"
)

// New serves GET /api/user: the bare user object the client session
// controller caches on every guard pass.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthenticated."))

			return
		}

		render.JSON(w, r, userview.From(user))
	}
}
