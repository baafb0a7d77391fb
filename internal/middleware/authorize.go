package middleware

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nattawatz/blog-api/internal/http/respond"
	"github.com/nattawatz/blog-api/internal/models"
	"github.com/nattawatz/blog-api/internal/storage"
)

// Authorize admits the request only when the authenticated user's role
// is in the allowed set. It must be chained after Authenticate; a
// missing bound user id is a middleware-ordering bug, not a client error.
func Authorize(users storage.UserStore, log *logrus.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Error("authorize middleware ran without an authenticated identity")
				respond.ServerError(w, nil, false)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					respond.Error(w, http.StatusForbidden, respond.KindAuthorization, "Access denied, insufficient permissions")
					return
				}
				log.WithError(err).Error("error while authorizing user")
				respond.ServerError(w, err, false)
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				respond.Error(w, http.StatusForbidden, respond.KindAuthorization, "Access denied, insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
