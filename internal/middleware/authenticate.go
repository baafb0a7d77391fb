package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nattawatz/blog-api/internal/auth"
	"github.com/nattawatz/blog-api/internal/http/respond"
)

// Authenticate verifies the Bearer token on protected routes and binds
// the resolved user id to the request context. It never touches the
// database; verification is a pure function of the Authorization header.
func Authenticate(codec *auth.Codec, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Access denied, no token provided")
				return
			}

			claims, err := codec.VerifyAccess(token)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Access token expired, request a new one with refresh token")
				case errors.Is(err, auth.ErrTokenInvalid):
					respond.Error(w, http.StatusUnauthorized, respond.KindAuthentication, "Access token invalid")
				default:
					log.WithError(err).Error("error during authentication")
					respond.ServerError(w, err, false)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
