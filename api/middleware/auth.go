package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	pkgauth "github.com/syed-hamad/Retail-POS-sub001/pkg/auth"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	pkgerrors "github.com/syed-hamad/Retail-POS-sub001/pkg/errors"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

// Auth validates a bearer token, checks the server-side session, and seeds the
// request context with the staff session. The stored session is authoritative:
// a revoked token fails here even before its JWT expiry.
func Auth(cfg config.JWTConfig, sessions session.Checker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			sess := session.Session{UserID: claims.UserID, SellerID: claims.SellerID, Role: claims.Role}
			if sessions != nil {
				stored, err := sessions.Lookup(r.Context(), claims.ID)
				if err != nil {
					if errors.Is(err, session.ErrSessionNotFound) {
						responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
						return
					}
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				sess = stored
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    sess.UserID,
					"seller_id":  sess.SellerID,
					"actor_role": string(sess.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
