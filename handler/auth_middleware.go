package handler

import (
	"context"
	"net/http"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/service"
	"strings"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext returns the verified claims the guard stored for this
// request. Handlers behind RequireAuth never re-parse tokens.
func ClaimsFromContext(ctx context.Context) (*model.AppClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*model.AppClaims)
	return claims, ok
}

// RequireAuth guards a handler with bearer-token verification and an
// optional role check. With no roles given, any authenticated caller is
// admitted; otherwise the verified role must be a member of the set.
// Missing or invalid tokens fail with 401, an insufficient role with 403.
func RequireAuth(tokens service.ITokenService, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				common.NewAuthError("Authorization header is required", nil).Send(w)
				return
			}

			claims, err := tokens.Verify(tokenString, service.AccessTokenKind)
			if err != nil {
				common.NewAuthError("Invalid or expired token", err).Send(w)
				return
			}

			if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
				common.NewForbiddenError("Access denied. Insufficient role.").Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roleAllowed(role model.Role, allowed []model.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
