package middleware

import (
	"net/http"
	"os"
	"strings"

	"chopline-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Auth/session management is an external collaborator: this middleware only
// parses the bearer token and places the claimed actor id and role on the
// context. The core trusts that identity as given.
var jwtKey = []byte(os.Getenv("SECRET_KEY"))

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})

		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			actorID, _ := claims["actor_id"].(string)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			if actorID != "" {
				ctx := utils.SetActorContext(r.Context(), actorID, email, role)
				r = r.WithContext(ctx)
			}
		}

		next.ServeHTTP(w, r)
	})
}
