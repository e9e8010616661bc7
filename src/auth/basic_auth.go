package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// BasicAuth protects the status API with a single bcrypt-hashed account.
func BasicAuth(cfg Config) func(http.Handler) http.Handler {
	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, status API will reject every request")
	}

	challenge := fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, cfg.Realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !CheckCredentials(cfg, user, pass) {
				logger.WithFields(logger.Fields{
					"remote": r.RemoteAddr,
					"path":   r.URL.Path,
				}).Warn("unauthorized status API request")
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CheckCredentials compares user and password against the configured account.
func CheckCredentials(cfg Config, user, pass string) bool {
	if cfg.AdminPasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.AdminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(pass)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pass string) (string, error) {
	if pass == "" {
		return "", fmt.Errorf("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
