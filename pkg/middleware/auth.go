package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/composables"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/httpapi"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// SignToken produces a bearer token "<user-id>.<expiry-unix>.<hmac>" where
// the hmac is SHA-256 over the first two parts keyed with the auth secret.
func SignToken(userID uuid.UUID, expiresAt time.Time, secret string) string {
	payload := userID.String() + "." + strconv.FormatInt(expiresAt.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return payload + "." + hex.EncodeToString(mac.Sum(nil))
}

// ParseToken verifies the signature and expiry and returns the user id.
func ParseToken(token, secret string, now time.Time) (uuid.UUID, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	expiryUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return uuid.Nil, ErrInvalidToken
	}
	if now.After(time.Unix(expiryUnix, 0)) {
		return uuid.Nil, ErrTokenExpired
	}
	return userID, nil
}

// SubjectResolver loads the authenticated subject for a verified user id.
type SubjectResolver func(ctx context.Context, userID uuid.UUID) (composables.AuthSubject, error)

// Authorize verifies the Authorization bearer token and places the
// resolved user on the context. Requests without a valid token get 401.
func Authorize(secret string, resolve SubjectResolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}
			userID, err := ParseToken(token, secret, time.Now())
			if err != nil {
				httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token", nil)
				return
			}
			subject, err := resolve(r.Context(), userID)
			if err != nil {
				httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithUser(r.Context(), subject)))
		})
	}
}

// RequireAdmin gates a subrouter to admin users. It assumes Authorize
// already ran.
func RequireAdmin() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := composables.UseUser(r.Context())
			if err != nil {
				httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user", nil)
				return
			}
			if !user.IsAdmin() {
				httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin role required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
