package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rewarder/models"
	"rewarder/service"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// ErrUnauthenticated is returned for a missing, malformed or expired token
var ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")

const tokenIssuer = "rewarder"

// Claims identifies the authenticated user
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// UserLookup resolves the user named by a token
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// IssueToken mints an HS256 token for userID valid for ttl
func IssueToken(secret []byte, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies tokenString and returns the user ID it carries
func ParseToken(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrUnauthenticated
	}
	return claims.UserID, nil
}

// AuthMiddleware rejects requests without a valid bearer token for an existing user
func AuthMiddleware(secret []byte, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader || tokenString == "" {
				respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}

			userID, err := ParseToken(secret, tokenString)
			if err != nil {
				log.WithError(err).Debug("Rejected bearer token")
				respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if errors.Is(err, service.ErrUserNotFound) {
				respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
				return
			}
			if err != nil {
				log.WithError(err).WithField("user_id", userID).Error("Failed to resolve authenticated user")
				respondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by AuthMiddleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}
