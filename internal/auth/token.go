// Package auth turns bearer tokens into an AuthenticatedIdentity.
// Tokens are HS256 JWTs carrying the account id in the "user_id" claim.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"marketzone/backend/internal/apperr"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuer     = "marketzone-service"
	defaultTTL = 72 * time.Hour
)

// AuthenticatedIdentity is the only form in which a caller's id reaches
// the messaging code.
type AuthenticatedIdentity struct {
	UserID string
}

// Verifier validates a raw token.
type Verifier interface {
	Verify(token string) (AuthenticatedIdentity, error)
}

// TokenService issues and verifies tokens with one shared secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: defaultTTL}
}

// WithTTL returns a copy issuing tokens valid for ttl.
func (s *TokenService) WithTTL(ttl time.Duration) *TokenService {
	return &TokenService{secret: s.secret, ttl: ttl}
}

// Issue генерує JWT для користувача.
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.ttl).Unix(),
		"iss":     issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns apperr Unauthenticated for any malformed, expired or
// foreign token.
func (s *TokenService) Verify(raw string) (AuthenticatedIdentity, error) {
	if raw == "" {
		return AuthenticatedIdentity{}, apperr.Unauthenticated("No token provided")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return AuthenticatedIdentity{}, apperr.Wrap(apperr.KindUnauthenticated, "Invalid or expired token", err)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return AuthenticatedIdentity{}, apperr.Unauthenticated("Invalid token payload")
	}
	return AuthenticatedIdentity{UserID: userID}, nil
}

// TokenFromRequest reads "Authorization: Bearer <t>", falling back to the
// token query parameter browsers use for websocket upgrades.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
