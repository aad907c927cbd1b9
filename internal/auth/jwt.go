package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carpool/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by bearer tokens. Tokens are minted by the identity service;
// this package only verifies them.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier turns a bearer credential into a Principal.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

func NewVerifier(secret string) Verifier {
	return Verifier{secret: []byte(secret), leeway: 30 * time.Second}
}

// Resolve validates an HS256 token and returns its principal. Tokens without
// a positive user id or a known role are rejected.
func (v Verifier) Resolve(token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, ErrInvalidToken
	}

	role := domain.ParseRole(claims.Role)
	if claims.UserID <= 0 || role == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing user_id or role", ErrInvalidToken)
	}

	return domain.Principal{
		UserID: claims.UserID,
		Email:  strings.TrimSpace(claims.Email),
		Role:   role,
	}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
