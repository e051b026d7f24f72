package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snetlabs/social-network/config"
	"github.com/snetlabs/social-network/internal/api"
)

// TokenIssuer signs and verifies HS256 bearer tokens whose subject is the
// canonical username of the authenticated user.
type TokenIssuer struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
	now       func() time.Time
}

// NewTokenIssuer builds a TokenIssuer from the JWT configuration. An empty
// secret is refused; production startup treats that as fatal.
func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key must not be empty")
	}
	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenIssuer{
		secretKey: []byte(cfg.SecretKey),
		ttl:       ttl,
		issuer:    cfg.Issuer,
		now:       time.Now,
	}, nil
}

// Issue signs a token for subject with the configured TTL.
func (t *TokenIssuer) Issue(subject string) (string, error) {
	return t.IssueWithTTL(subject, t.ttl)
}

// IssueWithTTL signs a token whose expiry is now + ttl.
func (t *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates the signature and expiry of tokenString and returns the
// embedded subject. A token whose expiry equals the current instant is
// already expired: validity is the half-open interval [iat, exp).
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", api.ErrExpiredToken
		}
		return "", api.ErrInvalidToken
	}
	if !token.Valid {
		return "", api.ErrInvalidToken
	}

	if claims.ExpiresAt == nil {
		return "", api.ErrInvalidToken
	}
	if !t.now().Before(claims.ExpiresAt.Time) {
		return "", api.ErrExpiredToken
	}

	return claims.Subject, nil
}
