package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snetlabs/social-network/config"
	"github.com/snetlabs/social-network/internal/api"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(config.JWTConfig{
		SecretKey:      "test-access-secret",
		AccessTokenTTL: 30 * time.Minute,
		Issuer:         "test-issuer",
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := NewTokenIssuer(config.JWTConfig{SecretKey: ""})
	assert.Error(t, err)
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue("testuser")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", subject)
}

func TestTokenIssuer_Verify_Garbage(t *testing.T) {
	issuer := newTestIssuer(t)

	_, err := issuer.Verify("invalid.token.here")
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}

func TestTokenIssuer_Verify_TamperedSignature(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.Issue("testuser")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip one byte of the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}

func TestTokenIssuer_Verify_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := NewTokenIssuer(config.JWTConfig{
		SecretKey:      "a-different-secret",
		AccessTokenTTL: 30 * time.Minute,
	})
	require.NoError(t, err)

	token, err := issuer.Issue("testuser")
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}

func TestTokenIssuer_Verify_Expired(t *testing.T) {
	issuer := newTestIssuer(t)

	issuedAt := time.Now()
	issuer.now = func() time.Time { return issuedAt }

	token, err := issuer.IssueWithTTL("testuser", time.Minute)
	require.NoError(t, err)

	// Strictly before expiry: still valid.
	issuer.now = func() time.Time { return issuedAt.Add(59 * time.Second) }
	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", subject)

	// Exactly at expiry: already expired, validity is [iat, exp).
	issuer.now = func() time.Time { return issuedAt.Add(time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, api.ErrExpiredToken)

	// Past expiry.
	issuer.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, api.ErrExpiredToken)
}

func TestTokenIssuer_Verify_UnexpectedSigningMethod(t *testing.T) {
	issuer := newTestIssuer(t)

	// Token signed with "none" must be rejected even though it decodes.
	claims := jwt.RegisteredClaims{
		Subject:   "testuser",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}

func TestTokenIssuer_Verify_MissingExpiry(t *testing.T) {
	issuer := newTestIssuer(t)

	claims := jwt.RegisteredClaims{Subject: "testuser"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-access-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, api.ErrInvalidToken)
}
