package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestParseToken_Valid(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "sess-1", claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Len(t, claims.ID, 36)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(tok, "another-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken("sess-1", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_NoSession(t *testing.T) {
	tok, err := GenerateToken("", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.jwt", testSecret)
	assert.Error(t, err)
}

func signed(t *testing.T, method jwt.SigningMethod, claims *Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func TestParseToken_ForeignIssuer(t *testing.T) {
	tok := signed(t, jwt.SigningMethodHS256, &Claims{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestParseToken_OtherAlgorithm(t *testing.T) {
	tok := signed(t, jwt.SigningMethodHS512, &Claims{
		SessionID: "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseToken_NoExpiry(t *testing.T) {
	tok := signed(t, jwt.SigningMethodHS256, &Claims{
		SessionID:        "sess-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer},
	})
	_, err := ParseToken(tok, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
}
