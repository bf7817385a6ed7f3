package token

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	tok, err := GenerateJWT("buyer-1", string(RoleUser), "chat_service")
	require.NoError(t, err)

	claims, err := ParseJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, "buyer-1", claims.MemberID)
	assert.Equal(t, "user", claims.Role)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{MemberID: "x"}).SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = ParseJWT(tok)
	assert.Error(t, err)
}

func TestParseJWT_MissingMemberID(t *testing.T) {
	tok, err := GenerateJWT("", string(RoleUser), "chat_service")
	require.NoError(t, err)

	_, err = ParseJWT(tok)
	assert.Error(t, err)
}

func TestStripBearer(t *testing.T) {
	assert.Equal(t, "abc", StripBearer("Bearer abc"))
	assert.Equal(t, "abc", StripBearer("bearer abc"))
	assert.Equal(t, "", StripBearer("Basic abc"))
	assert.Equal(t, "", StripBearer(""))
}
