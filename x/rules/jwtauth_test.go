package rules

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

func signedToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	assert.NoError(t, err)
	return token
}

func TestJwtAuthAcceptsValidToken(t *testing.T) {
	rule, err := NewJwtAuthRule(map[string]interface{}{"signature_key": "sekrit"})
	assert.NoError(t, err)

	token := signedToken(t, "sekrit", jwt.MapClaims{"sub": "alice"})
	rc := requestWithHeaders(map[string]string{"Authorization": "Bearer " + token})

	ok, err := rule.Match(context.Background(), rc)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", rc.LoggedUser().ID)
}

func TestJwtAuthRejectsWrongSignature(t *testing.T) {
	rule, _ := NewJwtAuthRule(map[string]interface{}{"signature_key": "sekrit"})

	token := signedToken(t, "other-key", jwt.MapClaims{"sub": "alice"})
	rc := requestWithHeaders(map[string]string{"Authorization": "Bearer " + token})

	ok, err := rule.Match(context.Background(), rc)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestJwtAuthCustomClaimAndHeader(t *testing.T) {
	rule, err := NewJwtAuthRule(map[string]interface{}{
		"signature_key": "sekrit",
		"user_claim":    "preferred_username",
		"header_name":   "x-jwt",
	})
	assert.NoError(t, err)

	token := signedToken(t, "sekrit", jwt.MapClaims{"preferred_username": "bob"})
	rc := requestWithHeaders(map[string]string{"X-Jwt": token})

	ok, err := rule.Match(context.Background(), rc)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", rc.LoggedUser().ID)
}

func TestJwtAuthRejectsTokenMissingClaim(t *testing.T) {
	rule, _ := NewJwtAuthRule(map[string]interface{}{"signature_key": "sekrit"})

	token := signedToken(t, "sekrit", jwt.MapClaims{"aud": "nobody"})
	rc := requestWithHeaders(map[string]string{"Authorization": "Bearer " + token})

	ok, _ := rule.Match(context.Background(), rc)
	assert.False(t, ok)
}

func TestJwtAuthRequiresSignatureKey(t *testing.T) {
	_, err := NewJwtAuthRule(map[string]interface{}{"user_claim": "sub"})
	assert.Error(t, err)
}
