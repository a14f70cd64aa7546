package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// GenerateTestKeyPair generates an RSA key pair for testing JWT tokens
func GenerateTestKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return privateKey, &privateKey.PublicKey
}

// GenerateTestJWT creates a valid JWT token for E2E testing
// This generates a token with the specified user ID and roles
func GenerateTestJWT(t *testing.T, privateKey *rsa.PrivateKey, userID string, roles []string) string {
	t.Helper()

	// Create claims matching your auth system
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "https://test-keycloak.com/realms/test",
		"exp": time.Now().Add(1 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
		"realm_access": map[string]interface{}{
			"roles": interfaceSlice(roles),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key-id"

	tokenString, err := token.SignedString(privateKey)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	return tokenString
}

// GenerateAdminToken creates an ADMIN token for testing
func GenerateAdminToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "admin-123", []string{"ADMIN"})
}

// GeneratePractitionerToken creates a PRACTITIONER token for testing
func GeneratePractitionerToken(t *testing.T, privateKey *rsa.PrivateKey, practitionerID string) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, practitionerID, []string{"PRACTITIONER"})
}

// GenerateAssistantToken creates an ASSISTANT token for testing
func GenerateAssistantToken(t *testing.T, privateKey *rsa.PrivateKey) string {
	t.Helper()
	return GenerateTestJWT(t, privateKey, "assistant-123", []string{"ASSISTANT"})
}

// interfaceSlice converts []string to []interface{} for JWT claims
func interfaceSlice(strings []string) []interface{} {
	result := make([]interface{}, len(strings))
	for i, s := range strings {
		result[i] = s
	}
	return result
}
