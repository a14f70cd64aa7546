//go:build integration

package e2e

import (
	"crypto/rsa"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/osteoflow/clinic-service/internal/auth"
	httpserver "github.com/osteoflow/clinic-service/internal/http"
	"github.com/osteoflow/clinic-service/internal/testutil"
)

// TestServer represents a complete E2E test environment
type TestServer struct {
	Server       *httptest.Server
	DB           *sql.DB
	MockRecorder *testutil.MockRecorder
	Verifier     *auth.Verifier
	PrivateKey   *rsa.PrivateKey
}

// SetupE2ETest creates a complete test environment for E2E testing
// This includes:
// - Real PostgreSQL database
// - Real HTTP server with all routes
// - In-memory audit recorder (no real broker calls)
// - Test JWT verifier and signing key
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	// Setup real database
	db := testutil.SetupTestDB(t)

	// In-memory audit recorder
	mockRecorder := testutil.NewMockRecorder()

	// Load permissions from file
	perms, err := auth.LoadPermissions("../../permissions.yml")
	if err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}

	// Create test verifier and get private key for signing tokens
	verifier, privateKey := testutil.CreateTestVerifier(t)

	// Setup router with real dependencies and the in-memory recorder
	router := httpserver.SetupRouter(db, verifier, perms, mockRecorder, nil)

	// Create test HTTP server
	server := httptest.NewServer(router)

	return &TestServer{
		Server:       server,
		DB:           db,
		MockRecorder: mockRecorder,
		Verifier:     verifier,
		PrivateKey:   privateKey,
	}
}

// Cleanup cleans up all test resources
func (ts *TestServer) Cleanup(t *testing.T) {
	t.Helper()

	// Close HTTP server
	ts.Server.Close()

	// Clean up database
	testutil.CleanupTestDB(t, ts.DB)
	ts.DB.Close()
}

// GenerateAdminToken generates an ADMIN token for this test server
func (ts *TestServer) GenerateAdminToken(t *testing.T) string {
	t.Helper()
	return testutil.GenerateAdminToken(t, ts.PrivateKey)
}

// GeneratePractitionerToken generates a PRACTITIONER token for this test server
func (ts *TestServer) GeneratePractitionerToken(t *testing.T, practitionerID string) string {
	t.Helper()
	return testutil.GeneratePractitionerToken(t, ts.PrivateKey, practitionerID)
}

// NewClient creates a new HTTP test client for this server with the given token
func (ts *TestServer) NewClient(token string) *testutil.HTTPTestClient {
	return testutil.NewHTTPTestClient(ts.Server.URL, token)
}
