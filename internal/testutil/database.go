package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// SetupTestDB creates a connection to the test database
// This connects to the local osteoflow_test database
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connStr := "host=localhost port=5432 user=localadmin password=Stoplying! dbname=osteoflow_test sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return db
}

// SetupTestTransaction creates a test database connection and begins a transaction
// The transaction is automatically rolled back when the test ends
// This ensures test isolation without needing cleanup
func SetupTestTransaction(t *testing.T) (*sql.DB, *sql.Tx) {
	t.Helper()

	db := SetupTestDB(t)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		db.Close()
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	// Ensure transaction is rolled back when test ends
	t.Cleanup(func() {
		tx.Rollback()
		db.Close()
	})

	return db, tx
}

// CleanupTestDB cleans up test data from the database
// Use this if you're not using transactions
func CleanupTestDB(t *testing.T, db *sql.DB) {
	t.Helper()

	// Appointments and consultations reference patients, so they go first
	for _, table := range []string{
		"osteoflow.appointments",
		"osteoflow.consultations",
		"osteoflow.patients",
	} {
		if _, err := db.Exec("TRUNCATE TABLE " + table + " CASCADE"); err != nil {
			t.Logf("Warning: Failed to clean up %s: %v", table, err)
		}
	}
}

// CreateTestPatient inserts a patient owned by practitionerID and returns its ID
func CreateTestPatient(t *testing.T, db *sql.DB, practitionerID, fullName string) string {
	t.Helper()

	id := uuid.NewString()
	query := `
		INSERT INTO osteoflow.patients
		(id, practitioner_id, full_name, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := db.Exec(query, id, practitionerID, fullName); err != nil {
		t.Fatalf("Failed to create test patient: %v", err)
	}

	return id
}

// CreateTestAppointment inserts an appointment for the given patient and returns its ID
func CreateTestAppointment(t *testing.T, db *sql.DB, practitionerID, patientID, scheduledAt, status string) string {
	t.Helper()

	id := uuid.NewString()
	query := `
		INSERT INTO osteoflow.appointments
		(id, practitioner_id, patient_id, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := db.Exec(query, id, practitionerID, patientID, scheduledAt, status); err != nil {
		t.Fatalf("Failed to create test appointment: %v", err)
	}

	return id
}
