//go:build integration

package appointment

import (
	"context"
	"testing"

	"github.com/osteoflow/clinic-service/internal/testutil"
)

// TestRepositoryCreateAppointment_Integration tests inserting and reading back
func TestRepositoryCreateAppointment_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	repo := NewRepository(db)

	created, err := repo.CreateAppointment(context.Background(), Appointment{
		PractitionerID: "prac-1",
		PatientID:      patientID,
		ScheduledAt:    "2026-03-05T09:30:00Z",
		Notes:          "intake",
		CreatedBy:      "prac-1",
	})
	if err != nil {
		t.Fatalf("CreateAppointment failed: %v", err)
	}

	if created.ID == "" {
		t.Error("Expected appointment ID to be set")
	}
	if created.Status != StatusScheduled {
		t.Errorf("Expected default status scheduled, got %s", created.Status)
	}

	got, err := repo.GetAppointment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.PatientID != patientID || got.ScheduledAt != "2026-03-05T09:30:00Z" {
		t.Errorf("Unexpected appointment: %+v", got)
	}
}

// TestRepositoryGetAppointment_NotFound_Integration tests the missing-row error
func TestRepositoryGetAppointment_NotFound_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	repo := NewRepository(db)

	_, err := repo.GetAppointment(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestRepositoryUpdateAppointment_Integration tests partial updates
func TestRepositoryUpdateAppointment_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	id := testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-05T09:30:00Z", StatusScheduled)
	repo := NewRepository(db)

	status := StatusCancelled
	if err := repo.UpdateAppointment(context.Background(), id, UpdateAppointmentRequest{Status: &status}); err != nil {
		t.Fatalf("UpdateAppointment failed: %v", err)
	}

	got, err := repo.GetAppointment(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("Expected status cancelled, got %s", got.Status)
	}
	if got.ScheduledAt != "2026-03-05T09:30:00Z" {
		t.Errorf("Expected scheduled_at untouched, got %s", got.ScheduledAt)
	}
	if got.UpdatedAt == nil {
		t.Error("Expected updated_at to be set")
	}
}

// TestRepositoryListByPatient_Integration tests the recompute scan query
func TestRepositoryListByPatient_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	otherPatient := testutil.CreateTestPatient(t, db, "prac-1", "Anna de Vries")

	testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-05T09:30:00Z", StatusScheduled)
	testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-10T09:30:00Z", StatusCancelled)
	testutil.CreateTestAppointment(t, db, "prac-1", otherPatient, "2026-03-07T09:30:00Z", StatusScheduled)
	testutil.CreateTestAppointment(t, db, "prac-2", patientID, "2026-03-08T09:30:00Z", StatusScheduled)

	repo := NewRepository(db)

	appts, err := repo.ListByPatient(context.Background(), "prac-1", patientID)
	if err != nil {
		t.Fatalf("ListByPatient failed: %v", err)
	}

	// Cancelled rows are included; the sync scan filters by status itself.
	// Another practitioner's rows are not.
	if len(appts) != 2 {
		t.Fatalf("Expected 2 appointments, got %d", len(appts))
	}
	for _, a := range appts {
		if a.PractitionerID != "prac-1" || a.PatientID != patientID {
			t.Errorf("Unexpected row in scan: %+v", a)
		}
	}
}

// TestRepositorySetCompleted_Integration tests the conversion link
func TestRepositorySetCompleted_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	id := testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-05T09:30:00Z", StatusScheduled)
	repo := NewRepository(db)

	if err := repo.SetCompleted(context.Background(), id, "cons-1"); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}

	got, err := repo.GetAppointment(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAppointment failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.ConsultationID == nil || *got.ConsultationID != "cons-1" {
		t.Errorf("Expected consultation link, got %v", got.ConsultationID)
	}
}

// TestRepositoryListByOwnerWithPagination_Integration tests paging and totals
func TestRepositoryListByOwnerWithPagination_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	for _, at := range []string{
		"2026-03-01T09:00:00Z",
		"2026-03-02T09:00:00Z",
		"2026-03-03T09:00:00Z",
	} {
		testutil.CreateTestAppointment(t, db, "prac-1", patientID, at, StatusScheduled)
	}

	repo := NewRepository(db)

	page, total, err := repo.ListByOwnerWithPagination(context.Background(), "prac-1", 2, 0)
	if err != nil {
		t.Fatalf("ListByOwnerWithPagination failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}
	if len(page) != 2 {
		t.Errorf("Expected page of 2, got %d", len(page))
	}

	rest, _, err := repo.ListByOwnerWithPagination(context.Background(), "prac-1", 2, 2)
	if err != nil {
		t.Fatalf("ListByOwnerWithPagination failed: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("Expected 1 remaining row, got %d", len(rest))
	}
}

// TestRepositoryPatientHasAppointments_Integration tests the existence probe
func TestRepositoryPatientHasAppointments_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	repo := NewRepository(db)

	exists, err := repo.PatientHasAppointments(context.Background(), "prac-1", patientID)
	if err != nil {
		t.Fatalf("PatientHasAppointments failed: %v", err)
	}
	if exists {
		t.Error("Expected no appointments yet")
	}

	testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-05T09:30:00Z", StatusScheduled)

	exists, err = repo.PatientHasAppointments(context.Background(), "prac-1", patientID)
	if err != nil {
		t.Fatalf("PatientHasAppointments failed: %v", err)
	}
	if !exists {
		t.Error("Expected appointments to exist")
	}
}

// TestRepositoryDeleteAppointment_Integration tests removal
func TestRepositoryDeleteAppointment_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	patientID := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	id := testutil.CreateTestAppointment(t, db, "prac-1", patientID, "2026-03-05T09:30:00Z", StatusScheduled)
	repo := NewRepository(db)

	if err := repo.DeleteAppointment(context.Background(), id); err != nil {
		t.Fatalf("DeleteAppointment failed: %v", err)
	}

	if _, err := repo.GetAppointment(context.Background(), id); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
