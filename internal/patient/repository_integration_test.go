//go:build integration

package patient

import (
	"context"
	"testing"

	"github.com/osteoflow/clinic-service/internal/testutil"
)

// TestRepositoryGetPatient_Integration tests scoped retrieval
func TestRepositoryGetPatient_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	id := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	repo := NewRepository(db)

	p, err := repo.GetPatient(context.Background(), "prac-1", id)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if p.FullName != "Erik Jansen" {
		t.Errorf("Expected full name 'Erik Jansen', got '%s'", p.FullName)
	}
	if p.NextAppointment != nil {
		t.Errorf("Expected no next appointment on a fresh patient, got %v", *p.NextAppointment)
	}

	// Another practitioner cannot see the record
	if _, err := repo.GetPatient(context.Background(), "prac-2", id); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound across practitioners, got %v", err)
	}
}

// TestRepositoryUpdateNextAppointment_Integration tests pointer writes
func TestRepositoryUpdateNextAppointment_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	id := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	repo := NewRepository(db)

	value := "2026-03-05T09:30:00"
	if err := repo.UpdateNextAppointment(context.Background(), "prac-1", id, &value); err != nil {
		t.Fatalf("UpdateNextAppointment failed: %v", err)
	}

	p, err := repo.GetPatient(context.Background(), "prac-1", id)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if p.NextAppointment == nil || *p.NextAppointment != value {
		t.Errorf("Expected pointer '%s', got %v", value, p.NextAppointment)
	}
	if p.UpdatedAt == nil {
		t.Error("Expected updated_at to be set")
	}

	if err := repo.UpdateNextAppointment(context.Background(), "prac-1", id, nil); err != nil {
		t.Fatalf("UpdateNextAppointment clear failed: %v", err)
	}

	p, err = repo.GetPatient(context.Background(), "prac-1", id)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if p.NextAppointment != nil {
		t.Errorf("Expected cleared pointer, got %v", *p.NextAppointment)
	}

	// Writing to a missing patient affects zero rows and is not an error
	if err := repo.UpdateNextAppointment(context.Background(), "prac-1", "00000000-0000-0000-0000-000000000000", &value); err != nil {
		t.Errorf("Expected missing patient tolerated, got %v", err)
	}
}

// TestRepositoryListPatientIDs_Integration tests partition enumeration
func TestRepositoryListPatientIDs_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	a := testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	b := testutil.CreateTestPatient(t, db, "prac-1", "Anna de Vries")
	testutil.CreateTestPatient(t, db, "prac-2", "Pieter Bakker")

	repo := NewRepository(db)

	ids, err := repo.ListPatientIDs(context.Background(), "prac-1")
	if err != nil {
		t.Fatalf("ListPatientIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 patients, got %d", len(ids))
	}

	found := map[string]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[a] || !found[b] {
		t.Errorf("Expected ids %s and %s, got %v", a, b, ids)
	}
}

// TestRepositoryListPractitionerIDs_Integration tests the repair-job scan
func TestRepositoryListPractitionerIDs_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	defer testutil.CleanupTestDB(t, db)

	testutil.CreateTestPatient(t, db, "prac-1", "Erik Jansen")
	testutil.CreateTestPatient(t, db, "prac-1", "Anna de Vries")
	testutil.CreateTestPatient(t, db, "prac-2", "Pieter Bakker")

	repo := NewRepository(db)

	ids, err := repo.ListPractitionerIDs(context.Background())
	if err != nil {
		t.Fatalf("ListPractitionerIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 distinct practitioners, got %d: %v", len(ids), ids)
	}
	if ids[0] != "prac-1" || ids[1] != "prac-2" {
		t.Errorf("Expected sorted distinct practitioners, got %v", ids)
	}
}
