package history

import (
	"testing"
	"time"

	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/patient"
)

func day(d int) time.Time {
	return time.Date(2026, 2, d, 10, 0, 0, 0, time.UTC)
}

func collect(field Field, p *patient.Patient, consultations []consultation.Consultation) []Entry {
	var entries []Entry
	for entry := range Build(field, p, consultations) {
		entries = append(entries, entry)
	}
	return entries
}

func TestParseField(t *testing.T) {
	valid := []string{"currentTreatment", "consultationReason", "medicalHistory", "osteopathicTreatment", "notes"}
	for _, s := range valid {
		if _, ok := ParseField(s); !ok {
			t.Errorf("Expected '%s' to parse", s)
		}
	}

	for _, s := range []string{"", "fullName", "nextAppointment", "CurrentTreatment"} {
		if _, ok := ParseField(s); ok {
			t.Errorf("Expected '%s' to be rejected", s)
		}
	}
}

func TestBuild_DescendingWithOrdinals(t *testing.T) {
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(1), CurrentTreatment: "stretching"},
		{ID: "c3", Date: day(20), CurrentTreatment: "manipulation"},
		{ID: "c2", Date: day(10), CurrentTreatment: "mobilization"},
	}

	entries := collect(FieldCurrentTreatment, nil, consultations)

	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	wantValues := []string{"manipulation", "mobilization", "stretching"}
	wantOrdinals := []int{3, 2, 1}
	for i, entry := range entries {
		if entry.Value != wantValues[i] {
			t.Errorf("Entry %d: expected value '%s', got '%s'", i, wantValues[i], entry.Value)
		}
		if entry.Ordinal != wantOrdinals[i] {
			t.Errorf("Entry %d: expected ordinal %d, got %d", i, wantOrdinals[i], entry.Ordinal)
		}
		if entry.Source != SourceConsultation {
			t.Errorf("Entry %d: expected consultation source, got '%s'", i, entry.Source)
		}
	}
}

func TestBuild_OrdinalsNumberAllConsultations(t *testing.T) {
	// The newest consultation never touched the field; ordinals still
	// count positions across all consultations.
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "first visit"},
		{ID: "c2", Date: day(10)},
		{ID: "c3", Date: day(20), Notes: "follow-up"},
	}

	entries := collect(FieldNotes, nil, consultations)

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Ordinal != 3 {
		t.Errorf("Expected newest entry ordinal 3, got %d", entries[0].Ordinal)
	}
	if entries[1].Ordinal != 1 {
		t.Errorf("Expected oldest entry ordinal 1, got %d", entries[1].Ordinal)
	}
}

func TestBuild_PatientSnapshotEntry(t *testing.T) {
	updated := day(25)
	p := &patient.Patient{
		ID:               "pat-1",
		CurrentTreatment: "home exercises",
		CreatedAt:        day(1),
		UpdatedAt:        &updated,
	}
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(10), CurrentTreatment: "mobilization"},
	}

	entries := collect(FieldCurrentTreatment, p, consultations)

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != SourcePatient {
		t.Errorf("Expected patient snapshot first, got source '%s'", entries[0].Source)
	}
	if entries[0].Value != "home exercises" {
		t.Errorf("Expected snapshot value, got '%s'", entries[0].Value)
	}
	if !entries[0].Date.Equal(updated) {
		t.Errorf("Expected snapshot dated at UpdatedAt, got %v", entries[0].Date)
	}
	if entries[0].Ordinal != 0 {
		t.Errorf("Expected no ordinal on patient entry, got %d", entries[0].Ordinal)
	}
}

func TestBuild_EmptyValuesSkipped(t *testing.T) {
	p := &patient.Patient{ID: "pat-1", CreatedAt: day(1)}
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(5)},
		{ID: "c2", Date: day(6)},
	}

	entries := collect(FieldMedicalHistory, p, consultations)
	if len(entries) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(entries))
	}
}

func TestBuild_DuplicatesMarkedNotRemoved(t *testing.T) {
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "lower back pain"},
		{ID: "c2", Date: day(10), Notes: "Lower Back Pain  "},
		{ID: "c3", Date: day(20), Notes: "shoulder pain"},
	}

	entries := collect(FieldNotes, nil, consultations)

	if len(entries) != 3 {
		t.Fatalf("Expected duplicates kept, got %d entries", len(entries))
	}
	if entries[0].Duplicate {
		t.Error("Expected newest entry unmarked")
	}
	if entries[1].Duplicate {
		t.Error("Expected distinct value unmarked")
	}
	if !entries[2].Duplicate {
		t.Error("Expected case-and-space-insensitive duplicate marked")
	}
}

func TestBuild_Restartable(t *testing.T) {
	consultations := []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "a"},
		{ID: "c2", Date: day(2), Notes: "b"},
	}

	seq := Build(FieldNotes, nil, consultations)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	if first != 2 || second != 2 {
		t.Errorf("Expected both traversals to yield 2 entries, got %d and %d", first, second)
	}

	// Early break must not poison later traversals
	for range seq {
		break
	}
	third := 0
	for range seq {
		third++
	}
	if third != 2 {
		t.Errorf("Expected full traversal after early break, got %d", third)
	}
}

func TestSignificant(t *testing.T) {
	single := Build(FieldNotes, nil, []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "stable"},
		{ID: "c2", Date: day(2), Notes: "Stable"},
	})
	if Significant(single) {
		t.Error("Expected one distinct value to be insignificant")
	}

	multi := Build(FieldNotes, nil, []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "stable"},
		{ID: "c2", Date: day(2), Notes: "worsening"},
	})
	if !Significant(multi) {
		t.Error("Expected two distinct values to be significant")
	}

	empty := Build(FieldNotes, nil, nil)
	if Significant(empty) {
		t.Error("Expected empty history to be insignificant")
	}
}

func TestLatest(t *testing.T) {
	seq := Build(FieldNotes, nil, []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "old"},
		{ID: "c2", Date: day(2), Notes: "new"},
	})
	if got := Latest(seq); got != "new" {
		t.Errorf("Expected 'new', got '%s'", got)
	}

	if got := Latest(Build(FieldNotes, nil, nil)); got != "" {
		t.Errorf("Expected empty latest, got '%s'", got)
	}
}

func TestModifications(t *testing.T) {
	seq := Build(FieldNotes, nil, []consultation.Consultation{
		{ID: "c1", Date: day(1), Notes: "a"},
		{ID: "c2", Date: day(2), Notes: "a"},
		{ID: "c3", Date: day(3), Notes: "b"},
	})
	// Three entries newest-first: b, a, a(dup). The first is the baseline,
	// the second changed the value, the third did not.
	if got := Modifications(seq); got != 1 {
		t.Errorf("Expected 1 modification, got %d", got)
	}

	if got := Modifications(Build(FieldNotes, nil, nil)); got != 0 {
		t.Errorf("Expected 0 modifications for empty history, got %d", got)
	}
}
