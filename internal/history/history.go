// Package history reconstructs the chronological value history of a
// clinical field from a patient's consultations plus the patient record
// itself. It is a pure read projection: nothing here writes, and every
// traversal recomputes from the inputs.
package history

import (
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/osteoflow/clinic-service/internal/consultation"
	"github.com/osteoflow/clinic-service/internal/patient"
)

// Field selects which clinical field to project.
type Field string

const (
	FieldCurrentTreatment     Field = "currentTreatment"
	FieldConsultationReason   Field = "consultationReason"
	FieldMedicalHistory       Field = "medicalHistory"
	FieldOsteopathicTreatment Field = "osteopathicTreatment"
	FieldNotes                Field = "notes"
)

// ParseField validates a field selector from the boundary.
func ParseField(s string) (Field, bool) {
	switch Field(s) {
	case FieldCurrentTreatment, FieldConsultationReason, FieldMedicalHistory,
		FieldOsteopathicTreatment, FieldNotes:
		return Field(s), true
	default:
		return "", false
	}
}

// Entry sources
const (
	SourceConsultation = "consultation"
	SourcePatient      = "patient"
)

// Entry is one step in a field's timeline, newest first. Ordinal numbers
// consultation-sourced entries from newest (highest) to oldest; the
// patient-sourced entry carries the current snapshot value. Duplicate
// flags an entry whose normalized value equals its predecessor's; such
// entries are kept so the sequence stays complete.
type Entry struct {
	Date      time.Time `json:"date"`
	Value     string    `json:"value"`
	Source    string    `json:"source"`
	Ordinal   int       `json:"ordinal,omitempty"`
	Duplicate bool      `json:"duplicate,omitempty"`
}

// Build returns the field's history as a lazy sequence, descending by
// date. The sequence is finite and restartable: each traversal recomputes
// from the inputs, with no cache held between them.
func Build(field Field, p *patient.Patient, consultations []consultation.Consultation) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, entry := range build(field, p, consultations) {
			if !yield(entry) {
				return
			}
		}
	}
}

func build(field Field, p *patient.Patient, consultations []consultation.Consultation) []Entry {
	var entries []Entry

	sorted := make([]consultation.Consultation, len(consultations))
	copy(sorted, consultations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	for i, c := range sorted {
		value, ok := consultationValue(field, c)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Date:    c.Date,
			Value:   value,
			Source:  SourceConsultation,
			Ordinal: len(sorted) - i,
		})
	}

	if p != nil {
		if value, ok := patientValue(field, p); ok {
			date := p.CreatedAt
			if p.UpdatedAt != nil {
				date = *p.UpdatedAt
			}
			entries = append(entries, Entry{
				Date:   date,
				Value:  value,
				Source: SourcePatient,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	markDuplicates(entries)

	return entries
}

// Significant reports whether the history holds more than one distinct
// non-empty value.
func Significant(entries iter.Seq[Entry]) bool {
	seen := make(map[string]struct{})
	for entry := range entries {
		if v := normalize(entry.Value); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen) > 1
}

// Latest returns the most recent value, or empty when there is no history.
func Latest(entries iter.Seq[Entry]) string {
	for entry := range entries {
		return entry.Value
	}
	return ""
}

// Modifications counts the entries that actually changed the value.
func Modifications(entries iter.Seq[Entry]) int {
	count := -1
	for entry := range entries {
		if count == -1 {
			count = 0
			continue
		}
		if !entry.Duplicate {
			count++
		}
	}
	if count < 0 {
		return 0
	}
	return count
}

func consultationValue(field Field, c consultation.Consultation) (string, bool) {
	var value string
	switch field {
	case FieldCurrentTreatment:
		value = c.CurrentTreatment
	case FieldConsultationReason:
		value = c.ConsultationReason
	case FieldMedicalHistory:
		value = c.MedicalHistory
	case FieldOsteopathicTreatment:
		value = c.OsteopathicTreatment
	case FieldNotes:
		value = c.Notes
	default:
		return "", false
	}
	return value, value != ""
}

func patientValue(field Field, p *patient.Patient) (string, bool) {
	var value string
	switch field {
	case FieldCurrentTreatment:
		value = p.CurrentTreatment
	case FieldConsultationReason:
		value = p.ConsultationReason
	case FieldMedicalHistory:
		value = p.MedicalHistory
	case FieldOsteopathicTreatment:
		value = p.OsteopathicTreatment
	case FieldNotes:
		value = p.Notes
	default:
		return "", false
	}
	return value, value != ""
}

// markDuplicates flags entries equal to their predecessor for display
// dimming without removing them.
func markDuplicates(entries []Entry) {
	for i := 1; i < len(entries); i++ {
		if normalize(entries[i].Value) == normalize(entries[i-1].Value) {
			entries[i].Duplicate = true
		}
	}
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
