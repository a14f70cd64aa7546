package appointment

import (
	"context"
	"log"
	"sync"

	"github.com/osteoflow/clinic-service/internal/patient"
)

// DefaultSyncWorkers bounds the concurrency of the standalone repair job
const DefaultSyncWorkers = 4

// SyncService runs the next-appointment repair across every practitioner.
// It backs the standalone job that fixes whatever drift the inline
// fast paths left behind.
type SyncService struct {
	service  *Service
	patients patient.RepositoryInterface
	workers  int
}

// NewSyncService creates a new sync service. workers <= 0 falls back to
// DefaultSyncWorkers.
func NewSyncService(service *Service, patients patient.RepositoryInterface, workers int) *SyncService {
	if workers <= 0 {
		workers = DefaultSyncWorkers
	}
	return &SyncService{
		service:  service,
		patients: patients,
		workers:  workers,
	}
}

// CountPractitioners reports how many practitioners own at least one patient
func (s *SyncService) CountPractitioners(ctx context.Context) (int, error) {
	ids, err := s.patients.ListPractitionerIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// RunAll repairs the next_appointment pointer of every patient of every
// practitioner. Practitioners are distributed over a bounded worker pool;
// within one practitioner patients are processed sequentially, so the job
// can be interrupted at patient boundaries without leaving partial writes.
// Per-practitioner failures are counted, never fatal.
func (s *SyncService) RunAll(ctx context.Context) (SyncAllResult, error) {
	practitioners, err := s.patients.ListPractitionerIDs(ctx)
	if err != nil {
		return SyncAllResult{}, err
	}

	log.Printf("Repairing next-appointment pointers for %d practitioners (%d workers)", len(practitioners), s.workers)

	jobs := make(chan string)
	var mu sync.Mutex
	var total SyncAllResult

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for practitionerID := range jobs {
				result, err := s.service.SyncAllPatients(ctx, practitionerID)
				mu.Lock()
				if err != nil {
					log.Printf("Warning: sync failed for practitioner %s: %v", practitionerID, err)
					total.Errors++
				}
				total.Processed += result.Processed
				total.Updated += result.Updated
				total.Errors += result.Errors
				mu.Unlock()
			}
		}()
	}

	for _, id := range practitioners {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return total, ctx.Err()
		case jobs <- id:
		}
	}
	close(jobs)
	wg.Wait()

	return total, nil
}
