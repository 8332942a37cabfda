package application

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/wizardry/wizard/domain"
	"github.com/rs/zerolog/log"
)

// DefaultSweepGrace keeps the sweeper away from files an in-flight upload
// has written but not yet referenced.
const DefaultSweepGrace = 10 * time.Minute

// SweepResult lists the orphans found and the ones actually removed.
type SweepResult struct {
	Orphans []string
	Removed []string
}

// Sweeper finds files in the attachment root that no wizard references.
// It is the cleanup path for files left behind by partial failures.
type Sweeper struct {
	repo  domain.WizardRepository
	store domain.AttachmentStore
	grace time.Duration
	now   func() time.Time
}

func NewSweeper(repo domain.WizardRepository, store domain.AttachmentStore, grace time.Duration) *Sweeper {
	return &Sweeper{
		repo:  repo,
		store: store,
		grace: grace,
		now:   time.Now,
	}
}

// Sweep reports orphaned files older than the grace period and removes them
// when remove is set. A file that fails to be removed is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context, remove bool) (*SweepResult, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, domain.StorageIO("sweep", err)
	}

	// Read references after listing: a file written and referenced in
	// between is then seen as referenced.
	names, err := s.repo.ImageNames(ctx)
	if err != nil {
		return nil, domain.Persistence("sweep", err)
	}

	referenced := make(map[string]struct{}, len(names))
	for _, name := range names {
		referenced[name] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	result := &SweepResult{
		Orphans: make([]string, 0),
		Removed: make([]string, 0),
	}

	for _, f := range files {
		if _, ok := referenced[f.Name]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}

		result.Orphans = append(result.Orphans, f.Name)
		if !remove {
			continue
		}

		if err := s.store.Remove(f.Name); err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("Failed to remove orphaned image")
			continue
		}
		result.Removed = append(result.Removed, f.Name)
	}

	return result, nil
}

func (r *SweepResult) String() string {
	return fmt.Sprintf("%d orphaned, %d removed", len(r.Orphans), len(r.Removed))
}
