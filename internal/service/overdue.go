package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

// reconciliationBoundaryDay is the calendar day of the current month from
// which locally logged collections are added back on top of the last LMS
// snapshot; entries before it are assumed already reflected in the snapshot.
const reconciliationBoundaryDay = 6

type overdueService struct {
	activity  repository.ActivityLogRepository
	snapshots repository.SnapshotRepository
	now       func() time.Time
}

func NewOverdueService(activity repository.ActivityLogRepository, snapshots repository.SnapshotRepository) OverdueService {
	return &overdueService{
		activity:  activity,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// CurrentOverdue computes a per-loan overdue figure fresher than the
// periodically refreshed snapshot: snapshot minus collections logged since
// the reconciliation boundary, clamped at zero. Two storage queries total,
// independent of how many loans are asked for.
func (s *overdueService) CurrentOverdue(ctx context.Context, loanIDs []int64) (map[int64]*decimal.Decimal, error) {
	result := make(map[int64]*decimal.Decimal, len(loanIDs))
	if len(loanIDs) == 0 {
		return result, nil
	}

	now := s.now()
	boundary := time.Date(now.Year(), now.Month(), reconciliationBoundaryDay, 0, 0, 0, 0, now.Location())

	deltas, err := s.activity.SumCollectedDeltas(ctx, loanIDs, boundary)
	if err != nil {
		return nil, domain.StorageErr("sum collected deltas", err)
	}
	snapshots, err := s.snapshots.GetByLoanIDs(ctx, loanIDs)
	if err != nil {
		return nil, domain.StorageErr("load overdue snapshots", err)
	}

	for _, loanID := range loanIDs {
		snap, ok := snapshots[loanID]
		if !ok || snap.TotalOverdue == nil {
			result[loanID] = nil
			continue
		}
		current := snap.TotalOverdue.Sub(deltas[loanID])
		if current.IsNegative() {
			current = decimal.Zero
		}
		result[loanID] = &current
	}
	return result, nil
}
