package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type snapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) repository.SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetByLoanIDs(ctx context.Context, loanIDs []int64) (map[int64]domain.OverdueSnapshot, error) {
	snapshots := make(map[int64]domain.OverdueSnapshot, len(loanIDs))
	if len(loanIDs) == 0 {
		return snapshots, nil
	}
	query := `SELECT loan_application_id, total_overdue_amount, total_pos, refreshed_at
	          FROM loan_overdue_snapshot
	          WHERE loan_application_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(loanIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var snap domain.OverdueSnapshot
		var overdue, pos decimal.NullDecimal
		if err := rows.Scan(&snap.LoanID, &overdue, &pos, &snap.RefreshedAt); err != nil {
			return nil, err
		}
		if overdue.Valid {
			snap.TotalOverdue = &overdue.Decimal
		}
		if pos.Valid {
			snap.TotalPOS = &pos.Decimal
		}
		snapshots[snap.LoanID] = snap
	}
	return snapshots, rows.Err()
}

func (r *snapshotRepository) CountStale(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM loan_overdue_snapshot WHERE refreshed_at < $1`, cutoff).
		Scan(&count)
	return count, err
}
