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

type activityLogRepository struct {
	db *sql.DB
}

func NewActivityLogRepository(db *sql.DB) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Append(ctx context.Context, tx repository.DBTX, entry *domain.ActivityLogEntry) error {
	query := `INSERT INTO activity_log (loan_application_id, payment_id, field_type_id, previous_value, new_value, changed_by)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`
	var paymentID sql.NullInt64
	if entry.PaymentID != nil {
		paymentID = sql.NullInt64{Int64: *entry.PaymentID, Valid: true}
	}
	return tx.QueryRowContext(ctx, query,
		entry.LoanID, paymentID, int32(entry.Field),
		entry.PreviousValue, entry.NewValue, entry.ChangedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	query := `SELECT id, loan_application_id, payment_id, field_type_id, previous_value, new_value, changed_by, created_at, is_deleted
	          FROM activity_log
	          WHERE ($1 = 0 OR loan_application_id = $1)
	            AND ($2 = 0 OR payment_id = $2)
	            AND ($3 = 0 OR field_type_id = $3)
	            AND ($4::timestamptz IS NULL OR created_at >= $4)
	            AND is_deleted = false
	          ORDER BY created_at DESC
	          LIMIT $5`
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var since sql.NullTime
	if !filter.Since.IsZero() {
		since = sql.NullTime{Time: filter.Since, Valid: true}
	}
	rows, err := r.db.QueryContext(ctx, query,
		filter.LoanID, filter.PaymentID, int32(filter.Field), since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityLogEntry
	for rows.Next() {
		var e domain.ActivityLogEntry
		var paymentID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.LoanID, &paymentID, &e.Field,
			&e.PreviousValue, &e.NewValue, &e.ChangedBy, &e.CreatedAt, &e.IsDeleted); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			e.PaymentID = &paymentID.Int64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *activityLogRepository) LatestTransitionInto(ctx context.Context, tx repository.DBTX, paymentID int64, field domain.FieldType, newValue string) (*domain.ActivityLogEntry, error) {
	query := `SELECT id, loan_application_id, payment_id, field_type_id, previous_value, new_value, changed_by, created_at, is_deleted
	          FROM activity_log
	          WHERE payment_id = $1 AND field_type_id = $2 AND new_value = $3
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`
	var e domain.ActivityLogEntry
	var pid sql.NullInt64
	err := tx.QueryRowContext(ctx, query, paymentID, int32(field), newValue).
		Scan(&e.ID, &e.LoanID, &pid, &e.Field, &e.PreviousValue, &e.NewValue,
			&e.ChangedBy, &e.CreatedAt, &e.IsDeleted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pid.Valid {
		e.PaymentID = &pid.Int64
	}
	return &e, nil
}

// SumCollectedDeltas computes per-loan Σ(new) − Σ(previous) over
// amount_collected entries since the reconciliation boundary. One GROUP BY
// query regardless of how many loans are asked for. The logical is_deleted
// flag is deliberately ignored: reconciliation math reads every entry ever
// appended.
func (r *activityLogRepository) SumCollectedDeltas(ctx context.Context, loanIDs []int64, since time.Time) (map[int64]decimal.Decimal, error) {
	deltas := make(map[int64]decimal.Decimal, len(loanIDs))
	if len(loanIDs) == 0 {
		return deltas, nil
	}
	query := `SELECT loan_application_id,
	                 COALESCE(SUM(CAST(new_value AS NUMERIC(12,2))), 0) -
	                 COALESCE(SUM(CAST(NULLIF(previous_value, '') AS NUMERIC(12,2))), 0)
	          FROM activity_log
	          WHERE loan_application_id = ANY($1)
	            AND field_type_id = $2
	            AND created_at::date >= $3
	          GROUP BY loan_application_id`
	rows, err := r.db.QueryContext(ctx, query,
		pq.Array(loanIDs), int32(domain.FieldAmountCollected), since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loanID int64
		var delta decimal.Decimal
		if err := rows.Scan(&loanID, &delta); err != nil {
			return nil, err
		}
		deltas[loanID] = delta
	}
	return deltas, rows.Err()
}
