package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, loan_application_id, demand_num, demand_amount, demand_date,
	amount_collected, ptp_date, payment_mode_id, payment_date, repayment_status_id,
	created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*domain.PaymentRecord, error) {
	var rec domain.PaymentRecord
	var ptpDate, paymentDate sql.NullTime
	var modeID sql.NullInt32
	err := row.Scan(
		&rec.ID, &rec.LoanID, &rec.DemandNum, &rec.DemandAmount, &rec.DemandDate,
		&rec.AmountCollected, &ptpDate, &modeID, &paymentDate, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ptpDate.Valid {
		rec.PTPDate = &ptpDate.Time
	}
	if paymentDate.Valid {
		rec.PaymentDate = &paymentDate.Time
	}
	if modeID.Valid {
		rec.PaymentModeID = &modeID.Int32
	}
	return &rec, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_details WHERE id = $1`
	return scanPayment(r.db.QueryRowContext(ctx, query, id))
}

func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, tx repository.DBTX, id int64) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_details WHERE id = $1 FOR UPDATE`
	return scanPayment(tx.QueryRowContext(ctx, query, id))
}

func (r *paymentRepository) Update(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord) error {
	query := `UPDATE payment_details
	          SET amount_collected = $1, ptp_date = $2, payment_mode_id = $3,
	              payment_date = $4, repayment_status_id = $5, updated_at = now()
	          WHERE id = $6
	          RETURNING updated_at`
	var ptpDate, paymentDate sql.NullTime
	if rec.PTPDate != nil {
		ptpDate = sql.NullTime{Time: *rec.PTPDate, Valid: true}
	}
	if rec.PaymentDate != nil {
		paymentDate = sql.NullTime{Time: *rec.PaymentDate, Valid: true}
	}
	var modeID sql.NullInt32
	if rec.PaymentModeID != nil {
		modeID = sql.NullInt32{Int32: *rec.PaymentModeID, Valid: true}
	}
	return tx.QueryRowContext(ctx, query,
		rec.AmountCollected, ptpDate, modeID, paymentDate, int32(rec.Status), rec.ID,
	).Scan(&rec.UpdatedAt)
}

func (r *paymentRepository) ListFutureDue(ctx context.Context, asOf time.Time) ([]int64, error) {
	query := `SELECT id FROM payment_details
	          WHERE repayment_status_id = $1 AND demand_date < $2
	          ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, int32(domain.StatusFuture), asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *paymentRepository) ListUpToMonth(ctx context.Context, loanID int64, asOf time.Time) ([]domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_details
	          WHERE loan_application_id = $1 AND date_trunc('month', demand_date) <= date_trunc('month', $2::date)
	          ORDER BY demand_num ASC`
	rows, err := r.db.QueryContext(ctx, query, loanID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (r *paymentRepository) ListModes(ctx context.Context) ([]domain.PaymentMode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, mode_name FROM payment_mode ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modes []domain.PaymentMode
	for rows.Next() {
		var m domain.PaymentMode
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

func (r *paymentRepository) GetMode(ctx context.Context, id int32) (*domain.PaymentMode, error) {
	var m domain.PaymentMode
	err := r.db.QueryRowContext(ctx, `SELECT id, mode_name FROM payment_mode WHERE id = $1`, id).
		Scan(&m.ID, &m.Name)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *paymentRepository) ConsumeIdempotencyKey(ctx context.Context, tx repository.DBTX, key string, paymentID int64) (bool, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO idempotency_keys (key, payment_id, created_at) VALUES ($1, $2, now())`,
		key, paymentID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
