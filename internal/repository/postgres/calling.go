package postgres

import (
	"context"
	"database/sql"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type callingRepository struct {
	db *sql.DB
}

func NewCallingRepository(db *sql.DB) repository.CallingRepository {
	return &callingRepository{db: db}
}

func (r *callingRepository) Create(ctx context.Context, tx repository.DBTX, call *domain.CallingRecord) error {
	query := `INSERT INTO calling (repayment_id, calling_type, contact_type, status_id, called_by)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at`
	return tx.QueryRowContext(ctx, query,
		call.PaymentID, int32(call.Type), int32(call.ContactType), call.StatusID, call.CalledBy,
	).Scan(&call.ID, &call.CreatedAt)
}

func (r *callingRepository) LatestStatusID(ctx context.Context, paymentID int64, callingType domain.CallingType, contactType domain.ContactType) (*int32, error) {
	query := `SELECT status_id FROM calling
	          WHERE repayment_id = $1 AND calling_type = $2 AND contact_type = $3
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`
	var statusID int32
	err := r.db.QueryRowContext(ctx, query, paymentID, int32(callingType), int32(contactType)).Scan(&statusID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &statusID, nil
}

func (r *callingRepository) DemandStatusNames(ctx context.Context) (map[int32]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, demand_calling_status FROM demand_calling_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int32]string)
	for rows.Next() {
		var id int32
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
