package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

// hydrationRepository serves the per-page batch lookups. Each method is one
// query over the whole id set; the listing engine never calls these per row.
type hydrationRepository struct {
	db *sql.DB
}

func NewHydrationRepository(db *sql.DB) repository.HydrationRepository {
	return &hydrationRepository{db: db}
}

func (r *hydrationRepository) LatestContactCalling(ctx context.Context, paymentIDs []int64) (map[int64]domain.CallingStatuses, error) {
	result := make(map[int64]domain.CallingStatuses, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return result, nil
	}
	query := `SELECT DISTINCT ON (c.repayment_id, c.contact_type)
	                 c.repayment_id, c.contact_type, ccs.contact_calling_status
	          FROM calling c
	          JOIN contact_calling_status ccs ON ccs.id = c.status_id
	          WHERE c.repayment_id = ANY($1) AND c.calling_type = $2
	          ORDER BY c.repayment_id, c.contact_type, c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(paymentIDs), int32(domain.CallingContact))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var paymentID int64
		var contactType int32
		var status string
		if err := rows.Scan(&paymentID, &contactType, &status); err != nil {
			return nil, err
		}
		cs, ok := result[paymentID]
		if !ok {
			cs = domain.CallingStatuses{
				Applicant:   domain.NotCalled,
				CoApplicant: domain.NotCalled,
				Guarantor:   domain.NotCalled,
				Reference:   domain.NotCalled,
			}
		}
		switch domain.ContactType(contactType) {
		case domain.ContactApplicant:
			cs.Applicant = status
		case domain.ContactCoApplicant:
			cs.CoApplicant = status
		case domain.ContactGuarantor:
			cs.Guarantor = status
		case domain.ContactReference:
			cs.Reference = status
		}
		result[paymentID] = cs
	}
	return result, rows.Err()
}

func (r *hydrationRepository) LatestDemandCalling(ctx context.Context, paymentIDs []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return result, nil
	}
	query := `SELECT DISTINCT ON (c.repayment_id)
	                 c.repayment_id, dcs.demand_calling_status
	          FROM calling c
	          JOIN demand_calling_status dcs ON dcs.id = c.status_id
	          WHERE c.repayment_id = ANY($1) AND c.calling_type = $2
	          ORDER BY c.repayment_id, c.created_at DESC, c.id DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(paymentIDs), int32(domain.CallingDemand))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var paymentID int64
		var status string
		if err := rows.Scan(&paymentID, &status); err != nil {
			return nil, err
		}
		result[paymentID] = status
	}
	return result, rows.Err()
}

func (r *hydrationRepository) LatestNach(ctx context.Context, loanIDs []int64) (map[int64]domain.NachStatus, error) {
	result := make(map[int64]domain.NachStatus, len(loanIDs))
	if len(loanIDs) == 0 {
		return result, nil
	}
	query := `SELECT DISTINCT ON (loan_application_id)
	                 loan_application_id, nach_months, COALESCE(nach_reason, '')
	          FROM raw_pos_overdue
	          WHERE loan_application_id = ANY($1)
	          ORDER BY loan_application_id, create_date DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(loanIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loanID int64
		var month sql.NullTime
		var nach domain.NachStatus
		if err := rows.Scan(&loanID, &month, &nach.Reason); err != nil {
			return nil, err
		}
		if month.Valid {
			nach.Month = &month.Time
		}
		result[loanID] = nach
	}
	return result, rows.Err()
}

func (r *hydrationRepository) LatestRepossession(ctx context.Context, loanIDs []int64) (map[int64]domain.Repossession, error) {
	result := make(map[int64]domain.Repossession, len(loanIDs))
	if len(loanIDs) == 0 {
		return result, nil
	}
	query := `SELECT DISTINCT ON (vrs.loan_application_id)
	                 vrs.loan_application_id, vs.vehicle_status,
	                 vrs.repossession_date, vrs.repossession_sale_date, vrs.repossession_sale_amount
	          FROM vehicle_repossession_status vrs
	          JOIN vehicle_status vs ON vs.id = vrs.vehicle_status_id
	          WHERE vrs.loan_application_id = ANY($1)
	          ORDER BY vrs.loan_application_id, vrs.created_at DESC, vrs.id DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(loanIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loanID int64
		var rep domain.Repossession
		var date, saleDate sql.NullTime
		var saleAmount decimal.NullDecimal
		if err := rows.Scan(&loanID, &rep.Status, &date, &saleDate, &saleAmount); err != nil {
			return nil, err
		}
		if date.Valid {
			rep.Date = &date.Time
		}
		if saleDate.Valid {
			rep.SaleDate = &saleDate.Time
		}
		if saleAmount.Valid {
			rep.SaleAmount = &saleAmount.Decimal
		}
		result[loanID] = rep
	}
	return result, rows.Err()
}

func (r *hydrationRepository) LatestDPDBucket(ctx context.Context, loanIDs []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(loanIDs))
	if len(loanIDs) == 0 {
		return result, nil
	}
	query := `SELECT DISTINCT ON (loan_application_id)
	                 loan_application_id, dpd_bucket_name
	          FROM dpd_monthly_snapshot
	          WHERE loan_application_id = ANY($1) AND dpd_bucket_name IS NOT NULL
	          ORDER BY loan_application_id, as_of_month DESC`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(loanIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var loanID int64
		var bucket string
		if err := rows.Scan(&loanID, &bucket); err != nil {
			return nil, err
		}
		result[loanID] = bucket
	}
	return result, rows.Err()
}
