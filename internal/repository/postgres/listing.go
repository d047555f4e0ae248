package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

// listingFrom is the shared join tree for the filtered listing. Every
// predicate, the count query and the page query compile against the same
// relations so total and page always agree.
const listingFrom = `
	FROM payment_details pd
	JOIN loan_details ld ON pd.loan_application_id = ld.loan_application_id
	JOIN applicant_details ad ON ld.applicant_id = ad.applicant_id
	JOIN branch b ON ad.branch_id = b.id
	JOIN dealer dl ON ad.dealer_id = dl.id
	JOIN lender ln ON ld.lender_id = ln.id
	JOIN repayment_status rs ON pd.repayment_status_id = rs.id
	LEFT JOIN users rm ON ld.collection_rm_id = rm.id
	LEFT JOIN users tl ON ld.current_team_lead_id = tl.id
	LEFT JOIN payment_mode pm ON pd.payment_mode_id = pm.id`

// predicate accumulates WHERE conditions with numbered placeholders. Values
// within one filter field are OR'd; distinct fields are AND'd.
type predicate struct {
	conds []string
	args  []any
}

func (p *predicate) bind(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *predicate) and(cond string) {
	p.conds = append(p.conds, cond)
}

func (p *predicate) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conds, " AND ")
}

// compileFilter turns the typed criteria into one SQL predicate. The
// synthetic "Overdue Paid" status and the symbolic PTP buckets are resolved
// here; now fixes the evaluation date for the whole request.
func compileFilter(c domain.FilterCriteria, now time.Time) *predicate {
	p := &predicate{}
	today := now.Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)

	if len(c.LoanIDs) > 0 {
		p.and("pd.loan_application_id = ANY(" + p.bind(pq.Array(c.LoanIDs)) + ")")
	}
	if len(c.RepaymentIDs) > 0 {
		p.and("pd.id = ANY(" + p.bind(pq.Array(c.RepaymentIDs)) + ")")
	}
	if len(c.DemandNums) > 0 {
		p.and("pd.demand_num = ANY(" + p.bind(pq.Array(c.DemandNums)) + ")")
	}
	if len(c.EMIMonths) > 0 {
		p.and("to_char(pd.demand_date, 'Mon-YY') = ANY(" + p.bind(pq.Array(c.EMIMonths)) + ")")
	}
	if len(c.Search) > 0 {
		var terms []string
		for _, term := range c.Search {
			ph := p.bind("%" + term + "%")
			terms = append(terms,
				"(ad.first_name || ' ' || ad.last_name ILIKE "+ph+
					" OR ad.applicant_id ILIKE "+ph+")")
		}
		p.and("(" + strings.Join(terms, " OR ") + ")")
	}
	if len(c.Branches) > 0 {
		p.and("b.name = ANY(" + p.bind(pq.Array(c.Branches)) + ")")
	}
	if len(c.Dealers) > 0 {
		p.and("dl.name = ANY(" + p.bind(pq.Array(c.Dealers)) + ")")
	}
	if len(c.Lenders) > 0 {
		p.and("ln.name = ANY(" + p.bind(pq.Array(c.Lenders)) + ")")
	}
	if len(c.Statuses) > 0 {
		var literals []string
		overduePaid := false
		for _, s := range c.Statuses {
			if s == domain.StatusOverduePaidName {
				overduePaid = true
				continue
			}
			literals = append(literals, s)
		}
		var alts []string
		if len(literals) > 0 {
			alts = append(alts, "rs.repayment_status = ANY("+p.bind(pq.Array(literals))+")")
		}
		if overduePaid {
			alts = append(alts, fmt.Sprintf(
				"(pd.repayment_status_id = %s AND pd.payment_date > pd.demand_date)",
				p.bind(int32(domain.StatusPaid))))
		}
		p.and("(" + strings.Join(alts, " OR ") + ")")
	}
	if len(c.RMNames) > 0 {
		p.and("rm.name = ANY(" + p.bind(pq.Array(c.RMNames)) + ")")
	}
	if len(c.TLNames) > 0 {
		p.and("tl.name = ANY(" + p.bind(pq.Array(c.TLNames)) + ")")
	}
	if len(c.PTP) > 0 {
		var alts []string
		for _, bucket := range c.PTP {
			switch bucket {
			case domain.PTPOverdue:
				alts = append(alts, "pd.ptp_date < "+p.bind(today))
			case domain.PTPToday:
				alts = append(alts, "pd.ptp_date = "+p.bind(today))
			case domain.PTPTomorrow:
				alts = append(alts, "pd.ptp_date = "+p.bind(tomorrow))
			case domain.PTPFuture:
				alts = append(alts, "pd.ptp_date > "+p.bind(tomorrow))
			case domain.PTPNone:
				alts = append(alts, "pd.ptp_date IS NULL")
			}
		}
		p.and("(" + strings.Join(alts, " OR ") + ")")
	}
	if len(c.DPDBuckets) > 0 {
		ph := p.bind(pq.Array(c.DPDBuckets))
		p.and(`EXISTS (
			SELECT 1 FROM dpd_monthly_snapshot ds
			WHERE ds.loan_application_id = pd.loan_application_id
			  AND ds.dpd_bucket_name = ANY(` + ph + `)
			  AND ds.as_of_month = (
				SELECT max(as_of_month) FROM dpd_monthly_snapshot
				WHERE loan_application_id = pd.loan_application_id))`)
	}
	return p
}

func (r *listingRepository) Count(ctx context.Context, c domain.FilterCriteria, now time.Time) (int64, error) {
	p := compileFilter(c, now)
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT count(*)"+listingFrom+p.where(), p.args...).Scan(&total)
	return total, err
}

func (r *listingRepository) Page(ctx context.Context, c domain.FilterCriteria, now time.Time) ([]domain.PaymentRecordView, error) {
	p := compileFilter(c, now)
	limit := c.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT pd.id, pd.loan_application_id, ad.applicant_id, pd.demand_num,
	                 trim(ad.first_name || ' ' || COALESCE(ad.last_name, '')),
	                 COALESCE(ad.mobile, ''),
	                 pd.demand_amount, pd.amount_collected,
	                 pd.repayment_status_id, pd.demand_date, pd.payment_date,
	                 b.name, dl.name, ln.name,
	                 COALESCE(rm.name, ''), COALESCE(tl.name, ''),
	                 pd.ptp_date, COALESCE(pm.mode_name, ''),
	                 ld.disbursal_amount` +
		listingFrom + p.where() +
		// Stable pagination: applicant name, then payment id as tie-breaker.
		" ORDER BY ad.first_name ASC, ad.last_name ASC, pd.id ASC" +
		" LIMIT " + p.bind(limit) + " OFFSET " + p.bind(c.Offset)

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.PaymentRecordView
	for rows.Next() {
		var v domain.PaymentRecordView
		var statusID int32
		var paymentDate, ptpDate sql.NullTime
		var loanAmount decimal.NullDecimal
		if err := rows.Scan(
			&v.PaymentID, &v.LoanID, &v.ApplicantID, &v.DemandNum,
			&v.ApplicantName, &v.Mobile,
			&v.EMIAmount, &v.AmountCollected,
			&statusID, &v.DemandDate, &paymentDate,
			&v.Branch, &v.Dealer, &v.Lender,
			&v.RMName, &v.TLName,
			&ptpDate, &v.PaymentMode,
			&loanAmount,
		); err != nil {
			return nil, err
		}
		if ptpDate.Valid {
			v.PTPDate = &ptpDate.Time
		}
		if paymentDate.Valid {
			v.PaymentDate = &paymentDate.Time
		}
		if loanAmount.Valid {
			v.LoanAmount = &loanAmount.Decimal
		}
		rec := domain.PaymentRecord{
			Status:     domain.RepaymentStatus(statusID),
			DemandDate: v.DemandDate,
			PaymentDate: func() *time.Time {
				if paymentDate.Valid {
					return &paymentDate.Time
				}
				return nil
			}(),
		}
		v.Status = rec.StatusLabel()
		v.EMIMonth = v.DemandDate.Format("Jan-06")
		v.CallingStatuses = domain.CallingStatuses{
			Applicant:   domain.NotCalled,
			CoApplicant: domain.NotCalled,
			Guarantor:   domain.NotCalled,
			Reference:   domain.NotCalled,
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *listingRepository) StatusCounts(ctx context.Context, c domain.FilterCriteria, now time.Time) (map[string]int64, error) {
	p := compileFilter(c, now)
	paid := p.bind(int32(domain.StatusPaid))
	query := `SELECT CASE WHEN pd.repayment_status_id = ` + paid + ` AND pd.payment_date > pd.demand_date
	                      THEN '` + domain.StatusOverduePaidName + `'
	                      ELSE rs.repayment_status END AS label,
	                 count(*)` +
		listingFrom + p.where() + " GROUP BY label"

	rows, err := r.db.QueryContext(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}
	return counts, rows.Err()
}

func (r *listingRepository) FilterOptions(ctx context.Context, now time.Time) (*domain.FilterOptions, error) {
	opts := &domain.FilterOptions{
		Statuses:   append(domain.AllStatusNames(), domain.StatusOverduePaidName),
		PTPCounts:  make(map[string]int64),
	}
	for _, b := range domain.PTPBuckets {
		opts.PTPOptions = append(opts.PTPOptions, string(b))
	}

	stringCols := []struct {
		dst   *[]string
		query string
	}{
		{&opts.EMIMonths, `SELECT DISTINCT to_char(demand_date, 'Mon-YY') FROM payment_details WHERE demand_date IS NOT NULL ORDER BY 1`},
		{&opts.Branches, `SELECT name FROM branch ORDER BY name`},
		{&opts.Dealers, `SELECT name FROM dealer ORDER BY name`},
		{&opts.Lenders, `SELECT name FROM lender ORDER BY name`},
		{&opts.TeamLeads, `SELECT DISTINCT u.name FROM users u JOIN loan_details ld ON ld.current_team_lead_id = u.id ORDER BY u.name`},
		{&opts.RMs, `SELECT DISTINCT u.name FROM users u JOIN loan_details ld ON ld.collection_rm_id = u.id ORDER BY u.name`},
		{&opts.DemandNums, `SELECT DISTINCT demand_num::text FROM payment_details ORDER BY 1`},
		{&opts.DPDBuckets, `SELECT DISTINCT dpd_bucket_name FROM dpd_monthly_snapshot WHERE dpd_bucket_name IS NOT NULL ORDER BY 1`},
		{&opts.VehicleStatus, `SELECT vehicle_status FROM vehicle_status ORDER BY id`},
	}
	for _, col := range stringCols {
		values, err := r.queryStrings(ctx, col.query)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}

	today := now.Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)
	query := `SELECT count(*) FILTER (WHERE ptp_date < $1),
	                 count(*) FILTER (WHERE ptp_date = $1),
	                 count(*) FILTER (WHERE ptp_date = $2),
	                 count(*) FILTER (WHERE ptp_date > $2),
	                 count(*) FILTER (WHERE ptp_date IS NULL)
	          FROM payment_details`
	var overdue, todayN, tomorrowN, future, none int64
	if err := r.db.QueryRowContext(ctx, query, today, tomorrow).
		Scan(&overdue, &todayN, &tomorrowN, &future, &none); err != nil {
		return nil, err
	}
	opts.PTPCounts[string(domain.PTPOverdue)] = overdue
	opts.PTPCounts[string(domain.PTPToday)] = todayN
	opts.PTPCounts[string(domain.PTPTomorrow)] = tomorrowN
	opts.PTPCounts[string(domain.PTPFuture)] = future
	opts.PTPCounts[string(domain.PTPNone)] = none

	return opts, nil
}

func (r *listingRepository) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
