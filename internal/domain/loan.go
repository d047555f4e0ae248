package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverdueSnapshot is the periodically refreshed authoritative figure from the
// external LMS. Read-only in this service.
type OverdueSnapshot struct {
	LoanID       int64            `json:"loan_id"`
	TotalOverdue *decimal.Decimal `json:"total_overdue_amount"`
	TotalPOS     *decimal.Decimal `json:"total_pos"`
	RefreshedAt  time.Time        `json:"refreshed_at"`
}

// ContactType distinguishes who was called on a contact-calling attempt.
type ContactType int32

const (
	ContactApplicant   ContactType = 1
	ContactCoApplicant ContactType = 2
	ContactGuarantor   ContactType = 3
	ContactReference   ContactType = 4
)

// CallingType distinguishes the two calling workflows.
type CallingType int32

const (
	CallingContact CallingType = 1
	CallingDemand  CallingType = 2
)

// CallingRecord is one call outcome captured against a demand.
type CallingRecord struct {
	ID          int64       `json:"id"`
	PaymentID   int64       `json:"repayment_id"`
	Type        CallingType `json:"calling_type"`
	ContactType ContactType `json:"contact_type"`
	StatusID    int32       `json:"status_id"`
	CalledBy    string      `json:"called_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CallingStatuses holds the latest contact-calling outcome per contact type
// for one demand. Missing entries render as "Not Called".
type CallingStatuses struct {
	Applicant   string `json:"applicant"`
	CoApplicant string `json:"co_applicant"`
	Guarantor   string `json:"guarantor"`
	Reference   string `json:"reference"`
}

// NotCalled is the default outcome shown when no calling record exists.
const NotCalled = "Not Called"

// NachStatus is the latest auto-debit mandate state for a loan, sourced from
// the raw POS/overdue feed.
type NachStatus struct {
	Month  *time.Time `json:"nach_month,omitempty"`
	Reason string     `json:"nach_reason,omitempty"`
}

// Repossession is the latest vehicle repossession record for a loan.
type Repossession struct {
	Status     string           `json:"status"`
	Date       *time.Time       `json:"repossession_date,omitempty"`
	SaleDate   *time.Time       `json:"sale_date,omitempty"`
	SaleAmount *decimal.Decimal `json:"sale_amount,omitempty"`
}

// FilterOptions enumerates the selectable values for every listing filter
// dimension.
type FilterOptions struct {
	EMIMonths      []string         `json:"emi_months"`
	Branches       []string         `json:"branches"`
	Dealers        []string         `json:"dealers"`
	Lenders        []string         `json:"lenders"`
	Statuses       []string         `json:"statuses"`
	PTPOptions     []string         `json:"ptp_date_options"`
	PTPCounts      map[string]int64 `json:"ptp_counts"`
	TeamLeads      []string         `json:"team_leads"`
	RMs            []string         `json:"rms"`
	DemandNums     []string         `json:"demand_nums"`
	DPDBuckets     []string         `json:"dpd_buckets"`
	VehicleStatus  []string         `json:"vehicle_statuses"`
}

// StatusSummary maps status display names to how many demands match the
// caller's filter predicate.
type StatusSummary struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}
