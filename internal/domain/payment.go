package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one scheduled EMI/demand for a loan. Records are created
// by the external ingestion pipeline and never deleted; the only writer after
// that is the status transition engine.
type PaymentRecord struct {
	ID              int64           `json:"id"`
	LoanID          int64           `json:"loan_id"`
	DemandNum       int32           `json:"demand_num"`
	DemandAmount    decimal.Decimal `json:"demand_amount"`
	DemandDate      time.Time       `json:"demand_date"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	PTPDate         *time.Time      `json:"ptp_date,omitempty"`
	PaymentModeID   *int32          `json:"payment_mode_id,omitempty"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	Status          RepaymentStatus `json:"repayment_status_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// StatusLabel returns the display status, substituting the derived
// "Overdue Paid" label when a paid demand settled after its due date.
func (p *PaymentRecord) StatusLabel() string {
	if p.Status == StatusPaid && p.PaymentDate != nil && p.PaymentDate.After(p.DemandDate) {
		return StatusOverduePaidName
	}
	return p.Status.String()
}

// PaymentMode is a row of the payment_mode lookup table.
type PaymentMode struct {
	ID   int32  `json:"id"`
	Name string `json:"mode_name"`
}

// UpdateFields carries the optional mutations for one ApplyUpdate call.
// Nil fields are untouched. CollectedDelta is additive, never an overwrite.
type UpdateFields struct {
	Status         *RepaymentStatus
	PTPDate        *time.Time
	ClearPTP       bool
	CollectedDelta *decimal.Decimal
	IdempotencyKey string
	PaymentModeID  *int32

	// Calling outcomes recorded alongside the payment mutation.
	ContactCallingStatus *int32
	ContactType          ContactType
	DemandCallingStatus  *int32
}

// Empty reports whether the update carries no mutation at all.
func (f *UpdateFields) Empty() bool {
	return f.Status == nil && f.PTPDate == nil && !f.ClearPTP &&
		f.CollectedDelta == nil && f.PaymentModeID == nil &&
		f.ContactCallingStatus == nil && f.DemandCallingStatus == nil
}

// PaymentRecordView is the hydrated listing row returned by the filtered
// listing engine and by ApplyUpdate.
type PaymentRecordView struct {
	PaymentID       int64            `json:"payment_id"`
	LoanID          int64            `json:"loan_id"`
	ApplicantID     string           `json:"application_id"`
	DemandNum       int32            `json:"demand_num"`
	ApplicantName   string           `json:"applicant_name"`
	Mobile          string           `json:"mobile,omitempty"`
	EMIAmount       decimal.Decimal  `json:"emi_amount"`
	AmountCollected decimal.Decimal  `json:"amount_collected"`
	Status          string           `json:"status"`
	EMIMonth        string           `json:"emi_month"`
	DemandDate      time.Time        `json:"demand_date"`
	Branch          string           `json:"branch"`
	Dealer          string           `json:"dealer"`
	Lender          string           `json:"lender"`
	RMName          string           `json:"rm_name,omitempty"`
	TLName          string           `json:"tl_name,omitempty"`
	PTPDate         *time.Time       `json:"ptp_date,omitempty"`
	PaymentMode     string           `json:"payment_mode,omitempty"`
	PaymentDate     *time.Time       `json:"payment_date,omitempty"`
	LoanAmount      *decimal.Decimal `json:"loan_amount,omitempty"`

	CallingStatuses     CallingStatuses  `json:"calling_statuses"`
	DemandCallingStatus string           `json:"demand_calling_status,omitempty"`
	NachStatus          *NachStatus      `json:"nach_status,omitempty"`
	Repossession        *Repossession    `json:"vehicle_repossession,omitempty"`
	DPDBucket           string           `json:"dpd_bucket,omitempty"`
	CurrentOverdue      *decimal.Decimal `json:"current_overdue,omitempty"`
}

// ListingPage is one page of the filtered listing plus the predicate-wide
// total.
type ListingPage struct {
	Total   int64               `json:"total"`
	Results []PaymentRecordView `json:"results"`
}

// DelayRow is one demand in the per-loan delay report. DelayDays counts from
// demand date to payment date, or to today while unpaid.
type DelayRow struct {
	PaymentID      int64           `json:"payment_id"`
	DemandNum      int32           `json:"demand_num"`
	DemandDate     time.Time       `json:"demand_date"`
	PaymentDate    *time.Time      `json:"payment_date,omitempty"`
	DelayDays      int             `json:"delay_days"`
	OverdueRemains decimal.Decimal `json:"overdue_amount"`
}
