package domain

import "time"

// FieldType identifies which audited field an activity_log entry records.
// IDs are canonical and stored in activity_log.field_type_id.
type FieldType int32

const (
	FieldAmountCollected FieldType = 1
	FieldRepaymentStatus FieldType = 2
	FieldPTPDate         FieldType = 3
	FieldDemandCalling   FieldType = 4
	FieldPaymentMode     FieldType = 5
)

var fieldNames = map[FieldType]string{
	FieldAmountCollected: "amount_collected",
	FieldRepaymentStatus: "repayment_status",
	FieldPTPDate:         "ptp_date",
	FieldDemandCalling:   "demand_calling_status",
	FieldPaymentMode:     "payment_mode",
}

func (f FieldType) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// PTPCleared is the sentinel written to activity_log.new_value when a PTP
// date is explicitly cleared rather than replaced.
const PTPCleared = "cleared"

// ActivityLogEntry is an immutable field-level change event. Entries are the
// source of historical truth: they are never updated, and the logical
// IsDeleted flag never affects reconciliation math.
type ActivityLogEntry struct {
	ID            int64     `json:"id"`
	LoanID        int64     `json:"loan_id"`
	PaymentID     *int64    `json:"payment_id,omitempty"`
	Field         FieldType `json:"field_type_id"`
	PreviousValue string    `json:"previous_value"`
	NewValue      string    `json:"new_value"`
	ChangedBy     string    `json:"changed_by"`
	CreatedAt     time.Time `json:"created_at"`
	IsDeleted     bool      `json:"-"`
}

// ActivityFilter narrows an activity log query. Zero values mean "no
// constraint".
type ActivityFilter struct {
	LoanID    int64
	PaymentID int64
	Field     FieldType
	Since     time.Time
	Limit     int
}

// ActivityItem is a feed entry with the raw id values resolved to display
// names (statuses, payment modes).
type ActivityItem struct {
	ID        int64     `json:"id"`
	Type      string    `json:"activity_type"`
	From      string    `json:"from_value"`
	To        string    `json:"to_value"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
	LoanID    int64     `json:"loan_id"`
	PaymentID *int64    `json:"repayment_id,omitempty"`
}
