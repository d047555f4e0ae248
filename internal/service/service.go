package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

// TxRunner runs a function inside one storage transaction. Implemented by
// postgres.Store.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx repository.DBTX) error) error
}

// ApprovalAction selects the outcome of a paid-pending-approval review.
type ApprovalAction string

const (
	ApprovalAccept ApprovalAction = "accept"
	ApprovalReject ApprovalAction = "reject"
)

// ApprovalResult reports an approve/reject outcome to the caller.
type ApprovalResult struct {
	PaymentID      int64                 `json:"repayment_id"`
	LoanID         int64                 `json:"loan_id"`
	Action         ApprovalAction        `json:"action"`
	PreviousStatus string                `json:"previous_status"`
	NewStatus      string                `json:"new_status"`
	Record         *domain.PaymentRecord `json:"record"`
}

// StatusService is the guarded state machine over a demand's status, PTP
// date, collected amount, payment mode and calling outcomes. Every successful
// call mutates the payment row and appends matching activity log entries in
// one transaction.
type StatusService interface {
	ApplyUpdate(ctx context.Context, paymentID int64, actor string, fields domain.UpdateFields) (*domain.PaymentRecord, error)
	ProcessApproval(ctx context.Context, paymentID int64, actor string, action ApprovalAction) (*ApprovalResult, error)
}

// OverdueService reconciles the external LMS snapshot with locally logged
// collections. Values are nil for loans without a snapshot.
type OverdueService interface {
	CurrentOverdue(ctx context.Context, loanIDs []int64) (map[int64]*decimal.Decimal, error)
}

// ListingService serves the filtered, paginated, hydrated demand listing and
// its companion aggregates.
type ListingService interface {
	ListPayments(ctx context.Context, c domain.FilterCriteria) (*domain.ListingPage, error)
	Summary(ctx context.Context, c domain.FilterCriteria) (*domain.StatusSummary, error)
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)
}

// ActivityService exposes the audit trail as a readable feed plus the
// per-loan delay report.
type ActivityService interface {
	RecentActivity(ctx context.Context, loanID, paymentID int64, limit, daysBack int) ([]domain.ActivityItem, error)
	DelayReport(ctx context.Context, loanID int64) ([]domain.DelayRow, error)
}
