package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Repository methods that
// must participate in the caller's transaction take it explicitly.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error)
	// GetByIDForUpdate locks the row for the duration of tx, serializing
	// concurrent updates against the same demand.
	GetByIDForUpdate(ctx context.Context, tx DBTX, id int64) (*domain.PaymentRecord, error)
	Update(ctx context.Context, tx DBTX, rec *domain.PaymentRecord) error
	// ListFutureDue returns ids of demands still marked Future whose demand
	// date has passed as of the given date.
	ListFutureDue(ctx context.Context, asOf time.Time) ([]int64, error)
	// ListUpToMonth returns a loan's demands scheduled up to and including
	// the month of asOf, ordered by demand number.
	ListUpToMonth(ctx context.Context, loanID int64, asOf time.Time) ([]domain.PaymentRecord, error)

	ListModes(ctx context.Context) ([]domain.PaymentMode, error)
	GetMode(ctx context.Context, id int32) (*domain.PaymentMode, error)

	// ConsumeIdempotencyKey records a client idempotency key inside tx.
	// Returns false if the key was already consumed.
	ConsumeIdempotencyKey(ctx context.Context, tx DBTX, key string, paymentID int64) (bool, error)
}

type ActivityLogRepository interface {
	// Append inserts one immutable entry inside the caller's transaction;
	// id and created_at are assigned by the database.
	Append(ctx context.Context, tx DBTX, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error)
	// LatestTransitionInto finds the most recent entry for the payment and
	// field whose new_value matches. Returns nil when no entry exists.
	LatestTransitionInto(ctx context.Context, tx DBTX, paymentID int64, field domain.FieldType, newValue string) (*domain.ActivityLogEntry, error)
	// SumCollectedDeltas returns per-loan Σ(new_value) − Σ(previous_value)
	// over amount_collected entries created on or after since, in a single
	// query regardless of len(loanIDs).
	SumCollectedDeltas(ctx context.Context, loanIDs []int64, since time.Time) (map[int64]decimal.Decimal, error)
}

type SnapshotRepository interface {
	GetByLoanIDs(ctx context.Context, loanIDs []int64) (map[int64]domain.OverdueSnapshot, error)
	// CountStale counts snapshots last refreshed before the cutoff.
	CountStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type CallingRepository interface {
	Create(ctx context.Context, tx DBTX, call *domain.CallingRecord) error
	// LatestStatusID returns the newest calling record's status id for the
	// payment, type and contact, or nil when none exists.
	LatestStatusID(ctx context.Context, paymentID int64, callingType domain.CallingType, contactType domain.ContactType) (*int32, error)
	// DemandStatusNames returns the demand-calling status lookup table.
	DemandStatusNames(ctx context.Context) (map[int32]string, error)
}

type ListingRepository interface {
	// Count evaluates the compiled predicate without pagination.
	Count(ctx context.Context, c domain.FilterCriteria, now time.Time) (int64, error)
	// Page returns one deterministically ordered page of base rows; the
	// hydrated fields are filled in by the listing service.
	Page(ctx context.Context, c domain.FilterCriteria, now time.Time) ([]domain.PaymentRecordView, error)
	// StatusCounts groups the same predicate by display status, including
	// the derived "Overdue Paid" label.
	StatusCounts(ctx context.Context, c domain.FilterCriteria, now time.Time) (map[string]int64, error)
	FilterOptions(ctx context.Context, now time.Time) (*domain.FilterOptions, error)
}

// HydrationRepository serves the fixed set of batched per-page lookups. Every
// method issues exactly one query keyed by the page's ids.
type HydrationRepository interface {
	LatestContactCalling(ctx context.Context, paymentIDs []int64) (map[int64]domain.CallingStatuses, error)
	LatestDemandCalling(ctx context.Context, paymentIDs []int64) (map[int64]string, error)
	LatestNach(ctx context.Context, loanIDs []int64) (map[int64]domain.NachStatus, error)
	LatestRepossession(ctx context.Context, loanIDs []int64) (map[int64]domain.Repossession, error)
	LatestDPDBucket(ctx context.Context, loanIDs []int64) (map[int64]string, error)
}
