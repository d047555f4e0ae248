package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

// passthroughTx runs the function directly; repository mocks ignore the tx
// handle anyway.
type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx repository.DBTX) error) error {
	return fn(nil)
}

type mockPaymentRepo struct {
	rec       *domain.PaymentRecord
	getErr    error
	updated   []*domain.PaymentRecord
	modes     map[int32]domain.PaymentMode
	keyFresh  bool
	keyErr    error
	futureDue []int64
	upToMonth []domain.PaymentRecord
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.rec, nil
}

func (m *mockPaymentRepo) GetByIDForUpdate(ctx context.Context, tx repository.DBTX, id int64) (*domain.PaymentRecord, error) {
	return m.GetByID(ctx, id)
}

func (m *mockPaymentRepo) Update(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord) error {
	m.updated = append(m.updated, rec)
	return nil
}

func (m *mockPaymentRepo) ListFutureDue(ctx context.Context, asOf time.Time) ([]int64, error) {
	return m.futureDue, nil
}

func (m *mockPaymentRepo) ListUpToMonth(ctx context.Context, loanID int64, asOf time.Time) ([]domain.PaymentRecord, error) {
	return m.upToMonth, nil
}

func (m *mockPaymentRepo) ListModes(ctx context.Context) ([]domain.PaymentMode, error) {
	modes := make([]domain.PaymentMode, 0, len(m.modes))
	for _, mode := range m.modes {
		modes = append(modes, mode)
	}
	return modes, nil
}

func (m *mockPaymentRepo) GetMode(ctx context.Context, id int32) (*domain.PaymentMode, error) {
	mode, ok := m.modes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &mode, nil
}

func (m *mockPaymentRepo) ConsumeIdempotencyKey(ctx context.Context, tx repository.DBTX, key string, paymentID int64) (bool, error) {
	if m.keyErr != nil {
		return false, m.keyErr
	}
	return m.keyFresh, nil
}

type mockActivityRepo struct {
	appended   []domain.ActivityLogEntry
	listed     []domain.ActivityLogEntry
	latest     *domain.ActivityLogEntry
	deltas     map[int64]decimal.Decimal
	deltasErr  error
	sumCalled  bool
	sinceArg   time.Time
	loanIDsArg []int64
}

func (m *mockActivityRepo) Append(ctx context.Context, tx repository.DBTX, entry *domain.ActivityLogEntry) error {
	entry.ID = int64(len(m.appended) + 1)
	entry.CreatedAt = time.Now()
	m.appended = append(m.appended, *entry)
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	return m.listed, nil
}

func (m *mockActivityRepo) LatestTransitionInto(ctx context.Context, tx repository.DBTX, paymentID int64, field domain.FieldType, newValue string) (*domain.ActivityLogEntry, error) {
	return m.latest, nil
}

func (m *mockActivityRepo) SumCollectedDeltas(ctx context.Context, loanIDs []int64, since time.Time) (map[int64]decimal.Decimal, error) {
	m.sumCalled = true
	m.loanIDsArg = loanIDs
	m.sinceArg = since
	if m.deltasErr != nil {
		return nil, m.deltasErr
	}
	if m.deltas == nil {
		return map[int64]decimal.Decimal{}, nil
	}
	return m.deltas, nil
}

type mockCallingRepo struct {
	created     []domain.CallingRecord
	latestID    *int32
	demandNames map[int32]string
}

func (m *mockCallingRepo) Create(ctx context.Context, tx repository.DBTX, call *domain.CallingRecord) error {
	call.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *call)
	return nil
}

func (m *mockCallingRepo) LatestStatusID(ctx context.Context, paymentID int64, callingType domain.CallingType, contactType domain.ContactType) (*int32, error) {
	return m.latestID, nil
}

func (m *mockCallingRepo) DemandStatusNames(ctx context.Context) (map[int32]string, error) {
	return m.demandNames, nil
}

type mockSnapshotRepo struct {
	snaps      map[int64]domain.OverdueSnapshot
	staleCount int64
	getCalled  bool
}

func (m *mockSnapshotRepo) GetByLoanIDs(ctx context.Context, loanIDs []int64) (map[int64]domain.OverdueSnapshot, error) {
	m.getCalled = true
	if m.snaps == nil {
		return map[int64]domain.OverdueSnapshot{}, nil
	}
	return m.snaps, nil
}

func (m *mockSnapshotRepo) CountStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.staleCount, nil
}

type mockListingRepo struct {
	total     int64
	rows      []domain.PaymentRecordView
	counts    map[string]int64
	opts      *domain.FilterOptions
	pageCalls int
}

func (m *mockListingRepo) Count(ctx context.Context, c domain.FilterCriteria, now time.Time) (int64, error) {
	return m.total, nil
}

func (m *mockListingRepo) Page(ctx context.Context, c domain.FilterCriteria, now time.Time) ([]domain.PaymentRecordView, error) {
	m.pageCalls++
	return m.rows, nil
}

func (m *mockListingRepo) StatusCounts(ctx context.Context, c domain.FilterCriteria, now time.Time) (map[string]int64, error) {
	return m.counts, nil
}

func (m *mockListingRepo) FilterOptions(ctx context.Context, now time.Time) (*domain.FilterOptions, error) {
	return m.opts, nil
}

type mockHydrationRepo struct {
	contact map[int64]domain.CallingStatuses
	demand  map[int64]string
	nach    map[int64]domain.NachStatus
	repo    map[int64]domain.Repossession
	dpd     map[int64]string
}

func (m *mockHydrationRepo) LatestContactCalling(ctx context.Context, paymentIDs []int64) (map[int64]domain.CallingStatuses, error) {
	return m.contact, nil
}

func (m *mockHydrationRepo) LatestDemandCalling(ctx context.Context, paymentIDs []int64) (map[int64]string, error) {
	return m.demand, nil
}

func (m *mockHydrationRepo) LatestNach(ctx context.Context, loanIDs []int64) (map[int64]domain.NachStatus, error) {
	return m.nach, nil
}

func (m *mockHydrationRepo) LatestRepossession(ctx context.Context, loanIDs []int64) (map[int64]domain.Repossession, error) {
	return m.repo, nil
}

func (m *mockHydrationRepo) LatestDPDBucket(ctx context.Context, loanIDs []int64) (map[int64]string, error) {
	return m.dpd, nil
}

type mockOverdueService struct {
	amounts map[int64]*decimal.Decimal
}

func (m *mockOverdueService) CurrentOverdue(ctx context.Context, loanIDs []int64) (map[int64]*decimal.Decimal, error) {
	if m.amounts == nil {
		return map[int64]*decimal.Decimal{}, nil
	}
	return m.amounts, nil
}
