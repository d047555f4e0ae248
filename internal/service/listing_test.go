package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prosparity-git/collection/internal/domain"
)

func newListingFixture() (*listingService, *mockListingRepo, *mockHydrationRepo, *mockOverdueService) {
	listing := &mockListingRepo{}
	hydration := &mockHydrationRepo{}
	overdue := &mockOverdueService{}
	svc := NewListingService(listing, hydration, overdue).(*listingService)
	svc.now = func() time.Time { return testNow }
	return svc, listing, hydration, overdue
}

func TestListPayments_EmptyResultSkipsPageQuery(t *testing.T) {
	svc, listing, _, _ := newListingFixture()
	listing.total = 0

	page, err := svc.ListPayments(context.Background(), domain.FilterCriteria{})

	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, listing.pageCalls, "empty predicates never load a page")
}

func TestListPayments_HydratesPageRows(t *testing.T) {
	svc, listing, hydration, overdue := newListingFixture()
	listing.total = 2
	listing.rows = []domain.PaymentRecordView{
		{PaymentID: 11, LoanID: 5},
		{PaymentID: 12, LoanID: 5}, // same loan, loan-level lookups must dedup
	}
	hydration.contact = map[int64]domain.CallingStatuses{
		11: {Applicant: "Connected", CoApplicant: domain.NotCalled, Guarantor: domain.NotCalled, Reference: domain.NotCalled},
	}
	hydration.demand = map[int64]string{12: "Will Pay"}
	nachMonth := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	hydration.nach = map[int64]domain.NachStatus{5: {Month: &nachMonth, Reason: "Insufficient funds"}}
	hydration.repo = map[int64]domain.Repossession{5: {Status: "Repossessed"}}
	hydration.dpd = map[int64]string{5: "30-60"}
	amount := decimal.NewFromInt(700)
	overdue.amounts = map[int64]*decimal.Decimal{5: &amount}

	page, err := svc.ListPayments(context.Background(), domain.FilterCriteria{Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Results, 2)

	first, second := page.Results[0], page.Results[1]
	assert.Equal(t, "Connected", first.CallingStatuses.Applicant)
	assert.Empty(t, first.DemandCallingStatus)
	assert.Equal(t, "Will Pay", second.DemandCallingStatus)

	for _, row := range page.Results {
		require.NotNil(t, row.NachStatus)
		assert.Equal(t, "Insufficient funds", row.NachStatus.Reason)
		require.NotNil(t, row.Repossession)
		assert.Equal(t, "Repossessed", row.Repossession.Status)
		assert.Equal(t, "30-60", row.DPDBucket)
		require.NotNil(t, row.CurrentOverdue)
		assert.True(t, row.CurrentOverdue.Equal(decimal.NewFromInt(700)))
	}
}

func TestSummary_TotalsStatusCounts(t *testing.T) {
	svc, listing, _, _ := newListingFixture()
	listing.counts = map[string]int64{
		"Paid":                       3,
		"Overdue":                    2,
		domain.StatusOverduePaidName: 1,
	}

	summary, err := svc.Summary(context.Background(), domain.FilterCriteria{})

	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.Total)
	assert.Equal(t, int64(1), summary.ByStatus[domain.StatusOverduePaidName])
}

func TestFilterOptions_PassesThrough(t *testing.T) {
	svc, listing, _, _ := newListingFixture()
	listing.opts = &domain.FilterOptions{Branches: []string{"Pune", "Nashik"}}

	opts, err := svc.FilterOptions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Pune", "Nashik"}, opts.Branches)
}
