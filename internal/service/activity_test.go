package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prosparity-git/collection/internal/domain"
)

func newActivityFixture() (*activityService, *mockActivityRepo, *mockPaymentRepo, *mockCallingRepo) {
	activity := &mockActivityRepo{}
	payments := &mockPaymentRepo{}
	calling := &mockCallingRepo{}
	svc := NewActivityService(activity, payments, calling).(*activityService)
	svc.now = func() time.Time { return testNow }
	return svc, activity, payments, calling
}

func TestRecentActivity_ResolvesDisplayNames(t *testing.T) {
	svc, activity, payments, calling := newActivityFixture()
	paymentID := int64(10)
	activity.listed = []domain.ActivityLogEntry{
		{ID: 3, LoanID: 5, PaymentID: &paymentID, Field: domain.FieldRepaymentStatus, PreviousValue: "2", NewValue: "6", ChangedBy: "collector"},
		{ID: 2, LoanID: 5, PaymentID: &paymentID, Field: domain.FieldPaymentMode, PreviousValue: "", NewValue: "1", ChangedBy: "collector"},
		{ID: 1, LoanID: 5, PaymentID: &paymentID, Field: domain.FieldDemandCalling, PreviousValue: "99", NewValue: "2", ChangedBy: "collector"},
	}
	payments.modes = map[int32]domain.PaymentMode{1: {ID: 1, Name: "Cash"}}
	calling.demandNames = map[int32]string{2: "Promise To Pay"}

	items, err := svc.RecentActivity(context.Background(), 5, 0, 50, 30)

	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "repayment_status", items[0].Type)
	assert.Equal(t, "Overdue", items[0].From)
	assert.Equal(t, "Paid(Pending Approval)", items[0].To)

	assert.Equal(t, "payment_mode", items[1].Type)
	assert.Empty(t, items[1].From)
	assert.Equal(t, "Cash", items[1].To)

	// Retired lookup ids stay raw instead of failing the feed.
	assert.Equal(t, "99", items[2].From)
	assert.Equal(t, "Promise To Pay", items[2].To)
}

func TestRecentActivity_AmountEntriesStayRaw(t *testing.T) {
	svc, activity, _, _ := newActivityFixture()
	activity.listed = []domain.ActivityLogEntry{
		{ID: 1, LoanID: 5, Field: domain.FieldAmountCollected, PreviousValue: "200", NewValue: "700", ChangedBy: "collector"},
	}

	items, err := svc.RecentActivity(context.Background(), 5, 0, 50, 30)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "200", items[0].From)
	assert.Equal(t, "700", items[0].To)
}

func TestDelayReport_DelayDays(t *testing.T) {
	svc, _, payments, _ := newActivityFixture()
	paidDate := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	payments.upToMonth = []domain.PaymentRecord{
		{
			ID: 1, DemandNum: 1,
			DemandDate:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:     &paidDate,
			DemandAmount:    decimal.NewFromInt(1000),
			AmountCollected: decimal.NewFromInt(1000),
		},
		{
			ID: 2, DemandNum: 2,
			DemandDate:      time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC),
			DemandAmount:    decimal.NewFromInt(1000),
			AmountCollected: decimal.NewFromInt(1200), // over-collected
		},
	}

	rows, err := svc.DelayReport(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 9, rows[0].DelayDays)
	assert.True(t, rows[0].OverdueRemains.IsZero())

	// Unpaid demands accrue delay against today (testNow is Aug 31 noon).
	assert.Equal(t, 10, rows[1].DelayDays)
	assert.True(t, rows[1].OverdueRemains.IsZero(), "over-collection clamps the remainder at zero")
}

func TestDelayReport_RequiresLoanID(t *testing.T) {
	svc, _, _, _ := newActivityFixture()

	_, err := svc.DelayReport(context.Background(), 0)

	assert.True(t, errors.Is(err, domain.ErrValidation))
}
