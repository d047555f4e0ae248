package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRepository_GetByLoanIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepository(db)

	rows := sqlmock.NewRows([]string{"loan_application_id", "total_overdue_amount", "total_pos", "refreshed_at"}).
		AddRow(int64(5), "3200.00", "180000.00", time.Now()).
		AddRow(int64(6), nil, nil, time.Now())

	mock.ExpectQuery(`FROM loan_overdue_snapshot`).WillReturnRows(rows)

	snaps, err := repo.GetByLoanIDs(context.Background(), []int64{5, 6, 7})
	assert.NoError(t, err)
	require.Len(t, snaps, 2)

	require.NotNil(t, snaps[5].TotalOverdue)
	assert.True(t, snaps[5].TotalOverdue.Equal(decimal.NewFromInt(3200)))
	assert.Nil(t, snaps[6].TotalOverdue)

	_, ok := snaps[7]
	assert.False(t, ok, "loans without a snapshot are absent, not zeroed")
}

func TestSnapshotRepository_CountStale(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSnapshotRepository(db)
	cutoff := time.Now().Add(-48 * time.Hour)

	mock.ExpectQuery(`FROM loan_overdue_snapshot WHERE refreshed_at < \$1`).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountStale(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
