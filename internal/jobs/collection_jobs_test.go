package jobs

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prosparity-git/collection/internal/config"
	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository/postgres"
	"github.com/Prosparity-git/collection/internal/service"
)

type stubStatusService struct {
	calls  []int64
	fields []domain.UpdateFields
	actors []string
}

func (s *stubStatusService) ApplyUpdate(ctx context.Context, paymentID int64, actor string, fields domain.UpdateFields) (*domain.PaymentRecord, error) {
	s.calls = append(s.calls, paymentID)
	s.actors = append(s.actors, actor)
	s.fields = append(s.fields, fields)
	return &domain.PaymentRecord{ID: paymentID}, nil
}

func (s *stubStatusService) ProcessApproval(ctx context.Context, paymentID int64, actor string, action service.ApprovalAction) (*service.ApprovalResult, error) {
	return nil, nil
}

func TestMarkOverdueDemands(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM payment_details`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)).AddRow(int64(7)))

	status := &stubStatusService{}
	jr := NewJobRunner(postgres.NewStore(db), status, &config.Config{})

	jr.MarkOverdueDemands()

	assert.Equal(t, []int64{3, 7}, status.calls)
	for i, fields := range status.fields {
		require.NotNil(t, fields.Status)
		assert.Equal(t, domain.StatusOverdue, *fields.Status)
		assert.Equal(t, CronActor, status.actors[i])
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSnapshotStaleness(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM loan_overdue_snapshot`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	cfg := &config.Config{Snapshot: config.SnapshotConfig{MaxAgeHours: 48}}
	jr := NewJobRunner(postgres.NewStore(db), &stubStatusService{}, cfg)

	jr.CheckSnapshotStaleness()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunWithRecovery_SwallowsPanics(t *testing.T) {
	jr := NewJobRunner(nil, nil, &config.Config{})

	assert.NotPanics(t, func() {
		jr.runWithRecovery("panicky", func() { panic("boom") })
	})
}
