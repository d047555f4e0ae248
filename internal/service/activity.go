package service

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type activityService struct {
	activity repository.ActivityLogRepository
	payments repository.PaymentRepository
	calling  repository.CallingRepository
	now      func() time.Time
}

func NewActivityService(
	activity repository.ActivityLogRepository,
	payments repository.PaymentRepository,
	calling repository.CallingRepository,
) ActivityService {
	return &activityService{
		activity: activity,
		payments: payments,
		calling:  calling,
		now:      time.Now,
	}
}

// RecentActivity returns the audit trail as a feed, with status and payment
// mode ids resolved to display names. Lookup tables are fetched once per
// call, not per entry.
func (s *activityService) RecentActivity(ctx context.Context, loanID, paymentID int64, limit, daysBack int) ([]domain.ActivityItem, error) {
	if daysBack <= 0 {
		daysBack = 30
	}
	entries, err := s.activity.List(ctx, domain.ActivityFilter{
		LoanID:    loanID,
		PaymentID: paymentID,
		Since:     s.now().AddDate(0, 0, -daysBack),
		Limit:     limit,
	})
	if err != nil {
		return nil, domain.StorageErr("load activity log", err)
	}

	modeNames := map[int32]string{}
	demandNames := map[int32]string{}
	for _, e := range entries {
		switch e.Field {
		case domain.FieldPaymentMode:
			if len(modeNames) == 0 {
				if modeNames, err = s.paymentModeNames(ctx); err != nil {
					return nil, err
				}
			}
		case domain.FieldDemandCalling:
			if len(demandNames) == 0 {
				if demandNames, err = s.calling.DemandStatusNames(ctx); err != nil {
					return nil, domain.StorageErr("load demand calling statuses", err)
				}
			}
		}
	}

	items := make([]domain.ActivityItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.ActivityItem{
			ID:        e.ID,
			Type:      e.Field.String(),
			From:      resolveValue(e.Field, e.PreviousValue, modeNames, demandNames),
			To:        resolveValue(e.Field, e.NewValue, modeNames, demandNames),
			ChangedBy: e.ChangedBy,
			Timestamp: e.CreatedAt,
			LoanID:    e.LoanID,
			PaymentID: e.PaymentID,
		})
	}
	return items, nil
}

func (s *activityService) paymentModeNames(ctx context.Context) (map[int32]string, error) {
	modes, err := s.payments.ListModes(ctx)
	if err != nil {
		return nil, domain.StorageErr("load payment modes", err)
	}
	names := make(map[int32]string, len(modes))
	for _, m := range modes {
		names[m.ID] = m.Name
	}
	return names, nil
}

// resolveValue maps a raw logged value to its display form. Unresolvable ids
// stay raw rather than erroring: old entries may reference retired lookups.
func resolveValue(field domain.FieldType, raw string, modeNames, demandNames map[int32]string) string {
	if raw == "" {
		return raw
	}
	switch field {
	case domain.FieldRepaymentStatus:
		if id, err := strconv.ParseInt(raw, 10, 32); err == nil {
			if status := domain.RepaymentStatus(id); status.Valid() {
				return status.String()
			}
		}
	case domain.FieldPaymentMode:
		if id, err := strconv.ParseInt(raw, 10, 32); err == nil {
			if name, ok := modeNames[int32(id)]; ok {
				return name
			}
		}
	case domain.FieldDemandCalling:
		if id, err := strconv.ParseInt(raw, 10, 32); err == nil {
			if name, ok := demandNames[int32(id)]; ok {
				return name
			}
		}
	}
	return raw
}

// DelayReport lists a loan's demands up to the current month with how many
// days late each one was paid (or is running, while unpaid) and the unpaid
// remainder of its demand amount.
func (s *activityService) DelayReport(ctx context.Context, loanID int64) ([]domain.DelayRow, error) {
	if loanID <= 0 {
		return nil, domain.Validationf("loan id is required")
	}
	today := s.now()
	records, err := s.payments.ListUpToMonth(ctx, loanID, today)
	if err != nil {
		return nil, domain.StorageErr("load loan demands", err)
	}

	rows := make([]domain.DelayRow, 0, len(records))
	for _, rec := range records {
		row := domain.DelayRow{
			PaymentID:   rec.ID,
			DemandNum:   rec.DemandNum,
			DemandDate:  rec.DemandDate,
			PaymentDate: rec.PaymentDate,
		}
		reference := today
		if rec.PaymentDate != nil {
			reference = *rec.PaymentDate
		}
		row.DelayDays = int(reference.Sub(rec.DemandDate).Hours() / 24)
		remainder := rec.DemandAmount.Sub(rec.AmountCollected)
		if remainder.IsNegative() {
			remainder = decimal.Zero
		}
		row.OverdueRemains = remainder
		rows = append(rows, row)
	}
	return rows, nil
}
