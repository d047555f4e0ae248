package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/logger"
	"github.com/Prosparity-git/collection/internal/repository"
)

const logDateLayout = "2006-01-02"

type statusService struct {
	tx       TxRunner
	payments repository.PaymentRepository
	activity repository.ActivityLogRepository
	calling  repository.CallingRepository
	now      func() time.Time
}

func NewStatusService(
	tx TxRunner,
	payments repository.PaymentRepository,
	activity repository.ActivityLogRepository,
	calling repository.CallingRepository,
) StatusService {
	return &statusService{
		tx:       tx,
		payments: payments,
		activity: activity,
		calling:  calling,
		now:      time.Now,
	}
}

// ApplyUpdate applies the requested field mutations to one demand. The
// payment row is locked for the duration of the transaction, and every
// audited change appends exactly one activity log entry before commit.
func (s *statusService) ApplyUpdate(ctx context.Context, paymentID int64, actor string, fields domain.UpdateFields) (*domain.PaymentRecord, error) {
	if actor == "" {
		return nil, domain.Validationf("actor is required")
	}
	if fields.Empty() {
		return nil, domain.Validationf("no fields to update")
	}
	if fields.Status != nil && !fields.Status.Valid() {
		return nil, domain.Validationf("unknown repayment status id %d", int32(*fields.Status))
	}
	if fields.CollectedDelta != nil && fields.CollectedDelta.IsNegative() {
		return nil, domain.Validationf("collected amount delta must not be negative")
	}
	if fields.PTPDate != nil && fields.ClearPTP {
		return nil, domain.Validationf("cannot set and clear ptp date in the same call")
	}

	// Payment mode is validated against the known mode set up front so a bad
	// mode never opens a transaction.
	var newMode *domain.PaymentMode
	if fields.PaymentModeID != nil {
		mode, err := s.payments.GetMode(ctx, *fields.PaymentModeID)
		if err == sql.ErrNoRows {
			return nil, domain.Validationf("invalid payment mode id %d", *fields.PaymentModeID)
		}
		if err != nil {
			return nil, domain.StorageErr("load payment mode", err)
		}
		newMode = mode
	}

	var result *domain.PaymentRecord
	err := s.tx.WithTx(ctx, func(tx repository.DBTX) error {
		rec, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err == sql.ErrNoRows {
			return domain.NotFoundf("payment record %d not found", paymentID)
		}
		if err != nil {
			return domain.StorageErr("load payment record", err)
		}

		if err := s.applyPTP(ctx, tx, rec, fields, actor); err != nil {
			return err
		}
		if err := s.applyCollectedDelta(ctx, tx, rec, fields, actor); err != nil {
			return err
		}
		if err := s.applyMode(ctx, tx, rec, newMode, actor); err != nil {
			return err
		}
		if err := s.applyStatus(ctx, tx, rec, fields, actor); err != nil {
			return err
		}
		if err := s.recordCalls(ctx, tx, rec, fields, actor); err != nil {
			return err
		}

		if err := s.payments.Update(ctx, tx, rec); err != nil {
			return domain.StorageErr("update payment record", err)
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *statusService) applyPTP(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, fields domain.UpdateFields, actor string) error {
	if fields.PTPDate == nil && !fields.ClearPTP {
		return nil
	}
	previous := ""
	if rec.PTPDate != nil {
		previous = rec.PTPDate.Format(logDateLayout)
	}
	newValue := domain.PTPCleared
	if fields.ClearPTP {
		rec.PTPDate = nil
	} else {
		d := *fields.PTPDate
		rec.PTPDate = &d
		newValue = d.Format(logDateLayout)
	}
	return s.append(ctx, tx, rec, domain.FieldPTPDate, previous, newValue, actor)
}

func (s *statusService) applyCollectedDelta(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, fields domain.UpdateFields, actor string) error {
	if fields.CollectedDelta == nil {
		return nil
	}
	if fields.IdempotencyKey != "" {
		if _, err := uuid.Parse(fields.IdempotencyKey); err != nil {
			return domain.Validationf("idempotency key must be a UUID")
		}
		fresh, err := s.payments.ConsumeIdempotencyKey(ctx, tx, fields.IdempotencyKey, rec.ID)
		if err != nil {
			return domain.StorageErr("consume idempotency key", err)
		}
		if !fresh {
			return domain.Conflictf("idempotency key %q already used for payment %d", fields.IdempotencyKey, rec.ID)
		}
	}
	previous := rec.AmountCollected
	rec.AmountCollected = previous.Add(*fields.CollectedDelta)
	return s.append(ctx, tx, rec, domain.FieldAmountCollected,
		previous.String(), rec.AmountCollected.String(), actor)
}

func (s *statusService) applyMode(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, mode *domain.PaymentMode, actor string) error {
	if mode == nil {
		return nil
	}
	// Applied and logged only when the mode actually changes.
	if rec.PaymentModeID != nil && *rec.PaymentModeID == mode.ID {
		return nil
	}
	previous := ""
	if rec.PaymentModeID != nil {
		previous = strconv.Itoa(int(*rec.PaymentModeID))
	}
	id := mode.ID
	rec.PaymentModeID = &id
	return s.append(ctx, tx, rec, domain.FieldPaymentMode,
		previous, strconv.Itoa(int(id)), actor)
}

func (s *statusService) applyStatus(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, fields domain.UpdateFields, actor string) error {
	if fields.Status == nil || *fields.Status == rec.Status {
		return nil
	}
	newStatus := *fields.Status
	if newStatus == domain.StatusPaidPendingApproval && rec.AmountCollected.LessThan(rec.DemandAmount) {
		return domain.InvalidTransitionf(
			"amount collected (%s) must be >= demand amount (%s) for %s",
			rec.AmountCollected, rec.DemandAmount, domain.StatusPaidPendingApproval)
	}
	previous := rec.Status
	rec.Status = newStatus
	return s.append(ctx, tx, rec, domain.FieldRepaymentStatus,
		statusValue(previous), statusValue(newStatus), actor)
}

func (s *statusService) recordCalls(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, fields domain.UpdateFields, actor string) error {
	if fields.DemandCallingStatus != nil {
		previous := ""
		if latest, err := s.calling.LatestStatusID(ctx, rec.ID, domain.CallingDemand, domain.ContactApplicant); err != nil {
			return domain.StorageErr("load latest demand calling status", err)
		} else if latest != nil {
			previous = strconv.Itoa(int(*latest))
		}
		call := &domain.CallingRecord{
			PaymentID:   rec.ID,
			Type:        domain.CallingDemand,
			ContactType: domain.ContactApplicant,
			StatusID:    *fields.DemandCallingStatus,
			CalledBy:    actor,
		}
		if err := s.calling.Create(ctx, tx, call); err != nil {
			return domain.StorageErr("create demand calling record", err)
		}
		if err := s.append(ctx, tx, rec, domain.FieldDemandCalling,
			previous, strconv.Itoa(int(*fields.DemandCallingStatus)), actor); err != nil {
			return err
		}
	}
	if fields.ContactCallingStatus != nil {
		contactType := fields.ContactType
		if contactType == 0 {
			contactType = domain.ContactApplicant
		}
		call := &domain.CallingRecord{
			PaymentID:   rec.ID,
			Type:        domain.CallingContact,
			ContactType: contactType,
			StatusID:    *fields.ContactCallingStatus,
			CalledBy:    actor,
		}
		if err := s.calling.Create(ctx, tx, call); err != nil {
			return domain.StorageErr("create contact calling record", err)
		}
	}
	return nil
}

// ProcessApproval accepts or rejects a demand sitting in
// Paid(Pending Approval). Accept moves it to Paid and stamps the payment
// date; reject restores the status it held before entering the approval
// queue, reconstructed from the activity log.
func (s *statusService) ProcessApproval(ctx context.Context, paymentID int64, actor string, action ApprovalAction) (*ApprovalResult, error) {
	if actor == "" {
		return nil, domain.Validationf("actor is required")
	}
	if action != ApprovalAccept && action != ApprovalReject {
		return nil, domain.Validationf("unknown approval action %q", action)
	}

	var result *ApprovalResult
	err := s.tx.WithTx(ctx, func(tx repository.DBTX) error {
		rec, err := s.payments.GetByIDForUpdate(ctx, tx, paymentID)
		if err == sql.ErrNoRows {
			return domain.NotFoundf("payment record %d not found", paymentID)
		}
		if err != nil {
			return domain.StorageErr("load payment record", err)
		}
		if rec.Status != domain.StatusPaidPendingApproval {
			return domain.Conflictf("current status is %q, not %q",
				rec.Status, domain.StatusPaidPendingApproval)
		}

		previous := rec.Status
		var newStatus domain.RepaymentStatus
		if action == ApprovalAccept {
			newStatus = domain.StatusPaid
			paymentDate := s.now()
			rec.PaymentDate = &paymentDate
		} else {
			newStatus, err = s.restoredStatus(ctx, tx, rec)
			if err != nil {
				return err
			}
		}
		rec.Status = newStatus
		if err := s.append(ctx, tx, rec, domain.FieldRepaymentStatus,
			statusValue(previous), statusValue(newStatus), actor); err != nil {
			return err
		}
		if err := s.payments.Update(ctx, tx, rec); err != nil {
			return domain.StorageErr("update payment record", err)
		}
		result = &ApprovalResult{
			PaymentID:      rec.ID,
			LoanID:         rec.LoanID,
			Action:         action,
			PreviousStatus: previous.String(),
			NewStatus:      newStatus.String(),
			Record:         rec,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// restoredStatus finds the status the demand held immediately before it
// entered Paid(Pending Approval): the previous_value of the most recent log
// entry transitioning into it. Missing or unresolvable entries fall back to
// Overdue; the fallback is warned about so data gaps surface in operations.
func (s *statusService) restoredStatus(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord) (domain.RepaymentStatus, error) {
	entry, err := s.activity.LatestTransitionInto(ctx, tx, rec.ID,
		domain.FieldRepaymentStatus, statusValue(domain.StatusPaidPendingApproval))
	if err != nil {
		return 0, domain.StorageErr("load status transition history", err)
	}
	if entry == nil {
		logger.Warn("no logged transition into pending approval, falling back to Overdue",
			"payment_id", rec.ID, "loan_id", rec.LoanID)
		return domain.StatusOverdue, nil
	}
	id, err := strconv.ParseInt(entry.PreviousValue, 10, 32)
	if err == nil {
		if restored := domain.RepaymentStatus(id); restored.Valid() {
			return restored, nil
		}
	}
	logger.Warn("logged previous status is not a known status, falling back to Overdue",
		"payment_id", rec.ID, "previous_value", entry.PreviousValue)
	return domain.StatusOverdue, nil
}

func (s *statusService) append(ctx context.Context, tx repository.DBTX, rec *domain.PaymentRecord, field domain.FieldType, previous, newValue, actor string) error {
	paymentID := rec.ID
	entry := &domain.ActivityLogEntry{
		LoanID:        rec.LoanID,
		PaymentID:     &paymentID,
		Field:         field,
		PreviousValue: previous,
		NewValue:      newValue,
		ChangedBy:     actor,
	}
	if err := s.activity.Append(ctx, tx, entry); err != nil {
		return domain.StorageErr(fmt.Sprintf("append %s activity entry", field), err)
	}
	return nil
}

func statusValue(s domain.RepaymentStatus) string {
	return strconv.Itoa(int(s))
}
