package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Prosparity-git/collection/internal/repository"

	_ "github.com/lib/pq"
)

// Store bundles every repository over one shared connection pool.
type Store struct {
	db *sql.DB
	repository.PaymentRepository
	repository.ActivityLogRepository
	repository.SnapshotRepository
	repository.CallingRepository
	repository.ListingRepository
	repository.HydrationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		PaymentRepository:      NewPaymentRepository(db),
		ActivityLogRepository:  NewActivityLogRepository(db),
		SnapshotRepository:     NewSnapshotRepository(db),
		CallingRepository:      NewCallingRepository(db),
		ListingRepository:      NewListingRepository(db),
		HydrationRepository:    NewHydrationRepository(db),
	}
}

// WithTx runs fn inside one transaction. The record mutation and its activity
// log entries commit together or not at all; any error (or panic) rolls the
// transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.DBTX) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
