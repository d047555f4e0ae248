package service

import (
	"context"
	"time"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/repository"
)

type listingService struct {
	listing   repository.ListingRepository
	hydration repository.HydrationRepository
	overdue   OverdueService
	now       func() time.Time
}

func NewListingService(
	listing repository.ListingRepository,
	hydration repository.HydrationRepository,
	overdue OverdueService,
) ListingService {
	return &listingService{
		listing:   listing,
		hydration: hydration,
		overdue:   overdue,
		now:       time.Now,
	}
}

// ListPayments evaluates the compiled predicate twice (count, then page) and
// hydrates the page rows with a fixed number of batched lookups keyed by the
// page's payment and loan ids. The query count never depends on the page
// size.
func (s *listingService) ListPayments(ctx context.Context, c domain.FilterCriteria) (*domain.ListingPage, error) {
	now := s.now()

	total, err := s.listing.Count(ctx, c, now)
	if err != nil {
		return nil, domain.StorageErr("count filtered payments", err)
	}
	page := &domain.ListingPage{Total: total, Results: []domain.PaymentRecordView{}}
	if total == 0 {
		return page, nil
	}

	rows, err := s.listing.Page(ctx, c, now)
	if err != nil {
		return nil, domain.StorageErr("load filtered payment page", err)
	}
	if len(rows) == 0 {
		return page, nil
	}

	paymentIDs := make([]int64, 0, len(rows))
	loanIDs := make([]int64, 0, len(rows))
	seenLoans := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		paymentIDs = append(paymentIDs, row.PaymentID)
		if _, ok := seenLoans[row.LoanID]; !ok {
			seenLoans[row.LoanID] = struct{}{}
			loanIDs = append(loanIDs, row.LoanID)
		}
	}

	contactCalls, err := s.hydration.LatestContactCalling(ctx, paymentIDs)
	if err != nil {
		return nil, domain.StorageErr("hydrate contact calling", err)
	}
	demandCalls, err := s.hydration.LatestDemandCalling(ctx, paymentIDs)
	if err != nil {
		return nil, domain.StorageErr("hydrate demand calling", err)
	}
	nach, err := s.hydration.LatestNach(ctx, loanIDs)
	if err != nil {
		return nil, domain.StorageErr("hydrate nach status", err)
	}
	repossessions, err := s.hydration.LatestRepossession(ctx, loanIDs)
	if err != nil {
		return nil, domain.StorageErr("hydrate repossession status", err)
	}
	dpd, err := s.hydration.LatestDPDBucket(ctx, loanIDs)
	if err != nil {
		return nil, domain.StorageErr("hydrate dpd buckets", err)
	}
	overdue, err := s.overdue.CurrentOverdue(ctx, loanIDs)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		row := &rows[i]
		if cs, ok := contactCalls[row.PaymentID]; ok {
			row.CallingStatuses = cs
		}
		row.DemandCallingStatus = demandCalls[row.PaymentID]
		if n, ok := nach[row.LoanID]; ok {
			nachCopy := n
			row.NachStatus = &nachCopy
		}
		if rep, ok := repossessions[row.LoanID]; ok {
			repCopy := rep
			row.Repossession = &repCopy
		}
		row.DPDBucket = dpd[row.LoanID]
		row.CurrentOverdue = overdue[row.LoanID]
	}
	page.Results = rows
	return page, nil
}

func (s *listingService) Summary(ctx context.Context, c domain.FilterCriteria) (*domain.StatusSummary, error) {
	counts, err := s.listing.StatusCounts(ctx, c, s.now())
	if err != nil {
		return nil, domain.StorageErr("count payments by status", err)
	}
	summary := &domain.StatusSummary{ByStatus: counts}
	for _, n := range counts {
		summary.Total += n
	}
	return summary, nil
}

func (s *listingService) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	opts, err := s.listing.FilterOptions(ctx, s.now())
	if err != nil {
		return nil, domain.StorageErr("load filter options", err)
	}
	return opts, nil
}
