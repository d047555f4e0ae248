package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/Prosparity-git/collection/internal/domain"
	"github.com/Prosparity-git/collection/internal/logger"
	"github.com/Prosparity-git/collection/internal/service"
)

// PaymentsHandler exposes the collection core over HTTP.
type PaymentsHandler struct {
	listing  service.ListingService
	status   service.StatusService
	overdue  service.OverdueService
	activity service.ActivityService
}

func NewPaymentsHandler(
	listing service.ListingService,
	status service.StatusService,
	overdue service.OverdueService,
	activity service.ActivityService,
) *PaymentsHandler {
	return &PaymentsHandler{
		listing:  listing,
		status:   status,
		overdue:  overdue,
		activity: activity,
	}
}

// parseFilter builds the typed criteria from comma-separated query
// parameters. Unparseable numeric members are dropped, not rejected; drops
// are logged so the decision is visible.
func parseFilter(r *http.Request) domain.FilterCriteria {
	q := r.URL.Query()
	var c domain.FilterCriteria
	var dropped int
	var n int

	c.LoanIDs, n = domain.ParseIDSet(q.Get("loan_id"))
	dropped += n
	c.RepaymentIDs, n = domain.ParseIDSet(q.Get("repayment_id"))
	dropped += n
	c.DemandNums, n = domain.ParseIDSet(q.Get("demand_num"))
	dropped += n
	c.PTP, n = domain.ParsePTPSet(q.Get("ptp_date"))
	dropped += n

	c.EMIMonths = domain.ParseStringSet(q.Get("emi_month"))
	c.Search = domain.ParseStringSet(q.Get("search"))
	c.Branches = domain.ParseStringSet(q.Get("branch"))
	c.Dealers = domain.ParseStringSet(q.Get("dealer"))
	c.Lenders = domain.ParseStringSet(q.Get("lender"))
	c.Statuses = domain.ParseStringSet(q.Get("status"))
	c.RMNames = domain.ParseStringSet(q.Get("rm_name"))
	c.TLNames = domain.ParseStringSet(q.Get("tl_name"))
	c.DPDBuckets = domain.ParseStringSet(q.Get("dpd_bucket"))

	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		c.Offset = offset
	}
	c.Limit = 20
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		c.Limit = limit
	}

	if dropped > 0 {
		logger.Debug("dropped unparseable filter members", "count", dropped, "path", r.URL.Path)
	}
	return c
}

func (h *PaymentsHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	page, err := h.listing.ListPayments(r.Context(), parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PaymentsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.listing.Summary(r.Context(), parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *PaymentsHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.listing.FilterOptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type updateRequest struct {
	RepaymentStatus      *int32           `json:"repayment_status,omitempty"`
	PTPDate              string           `json:"ptp_date,omitempty"` // "2006-01-02" or "clear"
	AmountCollected      *decimal.Decimal `json:"amount_collected,omitempty"`
	IdempotencyKey       string           `json:"idempotency_key,omitempty"`
	PaymentModeID        *int32           `json:"payment_mode_id,omitempty"`
	ContactCallingStatus *int32           `json:"contact_calling_status,omitempty"`
	ContactType          *int32           `json:"contact_type,omitempty"`
	DemandCallingStatus  *int32           `json:"demand_calling_status,omitempty"`
}

func (h *PaymentsHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, domain.Validationf("invalid payment id"))
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body: %v", err))
		return
	}

	fields := domain.UpdateFields{
		CollectedDelta:       req.AmountCollected,
		IdempotencyKey:       req.IdempotencyKey,
		PaymentModeID:        req.PaymentModeID,
		ContactCallingStatus: req.ContactCallingStatus,
		DemandCallingStatus:  req.DemandCallingStatus,
	}
	if req.RepaymentStatus != nil {
		status := domain.RepaymentStatus(*req.RepaymentStatus)
		fields.Status = &status
	}
	if req.ContactType != nil {
		fields.ContactType = domain.ContactType(*req.ContactType)
	}
	switch {
	case req.PTPDate == "":
	case req.PTPDate == "clear":
		fields.ClearPTP = true
	default:
		d, err := time.Parse("2006-01-02", req.PTPDate)
		if err != nil {
			writeError(w, domain.Validationf("invalid ptp_date %q: expected YYYY-MM-DD or \"clear\"", req.PTPDate))
			return
		}
		fields.PTPDate = &d
	}

	rec, err := h.status.ApplyUpdate(r.Context(), paymentID, ActorFromContext(r.Context()), fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type approvalRequest struct {
	Action   string `json:"action"` // "accept" or "reject"
	Comments string `json:"comments,omitempty"`
}

func (h *PaymentsHandler) ProcessApproval(w http.ResponseWriter, r *http.Request) {
	paymentID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, domain.Validationf("invalid payment id"))
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.Validationf("invalid request body: %v", err))
		return
	}

	result, err := h.status.ProcessApproval(r.Context(), paymentID,
		ActorFromContext(r.Context()), service.ApprovalAction(req.Action))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentsHandler) CurrentOverdue(w http.ResponseWriter, r *http.Request) {
	loanIDs, dropped := domain.ParseIDSet(r.URL.Query().Get("loan_ids"))
	if dropped > 0 {
		logger.Debug("dropped unparseable loan ids", "count", dropped)
	}
	if len(loanIDs) == 0 {
		writeError(w, domain.Validationf("loan_ids is required"))
		return
	}

	amounts, err := h.overdue.CurrentOverdue(r.Context(), loanIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	// JSON object keys are strings; render the map loan id by loan id.
	out := make(map[string]*decimal.Decimal, len(amounts))
	for loanID, amount := range amounts {
		out[strconv.FormatInt(loanID, 10)] = amount
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PaymentsHandler) DelayReport(w http.ResponseWriter, r *http.Request) {
	loanID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, domain.Validationf("invalid loan id"))
		return
	}
	rows, err := h.activity.DelayReport(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loan_id":          loanID,
		"total_repayments": len(rows),
		"results":          rows,
	})
}

func (h *PaymentsHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loanID, _ := strconv.ParseInt(q.Get("loan_id"), 10, 64)
	paymentID, _ := strconv.ParseInt(q.Get("repayment_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	daysBack, _ := strconv.Atoi(q.Get("days_back"))

	items, err := h.activity.RecentActivity(r.Context(), loanID, paymentID, limit, daysBack)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
