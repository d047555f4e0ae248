package domain

import (
	"strconv"
	"strings"
)

// PTPBucket is a symbolic promise-to-pay date filter, resolved against the
// evaluation-time current date by the listing engine.
type PTPBucket string

const (
	PTPOverdue  PTPBucket = "overdue"
	PTPToday    PTPBucket = "today"
	PTPTomorrow PTPBucket = "tomorrow"
	PTPFuture   PTPBucket = "future"
	PTPNone     PTPBucket = "no_ptp"
)

// PTPBuckets lists the recognized symbolic values in presentation order.
var PTPBuckets = []PTPBucket{PTPOverdue, PTPToday, PTPTomorrow, PTPFuture, PTPNone}

func ptpBucketKnown(b PTPBucket) bool {
	switch b {
	case PTPOverdue, PTPToday, PTPTomorrow, PTPFuture, PTPNone:
		return true
	}
	return false
}

// FilterCriteria is the transient, fully parsed query for the filtered
// listing. Every field is optional and may hold several values; values within
// a field are OR'd, distinct fields are AND'd. Never persisted.
type FilterCriteria struct {
	LoanIDs      []int64
	RepaymentIDs []int64
	DemandNums   []int64
	EMIMonths    []string // Jan-06 style month labels
	Search       []string
	Branches     []string
	Dealers      []string
	Lenders      []string
	Statuses     []string // display names; may include the synthetic "Overdue Paid"
	RMNames      []string
	TLNames      []string
	PTP          []PTPBucket
	DPDBuckets   []string

	Offset int
	Limit  int
}

// ParseStringSet splits a comma-separated boundary value into a trimmed set.
// Empty members are dropped.
func ParseStringSet(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseIDSet parses a comma-separated list of numeric identifiers.
// Non-numeric members are dropped rather than failing the whole filter; the
// count of dropped members is returned so the boundary can record the
// decision.
func ParseIDSet(raw string) (ids []int64, dropped int) {
	for _, part := range ParseStringSet(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			dropped++
			continue
		}
		ids = append(ids, id)
	}
	return ids, dropped
}

// ParsePTPSet parses the symbolic PTP bucket filter; unknown bucket names are
// dropped.
func ParsePTPSet(raw string) (buckets []PTPBucket, dropped int) {
	for _, part := range ParseStringSet(raw) {
		b := PTPBucket(strings.ToLower(part))
		if !ptpBucketKnown(b) {
			dropped++
			continue
		}
		buckets = append(buckets, b)
	}
	return buckets, dropped
}
