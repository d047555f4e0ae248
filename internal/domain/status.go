package domain

// RepaymentStatus is the closed set of states a demand can be in. IDs are
// canonical and match the repayment_status seed rows; they also appear as
// string values inside activity_log entries.
type RepaymentStatus int32

const (
	StatusFuture              RepaymentStatus = 1
	StatusOverdue             RepaymentStatus = 2
	StatusPartiallyPaid       RepaymentStatus = 3
	StatusPaid                RepaymentStatus = 4
	StatusForeclose           RepaymentStatus = 5
	StatusPaidPendingApproval RepaymentStatus = 6
	StatusPaidRejected        RepaymentStatus = 7
)

// StatusOverduePaid is a derived, read-time label: status is Paid and the
// payment landed after the demand date. It is never stored.
const StatusOverduePaidName = "Overdue Paid"

var statusNames = map[RepaymentStatus]string{
	StatusFuture:              "Future",
	StatusOverdue:             "Overdue",
	StatusPartiallyPaid:       "Partially Paid",
	StatusPaid:                "Paid",
	StatusForeclose:           "Foreclose",
	StatusPaidPendingApproval: "Paid(Pending Approval)",
	StatusPaidRejected:        "Paid Rejected",
}

var statusByName = func() map[string]RepaymentStatus {
	m := make(map[string]RepaymentStatus, len(statusNames))
	for id, name := range statusNames {
		m[name] = id
	}
	return m
}()

func (s RepaymentStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is one of the seven known statuses.
func (s RepaymentStatus) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// StatusByName resolves a display name back to its canonical id.
func StatusByName(name string) (RepaymentStatus, bool) {
	s, ok := statusByName[name]
	return s, ok
}

// AllStatusNames returns the display names in id order, used by the
// filter-options endpoint.
func AllStatusNames() []string {
	names := make([]string, 0, len(statusNames))
	for s := StatusFuture; s <= StatusPaidRejected; s++ {
		names = append(names, statusNames[s])
	}
	return names
}
