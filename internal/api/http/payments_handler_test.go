package http

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Prosparity-git/collection/internal/domain"
)

func TestParseFilter(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/payments", nil)
		c := parseFilter(r)
		assert.Equal(t, 0, c.Offset)
		assert.Equal(t, 20, c.Limit)
		assert.Empty(t, c.LoanIDs)
	})

	t.Run("CommaSeparatedSets", func(t *testing.T) {
		r := httptest.NewRequest("GET",
			"/api/v1/payments?loan_id=1,2,junk&status=Paid,Overdue+Paid&ptp_date=today,no_ptp&branch=Pune", nil)
		c := parseFilter(r)
		assert.Equal(t, []int64{1, 2}, c.LoanIDs)
		assert.Equal(t, []string{"Paid", "Overdue Paid"}, c.Statuses)
		assert.Equal(t, []domain.PTPBucket{domain.PTPToday, domain.PTPNone}, c.PTP)
		assert.Equal(t, []string{"Pune"}, c.Branches)
	})

	t.Run("LimitClamped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/v1/payments?limit=500&offset=40", nil)
		c := parseFilter(r)
		assert.Equal(t, 20, c.Limit, "limits above 100 fall back to the default")
		assert.Equal(t, 40, c.Offset)

		r = httptest.NewRequest("GET", "/api/v1/payments?limit=50", nil)
		assert.Equal(t, 50, parseFilter(r).Limit)
	})
}
