package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldos/internal/billing"
)

func TestResolveDueDate(t *testing.T) {
	issue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		term string
		want time.Time
	}{
		{"Net 7", issue.AddDate(0, 0, 7)},
		{"7 calendar days", issue.AddDate(0, 0, 7)},
		{"net 9", issue.AddDate(0, 0, 9)},
		{"NET 14", issue.AddDate(0, 0, 14)},
		{"14 Calendar Days", issue.AddDate(0, 0, 14)},
		{"Net 15", issue.AddDate(0, 0, 15)},
		{"Net 30", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"30 calendar days", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		{"Net 60", issue.AddDate(0, 0, 60)},
		{"Due Today", issue},
		{"Due on receipt", issue},
		{"", issue},
		{"whenever", issue},
	}

	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			assert.Equal(t, tc.want, billing.ResolveDueDate(issue, tc.term))
		})
	}
}

func TestResolveDueDate_CrossesMonthBoundary(t *testing.T) {
	issue := time.Date(2024, 2, 20, 9, 30, 0, 0, time.UTC)
	due := billing.ResolveDueDate(issue, "net 14")
	// 2024 is a leap year; calendar-day addition, not business days.
	assert.Equal(t, time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC), due)
}
