package billing

import (
	"strings"
	"time"
)

// termDays maps a normalized payment term to its calendar-day offset.
// Terms not listed here ("Due Today", "Due on receipt", free text) resolve
// to the issue date unchanged.
var termDays = map[string]int{
	"net 7":            7,
	"7 calendar days":  7,
	"net 9":            9,
	"net 14":           14,
	"14 calendar days": 14,
	"net 15":           15,
	"net 30":           30,
	"30 calendar days": 30,
	"net 60":           60,
}

// ResolveDueDate computes an invoice due date from its issue date and
// payment term. Matching is case-insensitive; day arithmetic is plain
// calendar-day addition, not business days.
func ResolveDueDate(issueDate time.Time, term string) time.Time {
	days, ok := termDays[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return issueDate
	}
	return issueDate.AddDate(0, 0, days)
}
