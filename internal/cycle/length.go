package cycle

import "time"

// EstimateLength infers the nominal number of days in a billing cycle from
// the statement-close date and the payment due date.
//
// The gap between the two (the grace period) is a proxy signal: 20-25 days
// clusters with 30-day cycles, 26-32 days with 31-day cycles. Anything else,
// including a missing or nonsensical date pair, keeps the default.
func (p Params) EstimateLength(statementDate, dueDate *time.Time) int {
	if statementDate == nil || dueDate == nil {
		return p.DefaultCycleDays
	}

	grace := daysBetween(*statementDate, *dueDate)
	switch {
	case grace >= p.Grace30Min && grace <= p.Grace30Max:
		return 30
	case grace >= p.Grace31Min && grace <= p.Grace31Max:
		return 31
	default:
		return p.DefaultCycleDays
	}
}
