// Package cycle derives a card's billing-cycle history from the sparse and
// often inconsistent data a bank aggregator reports: one statement-close
// date, an optional due date, a transaction feed of unknown completeness,
// and an unreliable open date.
//
// Everything in this package is pure and deterministic. Callers thread an
// explicit "as of" time through every entry point; nothing here reads the
// wall clock or performs I/O.
package cycle

import "time"

// Params holds the tunable constants of the derivation heuristics.
// They are named here (rather than buried in control flow) so tests can
// exercise boundary values directly.
type Params struct {
	// DefaultCycleDays is the assumed cycle length when the grace period
	// gives no usable signal.
	DefaultCycleDays int

	// Grace-period buckets (inclusive, in days). Issuers with slightly
	// irregular statement timing still cluster into 30- or 31-day billing
	// periods; the statement-to-due gap is the proxy we bucket on.
	Grace30Min, Grace30Max int // maps to a 30-day cycle
	Grace31Min, Grace31Max int // maps to a 31-day cycle

	// HistoryMonths is how far back historical cycles are generated,
	// measured from the as-of date.
	HistoryMonths int

	// OpenDateSkewDays: a reported open date predating the earliest known
	// transaction by more than this is treated as unreliable.
	OpenDateSkewDays int

	// OpenDateBufferDays is subtracted from the earliest transaction when
	// substituting a corrected open date.
	OpenDateBufferDays int

	// Open-date fallbacks when the card has no transactions at all.
	OpenDateStatementFallbackMonths int // lastStatementDate - N months
	OpenDateDefaultFallbackMonths   int // asOf - N months

	// MinExpectedHistory: producing fewer closed cycles than this, despite a
	// transaction feed that spans further back, is flagged (logged and
	// counted) rather than silently absorbed. It usually means the open
	// date is still wrong.
	MinExpectedHistory int

	// PaymentKeywords are matched as lower-case substrings of a
	// transaction's description to classify it as a payment.
	PaymentKeywords []string
}

// DefaultParams returns the production heuristics.
func DefaultParams() Params {
	return Params{
		DefaultCycleDays: 30,
		Grace30Min:       20,
		Grace30Max:       25,
		Grace31Min:       26,
		Grace31Max:       32,

		HistoryMonths: 12,

		OpenDateSkewDays:                90,
		OpenDateBufferDays:              7,
		OpenDateStatementFallbackMonths: 6,
		OpenDateDefaultFallbackMonths:   12,

		MinExpectedHistory: 3,

		PaymentKeywords: []string{
			"payment",
			"pymt",
			"autopay",
			"auto-pay",
			"auto pay",
			"ach pmt",
			"epay",
			"e-pay",
			"billpay",
			"bill pay",
			"directpay",
		},
	}
}

// day truncates t to midnight UTC. All window arithmetic happens on whole
// calendar days.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns b - a in whole days (a and b truncated to days).
func daysBetween(a, b time.Time) int {
	return int(day(b).Sub(day(a)).Hours() / 24)
}
