package domain

import "time"

// ============================================================
// Credit Card
// ============================================================

// Card is one credit account tracked through the bank-data aggregator.
//
// Every balance/statement field the aggregator reports is optional: issuers
// routinely omit limits, statement metadata, and open dates, or report them
// wrong. Downstream derivation handles the nil case explicitly instead of
// guessing — see the cycle package.
type Card struct {
	ID        string `json:"id"`
	ItemID    string `json:"item_id"`    // aggregator connection this card belongs to
	AccountID string `json:"account_id"` // aggregator-side account identifier
	Name      string `json:"name"`
	Mask      string `json:"mask"` // last 4 digits, when known

	// BalanceCurrent is signed; its absolute value is the amount owed.
	BalanceCurrent  *float64 `json:"balance_current,omitempty"`
	AvailableCredit *float64 `json:"available_credit,omitempty"`
	CreditLimit     *float64 `json:"credit_limit,omitempty"`

	LastStatementBalance *float64   `json:"last_statement_balance,omitempty"`
	LastStatementDate    *time.Time `json:"last_statement_date,omitempty"`
	NextDueDate          *time.Time `json:"next_due_date,omitempty"`
	MinimumPayment       *float64   `json:"minimum_payment,omitempty"`

	// OpenedAt as reported by the issuer. Frequently absent, future-dated,
	// or off by years; corrected post-hoc and never trusted blindly.
	OpenedAt *time.Time `json:"opened_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardSnapshot is the per-sync view of a card the aggregator returns:
// balances plus whatever statement metadata the issuer exposes.
type CardSnapshot struct {
	AccountID            string     `json:"account_id"`
	Name                 string     `json:"name"`
	Mask                 string     `json:"mask"`
	BalanceCurrent       *float64   `json:"balance_current,omitempty"`
	AvailableCredit      *float64   `json:"available_credit,omitempty"`
	CreditLimit          *float64   `json:"credit_limit,omitempty"`
	LastStatementBalance *float64   `json:"last_statement_balance,omitempty"`
	LastStatementDate    *time.Time `json:"last_statement_date,omitempty"`
	NextDueDate          *time.Time `json:"next_due_date,omitempty"`
	MinimumPayment       *float64   `json:"minimum_payment,omitempty"`
	OpenedAt             *time.Time `json:"opened_at,omitempty"`
}

// ApplySnapshot overwrites the sync-owned fields from a fresh aggregator
// snapshot. Identity fields and the (possibly corrected) open date are kept
// unless the snapshot actually carries a value.
func (c *Card) ApplySnapshot(s *CardSnapshot) {
	if s.Name != "" {
		c.Name = s.Name
	}
	if s.Mask != "" {
		c.Mask = s.Mask
	}
	c.BalanceCurrent = s.BalanceCurrent
	c.AvailableCredit = s.AvailableCredit
	c.CreditLimit = s.CreditLimit
	c.LastStatementBalance = s.LastStatementBalance
	c.LastStatementDate = s.LastStatementDate
	c.NextDueDate = s.NextDueDate
	c.MinimumPayment = s.MinimumPayment
	if s.OpenedAt != nil {
		c.OpenedAt = s.OpenedAt
	}
}

// CardSummary is the read model returned by GET /v1/cards/{cardId}/summary.
// Utilization is omitted when the limit cannot be established.
type CardSummary struct {
	CardID         string   `json:"card_id"`
	Name           string   `json:"name"`
	Mask           string   `json:"mask"`
	BalanceCurrent *float64 `json:"balance_current,omitempty"`
	CreditLimit    *float64 `json:"credit_limit,omitempty"`
	LimitInferred  bool     `json:"limit_inferred"`
	Utilization    *float64 `json:"utilization,omitempty"` // percentage, 0-100+
	CycleCount     int      `json:"cycle_count"`
}
