package domain

import "time"

// Transaction is one card transaction from the aggregator feed.
//
// Sign convention: positive = charge, negative = credit/payment. The payment
// classifier and the spend aggregator both depend on this convention holding.
// Transactions are immutable once synced, but a resync may delete and
// re-insert a card's whole feed.
type Transaction struct {
	ID             string     `json:"id"`
	CardID         string     `json:"card_id"`
	Description    string     `json:"description"`
	Amount         float64    `json:"amount"`
	Date           time.Time  `json:"date"`
	AuthorizedDate *time.Time `json:"authorized_date,omitempty"`
	Pending        bool       `json:"pending"`
}

// EarliestTransaction returns the transaction with the oldest date, or nil
// for an empty feed. Used by open-date validation.
func EarliestTransaction(txns []Transaction) *Transaction {
	var earliest *Transaction
	for i := range txns {
		if earliest == nil || txns[i].Date.Before(earliest.Date) {
			earliest = &txns[i]
		}
	}
	return earliest
}
