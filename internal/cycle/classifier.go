package cycle

import "strings"

// IsPayment reports whether a transaction's descriptive text looks like a
// payment or credit against the card rather than a purchase.
//
// This is a keyword heuristic: a merchant whose name happens to contain one
// of the keywords will be misclassified. That is an accepted limitation of
// the available signal, not something to paper over downstream.
func (p Params) IsPayment(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range p.PaymentKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
