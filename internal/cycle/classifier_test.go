package cycle

import "testing"

func TestIsPayment(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		description string
		want        bool
	}{
		{"PAYMENT THANK YOU", true},
		{"Online Pymt Received", true},
		{"AUTOPAY RECEIVED", true},
		{"Auto-Pay 03/15", true},
		{"auto pay web", true},
		{"ACH PMT CHASE", true},
		{"EPAY TRANSFER", true},
		{"E-Pay confirmation", true},
		{"BILLPAY 1234", true},
		{"Bill Pay to card", true},
		{"DIRECTPAY VISA", true},
		{"STARBUCKS #4421", false},
		{"AMAZON MKTPLACE", false},
		{"WHOLEFDS MARKET", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.IsPayment(tt.description); got != tt.want {
			t.Errorf("IsPayment(%q) = %v, want %v", tt.description, got, tt.want)
		}
	}
}

func TestIsPaymentCaseInsensitive(t *testing.T) {
	p := DefaultParams()
	if !p.IsPayment("payment received") {
		t.Error("lowercase payment should classify")
	}
	if !p.IsPayment("PaYmEnT") {
		t.Error("mixed case payment should classify")
	}
}
