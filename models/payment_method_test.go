package models

import "testing"

func TestPaymentMethodFromGatewayID(t *testing.T) {
	tests := []struct {
		paymentId string
		want      PaymentMethod
	}{
		{paymentId: "OFFLINE_PAYMENT", want: PaymentMethodOffline},
		{paymentId: "OFFLINE_PAYMENT_1712000000", want: PaymentMethodOffline},
		{paymentId: "CHECK-00412", want: PaymentMethodCheck},
		{paymentId: "BANK-NEFT-9981", want: PaymentMethodBank},
		{paymentId: "UPI-941201", want: PaymentMethodUPI},
		{paymentId: "pay_NfX8aQ3gZ1b2c3", want: PaymentMethodOnline},
		{paymentId: "", want: PaymentMethodOnline},
	}

	for _, tt := range tests {
		t.Run(tt.paymentId, func(t *testing.T) {
			got := PaymentMethodFromGatewayID(tt.paymentId)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMethodOnline, PaymentMethodOffline, PaymentMethodCheck, PaymentMethodBank, PaymentMethodUPI} {
		if !m.Valid() {
			t.Fatalf("%q should be valid", m)
		}
	}
	for _, m := range []PaymentMethod{"", "banana", "ONLINE", "cash "} {
		if m.Valid() {
			t.Fatalf("%q should be rejected", m)
		}
	}
}

func TestEffectivePaymentMethodPrefersExplicitField(t *testing.T) {
	sp := Sponsorship{
		PaymentMethod:     PaymentMethodBank,
		RazorpayPaymentId: "UPI-1234",
	}
	if got := sp.EffectivePaymentMethod(); got != PaymentMethodBank {
		t.Fatalf("explicit field should win, got %q", got)
	}
}

func TestEffectivePaymentMethodLegacyFallback(t *testing.T) {
	sp := Sponsorship{RazorpayPaymentId: "CHECK-7"}
	if got := sp.EffectivePaymentMethod(); got != PaymentMethodCheck {
		t.Fatalf("legacy rows should resolve from the id prefix, got %q", got)
	}
}
