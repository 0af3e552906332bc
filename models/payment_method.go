package models

import "strings"

// PaymentMethod is the explicit method a payment was made with. Set at write
// time on every new Donation and Sponsorship.
type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "online"
	PaymentMethodOffline PaymentMethod = "offline"
	PaymentMethodCheck   PaymentMethod = "check"
	PaymentMethodBank    PaymentMethod = "bank_transfer"
	PaymentMethodUPI     PaymentMethod = "upi"
)

// Valid reports whether m is one of the known payment methods. Write paths
// must reject anything else.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodOnline, PaymentMethodOffline, PaymentMethodCheck, PaymentMethodBank, PaymentMethodUPI:
		return true
	}
	return false
}

// PaymentMethodFromGatewayID is a migration shim for legacy rows where the
// method was encoded as a prefix of the gateway payment id. New writes must
// set PaymentMethod explicitly and never rely on this.
func PaymentMethodFromGatewayID(paymentId string) PaymentMethod {
	switch {
	case strings.HasPrefix(paymentId, "OFFLINE_PAYMENT"):
		return PaymentMethodOffline
	case strings.HasPrefix(paymentId, "CHECK-"):
		return PaymentMethodCheck
	case strings.HasPrefix(paymentId, "BANK-"):
		return PaymentMethodBank
	case strings.HasPrefix(paymentId, "UPI-"):
		return PaymentMethodUPI
	default:
		return PaymentMethodOnline
	}
}
