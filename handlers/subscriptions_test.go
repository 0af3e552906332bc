package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name   string
		donor  string
		phone  string
		amount float64
		period string
		ok     bool
	}{
		{name: "valid monthly", donor: "Fathima", phone: "9847012345", amount: 100, period: "monthly", ok: true},
		{name: "valid daily", donor: "Rashid", phone: "9847012345", amount: 10, period: "daily", ok: true},
		{name: "missing name", donor: "", phone: "9847012345", amount: 100, period: "monthly", ok: false},
		{name: "short phone", donor: "Fathima", phone: "98470", amount: 100, period: "monthly", ok: false},
		{name: "zero amount", donor: "Fathima", phone: "9847012345", amount: 0, period: "monthly", ok: false},
		{name: "negative amount", donor: "Fathima", phone: "9847012345", amount: -5, period: "monthly", ok: false},
		{name: "unknown period", donor: "Fathima", phone: "9847012345", amount: 100, period: "fortnightly", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.donor, tt.phone, tt.amount, tt.period)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
