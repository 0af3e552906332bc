package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountToPaise(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   int64
	}{
		{name: "whole rupees", amount: 100, want: 10000},
		{name: "with paise", amount: 99.5, want: 9950},
		{name: "float drift rounds correctly", amount: 19.99, want: 1999},
		{name: "zero", amount: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountToPaise(tt.amount))
		})
	}
}
