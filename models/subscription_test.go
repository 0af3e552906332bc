package models

import "testing"

func TestValidatePeriod(t *testing.T) {
	for _, period := range []string{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly} {
		if err := ValidatePeriod(period); err != nil {
			t.Fatalf("%s should be valid: %v", period, err)
		}
	}
	for _, period := range []string{"", "hourly", "Monthly", "fortnightly"} {
		if err := ValidatePeriod(period); err == nil {
			t.Fatalf("%q should be rejected", period)
		}
	}
}

func TestGatewayTotalCount(t *testing.T) {
	tests := []struct {
		period string
		want   int
	}{
		{period: PeriodDaily, want: 3650},
		{period: PeriodWeekly, want: 520},
		{period: PeriodMonthly, want: 120},
		{period: PeriodYearly, want: 10},
		{period: "bogus", want: 0},
	}
	for _, tt := range tests {
		if got := GatewayTotalCount(tt.period); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.period, tt.want, got)
		}
	}
}
