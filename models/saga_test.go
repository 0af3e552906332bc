package models

import "testing"

func TestSagaTransitions(t *testing.T) {
	tests := []struct {
		name string
		from SagaState
		to   SagaState
		want bool
	}{
		{name: "start to plan", from: SagaStarted, to: SagaPlanCreated, want: true},
		{name: "plan to subscription", from: SagaPlanCreated, to: SagaSubscriptionCreated, want: true},
		{name: "subscription to completed", from: SagaSubscriptionCreated, to: SagaCompleted, want: true},
		{name: "any step may fail", from: SagaPlanCreated, to: SagaFailed, want: true},
		{name: "any step may expire", from: SagaSubscriptionCreated, to: SagaExpired, want: true},
		{name: "no skipping plan", from: SagaStarted, to: SagaSubscriptionCreated, want: false},
		{name: "no going back", from: SagaSubscriptionCreated, to: SagaPlanCreated, want: false},
		{name: "completed is terminal", from: SagaCompleted, to: SagaFailed, want: false},
		{name: "expired is terminal", from: SagaExpired, to: SagaCompleted, want: false},
		{name: "increment retry completes", from: SagaIncrementPending, to: SagaCompleted, want: true},
		{name: "increment against missing campaign fails", from: SagaIncrementPending, to: SagaFailed, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanAdvance(tt.to); got != tt.want {
				t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
			}
		})
	}
}

func TestSagaTerminal(t *testing.T) {
	for _, s := range []SagaState{SagaCompleted, SagaFailed, SagaExpired} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []SagaState{SagaStarted, SagaPlanCreated, SagaSubscriptionCreated, SagaIncrementPending} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestActiveSagaStates(t *testing.T) {
	active := ActiveSagaStates()
	if len(active) != 4 {
		t.Fatalf("expected 4 active states, got %d: %v", len(active), active)
	}
	for _, s := range active {
		if s.Terminal() {
			t.Fatalf("%s is terminal and must not be swept as active", s)
		}
	}
}
