package domain

import "testing"

func TestPhase_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[Phase][]Phase{
		PhaseRequested:  {PhaseAccepted, PhaseCancelled},
		PhaseAccepted:   {PhaseInProgress, PhaseCancelled},
		PhaseInProgress: {PhaseCompleted, PhaseCancelled},
		PhaseCompleted:  {},
		PhaseCancelled:  {},
	}

	phases := []Phase{PhaseRequested, PhaseAccepted, PhaseInProgress, PhaseCompleted, PhaseCancelled}
	for from, targets := range allowed {
		ok := make(map[Phase]bool)
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range phases {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, ok[to], got)
			}
		}
	}
}

func TestPhase_Terminal(t *testing.T) {
	t.Parallel()

	terminal := map[Phase]bool{
		PhaseRequested:  false,
		PhaseAccepted:   false,
		PhaseInProgress: false,
		PhaseCompleted:  true,
		PhaseCancelled:  true,
	}
	for phase, want := range terminal {
		if got := phase.Terminal(); got != want {
			t.Errorf("%s: expected terminal=%v, got %v", phase, want, got)
		}
	}
}
