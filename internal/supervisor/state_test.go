package supervisor

import "testing"

func TestValidateTransition_ValidMatrix(t *testing.T) {
	t.Parallel()

	valid := [][2]Status{
		{StatusStarting, StatusRunning},
		{StatusStarting, StatusFailed},
		{StatusStarting, StatusCancelled},
		{StatusRunning, StatusCompleted},
		{StatusRunning, StatusFailed},
		{StatusRunning, StatusCancelled},
	}
	for _, pair := range valid {
		if err := ValidateTransition(pair[0], pair[1]); err != nil {
			t.Fatalf("expected valid transition %s->%s, got %v", pair[0], pair[1], err)
		}
	}
}

func TestValidateTransition_TerminalStatesHaveNoExits(t *testing.T) {
	t.Parallel()

	for _, from := range []Status{StatusCompleted, StatusFailed, StatusCancelled} {
		for _, to := range []Status{StatusStarting, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled} {
			if err := ValidateTransition(from, to); err == nil {
				t.Fatalf("expected invalid transition %s->%s", from, to)
			}
		}
	}
}

func TestValidateTransition_InvalidTransitions(t *testing.T) {
	t.Parallel()

	invalid := [][2]Status{
		{StatusStarting, StatusCompleted},
		{StatusRunning, StatusStarting},
		{StatusRunning, StatusRunning},
	}
	for _, pair := range invalid {
		if err := ValidateTransition(pair[0], pair[1]); err == nil {
			t.Fatalf("expected invalid transition %s->%s", pair[0], pair[1])
		}
	}
}

func TestValidateStatus_Unknown(t *testing.T) {
	t.Parallel()

	if err := ValidateStatus(Status("paused")); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if err := ValidateTransition(Status("paused"), StatusRunning); err == nil {
		t.Fatalf("expected error for unknown from-status")
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[Status]bool{
		StatusStarting:  false,
		StatusRunning:   false,
		StatusCompleted: true,
		StatusFailed:    true,
		StatusCancelled: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Fatalf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
