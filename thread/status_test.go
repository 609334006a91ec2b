package thread

import "testing"

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		want     string
		terminal bool
		active   bool
		start    bool
	}{
		{StatusCreated, "created", false, false, true},
		{StatusRunning, "running", false, true, false},
		{StatusStopping, "stopping", false, true, false},
		{StatusStopped, "stopped", true, false, true},
		{StatusFinished, "finished", true, false, true},
		{StatusError, "error", true, false, true},
		{StatusDetached, "detached", true, false, false},
		{Status(42), "unknown", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.status.canStart(); got != tt.start {
				t.Errorf("canStart() = %v, want %v", got, tt.start)
			}
		})
	}
}
