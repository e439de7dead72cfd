package system

import "testing"

func TestFrameBudget(t *testing.T) {
	const frameSize = 256 * 1024

	tests := []struct {
		name      string
		available uint64
		want      int
	}{
		{"plenty of memory caps at the hard limit", 64 << 30, maxBufferedFrames},
		{"tight memory floors at the minimum", 64 << 20, minBufferedFrames},
		{"mid range uses half of available", 4 << 30, (4 << 30) / 2 / frameSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frameBudget(tt.available, frameSize)
			if got != tt.want {
				t.Errorf("frameBudget(%d) = %d, want %d", tt.available, got, tt.want)
			}
		})
	}
}

func TestFrameBudgetZeroEstimate(t *testing.T) {
	if got := frameBudget(1<<30, 0); got != maxBufferedFrames {
		t.Errorf("frameBudget with zero estimate = %d, want %d", got, maxBufferedFrames)
	}
}
