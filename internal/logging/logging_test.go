package logging //nolint:testpackage // Tests exercise the package-level setup.

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		debugOn bool
		infoOn  bool
	}{
		{"default", false, false, false, true},
		{"verbose", true, false, true, true},
		{"quiet", false, true, false, false},
		{"quiet wins", true, true, false, false},
	}

	for _, tt := range tests {
		Setup(tt.verbose, tt.quiet)

		ctx := context.Background()
		logger := slog.Default()

		if got := logger.Enabled(ctx, slog.LevelDebug); got != tt.debugOn {
			t.Errorf("%s: debug enabled = %v, want %v", tt.name, got, tt.debugOn)
		}

		if got := logger.Enabled(ctx, slog.LevelInfo); got != tt.infoOn {
			t.Errorf("%s: info enabled = %v, want %v", tt.name, got, tt.infoOn)
		}
	}
}
