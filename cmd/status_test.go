package cmd

import (
	"os"
	"strings"
	"testing"
)

func TestStatusDefaults(t *testing.T) {
	isolate(t)

	out, errOut, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	// cmd.Printf writes to the error stream.
	all := out + errOut
	for _, want := range []string{"Transport: log", "Tracking: enabled", "Report interval: 5s", "User: (not set)", "Device ID: "} {
		if !strings.Contains(all, want) {
			t.Errorf("status output missing %q:\n%s", want, all)
		}
	}
}

func TestStatusShowsProjectOverrides(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".reelwatchconfig", []byte(`{"transport": "nats", "tracking_enabled": false, "user_id": "u1"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	all := out + errOut
	for _, want := range []string{"Transport: nats", "Tracking: disabled", "User: u1"} {
		if !strings.Contains(all, want) {
			t.Errorf("status output missing %q:\n%s", want, all)
		}
	}
}
