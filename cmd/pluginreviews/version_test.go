package main

import (
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"pluginreviews version ", "commit:", "built:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("expected non-empty version")
	}
	if getCommit() == "" {
		t.Error("expected non-empty commit")
	}
	if getDate() == "" {
		t.Error("expected non-empty date")
	}
}
