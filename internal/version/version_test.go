package version

import "testing"

func TestVersion(t *testing.T) {
	if Version != "0.5" {
		t.Errorf("Version = %q, want 0.5", Version)
	}
	if Get() != Version {
		t.Errorf("Get() = %q, want %q", Get(), Version)
	}
}
