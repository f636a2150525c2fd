package sysexec

import (
	"errors"
	"testing"
)

func TestWrappers(t *testing.T) {
	base := errors.New("boom")
	if err := Unavailable("lsmod", base); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Unavailable should wrap ErrSourceUnavailable: %v", err)
	}
	if err := Missing("ps", base); !errors.Is(err, ErrCapabilityMissing) {
		t.Errorf("Missing should wrap ErrCapabilityMissing: %v", err)
	}
}
