package testkit

import "testing"

var clockSeam = func() string { return "real" }

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &clockSeam, func() string { return "fake" })
		if clockSeam() != "fake" {
			t.Fatalf("swap not applied")
		}
	})
	if clockSeam() != "real" {
		t.Fatalf("swap not restored")
	}
}
