package wsserver

import "testing"

func TestAdmission_PerIPLimit(t *testing.T) {
	a := newAdmission(1, 1)

	if !a.allow("10.0.0.1") {
		t.Fatal("first connection should be admitted")
	}
	if a.allow("10.0.0.1") {
		t.Fatal("burst exhausted, second connection should be rejected")
	}
	// A different IP has its own bucket.
	if !a.allow("10.0.0.2") {
		t.Fatal("different ip should be admitted")
	}
}
