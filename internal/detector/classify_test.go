package detector

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"src/styles/main.css", ChangeHotReload},
		{"src/app.SCSS", ChangeHotReload},
		{"theme.less", ChangeHotReload},
		{"src/main.go", ChangeIncremental},
		{"src/lib.rs", ChangeIncremental},
		{"index.html", ChangeIncremental},
		{"go.mod", ChangeFull},
		{"sub/dir/Cargo.toml", ChangeFull},
		{"package.json", ChangeFull},
		{"Makefile", ChangeFull},
		{"build.rs", ChangeFull},
	}

	for _, tt := range tests {
		if got := Classify(tt.path).Type; got != tt.want {
			t.Errorf("Classify(%q).Type = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCritical(t *testing.T) {
	if !Classify("go.mod").Critical() {
		t.Error("go.mod should be critical")
	}
	if Classify("main.css").Critical() {
		t.Error("main.css should not be critical")
	}
}

func TestPriorityOrdering(t *testing.T) {
	if ChangeFull.Priority() <= ChangeIncremental.Priority() {
		t.Error("full must outrank incremental")
	}
	if ChangeIncremental.Priority() <= ChangeHotReload.Priority() {
		t.Error("incremental must outrank hot reload")
	}
}

func TestClassifyAll(t *testing.T) {
	changes := ClassifyAll([]string{"a.css", "go.mod"})
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if changes[0].Type != ChangeHotReload || changes[1].Type != ChangeFull {
		t.Errorf("unexpected classification: %v", changes)
	}
}
