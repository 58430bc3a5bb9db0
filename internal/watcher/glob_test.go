package watcher

import "testing"

func TestMatchesGlobPattern(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"src/main.x", "**/*.x", true},
		{"main.x", "**/*.x", true},
		{"src/deep/nested/main.x", "**/*.x", true},
		{"src/main.x", "**/*.y", false},
		{"target/debug/app", "target/**", true},
		{"target", "target/**", true},
		{"src/target/app", "target/**", false},
		{"src/target/app", "**/target/**", true},
		{"node_modules/pkg/index.js", "node_modules/**", true},
		{"a/b.tmp", "**/*.tmp", true},
		{"a/b.tmp", "*.tmp", false},
		{"b.tmp", "*.tmp", true},
		{"src/style.css", "src/*.css", true},
		{"src/sub/style.css", "src/*.css", false},
		{".git/config", "**/.git/**", true},
		{"", "**", true},
	}

	for _, tt := range tests {
		if got := MatchesGlobPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("MatchesGlobPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}

func TestIgnored(t *testing.T) {
	patterns := []string{"target/**", "**/*.swp"}

	if !ignored("target/debug/x", patterns) {
		t.Error("expected target/debug/x to be ignored")
	}
	if !ignored("src/.main.go.swp", patterns) {
		t.Error("expected swp file to be ignored")
	}
	if ignored("src/main.go", patterns) {
		t.Error("src/main.go should not be ignored")
	}
}
