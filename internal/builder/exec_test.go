package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leslieo2/go-hot-reload/internal/detector"
)

func TestClassifyOutput(t *testing.T) {
	stderr := `Compiling app v0.1.0
error: expected identifier, found keyword
warning: unused variable ` + "`x`" + `
error[E0308]: mismatched types
warning[W0612]: unused import
note: see the docs

all done`

	errorLines, warningLines := classifyOutput(stderr)

	assert.Equal(t, []string{
		"error: expected identifier, found keyword",
		"error[E0308]: mismatched types",
	}, errorLines)
	assert.Equal(t, []string{
		"warning: unused variable `x`",
		"warning[W0612]: unused import",
	}, warningLines)
}

func TestClassifyOutput_Empty(t *testing.T) {
	errorLines, warningLines := classifyOutput("")
	assert.Empty(t, errorLines)
	assert.Empty(t, warningLines)
}

func TestApplyOutcome(t *testing.T) {
	deadline := context.DeadlineExceeded

	t.Run("success at deadline stays success", func(t *testing.T) {
		result := BuildResult{}
		applyOutcome(&result, nil, deadline)
		assert.True(t, result.Success)
		assert.Empty(t, result.Errors)
	})

	t.Run("failed run at deadline is a timeout", func(t *testing.T) {
		result := BuildResult{}
		applyOutcome(&result, errors.New("signal: killed"), deadline)
		assert.False(t, result.Success)
		assert.Contains(t, result.Errors, ErrBuildTimeout.Error())
	})

	t.Run("plain failure keeps run error", func(t *testing.T) {
		result := BuildResult{}
		applyOutcome(&result, errors.New("exit status 2"), nil)
		assert.False(t, result.Success)
		assert.Equal(t, []string{"exit status 2"}, result.Errors)
	})

	t.Run("classified stderr wins over run error", func(t *testing.T) {
		result := BuildResult{Errors: []string{"error: bad token"}}
		applyOutcome(&result, errors.New("exit status 1"), nil)
		assert.False(t, result.Success)
		assert.Equal(t, []string{"error: bad token"}, result.Errors)
	})
}

func TestClassifyTask(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		incremental bool
		wantType    BuildType
	}{
		{"all stylesheets", []string{"a.css", "b.scss"}, true, BuildHotReload},
		{"critical forces full", []string{"a.css", "go.mod"}, true, BuildFull},
		{"mixed incremental", []string{"a.css", "main.go"}, true, BuildIncremental},
		{"mixed without incremental", []string{"a.css", "main.go"}, false, BuildFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := detector.ClassifyAll(tt.files)
			buildType, _ := classifyTask(changes, tt.incremental)
			assert.Equal(t, tt.wantType, buildType)
		})
	}
}
