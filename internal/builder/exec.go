package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/leslieo2/go-hot-reload/internal/constants"
)

var ErrBuildTimeout = errors.New("build command timed out")

// execute spawns the configured build command for one task attempt and
// classifies its output. Spawn failure, non-zero exit, and timeout all
// produce a failed result.
func (m *Manager) execute(ctx context.Context, task *BuildTask) BuildResult {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	spanCtx, span := m.tracer.StartSpan(ctx, "build.execute",
		attribute.String("build.task_id", task.ID),
		attribute.String("build.type", string(task.Type)),
		attribute.Int("build.retry", task.RetryCount),
	)
	defer span.End()

	cmd := exec.CommandContext(spanCtx, m.cfg.Command, m.cfg.Args...)
	cmd.Dir = m.cfg.WorkingDir
	cmd.Env = os.Environ()
	for k, v := range m.cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := BuildResult{
		TaskID:   task.ID,
		Type:     task.Type,
		Duration: duration,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	result.Errors, result.Warnings = classifyOutput(result.Stderr)

	applyOutcome(&result, err, spanCtx.Err())

	span.SetAttributes(
		attribute.Bool("build.success", result.Success),
		attribute.Int("build.exit_code", result.ExitCode),
	)
	return result
}

// applyOutcome settles the result from the run error. A command that exits
// zero is a success even when the deadline fires in the same instant; the
// deadline only explains a run that actually failed.
func applyOutcome(result *BuildResult, runErr, ctxErr error) {
	switch {
	case runErr == nil:
		result.Success = true
	case errors.Is(ctxErr, context.DeadlineExceeded):
		result.Errors = append(result.Errors, ErrBuildTimeout.Error())
	default:
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, runErr.Error())
		}
	}
}

// classifyOutput splits the command's error stream into error and warning
// lines using the compiler markers `error:`/`error[` and
// `warning:`/`warning[`.
func classifyOutput(stderr string) (errorLines, warningLines []string) {
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.Contains(trimmed, constants.MarkerError) || strings.Contains(trimmed, constants.MarkerErrorCode):
			errorLines = append(errorLines, trimmed)
		case strings.Contains(trimmed, constants.MarkerWarning) || strings.Contains(trimmed, constants.MarkerWarningCode):
			warningLines = append(warningLines, trimmed)
		}
	}
	return errorLines, warningLines
}
