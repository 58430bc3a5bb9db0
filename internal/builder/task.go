package builder

import (
	"time"

	"github.com/google/uuid"

	"github.com/leslieo2/go-hot-reload/internal/detector"
)

// BuildType classifies one unit of rebuild work.
type BuildType string

const (
	BuildFull        BuildType = "full"
	BuildIncremental BuildType = "incremental"
	BuildHotReload   BuildType = "hot_reload"
	BuildTest        BuildType = "test"
	BuildRelease     BuildType = "release"
)

// BuildTask is one queued unit of rebuild work.
type BuildTask struct {
	ID         string
	Files      []string
	Type       BuildType
	Priority   int
	CreatedAt  time.Time
	RetryCount int
}

func newTask(files []string, buildType BuildType, priority int) *BuildTask {
	return &BuildTask{
		ID:        uuid.NewString(),
		Files:     files,
		Type:      buildType,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
}

// classifyTask derives the task's build type and priority from a batch of
// classified changes: any critical change forces a full build; a batch of
// pure stylesheet changes stays a hot reload; everything else is incremental
// when enabled.
func classifyTask(changes []detector.FileChange, incrementalEnabled bool) (BuildType, int) {
	allHot := len(changes) > 0
	priority := 1
	for _, c := range changes {
		if c.Critical() {
			return BuildFull, detector.ChangeFull.Priority()
		}
		if c.Type != detector.ChangeHotReload {
			allHot = false
		}
		if p := c.Type.Priority(); p > priority {
			priority = p
		}
	}
	if allHot {
		return BuildHotReload, priority
	}
	if incrementalEnabled {
		return BuildIncremental, priority
	}
	return BuildFull, detector.ChangeFull.Priority()
}

// BuildResult is the immutable outcome of one build attempt.
type BuildResult struct {
	TaskID   string
	Type     BuildType
	Success  bool
	Duration time.Duration
	Stdout   string
	Stderr   string
	ExitCode int
	Errors   []string
	Warnings []string
}
