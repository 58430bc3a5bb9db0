package builder

import (
	"sync"
	"time"
)

// BuildStats is the running aggregate over all build attempts.
type BuildStats struct {
	TotalBuilds      int
	SuccessfulBuilds int
	FailedBuilds     int
	AverageDuration  time.Duration
	FastestDuration  time.Duration
	SlowestDuration  time.Duration
	ByType           map[BuildType]int
}

type statsTracker struct {
	mu            sync.Mutex
	stats         BuildStats
	totalDuration time.Duration
}

func newStatsTracker() *statsTracker {
	return &statsTracker{stats: BuildStats{ByType: make(map[BuildType]int)}}
}

// record updates the aggregate exactly once per completed attempt.
func (s *statsTracker) record(result BuildResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalBuilds++
	if result.Success {
		s.stats.SuccessfulBuilds++
	} else {
		s.stats.FailedBuilds++
	}
	s.stats.ByType[result.Type]++

	s.totalDuration += result.Duration
	s.stats.AverageDuration = s.totalDuration / time.Duration(s.stats.TotalBuilds)
	if s.stats.FastestDuration == 0 || result.Duration < s.stats.FastestDuration {
		s.stats.FastestDuration = result.Duration
	}
	if result.Duration > s.stats.SlowestDuration {
		s.stats.SlowestDuration = result.Duration
	}
}

// snapshot returns a copy, including the by-type map.
func (s *statsTracker) snapshot() BuildStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.ByType = make(map[BuildType]int, len(s.stats.ByType))
	for k, v := range s.stats.ByType {
		out.ByType[k] = v
	}
	return out
}
