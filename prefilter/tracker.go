package prefilter

// Tracker wraps a Prefilter with effectiveness tracking.
//
// Every candidate the prefilter reports costs a backtracker run. When too
// few candidates turn into matches the prefilter is pure overhead, so the
// tracker retires it and the caller falls back to scanning every start
// position. A Tracker belongs to one search at a time.
//
// Algorithm:
//  1. Count candidates and confirmed matches
//  2. After a warmup, check the ratio every CheckInterval candidates
//  3. Below MinEfficiency, disable the prefilter until Reset
//
// Example usage:
//
//	tracker := prefilter.NewTracker(pf, prefilter.DefaultTrackerConfig())
//	for tracker.IsActive() {
//	    pos := tracker.Find(haystack, start)
//	    if pos == -1 {
//	        break
//	    }
//	    if verify(haystack, pos) {
//	        tracker.ConfirmMatch()
//	        return pos
//	    }
//	    start = pos + 1
//	}
type Tracker struct {
	inner  Prefilter
	config TrackerConfig

	candidates     uint64
	confirms       uint64
	lastCheckpoint uint64
	active         bool
}

// TrackerConfig holds configuration for the effectiveness tracker.
type TrackerConfig struct {
	// CheckInterval is how often to check effectiveness (in candidates).
	// Default: 64
	CheckInterval uint64

	// MinEfficiency is the minimum acceptable ratio of confirms/candidates.
	// Default: 0.1 (10%)
	MinEfficiency float64

	// WarmupPeriod is the minimum number of candidates before checking effectiveness.
	// Default: 128
	WarmupPeriod uint64
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval: 64,
		MinEfficiency: 0.1,
		WarmupPeriod:  128,
	}
}

// TrackerStats is a snapshot of a tracker's counters.
type TrackerStats struct {
	Candidates uint64
	Confirms   uint64
	Active     bool
}

// Efficiency returns confirms per candidate, or 0 before any candidate.
func (s TrackerStats) Efficiency() float64 {
	if s.Candidates == 0 {
		return 0
	}
	return float64(s.Confirms) / float64(s.Candidates)
}

// NewTracker creates a tracker for inner. Returns nil if inner is nil.
func NewTracker(inner Prefilter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 1
	}
	return &Tracker{
		inner:  inner,
		config: config,
		active: true,
	}
}

// Find returns the next candidate position, or -1 if none found or disabled.
func (t *Tracker) Find(haystack []byte, start int) int {
	if !t.active {
		return -1
	}
	pos := t.inner.Find(haystack, start)
	if pos >= 0 {
		t.candidates++
		t.checkEffectiveness()
	}
	return pos
}

// ConfirmMatch records that the last candidate was a real match.
func (t *Tracker) ConfirmMatch() {
	t.confirms++
}

// IsActive returns true if the prefilter is still being used.
func (t *Tracker) IsActive() bool {
	return t.active
}

// Stats returns the current tracking statistics.
func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		Candidates: t.candidates,
		Confirms:   t.confirms,
		Active:     t.active,
	}
}

// Reset clears statistics and re-enables the prefilter.
func (t *Tracker) Reset() {
	t.candidates = 0
	t.confirms = 0
	t.lastCheckpoint = 0
	t.active = true
}

// Inner returns the underlying prefilter.
func (t *Tracker) Inner() Prefilter {
	return t.inner
}

func (t *Tracker) checkEffectiveness() {
	if t.candidates < t.config.WarmupPeriod {
		return
	}
	if t.candidates-t.lastCheckpoint < t.config.CheckInterval {
		return
	}
	t.lastCheckpoint = t.candidates

	if float64(t.confirms)/float64(t.candidates) < t.config.MinEfficiency {
		t.active = false
	}
}
