package orchestrator

// Stage is a step of a repository's lifecycle.
type Stage int

const (
	StageIdle Stage = iota
	StageAcquiring
	StageTraversing
	StageFinalizing
	StageReleased
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAcquiring:
		return "acquiring"
	case StageTraversing:
		return "traversing"
	case StageFinalizing:
		return "finalizing"
	case StageReleased:
		return "released"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}
