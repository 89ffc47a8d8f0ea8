package engine

// StageKind names which of the three task groups a statistic belongs
// to (§4.10).
type StageKind int

const (
	StagePick StageKind = iota
	StageParse
	StageSink
)

func (s StageKind) String() string {
	switch s {
	case StagePick:
		return "pick"
	case StageParse:
		return "parse"
	case StageSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Stats is the counter/frequency collaborator each task group reports
// through. pkg/stats.StatRequires implements this; engine itself stays
// agnostic of how counters are aggregated or printed.
type Stats interface {
	// Incr increments the named counter for stage by n. target is
	// "all", "ignore", or an item name, matching StatReq.target's
	// All/Ignore/Item(string) variants.
	Incr(stage StageKind, target string, n int)
	// Observe records one occurrence of value for field, feeding the
	// stage's top-N frequency table for that field (when configured).
	Observe(stage StageKind, field, value string)
}

type noopStats struct{}

func (noopStats) Incr(StageKind, string, int)    {}
func (noopStats) Observe(StageKind, string, string) {}
