package metrics

import "time"

// Generation summarizes one decade-styling call.
type Generation struct {
	Outcome      string // "success", "format", "upstream", "refusal"
	Attempts     int
	FallbackUsed bool
	Model        string
	Latency      time.Duration
}

// RecordGeneration emits GenerateLatencyMs, GenerateAttempts and
// GenerateCount with an Outcome dimension.
func RecordGeneration(g Generation) {
	r := New(Namespace).
		Dimension("Outcome", g.Outcome).
		Duration("GenerateLatencyMs", g.Latency).
		Metric("GenerateAttempts", float64(g.Attempts), UnitCount).
		Count("GenerateCount").
		Property("fallbackUsed", g.FallbackUsed)
	if g.Model != "" {
		r.Property("model", g.Model)
	}
	r.Flush()
}
