// Package cost tallies LLM token consumption and estimates per-run spend.
package cost

// Rate is per-million-token pricing for one model.
type Rate struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Tracker accumulates token usage across the calls of one pipeline run.
// The pipeline is strictly sequential, so no locking is needed.
type Tracker struct {
	rate         Rate
	calls        int
	inputTokens  int64
	outputTokens int64
}

// NewTracker creates a Tracker for the given pricing.
func NewTracker(rate Rate) *Tracker {
	return &Tracker{rate: rate}
}

// Record adds one call's token usage to the tally.
func (t *Tracker) Record(input, output int64) {
	t.calls++
	t.inputTokens += input
	t.outputTokens += output
}

// Summary is the accumulated usage with the estimated spend in dollars.
type Summary struct {
	Calls        int     `json:"calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	EstimatedUSD float64 `json:"estimated_usd"`
}

// Summary returns the tally so far.
func (t *Tracker) Summary() Summary {
	return Summary{
		Calls:        t.calls,
		InputTokens:  t.inputTokens,
		OutputTokens: t.outputTokens,
		EstimatedUSD: float64(t.inputTokens)/1e6*t.rate.InputPerMTok +
			float64(t.outputTokens)/1e6*t.rate.OutputPerMTok,
	}
}
