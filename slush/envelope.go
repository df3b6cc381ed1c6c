package slush

import "time"

// Time-of-day buckets.
const (
	EarlyMorning = "early_morning"
	Morning      = "morning"
	Afternoon    = "afternoon"
	Evening      = "evening"
	Night        = "night"
)

// Fiscal period buckets.
const (
	QuarterStart   = "quarter_start"
	QuarterEndPush = "quarter_end_push"
	YearEnd        = "year_end"
	MidQuarter     = "mid_quarter"
)

// Query specificity levels.
const (
	SpecificityLow    = "low"
	SpecificityMedium = "medium"
	SpecificityHigh   = "high"
)

// Envelope is the per-invocation context an agent computes before running its
// own logic.
type Envelope struct {
	Timestamp       time.Time      `json:"timestamp"`
	Temporal        Temporal       `json:"temporal"`
	Query           QuerySignals   `json:"query_signals"`
	MemoryEchoes    []Echo         `json:"memory_echoes"`
	BehavioralHints []string       `json:"behavioral"`
	Priors          map[string]any `json:"priors"`
	Orientation     Orientation    `json:"orientation"`
	UpstreamSlush   map[string]any `json:"upstream_slush,omitempty"`
}

// Temporal holds signals derived purely from the wall clock.
type Temporal struct {
	TimeOfDay      string `json:"time_of_day"`
	DayOfWeek      string `json:"day_of_week"`
	Fiscal         string `json:"fiscal"`
	IsUrgentPeriod bool   `json:"is_urgent_period"`
}

// QuerySignals holds signals derived from the invocation's query text.
type QuerySignals struct {
	Specificity string   `json:"specificity"`
	Hints       []string `json:"hints"`
	WordCount   int      `json:"word_count"`
	IsQuestion  bool     `json:"is_question"`
}

// Echo is a memory snippet surfaced as relevant to the current query.
type Echo struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Orientation is the synthesized recommendation derived from the other fields.
type Orientation struct {
	Confidence    string   `json:"confidence"`
	Approach      string   `json:"approach"`
	Hints         []string `json:"hints"`
	ResponseStyle string   `json:"response_style"`
}

// HasHint reports whether the query signals contain hint.
func (q QuerySignals) HasHint(hint string) bool {
	for _, h := range q.Hints {
		if h == hint {
			return true
		}
	}
	return false
}

// Map renders the envelope as a plain map, the shape agents forward as slush.
func (e *Envelope) Map() map[string]any {
	out := map[string]any{
		"timestamp": e.Timestamp.Format(time.RFC3339),
		"temporal": map[string]any{
			"time_of_day":      e.Temporal.TimeOfDay,
			"day_of_week":      e.Temporal.DayOfWeek,
			"fiscal":           e.Temporal.Fiscal,
			"is_urgent_period": e.Temporal.IsUrgentPeriod,
		},
		"query_signals": map[string]any{
			"specificity": e.Query.Specificity,
			"hints":       append([]string(nil), e.Query.Hints...),
			"word_count":  e.Query.WordCount,
			"is_question": e.Query.IsQuestion,
		},
		"orientation": map[string]any{
			"confidence":     e.Orientation.Confidence,
			"approach":       e.Orientation.Approach,
			"hints":          append([]string(nil), e.Orientation.Hints...),
			"response_style": e.Orientation.ResponseStyle,
		},
	}
	if len(e.UpstreamSlush) > 0 {
		out["upstream_slush"] = e.UpstreamSlush
	}
	return out
}
