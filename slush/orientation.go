package slush

// Orientation directives appended per matched signal.
const (
	DirectiveRecent    = "Prioritize the most recent records"
	DirectiveOwnership = "Scope results to the requesting user"
	DirectiveUrgent    = "Time-sensitive period: lead with actionable items"
)

// Orient synthesizes the orientation block. It depends only on its arguments.
func Orient(temporal Temporal, query QuerySignals, priors map[string]any) Orientation {
	o := Orientation{Hints: []string{}}

	switch {
	case query.Specificity == SpecificityHigh:
		o.Confidence, o.Approach = "high", "direct"
	case len(priors) > 0:
		o.Confidence, o.Approach = "high", "use_preference"
	case query.Specificity == SpecificityMedium:
		o.Confidence, o.Approach = "medium", "contextual"
	default:
		o.Confidence, o.Approach = "low", "clarify"
	}

	urgent := temporal.IsUrgentPeriod || query.HasHint(HintUrgent)
	if query.HasHint(HintRecent) {
		o.Hints = append(o.Hints, DirectiveRecent)
	}
	if query.HasHint(HintOwnership) {
		o.Hints = append(o.Hints, DirectiveOwnership)
	}
	if urgent {
		o.Hints = append(o.Hints, DirectiveUrgent)
	}

	switch {
	case urgent:
		o.ResponseStyle = "concise"
	case query.Specificity == SpecificityHigh:
		o.ResponseStyle = "precise"
	case query.IsQuestion:
		o.ResponseStyle = "direct_answer"
	default:
		o.ResponseStyle = "standard"
	}

	return o
}
