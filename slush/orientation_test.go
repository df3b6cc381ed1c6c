package slush

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrient_ConfidenceTable(t *testing.T) {
	calm := Temporal{Fiscal: MidQuarter}
	tests := []struct {
		name       string
		query      QuerySignals
		priors     map[string]any
		confidence string
		approach   string
	}{
		{"high specificity wins over priors", QuerySignals{Specificity: SpecificityHigh}, map[string]any{"region": "emea"}, "high", "direct"},
		{"priors", QuerySignals{Specificity: SpecificityLow}, map[string]any{"region": "emea"}, "high", "use_preference"},
		{"medium", QuerySignals{Specificity: SpecificityMedium}, nil, "medium", "contextual"},
		{"low", QuerySignals{Specificity: SpecificityLow}, nil, "low", "clarify"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Orient(calm, tt.query, tt.priors)
			assert.Equal(t, tt.confidence, o.Confidence)
			assert.Equal(t, tt.approach, o.Approach)
		})
	}
}

func TestOrient_HintsAndStyle(t *testing.T) {
	q := QuerySignals{Specificity: SpecificityMedium, Hints: []string{HintRecent, HintOwnership}}
	o := Orient(Temporal{Fiscal: MidQuarter}, q, nil)
	assert.Equal(t, []string{DirectiveRecent, DirectiveOwnership}, o.Hints)
	assert.Equal(t, "standard", o.ResponseStyle)

	o = Orient(Temporal{Fiscal: QuarterEndPush, IsUrgentPeriod: true}, QuerySignals{Specificity: SpecificityHigh}, nil)
	assert.Equal(t, []string{DirectiveUrgent}, o.Hints)
	assert.Equal(t, "concise", o.ResponseStyle)

	o = Orient(Temporal{}, QuerySignals{Specificity: SpecificityHigh}, nil)
	assert.Equal(t, "precise", o.ResponseStyle)
	assert.Empty(t, o.Hints)

	o = Orient(Temporal{}, QuerySignals{Specificity: SpecificityLow, IsQuestion: true}, nil)
	assert.Equal(t, "direct_answer", o.ResponseStyle)
}
