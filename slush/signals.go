package slush

import (
	"regexp"
	"strings"
	"time"
)

// Keyword hints recognised in query text.
const (
	HintRecent    = "temporal:recent"
	HintOwnership = "ownership:user"
	HintUrgent    = "urgency:high"
)

var (
	idPattern     = regexp.MustCompile(`[0-9a-fA-F]{8}-`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)

	keywordHints = []struct {
		hint    string
		pattern *regexp.Regexp
	}{
		{HintRecent, regexp.MustCompile(`(?i)\b(latest|recent|recently|last|newest|today|yesterday)\b`)},
		{HintOwnership, regexp.MustCompile(`(?i)\b(my|mine|our|ours)\b`)},
		{HintUrgent, regexp.MustCompile(`(?i)\b(urgent|asap|immediately|critical|now)\b`)},
	}

	interrogatives = map[string]struct{}{
		"what": {}, "when": {}, "where": {}, "who": {}, "why": {}, "how": {},
		"which": {}, "is": {}, "are": {}, "can": {}, "does": {}, "do": {},
	}
)

// TimeOfDay maps the hour of t onto a bucket.
func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 9:
		return EarlyMorning
	case h >= 9 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// FiscalPeriod maps the calendar date of t onto a fiscal bucket.
func FiscalPeriod(t time.Time) string {
	month, day := int(t.Month()), t.Day()
	switch {
	case (month == 1 || month == 4 || month == 7 || month == 10) && day <= 15:
		return QuarterStart
	case month%3 == 0 && day >= 15:
		return QuarterEndPush
	case month == 12:
		return YearEnd
	default:
		return MidQuarter
	}
}

// TemporalSignals derives the temporal block for t.
func TemporalSignals(t time.Time) Temporal {
	fiscal := FiscalPeriod(t)
	return Temporal{
		TimeOfDay:      TimeOfDay(t),
		DayOfWeek:      t.Weekday().String(),
		Fiscal:         fiscal,
		IsUrgentPeriod: fiscal == QuarterEndPush || fiscal == YearEnd,
	}
}

// QuerySignalsOf derives the query block for text.
func QuerySignalsOf(text string) QuerySignals {
	trimmed := strings.TrimSpace(text)
	fields := strings.Fields(trimmed)

	hints := []string{}
	for _, kh := range keywordHints {
		if kh.pattern.MatchString(trimmed) {
			hints = append(hints, kh.hint)
		}
	}

	specificity := SpecificityLow
	switch {
	case idPattern.MatchString(trimmed):
		specificity = SpecificityHigh
	case len(hints) >= 2 || numberPattern.MatchString(trimmed):
		specificity = SpecificityMedium
	}

	return QuerySignals{
		Specificity: specificity,
		Hints:       hints,
		WordCount:   len(fields),
		IsQuestion:  isQuestion(trimmed, fields),
	}
}

func isQuestion(text string, fields []string) bool {
	if strings.HasSuffix(text, "?") {
		return true
	}
	if len(fields) == 0 {
		return false
	}
	_, ok := interrogatives[strings.ToLower(strings.Trim(fields[0], ",.!:;"))]
	return ok
}
