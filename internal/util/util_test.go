package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string"},
			"limit": map[string]any{"type": "integer"},
		},
		"required": []any{"query"},
	}

	tests := []struct {
		name   string
		params map[string]any
		field  string
	}{
		{"valid", map[string]any{"query": "q", "limit": 3}, ""},
		{"float integer", map[string]any{"query": "q", "limit": float64(3)}, ""},
		{"extra allowed", map[string]any{"query": "q", "other": true}, ""},
		{"missing", map[string]any{"limit": 3}, "query"},
		{"wrong type", map[string]any{"query": 1}, "query"},
		{"fractional", map[string]any{"query": "q", "limit": 2.5}, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateParameters_StringRequired(t *testing.T) {
	err := ValidateParameters(map[string]any{}, map[string]any{"required": []string{"id"}})
	assert.ErrorContains(t, err, "'id'")
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("plain text", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)

	out, err = RenderTemplate(`Summarize {{.topic | upper}} for {{default "everyone" .audience}}`, map[string]any{"topic": "q3 pipeline"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize Q3 PIPELINE for everyone", out)

	_, err = RenderTemplate("{{.broken", nil)
	assert.Error(t, err)
}
