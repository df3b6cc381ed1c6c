package chain

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentslush/core"
)

// Passthrough forwards the previous payload under key.
func Passthrough(key string) Transform {
	return func(prev *core.Result) core.Kwargs {
		if prev == nil {
			return nil
		}
		return core.Kwargs{key: prev.Payload}
	}
}

// Pluck extracts path (gjson syntax) from the previous payload and forwards
// it under key. String payloads are queried as JSON documents; other payloads
// are marshalled first. Missing paths produce no kwargs.
func Pluck(key, path string) Transform {
	return func(prev *core.Result) core.Kwargs {
		if prev == nil {
			return nil
		}
		doc, ok := document(prev.Payload)
		if !ok {
			return nil
		}
		r := gjson.Get(doc, path)
		if !r.Exists() {
			return nil
		}
		return core.Kwargs{key: r.Value()}
	}
}

// Compose merges the kwargs of several transforms; later transforms win.
func Compose(transforms ...Transform) Transform {
	return func(prev *core.Result) core.Kwargs {
		out := core.Kwargs{}
		for _, t := range transforms {
			if t == nil {
				continue
			}
			out = out.Merge(t(prev))
		}
		return out
	}
}

func document(payload any) (string, bool) {
	if s, ok := payload.(string); ok {
		return s, gjson.Valid(s)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}
	return string(data), true
}
