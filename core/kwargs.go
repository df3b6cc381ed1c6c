package core

// UpstreamSlushKey is the kwargs key under which orchestrators attach the
// slush emitted by upstream nodes or steps.
const UpstreamSlushKey = "upstream_slush"

// Kwargs carries the keyword arguments of a single agent invocation.
type Kwargs map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (k Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(k))
	for key, v := range k {
		out[key] = v
	}
	return out
}

// Merge returns a new map holding k overlaid by each of others in order.
// Later maps win on key collisions; k itself is not modified.
func (k Kwargs) Merge(others ...Kwargs) Kwargs {
	out := k.Clone()
	for _, o := range others {
		for key, v := range o {
			out[key] = v
		}
	}
	return out
}

// String returns the value stored under key if it is a string.
func (k Kwargs) String(key string) (string, bool) {
	v, ok := k[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Map returns the value stored under key if it is a map[string]any.
func (k Kwargs) Map(key string) (map[string]any, bool) {
	v, ok := k[key]
	if !ok {
		return nil, false
	}
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Kwargs:
		return map[string]any(m), true
	default:
		return nil, false
	}
}
