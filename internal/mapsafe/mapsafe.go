package mapsafe

// Get retrieves a typed value from a map[string]any.
// If the key is missing or the type cannot be converted, it returns the default value.
func Get[T any](m map[string]any, key string, defaultValue T) T {
	if val, ok := m[key]; ok {
		switch any(defaultValue).(type) {
		case int:
			switch x := val.(type) {
			case int:
				return any(x).(T)
			case float64:
				return any(int(x)).(T)
			}
		case float64:
			switch x := val.(type) {
			case float64:
				return any(x).(T)
			case int:
				return any(float64(x)).(T)
			}
		case string:
			if s, ok := val.(string); ok {
				return any(s).(T)
			}
		case bool:
			if b, ok := val.(bool); ok {
				return any(b).(T)
			}
		default:
			// fallback: if type matches exactly
			if v2, ok := val.(T); ok {
				return v2
			}
		}
	}
	return defaultValue
}

// Has reports whether the map carries the key at all, regardless of type.
func Has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

// Floats retrieves a []float64 from a map[string]any, converting element-wise
// from the []any produced by JSON-style decoders. The second return value is
// false when the key is missing or any element is not numeric.
func Floats(m map[string]any, key string) ([]float64, bool) {
	raw, ok := m[key]
	if !ok {
		return nil, false
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	out := make([]float64, len(list))
	for i, v := range list {
		switch x := v.(type) {
		case float64:
			out[i] = x
		case int:
			out[i] = float64(x)
		default:
			return nil, false
		}
	}
	return out, true
}

// Ints retrieves a []int from a map[string]any the same way Floats does,
// rejecting elements with a fractional part.
func Ints(m map[string]any, key string) ([]int, bool) {
	floats, ok := Floats(m, key)
	if !ok {
		return nil, false
	}

	out := make([]int, len(floats))
	for i, f := range floats {
		n := int(f)
		if float64(n) != f {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
