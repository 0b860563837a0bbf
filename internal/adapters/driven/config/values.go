// Package config holds conversions shared by the ConfigStore adapters.
package config

import "sort"

// Int converts a decoded config value to an int. TOML integers decode as
// int64 and JSON numbers as float64.
func Int(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// StringSlice converts a decoded config array to strings. Non-string
// elements are skipped.
func StringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Keys returns the keys of a flat config map in sorted order.
func Keys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
