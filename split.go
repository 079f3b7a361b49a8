package confidence

import "strings"

// collidingKeys are the names of the accessor surface on Configuration.
// Configured keys matching one of these remain reachable through Get, but
// make for awkward attribute-style access in bindings that expose keys as
// members, so the splitter warns about them.
var collidingKeys = map[string]bool{
	"attr":    true,
	"bool":    true,
	"equal":   true,
	"float64": true,
	"get":     true,
	"getas":   true,
	"getor":   true,
	"int64":   true,
	"keys":    true,
	"len":     true,
	"scan":    true,
	"string":  true,
	"union":   true,
	"unwrap":  true,
}

// asMapping normalizes a parsed mapping into map[string]any. Permissive
// parsers can hand back map[any]any; those are accepted as long as every key
// is a string, anything else fails with a KeyTypeError.
func asMapping(value any) (map[string]any, bool, error) {
	switch m := value.(type) {
	case map[string]any:
		return m, true, nil
	case *Configuration:
		if m == nil {
			return nil, true, nil
		}
		return m.source, true, nil
	case map[any]any:
		normalized := make(map[string]any, len(m))
		for key, v := range m {
			s, ok := key.(string)
			if !ok {
				return nil, true, &KeyTypeError{Key: key}
			}
			normalized[s] = v
		}
		return normalized, true, nil
	default:
		return nil, false, nil
	}
}

// splitKeys recursively walks mapping, splitting keys that contain the
// separator into nested mappings. A key is split at the first separator
// occurrence only; the remainder is split recursively. Splitting an already
// split mapping is a no-op. Dotted keys that expand to the same path with
// different leaf values cannot be reconciled and fail with a
// MergeConflictError.
func splitKeys(mapping any, separator string) (map[string]any, error) {
	items, ok, err := asMapping(mapping)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &KeyTypeError{Key: mapping}
	}

	result := make(map[string]any, len(items))
	for key, value := range items {
		if view, ok := value.(*Sequence); ok {
			// the internal tree holds plain data only, never views
			value = view.items
		}
		if nested, isMapping, err := asMapping(value); err != nil {
			return nil, err
		} else if isMapping {
			// recursively split key(s) in value
			if value, err = splitKeys(nested, separator); err != nil {
				return nil, err
			}
		}

		if strings.Contains(key, separator) {
			// update key to be the first part before the separator, use the
			// rest as the new key of value and split that recursively
			rest := ""
			key, rest, _ = strings.Cut(key, separator)
			split, err := splitKeys(map[string]any{rest: value}, separator)
			if err != nil {
				return nil, err
			}
			value = split
		}

		if collidingKeys[strings.ToLower(key)] {
			logger.Warn().Str("key", key).
				Msg("configured key collides with an accessor name, use Get to retrieve its value")
		}

		// merge the current key and value into the result so far; duplicates
		// produced by splitting are a configuration-authoring bug
		if err := merge(result, map[string]any{key: value}, separator, nil, conflictError); err != nil {
			return nil, err
		}
	}

	return result, nil
}
