package confidence

import (
	"reflect"
	"strings"
)

// conflictPolicy selects what happens when two sources provide different leaf
// values at the same path.
type conflictPolicy int

const (
	conflictError conflictPolicy = iota
	conflictOverwrite
)

// merge copies values in place from right into left, recursing when both
// sides hold nested mappings at the same key. Leaf collisions either raise a
// MergeConflictError carrying the full dotted path or overwrite left's value,
// depending on policy. Equal leaves are a no-op either way. List and scalar
// values are copied verbatim, never merged.
func merge(left, right map[string]any, separator string, path []string, conflict conflictPolicy) error {
	for key, rightValue := range right {
		mergePath := append(path[:len(path):len(path)], key)

		leftValue, exists := left[key]
		if !exists {
			left[key] = rightValue
			continue
		}

		leftMap, leftIsMap := leftValue.(map[string]any)
		rightMap, rightIsMap := rightValue.(map[string]any)
		switch {
		case leftIsMap && rightIsMap:
			if err := merge(leftMap, rightMap, separator, mergePath, conflict); err != nil {
				return err
			}
		case !reflect.DeepEqual(leftValue, rightValue):
			if conflict == conflictError {
				// not both mappings we could merge, but also not the same
				return &MergeConflictError{Path: strings.Join(mergePath, separator)}
			}
			left[key] = rightValue
		}
		// left[key] already equals right[key], nothing to do
	}

	return nil
}
