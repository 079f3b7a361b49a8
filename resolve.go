package confidence

import (
	"errors"
	"fmt"
	"regexp"
)

// referencePattern matches a reference as ${key.to.be.resolved}. Malformed
// delimiters (unbalanced braces, $(...) and the like) do not match and are
// left as literal text.
var referencePattern = regexp.MustCompile(`\$\{([^${}]+)\}`)

// resolve repeatedly expands ${path} references in value against the root
// namespace. A value that is exactly one reference takes the referenced
// value's native type; a reference embedded in surrounding text is rendered
// into it as a scalar. Resolution tracks visited paths to detect direct and
// indirect cycles. A nil value embedded in a template renders as "null".
func (c *Configuration) resolve(value string) (any, error) {
	seen := make(map[string]bool)
	var current any = value

	for {
		s, ok := current.(string)
		if !ok {
			// no longer a string, nothing left to resolve
			return current, nil
		}
		match := referencePattern.FindStringSubmatchIndex(s)
		if match == nil {
			return current, nil
		}

		path := s[match[2]:match[3]]
		if seen[path] {
			return nil, &ReferenceError{Key: path, reason: ErrRecursiveReference}
		}

		// resolve the reference without recursing, recursion would break the
		// visited set
		reference, err := c.GetRaw(path)
		if err != nil {
			var notConfigured *NotConfiguredError
			if errors.As(err, &notConfigured) {
				return nil, &ReferenceError{Key: notConfigured.Key, reason: ErrUnresolvableReference}
			}
			return nil, err
		}

		if match[0] == 0 && match[1] == len(s) {
			// the value is only a reference, keep the referenced value's type
			current = reference
		} else {
			// the reference sits inside a larger value, render it as text
			if _, isNamespace := reference.(*Configuration); isNamespace {
				return nil, &ReferenceError{Key: path, reason: ErrIllegalEmbed}
			}
			current = s[:match[0]] + renderScalar(reference) + s[match[1]:]
		}

		seen[path] = true
	}
}

// renderScalar renders a resolved reference for template interpolation.
func renderScalar(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case *Sequence:
		return fmt.Sprintf("%v", v.items)
	default:
		return fmt.Sprintf("%v", v)
	}
}
