package confidence

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Sequence is a view over a configured list, bound to the root namespace of
// the Configuration it was retrieved from. Element access applies the same
// lazy wrapping and reference resolution rules as the namespace itself:
// mappings become Configurations, nested lists become Sequences and string
// elements have their references resolved. A Sequence is never mutated in
// place; Append and PrependTo produce new values.
type Sequence struct {
	items []any
	root  *Configuration
}

// Len reports the number of elements.
func (s *Sequence) Len() int {
	return len(s.items)
}

// At returns the element at index i, wrapped and with references resolved.
func (s *Sequence) At(i int) (any, error) {
	if i < 0 || i >= len(s.items) {
		return nil, fmt.Errorf("sequence index %d out of range [0:%d]", i, len(s.items))
	}
	return s.root.wrap(s.items[i], true)
}

// RawAt returns the element at index i without reference resolution.
func (s *Sequence) RawAt(i int) (any, error) {
	if i < 0 || i >= len(s.items) {
		return nil, fmt.Errorf("sequence index %d out of range [0:%d]", i, len(s.items))
	}
	return s.root.wrap(s.items[i], false)
}

// Slice returns a view over the elements in [lo:hi], sharing this view's
// root.
func (s *Sequence) Slice(lo, hi int) (*Sequence, error) {
	if lo < 0 || hi > len(s.items) || lo > hi {
		return nil, fmt.Errorf("sequence bounds [%d:%d] out of range [0:%d]", lo, hi, len(s.items))
	}
	return &Sequence{items: s.items[lo:hi], root: s.root}, nil
}

// Append returns a new Sequence holding this view's elements followed by
// values, still bound to this view's root. To concatenate two views, pass
// other.Unwrap()... as values.
func (s *Sequence) Append(values ...any) *Sequence {
	items := make([]any, 0, len(s.items)+len(values))
	items = append(items, s.items...)
	items = append(items, values...)
	return &Sequence{items: items, root: s.root}
}

// PrependTo returns a plain slice holding values followed by this view's
// raw elements. The left operand dictates the result type, so wrapping is
// not retained.
func (s *Sequence) PrependTo(values []any) []any {
	items := make([]any, 0, len(values)+len(s.items))
	items = append(items, values...)
	items = append(items, s.items...)
	return items
}

// Unwrap returns the plain list backing this view. It is shared with the
// view and must not be mutated.
func (s *Sequence) Unwrap() []any {
	return s.items
}

// Values returns all elements, wrapped and with references resolved.
func (s *Sequence) Values() ([]any, error) {
	values := make([]any, len(s.items))
	for i := range s.items {
		value, err := s.At(i)
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

// Equal reports whether other (a Sequence or plain slice) holds pairwise
// equal elements after resolution: both views' elements are resolved before
// comparing, and a view compares equal to a plain list of its post-resolution
// values.
func (s *Sequence) Equal(other any) bool {
	switch o := other.(type) {
	case *Sequence:
		if o == nil || len(s.items) != len(o.items) {
			return false
		}
		for i := range s.items {
			left, err := s.At(i)
			if err != nil {
				return false
			}
			right, err := o.At(i)
			if err != nil {
				return false
			}
			if !reflect.DeepEqual(Unwrap(left), Unwrap(right)) {
				return false
			}
		}
		return true
	case []any:
		if len(s.items) != len(o) {
			return false
		}
		for i := range s.items {
			left, err := s.At(i)
			if err != nil {
				return false
			}
			if !reflect.DeepEqual(Unwrap(left), Unwrap(o[i])) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the raw elements, abbreviating nested collections: a
// mapping shows only its keys, a nested sequence shows as [...].
func (s *Sequence) String() string {
	parts := make([]string, len(s.items))
	for i, item := range s.items {
		switch v := Unwrap(item).(type) {
		case map[string]any:
			keys := make([]string, 0, len(v))
			for key := range v {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			parts[i] = fmt.Sprintf("mapping(keys=%v)", keys)
		case []any:
			parts[i] = "[...]"
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
