package confidence

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// DefaultSeparator is the character used between key steps in dotted paths.
const DefaultSeparator = "."

// Missing selects the behavior of Attr for unconfigured keys.
type Missing int

const (
	// MissingSilent yields the NotConfigured sentinel for unconfigured keys,
	// so chained access never fails.
	MissingSilent Missing = iota
	// MissingError makes Attr return a NotConfiguredError for unconfigured
	// keys.
	MissingError
	// MissingDefault substitutes Options.Default for unconfigured keys.
	MissingDefault
)

// Options control construction of a Configuration.
type Options struct {
	// Separator between key steps, DefaultSeparator when empty.
	Separator string

	// Missing policy applied by Attr, MissingSilent when unset.
	Missing Missing

	// Default is the value substituted for unconfigured keys under the
	// MissingDefault policy.
	Default any
}

// Configuration is a collection of configured values, retrievable by dotted
// path. Sub-mappings are wrapped into child Configurations on access and
// sequences into Sequence views, both sharing the underlying data. After
// construction a Configuration is read-only.
type Configuration struct {
	source    map[string]any
	separator string
	missing   Missing
	fallback  any

	// root owns the top-level tree; references always resolve from it
	root *Configuration
}

// NotConfigured is the sentinel yielded for unconfigured keys under the
// silent missing policy. It behaves as an empty Configuration, so chained
// attribute-style access keeps yielding NotConfigured instead of failing.
var NotConfigured = func() *Configuration {
	c := &Configuration{source: map[string]any{}, separator: DefaultSeparator, missing: MissingSilent}
	c.root = c
	return c
}()

// Configured reports whether value holds an actual configured value rather
// than the NotConfigured sentinel or nil.
func Configured(value any) bool {
	return value != nil && value != any(NotConfigured)
}

// New creates a Configuration from zero or more sources, ordered from least
// to most significant: on a leaf conflict the later source wins. A source is
// a plain (possibly dotted-keyed) mapping or another Configuration, which is
// unwrapped to its underlying tree first. Empty and nil sources are skipped.
func New(sources ...any) (*Configuration, error) {
	return NewWithOptions(Options{}, sources...)
}

// MustNew is like New but panics on error.
func MustNew(sources ...any) *Configuration {
	c, err := New(sources...)
	if err != nil {
		panic(fmt.Sprintf("confidence: %v", err))
	}
	return c
}

// NewWithOptions creates a Configuration from sources with explicit options.
func NewWithOptions(opts Options, sources ...any) (*Configuration, error) {
	c := &Configuration{
		source:    make(map[string]any),
		separator: opts.Separator,
		missing:   opts.Missing,
		fallback:  opts.Default,
	}
	if c.separator == "" {
		c.separator = DefaultSeparator
	}
	c.root = c

	for _, source := range sources {
		tree, err := sourceTree(source)
		if err != nil {
			return nil, err
		}
		if len(tree) == 0 {
			continue
		}

		split, err := splitKeys(tree, c.separator)
		if err != nil {
			return nil, err
		}
		// later sources overwrite earlier ones on leaf conflicts
		if err := merge(c.source, split, c.separator, nil, conflictOverwrite); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// sourceTree reduces a construction source to a plain mapping, unwrapping
// Configuration instances. nil sources reduce to an empty tree.
func sourceTree(source any) (map[string]any, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case *Configuration:
		if s == nil {
			return nil, nil
		}
		return s.source, nil
	default:
		tree, ok, err := asMapping(source)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unsupported source type %T", source)
		}
		return tree, nil
	}
}

// lookup walks the internal tree one step at a time and returns the raw,
// unwrapped and unresolved value. A missing step yields a NotConfiguredError
// naming the dotted path walked so far.
func (c *Configuration) lookup(path string) (any, error) {
	var value any = c.source
	steps := strings.Split(path, c.separator)
	taken := make([]string, 0, len(steps))

	for _, step := range steps {
		taken = append(taken, step)
		mapping, ok := value.(map[string]any)
		if !ok {
			return nil, &NotConfiguredError{Key: strings.Join(taken, c.separator)}
		}
		if value, ok = mapping[step]; !ok {
			return nil, &NotConfiguredError{Key: strings.Join(taken, c.separator)}
		}
	}

	return value, nil
}

// wrap turns a raw value into its access-time form: sub-mappings become
// child namespaces, sequences become Sequence views and, when resolve is
// set, string values have their references resolved against the root.
func (c *Configuration) wrap(value any, resolve bool) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return c.namespace(v), nil
	case []any:
		return &Sequence{items: v, root: c.root}, nil
	case string:
		if resolve {
			return c.root.resolve(v)
		}
		return v, nil
	default:
		return value, nil
	}
}

// namespace creates a child Configuration sharing the sub-mapping, policies
// and root of this one. The child is a view, not a copy.
func (c *Configuration) namespace(source map[string]any) *Configuration {
	return &Configuration{
		source:    source,
		separator: c.separator,
		missing:   c.missing,
		fallback:  c.fallback,
		root:      c.root,
	}
}

// Get retrieves the value for a dotted path. Sub-mappings are returned as
// child Configurations, sequences as Sequence views and references in string
// values are resolved. An unconfigured path yields a NotConfiguredError.
func (c *Configuration) Get(path string) (any, error) {
	value, err := c.lookup(path)
	if err != nil {
		return nil, err
	}
	return c.wrap(value, true)
}

// GetRaw is Get without reference resolution: string values are returned
// verbatim, possibly still containing ${path} tokens.
func (c *Configuration) GetRaw(path string) (any, error) {
	value, err := c.lookup(path)
	if err != nil {
		return nil, err
	}
	return c.wrap(value, false)
}

// GetOr retrieves the value for a dotted path, substituting fallback when
// the path is not configured. A broken reference is a configuration bug, not
// an absent value: ReferenceErrors propagate and are never defaulted away.
func (c *Configuration) GetOr(path string, fallback any) (any, error) {
	value, err := c.Get(path)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return fallback, nil
		}
		return nil, err
	}
	return value, nil
}

// GetAs retrieves the raw value for a dotted path (unwrapped, references
// unresolved) and applies convert to it. Conversion errors propagate as-is.
func (c *Configuration) GetAs(path string, convert func(any) (any, error)) (any, error) {
	value, err := c.lookup(path)
	if err != nil {
		return nil, err
	}
	return convert(value)
}

// Attr retrieves a single step the attribute-access way, applying the
// missing policy selected at construction: the NotConfigured sentinel
// (silent), the construction default, or the NotConfiguredError itself
// (error policy). ReferenceErrors always propagate regardless of policy.
func (c *Configuration) Attr(name string) (any, error) {
	value, err := c.Get(name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrNotConfigured) {
		return nil, err
	}

	switch c.missing {
	case MissingError:
		return nil, err
	case MissingDefault:
		return c.fallback, nil
	default:
		return NotConfigured, nil
	}
}

// Len reports the number of top-level keys.
func (c *Configuration) Len() int {
	return len(c.source)
}

// Keys returns the top-level keys in sorted order.
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.source))
	for key := range c.source {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Unwrap returns the plain tree backing this Configuration. The tree never
// contains Configuration or Sequence instances, only mappings, sequences and
// scalars; it is shared with this Configuration and must not be mutated.
func (c *Configuration) Unwrap() map[string]any {
	return c.source
}

// Unwrap strips namespace and sequence-view wrapping from value, returning
// the plain data underneath. Non-wrapped values pass through verbatim.
func Unwrap(value any) any {
	switch v := value.(type) {
	case *Configuration:
		return v.source
	case *Sequence:
		return v.items
	default:
		return value
	}
}

// Equal reports whether other (a Configuration or plain mapping) holds an
// equal tree of configured values. The missing policy does not participate.
func (c *Configuration) Equal(other any) bool {
	switch o := other.(type) {
	case *Configuration:
		return o != nil && reflect.DeepEqual(c.source, o.source)
	case map[string]any:
		return reflect.DeepEqual(c.source, o)
	default:
		return false
	}
}

// Union builds a new Configuration merging this one with other (a
// Configuration or plain mapping), other taking precedence. When both
// operands are Configurations their separators and missing policies must
// agree.
func (c *Configuration) Union(other any) (*Configuration, error) {
	return Union(c, other)
}

// Union merges any number of Configurations and plain mappings, later parts
// taking precedence. All Configuration parts must agree on a separator and a
// missing policy, which carry over to the result.
func Union(parts ...any) (*Configuration, error) {
	var opts Options
	havePolicy := false
	for _, part := range parts {
		cfg, ok := part.(*Configuration)
		if !ok || cfg == nil || cfg == NotConfigured {
			continue
		}
		policy := Options{Separator: cfg.separator, Missing: cfg.missing, Default: cfg.fallback}
		if !havePolicy {
			opts, havePolicy = policy, true
			continue
		}
		if opts.Separator != policy.Separator {
			return nil, fmt.Errorf("cannot combine configurations with different separators")
		}
		if opts.Missing != policy.Missing || !reflect.DeepEqual(opts.Default, policy.Default) {
			return nil, fmt.Errorf("cannot combine configurations with different missing policies")
		}
	}

	return NewWithOptions(opts, parts...)
}

func init() {
	// concrete types carried inside the any-typed tree during gob round-trips
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// configurationState is the persisted form of a Configuration. The root
// pointer is deliberately absent: persisting it would create a reference
// cycle, so it is re-derived on restore.
type configurationState struct {
	Source    map[string]any
	Separator string
	Missing   Missing
	Fallback  any
}

// MarshalBinary implements encoding.BinaryMarshaler, persisting the tree and
// missing policy.
func (c *Configuration) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	state := configurationState{
		Source:    c.source,
		Separator: c.separator,
		Missing:   c.missing,
		Fallback:  c.fallback,
	}
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. The restored
// Configuration becomes its own root.
func (c *Configuration) UnmarshalBinary(data []byte) error {
	var state configurationState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	c.source = state.Source
	if c.source == nil {
		c.source = make(map[string]any)
	}
	c.separator = state.Separator
	if c.separator == "" {
		c.separator = DefaultSeparator
	}
	c.missing = state.Missing
	c.fallback = state.Fallback
	c.root = c

	return nil
}
