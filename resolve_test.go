package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveWholeValue tests that a value consisting of a single reference
// takes the referenced value's native type
func TestResolveWholeValue(t *testing.T) {
	cfg := MustNew(map[string]any{
		"port":      8080,
		"ratio":     0.5,
		"enabled":   true,
		"host":      "localhost",
		"empty":     nil,
		"list":      []any{1, 2},
		"ns":        map[string]any{"key": "value"},
		"ref.port":  "${port}",
		"ref.ratio": "${ratio}",
		"ref.truth": "${enabled}",
		"ref.host":  "${host}",
		"ref.null":  "${empty}",
		"ref.list":  "${list}",
		"ref.ns":    "${ns}",
		"ref.hop":   "${ref.port}",
	})

	tests := []struct {
		name     string
		path     string
		expected any
	}{
		{"Integer", "ref.port", 8080},
		{"Float", "ref.ratio", 0.5},
		{"Boolean", "ref.truth", true},
		{"String", "ref.host", "localhost"},
		{"Nil", "ref.null", nil},
		{"ReferenceToReference", "ref.hop", 8080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := cfg.Get(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("List", func(t *testing.T) {
		value, err := cfg.Get("ref.list")
		require.NoError(t, err)
		seq, ok := value.(*Sequence)
		require.True(t, ok)
		assert.Equal(t, []any{1, 2}, seq.Unwrap())
	})

	t.Run("Namespace", func(t *testing.T) {
		value, err := cfg.Get("ref.ns")
		require.NoError(t, err)
		ns, ok := value.(*Configuration)
		require.True(t, ok)
		inner, err := ns.Get("key")
		require.NoError(t, err)
		assert.Equal(t, "value", inner)
	})
}

// TestResolveTemplate tests references embedded in surrounding text
func TestResolveTemplate(t *testing.T) {
	cfg := MustNew(map[string]any{
		"host":    "localhost",
		"port":    8080,
		"ratio":   0.5,
		"enabled": true,
		"empty":   nil,
		"list":    []any{1, 2},
	})

	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"StringEmbed", "http://${host}/", "http://localhost/"},
		{"IntegerEmbed", "${host}:${port}", "localhost:8080"},
		{"FloatEmbed", "ratio=${ratio}", "ratio=0.5"},
		{"BooleanEmbed", "enabled=${enabled}", "enabled=true"},
		{"NilRendersAsNull", "value=${empty}", "value=null"},
		{"ListEmbed", "items=${list}", "items=[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Union(cfg, map[string]any{"template": tt.value})
			require.NoError(t, err)
			value, err := cfg.Get("template")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}
}

// TestResolveAcrossLayers tests that references resolve against the merged
// tree, so a later source can redirect an earlier source's reference
func TestResolveAcrossLayers(t *testing.T) {
	cfg, err := New(
		map[string]any{
			"server.host": "localhost",
			"server.url":  "http://${server.host}:${server.port}/",
		},
		map[string]any{"server.host": "example.com", "server.port": 443},
	)
	require.NoError(t, err)

	url, err := cfg.Get("server.url")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:443/", url)
}

// TestResolveFromNamespace tests that a namespace resolves references against
// the root it was retrieved from, not against its own subtree
func TestResolveFromNamespace(t *testing.T) {
	cfg := MustNew(map[string]any{
		"app.name":    "demo",
		"server.name": "${app.name}-server",
	})

	value, err := cfg.Get("server")
	require.NoError(t, err)
	ns := value.(*Configuration)

	name, err := ns.Get("name")
	require.NoError(t, err)
	assert.Equal(t, "demo-server", name)
}

// TestResolveInSequences tests reference resolution for sequence elements
func TestResolveInSequences(t *testing.T) {
	cfg := MustNew(map[string]any{
		"host":  "localhost",
		"hosts": []any{"${host}", "static.example.com"},
	})

	value, err := cfg.Get("hosts")
	require.NoError(t, err)
	seq := value.(*Sequence)

	first, err := seq.At(0)
	require.NoError(t, err)
	assert.Equal(t, "localhost", first)
}

// TestResolveUnresolvable tests broken references
func TestResolveUnresolvable(t *testing.T) {
	cfg := MustNew(map[string]any{
		"broken": "${absent.key}",
		"ns":     map[string]any{"key": 1},
		"deep":   "${ns.absent}",
	})

	t.Run("MissingTarget", func(t *testing.T) {
		_, err := cfg.Get("broken")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableReference)

		// the error names the missing key, not the referring value
		var reference *ReferenceError
		require.ErrorAs(t, err, &reference)
		assert.Equal(t, "absent", reference.Key)
		assert.EqualError(t, err, "unable to resolve referenced key absent")
	})

	t.Run("MissingUnderExistingNamespace", func(t *testing.T) {
		_, err := cfg.Get("deep")
		require.Error(t, err)
		var reference *ReferenceError
		require.ErrorAs(t, err, &reference)
		assert.Equal(t, "ns.absent", reference.Key)
	})

	t.Run("NotDefaultedAway", func(t *testing.T) {
		// a broken reference is a configuration bug, not an absent value
		_, err := cfg.GetOr("broken", "fallback")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableReference)
	})

	t.Run("NotSilencedByPolicy", func(t *testing.T) {
		strict, err := NewWithOptions(Options{Missing: MissingDefault, Default: "fallback"},
			map[string]any{"broken": "${absent}"})
		require.NoError(t, err)
		_, err = strict.Attr("broken")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnresolvableReference)
	})
}

// TestResolveCycles tests recursive reference detection
func TestResolveCycles(t *testing.T) {
	t.Run("SelfReference", func(t *testing.T) {
		cfg := MustNew(map[string]any{"a": "${a}"})
		_, err := cfg.Get("a")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRecursiveReference)

		var reference *ReferenceError
		require.ErrorAs(t, err, &reference)
		assert.Equal(t, "a", reference.Key)
		assert.EqualError(t, err, "cannot resolve recursive reference a")
	})

	t.Run("MutualReference", func(t *testing.T) {
		cfg := MustNew(map[string]any{"a": "${b}", "b": "${a}"})
		_, err := cfg.Get("a")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRecursiveReference)
	})

	t.Run("LongerCycle", func(t *testing.T) {
		cfg := MustNew(map[string]any{"a": "${b}", "b": "${c}", "c": "${a}"})
		_, err := cfg.Get("a")
		assert.ErrorIs(t, err, ErrRecursiveReference)
	})

	t.Run("TemplateCycle", func(t *testing.T) {
		cfg := MustNew(map[string]any{"a": "pre ${b} post", "b": "${a}"})
		_, err := cfg.Get("a")
		assert.ErrorIs(t, err, ErrRecursiveReference)
	})

	t.Run("RepeatedPathCountsAsRecursion", func(t *testing.T) {
		cfg := MustNew(map[string]any{"a": "x", "twice": "${a} ${a}"})
		_, err := cfg.Get("twice")
		assert.ErrorIs(t, err, ErrRecursiveReference)
	})
}

// TestResolveIdempotent tests that repeated access resolves identically
func TestResolveIdempotent(t *testing.T) {
	cfg := MustNew(map[string]any{
		"host": "localhost",
		"url":  "http://${host}/",
	})

	first, err := cfg.Get("url")
	require.NoError(t, err)
	second, err := cfg.Get("url")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// the stored value is untouched by resolution
	raw, err := cfg.GetRaw("url")
	require.NoError(t, err)
	assert.Equal(t, "http://${host}/", raw)
}

// TestResolveIllegalEmbed tests namespaces spliced into templates
func TestResolveIllegalEmbed(t *testing.T) {
	cfg := MustNew(map[string]any{
		"ns":       map[string]any{"key": 1},
		"template": "section: ${ns}",
	})

	_, err := cfg.Get("template")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalEmbed)
	assert.EqualError(t, err, "cannot insert namespace at ns into referring value")
}

// TestResolveMalformedTokens tests that near-miss syntax stays literal
func TestResolveMalformedTokens(t *testing.T) {
	cfg := MustNew(map[string]any{
		"key": "value",
		"m1":  "$ {key}",
		"m2":  "${key",
		"m3":  "$(key)",
		"m4":  "${}",
		"m5":  "$key",
	})

	for _, path := range []string{"m1", "m2", "m3", "m4", "m5"} {
		raw, err := cfg.GetRaw(path)
		require.NoError(t, err)
		value, err := cfg.Get(path)
		require.NoError(t, err)
		assert.Equal(t, raw, value, "path %s should be left as literal text", path)
	}
}

// TestGetRaw tests access without reference resolution
func TestGetRaw(t *testing.T) {
	cfg := MustNew(map[string]any{
		"host":     "localhost",
		"template": "http://${host}/",
		"broken":   "${absent}",
	})

	value, err := cfg.GetRaw("template")
	require.NoError(t, err)
	assert.Equal(t, "http://${host}/", value)

	// a broken reference is invisible to raw access
	value, err = cfg.GetRaw("broken")
	require.NoError(t, err)
	assert.Equal(t, "${absent}", value)
}
