package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typedFixture() *Configuration {
	return MustNew(map[string]any{
		"str":      "hello",
		"int":      42,
		"int64":    int64(43),
		"uint":     uint(44),
		"float":    3.14,
		"bool":     true,
		"nil":      nil,
		"numStr":   "123",
		"floatStr": "2.5",
		"boolStr":  "true",
		"badStr":   "not a number",
		"ref":      "${int}",
	})
}

// TestString tests string retrieval with conversion
func TestString(t *testing.T) {
	cfg := typedFixture()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"String", "str", "hello"},
		{"Int", "int", "42"},
		{"Float", "float", "3.14"},
		{"Bool", "bool", "true"},
		{"NilIsEmpty", "nil", ""},
		{"ResolvedReference", "ref", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := cfg.String(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("MissingPath", func(t *testing.T) {
		_, err := cfg.String("absent")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

// TestInt64 tests integer retrieval with conversion
func TestInt64(t *testing.T) {
	cfg := typedFixture()

	tests := []struct {
		name     string
		path     string
		expected int64
	}{
		{"Int", "int", 42},
		{"Int64", "int64", 43},
		{"Uint", "uint", 44},
		{"FloatTruncates", "float", 3},
		{"NumericString", "numStr", 123},
		{"FloatStringTruncates", "floatStr", 2},
		{"BoolAsOne", "bool", 1},
		{"ResolvedReference", "ref", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := cfg.Int64(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("UnparsableString", func(t *testing.T) {
		_, err := cfg.Int64("badStr")
		assert.Error(t, err)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := cfg.Int64("nil")
		assert.Error(t, err)
	})

	t.Run("UnsignedOverflow", func(t *testing.T) {
		cfg := MustNew(map[string]any{"huge": uint64(1) << 63})
		_, err := cfg.Int64("huge")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overflow")
	})
}

// TestBool tests boolean retrieval with conversion
func TestBool(t *testing.T) {
	cfg := typedFixture()

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"Bool", "bool", true},
		{"BoolString", "boolStr", true},
		{"NonZeroInt", "int", true},
		{"NonZeroFloat", "float", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := cfg.Bool(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("ZeroIsFalse", func(t *testing.T) {
		cfg := MustNew(map[string]any{"zero": 0})
		value, err := cfg.Bool("zero")
		require.NoError(t, err)
		assert.False(t, value)
	})

	t.Run("UnparsableString", func(t *testing.T) {
		_, err := cfg.Bool("badStr")
		assert.Error(t, err)
	})
}

// TestFloat64 tests float retrieval with conversion
func TestFloat64(t *testing.T) {
	cfg := typedFixture()

	tests := []struct {
		name     string
		path     string
		expected float64
	}{
		{"Float", "float", 3.14},
		{"Int", "int", 42},
		{"FloatString", "floatStr", 2.5},
		{"BoolAsOne", "bool", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := cfg.Float64(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	t.Run("UnparsableString", func(t *testing.T) {
		_, err := cfg.Float64("badStr")
		assert.Error(t, err)
	})

	t.Run("Namespace", func(t *testing.T) {
		cfg := MustNew(map[string]any{"ns": map[string]any{"key": 1}})
		_, err := cfg.Float64("ns")
		assert.Error(t, err)
	})
}
