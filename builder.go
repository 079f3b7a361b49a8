package confidence

import (
	"fmt"
)

// ValidatorFunc validates a fully assembled *Configuration and returns an
// error when it is unacceptable.
type ValidatorFunc func(c *Configuration) error

// Builder provides a fluent interface for assembling configurations from
// mixed sources. Sources are recorded in call order and merged from least to
// most significant.
type Builder struct {
	opts       Options
	producers  []func() (any, error)
	extension  string
	loadOrder  []Loader
	err        error
	validators []ValidatorFunc
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{
		validators: make([]ValidatorFunc, 0),
	}
}

// WithSeparator sets the key separator, "." by default.
func (b *Builder) WithSeparator(separator string) *Builder {
	b.opts.Separator = separator
	return b
}

// WithMissing sets the policy for attribute access to unconfigured keys.
func (b *Builder) WithMissing(missing Missing) *Builder {
	b.opts.Missing = missing
	return b
}

// WithMissingDefault sets the value attribute access yields for unconfigured
// keys, implying the MissingDefault policy.
func (b *Builder) WithMissingDefault(value any) *Builder {
	b.opts.Missing = MissingDefault
	b.opts.Default = value
	return b
}

// WithSource adds a plain source value (a mapping or a Configuration).
func (b *Builder) WithSource(source any) *Builder {
	b.producers = append(b.producers, func() (any, error) {
		return source, nil
	})
	return b
}

// WithString adds a YAML document string as a source.
func (b *Builder) WithString(document string) *Builder {
	b.producers = append(b.producers, func() (any, error) {
		return YAML.Loads(document)
	})
	return b
}

// WithFile adds a configuration file as a source, its format detected from
// the extension. The file must exist at build time.
func (b *Builder) WithFile(path string) *Builder {
	b.producers = append(b.producers, func() (any, error) {
		return readFile(path)
	})
	return b
}

// WithName adds name-based discovery as a source, using the builder's load
// order and extension.
func (b *Builder) WithName(names ...string) *Builder {
	b.producers = append(b.producers, func() (any, error) {
		return LoadNameWithOptions(NameOptions{
			LoadOrder: b.loadOrder,
			Extension: b.extension,
			Options:   b.opts,
		}, names...)
	})
	return b
}

// WithExtension sets the file extension for name-based discovery, "yaml" by
// default.
func (b *Builder) WithExtension(extension string) *Builder {
	b.extension = extension
	return b
}

// WithLoadOrder sets the load order for name-based discovery. Specifiers
// follow Loaders: localities, path templates and Loader functions.
func (b *Builder) WithLoadOrder(specifiers ...any) *Builder {
	order, err := Loaders(specifiers...)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.loadOrder = order
	return b
}

// WithValidator adds a validation function that runs at the end of the build
// process. Multiple validators can be added and are executed in the order
// they are added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build assembles the Configuration from all recorded sources and runs the
// validators.
func (b *Builder) Build() (*Configuration, error) {
	if b.err != nil {
		return nil, b.err
	}

	sources := make([]any, 0, len(b.producers))
	for _, produce := range b.producers {
		source, err := produce()
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	c, err := NewWithOptions(b.opts, sources...)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(c); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Configuration {
	c, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("configuration build failed: %v", err))
	}
	return c
}

// BuildAndScan builds and decodes the final configuration into the provided
// target struct pointer.
func (b *Builder) BuildAndScan(target any) error {
	c, err := b.Build()
	if err != nil {
		return err
	}
	return c.Scan("", target)
}
