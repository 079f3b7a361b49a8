package confidence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Load reads a Configuration from YAML documents, ordered from least to most
// significant.
func Load(readers ...io.Reader) (*Configuration, error) {
	return LoadWithOptions(Options{}, readers...)
}

// LoadWithOptions reads a Configuration from YAML documents with explicit
// options.
func LoadWithOptions(opts Options, readers ...io.Reader) (*Configuration, error) {
	documents := make([]string, 0, len(readers))
	for _, reader := range readers {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration document: %w", err)
		}
		documents = append(documents, string(data))
	}
	return LoadStringWithOptions(opts, documents...)
}

// LoadString reads a Configuration from YAML document strings, ordered from
// least to most significant.
func LoadString(documents ...string) (*Configuration, error) {
	return LoadStringWithOptions(Options{}, documents...)
}

// LoadStringWithOptions reads a Configuration from YAML document strings
// with explicit options.
func LoadStringWithOptions(opts Options, documents ...string) (*Configuration, error) {
	sources := make([]any, 0, len(documents))
	for _, document := range documents {
		source, err := YAML.Loads(document)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return NewWithOptions(opts, sources...)
}

// LoadFile reads a Configuration from named files, ordered from least to
// most significant. The format of each file is detected from its extension,
// falling back to YAML. Missing files are an error; use LoadName for
// best-effort discovery across locations.
func LoadFile(paths ...string) (*Configuration, error) {
	return LoadFileWithOptions(Options{}, paths...)
}

// LoadFileWithOptions reads a Configuration from named files with explicit
// options.
func LoadFileWithOptions(opts Options, paths ...string) (*Configuration, error) {
	sources := make([]any, 0, len(paths))
	for _, path := range paths {
		source, err := readFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return NewWithOptions(opts, sources...)
}

// readFile parses a single configuration file into a plain source value.
func readFile(path string) (any, error) {
	path = expandUser(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file '%s': %w", path, err)
	}

	format := DetectFormat(path)
	if format == nil {
		format = YAML
	}

	source, err := format.Loads(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file '%s': %w", path, err)
	}

	logger.Debug().Str("path", path).Stringer("format", format).Msg("loaded configuration file")
	return source, nil
}

// readFileIfExists is readFile for best-effort loading: a missing file
// contributes nothing instead of failing.
func readFileIfExists(path string) (any, error) {
	source, err := readFile(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return source, err
}

// DumpFile serializes a Configuration to a file, atomically: the document is
// written to a temporary file in the target directory, synced, and renamed
// over the destination. The format is detected from the extension, falling
// back to YAML.
func DumpFile(c *Configuration, path string) error {
	format := DetectFormat(path)
	if format == nil {
		format = YAML
	}

	document, err := format.Dumps(c)
	if err != nil {
		return err
	}

	return atomicWriteFile(path, []byte(document))
}

// atomicWriteFile writes data through a temporary file and rename.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// expandUser replaces a leading ~ with the current user's home directory.
func expandUser(path string) string {
	if path == "~" || len(path) > 1 && path[0] == '~' && path[1] == os.PathSeparator {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
