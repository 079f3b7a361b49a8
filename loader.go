package confidence

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Locality enumerates the places configuration is conventionally found,
// ranging from system-wide locations to environment variables.
type Locality int

const (
	// LocalitySystem covers system-wide locations like /etc and the XDG
	// config dirs.
	LocalitySystem Locality = iota
	// LocalityUser covers user-local locations like ~/.config.
	LocalityUser
	// LocalityApplication covers the current working directory.
	LocalityApplication
	// LocalityEnvironment covers application-specific environment variables.
	LocalityEnvironment
)

// Loader produces a configuration source for an application name and file
// extension. A loader that finds nothing returns a nil source, not an error.
type Loader func(name, extension string) (any, error)

// Loaders composes a load order from specifiers: a Locality expands to its
// predefined loaders, a string is used as a path template with {name} and
// {extension} placeholders, and a Loader passes through verbatim.
//
//	order, err := confidence.Loaders(
//	    confidence.LocalityUser,
//	    "/etc/defaults/hard-coded.yaml",
//	    "/path/to/{name}.{extension}",
//	    myLoader,
//	)
func Loaders(specifiers ...any) ([]Loader, error) {
	var loaders []Loader
	for _, specifier := range specifiers {
		switch s := specifier.(type) {
		case Locality:
			expanded, err := localityLoaders(s)
			if err != nil {
				return nil, err
			}
			loaders = append(loaders, expanded...)
		case string:
			loaders = append(loaders, templateLoader(s))
		case Loader:
			loaders = append(loaders, s)
		case func(name, extension string) (any, error):
			loaders = append(loaders, s)
		default:
			return nil, fmt.Errorf("unsupported load order specifier %T", specifier)
		}
	}
	return loaders, nil
}

// DefaultLoadOrder reads system, user and application locations before
// environment variables, in increasing significance.
var DefaultLoadOrder = func() []Loader {
	order, err := Loaders(LocalitySystem, LocalityUser, LocalityApplication, LocalityEnvironment)
	if err != nil {
		panic(fmt.Sprintf("confidence: %v", err))
	}
	return order
}()

func localityLoaders(locality Locality) ([]Loader, error) {
	switch locality {
	case LocalitySystem:
		return []Loader{
			ReadXDGConfigDirs,
			templateLoader("/etc/{name}.{extension}"),
			templateLoader("/Library/Preferences/{name}.{extension}"),
			envVarDirLoader("PROGRAMDATA"),
		}, nil
	case LocalityUser:
		return []Loader{
			ReadXDGConfigHome,
			templateLoader("~/Library/Preferences/{name}.{extension}"),
			envVarDirLoader("APPDATA"),
			envVarDirLoader("LOCALAPPDATA"),
			templateLoader("~/.{name}.{extension}"),
		}, nil
	case LocalityApplication:
		return []Loader{
			templateLoader("./{name}.{extension}"),
		}, nil
	case LocalityEnvironment:
		return []Loader{
			ReadEnvVarFile,
			ReadEnvVars,
		}, nil
	default:
		return nil, fmt.Errorf("unknown locality %d", locality)
	}
}

// templateLoader reads a file at a path template with {name} and {extension}
// placeholders; a missing file contributes nothing.
func templateLoader(template string) Loader {
	return func(name, extension string) (any, error) {
		path := strings.ReplaceAll(template, "{name}", name)
		path = strings.ReplaceAll(path, "{extension}", extension)
		return readFileIfExists(path)
	}
}

// envVarDirLoader reads name.extension from the directory named by an
// environment variable, e.g. APPDATA.
func envVarDirLoader(envVar string) Loader {
	return func(name, extension string) (any, error) {
		dir := os.Getenv(envVar)
		if dir == "" {
			return nil, nil
		}
		return readFileIfExists(filepath.Join(expandUser(dir), name+"."+extension))
	}
}

// ReadXDGConfigDirs loads name.extension from the XDG-specified system-wide
// configuration directories, defaulting to /etc/xdg. Depends on the
// XDG_CONFIG_DIRS environment variable.
func ReadXDGConfigDirs(name, extension string) (any, error) {
	var dirs []string
	if configDirs := os.Getenv("XDG_CONFIG_DIRS"); configDirs != "" {
		// PATH-like env vars operate in decreasing precedence, reverse the
		// set so later sources win
		split := filepath.SplitList(configDirs)
		for i := len(split) - 1; i >= 0; i-- {
			dirs = append(dirs, split[i])
		}
	} else {
		// XDG spec: when unset or empty, /etc/xdg should be used
		dirs = []string{"/etc/xdg"}
	}

	sources := make([]any, 0, len(dirs))
	for _, dir := range dirs {
		source, err := readFileIfExists(filepath.Join(dir, name+"."+extension))
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return New(sources...)
}

// ReadXDGConfigHome loads name.extension from the XDG-specified user
// configuration directory, defaulting to ~/.config. Depends on the
// XDG_CONFIG_HOME or HOME environment variables.
func ReadXDGConfigHome(name, extension string) (any, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		// XDG spec: when unset or empty, $HOME/.config should be used
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil
		}
		configHome = filepath.Join(home, ".config")
	}
	return readFileIfExists(filepath.Join(configHome, name+"."+extension))
}

// envWordSeparator matches a single underscore between two alphanumerics,
// which reads as a namespace separator in an environment variable name.
var envWordSeparator = regexp.MustCompile(`([0-9A-Za-z])_([0-9A-Za-z])`)

// dottedKey turns a prefix-stripped environment variable name into a dotted
// path: single underscores become separators, doubled underscores escape a
// literal underscore (SPA__CE_KEY reads as key "key" in namespace "spa_ce").
// Replacements do not overlap, so single-character segments keep their
// trailing underscore: A_B_C reads as "a.b_c".
func dottedKey(name string) string {
	name = envWordSeparator.ReplaceAllString(name, "$1.$2")
	return strings.ReplaceAll(name, "__", "_")
}

// ReadEnvVars collects environment variables starting with NAME_ into a
// configuration source, lower-casing names and interpreting underscores as
// namespace separators. Values remain strings; NAME_CONFIG_FILE is reserved
// for ReadEnvVarFile and ignored here. The extension is unused.
func ReadEnvVars(name, extension string) (any, error) {
	prefix := strings.ToUpper(name) + "_"
	reserved := strings.ToUpper(name) + "_CONFIG_FILE"

	values := make(map[string]any)
	for _, entry := range os.Environ() {
		envVar, value, _ := strings.Cut(entry, "=")
		if !strings.HasPrefix(strings.ToUpper(envVar), prefix) || strings.ToUpper(envVar) == reserved {
			continue
		}
		values[dottedKey(strings.ToLower(envVar[len(prefix):]))] = value
	}
	if len(values) == 0 {
		return nil, nil
	}

	logger.Debug().Str("prefix", prefix).Int("count", len(values)).Msg("read environment variables")
	return values, nil
}

// ReadEnvVarFile loads the file named by the NAME_CONFIG_FILE environment
// variable. Unlike the location-based loaders this is strict: when the
// variable points at a file that cannot be read, that is an error. The
// extension is unused.
func ReadEnvVarFile(name, extension string) (any, error) {
	path := os.Getenv(strings.ToUpper(name) + "_CONFIG_FILE")
	if path == "" {
		return nil, nil
	}
	return readFile(path)
}

// NameOptions control LoadNameWithOptions.
type NameOptions struct {
	// LoadOrder lists loaders in increasing significance, DefaultLoadOrder
	// when nil.
	LoadOrder []Loader

	// Extension of the configuration files to look for, "yaml" when empty.
	Extension string

	// Options for the resulting Configuration.
	Options Options
}

// LoadName reads a Configuration by application name, trying the default
// load order (system, user, application, environment) in increasing
// significance. Multiple names act as the inner loop: /etc/name1.yaml and
// /etc/name2.yaml are both read before ./name1.yaml and ./name2.yaml.
func LoadName(names ...string) (*Configuration, error) {
	return LoadNameWithOptions(NameOptions{}, names...)
}

// LoadNameWithOptions reads a Configuration by name with an explicit load
// order, extension and configuration options.
func LoadNameWithOptions(opts NameOptions, names ...string) (*Configuration, error) {
	order := opts.LoadOrder
	if order == nil {
		order = DefaultLoadOrder
	}
	extension := opts.Extension
	if extension == "" {
		extension = "yaml"
	}

	var sources []any
	for _, loader := range order {
		for _, name := range names {
			source, err := loader(name, extension)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source)
		}
	}

	return NewWithOptions(opts.Options, sources...)
}
