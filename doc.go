// Package confidence merges layered configuration sources into a single
// read-mostly namespace with dotted-path access and ${path} references
// between configured values.
//
// Features:
//   - Multiple sources merged left to right, later sources taking precedence
//   - Dotted keys ("server.port") split into nested namespaces
//   - Lazy wrapping: sub-mappings become namespaces, lists become
//     reference-aware sequence views
//   - ${path} references, resolved against the root namespace, with template
//     interpolation and recursion detection
//   - Configurable policy for unconfigured keys: a silent NotConfigured
//     sentinel, a hard error, or a caller-supplied default
//   - YAML (default), JSON and TOML codecs, file / string / reader loading,
//     XDG and environment variable based discovery
//   - Struct decoding via mapstructure
//
// Quick start:
//
//	cfg, err := confidence.LoadString(`
//	server:
//	    host: localhost
//	    port: 8080
//	url: http://${server.host}:${server.port}/
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	url, _ := cfg.String("url") // "http://localhost:8080/"
//	port, _ := cfg.Int64("server.port")
//
// Construction is the only write phase. After that the tree is treated as
// read-only: no method mutates configured values, so a Configuration can be
// shared freely between goroutines without locking.
package confidence
