// Package scan drives a capability scan end to end: syntactic prescan,
// type-checked load, form probes against every named type, and persistence
// of the positive outcomes into the capability index.
package scan

// Config holds runtime configuration for a single scan.
type Config struct {
	// ProjectRoot is the absolute path to the target Go module.
	ProjectRoot string

	// ManifestPath is an explicit manifest location. Empty means discover
	// capform.yml / capform.yaml under ProjectRoot.
	ManifestPath string

	// Workers bounds the number of packages probed concurrently.
	// Values < 1 fall back to DefaultWorkers.
	Workers int

	// Verbose enables per-package progress output.
	Verbose bool
}

// DefaultWorkers is the package-level probe concurrency used when the
// caller does not set one.
const DefaultWorkers = 4

// workers returns the effective concurrency bound.
func (c Config) workers() int {
	if c.Workers < 1 {
		return DefaultWorkers
	}
	return c.Workers
}
