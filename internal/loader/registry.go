package loader

import (
	"fmt"
	"sort"

	"vdjbench/internal/benchmark"
	apperrors "vdjbench/internal/errors"
)

// Options carries loader-specific settings.
type Options struct {
	// Filename overrides the file read inside each dataset directory.
	Filename string
}

// Factory builds a benchmark.Loader from options.
type Factory func(opts Options) benchmark.Loader

type entry struct {
	description string
	factory     Factory
}

var registry = map[string]entry{
	"tenx-csv": {
		description: "10x Genomics contig annotations (" + DefaultTenXFilename + ")",
		factory: func(opts Options) benchmark.Loader {
			return func(dir string) (any, error) {
				return LoadTenXCSV(dir, opts.Filename)
			}
		},
	},
	"airr-tsv": {
		description: "AIRR rearrangement table (" + DefaultAIRRFilename + ")",
		factory: func(opts Options) benchmark.Loader {
			return func(dir string) (any, error) {
				return LoadAIRRTSV(dir, opts.Filename)
			}
		},
	},
}

// Lookup returns the named loader configured with opts.
func Lookup(name string, opts Options) (benchmark.Loader, error) {
	e, ok := registry[name]
	if !ok {
		return nil, apperrors.NewConfigurationError("loader", fmt.Sprintf("unknown loader %q (available: %v)", name, Names()), nil)
	}
	return e.factory(opts), nil
}

// Names lists the registered loaders in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns a one-line description of the named loader.
func Describe(name string) string {
	return registry[name].description
}
