package main

import (
	"os"
	"slices"

	"github.com/advdv/broute"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// typesFile is the YAML document read by the --types flag.
type typesFile struct {
	Types map[string]string `yaml:"types"`
}

// loadTypes returns the default types extended with the ones in path. An empty path only yields the
// defaults.
func loadTypes(path string) (*broute.TypeRegistry, error) {
	reg := broute.DefaultTypes()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read types file")
	}

	var doc typesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse types file %s", path)
	}

	names := lo.Keys(doc.Types)
	slices.Sort(names)

	for _, name := range names {
		if err := reg.Register(name, doc.Types[name]); err != nil {
			return nil, errors.Wrapf(err, "types file %s", path)
		}
	}

	return reg, nil
}
