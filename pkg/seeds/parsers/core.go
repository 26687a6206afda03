//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package parsers loads permission seed documents from YAML files,
// dispatching on the document's declared version.
package parsers

import (
	"io"
	"os"

	"github.com/fieldgate/permengine/pkg/common"
	"github.com/fieldgate/permengine/pkg/seeds"
	"github.com/fieldgate/permengine/pkg/seeds/parsers/v1"

	"gopkg.in/yaml.v3"
)

// Preamble represents the header information of a seed file
type Preamble struct {
	Version string `yaml:"version"`
}

// Load loads a permission seed document from a file path
func Load(path string) (*seeds.Document, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse loads a permission seed document from raw YAML bytes.
func Parse(data []byte) (*seeds.Document, error) {
	var preamble Preamble

	err := yaml.Unmarshal(data, &preamble)
	if err != nil {
		return nil, common.NewSeedError("", common.SeedReasonParse, "%v", err)
	}

	switch preamble.Version {
	case "permissions/v1":
		return v1.Parse(data)
	}

	return nil, common.NewSeedError("", common.SeedReasonUnknownVersion, "unsupported seed version %q", preamble.Version)
}
