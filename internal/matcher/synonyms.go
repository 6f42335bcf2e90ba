package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harusame/templight/internal/parser"
)

// synonymFile is the on-disk shape of a synonym override file:
//
//	sections:
//	  Executive Summary: ["総括", "エグゼクティブサマリー"]
//	  Evidence: ["裏付け"]
type synonymFile struct {
	Sections map[string][]string `yaml:"sections"`
}

// LoadSynonyms reads a YAML synonym override file and overlays it onto
// the built-in table. Canonical names absent from the file keep their
// built-in synonyms.
func LoadSynonyms(path string) (parser.SynonymTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading synonym file: %w", err)
	}

	var file synonymFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing synonym file %s: %w", path, err)
	}

	return parser.DefaultSynonyms().Merge(parser.SynonymTable(file.Sections)), nil
}
