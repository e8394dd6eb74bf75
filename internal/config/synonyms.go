package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// SynonymEntry maps a canonical term to the spellings users type for it.
type SynonymEntry struct {
	Canonical string   `toml:"canonical"`
	Synonyms  []string `toml:"synonyms"`
}

// SynonymFile is the on-disk shape of SYNONYMS_FILE:
//
//	[[feature]]
//	canonical = "piscina"
//	synonyms = ["pool", "alberca"]
//
//	[[type]]
//	canonical = "casa"
//	synonyms = ["house", "casas"]
//
// Arrays of tables keep declaration order, which the synonym index depends on.
type SynonymFile struct {
	Features []SynonymEntry `toml:"feature"`
	Types    []SynonymEntry `toml:"type"`
}

// LoadSynonyms reads a synonym dictionary file.
// An empty path returns nil, nil so callers fall back to the built-in dictionaries.
func LoadSynonyms(path string) (*SynonymFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat synonyms file %s: %w", path, err)
	}

	var file SynonymFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file %s: %w", path, err)
	}

	for i, e := range file.Features {
		if strings.TrimSpace(e.Canonical) == "" {
			return nil, fmt.Errorf("feature entry %d has no canonical term", i)
		}
	}
	for i, e := range file.Types {
		if strings.TrimSpace(e.Canonical) == "" {
			return nil, fmt.Errorf("type entry %d has no canonical term", i)
		}
	}

	return &file, nil
}
