package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	mf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return mf, nil
}

// LoadGlob loads every file matching the doublestar patterns (e.g.
// "mappings/**/*.yaml") and merges them into one MappingFile in path order.
// It also returns the matched paths.
func LoadGlob(patterns ...string) (*MappingFile, []string, error) {
	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		paths = append(paths, matches...)
	}

	for i := range paths {
		paths[i] = filepath.Clean(paths[i])
	}

	slices.Sort(paths)
	paths = slices.Compact(paths)

	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no mapping files match %v", patterns)
	}

	merged := &MappingFile{}

	for _, path := range paths {
		mf, err := LoadFile(path)
		if err != nil {
			return nil, nil, err
		}

		if err := merged.Merge(mf); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	applyDefaults(merged)

	return merged, paths, nil
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = "1"
	}
}

// Merge appends other's mappings and converters. Files must agree on version.
func (mf *MappingFile) Merge(other *MappingFile) error {
	switch {
	case mf.Version == "":
		mf.Version = other.Version
	case other.Version != "" && other.Version != mf.Version:
		return fmt.Errorf("version %q conflicts with %q", other.Version, mf.Version)
	}

	mf.TypeMappings = append(mf.TypeMappings, other.TypeMappings...)

	for _, c := range other.Converters {
		if !slices.ContainsFunc(mf.Converters, func(have ConverterDef) bool { return have.Name == c.Name }) {
			mf.Converters = append(mf.Converters, c)
		}
	}

	return nil
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
