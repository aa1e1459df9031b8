package contacts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk contacts format:
//
//	contacts:
//	  alice: alice@example.com
//	  bob: bob@corp.io
type File struct {
	Contacts map[string]string `yaml:"contacts"`
}

// LoadFile reads a YAML contacts file.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contacts: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing contacts: %w", err)
	}
	return f.Contacts, nil
}

// Open builds a directory from the built-in contacts and, when path is set, the file at path.
func Open(path string) (*Directory, error) {
	if path == "" {
		return NewDirectory(nil), nil
	}
	extra, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewDirectory(extra), nil
}
