// Package config loads YAML configuration with environment variable
// expansion. Decoding is strict: keys that do not map onto a field of the
// target are rejected, so typos fail loudly instead of silently keeping a
// default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after decoding.
type Validator interface {
	Validate() error
}

// Decode expands ${VAR} references in the document read from r, decodes it
// over target and validates the result. An empty document keeps the values
// already in target.
func Decode[T any](r io.Reader, target *T) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(raw))))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}

	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// Load decodes the file at filename over target.
func Load[T any](filename string, target *T) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	defer f.Close()

	if err := Decode(f, target); err != nil {
		return fmt.Errorf("config file %s: %w", filename, err)
	}
	return nil
}

// LoadOptional is Load for a file that may be absent. A missing file keeps
// the defaults in target, which are still validated. It reports whether the
// file was found.
func LoadOptional[T any](filename string, target *T) (bool, error) {
	err := Load(filename, target)
	if !errors.Is(err, os.ErrNotExist) {
		return err == nil, err
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return false, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return false, nil
}
