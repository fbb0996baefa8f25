package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrPreset = errors.New("params: invalid preset")

// ParsePreset decodes a YAML preset. Keys it does not set keep their
// default values; the result is clamped to the control ranges.
func ParsePreset(data []byte) (Snapshot, error) {
	s := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Defaults(), nil
		}
		return Snapshot{}, fmt.Errorf("%w: %w", ErrPreset, err)
	}
	return s.Clamp(), nil
}

// LoadPreset reads and parses the preset at path.
func LoadPreset(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read preset: %w", err)
	}
	s, err := ParsePreset(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// MarshalPreset encodes the preset fields of s.
func MarshalPreset(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode preset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode preset: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePreset writes s to path.
func SavePreset(path string, s Snapshot) error {
	data, err := MarshalPreset(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}
