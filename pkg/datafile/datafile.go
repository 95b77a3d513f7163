// Package datafile decodes the static YAML/JSON data files the advisor ships with.
package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported data file format")

// Decode reads path and decodes it into out. The format follows the file
// extension: .yaml/.yml or .json.
func Decode(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("data file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeBytes(filepath.Ext(path), raw, out)
}

// DecodeBytes decodes raw according to ext (".yaml", ".yml" or ".json").
func DecodeBytes(ext string, raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errors.New("data file is empty")
	}

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}
