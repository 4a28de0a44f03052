package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML catalog definition and validates it.
//
//	locations:
//	  - name: Assam
//	    sublocations: [Baksa, Barpeta]
//	seasons: [Kharif, Rabi]
//	crops: [Rice, Wheat]
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog definition and validates it. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var spec Spec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(spec)
}
