package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is wrapped by every manifest parse failure.
var ErrInvalidManifest = errors.New("config: invalid manifest")

// Manifest lists bindings chosen by configuration instead of code.
//
//	bindings:
//	  - abstraction: coffee.WaterService
//	    implementation: coffee.BottledWaterService
//	  - abstraction: coffee.BeanService[]
//	    implementation: coffee.ArabicaBeanService[]
//
// Names are looked up in the type catalog; see activator.Catalog.ByName.
type Manifest struct {
	Bindings []Binding `yaml:"bindings"`
}

// Binding names one abstraction → implementation pair.
type Binding struct {
	Abstraction    string `yaml:"abstraction"`
	Implementation string `yaml:"implementation"`
}

// ParseManifest decodes a YAML manifest. Unknown fields are rejected and
// both names are required for every binding.
func ParseManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	for i, b := range m.Bindings {
		m.Bindings[i].Abstraction = strings.TrimSpace(b.Abstraction)
		m.Bindings[i].Implementation = strings.TrimSpace(b.Implementation)
		if m.Bindings[i].Abstraction == "" || m.Bindings[i].Implementation == "" {
			return nil, fmt.Errorf("%w: binding %d: abstraction and implementation are required", ErrInvalidManifest, i)
		}
	}
	return &m, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open manifest: %w", err)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
