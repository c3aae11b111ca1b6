package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Format names a supported on-disk dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatVCF  Format = "vcf"
)

// Entry is one named dataset in a manifest.
type Entry struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Format Format `yaml:"format"`

	// Disease is the default disease label for formats that do not carry
	// per-sample clinical fields (VCF).
	Disease string `yaml:"disease,omitempty"`
}

// Manifest lists the datasets an installation knows about.
type Manifest struct {
	Datasets []Entry `yaml:"datasets"`
}

// LoadManifest reads and validates a manifest.yaml. Relative dataset paths
// are resolved against the manifest's own directory.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("dataset: decode manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	seen := map[string]bool{}
	for i := range m.Datasets {
		e := &m.Datasets[i]
		if e.Name == "" {
			return nil, fmt.Errorf("dataset: manifest entry %d has no name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("dataset: duplicate manifest entry %q", e.Name)
		}
		seen[e.Name] = true

		if e.Path == "" {
			return nil, fmt.Errorf("dataset: manifest entry %q has no path", e.Name)
		}
		if !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(base, e.Path)
		}

		switch e.Format {
		case FormatJSON, FormatVCF:
		case "":
			return nil, fmt.Errorf("dataset: manifest entry %q has no format", e.Name)
		default:
			return nil, fmt.Errorf("dataset: manifest entry %q has unsupported format %q", e.Name, e.Format)
		}
	}
	return &m, nil
}

// Lookup finds an entry by name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	for _, e := range m.Datasets {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the dataset names in manifest order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Datasets))
	for i, e := range m.Datasets {
		names[i] = e.Name
	}
	return names
}
