// Package dataset resolves raw dataset files into cohort mutations and
// samples. It is the boundary between on-disk formats (JSON cohort files,
// VCF) and the in-memory store; the store only ever sees resolved data.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"genelink/internal/cohort"
	"genelink/internal/log"
)

// Gene is supporting annotation carried alongside the cohort. Genes are
// display metadata; filtering joins on Mutation.Gene symbols directly.
type Gene struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name,omitempty"`
	Chromosome string `json:"chromosome,omitempty"`
}

// Dataset is a fully resolved cohort ready for Store.LoadData.
type Dataset struct {
	Genes     []Gene            `json:"genes,omitempty"`
	Mutations []cohort.Mutation `json:"mutations"`
	Samples   []cohort.Sample   `json:"samples"`
}

// LoadJSON reads a cohort JSON file: an object with "genes", "mutations" and
// "samples" arrays. Schema errors surface here; semantic validation (empty
// ids, carrier-less mutations) is the store's job.
func LoadJSON(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", path, err)
	}

	log.Info(log.CatData, "json dataset loaded", "path", path,
		"genes", len(ds.Genes), "mutations", len(ds.Mutations), "samples", len(ds.Samples))
	return &ds, nil
}

// Load resolves one manifest entry to a dataset, dispatching on its format.
func Load(entry Entry) (*Dataset, error) {
	switch entry.Format {
	case FormatJSON:
		return LoadJSON(entry.Path)
	case FormatVCF:
		return LoadVCF(entry.Path, VCFOptions{DefaultDisease: entry.Disease})
	default:
		return nil, fmt.Errorf("dataset: entry %q has unsupported format %q", entry.Name, entry.Format)
	}
}
