package dataset

import (
	"fmt"
	"os"
	"strconv"

	"genelink/internal/cohort"
	"genelink/internal/log"
	"genelink/internal/vcf"
)

// VCFOptions tune the VCF-to-cohort adaptation.
type VCFOptions struct {
	// DefaultDisease labels every sample; VCF carries no clinical fields.
	DefaultDisease string

	// SampleType labels every sample; defaults to "primary".
	SampleType string
}

// LoadVCF parses a VCF file and adapts it into a cohort dataset. Records with
// no carrying sample are dropped, as are records the parser flags invalid.
func LoadVCF(path string, opts VCFOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	p := vcf.New()
	p.SkipInvalid = true
	header, records, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	for _, w := range p.Warnings() {
		log.Warn(log.CatData, "vcf record skipped", "path", path, "line", w.Line, "reason", w.Message)
	}

	ds := FromVCF(header, records, opts)
	log.Info(log.CatData, "vcf dataset loaded", "path", path,
		"mutations", len(ds.Mutations), "samples", len(ds.Samples))
	return ds, nil
}

// FromVCF converts parsed VCF content into cohort mutations and samples.
// Samples come from the header columns; a sample carries a mutation when its
// genotype calls at least one alternate allele.
func FromVCF(header vcf.Header, records []vcf.Record, opts VCFOptions) *Dataset {
	sampleType := opts.SampleType
	if sampleType == "" {
		sampleType = "primary"
	}

	samples := make([]cohort.Sample, len(header.Samples))
	for i, name := range header.Samples {
		samples[i] = cohort.Sample{
			SampleID:   name,
			Disease:    opts.DefaultDisease,
			SampleType: sampleType,
		}
	}

	var mutations []cohort.Mutation
	genes := map[string]bool{}
	for i := range records {
		rec := &records[i]

		carriers := carrierIDs(rec)
		if len(carriers) == 0 {
			continue
		}

		m := cohort.Mutation{
			ID:        recordID(rec),
			Gene:      geneSymbol(rec),
			Position:  int(rec.Pos),
			AAChange:  infoString(rec, "AA"),
			Type:      consequence(rec),
			Count:     len(carriers),
			SampleIDs: carriers,
		}
		mutations = append(mutations, m)
		if m.Gene != "" {
			genes[m.Gene] = true
		}
	}

	ds := &Dataset{Mutations: mutations, Samples: samples}
	for g := range genes {
		ds.Genes = append(ds.Genes, Gene{Symbol: g})
	}
	return ds
}

func recordID(rec *vcf.Record) string {
	if rec.ID != "" {
		return rec.ID
	}
	alt := "."
	if len(rec.Alt) > 0 {
		alt = rec.Alt[0]
	}
	return rec.Chrom + ":" + strconv.FormatInt(rec.Pos, 10) + ":" + rec.Ref + ">" + alt
}

func geneSymbol(rec *vcf.Record) string {
	if g := infoString(rec, "GENE"); g != "" {
		return g
	}
	return rec.Chrom
}

func infoString(rec *vcf.Record, key string) string {
	if v, ok := rec.Info[key]; ok && !v.Flag() {
		return v.String()
	}
	return ""
}

// consequence prefers an explicit CONSEQUENCE INFO value and falls back to a
// coarse mapping from the structural variant class.
func consequence(rec *vcf.Record) cohort.ConsequenceType {
	if c := cohort.ConsequenceType(infoString(rec, "CONSEQUENCE")); c.Known() {
		return c
	}
	switch rec.VariantType() {
	case vcf.SNP:
		return cohort.Missense
	case vcf.Insertion:
		return cohort.InFrameIns
	case vcf.Deletion:
		return cohort.InFrameDel
	default:
		return cohort.Other
	}
}

func carrierIDs(rec *vcf.Record) []string {
	var out []string
	for _, s := range rec.Samples {
		if s.Genotype == nil {
			continue
		}
		for _, a := range s.Genotype.Alleles {
			if a > 0 {
				out = append(out, s.Name)
				break
			}
		}
	}
	return out
}
