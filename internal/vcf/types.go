// Package vcf parses Variant Call Format files into header metadata and
// variant records. The parser is line oriented and tolerant: with skip-invalid
// enabled, malformed records become warnings instead of aborting the run.
package vcf

import (
	"strconv"
	"strings"
)

// Header holds the meta-information section of a VCF file, everything up to
// and including the #CHROM column line.
type Header struct {
	// FileFormat is the declared version, e.g. "VCFv4.2".
	FileFormat string `json:"fileFormat"`

	// Reference is the reference genome, empty when not declared.
	Reference string `json:"reference,omitempty"`

	Contigs      []Contig    `json:"contigs,omitempty"`
	InfoFields   []FieldDef  `json:"infoFields,omitempty"`
	FormatFields []FieldDef  `json:"formatFields,omitempty"`
	Filters      []FilterDef `json:"filters,omitempty"`

	// Samples are the column names after FORMAT on the #CHROM line.
	Samples []string `json:"samples,omitempty"`

	// MetaLines keeps every raw ## line for round-tripping.
	MetaLines []string `json:"metaLines,omitempty"`
}

// Contig is a chromosome declaration from a ##contig line. Length is zero
// when the declaration does not carry one.
type Contig struct {
	ID     string `json:"id"`
	Length int64  `json:"length,omitempty"`
}

// FieldDef describes an INFO or FORMAT field declared in the header.
type FieldDef struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// FilterDef describes a FILTER declared in the header.
type FilterDef struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Record is a single variant line.
type Record struct {
	Chrom string `json:"chrom"`

	// Pos is the 1-based position.
	Pos int64 `json:"pos"`

	// ID is the variant identifier, empty when the column was ".".
	ID string `json:"id,omitempty"`

	// Ref is the reference allele.
	Ref string `json:"ref"`

	// Alt holds the alternate alleles, empty when the column was ".".
	Alt []string `json:"alt,omitempty"`

	// Qual is the quality score; HasQual is false when the column was "."
	// or unparseable.
	Qual    float64 `json:"qual,omitempty"`
	HasQual bool    `json:"hasQual"`

	Filter FilterStatus `json:"filter"`

	Info map[string]InfoValue `json:"info,omitempty"`

	Samples []SampleData `json:"samples,omitempty"`
}

// IsSNP reports whether the record is a single-nucleotide polymorphism:
// one-base reference and every alternate a single non-star base.
func (r *Record) IsSNP() bool {
	if len(r.Ref) != 1 {
		return false
	}
	for _, a := range r.Alt {
		if len(a) != 1 || a == "*" {
			return false
		}
	}
	return true
}

// IsInsertion reports whether any alternate is longer than the reference.
func (r *Record) IsInsertion() bool {
	for _, a := range r.Alt {
		if len(a) > len(r.Ref) {
			return true
		}
	}
	return false
}

// IsDeletion reports whether any alternate is shorter than the reference.
func (r *Record) IsDeletion() bool {
	for _, a := range r.Alt {
		if len(a) < len(r.Ref) {
			return true
		}
	}
	return false
}

// VariantType classifies the record. A record with both longer and shorter
// alternates is Complex.
func (r *Record) VariantType() VariantType {
	ins, del := r.IsInsertion(), r.IsDeletion()
	switch {
	case r.IsSNP():
		return SNP
	case ins && del:
		return Complex
	case ins:
		return Insertion
	case del:
		return Deletion
	default:
		return Other
	}
}

// VariantType is the coarse classification of a variant record.
type VariantType int

const (
	SNP VariantType = iota
	Insertion
	Deletion
	Complex
	Other
)

func (t VariantType) String() string {
	switch t {
	case SNP:
		return "snp"
	case Insertion:
		return "insertion"
	case Deletion:
		return "deletion"
	case Complex:
		return "complex"
	default:
		return "other"
	}
}

// FilterStatus is the parsed FILTER column. The zero value means PASS.
type FilterStatus struct {
	// Missing is true when the column was ".".
	Missing bool `json:"missing,omitempty"`

	// Failed lists the filters the record failed; empty with Missing false
	// means the record passed.
	Failed []string `json:"failed,omitempty"`
}

// Pass reports whether the record passed all filters.
func (f FilterStatus) Pass() bool {
	return !f.Missing && len(f.Failed) == 0
}

// InfoValue is one value from the INFO column. Values keep their raw text;
// the typed accessors parse on demand so callers only pay for the fields
// they read.
type InfoValue struct {
	raw  string
	flag bool
}

// FlagValue is the InfoValue for a key that appears without "=value".
func FlagValue() InfoValue { return InfoValue{flag: true} }

// StringValue wraps a raw INFO value.
func StringValue(raw string) InfoValue { return InfoValue{raw: raw} }

// Flag reports whether the key appeared without a value.
func (v InfoValue) Flag() bool { return v.flag }

// String returns the raw text of the value.
func (v InfoValue) String() string { return v.raw }

// Int parses the value as a single integer.
func (v InfoValue) Int() (int64, bool) {
	n, err := strconv.ParseInt(v.raw, 10, 64)
	return n, err == nil
}

// Float parses the value as a single float.
func (v InfoValue) Float() (float64, bool) {
	f, err := strconv.ParseFloat(v.raw, 64)
	return f, err == nil
}

// Ints parses a comma-separated integer list.
func (v InfoValue) Ints() ([]int64, bool) {
	parts := strings.Split(v.raw, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Floats parses a comma-separated float list.
func (v InfoValue) Floats() ([]float64, bool) {
	parts := strings.Split(v.raw, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Strings splits a comma-separated value list.
func (v InfoValue) Strings() []string {
	return strings.Split(v.raw, ",")
}

// SampleData holds one sample's genotype and FORMAT fields for a record.
type SampleData struct {
	Name string `json:"name"`

	// Genotype is nil when the GT field was missing ("./.", ".|.", ".").
	Genotype *Genotype `json:"genotype,omitempty"`

	// Fields holds the remaining FORMAT key/value pairs.
	Fields map[string]string `json:"fields,omitempty"`
}

// Genotype is a parsed GT value.
type Genotype struct {
	// Alleles are allele indices, 0 for reference, 1+ for alternates.
	// A missing allele (".") is -1.
	Alleles []int `json:"alleles"`

	// Phased is true when the separator was "|".
	Phased bool `json:"phased"`
}

// ParseGenotype parses a GT string like "0/1", "1|1" or "./.". Fully missing
// genotypes return nil.
func ParseGenotype(s string) *Genotype {
	if s == "." || s == "./." || s == ".|." {
		return nil
	}
	phased := strings.Contains(s, "|")
	sep := "/"
	if phased {
		sep = "|"
	}
	parts := strings.Split(s, sep)
	alleles := make([]int, len(parts))
	for i, p := range parts {
		if p == "." {
			alleles[i] = -1
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			alleles[i] = -1
			continue
		}
		alleles[i] = n
	}
	return &Genotype{Alleles: alleles, Phased: phased}
}

// IsHomRef reports whether every allele is the reference.
func (g *Genotype) IsHomRef() bool {
	for _, a := range g.Alleles {
		if a != 0 {
			return false
		}
	}
	return true
}

// IsHet reports whether the called alleles differ.
func (g *Genotype) IsHet() bool {
	called := g.called()
	if len(called) < 2 {
		return false
	}
	for _, a := range called {
		if a != called[0] {
			return true
		}
	}
	return false
}

// IsHomAlt reports whether every called allele is the same alternate.
func (g *Genotype) IsHomAlt() bool {
	called := g.called()
	if len(called) == 0 {
		return false
	}
	for _, a := range called {
		if a <= 0 || a != called[0] {
			return false
		}
	}
	return true
}

func (g *Genotype) called() []int {
	out := make([]int, 0, len(g.Alleles))
	for _, a := range g.Alleles {
		if a >= 0 {
			out = append(out, a)
		}
	}
	return out
}

// Stats accumulates summary counts over parsed records.
type Stats struct {
	TotalRecords int      `json:"totalRecords"`
	SNPs         int      `json:"snps"`
	Insertions   int      `json:"insertions"`
	Deletions    int      `json:"deletions"`
	Complex      int      `json:"complex"`
	PassedFilter int      `json:"passedFilter"`
	FailedFilter int      `json:"failedFilter"`
	Chromosomes  []string `json:"chromosomes"`
}

// Update folds one record into the stats.
func (s *Stats) Update(r *Record) {
	s.TotalRecords++

	switch r.VariantType() {
	case SNP:
		s.SNPs++
	case Insertion:
		s.Insertions++
	case Deletion:
		s.Deletions++
	case Complex:
		s.Complex++
	}

	switch {
	case r.Filter.Pass():
		s.PassedFilter++
	case len(r.Filter.Failed) > 0:
		s.FailedFilter++
	}

	for _, c := range s.Chromosomes {
		if c == r.Chrom {
			return
		}
	}
	s.Chromosomes = append(s.Chromosomes, r.Chrom)
}

// CollectStats computes stats over a record slice.
func CollectStats(records []Record) Stats {
	var stats Stats
	for i := range records {
		stats.Update(&records[i])
	}
	return stats
}
