package cohort

import (
	"errors"
	"fmt"
)

// Scope says which entity kind a filter applies to. Sample-scoped filters
// narrow the sample set; mutation-scoped filters narrow the mutation set on
// top of the sample intersection.
type Scope int

const (
	ScopeSample Scope = iota
	ScopeMutation
)

// Filter is a named predicate over samples or mutations. Filters are a closed
// set of tagged variants (plus an escape hatch for custom predicates) so that
// SetFilter can validate them against the schema up front instead of failing
// silently at first use.
type Filter interface {
	Scope() Scope
	Validate() error
}

// DiseaseEquals keeps samples whose disease matches exactly.
type DiseaseEquals struct {
	Disease string
}

func (DiseaseEquals) Scope() Scope { return ScopeSample }

func (f DiseaseEquals) Validate() error {
	if f.Disease == "" {
		return errors.New("disease must not be empty")
	}
	return nil
}

// SampleTypeEquals keeps samples of one sample type (primary, metastatic...).
type SampleTypeEquals struct {
	SampleType string
}

func (SampleTypeEquals) Scope() Scope { return ScopeSample }

func (f SampleTypeEquals) Validate() error {
	if f.SampleType == "" {
		return errors.New("sampleType must not be empty")
	}
	return nil
}

// AgeRange keeps samples with MinAge <= AgeAtDiagnosis <= MaxAge.
type AgeRange struct {
	MinAge int
	MaxAge int
}

func (AgeRange) Scope() Scope { return ScopeSample }

func (f AgeRange) Validate() error {
	if f.MinAge < 0 {
		return errors.New("minAge must not be negative")
	}
	if f.MaxAge < f.MinAge {
		return fmt.Errorf("maxAge %d below minAge %d", f.MaxAge, f.MinAge)
	}
	return nil
}

// MutationTypeIn keeps mutations whose consequence type is in the set.
type MutationTypeIn struct {
	Types []ConsequenceType
}

func (MutationTypeIn) Scope() Scope { return ScopeMutation }

func (f MutationTypeIn) Validate() error {
	if len(f.Types) == 0 {
		return errors.New("type set must not be empty")
	}
	for _, t := range f.Types {
		if !t.Known() {
			return fmt.Errorf("unknown consequence type %q", t)
		}
	}
	return nil
}

// GeneIn keeps mutations in one of the named genes.
type GeneIn struct {
	Genes []string
}

func (GeneIn) Scope() Scope { return ScopeMutation }

func (f GeneIn) Validate() error {
	if len(f.Genes) == 0 {
		return errors.New("gene set must not be empty")
	}
	for _, g := range f.Genes {
		if g == "" {
			return errors.New("gene names must not be empty")
		}
	}
	return nil
}

// CustomSample is the escape hatch for arbitrary sample predicates. The
// predicate must be pure with respect to its input; the store evaluates it on
// every recompute.
type CustomSample struct {
	Name      string
	Predicate func(Sample) bool
}

func (CustomSample) Scope() Scope { return ScopeSample }

func (f CustomSample) Validate() error {
	if f.Predicate == nil {
		return errors.New("custom sample filter needs a predicate")
	}
	return nil
}

// CustomMutation is the escape hatch for arbitrary mutation predicates.
type CustomMutation struct {
	Name      string
	Predicate func(Mutation) bool
}

func (CustomMutation) Scope() Scope { return ScopeMutation }

func (f CustomMutation) Validate() error {
	if f.Predicate == nil {
		return errors.New("custom mutation filter needs a predicate")
	}
	return nil
}

// matchSample evaluates a sample-scoped filter against one sample.
func matchSample(f Filter, s Sample) bool {
	switch f := f.(type) {
	case DiseaseEquals:
		return s.Disease == f.Disease
	case SampleTypeEquals:
		return s.SampleType == f.SampleType
	case AgeRange:
		return s.AgeAtDiagnosis >= f.MinAge && s.AgeAtDiagnosis <= f.MaxAge
	case CustomSample:
		return f.Predicate(s)
	default:
		// Mutation-scoped filters do not constrain samples.
		return true
	}
}

// matchMutation evaluates a mutation-scoped filter against one mutation.
func matchMutation(f Filter, m Mutation) bool {
	switch f := f.(type) {
	case MutationTypeIn:
		for _, t := range f.Types {
			if m.Type == t {
				return true
			}
		}
		return false
	case GeneIn:
		for _, g := range f.Genes {
			if m.Gene == g {
				return true
			}
		}
		return false
	case CustomMutation:
		return f.Predicate(m)
	default:
		// Sample-scoped filters do not constrain mutations directly.
		return true
	}
}
