package testutil

import "genelink/internal/cohort"

// mutationData holds all data for a mutation fixture.
type mutationData struct {
	id        string
	gene      string
	position  int
	aaChange  string
	mutType   cohort.ConsequenceType
	sampleIDs []string
}

// defaultMutation returns a mutationData with sensible defaults.
func defaultMutation(id string) mutationData {
	return mutationData{
		id:      id,
		gene:    "EGFR", // Default gene keeps single-mutation tests short
		mutType: cohort.Missense,
	}
}

// MutationOption configures a mutation during builder setup.
type MutationOption func(*mutationData)

// Gene sets the gene symbol.
func Gene(symbol string) MutationOption {
	return func(m *mutationData) { m.gene = symbol }
}

// Position sets the protein position.
func Position(p int) MutationOption {
	return func(m *mutationData) { m.position = p }
}

// AAChange sets the amino acid change label.
func AAChange(s string) MutationOption {
	return func(m *mutationData) { m.aaChange = s }
}

// Consequence sets the mutation consequence type.
func Consequence(t cohort.ConsequenceType) MutationOption {
	return func(m *mutationData) { m.mutType = t }
}

// Carriers sets the sample IDs that carry the mutation.
func Carriers(ids ...string) MutationOption {
	return func(m *mutationData) { m.sampleIDs = append(m.sampleIDs, ids...) }
}

// sampleData holds all data for a sample fixture.
type sampleData struct {
	id           string
	disease      string
	sampleType   string
	age          int
	survivalDays int
	vitalStatus  string
}

// defaultSample returns a sampleData with sensible defaults.
func defaultSample(id string) sampleData {
	return sampleData{
		id:          id,
		disease:     "Lung",
		sampleType:  "primary",
		age:         60,
		vitalStatus: "alive",
	}
}

// SampleOption configures a sample during builder setup.
type SampleOption func(*sampleData)

// Disease sets the sample disease label.
func Disease(d string) SampleOption {
	return func(s *sampleData) { s.disease = d }
}

// SampleType sets the sample type (primary, metastatic, ...).
func SampleType(t string) SampleOption {
	return func(s *sampleData) { s.sampleType = t }
}

// Age sets the age at diagnosis.
func Age(a int) SampleOption {
	return func(s *sampleData) { s.age = a }
}

// SurvivalDays sets the survival duration.
func SurvivalDays(d int) SampleOption {
	return func(s *sampleData) { s.survivalDays = d }
}

// VitalStatus sets the vital status (alive, deceased).
func VitalStatus(v string) SampleOption {
	return func(s *sampleData) { s.vitalStatus = v }
}
