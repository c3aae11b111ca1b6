// Package testutil provides fluent builders for cohort test fixtures.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"genelink/internal/cohort"
)

// Builder accumulates cohort test data and materializes it on demand.
type Builder struct {
	t         *testing.T
	mutations []mutationData
	samples   []sampleData
}

// NewBuilder creates a builder for cohort fixtures.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithMutation adds a mutation with optional configuration.
func (b *Builder) WithMutation(id string, opts ...MutationOption) *Builder {
	m := defaultMutation(id)
	for _, opt := range opts {
		opt(&m)
	}
	b.mutations = append(b.mutations, m)
	return b
}

// WithSample adds a sample with optional configuration.
func (b *Builder) WithSample(id string, opts ...SampleOption) *Builder {
	s := defaultSample(id)
	for _, opt := range opts {
		opt(&s)
	}
	b.samples = append(b.samples, s)
	return b
}

// Build materializes the accumulated fixtures. Mutation counts are derived
// from the carrier lists.
func (b *Builder) Build() ([]cohort.Mutation, []cohort.Sample) {
	b.t.Helper()

	mutations := make([]cohort.Mutation, 0, len(b.mutations))
	for _, m := range b.mutations {
		mutations = append(mutations, cohort.Mutation{
			ID:        m.id,
			Gene:      m.gene,
			Position:  m.position,
			AAChange:  m.aaChange,
			Type:      m.mutType,
			Count:     len(m.sampleIDs),
			SampleIDs: m.sampleIDs,
		})
	}

	samples := make([]cohort.Sample, 0, len(b.samples))
	for _, s := range b.samples {
		samples = append(samples, cohort.Sample{
			SampleID:       s.id,
			Disease:        s.disease,
			SampleType:     s.sampleType,
			AgeAtDiagnosis: s.age,
			SurvivalDays:   s.survivalDays,
			VitalStatus:    s.vitalStatus,
		})
	}

	return mutations, samples
}

// BuildStore creates a cohort store loaded with the accumulated fixtures.
// The load must succeed; malformed fixtures fail the test.
func (b *Builder) BuildStore(opts ...cohort.StoreOption) *cohort.Store {
	b.t.Helper()

	mutations, samples := b.Build()
	store := cohort.NewStore(opts...)
	require.NoError(b.t, store.LoadData(mutations, samples))
	return store
}
