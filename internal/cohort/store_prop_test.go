package cohort

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// drawDataset generates a small random cohort: samples across a few diseases
// and ages, mutations with random carriers.
func drawDataset(rt *rapid.T) ([]Mutation, []Sample) {
	diseases := []string{"Lung", "Breast", "Colon"}
	nSamples := rapid.IntRange(1, 25).Draw(rt, "nSamples")

	samples := make([]Sample, nSamples)
	for i := range samples {
		samples[i] = Sample{
			SampleID:       fmt.Sprintf("s%02d", i),
			Disease:        rapid.SampledFrom(diseases).Draw(rt, fmt.Sprintf("disease%d", i)),
			SampleType:     "primary",
			AgeAtDiagnosis: rapid.IntRange(20, 90).Draw(rt, fmt.Sprintf("age%d", i)),
		}
	}

	nMutations := rapid.IntRange(0, 15).Draw(rt, "nMutations")
	mutations := make([]Mutation, nMutations)
	for i := range mutations {
		carriers := rapid.SliceOfNDistinct(
			rapid.IntRange(0, nSamples-1), 1, min(nSamples, 4), rapid.ID,
		).Draw(rt, fmt.Sprintf("carriers%d", i))
		ids := make([]string, len(carriers))
		for j, c := range carriers {
			ids[j] = samples[c].SampleID
		}
		mutations[i] = Mutation{
			ID:        fmt.Sprintf("m%02d", i),
			Gene:      rapid.SampledFrom([]string{"TP53", "EGFR", "KRAS", "BRCA1"}).Draw(rt, fmt.Sprintf("gene%d", i)),
			Type:      rapid.SampledFrom(ConsequenceTypes).Draw(rt, fmt.Sprintf("type%d", i)),
			Count:     rapid.IntRange(1, 10).Draw(rt, fmt.Sprintf("count%d", i)),
			SampleIDs: ids,
		}
	}
	return mutations, samples
}

func drawFilters(rt *rapid.T) map[string]Filter {
	filters := map[string]Filter{}
	if rapid.Bool().Draw(rt, "hasDisease") {
		filters["disease"] = DiseaseEquals{
			Disease: rapid.SampledFrom([]string{"Lung", "Breast", "Colon"}).Draw(rt, "fDisease"),
		}
	}
	if rapid.Bool().Draw(rt, "hasAge") {
		lo := rapid.IntRange(20, 90).Draw(rt, "fAgeLo")
		hi := rapid.IntRange(lo, 90).Draw(rt, "fAgeHi")
		filters["age"] = AgeRange{MinAge: lo, MaxAge: hi}
	}
	if rapid.Bool().Draw(rt, "hasType") {
		n := rapid.IntRange(1, len(ConsequenceTypes)).Draw(rt, "fNTypes")
		filters["type"] = MutationTypeIn{Types: ConsequenceTypes[:n]}
	}
	return filters
}

// TestProp_FilteredSamplesMatchConjunction asserts the core invariant: for
// any filter set applied in any order, FilteredSamples is exactly the subset
// of AllSamples satisfying the conjunction of the sample-scoped filters.
func TestProp_FilteredSamplesMatchConjunction(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mutations, samples := drawDataset(rt)
		filters := drawFilters(rt)

		s := NewStore()
		require.NoError(t, s.LoadData(mutations, samples))

		// Apply in whatever order map iteration yields; order must not matter.
		for id, f := range filters {
			require.NoError(t, s.SetFilter(id, f))
		}
		state := s.GetState()

		var want []Sample
		for _, smp := range samples {
			pass := true
			for _, f := range filters {
				if f.Scope() == ScopeSample && !matchSample(f, smp) {
					pass = false
					break
				}
			}
			if pass {
				want = append(want, smp)
			}
		}
		require.Equal(t, len(want), len(state.FilteredSamples))
		require.ElementsMatch(t, want, state.FilteredSamples)

		// Every filtered mutation passes its filters and intersects the
		// filtered sample set.
		visible := map[string]bool{}
		for _, smp := range state.FilteredSamples {
			visible[smp.SampleID] = true
		}
		for _, m := range state.FilteredMutations {
			for _, f := range filters {
				if f.Scope() == ScopeMutation {
					require.True(rt, matchMutation(f, m))
				}
			}
			carried := false
			for _, id := range m.SampleIDs {
				carried = carried || visible[id]
			}
			require.True(rt, carried)
		}
	})
}

// TestProp_ClearFiltersRestoresFullDataset asserts that clearFilters always
// restores both derived views to the full dataset, whatever filter history
// preceded it.
func TestProp_ClearFiltersRestoresFullDataset(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mutations, samples := drawDataset(rt)

		s := NewStore()
		require.NoError(t, s.LoadData(mutations, samples))

		steps := rapid.IntRange(0, 6).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			for id, f := range drawFilters(rt) {
				require.NoError(t, s.SetFilter(id, f))
			}
			if rapid.Bool().Draw(rt, fmt.Sprintf("drop%d", i)) {
				s.RemoveFilter("age")
			}
		}

		s.ClearFilters()

		state := s.GetState()
		require.Equal(t, state.AllSamples, state.FilteredSamples)
		require.Equal(t, state.AllMutations, state.FilteredMutations)
	})
}
