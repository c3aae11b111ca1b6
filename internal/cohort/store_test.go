package cohort

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testDataset builds the canonical fixture: 10 samples (5 Lung, 5 Breast) and
// 3 mutations, where m1 is carried only by Lung samples, m2 only by Breast
// samples, and m3 by both.
func testDataset() ([]Mutation, []Sample) {
	samples := make([]Sample, 0, 10)
	for i := 1; i <= 5; i++ {
		samples = append(samples, Sample{
			SampleID:       "lung-" + string(rune('0'+i)),
			Disease:        "Lung",
			SampleType:     "primary",
			AgeAtDiagnosis: 50 + i,
		})
	}
	for i := 1; i <= 5; i++ {
		samples = append(samples, Sample{
			SampleID:       "breast-" + string(rune('0'+i)),
			Disease:        "Breast",
			SampleType:     "primary",
			AgeAtDiagnosis: 40 + i,
		})
	}

	mutations := []Mutation{
		{ID: "m1", Gene: "EGFR", Position: 858, AAChange: "L858R", Type: Missense, Count: 3,
			SampleIDs: []string{"lung-1", "lung-2", "lung-3"}},
		{ID: "m2", Gene: "BRCA1", Position: 1775, AAChange: "M1775R", Type: Missense, Count: 2,
			SampleIDs: []string{"breast-1", "breast-2"}},
		{ID: "m3", Gene: "TP53", Position: 175, AAChange: "R175H", Type: Nonsense, Count: 4,
			SampleIDs: []string{"lung-4", "breast-3", "breast-4", "breast-5"}},
	}
	return mutations, samples
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	mutations, samples := testDataset()
	require.NoError(t, s.LoadData(mutations, samples))
	return s
}

func TestLoadData_DerivedViewsEqualFullDataset(t *testing.T) {
	s := loadedStore(t)

	state := s.GetState()
	require.Len(t, state.FilteredSamples, 10)
	require.Len(t, state.FilteredMutations, 3)
	require.Empty(t, state.ActiveFilters)
	require.Nil(t, state.Selection)
	require.NotEmpty(t, state.DatasetVersion)
}

func TestLoadData_EmptySamplesRejectedAndStateUntouched(t *testing.T) {
	s := loadedStore(t)
	before := s.GetState()

	err := s.LoadData([]Mutation{{ID: "x"}}, nil)

	var loadErr *DataLoadError
	require.ErrorAs(t, err, &loadErr)

	after := s.GetState()
	require.Equal(t, before.DatasetVersion, after.DatasetVersion)
	require.Equal(t, before.AllSamples, after.AllSamples)
	require.Equal(t, before.AllMutations, after.AllMutations)
}

func TestLoadData_FirstLoadFailureLeavesStoreUninitialized(t *testing.T) {
	s := NewStore()

	err := s.LoadData(nil, []Sample{{SampleID: "s1"}})

	var loadErr *DataLoadError
	require.ErrorAs(t, err, &loadErr)
	require.False(t, s.Loaded())
}

func TestLoadData_MalformedEntriesRejected(t *testing.T) {
	s := NewStore()

	err := s.LoadData([]Mutation{{ID: ""}}, []Sample{{SampleID: "s1"}})
	require.Error(t, err)

	err = s.LoadData([]Mutation{}, []Sample{{SampleID: ""}})
	require.Error(t, err)

	err = s.LoadData([]Mutation{{ID: "orphan"}}, []Sample{{SampleID: "s1"}})
	require.Error(t, err, "carrier-less mutations are malformed")
}

func TestLoadData_UnknownCarrierRejected(t *testing.T) {
	s := NewStore()
	mutations := []Mutation{
		{ID: "m1", Gene: "EGFR", Type: Missense, SampleIDs: []string{"s1"}},
		{ID: "m2", Gene: "KRAS", Type: Missense, SampleIDs: []string{"ghost"}},
	}
	samples := []Sample{{SampleID: "s1", Disease: "Lung"}}

	err := s.LoadData(mutations, samples)

	var loadErr *DataLoadError
	require.ErrorAs(t, err, &loadErr)
	require.Contains(t, loadErr.Reason, "ghost")
	require.False(t, s.Loaded())

	// With every carrier resolvable, the no-filter views must equal the full
	// dataset; an unresolvable carrier would silently break that.
	mutations[1].SampleIDs = []string{"s1"}
	require.NoError(t, s.LoadData(mutations, samples))
	state := s.GetState()
	require.Equal(t, state.AllMutations, state.FilteredMutations)
	require.Equal(t, state.AllSamples, state.FilteredSamples)
}

func TestLoadData_ReplacesDatasetAndResetsFiltersAndSelection(t *testing.T) {
	s := loadedStore(t)
	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	s.SetSelection(Selection{Kind: SelectMutation, ID: "m1"})
	firstVersion := s.GetState().DatasetVersion

	require.NoError(t, s.LoadData(
		[]Mutation{{ID: "n1", Gene: "KRAS", Type: Missense, SampleIDs: []string{"p1"}}},
		[]Sample{{SampleID: "p1", Disease: "Pancreas"}},
	))

	state := s.GetState()
	require.Empty(t, state.ActiveFilters)
	require.Nil(t, state.Selection)
	require.Len(t, state.AllSamples, 1)
	require.Len(t, state.FilteredSamples, 1)
	require.NotEqual(t, firstVersion, state.DatasetVersion)
}

func TestSetFilter_DiseaseLung(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))

	state := s.GetState()
	require.Len(t, state.FilteredSamples, 5)
	for _, smp := range state.FilteredSamples {
		require.Equal(t, "Lung", smp.Disease)
	}

	// m1 carried only by Lung samples stays; m2 (Breast-only carriers) goes;
	// m3 intersects via lung-4 and stays.
	ids := mutationIDs(state.FilteredMutations)
	require.Contains(t, ids, "m1")
	require.NotContains(t, ids, "m2")
	require.Contains(t, ids, "m3")
}

func TestSetFilter_MutationScopedComposesWithSampleScoped(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	require.NoError(t, s.SetFilter("type", MutationTypeIn{Types: []ConsequenceType{Nonsense}}))

	state := s.GetState()
	require.Equal(t, []string{"m3"}, mutationIDs(state.FilteredMutations))
}

func TestSetFilter_ReplacesByID(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Breast"}))

	state := s.GetState()
	require.Len(t, state.ActiveFilters, 1)
	require.Len(t, state.FilteredSamples, 5)
	require.Equal(t, "Breast", state.FilteredSamples[0].Disease)
}

func TestSetFilter_InvalidFilterLeavesStateUnchanged(t *testing.T) {
	s := loadedStore(t)
	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	before := s.GetState()

	err := s.SetFilter("age", AgeRange{MinAge: 80, MaxAge: 20})

	var filterErr *InvalidFilterError
	require.ErrorAs(t, err, &filterErr)
	require.Equal(t, "age", filterErr.FilterID)

	after := s.GetState()
	require.Equal(t, before.ActiveFilters, after.ActiveFilters)
	require.Equal(t, before.FilteredSamples, after.FilteredSamples)
}

func TestSetFilter_RejectsNilAndEmptyID(t *testing.T) {
	s := loadedStore(t)

	require.Error(t, s.SetFilter("", DiseaseEquals{Disease: "Lung"}))
	require.Error(t, s.SetFilter("f", nil))
	require.Error(t, s.SetFilter("f", MutationTypeIn{Types: []ConsequenceType{"bogus"}}))
}

func TestRemoveFilter_AbsentIDIsNotAnError(t *testing.T) {
	s := loadedStore(t)

	notifications := 0
	unsub := s.Subscribe(func(State) { notifications++ })
	defer unsub()

	s.RemoveFilter("never-set")

	// Still notifies once for the (unchanged) transition.
	require.Equal(t, 2, notifications) // 1 immediate + 1 for RemoveFilter
	require.Len(t, s.GetState().FilteredSamples, 10)
}

func TestClearFilters_RestoresFullDataset(t *testing.T) {
	s := loadedStore(t)
	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	require.NoError(t, s.SetFilter("age", AgeRange{MinAge: 52, MaxAge: 55}))
	require.NoError(t, s.SetFilter("type", MutationTypeIn{Types: []ConsequenceType{Missense}}))

	s.ClearFilters()

	state := s.GetState()
	require.Equal(t, state.AllSamples, state.FilteredSamples)
	require.Equal(t, state.AllMutations, state.FilteredMutations)
	require.Empty(t, state.ActiveFilters)
}

func TestFilterConjunction_OrderIndependent(t *testing.T) {
	a := loadedStore(t)
	require.NoError(t, a.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))
	require.NoError(t, a.SetFilter("age", AgeRange{MinAge: 52, MaxAge: 54}))

	b := loadedStore(t)
	require.NoError(t, b.SetFilter("age", AgeRange{MinAge: 52, MaxAge: 54}))
	require.NoError(t, b.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))

	require.Equal(t, a.GetState().FilteredSamples, b.GetState().FilteredSamples)
	require.Equal(t, a.GetState().FilteredMutations, b.GetState().FilteredMutations)
}

func TestSubscribe_ImmediateCallbackWithCurrentState(t *testing.T) {
	s := NewStore()

	var got *State
	unsub := s.Subscribe(func(state State) { got = &state })
	defer unsub()

	// Invoked before Subscribe returned, even though no mutation ever ran.
	require.NotNil(t, got)
	require.Empty(t, got.AllSamples)
}

func TestSubscribe_NotifiedOncePerTransitionInOrder(t *testing.T) {
	s := loadedStore(t)

	var order []string
	unsub1 := s.Subscribe(func(State) { order = append(order, "first") })
	unsub2 := s.Subscribe(func(State) { order = append(order, "second") })
	defer unsub1()
	defer unsub2()
	order = nil

	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))

	require.Equal(t, []string{"first", "second"}, order)
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	s := loadedStore(t)

	calls := 0
	unsub := s.Subscribe(func(State) { calls++ })
	unsub()
	unsub() // second call is a no-op

	s.ClearFilters()
	require.Equal(t, 1, calls) // only the immediate callback
}

func TestSubscribe_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	var panics []any
	s := NewStore(WithPanicReporter(func(r any) { panics = append(panics, r) }))
	mutations, samples := testDataset()
	require.NoError(t, s.LoadData(mutations, samples))

	secondNotified := false
	s.Subscribe(func(State) { panic("broken view") })
	s.Subscribe(func(State) { secondNotified = true })
	secondNotified = false

	s.ClearFilters()

	require.True(t, secondNotified)
	require.NotEmpty(t, panics)
}

func TestSetSelection_SelectionOnlyChangeStillNotifies(t *testing.T) {
	s := loadedStore(t)

	notifications := 0
	unsub := s.Subscribe(func(State) { notifications++ })
	defer unsub()
	notifications = 0

	s.SetSelection(Selection{Kind: SelectMutation, ID: "m1"})
	require.Equal(t, 1, notifications)

	state := s.GetState()
	require.NotNil(t, state.Selection)
	require.Len(t, state.FilteredSamples, 10, "selection must not affect derived views")

	s.ClearSelection()
	require.Equal(t, 2, notifications)
	require.Nil(t, s.GetState().Selection)
}

func TestSetSelection_FilteredOutItemIsSelectedButNotVisible(t *testing.T) {
	s := loadedStore(t)
	s.SetSelection(Selection{Kind: SelectMutation, ID: "m2"})

	require.True(t, s.GetState().SelectionVisible())

	// Lung filter removes m2 from the filtered view; the selection stays.
	require.NoError(t, s.SetFilter("disease", DiseaseEquals{Disease: "Lung"}))

	state := s.GetState()
	require.NotNil(t, state.Selection)
	require.Equal(t, "m2", state.Selection.ID)
	require.False(t, state.SelectionVisible())
	require.NotNil(t, state.SelectedMutation(), "still resolvable against the full dataset")
}

func TestSetSelection_UnknownIDAcceptedAsUnresolvedReference(t *testing.T) {
	s := loadedStore(t)

	s.SetSelection(Selection{Kind: SelectMutation, ID: "no-such-mutation"})

	state := s.GetState()
	require.NotNil(t, state.Selection)
	require.Nil(t, state.SelectedMutation())
	require.Nil(t, state.SelectedSample())
	require.False(t, state.SelectionVisible())
}

func TestGetState_SnapshotIsolatedFromStore(t *testing.T) {
	s := loadedStore(t)

	state := s.GetState()
	state.AllSamples[0].Disease = "tampered"
	state.FilteredSamples = nil
	delete(state.ActiveFilters, "disease")

	fresh := s.GetState()
	require.Equal(t, "Lung", fresh.AllSamples[0].Disease)
	require.Len(t, fresh.FilteredSamples, 10)
}

func TestMemoizedMasks_ReplacedFilterIsReEvaluated(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.SetFilter("age", AgeRange{MinAge: 51, MaxAge: 55}))
	require.Len(t, s.GetState().FilteredSamples, 5)

	// Same id, different bounds: the memoized mask for "age" must not leak.
	require.NoError(t, s.SetFilter("age", AgeRange{MinAge: 41, MaxAge: 45}))
	state := s.GetState()
	require.Len(t, state.FilteredSamples, 5)
	require.Equal(t, "Breast", state.FilteredSamples[0].Disease)
}

func TestCustomFilters(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.SetFilter("old", CustomSample{
		Name:      "age>=53",
		Predicate: func(smp Sample) bool { return smp.AgeAtDiagnosis >= 53 },
	}))
	require.NoError(t, s.SetFilter("recurrent", CustomMutation{
		Name:      "count>=3",
		Predicate: func(m Mutation) bool { return m.Count >= 3 },
	}))

	state := s.GetState()
	for _, smp := range state.FilteredSamples {
		require.GreaterOrEqual(t, smp.AgeAtDiagnosis, 53)
	}
	for _, m := range state.FilteredMutations {
		require.GreaterOrEqual(t, m.Count, 3)
	}
}

func TestReentrantMutation_NestedNotificationIsCallerVisible(t *testing.T) {
	// The store documents that mutating from inside a subscriber callback
	// produces nested delivery rather than deadlock. This pins that behavior.
	s := loadedStore(t)

	depth := 0
	maxDepth := 0
	var unsub func()
	unsub = s.Subscribe(func(state State) {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		if len(state.ActiveFilters) == 0 && depth == 1 && state.Selection == nil && maxDepth == 1 {
			s.SetSelection(Selection{Kind: SelectSample, ID: "lung-1"})
		}
		depth--
	})
	defer unsub()

	s.ClearFilters()

	require.GreaterOrEqual(t, maxDepth, 2, "reentrant mutation nests delivery")
	require.NotNil(t, s.GetState().Selection)
}

func mutationIDs(muts []Mutation) []string {
	ids := make([]string, 0, len(muts))
	for _, m := range muts {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestDataLoadError_Message(t *testing.T) {
	err := error(&DataLoadError{Reason: "samples are empty"})
	require.EqualError(t, err, "cohort load rejected: samples are empty")
}
