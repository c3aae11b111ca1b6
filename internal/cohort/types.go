// Package cohort owns the authoritative cohort state: the loaded dataset,
// the active filters, the derived filtered views, and the current selection.
// All mutation goes through the Store's public methods; consumers hold only
// read-only snapshots.
package cohort

// ConsequenceType enumerates mutation effect categories, used for filtering
// and color-coding.
type ConsequenceType string

const (
	Missense   ConsequenceType = "missense"
	Nonsense   ConsequenceType = "nonsense"
	Frameshift ConsequenceType = "frameshift"
	Splice     ConsequenceType = "splice"
	Silent     ConsequenceType = "silent"
	InFrameDel ConsequenceType = "inframe_del"
	InFrameIns ConsequenceType = "inframe_ins"
	Other      ConsequenceType = "other"
)

// ConsequenceTypes lists every known consequence kind, in display order.
var ConsequenceTypes = []ConsequenceType{
	Missense, Nonsense, Frameshift, Splice, Silent, InFrameDel, InFrameIns, Other,
}

// Known reports whether t is one of the fixed consequence kinds.
func (t ConsequenceType) Known() bool {
	for _, k := range ConsequenceTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Mutation is a single recurrent mutation in the dataset. Immutable once
// loaded; owned exclusively by the Store.
type Mutation struct {
	ID        string          `json:"id"`
	Gene      string          `json:"gene"`
	Position  int             `json:"position"` // amino-acid coordinate
	AAChange  string          `json:"aaChange"`
	Type      ConsequenceType `json:"type"`
	Count     int             `json:"count"`
	SampleIDs []string        `json:"sampleIds"` // samples carrying this mutation
}

// Sample is a single cohort member. Immutable once loaded. Its mutations are
// derived by joining on Mutation.SampleIDs, never stored redundantly.
type Sample struct {
	SampleID       string `json:"sampleId"`
	Disease        string `json:"disease"`
	SampleType     string `json:"sampleType"` // e.g. "primary", "metastatic", "normal"
	AgeAtDiagnosis int    `json:"ageAtDiagnosis"`
	SurvivalDays   int    `json:"survivalDays"`
	VitalStatus    string `json:"vitalStatus"`
}

// SelectionKind distinguishes what the selection points at.
type SelectionKind int

const (
	SelectMutation SelectionKind = iota
	SelectSample
)

// Selection is a weak, id-based reference into the dataset. It may reference
// an item that has since been filtered out; consumers treat that as "selected
// but not visible", not as an error. It may even reference an id absent from
// the dataset entirely, in which case the Resolve helpers return nothing.
type Selection struct {
	Kind SelectionKind
	ID   string
}

// State is a snapshot of the store's single source of truth. Snapshots are
// read-only views: the slices and map are copies, and consumers must route
// all changes through the Store's mutators.
type State struct {
	AllMutations []Mutation
	AllSamples   []Sample

	// ActiveFilters maps filter id to the filter it names. Insertion order is
	// irrelevant: filters compose via logical AND.
	ActiveFilters map[string]Filter

	// Derived views, recomputed on every mutation. Never mutated directly.
	FilteredMutations []Mutation
	FilteredSamples   []Sample

	Selection *Selection

	// DatasetVersion changes on every LoadData; it keys memoized per-filter
	// results so they cannot outlive the dataset they were computed from.
	DatasetVersion string
}

// SelectedMutation resolves the selection against the full dataset. Returns
// nil when nothing is selected, the selection is a sample, or the id is
// dangling.
func (s State) SelectedMutation() *Mutation {
	if s.Selection == nil || s.Selection.Kind != SelectMutation {
		return nil
	}
	for i := range s.AllMutations {
		if s.AllMutations[i].ID == s.Selection.ID {
			m := s.AllMutations[i]
			return &m
		}
	}
	return nil
}

// SelectedSample resolves the selection against the full dataset. Returns nil
// when nothing is selected, the selection is a mutation, or the id is
// dangling.
func (s State) SelectedSample() *Sample {
	if s.Selection == nil || s.Selection.Kind != SelectSample {
		return nil
	}
	for i := range s.AllSamples {
		if s.AllSamples[i].SampleID == s.Selection.ID {
			smp := s.AllSamples[i]
			return &smp
		}
	}
	return nil
}

// SelectionVisible reports whether the selected item is present in the
// current filtered view. A selection that references a filtered-out (or
// unknown) id is "selected but not visible".
func (s State) SelectionVisible() bool {
	if s.Selection == nil {
		return false
	}
	switch s.Selection.Kind {
	case SelectMutation:
		for i := range s.FilteredMutations {
			if s.FilteredMutations[i].ID == s.Selection.ID {
				return true
			}
		}
	case SelectSample:
		for i := range s.FilteredSamples {
			if s.FilteredSamples[i].SampleID == s.Selection.ID {
				return true
			}
		}
	}
	return false
}

// MutationsForSample joins the filtered mutations against one sample id.
func (s State) MutationsForSample(sampleID string) []Mutation {
	var out []Mutation
	for _, m := range s.FilteredMutations {
		for _, id := range m.SampleIDs {
			if id == sampleID {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
