package testutil

import "genelink/internal/cohort"

// WithLungCohort adds a small lung cancer cohort with mixed consequence
// types and overlapping carriers. Good default for filter tests.
//
// Carriers:
//
//	egfr-l858r  → s1, s2
//	kras-g12c   → s3
//	tp53-r175h  → s1, s4
func (b *Builder) WithLungCohort() *Builder {
	return b.
		WithSample("s1", Disease("Lung"), Age(61)).
		WithSample("s2", Disease("Lung"), Age(55), SampleType("metastatic")).
		WithSample("s3", Disease("Lung"), Age(48)).
		WithSample("s4", Disease("Lung"), Age(72), VitalStatus("deceased"), SurvivalDays(420)).
		WithMutation("egfr-l858r",
			Gene("EGFR"), Position(858), AAChange("L858R"),
			Consequence(cohort.Missense), Carriers("s1", "s2")).
		WithMutation("kras-g12c",
			Gene("KRAS"), Position(12), AAChange("G12C"),
			Consequence(cohort.Missense), Carriers("s3")).
		WithMutation("tp53-r175h",
			Gene("TP53"), Position(175), AAChange("R175H"),
			Consequence(cohort.Nonsense), Carriers("s1", "s4"))
}

// WithMixedDiseaseCohort adds samples across two diseases so disease
// filters have something to cut.
func (b *Builder) WithMixedDiseaseCohort() *Builder {
	return b.
		WithSample("lung-1", Disease("Lung"), Age(58)).
		WithSample("lung-2", Disease("Lung"), Age(66)).
		WithSample("breast-1", Disease("Breast"), Age(49)).
		WithSample("breast-2", Disease("Breast"), Age(71), VitalStatus("deceased")).
		WithMutation("shared-1",
			Gene("TP53"), Consequence(cohort.Missense),
			Carriers("lung-1", "breast-1")).
		WithMutation("lung-only",
			Gene("EGFR"), Consequence(cohort.InFrameDel),
			Carriers("lung-1", "lung-2")).
		WithMutation("breast-only",
			Gene("BRCA1"), Consequence(cohort.Frameshift),
			Carriers("breast-2"))
}
