package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"genelink/internal/cohort"
	"genelink/internal/dataset"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Genes: []dataset.Gene{{Symbol: "EGFR"}, {Symbol: "KRAS"}, {Symbol: "TP53"}},
		Mutations: []cohort.Mutation{
			{ID: "m1", Gene: "EGFR", Position: 858, AAChange: "L858R", Type: cohort.Missense, Count: 2, SampleIDs: []string{"s1", "s2"}},
			{ID: "m2", Gene: "KRAS", Position: 12, AAChange: "G12C", Type: cohort.Missense, Count: 1, SampleIDs: []string{"s3"}},
			{ID: "m3", Gene: "TP53", Position: 175, AAChange: "R175H", Type: cohort.Nonsense, Count: 2, SampleIDs: []string{"s1", "s4"}},
		},
		Samples: []cohort.Sample{
			{SampleID: "s1", Disease: "Lung", SampleType: "primary", AgeAtDiagnosis: 61},
			{SampleID: "s2", Disease: "Lung", SampleType: "metastatic", AgeAtDiagnosis: 55},
			{SampleID: "s3", Disease: "Breast", SampleType: "primary", AgeAtDiagnosis: 48},
			{SampleID: "s4", Disease: "Breast", SampleType: "primary", AgeAtDiagnosis: 72},
		},
	}
}

func TestSummaryMarkdown(t *testing.T) {
	md := summaryMarkdown("demo", testDataset(), 10)

	require.Contains(t, md, "# Dataset demo")
	require.Contains(t, md, "3 genes, 3 mutations, 4 samples")
	require.Contains(t, md, "**missense**: 2")
	require.Contains(t, md, "**nonsense**: 1")
	require.Contains(t, md, "**Lung**: 2")
	require.Contains(t, md, "**Breast**: 2")
	require.Contains(t, md, "**EGFR**: 2 carriers")
}

func TestSummaryMarkdown_TopNClamped(t *testing.T) {
	md := summaryMarkdown("demo", testDataset(), 1)

	// EGFR and TP53 both have 2 carriers; names break the tie.
	require.Contains(t, md, "**EGFR**: 2 carriers")
	require.NotContains(t, md, "**KRAS**: 1 carriers")
}

func TestSummaryMarkdown_NegativeTopN(t *testing.T) {
	md := summaryMarkdown("demo", testDataset(), -3)

	require.Contains(t, md, "# Dataset demo")
	require.NotContains(t, md, "carriers")
}

func TestSummaryMarkdown_OmitsAbsentConsequenceTypes(t *testing.T) {
	md := summaryMarkdown("demo", testDataset(), 10)

	require.NotContains(t, md, "frameshift")
	require.NotContains(t, md, "splice")
}
