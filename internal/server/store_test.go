package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"genelink/internal/cohort"
	"genelink/internal/dataset"
)

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Genes: []dataset.Gene{{Symbol: "EGFR"}},
		Mutations: []cohort.Mutation{
			{ID: "m1", Gene: "EGFR", Position: 858, Type: cohort.Missense, Count: 2, SampleIDs: []string{"s1", "s2"}},
		},
		Samples: []cohort.Sample{
			{SampleID: "s1", Disease: "Lung", SampleType: "primary", AgeAtDiagnosis: 61},
			{SampleID: "s2", Disease: "Lung", SampleType: "primary", AgeAtDiagnosis: 55},
		},
	}
}

func TestStore_SaveAndGetDataset(t *testing.T) {
	store := NewStore(openTestDB(t))

	require.NoError(t, store.SaveDataset("tcga-lung", "Lung", testDataset()))

	ds, err := store.GetDataset("tcga-lung")
	require.NoError(t, err)
	require.Len(t, ds.Mutations, 1)
	require.Equal(t, cohort.Missense, ds.Mutations[0].Type)
	require.Len(t, ds.Samples, 2)
	require.Equal(t, "EGFR", ds.Genes[0].Symbol)
}

func TestStore_GetDataset_NotFound(t *testing.T) {
	store := NewStore(openTestDB(t))

	_, err := store.GetDataset("absent")
	var notFound *DatasetNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "absent", notFound.Name)
}

func TestStore_ListDatasets(t *testing.T) {
	store := NewStore(openTestDB(t))

	infos, err := store.ListDatasets()
	require.NoError(t, err)
	require.Empty(t, infos)

	require.NoError(t, store.SaveDataset("b-set", "Breast", testDataset()))
	require.NoError(t, store.SaveDataset("a-set", "Lung", testDataset()))

	infos, err = store.ListDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "a-set", infos[0].Name, "listing is name-ordered")
	require.Equal(t, 1, infos[0].MutationCount)
	require.Equal(t, 2, infos[0].SampleCount)
	require.False(t, infos[0].UpdatedAt.IsZero())
}

func TestStore_SaveDataset_Replaces(t *testing.T) {
	store := NewStore(openTestDB(t))
	require.NoError(t, store.SaveDataset("demo", "Lung", testDataset()))

	bigger := testDataset()
	bigger.Samples = append(bigger.Samples, cohort.Sample{SampleID: "s3", Disease: "Lung"})
	require.NoError(t, store.SaveDataset("demo", "Lung", bigger))

	infos, err := store.ListDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, 3, infos[0].SampleCount)
}

func TestStore_DeleteDataset(t *testing.T) {
	store := NewStore(openTestDB(t))
	require.NoError(t, store.SaveDataset("demo", "Lung", testDataset()))

	require.NoError(t, store.DeleteDataset("demo"))
	require.NoError(t, store.DeleteDataset("demo"), "deleting twice is fine")

	_, err := store.GetDataset("demo")
	var notFound *DatasetNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestStore_Authenticate(t *testing.T) {
	store := NewStore(openTestDB(t))
	require.NoError(t, store.UpsertUser("ada", "correct horse"))

	ok, err := store.Authenticate("ada", "correct horse")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Authenticate("ada", "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Authenticate("nobody", "whatever")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_UpsertUser_ChangesPassword(t *testing.T) {
	store := NewStore(openTestDB(t))
	require.NoError(t, store.UpsertUser("ada", "old"))
	require.NoError(t, store.UpsertUser("ada", "new"))

	ok, err := store.Authenticate("ada", "old")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Authenticate("ada", "new")
	require.NoError(t, err)
	require.True(t, ok)
}
