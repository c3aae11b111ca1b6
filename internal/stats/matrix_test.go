package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatMul(t *testing.T) {
	a, err := NewMatrix(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := NewMatrix(2, 2, []float64{5, 6, 7, 8})
	require.NoError(t, err)

	c, err := MatMul(a, b)
	require.NoError(t, err)
	require.Equal(t, 2, c.Rows)
	require.Equal(t, 2, c.Cols)
	require.InDelta(t, 19.0, c.At(0, 0), 1e-10)
	require.InDelta(t, 22.0, c.At(0, 1), 1e-10)
	require.InDelta(t, 43.0, c.At(1, 0), 1e-10)
	require.InDelta(t, 50.0, c.At(1, 1), 1e-10)
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	a, _ := NewMatrix(2, 3, make([]float64, 6))
	b, _ := NewMatrix(2, 2, make([]float64, 4))
	_, err := MatMul(a, b)
	require.Error(t, err)
}

func TestNewMatrix_Validation(t *testing.T) {
	_, err := NewMatrix(2, 2, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestTranspose(t *testing.T) {
	m, _ := NewMatrix(2, 3, []float64{1, 2, 3, 4, 5, 6})
	tr := m.Transpose()

	require.Equal(t, 3, tr.Rows)
	require.Equal(t, 2, tr.Cols)
	require.InDelta(t, 2.0, tr.At(1, 0), 1e-10)
	require.InDelta(t, 4.0, tr.At(0, 1), 1e-10)
}

func TestRowAndColMeans(t *testing.T) {
	m, _ := NewMatrix(2, 3, []float64{1, 2, 3, 4, 5, 6})

	require.InDeltaSlice(t, []float64{2, 5}, m.RowMeans(), 1e-10)
	require.InDeltaSlice(t, []float64{2.5, 3.5, 4.5}, m.ColMeans(), 1e-10)
}

func TestZScoreNormalize(t *testing.T) {
	m, _ := NewMatrix(2, 3, []float64{1, 2, 3, 4, 5, 6})
	norm := m.ZScoreNormalize()

	for i := 0; i < 2; i++ {
		mean := (norm.At(i, 0) + norm.At(i, 1) + norm.At(i, 2)) / 3
		require.InDelta(t, 0.0, mean, 1e-10)
	}
}

func TestZScoreNormalize_ConstantRow(t *testing.T) {
	m, _ := NewMatrix(1, 3, []float64{7, 7, 7})
	norm := m.ZScoreNormalize()
	for j := 0; j < 3; j++ {
		require.InDelta(t, 0.0, norm.At(0, j), 1e-10)
	}
}

func TestPearsonCorrelation(t *testing.T) {
	r := PearsonCorrelation([]float64{1, 2, 3, 4, 5}, []float64{2, 4, 6, 8, 10})
	require.InDelta(t, 1.0, r, 1e-10)

	r = PearsonCorrelation([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.InDelta(t, -1.0, r, 1e-10)

	require.Zero(t, PearsonCorrelation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	require.True(t, math.IsNaN(PearsonCorrelation([]float64{1}, []float64{1, 2})))
}

func TestSpearmanCorrelation_MonotoneNonlinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}

	require.InDelta(t, 1.0, SpearmanCorrelation(x, y), 1e-10)
	require.Less(t, PearsonCorrelation(x, y), 1.0)
}

func TestRank_Ties(t *testing.T) {
	ranks := rank([]float64{10, 20, 20, 30})
	require.InDeltaSlice(t, []float64{1, 2.5, 2.5, 4}, ranks, 1e-10)
}

func TestCorrelationMatrix(t *testing.T) {
	m, _ := NewMatrix(2, 4, []float64{1, 2, 3, 4, 2, 4, 6, 8})
	corr, err := m.CorrelationMatrix()
	require.NoError(t, err)

	require.Equal(t, 2, corr.Rows)
	require.Equal(t, 2, corr.Cols)
	require.InDelta(t, 1.0, corr.At(0, 0), 1e-10)
	require.InDelta(t, 1.0, corr.At(0, 1), 1e-10)
	require.InDelta(t, corr.At(0, 1), corr.At(1, 0), 1e-12)
}

func TestCovarianceMatrix(t *testing.T) {
	m, _ := NewMatrix(2, 3, []float64{1, 2, 3, 1, 2, 3})
	cov, err := m.CovarianceMatrix()
	require.NoError(t, err)

	require.InDelta(t, 1.0, cov.At(0, 0), 1e-10)
	require.InDelta(t, cov.At(0, 1), cov.At(1, 0), 1e-12)
}
