package stats

import (
	"fmt"
	"math"
	"sort"
)

// Matrix is a dense row-major float matrix.
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// NewMatrix wraps row-major data. The slice is used directly, not copied.
func NewMatrix(rows, cols int, data []float64) (Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("stats: matrix %dx%d needs %d values, got %d", rows, cols, rows*cols, len(data))
	}
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// At returns the element at (row, col), NaN out of range.
func (m Matrix) At(row, col int) float64 {
	if row < 0 || row >= m.Rows || col < 0 || col >= m.Cols {
		return math.NaN()
	}
	return m.Data[row*m.Cols+col]
}

// MatMul multiplies a (m x k) by b (k x n).
func MatMul(a, b Matrix) (Matrix, error) {
	if a.Cols != b.Rows {
		return Matrix{}, fmt.Errorf("stats: matmul shape mismatch %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}

	out := make([]float64, a.Rows*b.Cols)
	// Loop order keeps the inner walk sequential in both operands.
	for i := 0; i < a.Rows; i++ {
		for p := 0; p < a.Cols; p++ {
			aip := a.Data[i*a.Cols+p]
			for j := 0; j < b.Cols; j++ {
				out[i*b.Cols+j] += aip * b.Data[p*b.Cols+j]
			}
		}
	}
	return Matrix{Rows: a.Rows, Cols: b.Cols, Data: out}, nil
}

// Transpose returns the transposed matrix.
func (m Matrix) Transpose() Matrix {
	out := make([]float64, len(m.Data))
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out[j*m.Rows+i] = m.Data[i*m.Cols+j]
		}
	}
	return Matrix{Rows: m.Cols, Cols: m.Rows, Data: out}
}

// RowMeans returns the mean of each row.
func (m Matrix) RowMeans() []float64 {
	if m.Cols == 0 {
		return nil
	}
	means := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		for j := 0; j < m.Cols; j++ {
			sum += m.Data[i*m.Cols+j]
		}
		means[i] = sum / float64(m.Cols)
	}
	return means
}

// ColMeans returns the mean of each column.
func (m Matrix) ColMeans() []float64 {
	if m.Rows == 0 {
		return nil
	}
	means := make([]float64, m.Cols)
	for j := 0; j < m.Cols; j++ {
		sum := 0.0
		for i := 0; i < m.Rows; i++ {
			sum += m.Data[i*m.Cols+j]
		}
		means[j] = sum / float64(m.Rows)
	}
	return means
}

// RowStds returns the sample standard deviation of each row. Needs at least
// two columns.
func (m Matrix) RowStds() []float64 {
	if m.Cols < 2 {
		return nil
	}
	means := m.RowMeans()
	stds := make([]float64, m.Rows)
	for i := 0; i < m.Rows; i++ {
		variance := 0.0
		for j := 0; j < m.Cols; j++ {
			d := m.Data[i*m.Cols+j] - means[i]
			variance += d * d
		}
		stds[i] = math.Sqrt(variance / float64(m.Cols-1))
	}
	return stds
}

// ZScoreNormalize centers and scales each row to zero mean and unit standard
// deviation. Constant rows are centered only.
func (m Matrix) ZScoreNormalize() Matrix {
	means := m.RowMeans()
	stds := m.RowStds()

	out := make([]float64, len(m.Data))
	for i := 0; i < m.Rows; i++ {
		std := 1.0
		if stds != nil && stds[i] > 0 {
			std = stds[i]
		}
		for j := 0; j < m.Cols; j++ {
			out[i*m.Cols+j] = (m.Data[i*m.Cols+j] - means[i]) / std
		}
	}
	return Matrix{Rows: m.Rows, Cols: m.Cols, Data: out}
}

// CorrelationMatrix returns Pearson correlations between all row pairs.
func (m Matrix) CorrelationMatrix() (Matrix, error) {
	if m.Cols < 2 {
		return Matrix{}, fmt.Errorf("stats: correlation needs at least 2 columns, got %d", m.Cols)
	}

	norm := m.ZScoreNormalize()
	out := make([]float64, m.Rows*m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := i; j < m.Rows; j++ {
			sum := 0.0
			for k := 0; k < m.Cols; k++ {
				sum += norm.Data[i*m.Cols+k] * norm.Data[j*m.Cols+k]
			}
			r := sum / float64(m.Cols-1)
			out[i*m.Rows+j] = r
			out[j*m.Rows+i] = r
		}
	}
	return Matrix{Rows: m.Rows, Cols: m.Rows, Data: out}, nil
}

// CovarianceMatrix returns sample covariances between all row pairs.
func (m Matrix) CovarianceMatrix() (Matrix, error) {
	if m.Cols < 2 {
		return Matrix{}, fmt.Errorf("stats: covariance needs at least 2 columns, got %d", m.Cols)
	}

	means := m.RowMeans()
	out := make([]float64, m.Rows*m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := i; j < m.Rows; j++ {
			sum := 0.0
			for k := 0; k < m.Cols; k++ {
				sum += (m.Data[i*m.Cols+k] - means[i]) * (m.Data[j*m.Cols+k] - means[j])
			}
			cov := sum / float64(m.Cols-1)
			out[i*m.Rows+j] = cov
			out[j*m.Rows+i] = cov
		}
	}
	return Matrix{Rows: m.Rows, Cols: m.Rows, Data: out}, nil
}

// PearsonCorrelation returns r for two equal-length vectors. NaN on length
// mismatch or empty input, 0 when either vector is constant.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return math.NaN()
	}

	n := float64(len(x))
	meanX, meanY := 0.0, 0.0
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	cov, varX, varY := 0.0, 0.0, 0.0
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

// SpearmanCorrelation is the rank-based correlation, robust to monotone but
// non-linear relationships. Ties share their average rank.
func SpearmanCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return math.NaN()
	}
	return PearsonCorrelation(rank(x), rank(y))
}

func rank(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[order[j]] == values[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}
	return ranks
}
