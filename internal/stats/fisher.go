// Package stats implements the statistical routines behind cohort
// comparisons: Fisher's exact test for 2x2 contingency tables, k-means
// clustering over expression-like data, and dense matrix helpers.
package stats

import "math"

// Table is a 2x2 contingency table:
//
//	            with feature   without feature
//	group A          A               C
//	group B          B               D
type Table struct {
	A, B, C, D int
}

// N is the table total.
func (t Table) N() int { return t.A + t.B + t.C + t.D }

// logFactorialLookup covers n <= 20 exactly; larger n uses Stirling.
var logFactorialLookup = [21]float64{
	0.0, 0.0, 0.693147, 1.791759, 3.178054, 4.787492,
	6.579251, 8.525161, 10.604603, 12.801827, 15.104413,
	17.502308, 19.987214, 22.552164, 25.191221, 27.899271,
	30.671860, 33.505073, 36.395445, 39.339884, 42.335616,
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n <= 20 {
		return logFactorialLookup[n]
	}
	f := float64(n)
	// Stirling with the 1/(12n) correction; 0.91893... is 0.5*ln(2*pi).
	return (f+0.5)*math.Log(f) - f + 0.918938533204673 + 1/(12*f)
}

// hypergeometricProb is the probability of one exact 2x2 table under fixed
// margins.
func hypergeometricProb(a, b, c, d int) float64 {
	logP := logFactorial(a+b) + logFactorial(c+d) +
		logFactorial(a+c) + logFactorial(b+d) -
		logFactorial(a) - logFactorial(b) -
		logFactorial(c) - logFactorial(d) -
		logFactorial(a + b + c + d)
	return math.Exp(logP)
}

// FisherExact returns the two-tailed p-value for the table.
func FisherExact(t Table) float64 {
	return FisherExactTwoTailed(t)
}

// FisherExactLeft returns the one-tailed (less-than) p-value.
func FisherExactLeft(t Table) float64 {
	row1, col1, n := t.A+t.B, t.A+t.C, t.N()

	minA := 0
	if row1+col1 > n {
		minA = row1 + col1 - n
	}

	sum := 0.0
	for i := minA; i <= t.A; i++ {
		sum += hypergeometricProb(i, row1-i, col1-i, n-row1-col1+i)
	}
	return math.Min(sum, 1)
}

// FisherExactRight returns the one-tailed (greater-than) p-value.
func FisherExactRight(t Table) float64 {
	row1, col1, n := t.A+t.B, t.A+t.C, t.N()

	maxA := min(row1, col1)

	sum := 0.0
	for i := t.A; i <= maxA; i++ {
		sum += hypergeometricProb(i, row1-i, col1-i, n-row1-col1+i)
	}
	return math.Min(sum, 1)
}

// FisherExactTwoTailed sums the probabilities of every table with fixed
// margins at most as likely as the observed one.
func FisherExactTwoTailed(t Table) float64 {
	row1, col1, n := t.A+t.B, t.A+t.C, t.N()

	minA := 0
	if row1+col1 > n {
		minA = row1 + col1 - n
	}
	maxA := min(row1, col1)

	observed := hypergeometricProb(t.A, t.B, t.C, t.D)

	sum := 0.0
	for i := minA; i <= maxA; i++ {
		p := hypergeometricProb(i, row1-i, col1-i, n-row1-col1+i)
		if p <= observed+1e-10 {
			sum += p
		}
	}
	return math.Min(sum, 1)
}

// FisherExactBatch runs the two-tailed test over many tables.
func FisherExactBatch(tables []Table) []float64 {
	out := make([]float64, len(tables))
	for i, t := range tables {
		out[i] = FisherExact(t)
	}
	return out
}

// OddsRatio returns (A*D)/(B*C), or +Inf when a denominator cell is zero.
func OddsRatio(t Table) float64 {
	if t.B == 0 || t.C == 0 {
		return math.Inf(1)
	}
	return (float64(t.A) * float64(t.D)) / (float64(t.B) * float64(t.C))
}

// OddsRatioResult carries an odds ratio with its confidence interval and the
// matching Fisher p-value.
type OddsRatioResult struct {
	OddsRatio float64 `json:"oddsRatio"`
	CILower   float64 `json:"ciLower"`
	CIUpper   float64 `json:"ciUpper"`
	PValue    float64 `json:"pValue"`
}

// OddsRatioCI computes the odds ratio with a Wald confidence interval on the
// log scale. Confidence picks the nearest of the 0.90/0.95/0.99 z-scores.
func OddsRatioCI(t Table, confidence float64) OddsRatioResult {
	or := OddsRatio(t)

	logOR := math.Log(or)
	se := math.Sqrt(1/float64(max(t.A, 1)) + 1/float64(max(t.B, 1)) +
		1/float64(max(t.C, 1)) + 1/float64(max(t.D, 1)))

	var z float64
	switch {
	case confidence >= 0.99:
		z = 2.576
	case confidence >= 0.95:
		z = 1.96
	case confidence >= 0.90:
		z = 1.645
	default:
		z = 1.96
	}

	return OddsRatioResult{
		OddsRatio: or,
		CILower:   math.Exp(logOR - z*se),
		CIUpper:   math.Exp(logOR + z*se),
		PValue:    FisherExact(t),
	}
}
