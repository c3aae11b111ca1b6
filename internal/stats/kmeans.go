package stats

import (
	"errors"
	"math"
	"math/rand/v2"
)

// KMeansResult is one clustering outcome.
type KMeansResult struct {
	// Assignments maps each point index to its cluster.
	Assignments []int `json:"assignments"`

	// Centroids are flattened cluster centers, k*dims long.
	Centroids []float64 `json:"centroids"`

	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`

	// Inertia is the within-cluster sum of squared distances.
	Inertia float64 `json:"inertia"`
}

var errBadKMeansInput = errors.New("stats: kmeans needs 1 <= k <= point count and data divisible by dims")

// KMeans clusters flattened points ([x1,y1,x2,y2,...] for dims=2) into k
// clusters with k-means++ seeding. Convergence is declared when assignments
// stop changing or the inertia improvement drops below tolerance.
func KMeans(data []float64, k, dims, maxIter int) (KMeansResult, error) {
	return KMeansWithTolerance(data, k, dims, maxIter, 1e-4)
}

// KMeansWithTolerance is KMeans with an explicit convergence tolerance.
func KMeansWithTolerance(data []float64, k, dims, maxIter int, tolerance float64) (KMeansResult, error) {
	if dims <= 0 || len(data)%dims != 0 {
		return KMeansResult{}, errBadKMeansInput
	}
	nPoints := len(data) / dims
	if nPoints == 0 || k <= 0 || k > nPoints {
		return KMeansResult{}, errBadKMeansInput
	}

	centroids := kmeansPlusPlus(data, k, dims)
	assignments := make([]int, nPoints)
	prevInertia := math.MaxFloat64

	for iter := 0; iter < maxIter; iter++ {
		changed := assignPoints(data, centroids, assignments, dims)
		updateCentroids(data, assignments, centroids, k, dims)

		inertia := calculateInertia(data, centroids, assignments, dims)
		if !changed || math.Abs(prevInertia-inertia) < tolerance {
			return KMeansResult{
				Assignments: assignments,
				Centroids:   centroids,
				Iterations:  iter + 1,
				Converged:   true,
				Inertia:     inertia,
			}, nil
		}
		prevInertia = inertia
	}

	return KMeansResult{
		Assignments: assignments,
		Centroids:   centroids,
		Iterations:  maxIter,
		Converged:   false,
		Inertia:     calculateInertia(data, centroids, assignments, dims),
	}, nil
}

// KMeansBest runs KMeans nInit times and keeps the lowest-inertia result.
// Seeding is random, so repeated runs dodge bad initializations.
func KMeansBest(data []float64, k, dims, maxIter, nInit int) (KMeansResult, error) {
	var best KMeansResult
	bestInertia := math.MaxFloat64
	found := false

	for i := 0; i < nInit; i++ {
		result, err := KMeans(data, k, dims, maxIter)
		if err != nil {
			return KMeansResult{}, err
		}
		if result.Inertia < bestInertia {
			bestInertia = result.Inertia
			best = result
			found = true
		}
	}
	if !found {
		return KMeansResult{}, errBadKMeansInput
	}
	return best, nil
}

// ElbowAnalysis returns the best inertia for each k in 1..maxK, for picking a
// cluster count by the elbow heuristic.
func ElbowAnalysis(data []float64, dims, maxK, maxIter int) ([]float64, error) {
	inertias := make([]float64, 0, maxK)
	for k := 1; k <= maxK; k++ {
		result, err := KMeansBest(data, k, dims, maxIter, 3)
		if err != nil {
			return nil, err
		}
		inertias = append(inertias, result.Inertia)
	}
	return inertias, nil
}

// kmeansPlusPlus seeds centroids with the k-means++ scheme: the first is a
// uniform random point, each next is drawn with probability proportional to
// its squared distance from the nearest existing centroid.
func kmeansPlusPlus(data []float64, k, dims int) []float64 {
	nPoints := len(data) / dims
	centroids := make([]float64, 0, k*dims)

	first := rand.IntN(nPoints)
	centroids = append(centroids, data[first*dims:(first+1)*dims]...)

	distances := make([]float64, nPoints)
	for len(centroids) < k*dims {
		total := 0.0
		for i := 0; i < nPoints; i++ {
			point := data[i*dims : (i+1)*dims]
			minDist := math.MaxFloat64
			for c := 0; c < len(centroids); c += dims {
				d := euclideanDistanceSq(point, centroids[c:c+dims])
				minDist = math.Min(minDist, d)
			}
			distances[i] = minDist
			total += minDist
		}

		if total == 0 {
			// All points coincide with a centroid; fall back to uniform.
			idx := rand.IntN(nPoints)
			centroids = append(centroids, data[idx*dims:(idx+1)*dims]...)
			continue
		}

		threshold := rand.Float64() * total
		cumsum := 0.0
		picked := false
		for i, d := range distances {
			cumsum += d
			if cumsum >= threshold {
				centroids = append(centroids, data[i*dims:(i+1)*dims]...)
				picked = true
				break
			}
		}
		if !picked {
			idx := rand.IntN(nPoints)
			centroids = append(centroids, data[idx*dims:(idx+1)*dims]...)
		}
	}
	return centroids
}

func euclideanDistanceSq(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func assignPoints(data, centroids []float64, assignments []int, dims int) bool {
	changed := false
	for i := 0; i < len(assignments); i++ {
		point := data[i*dims : (i+1)*dims]
		minDist := math.MaxFloat64
		minCluster := 0
		for j := 0; j*dims < len(centroids); j++ {
			d := euclideanDistanceSq(point, centroids[j*dims:(j+1)*dims])
			if d < minDist {
				minDist = d
				minCluster = j
			}
		}
		if assignments[i] != minCluster {
			assignments[i] = minCluster
			changed = true
		}
	}
	return changed
}

func updateCentroids(data []float64, assignments []int, centroids []float64, k, dims int) {
	counts := make([]int, k)
	sums := make([]float64, k*dims)

	for i, cluster := range assignments {
		counts[cluster]++
		point := data[i*dims : (i+1)*dims]
		for j, v := range point {
			sums[cluster*dims+j] += v
		}
	}

	for c, count := range counts {
		if count == 0 {
			// Empty cluster keeps its old centroid.
			continue
		}
		for j := 0; j < dims; j++ {
			centroids[c*dims+j] = sums[c*dims+j] / float64(count)
		}
	}
}

func calculateInertia(data, centroids []float64, assignments []int, dims int) float64 {
	total := 0.0
	for i, cluster := range assignments {
		point := data[i*dims : (i+1)*dims]
		total += euclideanDistanceSq(point, centroids[cluster*dims:(cluster+1)*dims])
	}
	return total
}

// SilhouetteScore rates clustering quality in [-1, 1]: mean over points of
// (b-a)/max(a,b) where a is the mean intra-cluster distance and b the mean
// distance to the nearest other cluster.
func SilhouetteScore(data []float64, assignments []int, dims int) float64 {
	nPoints := len(data) / dims
	if nPoints < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < nPoints; i++ {
		point := data[i*dims : (i+1)*dims]
		cluster := assignments[i]

		sameDist, sameCount := 0.0, 0
		otherSums := map[int]float64{}
		otherCounts := map[int]int{}

		for j := 0; j < nPoints; j++ {
			if i == j {
				continue
			}
			other := data[j*dims : (j+1)*dims]
			dist := math.Sqrt(euclideanDistanceSq(point, other))

			if assignments[j] == cluster {
				sameDist += dist
				sameCount++
			} else {
				otherSums[assignments[j]] += dist
				otherCounts[assignments[j]]++
			}
		}

		a := 0.0
		if sameCount > 0 {
			a = sameDist / float64(sameCount)
		}

		b := math.MaxFloat64
		for c, sum := range otherSums {
			b = math.Min(b, sum/float64(otherCounts[c]))
		}

		if m := math.Max(a, b); m > 0 && b != math.MaxFloat64 {
			total += (b - a) / m
		}
	}
	return total / float64(nPoints)
}
