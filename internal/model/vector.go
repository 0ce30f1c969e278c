package model

// SparseVector holds the non-zero features of one document, indices in
// ascending order.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len reports the number of non-zero features.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Dot computes v·w for a dense weight row.
func (v SparseVector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * w[idx]
	}
	return sum
}
