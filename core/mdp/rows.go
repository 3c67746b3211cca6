package mdp

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Row returns row i of m as a vector, without copying when m supports row views.
func Row(m mat.Matrix, i int) mat.Vector {
	if rv, ok := m.(mat.RowViewer); ok {
		return rv.RowView(i)
	}
	_, c := m.Dims()
	return mat.NewVecDense(c, mat.Row(nil, i, m))
}

// ReachableStates lists the indexes with positive probability in row.
func ReachableStates(row mat.Vector) []int {
	var out []int
	for j := 0; j < row.Len(); j++ {
		if row.AtVec(j) > 0 {
			out = append(out, j)
		}
	}
	return out
}

// SampleSuccessor draws a successor index by accumulating the positive
// entries of row until the cumulative mass exceeds a uniform draw. When
// rounding leaves the draw above the total mass the last positive entry is
// returned. An all-zero row returns -1.
func SampleSuccessor(rng *rand.Rand, row mat.Vector) int {
	u := rng.Float64()
	cum := 0.0
	last := -1
	for j := 0; j < row.Len(); j++ {
		p := row.AtVec(j)
		if p <= 0 {
			continue
		}
		last = j
		cum += p
		if u < cum {
			return j
		}
	}
	return last
}
