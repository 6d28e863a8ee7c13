// Package matrix implements the dense linear system used to solve the
// modified-nodal-analysis equations once per audio sample.
package matrix

import "github.com/pkg/errors"

// ErrSingular is returned by Factor when a pivot collapses below the
// numerical noise floor.
var ErrSingular = errors.New("matrix: singular system")

// System is a fixed-capacity dense linear system A*x = z, row-major, built
// once for a given circuit dimension and reused for every sample. Clear
// zeroes A and z without releasing the backing arrays so that stepping the
// simulator never allocates.
type System struct {
	Size int

	a  []float64 // row-major, Size*Size
	lu []float64 // working copy factored in place
	z  []float64
	x  []float64

	pivots []int
	scratch []float64 // permuted rhs, reused by Solve
}

// New allocates a system of the given dimension. The system allocates
// nothing after this; every later call reuses these buffers.
func New(size int) *System {
	return &System{
		Size:    size,
		a:       make([]float64, size*size),
		lu:      make([]float64, size*size),
		z:       make([]float64, size),
		x:       make([]float64, size),
		pivots:  make([]int, size),
		scratch: make([]float64, size),
	}
}

// Clear zeroes the matrix and right-hand side in place.
func (s *System) Clear() {
	for i := range s.a {
		s.a[i] = 0
	}
	for i := range s.z {
		s.z[i] = 0
	}
}

// Add accumulates v into A[i,j]. A negative row or column index is treated
// as ground and silently dropped — this is the branchless-in-the-hot-loop
// convention described for stamping to ground.
func (s *System) Add(i, j int, v float64) {
	if i < 0 || j < 0 {
		return
	}
	s.a[i*s.Size+j] += v
}

// AddRHS accumulates v into z[i]. A negative index is ground and dropped.
func (s *System) AddRHS(i int, v float64) {
	if i < 0 {
		return
	}
	s.z[i] += v
}

// Get returns the current value of A[i,j], or 0 for a ground index.
func (s *System) Get(i, j int) float64 {
	if i < 0 || j < 0 {
		return 0
	}
	return s.a[i*s.Size+j]
}

// X returns the solution vector populated by the last successful Solve.
func (s *System) X() []float64 {
	return s.x
}

// NodeVoltage returns 0 for ground (node < 0) and x[node] otherwise.
func (s *System) NodeVoltage(node int) float64 {
	if node < 0 {
		return 0
	}
	return s.x[node]
}

// Factor performs in-place LU decomposition with partial pivoting on a
// fresh copy of A, recording the permutation in pivots. Returns
// ErrSingular if any pivot magnitude falls below 1e-14.
func (s *System) Factor() error {
	n := s.Size
	copy(s.lu, s.a)
	for i := range s.pivots {
		s.pivots[i] = i
	}

	for k := 0; k < n; k++ {
		maxVal := abs(s.lu[k*n+k])
		maxRow := k
		for i := k + 1; i < n; i++ {
			v := abs(s.lu[i*n+k])
			if v > maxVal {
				maxVal = v
				maxRow = i
			}
		}
		if maxVal < 1e-14 {
			return ErrSingular
		}
		if maxRow != k {
			s.pivots[k], s.pivots[maxRow] = s.pivots[maxRow], s.pivots[k]
			for j := 0; j < n; j++ {
				s.lu[k*n+j], s.lu[maxRow*n+j] = s.lu[maxRow*n+j], s.lu[k*n+j]
			}
		}

		pivot := s.lu[k*n+k]
		for i := k + 1; i < n; i++ {
			factor := s.lu[i*n+k] / pivot
			s.lu[i*n+k] = factor
			for j := k + 1; j < n; j++ {
				s.lu[i*n+j] -= factor * s.lu[k*n+j]
			}
		}
	}
	return nil
}

// Solve applies the permutation to z, forward-substitutes, then
// back-substitutes, leaving the result in x. Factor must have succeeded
// first. Returns ErrSingular if a diagonal collapses during back
// substitution (can happen even after a nominally successful Factor on
// pathological inputs).
func (s *System) Solve() error {
	n := s.Size
	for i := 0; i < n; i++ {
		s.scratch[i] = s.z[s.pivots[i]]
	}
	copy(s.x, s.scratch)

	for i := 0; i < n; i++ {
		sum := s.x[i]
		for j := 0; j < i; j++ {
			sum -= s.lu[i*n+j] * s.x[j]
		}
		s.x[i] = sum
	}

	for i := n - 1; i >= 0; i-- {
		sum := s.x[i]
		for j := i + 1; j < n; j++ {
			sum -= s.lu[i*n+j] * s.x[j]
		}
		diag := s.lu[i*n+i]
		if abs(diag) < 1e-14 {
			return ErrSingular
		}
		s.x[i] = sum / diag
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
