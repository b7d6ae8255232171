package routing

import (
	"fmt"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/mat"
)

// SentinelHours is the travel time assigned to pairs the provider could not
// route. It is large enough to make any time window infeasible.
const SentinelHours = 999.0

// Matrix stores travel times in hours and route geometry for every ordered
// pair of registered locations.
type Matrix struct {
	ids    []string
	index  map[string]int
	hours  *mat.Dense
	paths  []orb.LineString
	failed []bool
}

// NewMatrix returns a matrix for the registry's locations with every
// off-diagonal pair set to SentinelHours and the diagonal set to zero.
func NewMatrix(reg *Registry) *Matrix {
	n := reg.Len()
	m := &Matrix{
		ids:    make([]string, n),
		index:  make(map[string]int, n),
		paths:  make([]orb.LineString, n*n),
		failed: make([]bool, n*n),
	}
	for i, l := range reg.locs {
		m.ids[i] = l.ID
		m.index[l.ID] = i
	}
	if n == 0 {
		return m
	}
	m.hours = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				m.hours.Set(i, j, SentinelHours)
			}
		}
	}
	return m
}

// Size returns the number of locations covered by the matrix.
func (m *Matrix) Size() int { return len(m.ids) }

// Set stores the travel time and geometry for the ordered pair from -> to.
func (m *Matrix) Set(from, to string, hours float64, path orb.LineString) error {
	i, ok := m.index[from]
	if !ok {
		return fmt.Errorf("matrix: unknown location %s", from)
	}
	j, ok := m.index[to]
	if !ok {
		return fmt.Errorf("matrix: unknown location %s", to)
	}
	if i == j {
		return fmt.Errorf("matrix: self pair %s is fixed to zero", from)
	}
	m.set(i, j, hours, path)
	return nil
}

// set writes one cell. Distinct cells may be written concurrently.
func (m *Matrix) set(i, j int, hours float64, path orb.LineString) {
	m.hours.Set(i, j, hours)
	m.paths[i*len(m.ids)+j] = path
	m.failed[i*len(m.ids)+j] = false
}

func (m *Matrix) fail(i, j int) {
	m.hours.Set(i, j, SentinelHours)
	m.paths[i*len(m.ids)+j] = nil
	m.failed[i*len(m.ids)+j] = true
}

// Travel returns the travel time in hours from -> to. Unknown IDs yield
// SentinelHours.
func (m *Matrix) Travel(from, to string) float64 {
	i, ok1 := m.index[from]
	j, ok2 := m.index[to]
	if !ok1 || !ok2 {
		return SentinelHours
	}
	return m.hours.At(i, j)
}

// Path returns the route geometry from -> to, nil for self pairs, failed
// pairs and unknown IDs.
func (m *Matrix) Path(from, to string) orb.LineString {
	i, ok1 := m.index[from]
	j, ok2 := m.index[to]
	if !ok1 || !ok2 {
		return nil
	}
	return m.paths[i*len(m.ids)+j]
}

// Failed reports whether the pair fell back to the sentinel because the
// provider returned an error.
func (m *Matrix) Failed(from, to string) bool {
	i, ok1 := m.index[from]
	j, ok2 := m.index[to]
	if !ok1 || !ok2 {
		return false
	}
	return m.failed[i*len(m.ids)+j]
}

// Hours exposes a read-only view of the dense hour table in registry order.
func (m *Matrix) Hours() mat.Matrix {
	if m.hours == nil {
		return nil
	}
	return m.hours
}
