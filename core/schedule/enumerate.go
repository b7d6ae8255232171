package schedule

// assignments walks every map from tasks to vehicles as a base-V odometer.
// digits[t] is the vehicle index of task t; the last task changes fastest.
type assignments struct {
	digits   []int
	vehicles int
	started  bool
	done     bool
}

func newAssignments(tasks, vehicles int) *assignments {
	return &assignments{digits: make([]int, tasks), vehicles: vehicles, done: vehicles == 0}
}

// Next advances to the following assignment. It returns false once every
// assignment has been produced.
func (a *assignments) Next() bool {
	if a.done {
		return false
	}
	if !a.started {
		a.started = true
		return true
	}
	return a.carry(len(a.digits) - 1)
}

// Skip abandons every remaining assignment that shares digits[:pos+1] with
// the current one and advances to the next assignment after them.
func (a *assignments) Skip(pos int) bool {
	if a.done {
		return false
	}
	for i := pos + 1; i < len(a.digits); i++ {
		a.digits[i] = a.vehicles - 1
	}
	return a.carry(len(a.digits) - 1)
}

func (a *assignments) carry(pos int) bool {
	for i := pos; i >= 0; i-- {
		a.digits[i]++
		if a.digits[i] < a.vehicles {
			return true
		}
		a.digits[i] = 0
	}
	a.done = true
	return false
}

// Assignment returns the current digits. The slice is reused by Next.
func (a *assignments) Assignment() []int { return a.digits }

// permutations yields the orderings of items in lexicographic order of their
// positions, matching the order of the input for the first permutation.
type permutations struct {
	idx     []int
	items   []string
	cur     []string
	started bool
	done    bool
}

func newPermutations(items []string) *permutations {
	p := &permutations{idx: make([]int, len(items)), items: items, cur: make([]string, len(items))}
	for i := range p.idx {
		p.idx[i] = i
	}
	return p
}

// Next advances to the following permutation.
func (p *permutations) Next() bool {
	if p.done {
		return false
	}
	if !p.started {
		p.started = true
		p.fill()
		return true
	}
	// Find the rightmost ascent.
	i := len(p.idx) - 2
	for i >= 0 && p.idx[i] >= p.idx[i+1] {
		i--
	}
	if i < 0 {
		p.done = true
		return false
	}
	j := len(p.idx) - 1
	for p.idx[j] <= p.idx[i] {
		j--
	}
	p.idx[i], p.idx[j] = p.idx[j], p.idx[i]
	for l, r := i+1, len(p.idx)-1; l < r; l, r = l+1, r-1 {
		p.idx[l], p.idx[r] = p.idx[r], p.idx[l]
	}
	p.fill()
	return true
}

func (p *permutations) fill() {
	for k, i := range p.idx {
		p.cur[k] = p.items[i]
	}
}

// Sequence returns the current ordering. The slice is reused by Next.
func (p *permutations) Sequence() []string { return p.cur }
