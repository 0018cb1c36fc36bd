package model

type constraintState struct {
	domain  *domain
	indexer indexer
}

// clauseSet collects the clauses of one constraint family. Auxiliary variables are numbered right after the
// candidate variables, independently in every family; buildSat shifts them into disjoint ranges.
type clauseSet struct {
	base        uint64
	auxiliaries uint64
	clauses     [][]int64
}

func newClauseSet(state constraintState) *clauseSet {
	return &clauseSet{base: state.indexer.Variables(), clauses: make([][]int64, 0)}
}

func (set *clauseSet) fresh() int64 {
	set.auxiliaries++
	return int64(set.base + set.auxiliaries)
}

func (set *clauseSet) add(clause ...int64) {
	set.clauses = append(set.clauses, clause)
}

// atMost constrains at most k of the literals to be true. Small at-most-one constraints are encoded pairwise,
// everything else with a sequential counter: s(i, j) holds when at least j of the first i literals are true.
func (set *clauseSet) atMost(literals []int64, k int) {
	n := len(literals)
	if k >= n {
		return
	}
	if k <= 0 {
		for _, literal := range literals {
			set.add(-literal)
		}
		return
	}
	if k == 1 && n <= 5 {
		for i := range n - 1 {
			for j := i + 1; j < n; j++ {
				set.add(-literals[i], -literals[j])
			}
		}
		return
	}

	counters := make([][]int64, n-1)
	for i := range counters {
		counters[i] = make([]int64, k)
		for j := range counters[i] {
			counters[i][j] = set.fresh()
		}
	}

	set.add(-literals[0], counters[0][0])
	for j := 1; j < k; j++ {
		set.add(-counters[0][j])
	}
	for i := 1; i < n-1; i++ {
		set.add(-literals[i], counters[i][0])
		set.add(-counters[i-1][0], counters[i][0])
		for j := 1; j < k; j++ {
			set.add(-literals[i], -counters[i-1][j-1], counters[i][j])
			set.add(-counters[i-1][j], counters[i][j])
		}
		set.add(-literals[i], -counters[i-1][k-1])
	}
	set.add(-literals[n-1], -counters[n-2][k-1])
}

func (state constraintState) literal(s, candidate int) int64 {
	return int64(state.indexer.Index(uint64(s), uint64(candidate)))
}

// slotLiterals collects, per (resource, day, period), the variables of the candidates occupying that slot.
// Slices are filled in session and candidate order so that the encoding is reproducible.
func (state constraintState) slotLiterals(resources int, occupies func(s session, p placement) []int) [][]int64 {
	d := state.domain
	slots := make([][]int64, resources*d.days*d.periods)
	for s, current := range d.sessions {
		for candidate, p := range d.candidates[s] {
			literal := state.literal(s, candidate)
			for _, resource := range occupies(current, p) {
				for period := p.start; period < p.start+current.duration; period++ {
					cell := (resource*d.days+p.day)*d.periods + period
					slots[cell] = append(slots[cell], literal)
				}
			}
		}
	}
	return slots
}

// Every session takes at least one of its candidate placements
func completenessConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	for s := range state.domain.sessions {
		clause := make([]int64, 0, len(state.domain.candidates[s]))
		for candidate := range state.domain.candidates[s] {
			clause = append(clause, state.literal(s, candidate))
		}
		set.add(clause...)
	}
	return *set
}

// Every session takes at most one of its candidate placements
func uniquenessConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	for s := range state.domain.sessions {
		literals := make([]int64, 0, len(state.domain.candidates[s]))
		for candidate := range state.domain.candidates[s] {
			literals = append(literals, state.literal(s, candidate))
		}
		set.atMost(literals, 1)
	}
	return *set
}

func teacherConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	slots := state.slotLiterals(len(state.domain.configuration.Teachers), func(_ session, p placement) []int {
		return []int{p.teacher}
	})
	for _, literals := range slots {
		set.atMost(literals, 1)
	}
	return *set
}

func roomConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	slots := state.slotLiterals(len(state.domain.configuration.Rooms), func(_ session, p placement) []int {
		return []int{p.room}
	})
	for _, literals := range slots {
		set.atMost(literals, 1)
	}
	return *set
}

func groupConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	slots := state.slotLiterals(len(state.domain.configuration.Groups), func(s session, _ placement) []int {
		return s.groups
	})
	for _, literals := range slots {
		set.atMost(literals, 1)
	}
	return *set
}

// A teacher teaches at most maxPerDay sessions a day
func dailyLoadConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	d := state.domain
	daily := make([][]int64, len(d.configuration.Teachers)*d.days)
	for s := range d.sessions {
		for candidate, p := range d.candidates[s] {
			cell := p.teacher*d.days + p.day
			daily[cell] = append(daily[cell], state.literal(s, candidate))
		}
	}
	for cell, literals := range daily {
		set.atMost(literals, d.configuration.Teachers[cell/d.days].MaxPerDay)
	}
	return *set
}

// A teacher teaches at most maxPerWeek sessions a week
func weeklyLoadConstraints(state constraintState) clauseSet {
	set := newClauseSet(state)
	d := state.domain
	weekly := make([][]int64, len(d.configuration.Teachers))
	for s := range d.sessions {
		for candidate, p := range d.candidates[s] {
			weekly[p.teacher] = append(weekly[p.teacher], state.literal(s, candidate))
		}
	}
	for teacher, literals := range weekly {
		set.atMost(literals, d.configuration.Teachers[teacher].MaxPerWeek)
	}
	return *set
}
