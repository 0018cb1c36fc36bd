package model

// PenaltyBreakdown reports the objective value of a timetable split by soft constraint
type PenaltyBreakdown struct {
	Total                int `json:"total"`
	LastPeriod           int `json:"lastPeriod"`
	TeacherDislike       int `json:"teacherDislike"`
	GroupFirstLastPeriod int `json:"groupFirstLastPeriod"`
}

func (breakdown *PenaltyBreakdown) add(other PenaltyBreakdown) {
	breakdown.Total += other.Total
	breakdown.LastPeriod += other.LastPeriod
	breakdown.TeacherDislike += other.TeacherDislike
	breakdown.GroupFirstLastPeriod += other.GroupFirstLastPeriod
}

// Every penalty term belongs to exactly one session, hence the objective is the sum of the sessions' penalties
// and the delta of a move only involves the moved sessions
func (d *domain) sessionPenalty(s int, p placement) int {
	return d.sessionBreakdown(s, p).Total
}

func (d *domain) sessionBreakdown(s int, p placement) PenaltyBreakdown {
	var breakdown PenaltyBreakdown
	if !p.placed() {
		return breakdown
	}

	current := d.sessions[s]
	weights := d.configuration.PenaltyWeights

	if covers(p, current.duration, d.last) {
		breakdown.LastPeriod += weights.UseLastPeriodPenalty
	}

	for period := p.start; period < p.start+current.duration; period++ {
		if d.evaluator.Dislikes(p.teacher, period) {
			breakdown.TeacherDislike += weights.TeacherDislikePeriodPenalty
			break
		}
	}

	if covers(p, current.duration, d.first) || covers(p, current.duration, d.last) {
		breakdown.GroupFirstLastPeriod += weights.GroupFirstLastPeriodPenalty * len(current.groups)
	}

	breakdown.Total = breakdown.LastPeriod + breakdown.TeacherDislike + breakdown.GroupFirstLastPeriod
	return breakdown
}

func (a *assignment) penalty() int {
	total := 0
	for s, p := range a.placements {
		total += a.domain.sessionPenalty(s, p)
	}
	return total
}

func (a *assignment) breakdown() PenaltyBreakdown {
	var total PenaltyBreakdown
	for s, p := range a.placements {
		total.add(a.domain.sessionBreakdown(s, p))
	}
	return total
}
