package model

const (
	EmptyCell = "-"
	LunchCell = "LUNCH"
	TotalLoad = totalColumn
)

// ScheduleResult is the timetable handed back to the configuration client.
// Groups maps group id -> day -> period (1-based) -> cell label; TeacherLoad maps teacher id -> day (or "Total") -> sessions.
type ScheduleResult struct {
	Groups      map[string]map[string]map[int]string `json:"groups"`
	TeacherLoad map[string]map[string]int            `json:"teacherLoad"`
}

// assemble converts a complete assignment into the per-group grid and the per-teacher load table
func assemble(a *assignment) ScheduleResult {
	d := a.domain
	configuration := d.configuration
	days := configuration.TimetableSettings.Days

	result := ScheduleResult{
		Groups:      make(map[string]map[string]map[int]string, len(configuration.Groups)),
		TeacherLoad: make(map[string]map[string]int, len(configuration.Teachers)),
	}

	//** Initialize every cell as empty (lunch cells are fixed)
	for _, group := range configuration.Groups {
		grid := make(map[string]map[int]string, len(days))
		for _, day := range days {
			grid[day] = make(map[int]string, d.periods)
			for period := range d.periods {
				if period == d.lunch {
					grid[day][period+1] = LunchCell
				} else {
					grid[day][period+1] = EmptyCell
				}
			}
		}
		result.Groups[group.Id] = grid
	}
	for _, teacher := range configuration.Teachers {
		load := make(map[string]int, len(days)+1)
		for _, day := range days {
			load[day] = 0
		}
		load[TotalLoad] = 0
		result.TeacherLoad[teacher.Id] = load
	}

	//** Fill in placed sessions
	for s, p := range a.placements {
		if !p.placed() {
			continue
		}
		current := d.sessions[s]
		day := days[p.day]
		label := d.label(current, p)

		for _, group := range current.groups {
			for period := p.start; period < p.start+current.duration; period++ {
				result.Groups[configuration.Groups[group].Id][day][period+1] = label
			}
		}

		teacherId := configuration.Teachers[p.teacher].Id
		result.TeacherLoad[teacherId][day]++
		result.TeacherLoad[teacherId][TotalLoad]++
	}

	return result
}
