package scheduler

// enforceFreeDays makes sure every faculty member has one day without
// sessions. When none exists, the least loaded day (earliest on ties) is
// cleared in every batch grid and in the occupancy table. Cleared sessions
// are counted in Stats.ForcedClears but not reported as unscheduled.
func enforceFreeDays(st *state) {
	for _, faculty := range st.faculty {
		occ := st.occupancy[faculty]
		target, fewest := Monday, SlotsPerDay+1
		free := false
		for _, day := range Days {
			n := occ.Occupied(day)
			if n == 0 {
				free = true
				break
			}
			if n < fewest {
				target, fewest = day, n
			}
		}
		if free {
			continue
		}
		st.stats.ForcedClears += st.clearFacultyDay(faculty, target)
	}
}

func (st *state) clearFacultyDay(faculty string, day Day) int {
	cleared := 0
	for _, batch := range st.batches {
		grid := st.grids[batch]
		for slot := 0; slot < SlotsPerDay; slot++ {
			if grid[day][slot].Faculty == faculty {
				grid[day][slot] = Cell{}
				cleared++
			}
		}
	}
	st.occupancy[faculty].ClearDay(day)
	return cleared
}
