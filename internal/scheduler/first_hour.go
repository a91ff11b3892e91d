package scheduler

// allocateFirstHours gives every faculty member at most one theory session in
// the first slot of a day. Faculty are visited in discovery order, then
// batches, then days; the first fit wins and is never retried.
func allocateFirstHours(st *state) {
	for _, faculty := range st.faculty {
		placeFirstHour(st, faculty)
	}
}

func placeFirstHour(st *state, faculty string) bool {
	occ := st.occupancy[faculty]
	for _, batch := range st.batches {
		a := st.firstTheoryFor(faculty, batch)
		if a == nil {
			continue
		}
		grid := st.grids[batch]
		for _, day := range Days {
			if !grid[day][0].Empty() || !occ[day][0].Empty() {
				continue
			}
			grid[day][0] = Cell{
				CourseCode: a.course.Code,
				Faculty:    faculty,
				Session:    SessionTheory,
				Role:       RoleFirstHour,
			}
			occ[day][0] = OccupancyCell{CourseCode: a.course.Code}
			a.theoryLeft--
			st.stats.FirstHourPlaced++
			return true
		}
	}
	return false
}

// firstTheoryFor returns the first assignment, in course order, that faculty
// teaches to batch and that still needs theory hours.
func (st *state) firstTheoryFor(faculty, batch string) *assignment {
	for _, a := range st.assignments {
		if a.faculty == faculty && a.batch == batch && a.theoryLeft > 0 {
			return a
		}
	}
	return nil
}
