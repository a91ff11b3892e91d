package scheduler

type theorySlot struct {
	day  Day
	slot int
}

// distributeTheory spreads the remaining theory hours of each (course, batch)
// over distinct days, at most one per day. Either every remaining hour is
// placed or none is.
func distributeTheory(st *state) {
	for _, a := range st.assignments {
		if a.theoryLeft <= 0 {
			continue
		}
		picks := st.collectTheorySlots(a)
		if len(picks) < a.theoryLeft {
			st.reject(a, ReasonTheory)
			continue
		}
		grid := st.grids[a.batch]
		for _, p := range picks {
			grid[p.day][p.slot] = Cell{
				CourseCode: a.course.Code,
				Faculty:    a.faculty,
				Session:    SessionTheory,
				Role:       RoleTheory,
			}
			st.book(a.faculty, p.day, p.slot, OccupancyCell{CourseCode: a.course.Code})
		}
		st.stats.TheoryPlaced += len(picks)
		a.theoryLeft = 0
	}
}

func (st *state) collectTheorySlots(a *assignment) []theorySlot {
	grid := st.grids[a.batch]
	picks := make([]theorySlot, 0, a.theoryLeft)
	for _, day := range Days {
		if len(picks) == a.theoryLeft {
			break
		}
		if grid.Occupied(day) >= SlotsPerDay || grid.HasTheory(day, a.course.Code) {
			continue
		}
		for slot := 0; slot < SlotsPerDay; slot++ {
			if grid.followsTheory(day, slot) {
				continue
			}
			if !grid[day][slot].Empty() || !st.facultyFree(a.faculty, day, slot) {
				continue
			}
			if st.theoryElsewhere(a, day, slot) {
				continue
			}
			picks = append(picks, theorySlot{day: day, slot: slot})
			break
		}
	}
	return picks
}

// theoryElsewhere reports whether another batch already has the faculty in a
// Theory cell at the same slot. Lab cells are not considered.
func (st *state) theoryElsewhere(a *assignment, day Day, slot int) bool {
	if a.faculty == "" {
		return false
	}
	for _, batch := range st.batches {
		if batch == a.batch {
			continue
		}
		cell := st.grids[batch][day][slot]
		if cell.Session == SessionTheory && cell.Faculty == a.faculty {
			return true
		}
	}
	return false
}
