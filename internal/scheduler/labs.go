package scheduler

// allocateLabBlocks places one contiguous block per (course, batch) needing
// one. A block never crosses the lunch boundary and a batch never gets two
// lab sessions on the same day. Blocks that fit nowhere are dropped whole.
func allocateLabBlocks(st *state) {
	for _, a := range st.assignments {
		if a.hours.Block <= 0 {
			continue
		}
		if placeLabBlock(st, a) {
			st.stats.LabBlocksPlaced++
			continue
		}
		st.reject(a, ReasonBlock)
	}
}

func placeLabBlock(st *state, a *assignment) bool {
	length := a.hours.Block
	grid := st.grids[a.batch]
	for _, day := range Days {
		if grid.HasLab(day) {
			continue
		}
		if a.faculty != "" && st.occupancy[a.faculty].HasLabDay(day) {
			continue
		}
		for _, start := range blockStarts(length) {
			if !st.blockFree(a, day, start, length) {
				continue
			}
			session, role := labKind(a.course.Category)
			for slot := start; slot < start+length; slot++ {
				grid[day][slot] = Cell{
					CourseCode:  a.course.Code,
					Faculty:     a.faculty,
					Session:     session,
					Role:        role,
					BlockLength: length,
				}
				st.book(a.faculty, day, slot, OccupancyCell{CourseCode: a.course.Code, LabDay: true})
			}
			return true
		}
	}
	return false
}

// blockStarts lists start indices whose block stays entirely before or
// entirely after lunch.
func blockStarts(length int) []int {
	var starts []int
	for start := 0; start+length <= LunchBoundary; start++ {
		starts = append(starts, start)
	}
	for start := LunchBoundary; start+length <= SlotsPerDay; start++ {
		starts = append(starts, start)
	}
	return starts
}

func (st *state) blockFree(a *assignment, day Day, start, length int) bool {
	grid := st.grids[a.batch]
	for slot := start; slot < start+length; slot++ {
		if !grid[day][slot].Empty() || !st.facultyFree(a.faculty, day, slot) {
			return false
		}
	}
	return true
}

func labKind(category Category) (SessionType, SlotRole) {
	if category == CategoryLabIntegrated {
		return SessionLabIntegrated, RoleLabIntegrated
	}
	return SessionLab, RoleLab
}
