package scheduler

// balanceDays fills days left empty for a batch by moving single sessions
// from days holding more than one. A moved cell keeps its slot index. Moves
// are not re-checked against faculty occupancy or other batches.
func balanceDays(st *state) {
	for _, batch := range st.batches {
		grid := st.grids[batch]
		for moveIntoEmptyDay(st, grid) {
			st.stats.BalancerMoves++
		}
	}
}

// moveIntoEmptyDay performs at most one move and reports whether it did.
func moveIntoEmptyDay(st *state, grid *Grid) bool {
	for _, target := range Days {
		if grid.Occupied(target) != 0 {
			continue
		}
		for _, donor := range Days {
			if donor == target || grid.Occupied(donor) <= 1 {
				continue
			}
			for slot := 0; slot < SlotsPerDay; slot++ {
				cell := grid[donor][slot]
				if cell.Empty() || !movable(grid, cell, target, slot) {
					continue
				}
				grid[target][slot] = cell
				grid[donor][slot] = Cell{}
				st.shiftOccupancy(cell, donor, target, slot)
				return true
			}
		}
	}
	return false
}

func movable(grid *Grid, cell Cell, target Day, slot int) bool {
	if !grid[target][slot].Empty() {
		return false
	}
	if cell.Session.IsLab() {
		return cell.BlockLength == 1 && !grid.HasLab(target)
	}
	if grid.HasTheory(target, cell.CourseCode) {
		return false
	}
	if slot > 0 && grid[target][slot-1].Session == SessionTheory {
		return false
	}
	if slot+1 < SlotsPerDay && grid[target][slot+1].Session == SessionTheory {
		return false
	}
	return true
}

// shiftOccupancy keeps the faculty table in step with a balancer move.
func (st *state) shiftOccupancy(cell Cell, from, to Day, slot int) {
	if !cell.HasFaculty() {
		return
	}
	occ := st.occupancy[cell.Faculty]
	if occ[from][slot].CourseCode == cell.CourseCode {
		occ[from][slot] = OccupancyCell{}
	}
	if occ[to][slot].Empty() {
		occ[to][slot] = OccupancyCell{CourseCode: cell.CourseCode, LabDay: cell.Session.IsLab()}
	}
}
