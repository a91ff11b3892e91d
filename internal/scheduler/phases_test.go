package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func put(st *state, batch string, day Day, slot int, cell Cell) {
	st.grids[batch][day][slot] = cell
	if cell.HasFaculty() {
		st.occupancy[cell.Faculty][day][slot] = OccupancyCell{CourseCode: cell.CourseCode, LabDay: cell.Session.IsLab()}
	}
}

func theoryCell(code, faculty string) Cell {
	return Cell{CourseCode: code, Faculty: faculty, Session: SessionTheory, Role: RoleTheory}
}

func TestFirstHourOnePerFaculty(t *testing.T) {
	res := New(Options{Phases: []Phase{PhaseFirstHour}}).Run(Input{
		Semester: "S1",
		Batches:  []string{"A"},
		Courses: []Course{
			{Code: "C1", Credits: 2, Category: CategoryTheory},
			{Code: "C2", Credits: 2, Category: CategoryTheory},
			{Code: "L1", Credits: 2, Category: CategoryLab},
			{Code: "C3", Credits: 3, Category: CategoryTheory},
		},
		Links: []FacultyLink{
			{Faculty: "F1", CourseCode: "C1"},
			{Faculty: "F2", CourseCode: "C2"},
			{Faculty: "F3", CourseCode: "L1"},
			{Faculty: "F1", CourseCode: "C3"},
		},
	})

	grid := res.Grids["A"]
	assert.Equal(t, Cell{CourseCode: "C1", Faculty: "F1", Session: SessionTheory, Role: RoleFirstHour}, grid[Monday][0])
	assert.Equal(t, Cell{CourseCode: "C2", Faculty: "F2", Session: SessionTheory, Role: RoleFirstHour}, grid[Tuesday][0])
	assert.Equal(t, 2, grid.Count())
	assert.Equal(t, 2, res.Stats.FirstHourPlaced)
}

func TestLabBlocksOnePerDayAndAbandonWhole(t *testing.T) {
	var courses []Course
	var links []FacultyLink
	for i := 1; i <= 6; i++ {
		code := fmt.Sprintf("L%d", i)
		courses = append(courses, Course{Code: code, Credits: 2, Category: CategoryLab})
		links = append(links, FacultyLink{Faculty: fmt.Sprintf("F%d", i), CourseCode: code})
	}

	res := New(Options{Phases: []Phase{PhaseLabs}}).Run(Input{Semester: "S1", Batches: []string{"A"}, Courses: courses, Links: links})

	grid := res.Grids["A"]
	for i, day := range Days {
		code := fmt.Sprintf("L%d", i+1)
		assert.Equal(t, code, grid[day][0].CourseCode)
		assert.Equal(t, code, grid[day][1].CourseCode)
		assert.Equal(t, SessionLab, grid[day][0].Session)
		assert.Equal(t, 2, grid[day][0].BlockLength)
		assert.True(t, grid[day][2].Empty())
	}
	assert.Equal(t, 5, res.Stats.LabBlocksPlaced)
	require.Len(t, res.Unscheduled, 1)
	assert.Equal(t, UnscheduledEntry{CourseCode: "L6", Faculty: "F6", Semester: "S1", Batch: "A", Reason: ReasonBlock}, res.Unscheduled[0])
}

func TestLabBlockStaysOnOneSideOfLunch(t *testing.T) {
	res := New(Options{Phases: []Phase{PhaseFirstHour, PhaseLabs}}).Run(Input{
		Semester: "S1",
		Batches:  []string{"A"},
		Courses: []Course{
			{Code: "T1", Credits: 1, Category: CategoryTheory},
			{Code: "LI1", Credits: 5, Category: CategoryLabIntegrated},
		},
		Links: []FacultyLink{{Faculty: "F1", CourseCode: "T1"}},
	})

	grid := res.Grids["A"]
	assert.Equal(t, "T1", grid[Monday][0].CourseCode)
	for slot := 1; slot < LunchBoundary; slot++ {
		assert.True(t, grid[Monday][slot].Empty(), "slot %d", slot)
	}
	for slot := LunchBoundary; slot < SlotsPerDay; slot++ {
		cell := grid[Monday][slot]
		assert.Equal(t, "LI1", cell.CourseCode)
		assert.Equal(t, SessionLabIntegrated, cell.Session)
		assert.Equal(t, RoleLabIntegrated, cell.Role)
		assert.Equal(t, 4, cell.BlockLength)
		assert.False(t, cell.HasFaculty())
	}
	assert.Empty(t, res.Unscheduled)
}

func TestLabBlockRespectsFacultyLabDay(t *testing.T) {
	res := New(Options{Phases: []Phase{PhaseLabs}}).Run(Input{
		Semester: "S1",
		Batches:  []string{"A", "B"},
		Courses:  []Course{{Code: "L1", Credits: 2, Category: CategoryLab}},
		Links:    []FacultyLink{{Faculty: "F1", CourseCode: "L1"}},
	})

	assert.Equal(t, "L1", res.Grids["A"][Monday][0].CourseCode)
	assert.Equal(t, 0, res.Grids["B"].Occupied(Monday))
	assert.Equal(t, "L1", res.Grids["B"][Tuesday][0].CourseCode)
	assert.Equal(t, "L1", res.Grids["B"][Tuesday][1].CourseCode)
}

func TestBlockStarts(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6}, blockStarts(2))
	assert.Equal(t, []int{0, 1, 4, 5}, blockStarts(3))
	assert.Equal(t, []int{0, 4}, blockStarts(4))
}

func TestTheoryAllOrNothing(t *testing.T) {
	var courses []Course
	for i := 1; i <= 6; i++ {
		courses = append(courses, Course{Code: fmt.Sprintf("C%d", i), Credits: 4, Category: CategoryTheory})
	}

	res := New(Options{Phases: []Phase{PhaseTheory}}).Run(Input{Semester: "S1", Batches: []string{"A"}, Courses: courses})

	grid := res.Grids["A"]
	for i, day := range []Day{Monday, Tuesday, Wednesday, Thursday} {
		for c := 0; c < 4; c++ {
			assert.Equal(t, fmt.Sprintf("C%d", c+1), grid[day][c*2].CourseCode, "day %d", i)
		}
	}
	assert.Equal(t, 0, grid.Occupied(Friday))
	require.Len(t, res.Unscheduled, 2)
	for i, entry := range res.Unscheduled {
		assert.Equal(t, fmt.Sprintf("C%d", i+5), entry.CourseCode)
		assert.Equal(t, ReasonTheory, entry.Reason)
		assert.Empty(t, entry.Faculty)
	}
	assert.Equal(t, 16, res.Stats.TheoryPlaced)

	for _, day := range Days {
		for slot := 1; slot < SlotsPerDay; slot++ {
			bothTheory := grid[day][slot].Session == SessionTheory && grid[day][slot-1].Session == SessionTheory
			assert.False(t, bothTheory, "adjacent theory on %s slot %d", day, slot)
		}
	}
}

func TestTheoryCrossBatchGuard(t *testing.T) {
	st := newState(Input{
		Semester: "S1",
		Batches:  []string{"A", "B"},
		Courses:  []Course{{Code: "X", Credits: 1, Category: CategoryTheory}},
		Links:    []FacultyLink{{Faculty: "F1", CourseCode: "X"}},
	})
	// Theory cell without an occupancy booking: only the guard can see it.
	st.grids["B"][Monday][0] = theoryCell("Y", "F1")

	distributeTheory(st)

	assert.Equal(t, "X", st.grids["A"][Monday][1].CourseCode)
	assert.True(t, st.grids["A"][Monday][0].Empty())
	assert.Equal(t, "X", st.grids["B"][Monday][2].CourseCode)
	assert.Empty(t, st.unscheduled)
}

func TestEnforceFreeDaysClearsLeastLoadedDay(t *testing.T) {
	st := newState(Input{
		Semester: "S1",
		Batches:  []string{"A", "B"},
		Courses: []Course{
			{Code: "C1", Credits: 1, Category: CategoryTheory},
			{Code: "C2", Credits: 1, Category: CategoryTheory},
		},
		Links: []FacultyLink{
			{Faculty: "F1", CourseCode: "C1"},
			{Faculty: "F2", CourseCode: "C2"},
		},
	})
	put(st, "A", Monday, 0, theoryCell("C1", "F1"))
	put(st, "A", Monday, 2, theoryCell("C1", "F1"))
	put(st, "B", Tuesday, 3, theoryCell("C1", "F1"))
	put(st, "A", Tuesday, 4, theoryCell("C2", "F2"))
	put(st, "A", Wednesday, 0, theoryCell("C1", "F1"))
	put(st, "A", Wednesday, 2, theoryCell("C1", "F1"))
	put(st, "A", Thursday, 0, theoryCell("C1", "F1"))
	put(st, "A", Friday, 0, theoryCell("C1", "F1"))
	put(st, "A", Friday, 2, theoryCell("C1", "F1"))

	enforceFreeDays(st)

	assert.True(t, st.grids["B"][Tuesday][3].Empty())
	assert.Equal(t, "C2", st.grids["A"][Tuesday][4].CourseCode)
	assert.Equal(t, "C1", st.grids["A"][Thursday][0].CourseCode)
	assert.Equal(t, 0, st.occupancy["F1"].Occupied(Tuesday))
	assert.Equal(t, 1, st.occupancy["F2"].Occupied(Tuesday))
	assert.Equal(t, 1, st.stats.ForcedClears)
}

func TestEnforceFreeDaysLeavesFreeFacultyAlone(t *testing.T) {
	st := newState(Input{
		Semester: "S1",
		Batches:  []string{"A"},
		Courses:  []Course{{Code: "C1", Credits: 1, Category: CategoryTheory}},
		Links:    []FacultyLink{{Faculty: "F1", CourseCode: "C1"}},
	})
	for _, day := range []Day{Monday, Tuesday, Wednesday, Thursday} {
		put(st, "A", day, 0, theoryCell("C1", "F1"))
	}

	enforceFreeDays(st)

	assert.Equal(t, 4, st.grids["A"].Count())
	assert.Zero(t, st.stats.ForcedClears)
}

func TestBalanceDaysFillsEmptyDays(t *testing.T) {
	st := newState(Input{
		Semester: "S1",
		Batches:  []string{"A"},
		Courses:  []Course{{Code: "C1", Credits: 1, Category: CategoryTheory}},
		Links:    []FacultyLink{{Faculty: "F1", CourseCode: "C1"}},
	})
	put(st, "A", Monday, 0, theoryCell("C1", "F1"))
	put(st, "A", Monday, 2, theoryCell("C2", ""))
	put(st, "A", Monday, 4, theoryCell("C3", ""))

	balanceDays(st)

	grid := st.grids["A"]
	assert.Equal(t, "C1", grid[Tuesday][0].CourseCode)
	assert.Equal(t, "C2", grid[Wednesday][2].CourseCode)
	assert.Equal(t, "C3", grid[Monday][4].CourseCode)
	assert.Equal(t, 1, grid.Occupied(Monday))
	assert.Equal(t, 0, grid.Occupied(Thursday))
	assert.Equal(t, 0, grid.Occupied(Friday))
	assert.Equal(t, 2, st.stats.BalancerMoves)

	occ := st.occupancy["F1"]
	assert.True(t, occ[Monday][0].Empty())
	assert.Equal(t, "C1", occ[Tuesday][0].CourseCode)
}

func TestBalanceDaysNeverSplitsBlocks(t *testing.T) {
	st := newState(Input{Semester: "S1", Batches: []string{"A"}})
	block := Cell{CourseCode: "L1", Session: SessionLab, Role: RoleLab, BlockLength: 2}
	put(st, "A", Monday, 0, block)
	put(st, "A", Monday, 1, block)

	balanceDays(st)

	assert.Equal(t, 2, st.grids["A"].Occupied(Monday))
	assert.Zero(t, st.stats.BalancerMoves)
}

func TestBalanceDaysMovesSingleSlotLab(t *testing.T) {
	st := newState(Input{Semester: "S1", Batches: []string{"A"}})
	put(st, "A", Monday, 0, Cell{CourseCode: "L1", Session: SessionLab, Role: RoleLab, BlockLength: 1})
	put(st, "A", Monday, 5, theoryCell("C1", ""))

	balanceDays(st)

	grid := st.grids["A"]
	assert.Equal(t, "L1", grid[Tuesday][0].CourseCode)
	assert.Equal(t, "C1", grid[Monday][5].CourseCode)
	assert.Equal(t, 1, st.stats.BalancerMoves)
}

func TestMovableTheoryRules(t *testing.T) {
	grid := &Grid{}
	grid[Tuesday][3] = theoryCell("C9", "")
	grid[Tuesday][6] = theoryCell("C1", "")

	assert.False(t, movable(grid, theoryCell("C2", ""), Tuesday, 2), "adjacent before")
	assert.False(t, movable(grid, theoryCell("C2", ""), Tuesday, 4), "adjacent after")
	assert.False(t, movable(grid, theoryCell("C1", ""), Tuesday, 0), "same course already on day")
	assert.False(t, movable(grid, theoryCell("C2", ""), Tuesday, 3), "target occupied")
	assert.True(t, movable(grid, theoryCell("C2", ""), Tuesday, 0))
}
