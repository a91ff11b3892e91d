package scheduler

import "fmt"

// Violation kinds reported by Audit.
const (
	ViolationDoubleBooking   = "DOUBLE_BOOKING"
	ViolationLabContiguity   = "LAB_CONTIGUITY"
	ViolationDuplicateTheory = "DUPLICATE_THEORY"
	ViolationMultipleLabs    = "MULTIPLE_LABS"
	ViolationNoFreeDay       = "NO_FREE_DAY"
)

// Violation is a broken timetable invariant found after a run.
type Violation struct {
	Kind       string `json:"kind"`
	Batch      string `json:"batch,omitempty"`
	Faculty    string `json:"faculty,omitempty"`
	CourseCode string `json:"courseCode,omitempty"`
	Day        string `json:"day,omitempty"`
	Slot       string `json:"slot,omitempty"`
	Message    string `json:"message"`
}

// Audit checks the grids of a result against the timetable invariants. The
// pipeline itself never repairs what the balancer or the free-day enforcer
// break; callers decide what to do with the findings.
func Audit(res *Result) []Violation {
	if res == nil {
		return nil
	}
	var out []Violation
	out = append(out, auditDoubleBooking(res)...)
	for _, batch := range res.Batches {
		grid := res.Grids[batch]
		if grid == nil {
			continue
		}
		out = append(out, auditBatch(batch, grid)...)
	}
	out = append(out, auditFreeDays(res)...)
	return out
}

func auditDoubleBooking(res *Result) []Violation {
	var out []Violation
	for _, day := range Days {
		for slot := 0; slot < SlotsPerDay; slot++ {
			seen := make(map[string]string)
			for _, batch := range res.Batches {
				cell := res.Grids[batch][day][slot]
				if !cell.HasFaculty() {
					continue
				}
				if other, ok := seen[cell.Faculty]; ok {
					out = append(out, Violation{
						Kind:       ViolationDoubleBooking,
						Batch:      batch,
						Faculty:    cell.Faculty,
						CourseCode: cell.CourseCode,
						Day:        day.String(),
						Slot:       SlotLabels[slot],
						Message:    fmt.Sprintf("faculty %s already teaches batch %s in this slot", cell.Faculty, other),
					})
					continue
				}
				seen[cell.Faculty] = batch
			}
		}
	}
	return out
}

func auditBatch(batch string, grid *Grid) []Violation {
	var out []Violation
	for _, day := range Days {
		theory := make(map[string]int)
		labRuns := 0
		for slot := 0; slot < SlotsPerDay; slot++ {
			cell := grid[day][slot]
			if cell.Session == SessionTheory {
				theory[cell.CourseCode]++
				if theory[cell.CourseCode] == 2 {
					out = append(out, Violation{
						Kind:       ViolationDuplicateTheory,
						Batch:      batch,
						CourseCode: cell.CourseCode,
						Day:        day.String(),
						Message:    "course has more than one theory session on the same day",
					})
				}
				continue
			}
			if !cell.Session.IsLab() {
				continue
			}
			prev := Cell{}
			if slot > 0 {
				prev = grid[day][slot-1]
			}
			if prev.CourseCode == cell.CourseCode && prev.Session == cell.Session {
				continue
			}
			labRuns++
			end := slot
			for end < SlotsPerDay && grid[day][end].CourseCode == cell.CourseCode && grid[day][end].Session == cell.Session {
				end++
			}
			length := end - slot
			crosses := slot < LunchBoundary && end > LunchBoundary
			if length != cell.BlockLength || crosses {
				out = append(out, Violation{
					Kind:       ViolationLabContiguity,
					Batch:      batch,
					CourseCode: cell.CourseCode,
					Day:        day.String(),
					Slot:       SlotLabels[slot],
					Message:    fmt.Sprintf("lab run of %d slots, block length %d", length, cell.BlockLength),
				})
			}
		}
		if labRuns > 1 {
			out = append(out, Violation{
				Kind:    ViolationMultipleLabs,
				Batch:   batch,
				Day:     day.String(),
				Message: fmt.Sprintf("%d lab sessions on the same day", labRuns),
			})
		}
	}
	return out
}

func auditFreeDays(res *Result) []Violation {
	var order []string
	busy := make(map[string]*[DaysPerWeek]bool)
	for _, batch := range res.Batches {
		grid := res.Grids[batch]
		for _, day := range Days {
			for _, cell := range grid[day] {
				if !cell.HasFaculty() {
					continue
				}
				if busy[cell.Faculty] == nil {
					busy[cell.Faculty] = &[DaysPerWeek]bool{}
					order = append(order, cell.Faculty)
				}
				busy[cell.Faculty][day] = true
			}
		}
	}
	var out []Violation
	for _, faculty := range order {
		days := busy[faculty]
		free := false
		for _, d := range days {
			if !d {
				free = true
				break
			}
		}
		if !free {
			out = append(out, Violation{
				Kind:    ViolationNoFreeDay,
				Faculty: faculty,
				Message: "faculty teaches on every day of the week",
			})
		}
	}
	return out
}
