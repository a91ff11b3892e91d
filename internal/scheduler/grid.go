package scheduler

// Day indexes the teaching week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

const (
	// DaysPerWeek is the number of teaching days in the grid.
	DaysPerWeek = 5
	// SlotsPerDay is the number of teaching slots in a day. Lunch is not a slot.
	SlotsPerDay = 8
	// LunchBoundary is the first slot index after lunch.
	LunchBoundary = 4
)

var dayNames = [DaysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// SlotLabels are the wall-clock ranges of each slot index.
var SlotLabels = [SlotsPerDay]string{
	"08:30-09:20",
	"09:25-10:15",
	"10:30-11:20",
	"11:25-12:15",
	"01:10-02:00",
	"02:05-02:55",
	"03:00-03:50",
	"03:55-04:45",
}

// Days lists the week in scheduling order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

func (d Day) String() string {
	if d < 0 || int(d) >= DaysPerWeek {
		return "Unknown"
	}
	return dayNames[d]
}

// ParseDay maps a day name back to its index.
func ParseDay(name string) (Day, bool) {
	for i, n := range dayNames {
		if n == name {
			return Day(i), true
		}
	}
	return 0, false
}

// SlotIndex returns the index for a slot label.
func SlotIndex(label string) (int, bool) {
	for i, l := range SlotLabels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// SessionType is the kind of teaching a cell carries.
type SessionType string

const (
	SessionTheory        SessionType = "Theory"
	SessionLab           SessionType = "Lab"
	SessionLabIntegrated SessionType = "LabIntegrated"
)

// IsLab reports whether the session belongs to a lab block.
func (s SessionType) IsLab() bool {
	return s == SessionLab || s == SessionLabIntegrated
}

// SlotRole records which phase placed the cell.
type SlotRole string

const (
	RoleFirstHour     SlotRole = "FirstHour"
	RoleTheory        SlotRole = "Theory"
	RoleLab           SlotRole = "Lab"
	RoleLabIntegrated SlotRole = "LabIntegrated"
)

// Cell is one batch slot. The zero value is an empty slot.
type Cell struct {
	CourseCode  string      `json:"courseCode"`
	Faculty     string      `json:"faculty,omitempty"`
	Session     SessionType `json:"sessionType"`
	Role        SlotRole    `json:"slotRole"`
	BlockLength int         `json:"blockLength,omitempty"`
}

// Empty reports whether nothing is scheduled in the cell.
func (c Cell) Empty() bool {
	return c.CourseCode == ""
}

// HasFaculty reports whether a teaching faculty member was resolved for the cell.
func (c Cell) HasFaculty() bool {
	return c.Faculty != ""
}

// Grid is the weekly timetable of a single batch.
type Grid [DaysPerWeek][SlotsPerDay]Cell

// Occupied counts non-empty cells on a day.
func (g *Grid) Occupied(day Day) int {
	count := 0
	for _, cell := range g[day] {
		if !cell.Empty() {
			count++
		}
	}
	return count
}

// HasLab reports whether the day already carries a lab or lab-integrated cell.
func (g *Grid) HasLab(day Day) bool {
	for _, cell := range g[day] {
		if cell.Session.IsLab() {
			return true
		}
	}
	return false
}

// HasTheory reports whether the course already has a Theory cell on the day.
func (g *Grid) HasTheory(day Day, courseCode string) bool {
	for _, cell := range g[day] {
		if cell.Session == SessionTheory && cell.CourseCode == courseCode {
			return true
		}
	}
	return false
}

// followsTheory reports whether the slot directly before slot holds a Theory cell.
func (g *Grid) followsTheory(day Day, slot int) bool {
	return slot > 0 && g[day][slot-1].Session == SessionTheory
}

// Count returns the number of non-empty cells in the week.
func (g *Grid) Count() int {
	total := 0
	for _, d := range Days {
		total += g.Occupied(d)
	}
	return total
}

// OccupancyCell is a faculty slot. LabDay marks slots booked by a lab block.
type OccupancyCell struct {
	CourseCode string
	LabDay     bool
}

// Empty reports whether the faculty is free in the slot.
func (o OccupancyCell) Empty() bool {
	return o.CourseCode == ""
}

// Occupancy is the weekly booking table of one faculty member.
type Occupancy [DaysPerWeek][SlotsPerDay]OccupancyCell

// Occupied counts booked slots on a day.
func (o *Occupancy) Occupied(day Day) int {
	count := 0
	for _, cell := range o[day] {
		if !cell.Empty() {
			count++
		}
	}
	return count
}

// HasLabDay reports whether the faculty already runs a lab block that day.
func (o *Occupancy) HasLabDay(day Day) bool {
	for _, cell := range o[day] {
		if cell.LabDay {
			return true
		}
	}
	return false
}

// ClearDay frees every slot on the day.
func (o *Occupancy) ClearDay(day Day) {
	o[day] = [SlotsPerDay]OccupancyCell{}
}
