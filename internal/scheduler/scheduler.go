// Package scheduler assigns weekly theory, lab and lab-integrated sessions
// for a set of courses and batches onto a fixed Monday–Friday grid.
//
// The algorithm is a single greedy pass split into phases that share one run
// state: first-hour placement, lab blocks, theory spreading, the free-day
// enforcer and the day balancer. Nothing is revisited except by the last two
// phases, so the iteration order of courses, batches and faculty decides
// which sessions end up unscheduled. Input order is therefore part of the
// contract: courses and batches are processed in the order given, faculty in
// the order they are first resolved, days Monday to Friday and slots left to
// right.
package scheduler

import (
	"fmt"
	"strings"
)

// Reasons reported for sessions the run could not place.
const (
	ReasonBlock  = "block could not be scheduled as a single continuous block"
	ReasonTheory = "not enough days/slots for theory (spread required)"
)

// Course is a course to be timetabled for the requested batches.
type Course struct {
	Code     string   `json:"code" yaml:"code"`
	Credits  int      `json:"credits" yaml:"credits"`
	Category Category `json:"category" yaml:"category"`
	// Batch, when set, is the key used to match faculty links instead of the
	// batch being scheduled.
	Batch    string `json:"batch,omitempty" yaml:"batch"`
	Semester string `json:"semester,omitempty" yaml:"semester"`
}

// Input is everything one run needs.
type Input struct {
	Semester    string
	StudentType string
	Batches     []string
	Courses     []Course
	Links       []FacultyLink
}

// UnscheduledEntry describes a session the run gave up on. Faculty is empty
// when no faculty is linked to the course.
type UnscheduledEntry struct {
	CourseCode string `json:"courseCode"`
	Faculty    string `json:"faculty,omitempty"`
	Semester   string `json:"semester"`
	Batch      string `json:"batch"`
	Reason     string `json:"reason"`
}

// Stats summarises what each phase did.
type Stats struct {
	FirstHourPlaced   int `json:"firstHourPlaced"`
	LabBlocksPlaced   int `json:"labBlocksPlaced"`
	TheoryPlaced      int `json:"theoryPlaced"`
	ForcedClears      int `json:"forcedClears"`
	BalancerMoves     int `json:"balancerMoves"`
	ZeroDemandCourses int `json:"zeroDemandCourses"`
}

// Result is the outcome of a run.
type Result struct {
	Semester    string
	Batches     []string
	Grids       map[string]*Grid
	Unscheduled []UnscheduledEntry
	Stats       Stats
}

// Phase names one pass of the pipeline.
type Phase string

const (
	PhaseFirstHour Phase = "first_hour"
	PhaseLabs      Phase = "labs"
	PhaseTheory    Phase = "theory"
	PhaseFreeDay   Phase = "free_day"
	PhaseBalance   Phase = "balance"
)

// DefaultPhases is the production pipeline order.
var DefaultPhases = []Phase{PhaseFirstHour, PhaseLabs, PhaseTheory, PhaseFreeDay, PhaseBalance}

// ParsePhases validates a list of phase names.
func ParsePhases(names []string) ([]Phase, error) {
	phases := make([]Phase, 0, len(names))
	for _, name := range names {
		phase := Phase(strings.ToLower(strings.TrimSpace(name)))
		switch phase {
		case PhaseFirstHour, PhaseLabs, PhaseTheory, PhaseFreeDay, PhaseBalance:
			phases = append(phases, phase)
		default:
			return nil, fmt.Errorf("unknown scheduler phase %q", name)
		}
	}
	return phases, nil
}

// Options tune a Scheduler.
type Options struct {
	// Phases overrides DefaultPhases. The free-day enforcer and the day
	// balancer can undo each other's work, so tests pin the order here.
	Phases []Phase
}

// Scheduler runs the phase pipeline. It holds no state between runs and is
// safe for concurrent use.
type Scheduler struct {
	phases []Phase
}

// New builds a scheduler.
func New(opts Options) *Scheduler {
	phases := opts.Phases
	if len(phases) == 0 {
		phases = DefaultPhases
	}
	copied := make([]Phase, len(phases))
	copy(copied, phases)
	return &Scheduler{phases: copied}
}

// Phases returns the configured pipeline order.
func (s *Scheduler) Phases() []Phase {
	out := make([]Phase, len(s.phases))
	copy(out, s.phases)
	return out
}

// Run computes the timetable for the input.
func (s *Scheduler) Run(in Input) *Result {
	st := newState(in)
	for _, phase := range s.phases {
		st.apply(phase)
	}
	return &Result{
		Semester:    in.Semester,
		Batches:     st.batches,
		Grids:       st.grids,
		Unscheduled: st.unscheduled,
		Stats:       st.stats,
	}
}

// assignment is one (course, batch) pair with its resolved faculty and demand.
type assignment struct {
	course     Course
	batch      string
	faculty    string
	hours      Hours
	theoryLeft int
}

// state is owned by a single run and threaded through every phase.
type state struct {
	semester    string
	batches     []string
	grids       map[string]*Grid
	occupancy   map[string]*Occupancy
	faculty     []string
	assignments []*assignment
	unscheduled []UnscheduledEntry
	stats       Stats
}

func newState(in Input) *state {
	st := &state{
		semester:  in.Semester,
		batches:   uniqueBatches(in.Batches),
		grids:     make(map[string]*Grid),
		occupancy: make(map[string]*Occupancy),
	}
	for _, batch := range st.batches {
		st.grids[batch] = &Grid{}
	}

	for _, course := range in.Courses {
		hours := ResolveHours(course.Credits, course.Category)
		for _, batch := range st.batches {
			key := batch
			if course.Batch != "" {
				key = course.Batch
			}
			a := &assignment{
				course:     course,
				batch:      batch,
				faculty:    ResolveFaculty(in.Links, course.Code, key),
				hours:      hours,
				theoryLeft: hours.Theory,
			}
			if hours.Zero() {
				st.stats.ZeroDemandCourses++
			}
			st.assignments = append(st.assignments, a)
			if a.faculty != "" && st.occupancy[a.faculty] == nil {
				st.occupancy[a.faculty] = &Occupancy{}
				st.faculty = append(st.faculty, a.faculty)
			}
		}
	}
	return st
}

func uniqueBatches(batches []string) []string {
	seen := make(map[string]bool, len(batches))
	out := make([]string, 0, len(batches))
	for _, b := range batches {
		b = strings.TrimSpace(b)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}

func (st *state) apply(phase Phase) {
	switch phase {
	case PhaseFirstHour:
		allocateFirstHours(st)
	case PhaseLabs:
		allocateLabBlocks(st)
	case PhaseTheory:
		distributeTheory(st)
	case PhaseFreeDay:
		enforceFreeDays(st)
	case PhaseBalance:
		balanceDays(st)
	}
}

// facultyFree reports whether faculty can take the slot. Sessions without a
// faculty are never blocked by occupancy.
func (st *state) facultyFree(faculty string, day Day, slot int) bool {
	if faculty == "" {
		return true
	}
	return st.occupancy[faculty][day][slot].Empty()
}

func (st *state) book(faculty string, day Day, slot int, cell OccupancyCell) {
	if faculty == "" {
		return
	}
	st.occupancy[faculty][day][slot] = cell
}

func (st *state) reject(a *assignment, reason string) {
	semester := a.course.Semester
	if semester == "" {
		semester = st.semester
	}
	st.unscheduled = append(st.unscheduled, UnscheduledEntry{
		CourseCode: a.course.Code,
		Faculty:    a.faculty,
		Semester:   semester,
		Batch:      a.batch,
		Reason:     reason,
	})
}
