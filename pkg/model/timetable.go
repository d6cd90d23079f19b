package model

import (
	"log"
	"slices"
)

// Assignment places a session in a room; the period is given by the grid cell holding it
type Assignment struct {
	Session int
	Room    int
}

// Placement is an assignment together with its period
type Placement struct {
	Period Period
	Room   int
}

// NotEvaluated is the hard violation count of a timetable that has not been scored yet
const NotEvaluated = -1

// Timetable is a candidate solution: a days x slots grid of assignment sets
type Timetable struct {
	days       int
	slots      int
	grid       [][][]Assignment
	placements map[int][]Placement // Placements per session, ordered by period

	penalty        float64
	hardViolations int
}

func NewTimetable(days, slots int) *Timetable {
	if days < MinDaysPerWeek || days > MaxDaysPerWeek || slots < MinTimeSlotsPerDay || slots > MaxTimeSlotsPerDay {
		log.Panicf("invalid timetable shape: %v days, %v slots", days, slots)
	}

	grid := make([][][]Assignment, days)
	for day := range grid {
		grid[day] = make([][]Assignment, slots)
	}

	return &Timetable{
		days:           days,
		slots:          slots,
		grid:           grid,
		placements:     make(map[int][]Placement),
		hardViolations: NotEvaluated,
	}
}

func (timetable *Timetable) Days() int {
	return timetable.days
}

func (timetable *Timetable) Slots() int {
	return timetable.slots
}

func (timetable *Timetable) Contains(period Period) bool {
	return period.Day >= 1 && period.Day <= timetable.days && period.Slot >= 1 && period.Slot <= timetable.slots
}

func (timetable *Timetable) mustContain(period Period) {
	if !timetable.Contains(period) {
		log.Panicf("period %v is outside of a %vx%v timetable", period, timetable.days, timetable.slots)
	}
}

// Periods returns all periods of the grid ordered by (day, slot)
func (timetable *Timetable) Periods() []Period {
	periods := make([]Period, 0, timetable.days*timetable.slots)
	for day := 1; day <= timetable.days; day++ {
		for slot := 1; slot <= timetable.slots; slot++ {
			periods = append(periods, NewPeriod(day, slot))
		}
	}
	return periods
}

// Assignments returns the assignments of the period. The returned slice is owned by the
// timetable and must not be modified.
func (timetable *Timetable) Assignments(period Period) []Assignment {
	timetable.mustContain(period)
	return timetable.grid[period.Day-1][period.Slot-1]
}

// Assign adds the assignment to the period. Adding the same (session, room) pair twice to a
// period breaks the grid's consistency and panics.
func (timetable *Timetable) Assign(period Period, assignment Assignment) {
	timetable.mustContain(period)
	cell := &timetable.grid[period.Day-1][period.Slot-1]
	if slices.Contains(*cell, assignment) {
		log.Panicf("session %v is already assigned to room %v in period %v", assignment.Session, assignment.Room, period)
	}
	*cell = append(*cell, assignment)

	placements := append(timetable.placements[assignment.Session], Placement{Period: period, Room: assignment.Room})
	slices.SortFunc(placements, func(a, b Placement) int { return a.Period.Compare(b.Period) })
	timetable.placements[assignment.Session] = placements
	timetable.invalidate()
}

// Unassign removes the assignment from the period and reports whether it was present
func (timetable *Timetable) Unassign(period Period, assignment Assignment) bool {
	timetable.mustContain(period)
	cell := &timetable.grid[period.Day-1][period.Slot-1]
	index := slices.Index(*cell, assignment)
	if index < 0 {
		return false
	}
	*cell = slices.Delete(*cell, index, index+1)

	placements := timetable.placements[assignment.Session]
	placementIndex := slices.Index(placements, Placement{Period: period, Room: assignment.Room})
	placements = slices.Delete(placements, placementIndex, placementIndex+1)
	if len(placements) == 0 {
		delete(timetable.placements, assignment.Session)
	} else {
		timetable.placements[assignment.Session] = placements
	}
	timetable.invalidate()
	return true
}

// Placements returns the placements of the session ordered by period
func (timetable *Timetable) Placements(session int) []Placement {
	return slices.Clone(timetable.placements[session])
}

func (timetable *Timetable) IsPlaced(session int) bool {
	return len(timetable.placements[session]) > 0
}

// RemoveSession removes every placement of the session and returns them
func (timetable *Timetable) RemoveSession(session int) []Placement {
	placements := timetable.Placements(session)
	for _, placement := range placements {
		timetable.Unassign(placement.Period, Assignment{Session: session, Room: placement.Room})
	}
	return placements
}

// Restore re-inserts placements previously returned by RemoveSession
func (timetable *Timetable) Restore(session int, placements []Placement) {
	for _, placement := range placements {
		timetable.Assign(placement.Period, Assignment{Session: session, Room: placement.Room})
	}
}

// RoomFree reports whether no assignment of the period uses the room
func (timetable *Timetable) RoomFree(period Period, room int) bool {
	for _, assignment := range timetable.Assignments(period) {
		if assignment.Room == room {
			return false
		}
	}
	return true
}

// SessionAt reports whether the session has an assignment in the period
func (timetable *Timetable) SessionAt(period Period, session int) bool {
	for _, assignment := range timetable.Assignments(period) {
		if assignment.Session == session {
			return true
		}
	}
	return false
}

// Usage is the number of assignments of the period
func (timetable *Timetable) Usage(period Period) int {
	return len(timetable.Assignments(period))
}

// Size is the total number of assignments
func (timetable *Timetable) Size() int {
	size := 0
	for _, placements := range timetable.placements {
		size += len(placements)
	}
	return size
}

// PlacedSessions returns the indices of all sessions with at least one placement, sorted
func (timetable *Timetable) PlacedSessions() []int {
	sessions := make([]int, 0, len(timetable.placements))
	for session := range timetable.placements {
		sessions = append(sessions, session)
	}
	slices.Sort(sessions)
	return sessions
}

// ForEach visits every assignment ordered by period
func (timetable *Timetable) ForEach(visit func(period Period, assignment Assignment)) {
	for _, period := range timetable.Periods() {
		for _, assignment := range timetable.Assignments(period) {
			visit(period, assignment)
		}
	}
}

// Clone returns a deep copy including the cached scores
func (timetable *Timetable) Clone() *Timetable {
	clone := &Timetable{
		days:           timetable.days,
		slots:          timetable.slots,
		grid:           make([][][]Assignment, timetable.days),
		placements:     make(map[int][]Placement, len(timetable.placements)),
		penalty:        timetable.penalty,
		hardViolations: timetable.hardViolations,
	}
	for day := range timetable.grid {
		clone.grid[day] = make([][]Assignment, timetable.slots)
		for slot := range timetable.grid[day] {
			clone.grid[day][slot] = slices.Clone(timetable.grid[day][slot])
		}
	}
	for session, placements := range timetable.placements {
		clone.placements[session] = slices.Clone(placements)
	}
	return clone
}

// Equal compares the assignments of both timetables regardless of their order within a period
func (timetable *Timetable) Equal(other *Timetable) bool {
	if timetable.days != other.days || timetable.slots != other.slots || len(timetable.placements) != len(other.placements) {
		return false
	}
	for session, placements := range timetable.placements {
		if !slices.Equal(placements, other.placements[session]) {
			return false
		}
	}
	return true
}

func (timetable *Timetable) Penalty() float64 {
	return timetable.penalty
}

func (timetable *Timetable) HardViolations() int {
	return timetable.hardViolations
}

// SetScore caches the result of an evaluation
func (timetable *Timetable) SetScore(hardViolations int, penalty float64) {
	timetable.hardViolations = hardViolations
	timetable.penalty = penalty
}

func (timetable *Timetable) Evaluated() bool {
	return timetable.hardViolations != NotEvaluated
}

func (timetable *Timetable) invalidate() {
	timetable.hardViolations = NotEvaluated
}
