package algorithm

import (
	"math/rand/v2"
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// placer inserts sessions into timetables without introducing hard violations
type placer struct {
	semester   *model.Semester
	calculator *constraint.Calculator
	rooms      [][]int // Rooms able to host each session
}

func newPlacer(calculator *constraint.Calculator) *placer {
	semester := calculator.Matrices().Semester()
	rooms := make([][]int, len(semester.Sessions))
	for _, session := range semester.Sessions {
		switch session.Kind {
		case model.InternalSessionKind:
			rooms[session.Index] = model.FeasibleRooms(semester, session)
		case model.ExternalSessionKind:
			rooms[session.Index] = []int{session.External.Room}
		}
	}

	return &placer{
		semester:   semester,
		calculator: calculator,
		rooms:      rooms,
	}
}

// span returns the periods the session occupies when starting at the given period, or nil if
// it does not fit into the rest of the day
func (placer *placer) span(session model.Session, start model.Period) []model.Period {
	if !session.DoubleSession {
		return []model.Period{start}
	}
	if placer.semester.IsLastSlot(start) {
		return nil
	}
	return []model.Period{start, start.Next()}
}

// startPeriods returns every period the session may start in, ordered by (day, slot)
func (placer *placer) startPeriods(session model.Session) []model.Period {
	if session.IsPreAssigned() {
		return []model.Period{*session.PreAssignment}
	}
	return lo.Filter(placer.semester.Periods(), func(period model.Period, _ int) bool {
		return !session.DoubleSession || !placer.semester.IsLastSlot(period)
	})
}

// violations returns the hard constraints the session would violate in every period of its span
func (placer *placer) violations(timetable *model.Timetable, session model.Session, start model.Period, room int) []constraint.HardConstraint {
	assignment := model.Assignment{Session: session.Index, Room: room}
	return lo.FlatMap(placer.span(session, start), func(period model.Period, _ int) []constraint.HardConstraint {
		return placer.calculator.AssignmentHardViolations(timetable, period, assignment)
	})
}

func (placer *placer) roomFree(timetable *model.Timetable, session model.Session, start model.Period, room int) bool {
	periods := placer.span(session, start)
	return periods != nil && lo.EveryBy(periods, func(period model.Period) bool { return timetable.RoomFree(period, room) })
}

func (placer *placer) feasible(timetable *model.Timetable, session model.Session, start model.Period, room int) bool {
	return placer.roomFree(timetable, session, start, room) && len(placer.violations(timetable, session, start, room)) == 0
}

func (placer *placer) place(timetable *model.Timetable, session model.Session, start model.Period, room int) {
	for _, period := range placer.span(session, start) {
		timetable.Assign(period, model.Assignment{Session: session.Index, Room: room})
	}
}

// placeAny commits the first feasible combination of the start periods (in the given order)
// and the session's rooms (in random order)
func (placer *placer) placeAny(timetable *model.Timetable, session model.Session, starts []model.Period, rng *rand.Rand) bool {
	rooms := slices.Clone(placer.rooms[session.Index])
	for _, start := range starts {
		shuffle(rng, rooms)
		for _, room := range rooms {
			if placer.feasible(timetable, session, start, room) {
				placer.place(timetable, session, start, room)
				return true
			}
		}
	}
	return false
}

func shuffle[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
