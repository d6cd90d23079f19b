package algorithm

import (
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// crossover copies the assignments of a random period A of the first parent into a random
// period B of the second offspring, and those of B of the second parent into A of the first
// offspring
func (current *run) crossover(firstParent, secondParent, firstOffspring, secondOffspring *model.Timetable) {
	periods := current.semester.Periods()
	a := periods[current.rng.IntN(len(periods))]
	b := periods[current.rng.IntN(len(periods))]
	current.copyPeriod(firstParent, a, secondOffspring, b)
	current.copyPeriod(secondParent, b, firstOffspring, a)
}

func (current *run) copyPeriod(source *model.Timetable, from model.Period, target *model.Timetable, to model.Period) {
	for _, assignment := range slices.Clone(source.Assignments(from)) {
		session := current.semester.Sessions[assignment.Session]
		if session.IsPreAssigned() {
			continue
		}
		if start, ok := current.destination(source, session, from, to); ok {
			current.copyAssignment(target, session, start, assignment.Room)
		}
	}
}

// destination returns the start period of the copied session in the target. The half of a
// double session copied into the destination period keeps its position, so a second half
// starts the session one period earlier.
func (current *run) destination(source *model.Timetable, session model.Session, from, to model.Period) (model.Period, bool) {
	if !session.DoubleSession {
		return to, true
	}
	placements := source.Placements(session.Index)
	if len(placements) != 2 || placements[0].Room != placements[1].Room ||
		placements[0].Period.Day != placements[1].Period.Day || placements[0].Period.Slot+1 != placements[1].Period.Slot {
		return model.Period{}, false
	}

	switch from {
	case placements[0].Period:
		return to, !current.semester.IsLastSlot(to)
	case placements[1].Period:
		if to.Slot == 1 {
			return model.Period{}, false
		}
		return to.Prev(), true
	default:
		return model.Period{}, false
	}
}

// copyAssignment inserts the session at start if the room is free and no hard constraint is
// violated. The session then exists twice; one of both instances is removed at random.
func (current *run) copyAssignment(target *model.Timetable, session model.Session, start model.Period, room int) {
	placer := current.placer
	if !placer.roomFree(target, session, start, room) || len(placer.violations(target, session, start, room)) > 0 {
		return
	}

	previous := target.Placements(session.Index)
	placer.place(target, session, start, room)
	if len(previous) == 0 {
		return
	}

	if current.rng.IntN(2) == 0 {
		for _, period := range placer.span(session, start) {
			target.Unassign(period, model.Assignment{Session: session.Index, Room: room})
		}
		return
	}
	lo.ForEach(previous, func(placement model.Placement, _ int) {
		target.Unassign(placement.Period, model.Assignment{Session: session.Index, Room: placement.Room})
	})
}
