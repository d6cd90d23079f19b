package algorithm

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// StructureId identifies a neighborhood structure
type StructureId int

const (
	MoveAssignment  StructureId = iota // Move a session to another period
	SwapAssignments                    // Exchange the periods of two sessions of equal length
	ChangeRoom                         // Move a session to another room of the same period
	ShiftDay                           // Move a session to the same slot of another day
)

var neighborhoodStructures = []StructureId{MoveAssignment, SwapAssignments, ChangeRoom, ShiftDay}

func (id StructureId) String() string {
	switch id {
	case MoveAssignment:
		return "move"
	case SwapAssignments:
		return "swap"
	case ChangeRoom:
		return "room"
	case ShiftDay:
		return "day"
	default:
		return fmt.Sprintf("structure(%d)", int(id))
	}
}

// NeighborhoodStructure performs one randomized local move and reports whether it changed the
// timetable. A move never introduces hard violations: if the moved sessions cannot be
// re-inserted feasibly the timetable is restored.
type NeighborhoodStructure interface {
	Id() StructureId
	Apply(timetable *model.Timetable, rng *rand.Rand) bool
}

func NewNeighborhoodStructure(id StructureId, calculator *constraint.Calculator) NeighborhoodStructure {
	return newNeighborhoodStructure(id, newPlacer(calculator))
}

func newNeighborhoodStructure(id StructureId, placer *placer) NeighborhoodStructure {
	switch id {
	case MoveAssignment:
		return &moveAssignment{placer}
	case SwapAssignments:
		return &swapAssignments{placer}
	case ChangeRoom:
		return &changeRoom{placer}
	case ShiftDay:
		return &shiftDay{placer}
	default:
		panic(fmt.Sprintf("unknown neighborhood structure %v", int(id)))
	}
}

// Sessions whose period may change: placed internal sessions without pre-assignment
func (placer *placer) movableSessions(timetable *model.Timetable) []model.Session {
	return lo.Filter(placer.semester.Sessions, func(session model.Session, _ int) bool {
		return session.IsInternal() && !session.IsPreAssigned() && timetable.IsPlaced(session.Index)
	})
}

func pick[T any](rng *rand.Rand, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[rng.IntN(len(items))], true
}

// placeInRooms places the session at start in the first feasible room of the given order
func (placer *placer) placeInRooms(timetable *model.Timetable, session model.Session, start model.Period, rooms []int) bool {
	for _, room := range rooms {
		if placer.feasible(timetable, session, start, room) {
			placer.place(timetable, session, start, room)
			return true
		}
	}
	return false
}

type moveAssignment struct {
	placer *placer
}

func (structure *moveAssignment) Id() StructureId {
	return MoveAssignment
}

func (structure *moveAssignment) Apply(timetable *model.Timetable, rng *rand.Rand) bool {
	placer := structure.placer
	session, ok := pick(rng, placer.movableSessions(timetable))
	if !ok {
		return false
	}

	previous := timetable.RemoveSession(session.Index)
	starts := lo.Filter(placer.startPeriods(session), func(period model.Period, _ int) bool { return period != previous[0].Period })
	shuffle(rng, starts)
	if placer.placeAny(timetable, session, starts, rng) {
		return true
	}
	timetable.Restore(session.Index, previous)
	return false
}

type swapAssignments struct {
	placer *placer
}

func (structure *swapAssignments) Id() StructureId {
	return SwapAssignments
}

func (structure *swapAssignments) Apply(timetable *model.Timetable, rng *rand.Rand) bool {
	placer := structure.placer
	movable := placer.movableSessions(timetable)
	first, ok := pick(rng, movable)
	if !ok {
		return false
	}
	firstStart := timetable.Placements(first.Index)[0]
	second, ok := pick(rng, lo.Filter(movable, func(session model.Session, _ int) bool {
		return session.Length() == first.Length() && timetable.Placements(session.Index)[0].Period != firstStart.Period
	}))
	if !ok {
		return false
	}

	firstPrevious := timetable.RemoveSession(first.Index)
	secondPrevious := timetable.RemoveSession(second.Index)
	if placer.placeInRooms(timetable, first, secondPrevious[0].Period, structure.rooms(first, secondPrevious[0].Room, rng)) &&
		placer.placeInRooms(timetable, second, firstPrevious[0].Period, structure.rooms(second, firstPrevious[0].Room, rng)) {
		return true
	}

	timetable.RemoveSession(first.Index)
	timetable.RemoveSession(second.Index)
	timetable.Restore(first.Index, firstPrevious)
	timetable.Restore(second.Index, secondPrevious)
	return false
}

// Rooms of the session in random order, the preferred one first if it can host the session
func (structure *swapAssignments) rooms(session model.Session, preferred int, rng *rand.Rand) []int {
	rooms := slices.Clone(structure.placer.rooms[session.Index])
	shuffle(rng, rooms)
	if index := slices.Index(rooms, preferred); index > 0 {
		rooms[0], rooms[index] = rooms[index], rooms[0]
	}
	return rooms
}

type changeRoom struct {
	placer *placer
}

func (structure *changeRoom) Id() StructureId {
	return ChangeRoom
}

func (structure *changeRoom) Apply(timetable *model.Timetable, rng *rand.Rand) bool {
	placer := structure.placer
	session, ok := pick(rng, lo.Filter(placer.semester.Sessions, func(session model.Session, _ int) bool {
		return session.IsInternal() && len(placer.rooms[session.Index]) > 1 && timetable.IsPlaced(session.Index)
	}))
	if !ok {
		return false
	}

	previous := timetable.RemoveSession(session.Index)
	rooms := lo.Without(placer.rooms[session.Index], previous[0].Room)
	shuffle(rng, rooms)
	if placer.placeInRooms(timetable, session, previous[0].Period, rooms) {
		return true
	}
	timetable.Restore(session.Index, previous)
	return false
}

type shiftDay struct {
	placer *placer
}

func (structure *shiftDay) Id() StructureId {
	return ShiftDay
}

func (structure *shiftDay) Apply(timetable *model.Timetable, rng *rand.Rand) bool {
	placer := structure.placer
	if placer.semester.DaysPerWeek < 2 {
		return false
	}
	session, ok := pick(rng, placer.movableSessions(timetable))
	if !ok {
		return false
	}

	previous := timetable.RemoveSession(session.Index)
	start := previous[0].Period
	starts := make([]model.Period, 0, placer.semester.DaysPerWeek-1)
	for day := 1; day <= placer.semester.DaysPerWeek; day++ {
		if day != start.Day {
			starts = append(starts, model.NewPeriod(day, start.Slot))
		}
	}
	shuffle(rng, starts)
	if placer.placeAny(timetable, session, starts, rng) {
		return true
	}
	timetable.Restore(session.Index, previous)
	return false
}
