package algorithm

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SaturationDegree builds feasible timetables by coloring the session conflict graph with
// periods, always placing the session whose conflicting neighbors already use the most
// distinct periods next
type SaturationDegree struct {
	semester   *model.Semester
	calculator *constraint.Calculator
	placer     *placer
	rng        *rand.Rand
	cancelled  func() bool
	logger     *zap.Logger

	neighbors [][]int // Conflicting sessions of each session
	conflicts []int   // Tie breaker: total conflict count of each session
}

func NewSaturationDegree(calculator *constraint.Calculator, rng *rand.Rand, cancelled func() bool, logger *zap.Logger) *SaturationDegree {
	semester := calculator.Matrices().Semester()
	initializer := &SaturationDegree{
		semester:   semester,
		calculator: calculator,
		placer:     newPlacer(calculator),
		rng:        rng,
		cancelled:  cancelled,
		logger:     logger,
	}
	initializer.neighbors, initializer.conflicts = initializer.conflictGraph()
	return initializer
}

func (initializer *SaturationDegree) conflictGraph() ([][]int, []int) {
	semester := initializer.semester
	matrices := initializer.calculator.Matrices()
	neighbors := make([][]int, len(semester.Sessions))
	conflicts := make([]int, len(semester.Sessions))

	for _, session := range semester.Sessions {
		for _, other := range semester.Sessions {
			conflict := matrices.Sessions(session.Index, other.Index)
			if conflict.Conflicting() {
				neighbors[session.Index] = append(neighbors[session.Index], other.Index)
			}
			conflicts[session.Index] += conflict.Weight()
		}
		if session.IsInternal() {
			conflicts[session.Index] += len(semester.InternalRooms()) - len(initializer.placer.rooms[session.Index])
		}
		conflicts[session.Index] += lo.CountBy(semester.Periods(), func(period model.Period) bool {
			return matrices.Teacher(session.Teacher, period).Unavailable
		})
		if session.DoubleSession {
			conflicts[session.Index] *= 2
		}
	}
	return neighbors, conflicts
}

// Generate returns count feasible timetables, or the ones completed before cancellation. An
// error means some session has no feasible room or the pre-assignments of the semester cannot
// be honored.
func (initializer *SaturationDegree) Generate(count int) ([]*model.Timetable, error) {
	for _, session := range initializer.semester.InternalSessions() {
		if len(initializer.placer.rooms[session.Index]) == 0 {
			return nil, model.NoFeasibleRoomError{Session: session.Id}
		}
	}

	timetables := make([]*model.Timetable, 0, count)
	discarded := 0
	for len(timetables) < count && !initializer.cancelled() {
		timetable, err := initializer.candidate()
		if err != nil {
			return timetables, err
		}
		if timetable == nil {
			discarded++
			continue
		}
		initializer.calculator.Score(timetable)
		timetables = append(timetables, timetable)
	}

	initializer.logger.Debug("initial timetables generated",
		zap.Int("timetables", len(timetables)),
		zap.Int("discarded", discarded),
	)
	return timetables, nil
}

// candidate builds one timetable; nil means it was discarded or cancelled
func (initializer *SaturationDegree) candidate() (*model.Timetable, error) {
	semester := initializer.semester
	placer := initializer.placer
	timetable := semester.NewTimetable()

	//** External sessions
	for _, session := range semester.ExternalSessions() {
		start := *session.PreAssignment
		if violations := placer.violations(timetable, session, start, session.External.Room); len(violations) > 0 {
			return nil, fmt.Errorf("cannot place external session %q: violates %v", session.Id, violations)
		}
		placer.place(timetable, session, start, session.External.Room)
	}

	//** Pre-assigned internal sessions
	for _, session := range semester.InternalSessions() {
		if !session.IsPreAssigned() {
			continue
		}
		placed, err := initializer.placePreAssigned(timetable, session)
		if err != nil {
			return nil, err
		}
		if !placed {
			initializer.logger.Debug("candidate discarded", zap.String("session", session.Id), zap.String("reason", "pre-assigned rooms taken"))
			return nil, nil
		}
	}

	//** Remaining sessions by saturation degree
	unassigned := lo.Filter(semester.InternalSessions(), func(session model.Session, _ int) bool { return !session.IsPreAssigned() })
	for len(unassigned) > 0 {
		if initializer.cancelled() {
			return nil, nil
		}
		next := initializer.mostSaturated(timetable, unassigned)
		session := unassigned[next]
		if !placer.placeAny(timetable, session, initializer.periodOrder(timetable, session), initializer.rng) {
			initializer.logger.Debug("candidate discarded", zap.String("session", session.Id), zap.String("reason", "no feasible period"))
			return nil, nil
		}
		unassigned = slices.Delete(unassigned, next, next+1)
	}
	return timetable, nil
}

// placePreAssigned puts the session into a random free feasible room of its period. It
// reports false if every such room is taken, and fails if the period itself is infeasible.
func (initializer *SaturationDegree) placePreAssigned(timetable *model.Timetable, session model.Session) (bool, error) {
	placer := initializer.placer
	rooms := slices.Clone(placer.rooms[session.Index])
	shuffle(initializer.rng, rooms)

	start := *session.PreAssignment
	for _, room := range rooms {
		if !placer.roomFree(timetable, session, start, room) {
			continue
		}
		if violations := placer.violations(timetable, session, start, room); len(violations) > 0 {
			return false, fmt.Errorf("cannot place pre-assigned session %q: violates %v", session.Id, violations)
		}
		placer.place(timetable, session, start, room)
		return true, nil
	}
	return false, nil
}

// mostSaturated returns the position of the unassigned session with the highest saturation
// degree, breaking ties by conflict count and then by order
func (initializer *SaturationDegree) mostSaturated(timetable *model.Timetable, unassigned []model.Session) int {
	best, bestSaturation := 0, -1
	for i, session := range unassigned {
		saturation := initializer.saturation(timetable, session)
		if saturation > bestSaturation ||
			(saturation == bestSaturation && initializer.conflicts[session.Index] > initializer.conflicts[unassigned[best].Index]) {
			best, bestSaturation = i, saturation
		}
	}
	return best
}

// Number of distinct periods used by the placed conflicting neighbors of the session
func (initializer *SaturationDegree) saturation(timetable *model.Timetable, session model.Session) int {
	periods := make(map[model.Period]bool)
	for _, neighbor := range initializer.neighbors[session.Index] {
		for _, placement := range timetable.Placements(neighbor) {
			periods[placement.Period] = true
		}
	}
	return len(periods)
}

// periodOrder returns the start periods of the session: used periods by ascending usage, then
// free ones, shuffled within each usage
func (initializer *SaturationDegree) periodOrder(timetable *model.Timetable, session model.Session) []model.Period {
	periods := initializer.placer.startPeriods(session)
	shuffle(initializer.rng, periods)
	tier := func(period model.Period) int {
		if usage := timetable.Usage(period); usage > 0 {
			return usage
		}
		return len(initializer.semester.Sessions) + 1
	}
	slices.SortStableFunc(periods, func(a, b model.Period) int { return cmp.Compare(tier(a), tier(b)) })
	return periods
}
