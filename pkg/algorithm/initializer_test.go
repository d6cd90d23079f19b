package algorithm

import (
	"math/rand/v2"
	"testing"

	"github.com/nicolasgross/libwcttt-sub000/internal/fixture"
	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func never() bool { return false }

func newInitializer(semester *model.Semester, seed uint64, cancelled func() bool) *SaturationDegree {
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(semester))
	return NewSaturationDegree(calculator, rand.New(rand.NewPCG(seed, seed)), cancelled, zap.NewNop())
}

// assertFeasible checks every property a timetable handed out by the engine must have
func assertFeasible(t *testing.T, semester *model.Semester, timetable *model.Timetable) {
	t.Helper()
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(semester))
	assert.Zero(t, calculator.TimetableHardViolations(timetable))

	for _, session := range semester.Sessions {
		placements := timetable.Placements(session.Index)
		if !assert.Len(t, placements, session.Length(), session.Id) {
			continue
		}
		if session.IsPreAssigned() {
			assert.Equal(t, *session.PreAssignment, placements[0].Period, session.Id)
		}
		if !session.IsInternal() {
			assert.Equal(t, session.External.Room, placements[0].Room, session.Id)
		}
		if session.DoubleSession {
			assert.Equal(t, placements[0].Period.Next(), placements[1].Period, session.Id)
			assert.Equal(t, placements[0].Room, placements[1].Room, session.Id)
			assert.False(t, semester.IsLastSlot(placements[0].Period), session.Id)
		}
	}
}

func TestSaturationDegree(t *testing.T) {
	t.Run("Single lecture", func(t *testing.T) {
		//** Arrange
		semester := fixture.Must(fixture.Minimal())
		initializer := newInitializer(&semester, 1, never)

		//** Act
		timetables, err := initializer.Generate(1)

		//** Assert
		require.NoError(t, err)
		require.Len(t, timetables, 1)
		assert.Equal(t, 1, timetables[0].Size())
		assert.Zero(t, timetables[0].HardViolations())
	})

	t.Run("Department", func(t *testing.T) {
		semester := fixture.Must(fixture.Department())
		for seed := range uint64(5) {
			timetables, err := newInitializer(&semester, seed+1, never).Generate(4)
			require.NoError(t, err)
			require.Len(t, timetables, 4)
			for _, timetable := range timetables {
				assert.True(t, timetable.Evaluated())
				assertFeasible(t, &semester, timetable)
			}
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		semester := fixture.Must(fixture.Department())
		timetables, err := newInitializer(&semester, 1, func() bool { return true }).Generate(4)
		assert.NoError(t, err)
		assert.Empty(t, timetables)
	})

	t.Run("Cancelled after the first candidate", func(t *testing.T) {
		// One check before each candidate and one per session to place
		semester := fixture.Must(fixture.Minimal())
		calls := 0
		cancelled := func() bool {
			calls++
			return calls > 2
		}
		timetables, err := newInitializer(&semester, 1, cancelled).Generate(4)
		assert.NoError(t, err)
		assert.Len(t, timetables, 1)
	})

	t.Run("No feasible room", func(t *testing.T) {
		raw := fixture.Minimal()
		raw.Courses[0].Lectures[0].RoomRequirements = model.RoomFeatures{PcPool: true}
		semester := fixture.Must(raw)

		timetables, err := newInitializer(&semester, 1, never).Generate(1)
		assert.ErrorIs(t, err, model.NoFeasibleRoomError{Session: "lecture"})
		assert.Empty(t, timetables)
	})

	t.Run("Pre-assignment clashes with the teacher", func(t *testing.T) {
		raw := fixture.Minimal()
		raw.Chairs[0].Teachers[0].UnavailablePeriods = []model.RawPeriod{{Day: 1, TimeSlot: 2}}
		raw.Courses[0].Lectures[0].PreAssignment = fixture.At(1, 2)
		semester := fixture.Must(raw)

		timetables, err := newInitializer(&semester, 1, never).Generate(1)
		assert.ErrorContains(t, err, "H7")
		assert.Empty(t, timetables)
	})

	t.Run("External session clashes with the teacher", func(t *testing.T) {
		raw := fixture.Minimal()
		raw.Chairs[0].Teachers[0].UnavailablePeriods = []model.RawPeriod{{Day: 1, TimeSlot: 1}}
		raw.ExternalRooms = []model.RawExternalRoom{{Id: "elsewhere"}}
		raw.Courses[0].Lectures = append(raw.Courses[0].Lectures, model.RawSession{
			Id: "visit", Teacher: "teacher", External: true, Room: "elsewhere", PreAssignment: fixture.At(1, 1),
		})
		semester := fixture.Must(raw)

		_, err := newInitializer(&semester, 1, never).Generate(1)
		assert.ErrorContains(t, err, "visit")
	})
}

func TestSaturationOrder(t *testing.T) {
	semester := fixture.Must(fixture.Department())
	initializer := newInitializer(&semester, 1, never)
	timetable := semester.NewTimetable()
	algo1 := semester.Sessions[fixture.SessionIndex(&semester, "algo-l1")]
	algo2 := semester.Sessions[fixture.SessionIndex(&semester, "algo-l2")]
	ai := semester.Sessions[fixture.SessionIndex(&semester, "ai-p1")]

	// A placed conflicting neighbor raises the saturation degree
	initializer.placer.place(timetable, algo1, model.NewPeriod(3, 1), fixture.RoomIndex(&semester, "auditorium"))
	assert.Equal(t, 1, initializer.saturation(timetable, algo2))
	assert.Equal(t, 1, initializer.saturation(timetable, ai))
	assert.Equal(t, 1, initializer.mostSaturated(timetable, []model.Session{
		semester.Sessions[fixture.SessionIndex(&semester, "ai-l1")],
		algo2,
	}))

	// Used periods come first
	order := initializer.periodOrder(timetable, algo2)
	assert.Equal(t, model.NewPeriod(3, 1), order[0])
	assert.Len(t, order, semester.DaysPerWeek*semester.TimeSlotsPerDay)

	// Double sessions never start in the last slot
	db := semester.Sessions[fixture.SessionIndex(&semester, "db-l1")]
	for _, period := range initializer.periodOrder(timetable, db) {
		assert.False(t, semester.IsLastSlot(period))
	}
}
