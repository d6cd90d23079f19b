package algorithm

import (
	"math/rand/v2"
	"testing"

	"github.com/nicolasgross/libwcttt-sub000/internal/fixture"
	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighborhoodStructures(t *testing.T) {
	semester := fixture.Must(fixture.Department())
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(&semester))

	for _, id := range neighborhoodStructures {
		t.Run(id.String(), func(t *testing.T) {
			//** Arrange
			timetables, err := newInitializer(&semester, uint64(id)+10, never).Generate(1)
			require.NoError(t, err)
			timetable := timetables[0]
			structure := NewNeighborhoodStructure(id, calculator)
			rng := rand.New(rand.NewPCG(uint64(id), 7))
			require.Equal(t, id, structure.Id())

			//** Act
			applied := 0
			for range 100 {
				before := timetable.Clone()
				if structure.Apply(timetable, rng) {
					applied++
				} else {
					assert.True(t, before.Equal(timetable), "a failed move must restore the timetable")
				}
			}

			//** Assert
			assert.Positive(t, applied)
			assertFeasible(t, &semester, timetable)
		})
	}
}

func TestMoveAssignmentChangesThePeriod(t *testing.T) {
	//** Arrange
	semester := fixture.Must(fixture.Minimal())
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(&semester))
	timetable := semester.NewTimetable()
	timetable.Assign(model.NewPeriod(1, 1), model.Assignment{Session: 0, Room: 0})

	//** Act
	applied := NewNeighborhoodStructure(MoveAssignment, calculator).Apply(timetable, rand.New(rand.NewPCG(1, 1)))

	//** Assert
	assert.True(t, applied)
	assert.Equal(t, []model.Placement{{Period: model.NewPeriod(1, 2), Room: 0}}, timetable.Placements(0))
}

func TestShiftDayNeedsAnotherDay(t *testing.T) {
	semester := fixture.Must(fixture.Minimal())
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(&semester))
	timetable := semester.NewTimetable()
	timetable.Assign(model.NewPeriod(1, 1), model.Assignment{Session: 0, Room: 0})

	assert.False(t, NewNeighborhoodStructure(ShiftDay, calculator).Apply(timetable, rand.New(rand.NewPCG(1, 1))))
	assert.False(t, NewNeighborhoodStructure(ChangeRoom, calculator).Apply(timetable, rand.New(rand.NewPCG(1, 1))))
	assert.False(t, NewNeighborhoodStructure(SwapAssignments, calculator).Apply(timetable, rand.New(rand.NewPCG(1, 1))))
}
