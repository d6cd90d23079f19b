package algorithm

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTabuQueue(t *testing.T) {
	queue := newTabuQueue(2)
	queue.push(MoveAssignment)
	queue.push(SwapAssignments)
	assert.Equal(t, []StructureId{MoveAssignment, SwapAssignments}, queue.snapshot())

	queue.push(ChangeRoom)
	assert.Equal(t, []StructureId{SwapAssignments, ChangeRoom}, queue.snapshot())
	assert.False(t, queue.contains(MoveAssignment))
	assert.True(t, queue.contains(ChangeRoom))
}

func TestStructureSelector(t *testing.T) {
	t.Run("Stagnation rotates through the structures", func(t *testing.T) {
		//** Arrange
		selector := newStructureSelector([]StructureId{MoveAssignment, ShiftDay}, 1, rand.New(rand.NewPCG(1, 1)))

		//** Act / Assert
		first := selector.next()
		assert.Equal(t, first, selector.next())

		selector.report(false, PushOnStagnation)
		second := selector.next()
		assert.NotEqual(t, first, second)
		assert.Equal(t, []StructureId{first}, selector.tabu.snapshot())

		// The oldest entry is evicted before the next selection is blocked
		selector.report(false, PushOnStagnation)
		assert.Equal(t, []StructureId{second}, selector.tabu.snapshot())
		assert.Equal(t, first, selector.next())
	})

	t.Run("Improvement keeps the tabu queue", func(t *testing.T) {
		selector := newStructureSelector([]StructureId{MoveAssignment, ShiftDay}, 1, rand.New(rand.NewPCG(2, 2)))
		selector.next()
		selector.report(false, PushOnStagnation)
		allowed := selector.next()

		for range 10 {
			selector.report(true, PushOnStagnation)
			assert.Equal(t, allowed, selector.next())
		}
	})

	t.Run("Disabled policy never pushes", func(t *testing.T) {
		selector := newStructureSelector(neighborhoodStructures, 3, rand.New(rand.NewPCG(3, 3)))
		current := selector.next()
		for range 5 {
			selector.report(false, PushDisabled)
			assert.Equal(t, current, selector.next())
		}
		assert.Empty(t, selector.tabu.snapshot())
	})
}

func TestRoulette(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))

	t.Run("Zero and excluded fitness are never chosen", func(t *testing.T) {
		for range 200 {
			index := roulette([]float64{0, 3, -1, 1}, rng)
			assert.Contains(t, []int{1, 3}, index)
		}
	})

	t.Run("Uniform without positive fitness", func(t *testing.T) {
		chosen := make(map[int]bool)
		for range 200 {
			chosen[roulette([]float64{0, -1, 0}, rng)] = true
		}
		assert.Equal(t, map[int]bool{0: true, 2: true}, chosen)
	})
}
