package algorithm

import (
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"
)

// tabuQueue is a bounded FIFO of recently used neighborhood structures
type tabuQueue struct {
	capacity int
	entries  []StructureId
}

func newTabuQueue(capacity int) *tabuQueue {
	return &tabuQueue{capacity: capacity, entries: make([]StructureId, 0, capacity)}
}

// push appends the structure, evicting the oldest entry once the queue is full
func (queue *tabuQueue) push(structure StructureId) {
	if len(queue.entries) == queue.capacity {
		queue.entries = queue.entries[1:]
	}
	queue.entries = append(queue.entries, structure)
}

func (queue *tabuQueue) contains(structure StructureId) bool {
	return slices.Contains(queue.entries, structure)
}

func (queue *tabuQueue) snapshot() []StructureId {
	return slices.Clone(queue.entries)
}

// structureSelector chooses the neighborhood structure of the local search. A new structure is
// drawn from the non-tabu ones after an improving generation or once the current one is tabu;
// otherwise the current one is reused.
type structureSelector struct {
	structures []StructureId
	tabu       *tabuQueue
	rng        *rand.Rand
	current    StructureId
	renew      bool
}

func newStructureSelector(structures []StructureId, tabuListSize int, rng *rand.Rand) *structureSelector {
	return &structureSelector{
		structures: structures,
		tabu:       newTabuQueue(tabuListSize),
		rng:        rng,
		renew:      true,
	}
}

func (selector *structureSelector) next() StructureId {
	if selector.renew || selector.tabu.contains(selector.current) {
		allowed := lo.Filter(selector.structures, func(structure StructureId, _ int) bool { return !selector.tabu.contains(structure) })
		selector.current = allowed[selector.rng.IntN(len(allowed))]
		selector.renew = false
	}
	return selector.current
}

// report records the outcome of the generation that used the current structure
func (selector *structureSelector) report(improved bool, policy TabuPolicy) {
	if improved {
		selector.renew = true
		return
	}
	if policy == PushOnStagnation {
		selector.tabu.push(selector.current)
	}
}
