package algorithm

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TabuBasedMemetic evolves a population of feasible timetables with crossover, mutation and a
// local search whose neighborhood structure is chosen under a tabu restriction. One value
// serves a single run; Cancel may be called from any goroutine.
type TabuBasedMemetic struct {
	logger      *zap.Logger
	structures  []StructureId
	cancelled   atomic.Bool
	generations atomic.Int64
}

type Option func(*TabuBasedMemetic)

func WithLogger(logger *zap.Logger) Option {
	return func(optimizer *TabuBasedMemetic) {
		optimizer.logger = logger
	}
}

// withStructures restricts the neighborhood structures the run may choose from
func withStructures(structures ...StructureId) Option {
	return func(optimizer *TabuBasedMemetic) {
		optimizer.structures = structures
	}
}

func NewTabuBasedMemetic(options ...Option) *TabuBasedMemetic {
	optimizer := &TabuBasedMemetic{
		logger:     zap.NewNop(),
		structures: neighborhoodStructures,
	}
	for _, option := range options {
		option(optimizer)
	}
	return optimizer
}

// Cancel stops the run at its next check. It is idempotent and may precede Start.
func (optimizer *TabuBasedMemetic) Cancel() {
	optimizer.cancelled.Store(true)
}

func (optimizer *TabuBasedMemetic) IsCancelled() bool {
	return optimizer.cancelled.Load()
}

// Generations returns the number of generations the run has completed so far
func (optimizer *TabuBasedMemetic) Generations() int {
	return int(optimizer.generations.Load())
}

// run holds the state of one optimization
type run struct {
	semester   *model.Semester
	calculator *constraint.Calculator
	placer     *placer
	parameters Parameters
	rng        *rand.Rand
	logger     *zap.Logger
	mutations  []NeighborhoodStructure
	selector   *structureSelector
}

// Start optimizes the semester until a timetable without penalty is found, the generation
// limit is reached or the run is cancelled. It returns the best timetable found, scored, or
// nil if the run was cancelled before any feasible timetable existed.
func (optimizer *TabuBasedMemetic) Start(semester *model.Semester, parameters Parameters) (*model.Timetable, error) {
	if err := parameters.Validate(); err != nil {
		return nil, err
	}
	if parameters.TabuListSize >= len(optimizer.structures) {
		return nil, fmt.Errorf("invalid parameters: tabu list size must be smaller than %v", len(optimizer.structures))
	}

	logger := optimizer.logger.With(zap.String("run", uuid.NewString()))
	current := newRun(semester, parameters, optimizer.structures, logger)
	logger.Info("optimization started",
		zap.String("semester", semester.Name),
		zap.Int("sessions", len(semester.Sessions)),
		zap.Int("populationSize", parameters.PopulationSize),
		zap.Float64("crossoverRate", parameters.CrossoverRate),
		zap.Float64("mutationRate", parameters.MutationRate),
		zap.Int("tabuListSize", parameters.TabuListSize),
	)

	//** Initialization
	initializer := NewSaturationDegree(current.calculator, current.rng, optimizer.IsCancelled, logger)
	population, err := initializer.Generate(parameters.PopulationSize)
	if err != nil {
		return nil, err
	}
	if len(population) == 0 {
		logger.Info("optimization cancelled before a feasible timetable was found")
		return nil, nil
	}
	best := lo.MinBy(population, func(a, b *model.Timetable) bool { return a.Penalty() < b.Penalty() }).Clone()

	//** Generations
	for generation := 1; best.Penalty() != 0 && !optimizer.IsCancelled(); generation++ {
		if parameters.MaxGenerations > 0 && generation > parameters.MaxGenerations {
			break
		}

		bestNew := current.generation(population)
		improved := bestNew.Penalty() < best.Penalty()
		if improved {
			best = bestNew.Clone()
		}
		current.selector.report(improved, parameters.TabuPolicy)

		worst := current.worst(population)
		if bestNew.Penalty() < population[worst].Penalty() {
			population[worst] = bestNew
		}

		optimizer.generations.Store(int64(generation))
		current.logger.Debug("generation finished",
			zap.Int("generation", generation),
			zap.Float64("best", best.Penalty()),
			zap.Float64("bestNew", bestNew.Penalty()),
			zap.Stringer("structure", current.selector.current),
			zap.Stringers("tabu", current.selector.tabu.snapshot()),
		)
	}

	logger.Info("optimization finished",
		zap.Int("generations", optimizer.Generations()),
		zap.Float64("penalty", best.Penalty()),
		zap.Bool("cancelled", optimizer.IsCancelled()),
	)
	return best, nil
}

func newRun(semester *model.Semester, parameters Parameters, structures []StructureId, logger *zap.Logger) *run {
	calculator := constraint.NewCalculator(constraint.NewConflictMatrices(semester))
	placer := newPlacer(calculator)
	rng := newRand(parameters.Seed)
	return &run{
		semester:   semester,
		calculator: calculator,
		placer:     placer,
		parameters: parameters,
		rng:        rng,
		logger:     logger,
		mutations: lo.Map(structures, func(id StructureId, _ int) NeighborhoodStructure {
			return newNeighborhoodStructure(id, placer)
		}),
		selector: newStructureSelector(structures, parameters.TabuListSize, rng),
	}
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// generation breeds two offspring, mutates them, searches their neighborhood and returns the
// best of the four resulting timetables
func (current *run) generation(population []*model.Timetable) *model.Timetable {
	first, second := current.selectParents(population)
	offspring := []*model.Timetable{population[first].Clone(), population[second].Clone()}
	if current.rng.Float64() < current.parameters.CrossoverRate {
		current.crossover(population[first], population[second], offspring[0], offspring[1])
	}
	for _, timetable := range offspring {
		current.mutate(timetable)
	}

	structure := current.mutations[slices.Index(current.selector.structures, current.selector.next())]
	candidates := slices.Clone(offspring)
	for _, timetable := range offspring {
		searched := timetable.Clone()
		structure.Apply(searched, current.rng)
		candidates = append(candidates, searched)
	}

	for _, candidate := range candidates {
		current.calculator.Score(candidate)
	}
	return lo.MinBy(candidates, func(a, b *model.Timetable) bool { return a.Penalty() < b.Penalty() })
}

// selectParents spins a roulette wheel twice, the second time without the first parent.
// The fitness of a timetable is the worst penalty of the population minus its own.
func (current *run) selectParents(population []*model.Timetable) (int, int) {
	worst := population[current.worst(population)].Penalty()
	fitness := lo.Map(population, func(timetable *model.Timetable, _ int) float64 { return worst - timetable.Penalty() })

	first := roulette(fitness, current.rng)
	fitness[first] = -1
	return first, roulette(fitness, current.rng)
}

// roulette returns an index with probability proportional to its fitness. Negative fitness
// excludes an index; if no positive fitness remains every non-excluded index is equally likely.
func roulette(fitness []float64, rng *rand.Rand) int {
	total := 0.0
	for _, value := range fitness {
		total += max(value, 0)
	}
	if total == 0 {
		candidates := lo.Filter(lo.Range(len(fitness)), func(i int, _ int) bool { return fitness[i] >= 0 })
		return candidates[rng.IntN(len(candidates))]
	}

	spin := rng.Float64() * total
	last := 0
	for i, value := range fitness {
		if value <= 0 {
			continue
		}
		last = i
		spin -= value
		if spin < 0 {
			return i
		}
	}
	return last
}

func (current *run) worst(population []*model.Timetable) int {
	worst := 0
	for i, timetable := range population {
		if timetable.Penalty() > population[worst].Penalty() {
			worst = i
		}
	}
	return worst
}

// mutate applies a random neighborhood structure once per session with the mutation rate
func (current *run) mutate(timetable *model.Timetable) {
	for range len(current.semester.Sessions) {
		if current.rng.Float64() < current.parameters.MutationRate {
			structure, _ := pick(current.rng, current.mutations)
			structure.Apply(timetable, current.rng)
		}
	}
}
