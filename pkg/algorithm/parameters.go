package algorithm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// TabuPolicy decides when the neighborhood structure in use is pushed onto the tabu queue
type TabuPolicy string

const (
	PushOnStagnation TabuPolicy = "onStagnation" // Push after every generation that did not improve the best solution
	PushDisabled     TabuPolicy = "disabled"
)

// Parameters tune one optimization run
type Parameters struct {
	PopulationSize int        `mapstructure:"populationSize" validate:"min=2,max=1000"`
	CrossoverRate  float64    `mapstructure:"crossoverRate" validate:"min=0,max=1"`
	MutationRate   float64    `mapstructure:"mutationRate" validate:"min=0,max=1"`
	TabuListSize   int        `mapstructure:"tabuListSize" validate:"min=1"`
	TabuPolicy     TabuPolicy `mapstructure:"tabuPolicy" validate:"oneof=onStagnation disabled"`
	MaxGenerations int        `mapstructure:"maxGenerations" validate:"min=0"` // 0 runs until converged or cancelled
	Seed           uint64     `mapstructure:"seed"`                            // 0 seeds from the runtime
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 20,
		CrossoverRate:  0.8,
		MutationRate:   0.01,
		TabuListSize:   2,
		TabuPolicy:     PushOnStagnation,
	}
}

var validate = validator.New()

// Validate checks the documented bounds. The tabu queue must leave at least one neighborhood
// structure selectable.
func (parameters Parameters) Validate() error {
	if err := validate.Struct(parameters); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if parameters.TabuListSize >= len(neighborhoodStructures) {
		return fmt.Errorf("invalid parameters: tabu list size must be smaller than %v", len(neighborhoodStructures))
	}
	return nil
}

// ParametersFromJson reads a (partial) parameter set, filling missing values with the defaults
func ParametersFromJson(file string) (Parameters, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Parameters{}, fmt.Errorf("cannot read parameters file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Parameters{}, fmt.Errorf("cannot parse parameters file: %w", err)
	}

	parameters := DefaultParameters()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &parameters,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Parameters{}, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return Parameters{}, fmt.Errorf("cannot decode parameters file: %w", err)
	}
	return parameters, nil
}
