package constraint

import (
	"fmt"

	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
)

type HardConstraint int

const (
	H1 HardConstraint = iota // Lectures of the same course share a period
	H2                       // Practical shares a period with a lecture (or the only practical) of its course
	H3                       // Room used twice in a period
	H4                       // Lectures of a curriculum share a period
	H5                       // Lecture-like practicals of a curriculum share a period
	H6                       // Teacher teaches twice in a period
	H7                       // Teacher unavailable
	H8                       // Two lectures of a course on the same day
	H9                       // Pre-assignment not honored
	H10                      // Room does not fit the session
)

func (constraint HardConstraint) String() string {
	return fmt.Sprintf("H%d", int(constraint)+1)
}

type SoftConstraint int

const (
	S1 SoftConstraint = iota // Room capacity deviation
	S2                       // Lectures spread over too few days
	S3                       // Lecture without adjacent curriculum lecture
	S4                       // Lectures of a course in different rooms
	S5                       // Unfavorable teacher period
	S6                       // Teacher busy for more than two consecutive periods
	S7                       // Too many daily curriculum lectures
)

const softConstraints = 7

func (constraint SoftConstraint) String() string {
	return fmt.Sprintf("S%d", int(constraint)+1)
}

// Weight looks the weight of the constraint up, returning -1 if it is unknown
func Weight(weights model.ConstraintWeights, constraint SoftConstraint) float64 {
	switch constraint {
	case S1:
		return weights.S1
	case S2:
		return weights.S2
	case S3:
		return weights.S3
	case S4:
		return weights.S4
	case S5:
		return weights.S5
	case S6:
		return weights.S6
	case S7:
		return weights.S7
	default:
		return -1
	}
}

// SoftViolations counts penalty points per soft constraint
type SoftViolations [softConstraints]int

func (violations SoftViolations) Add(other SoftViolations) SoftViolations {
	for i := range violations {
		violations[i] += other[i]
	}
	return violations
}

// Penalty weights the points, skipping constraints whose weight cannot be looked up
func (violations SoftViolations) Penalty(weights model.ConstraintWeights) float64 {
	penalty := 0.0
	for i, points := range violations {
		weight := Weight(weights, SoftConstraint(i))
		if points == 0 || weight < 0 {
			continue
		}
		penalty += float64(points) * weight
	}
	return penalty
}

func (violations SoftViolations) Total() int {
	total := 0
	for _, points := range violations {
		total += points
	}
	return total
}
