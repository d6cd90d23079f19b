package model

import (
	"fmt"
	"log"
)

const (
	MinDaysPerWeek     = 1
	MaxDaysPerWeek     = 7
	MinTimeSlotsPerDay = 2
	MaxTimeSlotsPerDay = 7
)

// Period is a (day, slot) cell of the weekly grid; both coordinates are 1-based
type Period struct {
	Day  int
	Slot int
}

// NewPeriod panics if day or slot lie outside the widest grid a semester may define,
// since callers are expected to only build periods from validated input
func NewPeriod(day, slot int) Period {
	if day < 1 || day > MaxDaysPerWeek || slot < 1 || slot > MaxTimeSlotsPerDay {
		log.Panicf("invalid period: day %v, slot %v", day, slot)
	}
	return Period{Day: day, Slot: slot}
}

func (p Period) Compare(other Period) int {
	if p.Day != other.Day {
		return p.Day - other.Day
	}
	return p.Slot - other.Slot
}

func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

// Next returns the following slot of the same day
func (p Period) Next() Period {
	return NewPeriod(p.Day, p.Slot+1)
}

// Prev returns the preceding slot of the same day
func (p Period) Prev() Period {
	return NewPeriod(p.Day, p.Slot-1)
}

func (p Period) String() string {
	return fmt.Sprintf("%d.%d", p.Day, p.Slot)
}
