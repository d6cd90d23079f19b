package model

import "github.com/samber/lo"

// Semester is the immutable problem instance a run works on. All cross references are
// indices into its arenas; nothing may be modified while a run reads it.
type Semester struct {
	Name                          string
	DaysPerWeek                   int
	TimeSlotsPerDay               int
	MaxDailyLecturesPerCurriculum int
	Weights                       ConstraintWeights

	Chairs    []Chair
	Teachers  []Teacher
	Rooms     []Room
	Courses   []Course
	Sessions  []Session
	Curricula []Curriculum

	courseCurricula [][]int // Curricula containing each course
}

// Periods returns every period of the week ordered by (day, slot)
func (semester *Semester) Periods() []Period {
	periods := make([]Period, 0, semester.DaysPerWeek*semester.TimeSlotsPerDay)
	for day := 1; day <= semester.DaysPerWeek; day++ {
		for slot := 1; slot <= semester.TimeSlotsPerDay; slot++ {
			periods = append(periods, NewPeriod(day, slot))
		}
	}
	return periods
}

// PeriodIndex maps a period onto [0, DaysPerWeek*TimeSlotsPerDay)
func (semester *Semester) PeriodIndex(period Period) int {
	return (period.Day-1)*semester.TimeSlotsPerDay + period.Slot - 1
}

func (semester *Semester) IsLastSlot(period Period) bool {
	return period.Slot == semester.TimeSlotsPerDay
}

func (semester *Semester) InternalSessions() []Session {
	return lo.Filter(semester.Sessions, func(session Session, _ int) bool { return session.IsInternal() })
}

func (semester *Semester) ExternalSessions() []Session {
	return lo.Filter(semester.Sessions, func(session Session, _ int) bool { return !session.IsInternal() })
}

func (semester *Semester) InternalRooms() []Room {
	return lo.Filter(semester.Rooms, func(room Room, _ int) bool { return room.IsInternal() })
}

// CurriculaOf returns the curricula containing the course
func (semester *Semester) CurriculaOf(course int) []int {
	return semester.courseCurricula[course]
}

func (semester *Semester) SessionTeacher(session int) Teacher {
	return semester.Teachers[semester.Sessions[session].Teacher]
}

func (semester *Semester) SessionCourse(session int) Course {
	return semester.Courses[semester.Sessions[session].Course]
}

// HasSinglePractical reports whether the course offers exactly one practical session,
// in which case that practical must be attended by every student like a lecture
func (semester *Semester) HasSinglePractical(course int) bool {
	return len(semester.Courses[course].Practicals) == 1
}

func (semester *Semester) NewTimetable() *Timetable {
	return NewTimetable(semester.DaysPerWeek, semester.TimeSlotsPerDay)
}
