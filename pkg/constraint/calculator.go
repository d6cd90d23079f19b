package constraint

import (
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// Calculator counts hard and soft constraint violations of timetables of one semester
type Calculator struct {
	semester *model.Semester
	matrices *ConflictMatrices
}

func NewCalculator(matrices *ConflictMatrices) *Calculator {
	return &Calculator{
		semester: matrices.Semester(),
		matrices: matrices,
	}
}

func (calculator *Calculator) Matrices() *ConflictMatrices {
	return calculator.matrices
}

// AssignmentHardViolations returns the hard constraints the assignment violates (or would
// violate if it was added) in the period. Other assignments of the same session are never
// considered conflicting, so transient duplicates and double session halves are tolerated.
func (calculator *Calculator) AssignmentHardViolations(timetable *model.Timetable, period model.Period, assignment model.Assignment) []HardConstraint {
	semester := calculator.semester
	session := semester.Sessions[assignment.Session]
	violations := make([]HardConstraint, 0)
	lectureLike := calculator.lectureLike(timetable, period, session)

	for _, other := range timetable.Assignments(period) {
		if other.Session == assignment.Session {
			continue
		}
		otherSession := semester.Sessions[other.Session]
		conflict := calculator.matrices.Sessions(session.Index, otherSession.Index)
		bothLectures := session.Lecture && otherSession.Lecture

		if conflict.SameCourse && bothLectures {
			violations = append(violations, H1)
		}
		if conflict.SameCourse && !bothLectures &&
			(session.Lecture || otherSession.Lecture || semester.HasSinglePractical(session.Course)) {
			violations = append(violations, H2)
		}
		if other.Room == assignment.Room {
			violations = append(violations, H3)
		}
		if !conflict.SameCourse && len(conflict.Curricula) > 0 {
			if bothLectures {
				violations = append(violations, H4)
			} else if lectureLike || calculator.lectureLike(timetable, period, otherSession) {
				violations = append(violations, H5)
			}
		}
		if conflict.SameTeacher {
			violations = append(violations, H6)
		}
	}

	if calculator.matrices.Teacher(session.Teacher, period).Unavailable {
		violations = append(violations, H7)
	}
	if session.Lecture && calculator.sameDayLecture(timetable, period, session) {
		violations = append(violations, H8)
	}
	if !calculator.honorsPreAssignment(period, session) {
		violations = append(violations, H9)
	}
	if !calculator.matrices.Fits(session.Index, assignment.Room) {
		violations = append(violations, H10)
	}

	return violations
}

// Practicals students cannot dodge behave like lectures: the only practical of a course, or one
// whose sibling practicals all take place in the same period
func (calculator *Calculator) lectureLike(timetable *model.Timetable, period model.Period, session model.Session) bool {
	if session.Lecture || calculator.semester.HasSinglePractical(session.Course) {
		return true
	}
	return lo.EveryBy(calculator.semester.Courses[session.Course].Practicals, func(practical int) bool {
		return practical == session.Index || timetable.SessionAt(period, practical)
	})
}

func (calculator *Calculator) sameDayLecture(timetable *model.Timetable, period model.Period, session model.Session) bool {
	for slot := 1; slot <= timetable.Slots(); slot++ {
		if slot == period.Slot {
			continue
		}
		for _, other := range timetable.Assignments(model.NewPeriod(period.Day, slot)) {
			otherSession := calculator.semester.Sessions[other.Session]
			if other.Session != session.Index && otherSession.Lecture && otherSession.Course == session.Course {
				return true
			}
		}
	}
	return false
}

func (calculator *Calculator) honorsPreAssignment(period model.Period, session model.Session) bool {
	if !session.IsPreAssigned() {
		return true
	}
	preAssignment := *session.PreAssignment
	if session.DoubleSession {
		return period == preAssignment || (period.Day == preAssignment.Day && period.Slot == preAssignment.Slot+1)
	}
	return period == preAssignment
}

// TimetableHardViolations counts the hard violations of every assignment plus every session
// that is missing, placed with the wrong length, or split into non-consecutive halves
func (calculator *Calculator) TimetableHardViolations(timetable *model.Timetable) int {
	violations := 0
	timetable.ForEach(func(period model.Period, assignment model.Assignment) {
		violations += len(calculator.AssignmentHardViolations(timetable, period, assignment))
	})

	for _, session := range calculator.semester.Sessions {
		placements := timetable.Placements(session.Index)
		if len(placements) != session.Length() {
			violations++
			continue
		}
		if session.DoubleSession {
			first, second := placements[0], placements[1]
			if first.Period.Day != second.Period.Day || first.Period.Slot+1 != second.Period.Slot || first.Room != second.Room {
				violations++
			}
		}
	}
	return violations
}

// AssignmentSoftViolations returns the assignment level soft violations (S1, S3, S5, S6)
func (calculator *Calculator) AssignmentSoftViolations(timetable *model.Timetable, period model.Period, assignment model.Assignment) SoftViolations {
	var violations SoftViolations
	semester := calculator.semester
	session := semester.Sessions[assignment.Session]

	if session.IsInternal() && semester.Rooms[assignment.Room].IsInternal() {
		deviation := calculator.matrices.Room(session.Index, assignment.Room).CapacityDeviation
		violations[S1] = max(deviation, -deviation)
	}
	if session.Lecture && timetable.Slots() > 1 {
		violations[S3] = calculator.isolatedLectures(timetable, period, session)
	}
	if calculator.matrices.Teacher(session.Teacher, period).Unfavorable {
		violations[S5] = 1
	}
	if calculator.consecutivePeriods(timetable, period, session.Teacher) > 2 {
		violations[S6] = 1
	}
	return violations
}

// Number of curricula of the lecture's course in which no lecture of another course of the
// curriculum is held directly before or after it
func (calculator *Calculator) isolatedLectures(timetable *model.Timetable, period model.Period, session model.Session) int {
	semester := calculator.semester
	neighbors := make([]model.Period, 0, 2)
	if period.Slot > 1 {
		neighbors = append(neighbors, period.Prev())
	}
	if period.Slot < timetable.Slots() {
		neighbors = append(neighbors, period.Next())
	}

	isolated := 0
	for _, curriculum := range semester.CurriculaOf(session.Course) {
		courses := semester.Curricula[curriculum].Courses
		siblingLecture := func(other model.Assignment) bool {
			otherSession := semester.Sessions[other.Session]
			return otherSession.Lecture && otherSession.Course != session.Course && slices.Contains(courses, otherSession.Course)
		}
		if !lo.SomeBy(neighbors, func(neighbor model.Period) bool {
			return lo.SomeBy(timetable.Assignments(neighbor), siblingLecture)
		}) {
			isolated++
		}
	}
	return isolated
}

// Length of the run of periods the teacher is busy in, ending at the given period
func (calculator *Calculator) consecutivePeriods(timetable *model.Timetable, period model.Period, teacher int) int {
	run := 1
	for slot := period.Slot - 1; slot >= 1; slot-- {
		if !calculator.teacherBusy(timetable, model.NewPeriod(period.Day, slot), teacher) {
			break
		}
		run++
	}
	return run
}

func (calculator *Calculator) teacherBusy(timetable *model.Timetable, period model.Period, teacher int) bool {
	return lo.SomeBy(timetable.Assignments(period), func(assignment model.Assignment) bool {
		return calculator.semester.Sessions[assignment.Session].Teacher == teacher
	})
}

// CourseSoftViolations returns the course level soft violations (S2, S4)
func (calculator *Calculator) CourseSoftViolations(timetable *model.Timetable, course int) SoftViolations {
	var violations SoftViolations
	lectures := calculator.semester.Courses[course].Lectures
	if len(lectures) == 0 {
		return violations
	}

	placements := lo.FlatMap(lectures, func(lecture int, _ int) []model.Placement { return timetable.Placements(lecture) })
	days := lo.Uniq(lo.Map(placements, func(placement model.Placement, _ int) int { return placement.Period.Day }))
	rooms := lo.Uniq(lo.Map(placements, func(placement model.Placement, _ int) int { return placement.Room }))

	violations[S2] = max(0, calculator.semester.Courses[course].MinSpreadDays-len(days))
	violations[S4] = max(0, len(rooms)-1)
	return violations
}

// CurriculumSoftViolations returns the curriculum level soft violations (S7)
func (calculator *Calculator) CurriculumSoftViolations(timetable *model.Timetable, curriculum int) SoftViolations {
	var violations SoftViolations
	semester := calculator.semester
	courses := semester.Curricula[curriculum].Courses

	for day := 1; day <= timetable.Days(); day++ {
		lectures := make(map[int]bool)
		for slot := 1; slot <= timetable.Slots(); slot++ {
			for _, assignment := range timetable.Assignments(model.NewPeriod(day, slot)) {
				session := semester.Sessions[assignment.Session]
				if session.Lecture && slices.Contains(courses, session.Course) {
					lectures[session.Index] = true
				}
			}
		}
		violations[S7] += max(0, len(lectures)-semester.MaxDailyLecturesPerCurriculum)
	}
	return violations
}

// TimetableSoftViolations sums assignment, course and curriculum level violations
func (calculator *Calculator) TimetableSoftViolations(timetable *model.Timetable) SoftViolations {
	var violations SoftViolations
	timetable.ForEach(func(period model.Period, assignment model.Assignment) {
		violations = violations.Add(calculator.AssignmentSoftViolations(timetable, period, assignment))
	})
	for _, course := range calculator.semester.Courses {
		violations = violations.Add(calculator.CourseSoftViolations(timetable, course.Index))
	}
	for _, curriculum := range calculator.semester.Curricula {
		violations = violations.Add(calculator.CurriculumSoftViolations(timetable, curriculum.Index))
	}
	return violations
}

// TimetablePenalty is the weighted sum of all soft violations
func (calculator *Calculator) TimetablePenalty(timetable *model.Timetable) float64 {
	return calculator.TimetableSoftViolations(timetable).Penalty(calculator.semester.Weights)
}

// Score evaluates the timetable and caches the result in it
func (calculator *Calculator) Score(timetable *model.Timetable) {
	timetable.SetScore(calculator.TimetableHardViolations(timetable), calculator.TimetablePenalty(timetable))
}
