package constraint

import (
	"slices"

	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// SessionConflict describes why two sessions must not share a period
type SessionConflict struct {
	Curricula   []int // Curricula containing the courses of both sessions
	SameCourse  bool
	SameTeacher bool
	Identity    bool // Both indices denote the same session
}

// Conflicting reports whether two distinct sessions compete for students or a teacher
func (conflict SessionConflict) Conflicting() bool {
	return !conflict.Identity && (len(conflict.Curricula) > 0 || conflict.SameCourse || conflict.SameTeacher)
}

// Weight is the number of reasons for which the two sessions conflict
func (conflict SessionConflict) Weight() int {
	if conflict.Identity {
		return 0
	}
	return len(conflict.Curricula) + lo.Ternary(conflict.SameCourse, 1, 0) + lo.Ternary(conflict.SameTeacher, 1, 0)
}

// RoomFit describes how an internal session fits into an internal room
type RoomFit struct {
	CapacityDeviation int // Room capacity minus number of students
	FeaturesFit       bool
}

type TeacherPeriod struct {
	Unavailable bool
	Unfavorable bool
}

// ConflictMatrices are the lookup tables derived once from a semester and shared read-only
// by every component of a run
type ConflictMatrices struct {
	semester       *model.Semester
	sessionSession [][]SessionConflict
	sessionRoom    [][]RoomFit       // Only cells of internal sessions and internal rooms are meaningful
	teacherPeriod  [][]TeacherPeriod // Teacher x period index
}

func NewConflictMatrices(semester *model.Semester) *ConflictMatrices {
	matrices := &ConflictMatrices{semester: semester}
	matrices.sessionSession = sessionSessionMatrix(semester)
	matrices.sessionRoom = sessionRoomMatrix(semester)
	matrices.teacherPeriod = teacherPeriodMatrix(semester)
	return matrices
}

func (matrices *ConflictMatrices) Semester() *model.Semester {
	return matrices.semester
}

func (matrices *ConflictMatrices) Sessions(session1, session2 int) SessionConflict {
	return matrices.sessionSession[session1][session2]
}

func (matrices *ConflictMatrices) Room(session, room int) RoomFit {
	return matrices.sessionRoom[session][room]
}

func (matrices *ConflictMatrices) Teacher(teacher int, period model.Period) TeacherPeriod {
	return matrices.teacherPeriod[teacher][matrices.semester.PeriodIndex(period)]
}

// Fits reports whether the room may host the session: internal sessions need an internal room
// whose features dominate their requirements, external sessions their fixed room
func (matrices *ConflictMatrices) Fits(session, room int) bool {
	switch current := matrices.semester.Sessions[session]; current.Kind {
	case model.InternalSessionKind:
		return matrices.semester.Rooms[room].IsInternal() && matrices.sessionRoom[session][room].FeaturesFit
	case model.ExternalSessionKind:
		return current.External.Room == room
	default:
		panic("unknown session kind")
	}
}

func sessionSessionMatrix(semester *model.Semester) [][]SessionConflict {
	sessions := semester.Sessions
	matrix := make([][]SessionConflict, len(sessions))
	for i := range matrix {
		matrix[i] = make([]SessionConflict, len(sessions))
	}

	for i, session1 := range sessions {
		matrix[i][i] = SessionConflict{Identity: true}
		curricula1 := semester.CurriculaOf(session1.Course)

		for j := i + 1; j < len(sessions); j++ {
			session2 := sessions[j]
			curricula2 := semester.CurriculaOf(session2.Course)

			conflict := SessionConflict{
				Curricula:   lo.Filter(curricula1, func(curriculum int, _ int) bool { return slices.Contains(curricula2, curriculum) }),
				SameCourse:  session1.Course == session2.Course,
				SameTeacher: session1.Teacher == session2.Teacher,
			}
			matrix[i][j] = conflict
			matrix[j][i] = conflict
		}
	}
	return matrix
}

func sessionRoomMatrix(semester *model.Semester) [][]RoomFit {
	matrix := make([][]RoomFit, len(semester.Sessions))
	for _, session := range semester.Sessions {
		matrix[session.Index] = make([]RoomFit, len(semester.Rooms))
		if !session.IsInternal() {
			continue
		}
		for _, room := range semester.Rooms {
			if !room.IsInternal() {
				continue
			}
			matrix[session.Index][room.Index] = RoomFit{
				CapacityDeviation: room.Internal.Capacity - session.Internal.Students,
				FeaturesFit:       room.Internal.Features.Dominates(session.Internal.RequiredFeatures),
			}
		}
	}
	return matrix
}

func teacherPeriodMatrix(semester *model.Semester) [][]TeacherPeriod {
	matrix := make([][]TeacherPeriod, len(semester.Teachers))
	for _, teacher := range semester.Teachers {
		row := make([]TeacherPeriod, semester.DaysPerWeek*semester.TimeSlotsPerDay)
		for _, period := range semester.Periods() {
			row[semester.PeriodIndex(period)] = TeacherPeriod{
				Unavailable: slices.Contains(teacher.Unavailable, period),
				Unfavorable: slices.Contains(teacher.Unfavorable, period),
			}
		}
		matrix[teacher.Index] = row
	}
	return matrix
}
