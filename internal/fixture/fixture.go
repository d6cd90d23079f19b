// Package fixture holds small, hand-checked problem definitions shared by the package tests
package fixture

import (
	"log"

	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
)

// Must builds the semester and panics on invalid definitions
func Must(raw model.RawSemester) model.Semester {
	semester, err := model.NewSemester(raw)
	if err != nil {
		log.Panicf("invalid fixture: %v", err)
	}
	return semester
}

func At(day, slot int) *model.RawPeriod {
	return &model.RawPeriod{Day: day, TimeSlot: slot}
}

func UnitWeights() model.ConstraintWeights {
	return model.ConstraintWeights{S1: 1, S2: 1, S3: 1, S4: 1, S5: 1, S6: 1, S7: 1}
}

// Minimal is a 1x2 week with one teacher, one room (capacity 10) and one lecture of ten students
func Minimal() model.RawSemester {
	return model.RawSemester{
		Name:                          "minimal",
		DaysPerWeek:                   1,
		TimeSlotsPerDay:               2,
		MaxDailyLecturesPerCurriculum: 1,
		Weights:                       UnitWeights(),
		Chairs: []model.RawChair{
			{Id: "chair", Teachers: []model.RawTeacher{{Id: "teacher"}}},
		},
		InternalRooms: []model.RawInternalRoom{
			{Id: "room", Capacity: 10},
		},
		Courses: []model.RawCourse{
			{
				Id:              "course",
				Chair:           "chair",
				MinNumberOfDays: 1,
				Lectures:        []model.RawSession{{Id: "lecture", Teacher: "teacher", Students: 10}},
			},
		},
	}
}

// Department is a 5x4 week shaped like a small computer science department. It contains
// double sessions, a single-practical course, an external session and a pre-assigned
// internal session, and admits many feasible timetables.
func Department() model.RawSemester {
	projector := model.RoomFeatures{Projectors: 1}
	pcPool := model.RoomFeatures{PcPool: true}

	return model.RawSemester{
		Name:                          "department",
		DaysPerWeek:                   5,
		TimeSlotsPerDay:               4,
		MaxDailyLecturesPerCurriculum: 2,
		Weights:                       model.ConstraintWeights{S1: 0.1, S2: 5, S3: 1, S4: 1, S5: 2, S6: 1, S7: 3},
		Chairs: []model.RawChair{
			{
				Id:   "theory",
				Name: "Theoretical Computer Science",
				Teachers: []model.RawTeacher{
					{
						Id:                 "turing",
						UnavailablePeriods: []model.RawPeriod{{Day: 1, TimeSlot: 1}},
						UnfavorablePeriods: []model.RawPeriod{{Day: 5, TimeSlot: 4}},
					},
					{Id: "hopper"},
					{Id: "codd", UnfavorablePeriods: []model.RawPeriod{{Day: 1, TimeSlot: 4}}},
				},
			},
			{
				Id:   "systems",
				Name: "Distributed Systems",
				Teachers: []model.RawTeacher{
					{
						Id: "lamport",
						UnavailablePeriods: []model.RawPeriod{
							{Day: 2, TimeSlot: 1}, {Day: 2, TimeSlot: 2}, {Day: 2, TimeSlot: 3}, {Day: 2, TimeSlot: 4},
						},
					},
					{Id: "liskov"},
				},
			},
		},
		InternalRooms: []model.RawInternalRoom{
			{Id: "auditorium", Capacity: 60, Holder: "theory", Features: model.RoomFeatures{Projectors: 2, TeacherPc: true, DocCam: true}},
			{Id: "seminar", Capacity: 30, Features: projector},
			{Id: "lab", Capacity: 25, Holder: "systems", Features: model.RoomFeatures{PcPool: true, Projectors: 1}},
			{Id: "classroom", Capacity: 40},
		},
		ExternalRooms: []model.RawExternalRoom{
			{Id: "philosophy-hall"},
		},
		Courses: []model.RawCourse{
			{
				Id:              "algo",
				Chair:           "theory",
				MinNumberOfDays: 2,
				Lectures: []model.RawSession{
					{Id: "algo-l1", Teacher: "turing", Students: 50, RoomRequirements: projector},
					{Id: "algo-l2", Teacher: "turing", Students: 50, RoomRequirements: projector},
				},
				Practicals: []model.RawSession{
					{Id: "algo-p1", Teacher: "hopper", Students: 20},
					{Id: "algo-p2", Teacher: "hopper", Students: 20},
				},
			},
			{
				Id:              "db",
				Chair:           "theory",
				MinNumberOfDays: 1,
				Lectures: []model.RawSession{
					{Id: "db-l1", Teacher: "codd", Students: 35, DoubleSession: true, RoomRequirements: projector},
				},
				Practicals: []model.RawSession{
					{Id: "db-p1", Teacher: "codd", Students: 25, RoomRequirements: pcPool},
				},
			},
			{
				Id:              "net",
				Chair:           "systems",
				MinNumberOfDays: 2,
				Lectures: []model.RawSession{
					{Id: "net-l1", Teacher: "lamport", Students: 30},
					{Id: "net-l2", Teacher: "lamport", Students: 30},
				},
				Practicals: []model.RawSession{
					{Id: "net-p1", Teacher: "liskov", Students: 20, DoubleSession: true},
					{Id: "net-p2", Teacher: "liskov", Students: 20},
				},
			},
			{
				Id:              "ethics",
				Chair:           "systems",
				MinNumberOfDays: 1,
				Lectures: []model.RawSession{
					{Id: "ethics-l1", Teacher: "liskov", External: true, Room: "philosophy-hall", PreAssignment: At(3, 2)},
				},
			},
			{
				Id:              "ai",
				Chair:           "theory",
				MinNumberOfDays: 1,
				Lectures: []model.RawSession{
					{Id: "ai-l1", Teacher: "hopper", Students: 40, PreAssignment: At(4, 1)},
				},
				Practicals: []model.RawSession{
					{Id: "ai-p1", Teacher: "turing", Students: 15, RoomRequirements: pcPool},
				},
			},
		},
		Curricula: []model.RawCurriculum{
			{Id: "bachelor", Courses: []string{"algo", "db", "net"}},
			{Id: "master", Courses: []string{"ai", "db", "ethics"}},
		},
	}
}

// SessionIndex looks a session up by id and panics if it does not exist
func SessionIndex(semester *model.Semester, id string) int {
	for _, session := range semester.Sessions {
		if session.Id == id {
			return session.Index
		}
	}
	log.Panicf("unknown session %q", id)
	return model.NoIndex
}

// RoomIndex looks a room up by id and panics if it does not exist
func RoomIndex(semester *model.Semester, id string) int {
	for _, room := range semester.Rooms {
		if room.Id == id {
			return room.Index
		}
	}
	log.Panicf("unknown room %q", id)
	return model.NoIndex
}
