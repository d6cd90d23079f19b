package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type RawPeriod struct {
	Day      int `mapstructure:"day"`
	TimeSlot int `mapstructure:"timeSlot"`
}

type RawTeacher struct {
	Id                 string      `mapstructure:"id"`
	Name               string      `mapstructure:"name"`
	UnavailablePeriods []RawPeriod `mapstructure:"unavailablePeriods"`
	UnfavorablePeriods []RawPeriod `mapstructure:"unfavorablePeriods"`
}

type RawChair struct {
	Id       string       `mapstructure:"id"`
	Name     string       `mapstructure:"name"`
	Teachers []RawTeacher `mapstructure:"teachers"`
}

type RawInternalRoom struct {
	Id       string       `mapstructure:"id"`
	Name     string       `mapstructure:"name"`
	Capacity int          `mapstructure:"capacity"`
	Holder   string       `mapstructure:"holder"`
	Features RoomFeatures `mapstructure:"features"`
}

type RawExternalRoom struct {
	Id   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// RawSession is either internal (Students/RoomRequirements) or external (External + Room)
type RawSession struct {
	Id               string       `mapstructure:"id"`
	Name             string       `mapstructure:"name"`
	Teacher          string       `mapstructure:"teacher"`
	DoubleSession    bool         `mapstructure:"doubleSession"`
	PreAssignment    *RawPeriod   `mapstructure:"preAssignment"`
	External         bool         `mapstructure:"external"`
	Room             string       `mapstructure:"room"`
	Students         int          `mapstructure:"students"`
	RoomRequirements RoomFeatures `mapstructure:"roomRequirements"`
}

type RawCourse struct {
	Id              string       `mapstructure:"id"`
	Name            string       `mapstructure:"name"`
	Abbreviation    string       `mapstructure:"abbreviation"`
	Chair           string       `mapstructure:"chair"`
	MinNumberOfDays int          `mapstructure:"minNumberOfDays"`
	Lectures        []RawSession `mapstructure:"lectures"`
	Practicals      []RawSession `mapstructure:"practicals"`
}

type RawCurriculum struct {
	Id      string   `mapstructure:"id"`
	Name    string   `mapstructure:"name"`
	Courses []string `mapstructure:"courses"`
}

type RawSemester struct {
	Name                          string            `mapstructure:"name"`
	DaysPerWeek                   int               `mapstructure:"daysPerWeek"`
	TimeSlotsPerDay               int               `mapstructure:"timeSlotsPerDay"`
	MaxDailyLecturesPerCurriculum int               `mapstructure:"maxDailyLecturesPerCur"`
	Weights                       ConstraintWeights `mapstructure:"weights"`
	Chairs                        []RawChair        `mapstructure:"chairs"`
	InternalRooms                 []RawInternalRoom `mapstructure:"internalRooms"`
	ExternalRooms                 []RawExternalRoom `mapstructure:"externalRooms"`
	Courses                       []RawCourse       `mapstructure:"courses"`
	Curricula                     []RawCurriculum   `mapstructure:"curricula"`
}

// InvalidInputError reports a problem definition the engine refuses to work on
type InvalidInputError struct {
	Reason string
}

func (err InvalidInputError) Error() string {
	return "invalid semester: " + err.Reason
}

func invalid(format string, args ...any) error {
	return InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

func SemesterFromJson(file string) (Semester, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Semester{}, fmt.Errorf("cannot read semester file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return Semester{}, fmt.Errorf("cannot parse semester file: %w", err)
	}

	var raw RawSemester
	if err := mapstructure.Decode(inputJson, &raw); err != nil {
		return Semester{}, fmt.Errorf("cannot decode semester file: %w", err)
	}
	return NewSemester(raw)
}

// NewSemester resolves the identifiers of the raw definition into arena indices and rejects
// definitions the optimizer cannot work on
func NewSemester(raw RawSemester) (Semester, error) {
	if raw.DaysPerWeek < MinDaysPerWeek || raw.DaysPerWeek > MaxDaysPerWeek {
		return Semester{}, invalid("days per week must be within [%v, %v]: %v", MinDaysPerWeek, MaxDaysPerWeek, raw.DaysPerWeek)
	} else if raw.TimeSlotsPerDay < MinTimeSlotsPerDay || raw.TimeSlotsPerDay > MaxTimeSlotsPerDay {
		return Semester{}, invalid("time slots per day must be within [%v, %v]: %v", MinTimeSlotsPerDay, MaxTimeSlotsPerDay, raw.TimeSlotsPerDay)
	} else if raw.MaxDailyLecturesPerCurriculum < 1 {
		return Semester{}, invalid("max daily lectures per curriculum must be positive: %v", raw.MaxDailyLecturesPerCurriculum)
	}
	weights := raw.Weights
	if lo.SomeBy([]float64{weights.S1, weights.S2, weights.S3, weights.S4, weights.S5, weights.S6, weights.S7}, func(weight float64) bool { return weight < 0 }) {
		return Semester{}, invalid("constraint weights must not be negative: %+v", weights)
	}

	semester := Semester{
		Name:                          raw.Name,
		DaysPerWeek:                   raw.DaysPerWeek,
		TimeSlotsPerDay:               raw.TimeSlotsPerDay,
		MaxDailyLecturesPerCurriculum: raw.MaxDailyLecturesPerCurriculum,
		Weights:                       raw.Weights,
	}
	ids := make(map[string]bool)
	register := func(id string) error {
		if id == "" {
			return invalid("ids must not be empty")
		} else if ids[id] {
			return invalid("duplicate id %q", id)
		}
		ids[id] = true
		return nil
	}
	period := func(rawPeriod RawPeriod) (Period, error) {
		if rawPeriod.Day < 1 || rawPeriod.Day > raw.DaysPerWeek || rawPeriod.TimeSlot < 1 || rawPeriod.TimeSlot > raw.TimeSlotsPerDay {
			return Period{}, invalid("period %v.%v is outside of the week", rawPeriod.Day, rawPeriod.TimeSlot)
		}
		return NewPeriod(rawPeriod.Day, rawPeriod.TimeSlot), nil
	}
	periods := func(rawPeriods []RawPeriod) ([]Period, error) {
		result := make([]Period, 0, len(rawPeriods))
		for _, rawPeriod := range rawPeriods {
			converted, err := period(rawPeriod)
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
		return lo.Uniq(result), nil
	}

	//** Chairs and teachers
	chairIndices, teacherIndices := make(map[string]int), make(map[string]int)
	for _, rawChair := range raw.Chairs {
		if err := register(rawChair.Id); err != nil {
			return Semester{}, err
		}
		chair := Chair{Index: len(semester.Chairs), Id: rawChair.Id, Name: rawChair.Name}
		for _, rawTeacher := range rawChair.Teachers {
			if err := register(rawTeacher.Id); err != nil {
				return Semester{}, err
			}
			unavailable, err := periods(rawTeacher.UnavailablePeriods)
			if err != nil {
				return Semester{}, err
			}
			unfavorable, err := periods(rawTeacher.UnfavorablePeriods)
			if err != nil {
				return Semester{}, err
			}
			if lo.SomeBy(unavailable, func(period Period) bool { return slices.Contains(unfavorable, period) }) {
				return Semester{}, invalid("unavailable and unfavorable periods of teacher %q must be disjoint", rawTeacher.Id)
			}
			teacher := Teacher{
				Index:       len(semester.Teachers),
				Id:          rawTeacher.Id,
				Name:        rawTeacher.Name,
				Chair:       chair.Index,
				Unavailable: unavailable,
				Unfavorable: unfavorable,
			}
			teacherIndices[teacher.Id] = teacher.Index
			chair.Teachers = append(chair.Teachers, teacher.Index)
			semester.Teachers = append(semester.Teachers, teacher)
		}
		chairIndices[chair.Id] = chair.Index
		semester.Chairs = append(semester.Chairs, chair)
	}

	//** Rooms
	roomIndices := make(map[string]int)
	for _, rawRoom := range raw.InternalRooms {
		if err := register(rawRoom.Id); err != nil {
			return Semester{}, err
		} else if rawRoom.Capacity <= 0 {
			return Semester{}, invalid("capacity of room %q must be positive: %v", rawRoom.Id, rawRoom.Capacity)
		} else if rawRoom.Features.Projectors < 0 {
			return Semester{}, invalid("projectors of room %q must not be negative", rawRoom.Id)
		}
		holder := NoIndex
		if rawRoom.Holder != "" {
			index, ok := chairIndices[rawRoom.Holder]
			if !ok {
				return Semester{}, invalid("holder %q of room %q does not exist", rawRoom.Holder, rawRoom.Id)
			}
			holder = index
		}
		room := Room{
			Index:    len(semester.Rooms),
			Id:       rawRoom.Id,
			Name:     rawRoom.Name,
			Kind:     InternalRoomKind,
			Internal: &InternalRoom{Capacity: rawRoom.Capacity, Features: rawRoom.Features, Holder: holder},
		}
		roomIndices[room.Id] = room.Index
		semester.Rooms = append(semester.Rooms, room)
	}
	for _, rawRoom := range raw.ExternalRooms {
		if err := register(rawRoom.Id); err != nil {
			return Semester{}, err
		}
		room := Room{Index: len(semester.Rooms), Id: rawRoom.Id, Name: rawRoom.Name, Kind: ExternalRoomKind}
		roomIndices[room.Id] = room.Index
		semester.Rooms = append(semester.Rooms, room)
	}

	//** Courses and sessions
	courseIndices := make(map[string]int)
	session := func(rawSession RawSession, course int, lecture bool) (Session, error) {
		if err := register(rawSession.Id); err != nil {
			return Session{}, err
		}
		teacher, ok := teacherIndices[rawSession.Teacher]
		if !ok {
			return Session{}, invalid("teacher %q of session %q does not exist", rawSession.Teacher, rawSession.Id)
		}
		result := Session{
			Index:         len(semester.Sessions),
			Id:            rawSession.Id,
			Name:          rawSession.Name,
			Teacher:       teacher,
			Course:        course,
			Lecture:       lecture,
			DoubleSession: rawSession.DoubleSession,
		}
		if rawSession.PreAssignment != nil {
			preAssignment, err := period(*rawSession.PreAssignment)
			if err != nil {
				return Session{}, err
			} else if result.DoubleSession && preAssignment.Slot == raw.TimeSlotsPerDay {
				return Session{}, invalid("double session %q must not be pre-assigned to the last slot of a day", rawSession.Id)
			}
			result.PreAssignment = &preAssignment
		}

		if rawSession.External {
			room, ok := roomIndices[rawSession.Room]
			if !ok || semester.Rooms[room].IsInternal() {
				return Session{}, invalid("external session %q must reference an external room: %q", rawSession.Id, rawSession.Room)
			} else if result.PreAssignment == nil {
				return Session{}, invalid("external session %q must be pre-assigned", rawSession.Id)
			}
			result.Kind = ExternalSessionKind
			result.External = &ExternalSession{Room: room}
		} else {
			if rawSession.Students < 1 {
				return Session{}, invalid("session %q must have at least one student", rawSession.Id)
			} else if rawSession.RoomRequirements.Projectors < 0 {
				return Session{}, invalid("projectors required by session %q must not be negative", rawSession.Id)
			}
			result.Kind = InternalSessionKind
			result.Internal = &InternalSession{Students: rawSession.Students, RequiredFeatures: rawSession.RoomRequirements}
		}
		return result, nil
	}
	for _, rawCourse := range raw.Courses {
		if err := register(rawCourse.Id); err != nil {
			return Semester{}, err
		}
		chair, ok := chairIndices[rawCourse.Chair]
		if !ok {
			return Semester{}, invalid("chair %q of course %q does not exist", rawCourse.Chair, rawCourse.Id)
		} else if rawCourse.MinNumberOfDays < 1 {
			return Semester{}, invalid("minimal number of days of course %q must be positive", rawCourse.Id)
		}
		course := Course{
			Index:         len(semester.Courses),
			Id:            rawCourse.Id,
			Name:          rawCourse.Name,
			Abbreviation:  rawCourse.Abbreviation,
			Chair:         chair,
			MinSpreadDays: rawCourse.MinNumberOfDays,
		}
		for _, rawSession := range rawCourse.Lectures {
			lecture, err := session(rawSession, course.Index, true)
			if err != nil {
				return Semester{}, err
			}
			course.Lectures = append(course.Lectures, lecture.Index)
			semester.Sessions = append(semester.Sessions, lecture)
		}
		for _, rawSession := range rawCourse.Practicals {
			practical, err := session(rawSession, course.Index, false)
			if err != nil {
				return Semester{}, err
			}
			course.Practicals = append(course.Practicals, practical.Index)
			semester.Sessions = append(semester.Sessions, practical)
		}
		courseIndices[course.Id] = course.Index
		semester.Courses = append(semester.Courses, course)
	}

	//** Curricula
	semester.courseCurricula = make([][]int, len(semester.Courses))
	for _, rawCurriculum := range raw.Curricula {
		if err := register(rawCurriculum.Id); err != nil {
			return Semester{}, err
		}
		curriculum := Curriculum{Index: len(semester.Curricula), Id: rawCurriculum.Id, Name: rawCurriculum.Name}
		for _, courseId := range lo.Uniq(rawCurriculum.Courses) {
			course, ok := courseIndices[courseId]
			if !ok {
				return Semester{}, invalid("course %q of curriculum %q does not exist", courseId, rawCurriculum.Id)
			}
			curriculum.Courses = append(curriculum.Courses, course)
			semester.courseCurricula[course] = append(semester.courseCurricula[course], curriculum.Index)
		}
		semester.Curricula = append(semester.Curricula, curriculum)
	}

	//** Fixed placements
	if err := verifyExternalSessions(&semester); err != nil {
		return Semester{}, err
	}
	if err := verifyPreAssignedRooms(&semester); err != nil {
		return Semester{}, err
	}

	return semester, nil
}

// External sessions are pinned, so two of them must never share a room in the same period
func verifyExternalSessions(semester *Semester) error {
	occupied := make(map[Placement]string)
	for _, session := range semester.ExternalSessions() {
		for offset := range session.Length() {
			placement := Placement{
				Period: NewPeriod(session.PreAssignment.Day, session.PreAssignment.Slot+offset),
				Room:   session.External.Room,
			}
			if other, ok := occupied[placement]; ok {
				return invalid("external sessions %q and %q share room %q in period %v", other, session.Id, semester.Rooms[placement.Room].Id, placement.Period)
			}
			occupied[placement] = session.Id
		}
	}
	return nil
}
