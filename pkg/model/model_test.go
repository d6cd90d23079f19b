package model_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicolasgross/libwcttt-sub000/internal/fixture"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	t.Run("Ordering", func(t *testing.T) {
		assert.True(t, model.NewPeriod(1, 4).Before(model.NewPeriod(2, 1)))
		assert.True(t, model.NewPeriod(2, 1).Before(model.NewPeriod(2, 2)))
		assert.Zero(t, model.NewPeriod(3, 3).Compare(model.NewPeriod(3, 3)))
		assert.Equal(t, model.NewPeriod(2, 3), model.NewPeriod(2, 2).Next())
		assert.Equal(t, model.NewPeriod(2, 1), model.NewPeriod(2, 2).Prev())
	})

	t.Run("Out of range", func(t *testing.T) {
		assert.Panics(t, func() { model.NewPeriod(0, 1) })
		assert.Panics(t, func() { model.NewPeriod(1, 8) })
		assert.Panics(t, func() { model.NewPeriod(1, 1).Prev() })
	})
}

func TestRoomFeaturesDominates(t *testing.T) {
	full := model.RoomFeatures{Projectors: 2, PcPool: true, TeacherPc: true, DocCam: true}
	none := model.RoomFeatures{}
	projector := model.RoomFeatures{Projectors: 1}
	pcPool := model.RoomFeatures{PcPool: true}

	assert.True(t, full.Dominates(none))
	assert.True(t, full.Dominates(full))
	assert.True(t, none.Dominates(none))
	assert.False(t, none.Dominates(projector))

	// Mutually non-dominating feature sets are insufficient for each other
	assert.False(t, projector.Dominates(pcPool))
	assert.False(t, pcPool.Dominates(projector))
}

func TestTimetable(t *testing.T) {
	period1, period2 := model.NewPeriod(1, 1), model.NewPeriod(2, 3)

	t.Run("Assign and unassign", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable(3, 4)

		//** Act
		timetable.Assign(period1, model.Assignment{Session: 0, Room: 1})
		timetable.Assign(period2, model.Assignment{Session: 1, Room: 1})
		timetable.Assign(period1, model.Assignment{Session: 2, Room: 0})

		//** Assert
		assert.Equal(t, 3, timetable.Size())
		assert.Equal(t, 2, timetable.Usage(period1))
		assert.False(t, timetable.RoomFree(period1, 1))
		assert.True(t, timetable.RoomFree(period2, 0))
		assert.Equal(t, []model.Placement{{Period: period2, Room: 1}}, timetable.Placements(1))
		assert.Equal(t, []int{0, 1, 2}, timetable.PlacedSessions())

		assert.True(t, timetable.Unassign(period1, model.Assignment{Session: 0, Room: 1}))
		assert.False(t, timetable.Unassign(period1, model.Assignment{Session: 0, Room: 1}))
		assert.False(t, timetable.IsPlaced(0))
		assert.True(t, timetable.RoomFree(period1, 1))
	})

	t.Run("Duplicate pairs and foreign periods panic", func(t *testing.T) {
		timetable := model.NewTimetable(1, 2)
		timetable.Assign(period1, model.Assignment{Session: 0, Room: 0})

		assert.Panics(t, func() { timetable.Assign(period1, model.Assignment{Session: 0, Room: 0}) })
		assert.Panics(t, func() { timetable.Assign(period2, model.Assignment{Session: 1, Room: 0}) })
		assert.Panics(t, func() { model.NewTimetable(8, 2) })
		assert.Panics(t, func() { model.NewTimetable(1, 1) })
	})

	t.Run("Remove and restore sessions", func(t *testing.T) {
		timetable := model.NewTimetable(2, 4)
		timetable.Assign(model.NewPeriod(2, 1), model.Assignment{Session: 4, Room: 2})
		timetable.Assign(model.NewPeriod(2, 2), model.Assignment{Session: 4, Room: 2})

		removed := timetable.RemoveSession(4)
		assert.Len(t, removed, 2)
		assert.Zero(t, timetable.Size())

		timetable.Restore(4, removed)
		assert.Equal(t, removed, timetable.Placements(4))
	})

	t.Run("Clone is deep", func(t *testing.T) {
		//** Arrange
		timetable := model.NewTimetable(2, 2)
		timetable.Assign(period1, model.Assignment{Session: 0, Room: 0})
		timetable.SetScore(0, 4.5)

		//** Act
		clone := timetable.Clone()
		clone.Assign(period1, model.Assignment{Session: 1, Room: 1})

		//** Assert
		assert.Equal(t, 1, timetable.Size())
		assert.Equal(t, 2, clone.Size())
		assert.Equal(t, 4.5, timetable.Penalty())
		assert.Equal(t, model.NotEvaluated, clone.HardViolations())
		assert.False(t, timetable.Equal(clone))
		clone.Unassign(period1, model.Assignment{Session: 1, Room: 1})
		assert.True(t, timetable.Equal(clone))
	})
}

func TestNewSemester(t *testing.T) {
	t.Run("Department", func(t *testing.T) {
		//** Act
		semester, err := model.NewSemester(fixture.Department())

		//** Assert
		require.NoError(t, err)
		g := NewWithT(t)
		g.Expect(semester.Teachers).To(HaveLen(5))
		g.Expect(semester.Rooms).To(HaveLen(5))
		g.Expect(semester.Sessions).To(HaveLen(13))
		g.Expect(semester.InternalSessions()).To(HaveLen(12))
		g.Expect(semester.Periods()).To(HaveLen(20))

		db := semester.Courses[1]
		g.Expect(db.Id).To(Equal("db"))
		g.Expect(semester.CurriculaOf(db.Index)).To(ConsistOf(0, 1))
		g.Expect(semester.HasSinglePractical(db.Index)).To(BeTrue())
		g.Expect(semester.HasSinglePractical(0)).To(BeFalse())

		external := semester.Sessions[fixture.SessionIndex(&semester, "ethics-l1")]
		g.Expect(external.IsInternal()).To(BeFalse())
		g.Expect(external.External.Room).To(Equal(fixture.RoomIndex(&semester, "philosophy-hall")))
		g.Expect(*external.PreAssignment).To(Equal(model.NewPeriod(3, 2)))
	})

	t.Run("Rejected definitions", func(t *testing.T) {
		scenarios := map[string]func(raw *model.RawSemester){
			"double session pre-assigned to last slot": func(raw *model.RawSemester) {
				raw.Courses[1].Lectures[0].PreAssignment = fixture.At(2, 4)
			},
			"duplicate id": func(raw *model.RawSemester) {
				raw.Courses[0].Practicals[1].Id = "algo-p1"
			},
			"unknown teacher": func(raw *model.RawSemester) {
				raw.Courses[0].Lectures[0].Teacher = "knuth"
			},
			"external session without pre-assignment": func(raw *model.RawSemester) {
				raw.Courses[3].Lectures[0].PreAssignment = nil
			},
			"overlapping teacher periods": func(raw *model.RawSemester) {
				raw.Chairs[0].Teachers[0].UnfavorablePeriods = append(raw.Chairs[0].Teachers[0].UnfavorablePeriods, model.RawPeriod{Day: 1, TimeSlot: 1})
			},
			"too many slots": func(raw *model.RawSemester) {
				raw.TimeSlotsPerDay = 8
			},
			"negative weight": func(raw *model.RawSemester) {
				raw.Weights.S3 = -1
			},
			"pre-assigned sessions competing for the only feasible room": func(raw *model.RawSemester) {
				raw.Courses[1].Practicals[0].PreAssignment = fixture.At(1, 2)
				raw.Courses[4].Practicals[0].PreAssignment = fixture.At(1, 2)
			},
		}

		for name, modify := range scenarios {
			t.Run(name, func(t *testing.T) {
				raw := fixture.Department()
				modify(&raw)

				_, err := model.NewSemester(raw)

				var invalidInput model.InvalidInputError
				assert.True(t, errors.As(err, &invalidInput), "unexpected error: %v", err)
			})
		}
	})

	t.Run("Pre-assigned session without any feasible room", func(t *testing.T) {
		raw := fixture.Department()
		raw.Courses[4].Lectures[0].RoomRequirements = model.RoomFeatures{Projectors: 5}

		_, err := model.NewSemester(raw)

		var noRoom model.NoFeasibleRoomError
		require.True(t, errors.As(err, &noRoom))
		assert.Equal(t, "ai-l1", noRoom.Session)
	})
}

func TestSemesterFromJson(t *testing.T) {
	//** Arrange
	document := map[string]any{
		"name":                   "json",
		"daysPerWeek":            2,
		"timeSlotsPerDay":        3,
		"maxDailyLecturesPerCur": 2,
		"weights":                map[string]any{"s1": 1, "s2": 2, "s3": 3, "s4": 4, "s5": 5, "s6": 6, "s7": 7},
		"chairs": []any{
			map[string]any{"id": "c", "teachers": []any{
				map[string]any{"id": "t", "unavailablePeriods": []any{map[string]any{"day": 2, "timeSlot": 3}}},
			}},
		},
		"internalRooms": []any{map[string]any{"id": "r", "capacity": 20, "features": map[string]any{"projectors": 1, "docCam": true}}},
		"courses": []any{
			map[string]any{"id": "k", "chair": "c", "minNumberOfDays": 1, "lectures": []any{
				map[string]any{"id": "l", "teacher": "t", "students": 12, "doubleSession": true, "preAssignment": map[string]any{"day": 1, "timeSlot": 1}},
			}},
		},
		"curricula": []any{map[string]any{"id": "cu", "courses": []any{"k"}}},
	}
	bytes, err := json.Marshal(document)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "semester.json")
	require.NoError(t, os.WriteFile(file, bytes, 0666))

	//** Act
	semester, err := model.SemesterFromJson(file)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, 7.0, semester.Weights.S7)
	assert.Equal(t, []model.Period{model.NewPeriod(2, 3)}, semester.Teachers[0].Unavailable)
	assert.Equal(t, model.RoomFeatures{Projectors: 1, DocCam: true}, semester.Rooms[0].Internal.Features)
	assert.True(t, semester.Sessions[0].DoubleSession)
	assert.Equal(t, 12, semester.Sessions[0].Internal.Students)
	assert.Equal(t, []int{0}, semester.CurriculaOf(0))
}
