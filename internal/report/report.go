// Package report reads and writes timetables, scores and benchmark results as CSV
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/nicolasgross/libwcttt-sub000/pkg/constraint"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	"github.com/samber/lo"
)

// TimetableRow is one assignment of a timetable
type TimetableRow struct {
	Day     int    `csv:"day"`
	Slot    int    `csv:"slot"`
	Session string `csv:"session"`
	Course  string `csv:"course"`
	Teacher string `csv:"teacher"`
	Room    string `csv:"room"`
	Lecture bool   `csv:"lecture"`
}

// ScoreRow is the contribution of one constraint to the score of a timetable
type ScoreRow struct {
	Constraint string  `csv:"constraint"`
	Violations int     `csv:"violations"`
	Weight     float64 `csv:"weight"`
	Penalty    float64 `csv:"penalty"`
}

// BenchmarkRow is the outcome of one optimization of a benchmark
type BenchmarkRow struct {
	File           string  `csv:"file"`
	Sessions       int     `csv:"sessions"`
	Seed           uint64  `csv:"seed"`
	Generations    int     `csv:"generations"`
	Seconds        float64 `csv:"seconds"`
	HardViolations int     `csv:"hard_violations"`
	Penalty        float64 `csv:"penalty"`
	Status         string  `csv:"status"`
}

func TimetableRows(semester *model.Semester, timetable *model.Timetable) []*TimetableRow {
	rows := make([]*TimetableRow, 0, timetable.Size())
	timetable.ForEach(func(period model.Period, assignment model.Assignment) {
		session := semester.Sessions[assignment.Session]
		rows = append(rows, &TimetableRow{
			Day:     period.Day,
			Slot:    period.Slot,
			Session: session.Id,
			Course:  semester.Courses[session.Course].Id,
			Teacher: semester.Teachers[session.Teacher].Id,
			Room:    semester.Rooms[assignment.Room].Id,
			Lecture: session.Lecture,
		})
	})
	return rows
}

func WriteTimetable(out io.Writer, semester *model.Semester, timetable *model.Timetable) error {
	rows := TimetableRows(semester, timetable)
	return gocsv.Marshal(&rows, out)
}

func ExportTimetable(path string, semester *model.Semester, timetable *model.Timetable) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create timetable file: %w", err)
	}
	defer out.Close()

	if err := WriteTimetable(out, semester, timetable); err != nil {
		return fmt.Errorf("cannot write timetable file: %w", err)
	}
	return nil
}

// ReadTimetable rebuilds a timetable of the semester from its rows. Only the day, slot,
// session and room columns are read back.
func ReadTimetable(in io.Reader, semester *model.Semester) (*model.Timetable, error) {
	var rows []*TimetableRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse timetable: %w", err)
	}

	sessions := lo.SliceToMap(semester.Sessions, func(session model.Session) (string, int) { return session.Id, session.Index })
	rooms := lo.SliceToMap(semester.Rooms, func(room model.Room) (string, int) { return room.Id, room.Index })
	timetable := semester.NewTimetable()
	for line, row := range rows {
		session, ok := sessions[row.Session]
		if !ok {
			return nil, fmt.Errorf("row %v: unknown session %q", line+1, row.Session)
		}
		room, ok := rooms[row.Room]
		if !ok {
			return nil, fmt.Errorf("row %v: unknown room %q", line+1, row.Room)
		}
		if row.Day < 1 || row.Day > semester.DaysPerWeek || row.Slot < 1 || row.Slot > semester.TimeSlotsPerDay {
			return nil, fmt.Errorf("row %v: period %v.%v is outside of the week", line+1, row.Day, row.Slot)
		}

		period := model.NewPeriod(row.Day, row.Slot)
		assignment := model.Assignment{Session: session, Room: room}
		if lo.Contains(timetable.Assignments(period), assignment) {
			return nil, fmt.Errorf("row %v: session %q is assigned to room %q twice", line+1, row.Session, row.Room)
		}
		timetable.Assign(period, assignment)
	}
	return timetable, nil
}

func ImportTimetable(path string, semester *model.Semester) (*model.Timetable, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open timetable file: %w", err)
	}
	defer in.Close()
	return ReadTimetable(in, semester)
}

// ScoreRows breaks the score of the timetable down: the hard violation total followed by one
// row per soft constraint
func ScoreRows(calculator *constraint.Calculator, timetable *model.Timetable) []*ScoreRow {
	weights := calculator.Matrices().Semester().Weights
	rows := []*ScoreRow{{Constraint: "hard", Violations: calculator.TimetableHardViolations(timetable)}}
	for i, points := range calculator.TimetableSoftViolations(timetable) {
		soft := constraint.SoftConstraint(i)
		weight := constraint.Weight(weights, soft)
		rows = append(rows, &ScoreRow{
			Constraint: soft.String(),
			Violations: points,
			Weight:     weight,
			Penalty:    float64(points) * weight,
		})
	}
	return rows
}

func WriteScore(out io.Writer, calculator *constraint.Calculator, timetable *model.Timetable) error {
	rows := ScoreRows(calculator, timetable)
	return gocsv.Marshal(&rows, out)
}

func ExportBenchmark(path string, rows []*BenchmarkRow) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create benchmark file: %w", err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("cannot write benchmark file: %w", err)
	}
	return nil
}
