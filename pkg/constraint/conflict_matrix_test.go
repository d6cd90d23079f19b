package constraint

import (
	"testing"

	"github.com/nicolasgross/libwcttt-sub000/internal/fixture"
	"github.com/nicolasgross/libwcttt-sub000/pkg/model"
	. "github.com/onsi/gomega"
)

func TestConflictMatrices(t *testing.T) {
	g := NewWithT(t)
	semester := fixture.Must(fixture.Department())
	matrices := NewConflictMatrices(&semester)
	session := func(id string) int { return fixture.SessionIndex(&semester, id) }
	room := func(id string) int { return fixture.RoomIndex(&semester, id) }

	t.Run("Deterministic", func(t *testing.T) {
		g := NewWithT(t)
		g.Expect(NewConflictMatrices(&semester)).To(Equal(matrices))
	})

	t.Run("Session conflicts", func(t *testing.T) {
		g := NewWithT(t)

		identity := matrices.Sessions(session("algo-l1"), session("algo-l1"))
		g.Expect(identity.Identity).To(BeTrue())
		g.Expect(identity.Conflicting()).To(BeFalse())

		sameTeacher := matrices.Sessions(session("algo-l1"), session("algo-l2"))
		g.Expect(sameTeacher.SameCourse).To(BeTrue())
		g.Expect(sameTeacher.SameTeacher).To(BeTrue())
		g.Expect(sameTeacher.Curricula).To(Equal([]int{0}))
		g.Expect(sameTeacher.Weight()).To(Equal(3))

		// db is part of both curricula, algo only of the bachelor
		shared := matrices.Sessions(session("db-l1"), session("algo-l1"))
		g.Expect(shared.Curricula).To(Equal([]int{0}))
		g.Expect(shared).To(Equal(matrices.Sessions(session("algo-l1"), session("db-l1"))))

		unrelated := matrices.Sessions(session("net-l1"), session("ai-l1"))
		g.Expect(unrelated.Conflicting()).To(BeFalse())
		g.Expect(unrelated.Weight()).To(BeZero())
	})

	t.Run("Room fit", func(t *testing.T) {
		g := NewWithT(t)
		g.Expect(matrices.Room(session("algo-l1"), room("auditorium"))).To(Equal(RoomFit{CapacityDeviation: 10, FeaturesFit: true}))
		g.Expect(matrices.Room(session("algo-l1"), room("classroom")).FeaturesFit).To(BeFalse())
		g.Expect(matrices.Room(session("db-p1"), room("lab")).FeaturesFit).To(BeTrue())
		g.Expect(matrices.Room(session("db-p1"), room("seminar")).FeaturesFit).To(BeFalse())

		g.Expect(matrices.Fits(session("algo-p1"), room("classroom"))).To(BeTrue())
		g.Expect(matrices.Fits(session("algo-p1"), room("philosophy-hall"))).To(BeFalse())
		g.Expect(matrices.Fits(session("ethics-l1"), room("philosophy-hall"))).To(BeTrue())
		g.Expect(matrices.Fits(session("ethics-l1"), room("auditorium"))).To(BeFalse())
	})

	t.Run("Teacher periods", func(t *testing.T) {
		g := NewWithT(t)
		turing := semester.Sessions[session("algo-l1")].Teacher
		lamport := semester.Sessions[session("net-l1")].Teacher

		g.Expect(matrices.Teacher(turing, model.NewPeriod(1, 1))).To(Equal(TeacherPeriod{Unavailable: true}))
		g.Expect(matrices.Teacher(turing, model.NewPeriod(5, 4))).To(Equal(TeacherPeriod{Unfavorable: true}))
		g.Expect(matrices.Teacher(turing, model.NewPeriod(3, 3))).To(BeZero())
		for slot := 1; slot <= semester.TimeSlotsPerDay; slot++ {
			g.Expect(matrices.Teacher(lamport, model.NewPeriod(2, slot)).Unavailable).To(BeTrue())
		}
	})

	g.Expect(matrices.Semester()).To(BeIdenticalTo(&semester))
}
