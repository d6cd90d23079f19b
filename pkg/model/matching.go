package model

import (
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// NoFeasibleRoomError reports a session for which no room satisfying its requirements is left
type NoFeasibleRoomError struct {
	Session string
}

func (err NoFeasibleRoomError) Error() string {
	return fmt.Sprintf("no feasible room for session %q", err.Session)
}

// FeasibleRooms returns the internal rooms whose features dominate the requirements of the
// internal session
func FeasibleRooms(semester *Semester, session Session) []int {
	return lo.FilterMap(semester.Rooms, func(room Room, _ int) (int, bool) {
		return room.Index, room.IsInternal() && room.Internal.Features.Dominates(session.Internal.RequiredFeatures)
	})
}

// Pre-assigned internal sessions sharing a period need pairwise distinct feasible rooms,
// which holds if and only if the session-room bipartite graph has a matching saturating the sessions
func verifyPreAssignedRooms(semester *Semester) error {
	perPeriod := make(map[Period][]Session)
	for _, session := range semester.InternalSessions() {
		if !session.IsPreAssigned() {
			continue
		}
		if len(FeasibleRooms(semester, session)) == 0 {
			return NoFeasibleRoomError{Session: session.Id}
		}
		for offset := range session.Length() {
			period := NewPeriod(session.PreAssignment.Day, session.PreAssignment.Slot+offset)
			perPeriod[period] = append(perPeriod[period], session)
		}
	}

	for period, sessions := range perPeriod {
		if len(sessions) < 2 {
			continue
		}
		rooms := lo.Uniq(lo.FlatMap(sessions, func(session Session, _ int) []int { return FeasibleRooms(semester, session) }))

		neighbors := func(sessionAny any, roomAny any) (bool, error) {
			session := sessionAny.(Session)
			room := roomAny.(int)
			return semester.Rooms[room].Internal.Features.Dominates(session.Internal.RequiredFeatures), nil
		}

		sessionsAny, roomsAny := lo.Map(sessions, func(session Session, _ int) any { return session }), lo.Map(rooms, func(room int, _ int) any { return room })
		graph, err := bipartitegraph.NewBipartiteGraph(sessionsAny, roomsAny, neighbors)
		if err != nil {
			return err
		}

		if matching := graph.LargestMatching(); len(matching) < len(sessions) {
			return invalid("pre-assigned sessions %v cannot be given distinct rooms in period %v", lo.Map(sessions, func(session Session, _ int) string { return session.Id }), period)
		}
	}
	return nil
}
