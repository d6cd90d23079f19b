package model

// NoIndex marks an absent arena reference (e.g. a room without holding chair)
const NoIndex = -1

type Chair struct {
	Index    int
	Id       string
	Name     string
	Teachers []int
}

type Teacher struct {
	Index       int
	Id          string
	Name        string
	Chair       int
	Unavailable []Period
	Unfavorable []Period
}

type RoomKind int

const (
	InternalRoomKind RoomKind = iota
	ExternalRoomKind
)

// InternalRoom holds the payload of rooms managed by the department
type InternalRoom struct {
	Capacity int
	Features RoomFeatures
	Holder   int // Chair holding the room or NoIndex
}

type Room struct {
	Index    int
	Id       string
	Name     string
	Kind     RoomKind
	Internal *InternalRoom // Only set for InternalRoomKind
}

func (room Room) IsInternal() bool {
	return room.Kind == InternalRoomKind
}

type SessionKind int

const (
	InternalSessionKind SessionKind = iota
	ExternalSessionKind
)

type InternalSession struct {
	Students         int
	RequiredFeatures RoomFeatures
}

type ExternalSession struct {
	Room int
}

type Session struct {
	Index         int
	Id            string
	Name          string
	Teacher       int
	Course        int
	Lecture       bool
	DoubleSession bool
	PreAssignment *Period // Mandatory for external sessions

	Kind     SessionKind
	Internal *InternalSession // Only set for InternalSessionKind
	External *ExternalSession // Only set for ExternalSessionKind
}

func (session Session) IsInternal() bool {
	return session.Kind == InternalSessionKind
}

func (session Session) IsPreAssigned() bool {
	return session.PreAssignment != nil
}

// Length is the number of consecutive slots the session occupies
func (session Session) Length() int {
	if session.DoubleSession {
		return 2
	}
	return 1
}

type Course struct {
	Index         int
	Id            string
	Name          string
	Abbreviation  string
	Chair         int
	MinSpreadDays int
	Lectures      []int
	Practicals    []int
}

type Curriculum struct {
	Index   int
	Id      string
	Name    string
	Courses []int
}

// ConstraintWeights are the per soft-constraint penalty multipliers
type ConstraintWeights struct {
	S1 float64 `mapstructure:"s1"`
	S2 float64 `mapstructure:"s2"`
	S3 float64 `mapstructure:"s3"`
	S4 float64 `mapstructure:"s4"`
	S5 float64 `mapstructure:"s5"`
	S6 float64 `mapstructure:"s6"`
	S7 float64 `mapstructure:"s7"`
}
