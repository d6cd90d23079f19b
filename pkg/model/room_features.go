package model

// RoomFeatures describes the equipment of a room, or the equipment a session requires
type RoomFeatures struct {
	Projectors int  `mapstructure:"projectors"`
	PcPool     bool `mapstructure:"pcPool"`
	TeacherPc  bool `mapstructure:"teacherPc"`
	DocCam     bool `mapstructure:"docCam"`
}

// Dominates reports whether every feature of f is at least as good as the one of other.
// Dominance is a partial order: two feature sets may not dominate each other, in which case
// neither is considered sufficient for the other.
func (f RoomFeatures) Dominates(other RoomFeatures) bool {
	return f.Projectors >= other.Projectors &&
		(f.PcPool || !other.PcPool) &&
		(f.TeacherPc || !other.TeacherPc) &&
		(f.DocCam || !other.DocCam)
}
