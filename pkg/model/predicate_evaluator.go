package model

type predicateEvaluator interface {
	// Checks whether the teacher is listed among the course's eligible teachers
	Teaches(teacher, course int) bool

	// Checks whether the room's type matches the course's room type
	Matches(room, course int) bool

	// Checks whether the combined size of the groups is smaller than or equal to the room's capacity (i.e. the groups fit in the room)
	Fits(groups []int, room int) bool

	// Checks whether a session of the given duration may start at the given (0-based) period: it must end within the day and never cover the lunch slot
	Allowed(start, duration int) bool

	// Checks whether the teacher dislikes the given (0-based) period
	Dislikes(teacher, period int) bool

	// Checks whether the teacher can take at least one session per day and per week
	Available(teacher int) bool
}
