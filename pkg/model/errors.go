package model

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a configuration is malformed or inconsistent; generation is never attempted
type ValidationError struct {
	Violations []string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", strings.Join(err.Violations, "; "))
}

// InfeasibleError is returned when a valid configuration admits no complete feasible assignment.
// Proven is false when the search budget ran out before the search space was exhausted.
type InfeasibleError struct {
	Reasons []string
	Proven  bool
}

func (err *InfeasibleError) Error() string {
	if !err.Proven {
		return fmt.Sprintf("no feasible timetable found within the search budget: %v", strings.Join(err.Reasons, "; "))
	}
	return fmt.Sprintf("timetable is infeasible: %v", strings.Join(err.Reasons, "; "))
}

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all sessions can be assigned a room"
}
