package model

import (
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// repackRooms tries to place session s at p when the only obstacle is room occupancy. The sessions that hold
// one of s's rooms during p's window are given new rooms through a maximum bipartite matching between them
// (plus s) and the rooms that no other session holds during their own periods. Times and teachers never change.
// On success the returned function reverts the repack (s included); on failure the assignment is left untouched.
func (a *assignment) repackRooms(s int, p placement) (undo func(), ok bool) {
	d := a.domain
	current := d.sessions[s]

	if a.check(s, p, true) != satisfied {
		return nil, false
	}

	//** Collect the sessions involved
	involved := []int{s}
	for _, room := range current.rooms {
		for period := p.start; period < p.start+current.duration; period++ {
			occupant := a.roomAt[a.cell(room, p.day, period)]
			if occupant != free && !slices.Contains(involved, occupant) {
				involved = append(involved, occupant)
			}
		}
	}
	slices.Sort(involved[1:])

	timeOf := func(x int) placement {
		if x == s {
			return p
		}
		return a.placements[x]
	}

	//** Build candidate rooms and relationships
	rooms := make([]int, 0)
	relationships := make(map[[2]int]bool)
	for _, x := range involved {
		at := timeOf(x)
		for _, room := range d.sessions[x].rooms {
			available := true
			for period := at.start; period < at.start+d.sessions[x].duration; period++ {
				occupant := a.roomAt[a.cell(room, at.day, period)]
				if occupant != free && !slices.Contains(involved, occupant) {
					available = false
					break
				}
			}
			if !available {
				continue
			}
			relationships[[2]int{x, room}] = true
			if !slices.Contains(rooms, room) {
				rooms = append(rooms, room)
			}
		}
	}
	slices.Sort(rooms)

	assignments, err := assignRooms(involved, rooms, relationships)
	if err != nil {
		return nil, false
	}

	//** Apply, rolling back if any placement is rejected
	previous := lo.Map(involved, func(x int, _ int) placement { return a.placements[x] })
	for _, x := range involved {
		a.unplace(x)
	}
	rollback := func() {
		for _, x := range involved {
			a.unplace(x)
		}
		for i, x := range involved {
			if previous[i].placed() {
				a.place(x, previous[i])
			}
		}
	}
	for _, x := range involved {
		target := timeOf(x)
		target.room = assignments[x]
		if !a.feasible(x, target) {
			rollback()
			return nil, false
		}
		a.place(x, target)
	}
	return rollback, true
}

// assignRooms finds a room for every session so that no two sessions share a room
func assignRooms(sessions []int, rooms []int, relationships map[[2]int]bool) (map[int]int, error) {
	// Build neighbors predicate based on relationships
	neighbors := func(sessionAny any, roomAny any) (bool, error) {
		return relationships[[2]int{sessionAny.(int), roomAny.(int)}], nil
	}

	// Transform sessions and rooms to slices of any
	sessionsAny, roomsAny := lo.Map(sessions, func(s int, _ int) any { return s }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(sessionsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(sessions) {
		return nil, unassignableError{}
	}

	assignments := make(map[int]int, len(sessions))
	for _, edge := range matching {
		sessionIndex, roomIndex := edge.Node1, edge.Node2-len(sessions)
		assignments[sessions[sessionIndex]] = rooms[roomIndex]
	}
	return assignments, nil
}
