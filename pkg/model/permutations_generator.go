package model

type permutationGenerator interface {
	// Attributes' order in the permutation parameter is the following: Day, Start, Room, Teacher.
	// All the constraints must take into account that if the value of permutation[i] (for all feasible i's) is math.MaxUint64 then the permutation is not ready to be evaluated if this evaluation involves permutation[i]
	//
	// Example:
	//
	//	generator := newPermutationGenerator(days, periods, rooms, teachers)
	//
	//	permutations := generator.ConstrainedPermutations([]func(permutation []uint64) bool{
	//				func(permutation []uint64) bool {
	//	       		// Verify "permutation[1] == math.MaxUint64", since the predicate "permutation[1] != 2" relies in this index
	//					return permutation[1] == math.MaxUint64 || permutation[1] != 2
	//				},
	//			})
	ConstrainedPermutations(constraints []func(permutation []uint64) bool) [][]uint64
}

func newPermutationGenerator(days, periods, rooms, teachers uint64) permutationGenerator {
	return &permutationGeneratorImplementation{days, periods, rooms, teachers}
}
