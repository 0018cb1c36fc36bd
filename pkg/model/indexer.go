package model

// indexer gives a unique SAT variable to every (session, candidate placement) pair and vice versa
type indexer interface {
	// Returns the variable standing for the candidate-th placement of a session
	Index(session, candidate uint64) uint64
	// Returns the session and candidate a variable stands for
	Attributes(index uint64) (session uint64, candidate uint64)
	// Returns the number of variables
	Variables() uint64
}

func newIndexer(candidates []uint64) indexer {
	offsets := make([]uint64, len(candidates)+1)
	for session, count := range candidates {
		offsets[session+1] = offsets[session] + count
	}
	return &indexerImplementation{offsets: offsets}
}
