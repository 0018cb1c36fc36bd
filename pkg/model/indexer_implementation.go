package model

import "sort"

type indexerImplementation struct {
	offsets []uint64 // offsets[s] is the number of variables owned by the sessions before s
}

func (indexer *indexerImplementation) Index(session, candidate uint64) uint64 {
	return indexer.offsets[session] + candidate + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (session, candidate uint64) {
	index = index - 1
	// The first session whose variables end after index
	position := sort.Search(len(indexer.offsets)-1, func(i int) bool {
		return indexer.offsets[i+1] > index
	})
	session = uint64(position)
	candidate = index - indexer.offsets[position]
	return session, candidate
}

func (indexer *indexerImplementation) Variables() uint64 {
	return indexer.offsets[len(indexer.offsets)-1]
}
