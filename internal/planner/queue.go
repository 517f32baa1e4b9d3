package planner

import (
	"container/heap"
)

// candidate is one curve word solved for a start/goal pair, in radius-normalized units.
type candidate struct {
	Word    int        // Index of the word in dubinsWords, breaks length ties
	Lengths [3]float64 // Normalized segment lengths (t, p, q)
	Total   float64    // t + p + q
	Index   int        // Index in the heap
}

// candidateQueue implements heap.Interface, shortest candidate first
type candidateQueue []*candidate

func (cq candidateQueue) Len() int { return len(cq) }

func (cq candidateQueue) Less(i, j int) bool {
	if cq[i].Total == cq[j].Total {
		return cq[i].Word < cq[j].Word
	}
	return cq[i].Total < cq[j].Total
}

func (cq candidateQueue) Swap(i, j int) {
	cq[i], cq[j] = cq[j], cq[i]
	cq[i].Index = i
	cq[j].Index = j
}

func (cq *candidateQueue) Push(x interface{}) {
	n := len(*cq)
	c := x.(*candidate)
	c.Index = n
	*cq = append(*cq, c)
}

func (cq *candidateQueue) Pop() interface{} {
	old := *cq
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.Index = -1
	*cq = old[0 : n-1]
	return c
}

// newCandidateQueue heapifies the given candidates.
func newCandidateQueue(cands []*candidate) *candidateQueue {
	cq := append(make(candidateQueue, 0, len(cands)), cands...)
	for i := range cq {
		cq[i].Index = i
	}
	heap.Init(&cq)
	return &cq
}
