package planner

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// sampleTolerance is the half-size of the box each sample occupies in the tree.
const sampleTolerance = 1e-9

// sampleEntry wraps a path sample for R-tree storage
type sampleEntry struct {
	Index  int
	Sample Sample
	BBox   rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *sampleEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SampleIndex answers spatial queries over the samples of one path
type SampleIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewSampleIndex indexes every sample of the path
func NewSampleIndex(p *Path) *SampleIndex {
	entries := make([]rtreego.Spatial, 0, p.Len())
	for i, s := range p.Samples {
		entries = append(entries, &sampleEntry{
			Index:  i,
			Sample: s,
			BBox:   rtreego.Point{s.X, s.Y}.ToRect(sampleTolerance),
		})
	}
	// 2D, min 25, max 50 entries per node
	tree := rtreego.NewTree(2, 25, 50, entries...)
	return &SampleIndex{tree: tree, size: len(entries)}
}

// Len returns the number of indexed samples
func (si *SampleIndex) Len() int {
	return si.size
}

// Nearest returns the sample closest to pt and its index along the path
func (si *SampleIndex) Nearest(pt orb.Point) (int, Sample, bool) {
	if si.size == 0 {
		return -1, Sample{}, false
	}
	found := si.tree.NearestNeighbor(rtreego.Point{pt.X(), pt.Y()})
	if found == nil {
		return -1, Sample{}, false
	}
	entry := found.(*sampleEntry)
	return entry.Index, entry.Sample, true
}
